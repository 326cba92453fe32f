package handler

import (
	"encoding/json"

	"survey-grader/internal/domain"
	"survey-grader/internal/dto"
	"survey-grader/internal/logger"
	"survey-grader/internal/middleware"
	"survey-grader/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SubmissionHandler handles answer submission and result retrieval.
type SubmissionHandler struct {
	surveyService     domain.SurveyService
	submissionService domain.SubmissionService
	validator         *validation.Validator
}

// NewSubmissionHandler creates a new SubmissionHandler instance
func NewSubmissionHandler(
	surveyService domain.SurveyService,
	submissionService domain.SubmissionService,
	validator *validation.Validator,
) *SubmissionHandler {
	return &SubmissionHandler{
		surveyService:     surveyService,
		submissionService: submissionService,
		validator:         validator,
	}
}

// Submit godoc
// @Summary Submit answers for a survey
// @Description Grades the submitted answers and returns the graded result. Essay questions are evaluated asynchronously within the request.
// @Tags submissions
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path string true "Survey ID"
// @Param request body dto.SubmitRequest true "Answers keyed by question ID"
// @Success 200 {object} dto.SubmissionResultResponse
// @Failure 400 {object} middleware.ValidationErrorResponse "Validation failed"
// @Failure 401 {object} middleware.ErrorResponse "Unauthorized"
// @Failure 404 {object} middleware.ErrorResponse "Survey not found"
// @Failure 429 {object} middleware.ErrorResponse "Too many submissions"
// @Failure 503 {object} middleware.ErrorResponse "Grading service unavailable"
// @Router /surveys/{id}/submit [post]
func (h *SubmissionHandler) Submit(c *fiber.Ctx) error {
	appLogger := logger.Get()
	userID, ok := c.Locals(middleware.UserIDKey).(string)
	if !ok || userID == "" {
		appLogger.Warn("User ID not found in context for Submit", zap.String("path", c.Path()))
		return c.Status(fiber.StatusUnauthorized).JSON(middleware.ErrorResponse{
			Code: "INVALID_USER_CONTEXT", Message: "User ID not found in context", Status: fiber.StatusUnauthorized,
		})
	}
	surveyID := validatedSurveyID(c)

	var req dto.SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "INVALID_REQUEST",
		})
	}

	// The cached survey is good enough to validate answer shapes against.
	// Submit reads its own fresh copy before accepting the attempt.
	survey, err := h.surveyService.GetSurvey(c.Context(), surveyID)
	if err != nil {
		return err
	}
	if survey.Status != domain.SurveyStatusPublished {
		return domain.NewSurveyNotFoundError(surveyID)
	}

	answers, validationErrors := h.validator.ValidateSubmission(survey, &req)
	if len(validationErrors) > 0 {
		return validationErrors
	}

	result, err := h.submissionService.Submit(c.Context(), userID, surveyID, answers)
	if err != nil {
		appLogger.Error("Failed to grade submission",
			zap.String("surveyID", surveyID),
			zap.String("userID", userID),
			zap.Error(err))
		return err
	}

	appLogger.Info("Submission graded",
		zap.String("surveyID", surveyID),
		zap.String("userID", userID),
		zap.Int("attempt", result.AttemptNumber),
		zap.Float64("score", result.TotalScore))
	return c.JSON(toSubmissionResult(result))
}

// GetMyResult godoc
// @Summary Get my latest result for a survey
// @Description Returns the authenticated user's most recent graded submission for the survey.
// @Tags submissions
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Survey ID"
// @Success 200 {object} dto.SubmissionResultResponse
// @Failure 401 {object} middleware.ErrorResponse "Unauthorized"
// @Failure 404 {object} middleware.ErrorResponse "No submission found"
// @Failure 500 {object} middleware.ErrorResponse "Internal server error"
// @Router /surveys/{id}/my-result [get]
func (h *SubmissionHandler) GetMyResult(c *fiber.Ctx) error {
	appLogger := logger.Get()
	userID, ok := c.Locals(middleware.UserIDKey).(string)
	if !ok || userID == "" {
		appLogger.Warn("User ID not found in context for GetMyResult", zap.String("path", c.Path()))
		return c.Status(fiber.StatusUnauthorized).JSON(middleware.ErrorResponse{
			Code: "INVALID_USER_CONTEXT", Message: "User ID not found in context", Status: fiber.StatusUnauthorized,
		})
	}
	surveyID := validatedSurveyID(c)

	result, err := h.submissionService.GetMyResult(c.Context(), userID, surveyID)
	if err != nil {
		return err
	}
	return c.JSON(toSubmissionResult(result))
}

func toSubmissionResult(response *domain.SurveyResponse) dto.SubmissionResultResponse {
	result := dto.SubmissionResultResponse{
		ResponseID:      response.ID,
		SurveyID:        response.SurveyID,
		AttemptNumber:   response.AttemptNumber,
		TotalScore:      response.TotalScore,
		PercentageScore: response.PercentageScore,
		IsPassed:        response.IsPassed,
		SubmittedAt:     response.SubmittedAt,
		Answers:         make([]dto.AnswerResultResponse, 0, len(response.Answers)),
	}
	for _, answer := range response.Answers {
		record := dto.AnswerResultResponse{
			QuestionID:      answer.QuestionID,
			IsCorrect:       answer.IsCorrect,
			Score:           answer.Score,
			EssayEvaluation: toEssayEvaluation(answer.Essay),
		}
		if raw, err := json.Marshal(answer.Answer); err == nil {
			record.Answer = raw
		}
		result.Answers = append(result.Answers, record)
	}
	return result
}

func toEssayEvaluation(essay *domain.EssayEvaluation) *dto.EssayEvaluationResponse {
	if essay == nil {
		return nil
	}
	response := &dto.EssayEvaluationResponse{
		Score:               essay.Score,
		MaxScore:            essay.MaxScore,
		Percentage:          essay.Percentage,
		Level:               string(essay.Level),
		Strengths:           essay.Strengths,
		AreasForImprovement: essay.AreasForImprovement,
		Comment:             essay.Comment,
	}
	if essay.ScoreBreakdown != nil {
		response.ScoreBreakdown = &dto.ScoreBreakdownResponse{
			ContentCompleteness: essay.ScoreBreakdown.ContentCompleteness,
			Accuracy:            essay.ScoreBreakdown.Accuracy,
			Depth:               essay.ScoreBreakdown.Depth,
			Expression:          essay.ScoreBreakdown.Expression,
		}
	}
	for _, point := range essay.DetailedFeedback {
		response.DetailedFeedback = append(response.DetailedFeedback, dto.FeedbackPointResponse{
			Point:    point.Point,
			Score:    point.Score,
			MaxScore: point.MaxScore,
			Feedback: point.Feedback,
		})
	}
	return response
}
