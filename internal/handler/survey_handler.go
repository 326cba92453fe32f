package handler

import (
	"survey-grader/internal/domain"
	"survey-grader/internal/dto"
	"survey-grader/internal/logger"
	"survey-grader/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SurveyHandler handles survey browsing requests.
type SurveyHandler struct {
	surveyService domain.SurveyService
}

// NewSurveyHandler creates a new SurveyHandler instance
func NewSurveyHandler(surveyService domain.SurveyService) *SurveyHandler {
	return &SurveyHandler{surveyService: surveyService}
}

// ListSurveys godoc
// @Summary List published surveys
// @Description Returns all surveys currently open for participation.
// @Tags surveys
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.SurveyListResponse
// @Failure 401 {object} middleware.ErrorResponse "Unauthorized"
// @Failure 500 {object} middleware.ErrorResponse "Internal server error"
// @Router /surveys [get]
func (h *SurveyHandler) ListSurveys(c *fiber.Ctx) error {
	surveys, err := h.surveyService.ListPublishedSurveys(c.Context())
	if err != nil {
		logger.Get().Error("Failed to list published surveys", zap.Error(err))
		return err
	}

	response := dto.SurveyListResponse{Surveys: make([]dto.SurveySummaryResponse, 0, len(surveys))}
	for _, survey := range surveys {
		response.Surveys = append(response.Surveys, toSurveySummary(survey))
	}
	return c.JSON(response)
}

// GetSurvey godoc
// @Summary Get a survey with its questions
// @Description Returns the student view of a survey. Correct answers and grading criteria are never included.
// @Tags surveys
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Survey ID"
// @Success 200 {object} dto.SurveyDetailResponse
// @Failure 401 {object} middleware.ErrorResponse "Unauthorized"
// @Failure 404 {object} middleware.ErrorResponse "Survey not found"
// @Failure 500 {object} middleware.ErrorResponse "Internal server error"
// @Router /surveys/{id} [get]
func (h *SurveyHandler) GetSurvey(c *fiber.Ctx) error {
	surveyID := validatedSurveyID(c)

	survey, err := h.surveyService.GetSurvey(c.Context(), surveyID)
	if err != nil {
		return err
	}
	// Students only ever see published surveys.
	if survey.Status != domain.SurveyStatusPublished {
		return domain.NewSurveyNotFoundError(surveyID)
	}

	return c.JSON(toSurveyDetail(survey))
}

// validatedSurveyID returns the survey ID checked by the validation
// middleware, falling back to the raw path parameter.
func validatedSurveyID(c *fiber.Ctx) string {
	if surveyID, ok := c.Locals(middleware.ValidatedSurveyIDKey).(string); ok && surveyID != "" {
		return surveyID
	}
	return c.Params("id")
}

func toSurveySummary(survey *domain.Survey) dto.SurveySummaryResponse {
	return dto.SurveySummaryResponse{
		ID:                    survey.ID,
		Title:                 survey.Title,
		Description:           survey.Description,
		Type:                  string(survey.Type),
		TotalScore:            survey.TotalScore,
		TimeLimitMinutes:      survey.TimeLimitMinutes,
		AllowMultipleAttempts: survey.AllowMultipleAttempts,
		MaxAttempts:           survey.MaxAttempts,
		StartAt:               survey.StartAt,
		EndAt:                 survey.EndAt,
	}
}

func toSurveyDetail(survey *domain.Survey) dto.SurveyDetailResponse {
	detail := dto.SurveyDetailResponse{
		ID:                    survey.ID,
		Title:                 survey.Title,
		Description:           survey.Description,
		Type:                  string(survey.Type),
		TotalScore:            survey.TotalScore,
		PassScore:             survey.PassScore,
		TimeLimitMinutes:      survey.TimeLimitMinutes,
		AllowMultipleAttempts: survey.AllowMultipleAttempts,
		MaxAttempts:           survey.MaxAttempts,
		StartAt:               survey.StartAt,
		EndAt:                 survey.EndAt,
		Questions:             make([]dto.QuestionResponse, 0, len(survey.Questions)),
	}
	for _, question := range survey.Questions {
		detail.Questions = append(detail.Questions, toQuestionResponse(question))
	}
	return detail
}

func toQuestionResponse(question *domain.Question) dto.QuestionResponse {
	response := dto.QuestionResponse{
		ID:           question.ID,
		Type:         string(question.Type),
		Title:        question.Title,
		Description:  question.Description,
		Score:        question.Score,
		MinWordCount: question.MinWordCount,
		Required:     question.Required,
		DisplayOrder: question.DisplayOrder,
	}
	for _, option := range question.Options {
		response.Options = append(response.Options, dto.OptionResponse{
			Key:   option.Key,
			Label: option.Label(),
		})
	}
	return response
}
