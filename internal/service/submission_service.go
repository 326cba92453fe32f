package service

import (
	"context"
	"errors"
	"time"

	"survey-grader/internal/domain"
	"survey-grader/internal/logger"
	"survey-grader/internal/monitoring"

	"go.uber.org/zap"
)

// submissionService implements domain.SubmissionService. It authorizes
// the attempt, grades the answers, and persists the outcome in one
// transaction.
type submissionService struct {
	surveyRepo     domain.SurveyRepository
	submissionRepo domain.SubmissionRepository
	grader         domain.GradingService
	txManager      domain.TransactionManager
	resultCache    ResultCacheService
}

// NewSubmissionService creates a new submission service.
func NewSubmissionService(
	surveyRepo domain.SurveyRepository,
	submissionRepo domain.SubmissionRepository,
	grader domain.GradingService,
	txManager domain.TransactionManager,
	resultCache ResultCacheService,
) domain.SubmissionService {
	return &submissionService{
		surveyRepo:     surveyRepo,
		submissionRepo: submissionRepo,
		grader:         grader,
		txManager:      txManager,
		resultCache:    resultCache,
	}
}

// Submit implements domain.SubmissionService. The survey is read fresh
// from the repository so a just-closed survey cannot be submitted through
// a stale cache entry.
func (s *submissionService) Submit(ctx context.Context, userID, surveyID string, answers map[string]domain.AnswerValue) (*domain.SurveyResponse, error) {
	survey, err := s.surveyRepo.GetSurveyWithQuestions(ctx, surveyID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get survey", err)
	}
	if survey == nil {
		return nil, domain.NewSurveyNotFoundError(surveyID)
	}
	if !survey.IsOpen(time.Now()) {
		return nil, domain.NewSurveyNotPublishedError(surveyID)
	}

	attemptNumber, err := s.authorizeAttempt(ctx, survey, userID)
	if err != nil {
		return nil, err
	}

	result, err := s.grader.GradeSubmission(ctx, survey, answers)
	if err != nil {
		return nil, domain.NewInternalError("Failed to grade submission", err)
	}

	response := domain.NewSurveyResponse(surveyID, userID, attemptNumber)
	response.TotalScore = result.Aggregate.TotalScore
	response.PercentageScore = result.Aggregate.PercentageScore
	response.IsPassed = result.Aggregate.IsPassed
	for _, record := range result.Records {
		answer := domain.NewResponseAnswer("", record.QuestionID, answers[record.QuestionID])
		answer.IsCorrect = record.IsCorrect
		answer.Score = record.Score
		answer.Essay = record.Essay
		response.Answers = append(response.Answers, answer)
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.submissionRepo.SaveResponse(txCtx, response)
	})
	if err != nil {
		return nil, domain.NewInternalError("Failed to save submission", err)
	}

	// The next my-result read must see this attempt, not a stale one.
	if s.resultCache != nil {
		if errInvalidate := s.resultCache.Invalidate(ctx, surveyID, userID); errInvalidate != nil {
			logger.Get().Warn("Failed to invalidate result cache after submission",
				zap.String("survey_id", surveyID),
				zap.String("user_id", userID),
				zap.Error(errInvalidate))
		}
	}

	monitoring.SubmissionsTotal.WithLabelValues(string(survey.Type)).Inc()
	logger.Get().Info("Submission graded",
		zap.String("survey_id", surveyID),
		zap.String("user_id", userID),
		zap.Int("attempt", attemptNumber),
		zap.Float64("total_score", response.TotalScore),
		zap.Float64("percentage", response.PercentageScore))

	return response, nil
}

// authorizeAttempt enforces the survey's attempt policy and returns the
// attempt number for the new submission.
func (s *submissionService) authorizeAttempt(ctx context.Context, survey *domain.Survey, userID string) (int, error) {
	latest, err := s.submissionRepo.GetLatestResponse(ctx, survey.ID, userID)
	if err != nil {
		return 0, domain.NewInternalError("Failed to check previous submissions", err)
	}

	if latest == nil {
		return 1, nil
	}
	if !survey.AllowMultipleAttempts {
		return 0, domain.NewAlreadySubmittedError()
	}

	if survey.MaxAttempts > 0 {
		count, errCount := s.submissionRepo.CountResponses(ctx, survey.ID, userID)
		if errCount != nil {
			return 0, domain.NewInternalError("Failed to count previous submissions", errCount)
		}
		if count >= survey.MaxAttempts {
			return 0, domain.NewAttemptLimitError(survey.MaxAttempts)
		}
	}

	return latest.AttemptNumber + 1, nil
}

// GetMyResult implements domain.SubmissionService.
func (s *submissionService) GetMyResult(ctx context.Context, userID, surveyID string) (*domain.SurveyResponse, error) {
	if s.resultCache != nil {
		cached, err := s.resultCache.Get(ctx, surveyID, userID)
		if err == nil && cached != nil {
			return cached, nil
		}
		if err != nil && !errors.Is(err, ErrResultNotCached) {
			logger.Get().Warn("Result cache read failed, falling back to repository",
				zap.String("survey_id", surveyID),
				zap.Error(err))
		}
	}

	response, err := s.submissionRepo.GetLatestResponse(ctx, surveyID, userID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get submission result", err)
	}
	if response == nil {
		return nil, domain.NewResponseNotFoundError(surveyID)
	}

	if s.resultCache != nil {
		if errPut := s.resultCache.Put(ctx, response); errPut != nil {
			logger.Get().Warn("Failed to cache submission result",
				zap.String("survey_id", surveyID),
				zap.Error(errPut))
		}
	}
	return response, nil
}

// Ensure submissionService implements domain.SubmissionService
var _ domain.SubmissionService = (*submissionService)(nil)
