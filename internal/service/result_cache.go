package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"survey-grader/internal/cache"
	"survey-grader/internal/domain"
	"survey-grader/internal/logger"

	"go.uber.org/zap"
)

// ErrResultNotCached is returned when no result is cached for the survey
// and user.
var ErrResultNotCached = errors.New("submission result not found in cache")

// ResultCacheService caches the latest graded submission per survey and
// user, backing the my-result endpoint.
type ResultCacheService interface {
	Put(ctx context.Context, response *domain.SurveyResponse) error
	Get(ctx context.Context, surveyID, userID string) (*domain.SurveyResponse, error)
	Invalidate(ctx context.Context, surveyID, userID string) error
}

// cachedResponse is the cache representation of a graded submission.
type cachedResponse struct {
	ID              string                 `json:"id"`
	SurveyID        string                 `json:"survey_id"`
	UserID          string                 `json:"user_id"`
	AttemptNumber   int                    `json:"attempt_number"`
	TotalScore      float64                `json:"total_score"`
	PercentageScore float64                `json:"percentage_score"`
	IsPassed        *bool                  `json:"is_passed"`
	SubmittedAt     time.Time              `json:"submitted_at"`
	Answers         []cachedResponseAnswer `json:"answers"`
}

type cachedResponseAnswer struct {
	ID         string                  `json:"id"`
	QuestionID string                  `json:"question_id"`
	Answer     json.RawMessage         `json:"answer"`
	IsCorrect  bool                    `json:"is_correct"`
	Score      float64                 `json:"score"`
	Essay      *domain.EssayEvaluation `json:"essay_evaluation,omitempty"`
}

// resultCacheServiceImpl implements ResultCacheService using a generic cache.
type resultCacheServiceImpl struct {
	cache domain.Cache
	ttl   time.Duration
}

// NewResultCacheService creates a new result cache. A nil cache yields a
// no-op implementation so callers need no nil checks.
func NewResultCacheService(cacheStore domain.Cache, ttl time.Duration) ResultCacheService {
	if cacheStore == nil {
		logger.Get().Warn("ResultCacheService initialized with nil cache. Service will be no-op.")
		return &noopResultCacheService{}
	}
	return &resultCacheServiceImpl{
		cache: cacheStore,
		ttl:   ttl,
	}
}

func (s *resultCacheServiceImpl) generateKey(surveyID, userID string) string {
	return cache.GenerateCacheKey("submission", "result", surveyID, userID)
}

// Put stores the graded submission in the cache.
func (s *resultCacheServiceImpl) Put(ctx context.Context, response *domain.SurveyResponse) error {
	if response == nil {
		return domain.NewInvalidInputError("cannot cache nil response")
	}

	entry := cachedResponse{
		ID:              response.ID,
		SurveyID:        response.SurveyID,
		UserID:          response.UserID,
		AttemptNumber:   response.AttemptNumber,
		TotalScore:      response.TotalScore,
		PercentageScore: response.PercentageScore,
		IsPassed:        response.IsPassed,
		SubmittedAt:     response.SubmittedAt,
		Answers:         make([]cachedResponseAnswer, 0, len(response.Answers)),
	}
	for _, answer := range response.Answers {
		value, err := json.Marshal(answer.Answer)
		if err != nil {
			return domain.NewInternalError("failed to marshal answer value for caching", err)
		}
		entry.Answers = append(entry.Answers, cachedResponseAnswer{
			ID:         answer.ID,
			QuestionID: answer.QuestionID,
			Answer:     value,
			IsCorrect:  answer.IsCorrect,
			Score:      answer.Score,
			Essay:      answer.Essay,
		})
	}

	key := s.generateKey(response.SurveyID, response.UserID)
	dataBytes, err := json.Marshal(entry)
	if err != nil {
		logger.Get().Error("Failed to marshal submission result for caching",
			zap.Error(err), zap.String("surveyID", response.SurveyID))
		return domain.NewInternalError("failed to marshal result for caching", err)
	}

	if err := s.cache.Set(ctx, key, string(dataBytes), s.ttl); err != nil {
		logger.Get().Error("Failed to cache submission result", zap.Error(err), zap.String("key", key))
		return domain.NewInternalError(fmt.Sprintf("failed to set submission result to cache for key %s", key), err)
	}
	logger.Get().Debug("Successfully cached submission result", zap.String("key", key), zap.Duration("ttl", s.ttl))
	return nil
}

// Get retrieves the cached graded submission, or ErrResultNotCached.
func (s *resultCacheServiceImpl) Get(ctx context.Context, surveyID, userID string) (*domain.SurveyResponse, error) {
	key := s.generateKey(surveyID, userID)
	dataString, err := s.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			logger.Get().Debug("Submission result cache miss", zap.String("key", key))
			return nil, ErrResultNotCached
		}
		logger.Get().Error("Failed to get submission result from cache", zap.Error(err), zap.String("key", key))
		return nil, domain.NewInternalError(fmt.Sprintf("failed to get submission result from cache for key %s", key), err)
	}
	if dataString == "" {
		return nil, ErrResultNotCached
	}

	var entry cachedResponse
	if err := json.Unmarshal([]byte(dataString), &entry); err != nil {
		logger.Get().Error("Failed to unmarshal cached submission result", zap.Error(err), zap.String("key", key))
		return nil, domain.NewInternalError(fmt.Sprintf("failed to unmarshal result from cache for key %s", key), err)
	}

	response := &domain.SurveyResponse{
		ID:              entry.ID,
		SurveyID:        entry.SurveyID,
		UserID:          entry.UserID,
		AttemptNumber:   entry.AttemptNumber,
		TotalScore:      entry.TotalScore,
		PercentageScore: entry.PercentageScore,
		IsPassed:        entry.IsPassed,
		SubmittedAt:     entry.SubmittedAt,
		Answers:         make([]*domain.ResponseAnswer, 0, len(entry.Answers)),
	}
	for _, answer := range entry.Answers {
		value, errParse := domain.ParseAnswerValue(answer.Answer)
		if errParse != nil {
			logger.Get().Error("Malformed answer value in cached submission result",
				zap.Error(errParse), zap.String("key", key))
			return nil, domain.NewInternalError("malformed answer value in cached result", errParse)
		}
		response.Answers = append(response.Answers, &domain.ResponseAnswer{
			ID:         answer.ID,
			ResponseID: entry.ID,
			QuestionID: answer.QuestionID,
			Answer:     value,
			IsCorrect:  answer.IsCorrect,
			Score:      answer.Score,
			Essay:      answer.Essay,
		})
	}
	return response, nil
}

// Invalidate drops the cached result so the next read sees fresh data.
func (s *resultCacheServiceImpl) Invalidate(ctx context.Context, surveyID, userID string) error {
	key := s.generateKey(surveyID, userID)
	if err := s.cache.Delete(ctx, key); err != nil {
		logger.Get().Error("Failed to invalidate submission result cache", zap.Error(err), zap.String("key", key))
		return domain.NewInternalError(fmt.Sprintf("failed to invalidate result cache for key %s", key), err)
	}
	return nil
}

// noopResultCacheService is used when caching is disabled.
type noopResultCacheService struct{}

func (s *noopResultCacheService) Put(ctx context.Context, response *domain.SurveyResponse) error {
	return nil
}

func (s *noopResultCacheService) Get(ctx context.Context, surveyID, userID string) (*domain.SurveyResponse, error) {
	return nil, ErrResultNotCached
}

func (s *noopResultCacheService) Invalidate(ctx context.Context, surveyID, userID string) error {
	return nil
}
