package service

import (
	"context"
	"encoding/json"
	"time"

	"survey-grader/internal/cache"
	"survey-grader/internal/config"
	"survey-grader/internal/domain"
	"survey-grader/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const defaultSurveyDetailTTL = 10 * time.Minute

// cachedSurvey is the cache representation of a survey with its
// questions. Answer keys are kept, so the cache serves grading reads as
// well as the public detail view; handlers strip the keys before
// rendering.
type cachedSurvey struct {
	ID                    string           `json:"id"`
	Title                 string           `json:"title"`
	Description           string           `json:"description,omitempty"`
	Type                  string           `json:"type"`
	Status                string           `json:"status"`
	TotalScore            float64          `json:"total_score"`
	PassScore             *float64         `json:"pass_score,omitempty"`
	TimeLimitMinutes      int              `json:"time_limit_minutes"`
	AllowMultipleAttempts bool             `json:"allow_multiple_attempts"`
	MaxAttempts           int              `json:"max_attempts"`
	StartAt               *time.Time       `json:"start_at,omitempty"`
	EndAt                 *time.Time       `json:"end_at,omitempty"`
	CreatedBy             string           `json:"created_by,omitempty"`
	Questions             []cachedQuestion `json:"questions"`
	CreatedAt             time.Time        `json:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at"`
}

type cachedQuestion struct {
	ID              string          `json:"id"`
	SurveyID        string          `json:"survey_id"`
	Type            string          `json:"type"`
	Title           string          `json:"title"`
	Description     string          `json:"description,omitempty"`
	Options         []domain.Option `json:"options,omitempty"`
	CorrectAnswer   json.RawMessage `json:"correct_answer,omitempty"`
	Score           float64         `json:"score"`
	GradingCriteria json.RawMessage `json:"grading_criteria,omitempty"`
	MinWordCount    int             `json:"min_word_count"`
	Required        bool            `json:"required"`
	DisplayOrder    int             `json:"display_order"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// surveyService implements domain.SurveyService with a Redis-backed
// detail cache.
type surveyService struct {
	repo       domain.SurveyRepository
	cacheStore domain.Cache
	ttl        time.Duration
	sfGroup    singleflight.Group
}

// NewSurveyService creates a new survey service. cacheStore may be nil,
// in which case every read goes to the repository.
func NewSurveyService(repo domain.SurveyRepository, cacheStore domain.Cache, cfg *config.Config) domain.SurveyService {
	ttl := defaultSurveyDetailTTL
	if cfg != nil {
		ttl = cfg.ParseTTLStringOrDefault(cfg.CacheTTLs.SurveyDetail, defaultSurveyDetailTTL)
	}
	return &surveyService{
		repo:       repo,
		cacheStore: cacheStore,
		ttl:        ttl,
	}
}

// ListPublishedSurveys implements domain.SurveyService
func (s *surveyService) ListPublishedSurveys(ctx context.Context) ([]*domain.Survey, error) {
	surveys, err := s.repo.ListPublishedSurveys(ctx)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list published surveys", err)
	}
	return surveys, nil
}

// GetSurvey implements domain.SurveyService. Concurrent misses for the
// same survey are collapsed into a single repository read.
func (s *surveyService) GetSurvey(ctx context.Context, surveyID string) (*domain.Survey, error) {
	cacheKey := cache.GenerateCacheKey("survey", "detail", surveyID)

	if s.cacheStore != nil {
		cached, err := s.cacheStore.Get(ctx, cacheKey)
		if err == nil {
			if survey, errDecode := decodeCachedSurvey([]byte(cached)); errDecode == nil {
				return survey, nil
			} else {
				logger.Get().Warn("Failed to decode cached survey, falling back to repository",
					zap.String("survey_id", surveyID),
					zap.Error(errDecode))
			}
		} else if err != domain.ErrCacheMiss {
			logger.Get().Error("Survey detail cache read failed",
				zap.String("key", cacheKey),
				zap.Error(err))
		}
	}

	res, err, _ := s.sfGroup.Do(cacheKey, func() (interface{}, error) {
		survey, fetchErr := s.repo.GetSurveyWithQuestions(ctx, surveyID)
		if fetchErr != nil {
			return nil, domain.NewInternalError("Failed to get survey", fetchErr)
		}
		if survey == nil {
			return nil, domain.NewSurveyNotFoundError(surveyID)
		}

		if s.cacheStore != nil {
			if data, errEncode := encodeCachedSurvey(survey); errEncode != nil {
				logger.Get().Error("Failed to encode survey for caching",
					zap.String("survey_id", surveyID),
					zap.Error(errEncode))
			} else if errSet := s.cacheStore.Set(ctx, cacheKey, string(data), s.ttl); errSet != nil {
				logger.Get().Error("Failed to cache survey detail",
					zap.String("key", cacheKey),
					zap.Error(errSet))
			}
		}
		return survey, nil
	})
	if err != nil {
		return nil, err
	}

	survey, ok := res.(*domain.Survey)
	if !ok {
		return nil, domain.NewInternalError("unexpected type from singleflight for survey detail", nil)
	}
	return survey, nil
}

func encodeCachedSurvey(survey *domain.Survey) ([]byte, error) {
	entry := cachedSurvey{
		ID:                    survey.ID,
		Title:                 survey.Title,
		Description:           survey.Description,
		Type:                  string(survey.Type),
		Status:                string(survey.Status),
		TotalScore:            survey.TotalScore,
		PassScore:             survey.PassScore,
		TimeLimitMinutes:      survey.TimeLimitMinutes,
		AllowMultipleAttempts: survey.AllowMultipleAttempts,
		MaxAttempts:           survey.MaxAttempts,
		StartAt:               survey.StartAt,
		EndAt:                 survey.EndAt,
		CreatedBy:             survey.CreatedBy,
		Questions:             make([]cachedQuestion, 0, len(survey.Questions)),
		CreatedAt:             survey.CreatedAt,
		UpdatedAt:             survey.UpdatedAt,
	}

	for _, q := range survey.Questions {
		key, err := domain.MarshalAnswerKey(q.CorrectAnswer)
		if err != nil {
			return nil, err
		}
		entry.Questions = append(entry.Questions, cachedQuestion{
			ID:              q.ID,
			SurveyID:        q.SurveyID,
			Type:            string(q.Type),
			Title:           q.Title,
			Description:     q.Description,
			Options:         q.Options,
			CorrectAnswer:   key,
			Score:           q.Score,
			GradingCriteria: q.GradingCriteria,
			MinWordCount:    q.MinWordCount,
			Required:        q.Required,
			DisplayOrder:    q.DisplayOrder,
			CreatedAt:       q.CreatedAt,
			UpdatedAt:       q.UpdatedAt,
		})
	}
	return json.Marshal(entry)
}

func decodeCachedSurvey(data []byte) (*domain.Survey, error) {
	var entry cachedSurvey
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}

	survey := &domain.Survey{
		ID:                    entry.ID,
		Title:                 entry.Title,
		Description:           entry.Description,
		Type:                  domain.SurveyType(entry.Type),
		Status:                domain.SurveyStatus(entry.Status),
		TotalScore:            entry.TotalScore,
		PassScore:             entry.PassScore,
		TimeLimitMinutes:      entry.TimeLimitMinutes,
		AllowMultipleAttempts: entry.AllowMultipleAttempts,
		MaxAttempts:           entry.MaxAttempts,
		StartAt:               entry.StartAt,
		EndAt:                 entry.EndAt,
		CreatedBy:             entry.CreatedBy,
		Questions:             make([]*domain.Question, 0, len(entry.Questions)),
		CreatedAt:             entry.CreatedAt,
		UpdatedAt:             entry.UpdatedAt,
	}

	for _, q := range entry.Questions {
		key, err := domain.ParseAnswerKey(q.CorrectAnswer)
		if err != nil {
			return nil, err
		}
		survey.Questions = append(survey.Questions, &domain.Question{
			ID:              q.ID,
			SurveyID:        q.SurveyID,
			Type:            domain.QuestionType(q.Type),
			Title:           q.Title,
			Description:     q.Description,
			Options:         q.Options,
			CorrectAnswer:   key,
			Score:           q.Score,
			GradingCriteria: q.GradingCriteria,
			MinWordCount:    q.MinWordCount,
			Required:        q.Required,
			DisplayOrder:    q.DisplayOrder,
			CreatedAt:       q.CreatedAt,
			UpdatedAt:       q.UpdatedAt,
		})
	}
	return survey, nil
}

// Ensure surveyService implements domain.SurveyService
var _ domain.SurveyService = (*surveyService)(nil)
