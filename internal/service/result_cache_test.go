package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"survey-grader/internal/domain"
	"survey-grader/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ManualMockCache for domain.Cache interface
type ManualMockCache struct {
	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key string, value string, ttl time.Duration) error
	DeleteFunc func(ctx context.Context, key string) error
	HGetFunc   func(ctx context.Context, key, field string) (string, error)
	HSetFunc   func(ctx context.Context, key string, field string, value string) error
	PingFunc   func(ctx context.Context) error
}

func (m *ManualMockCache) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	return "", errors.New("GetFunc not set")
}

func (m *ManualMockCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	return errors.New("SetFunc not set")
}

func (m *ManualMockCache) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	return errors.New("DeleteFunc not set")
}

func (m *ManualMockCache) HGet(ctx context.Context, key, field string) (string, error) {
	if m.HGetFunc != nil {
		return m.HGetFunc(ctx, key, field)
	}
	return "", errors.New("HGetFunc not set")
}

func (m *ManualMockCache) HSet(ctx context.Context, key string, field string, value string) error {
	if m.HSetFunc != nil {
		return m.HSetFunc(ctx, key, field, value)
	}
	return errors.New("HSetFunc not set")
}

func (m *ManualMockCache) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	return nil, errors.New("HGetAllFunc not set")
}

func (m *ManualMockCache) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return errors.New("ExpireFunc not set")
}

func (m *ManualMockCache) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return errors.New("PingFunc not set")
}

var _ domain.Cache = (*ManualMockCache)(nil)

// newGradedResponse builds a stored submission with a scalar answer, a
// list answer and an LLM-graded essay answer.
func newGradedResponse() *domain.SurveyResponse {
	passed := true
	response := domain.NewSurveyResponse("survey1", "user1", 1)
	response.ID = "resp1"
	response.TotalScore = 10.5
	response.PercentageScore = 65.625
	response.IsPassed = &passed

	single := domain.NewResponseAnswer("resp1", "q-single", domain.NewScalarValue("B"))
	single.ID = "ans1"
	single.IsCorrect = true
	single.Score = 2

	multi := domain.NewResponseAnswer("resp1", "q-multi", domain.NewListValue([]string{"A", "C"}))
	multi.ID = "ans2"
	multi.IsCorrect = false

	essay := domain.NewResponseAnswer("resp1", "q-essay", domain.NewScalarValue("一段论述。"))
	essay.ID = "ans3"
	essay.IsCorrect = true
	essay.Score = 8.5
	essay.Essay = &domain.EssayEvaluation{
		Score:      8.5,
		MaxScore:   10,
		Percentage: 85,
		Level:      domain.LevelExcellent,
		Strengths:  []string{"结构清晰"},
		Comment:    "论述完整。",
		Source:     domain.EvaluationSourceLLM,
	}

	response.Answers = []*domain.ResponseAnswer{single, multi, essay}
	return response
}

func TestResultCacheService_PutThenGet(t *testing.T) {
	mockCache := &ManualMockCache{}
	ttl := 5 * time.Minute
	cacheService := service.NewResultCacheService(mockCache, ttl)
	ctx := context.Background()

	expectedKey := "surveygrader:submission:result:survey1:user1"

	var stored string
	mockCache.SetFunc = func(ctx context.Context, key string, value string, duration time.Duration) error {
		assert.Equal(t, expectedKey, key)
		assert.Equal(t, ttl, duration)
		stored = value
		return nil
	}

	require.NoError(t, cacheService.Put(ctx, newGradedResponse()))
	require.NotEmpty(t, stored)

	mockCache.GetFunc = func(ctx context.Context, key string) (string, error) {
		assert.Equal(t, expectedKey, key)
		return stored, nil
	}

	got, err := cacheService.Get(ctx, "survey1", "user1")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "resp1", got.ID)
	assert.Equal(t, 1, got.AttemptNumber)
	assert.Equal(t, 65.625, got.PercentageScore)
	require.NotNil(t, got.IsPassed)
	assert.True(t, *got.IsPassed)

	require.Len(t, got.Answers, 3)
	scalar, ok := got.Answers[0].Answer.Scalar()
	require.True(t, ok)
	assert.Equal(t, "B", scalar)

	list, ok := got.Answers[1].Answer.List()
	require.True(t, ok)
	assert.Equal(t, []string{"A", "C"}, list)

	essay := got.Answers[2]
	require.NotNil(t, essay.Essay)
	assert.Equal(t, 8.5, essay.Essay.Score)
	assert.Equal(t, domain.LevelExcellent, essay.Essay.Level)
	// Provenance is not serialized, so a cached evaluation comes back
	// without its source marker.
	assert.Equal(t, domain.EvaluationSource(""), essay.Essay.Source)
}

func TestResultCacheService_Get_Miss(t *testing.T) {
	mockCache := &ManualMockCache{}
	cacheService := service.NewResultCacheService(mockCache, time.Minute)
	ctx := context.Background()

	t.Run("Cache Miss", func(t *testing.T) {
		mockCache.GetFunc = func(ctx context.Context, key string) (string, error) {
			return "", domain.ErrCacheMiss
		}

		got, err := cacheService.Get(ctx, "survey1", "user1")
		assert.Nil(t, got)
		assert.Equal(t, service.ErrResultNotCached, err)
	})

	t.Run("Empty Payload", func(t *testing.T) {
		mockCache.GetFunc = func(ctx context.Context, key string) (string, error) {
			return "", nil
		}

		got, err := cacheService.Get(ctx, "survey1", "user1")
		assert.Nil(t, got)
		assert.Equal(t, service.ErrResultNotCached, err)
	})

	t.Run("Cache Error", func(t *testing.T) {
		cacheErr := errors.New("connection refused")
		mockCache.GetFunc = func(ctx context.Context, key string) (string, error) {
			return "", cacheErr
		}

		got, err := cacheService.Get(ctx, "survey1", "user1")
		assert.Nil(t, got)
		var domainErr *domain.DomainError
		assert.True(t, errors.As(err, &domainErr), "Error should be a domain.DomainError")
		if domainErr != nil {
			assert.Equal(t, domain.ErrInternal, domainErr.Code)
		}
	})

	t.Run("Malformed Payload", func(t *testing.T) {
		mockCache.GetFunc = func(ctx context.Context, key string) (string, error) {
			return "{not json", nil
		}

		got, err := cacheService.Get(ctx, "survey1", "user1")
		assert.Nil(t, got)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to unmarshal result")
	})
}

func TestResultCacheService_Invalidate(t *testing.T) {
	mockCache := &ManualMockCache{}
	cacheService := service.NewResultCacheService(mockCache, time.Minute)

	var deletedKey string
	mockCache.DeleteFunc = func(ctx context.Context, key string) error {
		deletedKey = key
		return nil
	}

	require.NoError(t, cacheService.Invalidate(context.Background(), "survey1", "user1"))
	assert.Equal(t, "surveygrader:submission:result:survey1:user1", deletedKey)
}

func TestNewResultCacheService_NilCache(t *testing.T) {
	cacheService := service.NewResultCacheService(nil, time.Minute)
	ctx := context.Background()

	assert.NoError(t, cacheService.Put(ctx, newGradedResponse()))
	assert.NoError(t, cacheService.Invalidate(ctx, "survey1", "user1"))

	got, err := cacheService.Get(ctx, "survey1", "user1")
	assert.Nil(t, got)
	assert.Equal(t, service.ErrResultNotCached, err)
}
