package service

import (
	"context"
	"errors"
	"testing"

	"survey-grader/internal/cache"
	"survey-grader/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSurveyService_GetSurvey_CacheHit(t *testing.T) {
	mockRepo := new(MockSurveyRepository)
	mockCache := new(MockCache)
	svc := NewSurveyService(mockRepo, mockCache, nil)

	survey := newPublishedExam()
	data, err := encodeCachedSurvey(survey)
	require.NoError(t, err)

	cacheKey := cache.GenerateCacheKey("survey", "detail", "survey1")
	mockCache.On("Get", mock.Anything, cacheKey).Return(string(data), nil)

	got, err := svc.GetSurvey(context.Background(), "survey1")

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, survey.ID, got.ID)
	assert.Equal(t, survey.Title, got.Title)
	assert.Equal(t, domain.SurveyStatusPublished, got.Status)
	require.Len(t, got.Questions, 3)

	// Answer keys survive the cache round trip, so grading can read
	// from the same entry.
	single := got.QuestionByID("q-single")
	require.NotNil(t, single)
	require.NotNil(t, single.CorrectAnswer)
	assert.Equal(t, []string{"B"}, single.CorrectAnswer.Members(domain.NormalizeOption))

	multi := got.QuestionByID("q-multi")
	require.NotNil(t, multi)
	assert.ElementsMatch(t, []string{"A", "C"}, multi.CorrectAnswer.Members(domain.NormalizeOption))

	mockRepo.AssertNotCalled(t, "GetSurveyWithQuestions")
	mockCache.AssertExpectations(t)
}

func TestSurveyService_GetSurvey_CacheMissLoadsAndCaches(t *testing.T) {
	mockRepo := new(MockSurveyRepository)
	mockCache := new(MockCache)
	svc := NewSurveyService(mockRepo, mockCache, nil)

	survey := newPublishedExam()
	cacheKey := cache.GenerateCacheKey("survey", "detail", "survey1")

	mockCache.On("Get", mock.Anything, cacheKey).Return("", domain.ErrCacheMiss)
	mockRepo.On("GetSurveyWithQuestions", mock.Anything, "survey1").Return(survey, nil)
	mockCache.On("Set", mock.Anything, cacheKey, mock.AnythingOfType("string"), defaultSurveyDetailTTL).Return(nil)

	got, err := svc.GetSurvey(context.Background(), "survey1")

	require.NoError(t, err)
	assert.Equal(t, survey, got)
	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestSurveyService_GetSurvey_NotFound(t *testing.T) {
	mockRepo := new(MockSurveyRepository)
	mockCache := new(MockCache)
	svc := NewSurveyService(mockRepo, mockCache, nil)

	cacheKey := cache.GenerateCacheKey("survey", "detail", "missing")
	mockCache.On("Get", mock.Anything, cacheKey).Return("", domain.ErrCacheMiss)
	mockRepo.On("GetSurveyWithQuestions", mock.Anything, "missing").Return(nil, nil)

	got, err := svc.GetSurvey(context.Background(), "missing")

	assert.Nil(t, got)
	var domainErr *domain.DomainError
	require.True(t, errors.As(err, &domainErr), "Error should be a domain.DomainError")
	assert.Equal(t, domain.ErrSurveyNotFound, domainErr.Code)
	mockCache.AssertNotCalled(t, "Set")
}

func TestSurveyService_GetSurvey_CorruptCacheEntryFallsBack(t *testing.T) {
	mockRepo := new(MockSurveyRepository)
	mockCache := new(MockCache)
	svc := NewSurveyService(mockRepo, mockCache, nil)

	survey := newPublishedExam()
	cacheKey := cache.GenerateCacheKey("survey", "detail", "survey1")

	mockCache.On("Get", mock.Anything, cacheKey).Return("{not json", nil)
	mockRepo.On("GetSurveyWithQuestions", mock.Anything, "survey1").Return(survey, nil)
	mockCache.On("Set", mock.Anything, cacheKey, mock.AnythingOfType("string"), defaultSurveyDetailTTL).Return(nil)

	got, err := svc.GetSurvey(context.Background(), "survey1")

	require.NoError(t, err)
	assert.Equal(t, survey, got)
	mockRepo.AssertExpectations(t)
}

func TestSurveyService_GetSurvey_NoCacheConfigured(t *testing.T) {
	mockRepo := new(MockSurveyRepository)
	svc := NewSurveyService(mockRepo, nil, nil)

	survey := newPublishedExam()
	mockRepo.On("GetSurveyWithQuestions", mock.Anything, "survey1").Return(survey, nil)

	got, err := svc.GetSurvey(context.Background(), "survey1")

	require.NoError(t, err)
	assert.Equal(t, survey, got)
	mockRepo.AssertExpectations(t)
}

func TestSurveyService_ListPublishedSurveys(t *testing.T) {
	mockRepo := new(MockSurveyRepository)
	svc := NewSurveyService(mockRepo, nil, nil)

	surveys := []*domain.Survey{newPublishedExam()}
	mockRepo.On("ListPublishedSurveys", mock.Anything).Return(surveys, nil)

	got, err := svc.ListPublishedSurveys(context.Background())

	require.NoError(t, err)
	assert.Equal(t, surveys, got)
}

func TestSurveyService_ListPublishedSurveys_RepositoryError(t *testing.T) {
	mockRepo := new(MockSurveyRepository)
	svc := NewSurveyService(mockRepo, nil, nil)

	repoErr := errors.New("connection reset")
	mockRepo.On("ListPublishedSurveys", mock.Anything).Return(nil, repoErr)

	got, err := svc.ListPublishedSurveys(context.Background())

	assert.Nil(t, got)
	var domainErr *domain.DomainError
	require.True(t, errors.As(err, &domainErr), "Error should be a domain.DomainError")
	assert.Equal(t, domain.ErrInternal, domainErr.Code)
	assert.ErrorIs(t, err, repoErr)
}
