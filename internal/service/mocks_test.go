package service

import (
	"context"
	"time"

	"survey-grader/internal/domain"

	"github.com/stretchr/testify/mock"
)

// --- MockTextGenerator ---

type MockTextGenerator struct {
	mock.Mock
}

func (m *MockTextGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// --- MockEssayEvaluator ---

type MockEssayEvaluator struct {
	mock.Mock
}

func (m *MockEssayEvaluator) GradeEssay(ctx context.Context, question *domain.Question, studentAnswer string) *domain.EssayEvaluation {
	args := m.Called(ctx, question, studentAnswer)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*domain.EssayEvaluation)
}

// --- MockCache ---

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCache) HGet(ctx context.Context, key, field string) (string, error) {
	args := m.Called(ctx, key, field)
	return args.String(0), args.Error(1)
}

func (m *MockCache) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockCache) HSet(ctx context.Context, key string, field string, value string) error {
	args := m.Called(ctx, key, field, value)
	return args.Error(0)
}

func (m *MockCache) Expire(ctx context.Context, key string, expiration time.Duration) error {
	args := m.Called(ctx, key, expiration)
	return args.Error(0)
}

var _ domain.Cache = (*MockCache)(nil)

// --- MockEmbeddingService ---

type MockEmbeddingService struct {
	mock.Mock
}

func (m *MockEmbeddingService) Generate(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

var _ domain.EmbeddingService = (*MockEmbeddingService)(nil)

// --- MockSurveyRepository ---

type MockSurveyRepository struct {
	mock.Mock
}

func (m *MockSurveyRepository) GetSurveyByID(ctx context.Context, surveyID string) (*domain.Survey, error) {
	args := m.Called(ctx, surveyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Survey), args.Error(1)
}

func (m *MockSurveyRepository) GetSurveyWithQuestions(ctx context.Context, surveyID string) (*domain.Survey, error) {
	args := m.Called(ctx, surveyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Survey), args.Error(1)
}

func (m *MockSurveyRepository) ListPublishedSurveys(ctx context.Context) ([]*domain.Survey, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Survey), args.Error(1)
}

func (m *MockSurveyRepository) SaveSurvey(ctx context.Context, survey *domain.Survey) error {
	args := m.Called(ctx, survey)
	return args.Error(0)
}

func (m *MockSurveyRepository) SaveQuestion(ctx context.Context, question *domain.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

var _ domain.SurveyRepository = (*MockSurveyRepository)(nil)

// --- MockSubmissionRepository ---

type MockSubmissionRepository struct {
	mock.Mock
}

func (m *MockSubmissionRepository) SaveResponse(ctx context.Context, response *domain.SurveyResponse) error {
	args := m.Called(ctx, response)
	return args.Error(0)
}

func (m *MockSubmissionRepository) GetLatestResponse(ctx context.Context, surveyID, userID string) (*domain.SurveyResponse, error) {
	args := m.Called(ctx, surveyID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SurveyResponse), args.Error(1)
}

func (m *MockSubmissionRepository) CountResponses(ctx context.Context, surveyID, userID string) (int, error) {
	args := m.Called(ctx, surveyID, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockSubmissionRepository) GetResponseWithAnswers(ctx context.Context, responseID string) (*domain.SurveyResponse, error) {
	args := m.Called(ctx, responseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SurveyResponse), args.Error(1)
}

var _ domain.SubmissionRepository = (*MockSubmissionRepository)(nil)

// --- MockTransactionManager ---

// MockTransactionManager runs the given function directly, without a real
// transaction.
type MockTransactionManager struct {
	mock.Mock
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

var _ domain.TransactionManager = (*MockTransactionManager)(nil)

// --- MockGradingService ---

type MockGradingService struct {
	mock.Mock
}

func (m *MockGradingService) GradeSubmission(ctx context.Context, survey *domain.Survey, answers map[string]domain.AnswerValue) (*domain.SubmissionResult, error) {
	args := m.Called(ctx, survey, answers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SubmissionResult), args.Error(1)
}

var _ domain.GradingService = (*MockGradingService)(nil)

// --- MockResultCacheService ---

type MockResultCacheService struct {
	mock.Mock
}

func (m *MockResultCacheService) Put(ctx context.Context, response *domain.SurveyResponse) error {
	args := m.Called(ctx, response)
	return args.Error(0)
}

func (m *MockResultCacheService) Get(ctx context.Context, surveyID, userID string) (*domain.SurveyResponse, error) {
	args := m.Called(ctx, surveyID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SurveyResponse), args.Error(1)
}

func (m *MockResultCacheService) Invalidate(ctx context.Context, surveyID, userID string) error {
	args := m.Called(ctx, surveyID, userID)
	return args.Error(0)
}

var _ ResultCacheService = (*MockResultCacheService)(nil)
