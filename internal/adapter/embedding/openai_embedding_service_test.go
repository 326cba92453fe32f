package embedding

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"testing"
	"time"

	"survey-grader/internal/config"
	"survey-grader/internal/domain"
	"survey-grader/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockCache is a mock type for the domain.Cache interface
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
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

func (m *MockCache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	args := m.Called(ctx, key, ttl)
	return args.Error(0)
}

var _ domain.Cache = (*MockCache)(nil)

func embeddingTestConfig() *config.Config {
	return &config.Config{
		CacheTTLs: config.CacheTTLConfig{Embedding: "30m"},
	}
}

func gobEncodedEmbedding(t *testing.T, embedding []float32) string {
	t.Helper()
	var buffer bytes.Buffer
	if err := gob.NewEncoder(&buffer).Encode(embedding); err != nil {
		t.Fatalf("failed to encode embedding: %v", err)
	}
	return buffer.String()
}

func TestNewOpenAIEmbeddingService(t *testing.T) {
	mockCache := new(MockCache)
	cfg := embeddingTestConfig()
	apiKey := "fake-api-key"
	modelName := "text-embedding-ada-002"

	t.Run("success", func(t *testing.T) {
		_, err := NewOpenAIEmbeddingService(apiKey, modelName, mockCache, cfg)
		assert.NoError(t, err)
	})

	t.Run("empty model name uses default", func(t *testing.T) {
		_, err := NewOpenAIEmbeddingService(apiKey, "", mockCache, cfg)
		assert.NoError(t, err)
	})

	t.Run("empty api key", func(t *testing.T) {
		_, err := NewOpenAIEmbeddingService("", modelName, mockCache, cfg)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "openai API key cannot be empty")
	})

	t.Run("nil cache", func(t *testing.T) {
		_, err := NewOpenAIEmbeddingService(apiKey, modelName, nil, cfg)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "cache instance cannot be nil")
	})

	t.Run("nil config", func(t *testing.T) {
		_, err := NewOpenAIEmbeddingService(apiKey, modelName, mockCache, nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "config instance cannot be nil")
	})
}

func TestOpenAIEmbeddingService_Generate(t *testing.T) {
	ctx := context.Background()

	textToEmbed := "test openai text"
	expectedEmbedding := []float32{0.4, 0.5, 0.6}
	cacheKey := "surveygrader:embedding:openai:" + util.HashString(textToEmbed)
	expectedTTL := 30 * time.Minute

	t.Run("cache miss, then success", func(t *testing.T) {
		mockEmb := new(MockEmbedder)
		mockCache := new(MockCache)
		service := &OpenAIEmbeddingService{embedder: mockEmb, cache: mockCache, config: embeddingTestConfig()}

		mockCache.On("Get", ctx, cacheKey).Return("", domain.ErrCacheMiss).Once()
		mockEmb.On("EmbedQuery", ctx, textToEmbed).Return(expectedEmbedding, nil).Once()
		mockCache.On("Set", ctx, cacheKey, gobEncodedEmbedding(t, expectedEmbedding), expectedTTL).Return(nil).Once()

		result, err := service.Generate(ctx, textToEmbed)
		assert.NoError(t, err)
		assert.Equal(t, expectedEmbedding, result)
		mockEmb.AssertExpectations(t)
		mockCache.AssertExpectations(t)
	})

	t.Run("cache hit", func(t *testing.T) {
		mockEmb := new(MockEmbedder)
		mockCache := new(MockCache)
		service := &OpenAIEmbeddingService{embedder: mockEmb, cache: mockCache, config: embeddingTestConfig()}

		mockCache.On("Get", ctx, cacheKey).Return(gobEncodedEmbedding(t, expectedEmbedding), nil).Once()

		result, err := service.Generate(ctx, textToEmbed)
		assert.NoError(t, err)
		assert.Equal(t, expectedEmbedding, result)
		mockCache.AssertExpectations(t)
		mockEmb.AssertNotCalled(t, "EmbedQuery", ctx, textToEmbed)
	})

	t.Run("empty text", func(t *testing.T) {
		service := &OpenAIEmbeddingService{embedder: new(MockEmbedder), cache: new(MockCache), config: embeddingTestConfig()}
		_, err := service.Generate(ctx, "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "input text cannot be empty")
	})

	t.Run("embedder error, cache miss", func(t *testing.T) {
		mockEmb := new(MockEmbedder)
		mockCache := new(MockCache)
		service := &OpenAIEmbeddingService{embedder: mockEmb, cache: mockCache, config: embeddingTestConfig()}
		embedderErr := errors.New("openai failed")

		mockCache.On("Get", ctx, cacheKey).Return("", domain.ErrCacheMiss).Once()
		mockEmb.On("EmbedQuery", ctx, textToEmbed).Return(nil, embedderErr).Once()

		_, err := service.Generate(ctx, textToEmbed)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to generate embedding using OpenAI")
		mockEmb.AssertExpectations(t)
		mockCache.AssertExpectations(t)
		mockCache.AssertNotCalled(t, "Set")
	})

	t.Run("cache get error (not miss), then success", func(t *testing.T) {
		mockEmb := new(MockEmbedder)
		mockCache := new(MockCache)
		service := &OpenAIEmbeddingService{embedder: mockEmb, cache: mockCache, config: embeddingTestConfig()}

		mockCache.On("Get", ctx, cacheKey).Return("", errors.New("random cache error")).Once()
		mockEmb.On("EmbedQuery", ctx, textToEmbed).Return(expectedEmbedding, nil).Once()
		mockCache.On("Set", ctx, cacheKey, gobEncodedEmbedding(t, expectedEmbedding), expectedTTL).Return(nil).Once()

		result, err := service.Generate(ctx, textToEmbed)
		assert.NoError(t, err)
		assert.Equal(t, expectedEmbedding, result)
		mockEmb.AssertExpectations(t)
		mockCache.AssertExpectations(t)
	})

	t.Run("cache hit with corrupt payload regenerates", func(t *testing.T) {
		mockEmb := new(MockEmbedder)
		mockCache := new(MockCache)
		service := &OpenAIEmbeddingService{embedder: mockEmb, cache: mockCache, config: embeddingTestConfig()}

		mockCache.On("Get", ctx, cacheKey).Return("invalid gob data", nil).Once()
		mockEmb.On("EmbedQuery", ctx, textToEmbed).Return(expectedEmbedding, nil).Once()
		mockCache.On("Set", ctx, cacheKey, gobEncodedEmbedding(t, expectedEmbedding), expectedTTL).Return(nil).Once()

		result, err := service.Generate(ctx, textToEmbed)
		assert.NoError(t, err)
		assert.Equal(t, expectedEmbedding, result)
		mockEmb.AssertExpectations(t)
		mockCache.AssertExpectations(t)
	})
}
