package embedding

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"time"

	"survey-grader/internal/cache"
	"survey-grader/internal/config"
	"survey-grader/internal/domain"
	"survey-grader/internal/logger"
	"survey-grader/internal/util"

	"github.com/tmc/langchaingo/embeddings"
	openaiLLM "github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const defaultEmbeddingTTL = 168 * time.Hour

// OpenAIEmbeddingService implements the domain.EmbeddingService interface
// using OpenAI. Embeddings are billed per call, so results are cached in
// Redis keyed by the text hash, and concurrent requests for the same text
// share one upstream call.
type OpenAIEmbeddingService struct {
	embedder embeddings.Embedder
	cache    domain.Cache
	config   *config.Config
	sfGroup  singleflight.Group
}

// NewOpenAIEmbeddingService creates a new OpenAIEmbeddingService.
func NewOpenAIEmbeddingService(apiKey, modelName string, cacheStore domain.Cache, cfg *config.Config) (*OpenAIEmbeddingService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key cannot be empty")
	}
	if modelName == "" {
		modelName = "text-embedding-ada-002"
	}
	if cacheStore == nil {
		return nil, fmt.Errorf("cache instance cannot be nil for OpenAIEmbeddingService")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config instance cannot be nil for OpenAIEmbeddingService")
	}

	llm, err := openaiLLM.New(
		openaiLLM.WithToken(apiKey),
		openaiLLM.WithModel(modelName),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create LangchainGo OpenAI LLM client for embedder: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("failed to create generic embedder from OpenAI LLM: %w", err)
	}

	return &OpenAIEmbeddingService{
		embedder: embedder,
		cache:    cacheStore,
		config:   cfg,
	}, nil
}

// Generate creates an embedding for the given text using the OpenAI embedder.
func (s *OpenAIEmbeddingService) Generate(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("input text cannot be empty for embedding")
	}

	l := logger.Get()
	textHash := util.HashString(text)
	cacheKey := cache.GenerateCacheKey("embedding", "openai", textHash)

	if cachedData, err := s.cache.Get(ctx, cacheKey); err == nil {
		var embedding []float32
		decoder := gob.NewDecoder(bytes.NewReader([]byte(cachedData)))
		if errDecode := decoder.Decode(&embedding); errDecode == nil {
			return embedding, nil
		} else {
			l.Warn("Failed to decode cached embedding, regenerating",
				zap.String("cacheKey", cacheKey),
				zap.Error(errDecode))
		}
	} else if err != domain.ErrCacheMiss {
		l.Error("Embedding cache read failed", zap.String("cacheKey", cacheKey), zap.Error(err))
	}

	res, err, _ := s.sfGroup.Do(cacheKey, func() (interface{}, error) {
		rawEmbedding, fetchErr := s.embedder.EmbedQuery(ctx, text)
		if fetchErr != nil {
			return nil, fmt.Errorf("failed to generate embedding using OpenAI: %w", fetchErr)
		}
		if rawEmbedding == nil {
			return nil, fmt.Errorf("received nil embedding from OpenAI without error")
		}

		embeddingResult := make([]float32, len(rawEmbedding))
		for i, v := range rawEmbedding {
			embeddingResult[i] = float32(v)
		}

		var buffer bytes.Buffer
		if errEncode := gob.NewEncoder(&buffer).Encode(embeddingResult); errEncode != nil {
			l.Error("Failed to encode embedding for caching", zap.String("cacheKey", cacheKey), zap.Error(errEncode))
			return embeddingResult, nil
		}

		cacheTTL := s.config.ParseTTLStringOrDefault(s.config.CacheTTLs.Embedding, defaultEmbeddingTTL)
		if errSet := s.cache.Set(ctx, cacheKey, buffer.String(), cacheTTL); errSet != nil {
			l.Error("Failed to cache embedding", zap.String("cacheKey", cacheKey), zap.Error(errSet))
		}
		return embeddingResult, nil
	})
	if err != nil {
		return nil, err
	}

	if embedding, ok := res.([]float32); ok {
		return embedding, nil
	}
	return nil, fmt.Errorf("unexpected type from singleflight.Do for openai embedding: %T", res)
}

// Ensure OpenAIEmbeddingService implements EmbeddingService
var _ domain.EmbeddingService = (*OpenAIEmbeddingService)(nil)
