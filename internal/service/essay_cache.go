package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"survey-grader/internal/cache"
	"survey-grader/internal/config"
	"survey-grader/internal/domain"
	"survey-grader/internal/logger"
	"survey-grader/internal/monitoring"
	"survey-grader/internal/util"

	"go.uber.org/zap"
)

const defaultEssayCacheTTL = 24 * time.Hour

// CachedEssayEvaluation is one cache entry: an LLM evaluation together
// with the embedding of the answer it was produced for.
type CachedEssayEvaluation struct {
	Evaluation *domain.EssayEvaluation `json:"evaluation"`
	Embedding  []float32               `json:"embedding"`
	AnswerText string                  `json:"answer_text,omitempty"`
}

// CachedEssayEvaluator reuses LLM evaluations across semantically similar
// answers to the same question. Answers are compared by cosine similarity
// of their embeddings; only evaluations that actually came from the LLM
// are stored, so a degraded fallback grade is never pinned in the cache.
type CachedEssayEvaluator struct {
	inner     EssayEvaluator
	embedder  domain.EmbeddingService
	cache     domain.Cache
	threshold float64
	ttl       time.Duration
}

// NewCachedEssayEvaluator wraps inner with similarity-based reuse. When
// embedder or cacheStore is nil, or the configured threshold is not
// positive, grading passes straight through to inner.
func NewCachedEssayEvaluator(inner EssayEvaluator, embedder domain.EmbeddingService, cacheStore domain.Cache, cfg *config.Config) *CachedEssayEvaluator {
	ttl := defaultEssayCacheTTL
	threshold := 0.0
	if cfg != nil {
		ttl = cfg.ParseTTLStringOrDefault(cfg.CacheTTLs.EssayEvaluation, defaultEssayCacheTTL)
		threshold = cfg.Embedding.SimilarityThreshold
	}
	return &CachedEssayEvaluator{
		inner:     inner,
		embedder:  embedder,
		cache:     cacheStore,
		threshold: threshold,
		ttl:       ttl,
	}
}

// GradeEssay grades the answer, serving a cached evaluation when a
// sufficiently similar answer to the same question was already graded.
func (s *CachedEssayEvaluator) GradeEssay(ctx context.Context, question *domain.Question, studentAnswer string) *domain.EssayEvaluation {
	if s.embedder == nil || s.cache == nil || s.threshold <= 0 || strings.TrimSpace(studentAnswer) == "" {
		return s.inner.GradeEssay(ctx, question, studentAnswer)
	}

	embedding, err := s.embedder.Generate(ctx, studentAnswer)
	if err != nil {
		logger.Get().Warn("Failed to embed essay answer, grading without cache",
			zap.String("question_id", question.ID),
			zap.Error(err))
		return s.inner.GradeEssay(ctx, question, studentAnswer)
	}

	if eval := s.lookup(ctx, question.ID, embedding); eval != nil {
		monitoring.EssayGradings.WithLabelValues(monitoring.SourceCache).Inc()
		return eval
	}

	eval := s.inner.GradeEssay(ctx, question, studentAnswer)
	if eval != nil && eval.Source == domain.EvaluationSourceLLM {
		s.store(ctx, question.ID, studentAnswer, embedding, eval)
	}
	return eval
}

func (s *CachedEssayEvaluator) lookup(ctx context.Context, questionID string, embedding []float32) *domain.EssayEvaluation {
	l := logger.Get()
	key := cache.GenerateCacheKey("grading", "essayeval", questionID)

	entries, err := s.cache.HGetAll(ctx, key)
	if err != nil {
		if err != domain.ErrCacheMiss {
			l.Error("Essay evaluation cache HGetAll failed",
				zap.String("key", key),
				zap.Error(err))
		}
		return nil
	}

	for _, raw := range entries {
		var entry CachedEssayEvaluation
		if errUnmarshal := json.Unmarshal([]byte(raw), &entry); errUnmarshal != nil {
			l.Warn("Failed to unmarshal cached essay evaluation",
				zap.String("key", key),
				zap.Error(errUnmarshal))
			continue
		}
		if entry.Evaluation == nil || len(entry.Embedding) == 0 {
			continue
		}

		similarity, errSim := util.CosineSimilarity(embedding, entry.Embedding)
		if errSim != nil {
			l.Warn("Failed to calculate similarity for cached essay evaluation",
				zap.String("key", key),
				zap.Error(errSim))
			continue
		}

		if similarity >= s.threshold {
			l.Info("Reusing cached essay evaluation for similar answer",
				zap.String("question_id", questionID),
				zap.Float64("similarity", similarity))
			entry.Evaluation.Source = domain.EvaluationSourceCache
			return entry.Evaluation
		}
	}

	return nil
}

func (s *CachedEssayEvaluator) store(ctx context.Context, questionID, answerText string, embedding []float32, eval *domain.EssayEvaluation) {
	l := logger.Get()
	key := cache.GenerateCacheKey("grading", "essayeval", questionID)

	entry := CachedEssayEvaluation{
		Evaluation: eval,
		Embedding:  embedding,
		AnswerText: answerText,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		l.Error("Failed to marshal essay evaluation for caching",
			zap.String("question_id", questionID),
			zap.Error(err))
		return
	}

	if err := s.cache.HSet(ctx, key, util.HashString(answerText), string(data)); err != nil {
		l.Error("Failed to cache essay evaluation",
			zap.String("key", key),
			zap.Error(err))
		return
	}
	if err := s.cache.Expire(ctx, key, s.ttl); err != nil {
		l.Error("Failed to set essay evaluation cache expiration",
			zap.String("key", key),
			zap.Error(err))
	}
}

// Ensure CachedEssayEvaluator implements EssayEvaluator
var _ EssayEvaluator = (*CachedEssayEvaluator)(nil)
