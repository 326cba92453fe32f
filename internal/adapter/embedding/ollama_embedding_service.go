package embedding

import (
	"context"
	"fmt"

	"survey-grader/internal/domain"

	"github.com/tmc/langchaingo/embeddings"
	ollamaLLM "github.com/tmc/langchaingo/llms/ollama"
)

// OllamaEmbeddingService produces answer embeddings through a local
// Ollama server, for deployments that keep student text off third-party
// APIs.
type OllamaEmbeddingService struct {
	embedder embeddings.Embedder
}

var _ domain.EmbeddingService = (*OllamaEmbeddingService)(nil)

// NewOllamaEmbeddingService dials the Ollama server at serverURL and
// wraps the named model in a langchaingo embedder.
func NewOllamaEmbeddingService(serverURL, modelName string) (*OllamaEmbeddingService, error) {
	if serverURL == "" {
		return nil, fmt.Errorf("ollama server URL cannot be empty")
	}
	if modelName == "" {
		return nil, fmt.Errorf("ollama model name cannot be empty")
	}

	client, err := ollamaLLM.New(
		ollamaLLM.WithServerURL(serverURL),
		ollamaLLM.WithModel(modelName),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama client for embedder: %w", err)
	}
	emb, err := embeddings.NewEmbedder(client)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap Ollama client in an embedder: %w", err)
	}
	return &OllamaEmbeddingService{embedder: emb}, nil
}

// Generate returns the embedding vector for text.
func (s *OllamaEmbeddingService) Generate(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("input text cannot be empty for embedding")
	}
	vector, err := s.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding using Ollama: %w", err)
	}
	return vector, nil
}
