package domain

import "context"

// EmbeddingService turns text into a vector. The essay cache compares
// these vectors to reuse an earlier evaluation for a near-identical
// answer instead of calling the LLM again.
type EmbeddingService interface {
	Generate(ctx context.Context, text string) ([]float32, error)
}
