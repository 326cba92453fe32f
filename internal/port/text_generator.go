package port

import "context"

// TextGenerator defines the interface for LLM text generation. The essay
// grader depends on this port instead of a concrete client so providers
// can be swapped through configuration and tests can inject fakes.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
