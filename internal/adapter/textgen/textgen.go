// Package textgen provides the text-generation backends used for essay
// grading. Each backend wraps a LangchainGo client behind
// port.TextGenerator so the grading service stays independent of the
// concrete provider.
package textgen

import (
	"context"
	"fmt"

	"survey-grader/internal/config"
	"survey-grader/internal/port"

	"github.com/tmc/langchaingo/llms"
)

// caller abstracts the LangchainGo completion call so generators can be
// tested without a live backend.
type caller interface {
	Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error)
}

// NewFromConfig builds the text generator selected by cfg.Provider.
func NewFromConfig(cfg config.LLMConfig) (port.TextGenerator, error) {
	switch cfg.Provider {
	case "", "ollama":
		return NewOllamaTextGenerator(cfg)
	case "openai":
		return NewOpenAITextGenerator(cfg)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}

func callOptions(temperature float64, maxTokens int) []llms.CallOption {
	opts := []llms.CallOption{llms.WithTemperature(temperature)}
	if maxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(maxTokens))
	}
	return opts
}
