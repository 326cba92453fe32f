package textgen

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"survey-grader/internal/config"
	"survey-grader/internal/port"

	"github.com/tmc/langchaingo/llms/ollama"
)

// OllamaTextGenerator implements port.TextGenerator against an Ollama
// server.
type OllamaTextGenerator struct {
	llm         caller
	temperature float64
	maxTokens   int
}

// NewOllamaTextGenerator creates a new OllamaTextGenerator.
func NewOllamaTextGenerator(cfg config.LLMConfig) (*OllamaTextGenerator, error) {
	if cfg.ServerURL == "" {
		return nil, fmt.Errorf("ollama server URL cannot be empty")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("ollama model name cannot be empty")
	}

	httpTimeout := cfg.Timeout
	if httpTimeout <= 0 {
		httpTimeout = 30 * time.Second
	}

	llm, err := ollama.New(
		ollama.WithServerURL(cfg.ServerURL),
		ollama.WithModel(cfg.Model),
		ollama.WithHTTPClient(&http.Client{Timeout: httpTimeout}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create LangchainGo Ollama LLM client: %w", err)
	}

	return &OllamaTextGenerator{
		llm:         llm,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

// Generate produces a completion for the given prompt.
func (g *OllamaTextGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	response, err := g.llm.Call(ctx, prompt, callOptions(g.temperature, g.maxTokens)...)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("LLM request timed out: %w", err)
		}
		return "", fmt.Errorf("LLM call failed: %w", err)
	}
	return response, nil
}

// Ensure OllamaTextGenerator implements TextGenerator
var _ port.TextGenerator = (*OllamaTextGenerator)(nil)
