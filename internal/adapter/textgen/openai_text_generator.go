package textgen

import (
	"context"
	"errors"
	"fmt"

	"survey-grader/internal/config"
	"survey-grader/internal/port"

	openaiLLM "github.com/tmc/langchaingo/llms/openai"
)

// OpenAITextGenerator implements port.TextGenerator against the OpenAI
// API or any OpenAI-compatible endpoint selected through BaseURL, such
// as DeepSeek.
type OpenAITextGenerator struct {
	llm         caller
	temperature float64
	maxTokens   int
}

// NewOpenAITextGenerator creates a new OpenAITextGenerator. The API key
// comes from configuration or the LLM_API_KEY environment variable.
func NewOpenAITextGenerator(cfg config.LLMConfig) (*OpenAITextGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key cannot be empty")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("openai model name cannot be empty")
	}

	opts := []openaiLLM.Option{
		openaiLLM.WithToken(cfg.APIKey),
		openaiLLM.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openaiLLM.WithBaseURL(cfg.BaseURL))
	}

	llm, err := openaiLLM.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create LangchainGo OpenAI LLM client: %w", err)
	}

	return &OpenAITextGenerator{
		llm:         llm,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

// Generate produces a completion for the given prompt.
func (g *OpenAITextGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	response, err := g.llm.Call(ctx, prompt, callOptions(g.temperature, g.maxTokens)...)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("LLM request timed out: %w", err)
		}
		return "", fmt.Errorf("LLM call failed: %w", err)
	}
	return response, nil
}

// Ensure OpenAITextGenerator implements TextGenerator
var _ port.TextGenerator = (*OpenAITextGenerator)(nil)
