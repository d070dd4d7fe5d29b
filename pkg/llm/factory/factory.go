package factory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ipad-assistant-be/pkg/llm"
	"ipad-assistant-be/pkg/llm/ollama"
	"ipad-assistant-be/pkg/llm/openaicompat"
)

type Config struct {
	Provider    string // "groq", "huggingface" or "ollama"
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	KeepAlive   string // ollama only
	Timeout     time.Duration
}

func NewLLMProvider(cfg Config) (llm.LLMProvider, error) {
	switch cfg.Provider {
	case "groq", "huggingface":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = openaicompat.GroqBaseURL
			if cfg.Provider == "huggingface" {
				baseURL = openaicompat.HuggingFaceBaseURL
			}
		}
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%s provider requires an API key", cfg.Provider)
		}
		return openaicompat.NewProvider(openaicompat.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     baseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     cfg.Timeout,
		}), nil
	case "ollama":
		return ollama.NewProvider(ollama.Config{
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			KeepAlive:   cfg.KeepAlive,
			Timeout:     cfg.Timeout,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

// Ping sends a tiny completion to check the provider is reachable with the
// configured credential.
func Ping(ctx context.Context, p llm.LLMProvider) error {
	out, err := p.Generate(ctx, "Reply with the single word: ok", llm.WithMaxTokens(5))
	if err != nil {
		return err
	}
	if strings.TrimSpace(out) == "" {
		return llm.ErrEmptyCompletion
	}
	return nil
}
