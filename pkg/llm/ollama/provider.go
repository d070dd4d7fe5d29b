package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ipad-assistant-be/pkg/llm"
)

const DefaultBaseURL = "http://localhost:11434"

// Provider talks to a local Ollama server through /api/chat with streaming
// disabled.
type Provider struct {
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	keepAlive   string
	client      *http.Client
}

var _ llm.LLMProvider = (*Provider)(nil)

type Config struct {
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	KeepAlive   string // e.g. "5m"; empty leaves the server default
	Timeout     time.Duration
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []llm.Message `json:"messages"`
	Stream    bool          `json:"stream"`
	KeepAlive string        `json:"keep_alive,omitempty"`
	Options   chatOptions   `json:"options"`
}

// Ollama reads sampling parameters from "options", not the top level.
type chatOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type chatResponse struct {
	Model   string      `json:"model"`
	Message llm.Message `json:"message"`
	Done    bool        `json:"done"`
	Error   string      `json:"error,omitempty"`
}

func NewProvider(cfg Config) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Provider{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		keepAlive:   cfg.KeepAlive,
		client:      &http.Client{Timeout: cfg.Timeout},
	}
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	opts := &llm.Options{
		Model:       p.model,
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
	}
	for _, o := range options {
		o(opts)
	}

	payload, err := json.Marshal(chatRequest{
		Model:     opts.Model,
		Messages:  history,
		Stream:    false,
		KeepAlive: p.keepAlive,
		Options: chatOptions{
			Temperature: opts.Temperature,
			NumPredict:  opts.MaxTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/chat", bytes.NewBuffer(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var chatResp chatResponse
	decodeErr := json.Unmarshal(body, &chatResp)

	if resp.StatusCode != http.StatusOK {
		if decodeErr == nil && chatResp.Error != "" {
			return "", fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, chatResp.Error)
		}
		return "", fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, string(body))
	}
	if decodeErr != nil {
		return "", fmt.Errorf("unmarshal response: %w", decodeErr)
	}
	if chatResp.Error != "" {
		return "", fmt.Errorf("ollama returned error: %s", chatResp.Error)
	}

	if strings.TrimSpace(chatResp.Message.Content) == "" {
		return "", llm.ErrEmptyCompletion
	}
	return chatResp.Message.Content, nil
}

func (p *Provider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}
