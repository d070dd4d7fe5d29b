package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "groq")
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("SCRAPE_PAGES", "")

	cfg := Load()

	assert.Equal(t, "groq", cfg.Ai.LLMProvider)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 30*time.Second, cfg.Search.Timeout)
	assert.Equal(t, 10, cfg.Search.ResultLimit)
	assert.Len(t, cfg.Search.ScrapePages, 3)
	assert.Equal(t, "memory", cfg.Session.Backend)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SESSION_TTL", "90m")
	t.Setenv("SCRAPE_PAGES", " https://a.example/ , ,https://b.example/")
	t.Setenv("LLM_TEMPERATURE", "0.5")
	t.Setenv("SEARCH_OFFLINE", "true")

	cfg := Load()

	assert.Equal(t, 90*time.Minute, cfg.Session.TTL)
	assert.Equal(t, []string{"https://a.example/", "https://b.example/"}, cfg.Search.ScrapePages)
	assert.Equal(t, 0.5, cfg.Ai.Temperature)
	assert.True(t, cfg.Search.DisableLive)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		provider   string
		groqKey    string
		wantErr    bool
		missingKey bool
	}{
		{name: "groq with key", provider: "groq", groqKey: "gsk_test"},
		{name: "groq without key", provider: "groq", wantErr: true, missingKey: true},
		{name: "ollama needs no key", provider: "ollama"},
		{name: "unknown provider", provider: "nope", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Keys:    APIKeys{Groq: tt.groqKey},
				Ai:      AIConfig{LLMProvider: tt.provider},
				Session: SessionConfig{TTL: time.Hour},
			}
			err := cfg.Validate()
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.missingKey, errors.Is(err, ErrMissingCredential))
		})
	}
}
