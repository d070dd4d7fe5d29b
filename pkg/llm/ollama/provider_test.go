package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ipad-assistant-be/pkg/llm"
)

func TestChat(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"model":"llama3","message":{"role":"assistant","content":"pricing"},"done":true}`))
	}))
	defer srv.Close()

	p := NewProvider(Config{BaseURL: srv.URL + "/", Model: "llama3", Temperature: 0.1, MaxTokens: 64, KeepAlive: "5m", Timeout: time.Second})
	out, err := p.Chat(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "classify"},
		{Role: llm.RoleUser, Content: "iPad Pro price"},
	}, llm.WithMaxTokens(10), llm.WithTemperature(0.4), llm.WithModel("qwen2.5"))

	require.NoError(t, err)
	assert.Equal(t, "pricing", out)
	assert.Equal(t, "qwen2.5", got.Model)
	assert.False(t, got.Stream)
	assert.Equal(t, "5m", got.KeepAlive)
	assert.Equal(t, 10, got.Options.NumPredict)
	assert.Equal(t, 0.4, got.Options.Temperature)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, llm.RoleSystem, got.Messages[0].Role)
}

func TestChatDefaults(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"ok"},"done":true}`))
	}))
	defer srv.Close()

	p := NewProvider(Config{BaseURL: srv.URL, Model: "llama3", Temperature: 0.2, MaxTokens: 256})
	_, err := p.Generate(context.Background(), "hi")
	require.NoError(t, err)

	assert.Equal(t, "llama3", got.Model)
	assert.Equal(t, 256, got.Options.NumPredict)
	assert.Equal(t, 0.2, got.Options.Temperature)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, llm.RoleUser, got.Messages[0].Role)
}

func TestChatErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		empty   bool
		message string
	}{
		{name: "missing model", status: http.StatusNotFound, body: `{"error":"model \"llama9\" not found"}`, message: `model "llama9" not found`},
		{name: "plain text failure", status: http.StatusInternalServerError, body: `boom`, message: "boom"},
		{name: "blank content", status: http.StatusOK, body: `{"message":{"role":"assistant","content":"  "},"done":true}`, empty: true},
		{name: "error in ok body", status: http.StatusOK, body: `{"error":"out of memory"}`, message: "out of memory"},
		{name: "malformed", status: http.StatusOK, body: `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := NewProvider(Config{BaseURL: srv.URL, Model: "llama3"})
			_, err := p.Generate(context.Background(), "hi")
			require.Error(t, err)
			assert.Equal(t, tt.empty, errors.Is(err, llm.ErrEmptyCompletion))
			if tt.message != "" {
				assert.True(t, strings.Contains(err.Error(), tt.message), err.Error())
			}
		})
	}
}

func TestNewProviderDefaults(t *testing.T) {
	p := NewProvider(Config{Model: "llama3"})
	assert.Equal(t, DefaultBaseURL, p.baseURL)
	assert.Equal(t, 30*time.Second, p.client.Timeout)
}
