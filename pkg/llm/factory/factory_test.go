package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ipad-assistant-be/pkg/llm/ollama"
	"ipad-assistant-be/pkg/llm/openaicompat"
)

func TestNewLLMProvider(t *testing.T) {
	p, err := NewLLMProvider(Config{Provider: "groq", APIKey: "gsk", Model: "llama-3.3-70b-versatile"})
	require.NoError(t, err)
	assert.IsType(t, &openaicompat.Provider{}, p)

	p, err = NewLLMProvider(Config{Provider: "ollama", Model: "llama3"})
	require.NoError(t, err)
	assert.IsType(t, &ollama.Provider{}, p)

	_, err = NewLLMProvider(Config{Provider: "huggingface"})
	assert.Error(t, err)

	_, err = NewLLMProvider(Config{Provider: "openai"})
	assert.Error(t, err)
}
