package classifier

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ipad-assistant-be/pkg/llm"
	"ipad-assistant-be/pkg/rag/category"
)

type stubLLM struct {
	reply    string
	err      error
	messages []llm.Message
}

func (s *stubLLM) Chat(_ context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	s.messages = history
	return s.reply, s.err
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return s.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		err     error
		want    category.Category
		wantErr bool
	}{
		{name: "exact label", reply: "pricing", want: category.Pricing},
		{name: "noisy label", reply: " Comparison.\n", want: category.Comparison},
		{name: "hallucinated label", reply: "weather", want: category.General},
		{name: "sentence", reply: "I think this is about pricing", want: category.General},
		{name: "empty", reply: "", want: category.General},
		{name: "llm down", err: errors.New("connection refused"), want: category.General, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(&stubLLM{reply: tt.reply, err: tt.err}, quietLogger())
			got, err := c.Classify(context.Background(), "iPad Pro price", "")
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Valid())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestClassifyPromptIncludesContext(t *testing.T) {
	stub := &stubLLM{reply: "comparison"}
	c := NewClassifier(stub, quietLogger())

	_, err := c.Classify(context.Background(), "and the Air?", "User: iPad Pro price\nAssistant: $999")
	require.NoError(t, err)
	require.Len(t, stub.messages, 2)

	system := stub.messages[0].Content
	assert.Contains(t, system, "Previous conversation context:")
	assert.Contains(t, system, "User: iPad Pro price")
	for _, cat := range category.All {
		assert.Contains(t, system, "- "+string(cat)+": ")
	}
	assert.Equal(t, "Query to classify: and the Air?", stub.messages[1].Content)
}

func TestClassifyPromptWithoutContext(t *testing.T) {
	stub := &stubLLM{reply: "setup"}
	c := NewClassifier(stub, quietLogger())

	_, err := c.Classify(context.Background(), "How to set up my new iPad?", "  ")
	require.NoError(t, err)
	assert.NotContains(t, stub.messages[0].Content, "Previous conversation context")
}
