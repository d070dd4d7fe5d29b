package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ipad-assistant-be/internal/bootstrap"
	"ipad-assistant-be/internal/config"
	"ipad-assistant-be/internal/dto"
	"ipad-assistant-be/internal/pkg/logger"
	"ipad-assistant-be/pkg/llm"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedLLM struct{}

func (scriptedLLM) Chat(_ context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	last := history[len(history)-1].Content
	if strings.HasPrefix(last, "Query to classify:") {
		return "pricing", nil
	}
	return "The iPad Air starts at $599 in the US.", nil
}

func (s scriptedLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return s.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Port:               "0",
			Environment:        "test",
			CorsAllowedOrigins: "*",
			EventTopic:         "CHAT_COMPLETED",
		},
		Keys: config.APIKeys{Groq: "gsk_test"},
		Ai:   config.AIConfig{LLMProvider: "groq"},
		Search: config.SearchConfig{
			ResultLimit: 10,
			DisableLive: true,
		},
		Session: config.SessionConfig{
			Backend:     "memory",
			TTL:         24 * time.Hour,
			ContextSize: 6,
		},
	}
}

func newTestApp(t *testing.T, provider llm.LLMProvider) *fiber.App {
	t.Helper()
	cfg := testConfig()
	container := bootstrap.Assemble(cfg, bootstrap.Deps{
		Logger: logger.NewNopLogger(),
		LLM:    provider,
		Now:    time.Now,
	})
	t.Cleanup(container.Close)
	return New(cfg, container).GetApp()
}

func call(t *testing.T, app *fiber.App, method, path, body string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestChatConversationIsRecordedInOrder(t *testing.T) {
	app := newTestApp(t, scriptedLLM{})

	status, env := call(t, app, http.MethodPost, "/session/create", "")
	require.Equal(t, http.StatusOK, status)
	var created dto.CreateSessionResponse
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotEmpty(t, created.SessionId)

	questions := []string{"How much is the iPad Air?", "And the iPad Pro?"}
	for _, q := range questions {
		body, _ := json.Marshal(dto.ChatRequest{Message: q, SessionId: created.SessionId})
		status, env := call(t, app, http.MethodPost, "/chat", string(body))
		require.Equal(t, http.StatusOK, status)

		var res dto.ChatResponse
		require.NoError(t, json.Unmarshal(env.Data, &res))
		assert.Equal(t, created.SessionId, res.SessionId)
		assert.Equal(t, "pricing", res.Category)
		assert.Contains(t, res.Response, "$599")
		assert.LessOrEqual(t, len(res.Sources), 5)
	}

	status, env = call(t, app, http.MethodGet, "/session/"+created.SessionId, "")
	require.Equal(t, http.StatusOK, status)
	var sess dto.SessionResponse
	require.NoError(t, json.Unmarshal(env.Data, &sess))

	assert.Equal(t, 4, sess.MessageCount)
	require.Len(t, sess.Messages, 4)
	assert.Equal(t, "user", sess.Messages[0].Role)
	assert.Equal(t, questions[0], sess.Messages[0].Content)
	assert.Equal(t, "assistant", sess.Messages[1].Role)
	assert.Equal(t, "pricing", sess.Messages[1].Category)
	assert.Equal(t, "user", sess.Messages[2].Role)
	assert.Equal(t, questions[1], sess.Messages[2].Content)
	assert.Equal(t, "assistant", sess.Messages[3].Role)
	for i := 1; i < len(sess.Messages); i++ {
		assert.False(t, sess.Messages[i].Timestamp.Before(sess.Messages[i-1].Timestamp))
	}
}

func TestChatCreatesSessionWhenUnknown(t *testing.T) {
	app := newTestApp(t, scriptedLLM{})

	status, env := call(t, app, http.MethodPost, "/chat", `{"message":"iPad price?","session_id":"does-not-exist"}`)
	require.Equal(t, http.StatusOK, status)

	var res dto.ChatResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.NotEqual(t, "does-not-exist", res.SessionId)
	assert.Equal(t, true, res.Metadata["session_created"])

	status, env = call(t, app, http.MethodGet, "/sessions", "")
	require.Equal(t, http.StatusOK, status)
	var list dto.ListSessionsResponse
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Equal(t, 1, list.Total)
	assert.Equal(t, res.SessionId, list.Sessions[0].SessionId)
	assert.Equal(t, 2, list.Sessions[0].MessageCount)
}

func TestSessionLifecycleErrors(t *testing.T) {
	app := newTestApp(t, scriptedLLM{})

	status, env := call(t, app, http.MethodGet, "/session/missing", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, env.Success)

	status, _ = call(t, app, http.MethodDelete, "/session/missing", "")
	assert.Equal(t, http.StatusNotFound, status)

	_, env = call(t, app, http.MethodPost, "/session/create", `{"user_id":"u-1"}`)
	var created dto.CreateSessionResponse
	require.NoError(t, json.Unmarshal(env.Data, &created))

	status, _ = call(t, app, http.MethodDelete, "/session/"+created.SessionId, "")
	assert.Equal(t, http.StatusOK, status)

	status, _ = call(t, app, http.MethodGet, "/session/"+created.SessionId, "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestChatValidation(t *testing.T) {
	app := newTestApp(t, scriptedLLM{})

	status, env := call(t, app, http.MethodPost, "/chat", `{}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, env.Message, "message")
}

func TestClassifyEndpoint(t *testing.T) {
	app := newTestApp(t, scriptedLLM{})

	status, env := call(t, app, http.MethodPost, "/classify", `{"message":"How much is the iPad mini?"}`)
	require.Equal(t, http.StatusOK, status)

	var res dto.ClassifyResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, "pricing", res.Category)
	assert.False(t, res.HasContext)
}

func TestCatalogEndpoints(t *testing.T) {
	app := newTestApp(t, scriptedLLM{})

	status, env := call(t, app, http.MethodGet, "/ipad/models", "")
	require.Equal(t, http.StatusOK, status)
	var models dto.ModelsResponse
	require.NoError(t, json.Unmarshal(env.Data, &models))
	require.NotEmpty(t, models.Models)
	assert.LessOrEqual(t, len(models.Models), 5)
	assert.Equal(t, "canned", models.Provider)

	status, env = call(t, app, http.MethodGet, "/ipad/pricing", "")
	require.Equal(t, http.StatusOK, status)
	var pricing dto.PricingResponse
	require.NoError(t, json.Unmarshal(env.Data, &pricing))
	require.NotEmpty(t, pricing.Pricing.Sources)
	assert.LessOrEqual(t, len(pricing.Pricing.Sources), 3)
	assert.True(t, strings.HasSuffix(pricing.Pricing.Sources[0].Snippet, "..."))
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, scriptedLLM{})

	status, env := call(t, app, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, status)
	var health dto.HealthResponse
	require.NoError(t, json.Unmarshal(env.Data, &health))
	assert.Equal(t, dto.AgentHealthy, health.AgentStatus)
	assert.Equal(t, "present", health.LLMKeyStatus)
	assert.Equal(t, []string{"canned"}, health.SearchProviders)
}

func TestAgentNotInitialized(t *testing.T) {
	app := newTestApp(t, nil)

	status, env := call(t, app, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	var health dto.HealthResponse
	require.NoError(t, json.Unmarshal(env.Data, &health))
	assert.Equal(t, dto.AgentNotInitialized, health.AgentStatus)

	status, _ = call(t, app, http.MethodPost, "/chat", `{"message":"hello"}`)
	assert.Equal(t, http.StatusServiceUnavailable, status)

	status, _ = call(t, app, http.MethodGet, "/ipad/models", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)

	// Sessions do not need the agent.
	status, _ = call(t, app, http.MethodPost, "/session/create", "")
	assert.Equal(t, http.StatusOK, status)
}

func TestWebsocketRouteRequiresUpgrade(t *testing.T) {
	app := newTestApp(t, scriptedLLM{})

	status, env := call(t, app, http.MethodGet, "/ws/chat", "")
	assert.Equal(t, http.StatusUpgradeRequired, status)
	assert.False(t, env.Success)
}
