package service

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	"ipad-assistant-be/internal/constant"
	"ipad-assistant-be/internal/dto"
	"ipad-assistant-be/internal/pkg/logger"
	"ipad-assistant-be/internal/pkg/serverutils"
	"ipad-assistant-be/internal/repository/memory"
	"ipad-assistant-be/pkg/events"
	"ipad-assistant-be/pkg/llm"
	"ipad-assistant-be/pkg/rag/classifier"
	"ipad-assistant-be/pkg/rag/response"
	"ipad-assistant-be/pkg/rag/session"
	"ipad-assistant-be/pkg/rag/workflow"
	"ipad-assistant-be/pkg/search"
	"ipad-assistant-be/pkg/usage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLLM struct {
	label  string
	answer string
	err    error
}

func (s stubLLM) Chat(_ context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if strings.HasPrefix(history[len(history)-1].Content, "Query to classify:") {
		return s.label, nil
	}
	return s.answer, nil
}

func (s stubLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return s.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

var fixedNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func newTestChatbot(t *testing.T, provider llm.LLMProvider, degraded bool) (IChatbotService, *recordingPublisher) {
	t.Helper()
	now := func() time.Time { return fixedNow }
	quiet := log.New(io.Discard, "", 0)

	adapter := search.NewAdapterWithProviders(nil, quiet)
	queryClassifier := classifier.NewClassifier(provider, quiet)
	orchestrator := workflow.NewOrchestrator(
		queryClassifier,
		adapter,
		response.NewGenerator(provider, quiet).WithClock(now),
		10,
		quiet,
	)

	publisher := &recordingPublisher{}
	svc := NewChatbotService(
		&Agent{Orchestrator: orchestrator, Classifier: queryClassifier, Degraded: degraded},
		AgentInfo{LLMProvider: "groq", LLMKeyStatus: "present", SearchProviders: adapter.Providers()},
		session.NewManager(memory.NewSessionRepository(24*time.Hour, now), now, 6),
		publisher,
		usage.NewTracker(),
		logger.NewNopLogger(),
		now,
	)
	return svc, publisher
}

func TestChatPublishesCompletedEvent(t *testing.T) {
	svc, publisher := newTestChatbot(t, stubLLM{label: "pricing", answer: "The iPad mini starts at $499."}, false)

	res, err := svc.Chat(context.Background(), &dto.ChatRequest{Message: "iPad mini price?"}, TransportWebsocket)
	require.NoError(t, err)
	assert.Equal(t, "pricing", res.Category)
	assert.NotEmpty(t, res.SessionId)
	assert.Equal(t, true, res.Metadata["session_created"])

	require.Len(t, publisher.events, 1)
	payload := publisher.events[0].Payload()
	assert.Equal(t, events.TypeChatCompleted, publisher.events[0].EventType())
	assert.Equal(t, "pricing", payload["category"])
	assert.Equal(t, TransportWebsocket, payload["transport"])
	assert.Equal(t, constant.AnonymousUserId, payload["user_id"])
	assert.Equal(t, fixedNow, publisher.events[0].Timestamp())
}

func TestChatKeepsConversationContext(t *testing.T) {
	svc, _ := newTestChatbot(t, stubLLM{label: "comparison", answer: "The Pro has the M4 chip."}, false)
	ctx := context.Background()

	first, err := svc.Chat(ctx, &dto.ChatRequest{Message: "Compare iPad Air and Pro", UserId: "u-7"}, TransportHTTP)
	require.NoError(t, err)
	second, err := svc.Chat(ctx, &dto.ChatRequest{Message: "Which is lighter?", SessionId: first.SessionId}, TransportHTTP)
	require.NoError(t, err)

	assert.Equal(t, first.SessionId, second.SessionId)
	assert.Equal(t, false, second.Metadata["session_created"])

	sess, err := svc.GetSession(ctx, first.SessionId)
	require.NoError(t, err)
	assert.Equal(t, 4, sess.MessageCount)
	assert.Equal(t, "u-7", sess.UserId)

	classified, err := svc.Classify(ctx, &dto.ClassifyRequest{Message: "and the price?", SessionId: first.SessionId})
	require.NoError(t, err)
	assert.True(t, classified.HasContext)
}

func TestChatErrorRepliesAreStillRecorded(t *testing.T) {
	svc, publisher := newTestChatbot(t, stubLLM{label: "general", answer: "unused"}, false)

	res, err := svc.Chat(context.Background(), &dto.ChatRequest{Message: "   "}, TransportHTTP)
	require.NoError(t, err)
	assert.Equal(t, "error", res.Category)
	assert.Contains(t, res.Response, "I apologize, but I encountered an issue")

	sess, err := svc.GetSession(context.Background(), res.SessionId)
	require.NoError(t, err)
	assert.Equal(t, 2, sess.MessageCount)
	require.Len(t, publisher.events, 1)
	assert.Equal(t, "error", publisher.events[0].Payload()["category"])
}

func TestClassifyFallsBackToGeneral(t *testing.T) {
	svc, _ := newTestChatbot(t, stubLLM{err: errors.New("upstream 500")}, false)

	res, err := svc.Classify(context.Background(), &dto.ClassifyRequest{Message: "Does the iPad support Pencil?"})
	require.NoError(t, err)
	assert.Equal(t, "general", res.Category)
	assert.False(t, res.HasContext)
}

func TestSessionNotFoundMapsToHTTPNotFound(t *testing.T) {
	svc, _ := newTestChatbot(t, stubLLM{}, false)

	_, err := svc.GetSession(context.Background(), "nope")
	assert.ErrorIs(t, err, serverutils.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteSession(context.Background(), "nope"), serverutils.ErrNotFound)
}

func TestHealthReportsAgentStatus(t *testing.T) {
	svc, _ := newTestChatbot(t, stubLLM{}, true)
	_, err := svc.CreateSession(context.Background(), &dto.CreateSessionRequest{})
	require.NoError(t, err)

	health := svc.Health(context.Background())
	assert.Equal(t, dto.AgentDegraded, health.AgentStatus)
	assert.Equal(t, 1, health.ActiveSessions)
	assert.Equal(t, []string{"canned"}, health.SearchProviders)
	assert.Equal(t, fixedNow, health.Timestamp)

	notReady := NewChatbotService(nil, AgentInfo{}, session.NewManager(memory.NewSessionRepository(time.Hour, time.Now), time.Now, 6), nil, usage.NewTracker(), logger.NewNopLogger(), nil)
	assert.Equal(t, dto.AgentNotInitialized, notReady.Health(context.Background()).AgentStatus)
	_, err = notReady.Chat(context.Background(), &dto.ChatRequest{Message: "hi"}, TransportHTTP)
	assert.ErrorIs(t, err, serverutils.ErrServiceUnavailable)
	assert.Equal(t, "local", notReady.Stats(context.Background()).EventExport)
}
