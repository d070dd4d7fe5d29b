package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ipad-assistant-be/internal/constant"
	"ipad-assistant-be/internal/dto"
	"ipad-assistant-be/internal/mapper"
	"ipad-assistant-be/internal/pkg/logger"
	"ipad-assistant-be/internal/pkg/serverutils"
	"ipad-assistant-be/pkg/events"
	"ipad-assistant-be/pkg/rag/category"
	"ipad-assistant-be/pkg/rag/session"
	"ipad-assistant-be/pkg/rag/workflow"
	"ipad-assistant-be/pkg/store"
	"ipad-assistant-be/pkg/usage"
)

const (
	TransportHTTP      = constant.TransportHTTP
	TransportWebsocket = constant.TransportWebsocket
)

var errAgentNotInitialized = fmt.Errorf("%w: agent not initialized, check the LLM configuration", serverutils.ErrServiceUnavailable)

// IChatbotService is the request facade over the pipeline and the sessions.
type IChatbotService interface {
	Chat(ctx context.Context, request *dto.ChatRequest, transport string) (*dto.ChatResponse, error)
	Classify(ctx context.Context, request *dto.ClassifyRequest) (*dto.ClassifyResponse, error)
	CreateSession(ctx context.Context, request *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error)
	GetSession(ctx context.Context, sessionId string) (*dto.SessionResponse, error)
	DeleteSession(ctx context.Context, sessionId string) error
	ListSessions(ctx context.Context) (*dto.ListSessionsResponse, error)
	Health(ctx context.Context) *dto.HealthResponse
	Stats(ctx context.Context) *dto.UsageStatsResponse
}

// Agent groups what is only available once the LLM provider came up. A nil
// Agent means the service runs but refuses pipeline requests.
type Agent struct {
	Orchestrator *workflow.Orchestrator
	Classifier   workflow.Classifier
	Degraded     bool // provider built but did not answer the startup probe
}

// AgentInfo is static configuration reported by the health endpoint.
type AgentInfo struct {
	LLMProvider     string
	LLMKeyStatus    string
	SearchProviders []string
	EventExport     string
}

type chatbotService struct {
	agent     *Agent
	info      AgentInfo
	sessions  *session.Manager
	publisher IPublisherService
	tracker   *usage.Tracker
	mapper    *mapper.SessionMapper
	logger    logger.ILogger
	now       store.Clock
}

func NewChatbotService(
	agent *Agent,
	info AgentInfo,
	sessions *session.Manager,
	publisher IPublisherService,
	tracker *usage.Tracker,
	log logger.ILogger,
	now store.Clock,
) IChatbotService {
	if now == nil {
		now = time.Now
	}
	return &chatbotService{
		agent:     agent,
		info:      info,
		sessions:  sessions,
		publisher: publisher,
		tracker:   tracker,
		mapper:    mapper.NewSessionMapper(),
		logger:    log,
		now:       now,
	}
}

func (cs *chatbotService) Chat(ctx context.Context, request *dto.ChatRequest, transport string) (*dto.ChatResponse, error) {
	if cs.agent == nil {
		return nil, errAgentNotInitialized
	}

	userId := request.UserId
	if userId == "" {
		userId = constant.AnonymousUserId
	}

	chatSession, created, err := cs.sessions.LoadOrCreate(ctx, request.SessionId, userId)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	state := cs.agent.Orchestrator.Execute(ctx, workflow.Input{
		Query:     request.Message,
		SessionID: chatSession.ID,
		UserID:    userId,
		History:   cs.sessions.RecentContext(chatSession),
	})
	state.Metadata["session_created"] = created

	sources := state.Sources
	if sources == nil {
		sources = []string{}
	}

	if _, err := cs.sessions.AppendExchange(ctx, chatSession.ID, request.Message, state.Response, string(state.Category), sources); err != nil {
		cs.logger.Error("CHATBOT", "Failed to persist exchange", map[string]interface{}{
			"session_id": chatSession.ID,
			"error":      err.Error(),
		})
		if !errors.Is(err, store.ErrSessionNotFound) {
			return nil, fmt.Errorf("append exchange: %w", err)
		}
	}

	cs.publishCompleted(ctx, state, userId, transport)

	cs.logger.Info("CHATBOT", "Chat answered", map[string]interface{}{
		"session_id": chatSession.ID,
		"category":   state.Category,
		"sources":    len(sources),
		"degraded":   state.Degraded,
		"transport":  transport,
	})

	return &dto.ChatResponse{
		Response:  state.Response,
		Sources:   sources,
		Category:  string(state.Category),
		SessionId: chatSession.ID,
		Metadata:  state.Metadata,
	}, nil
}

func (cs *chatbotService) publishCompleted(ctx context.Context, state *workflow.State, userId, transport string) {
	if cs.publisher == nil {
		return
	}
	durationMs, _ := state.Metadata["duration_ms"].(int64)
	event := events.ChatCompleted{
		SessionID:  state.SessionID,
		UserID:     userId,
		Category:   string(state.Category),
		Sources:    len(state.Sources),
		Degraded:   append([]string{}, state.Degraded...),
		DurationMs: durationMs,
		Transport:  transport,
		At:         cs.now(),
	}
	// The reply is already built; a lost event only skews statistics.
	if err := cs.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		cs.logger.Warn("CHATBOT", "Failed to publish chat event", map[string]interface{}{"error": err.Error()})
	}
}

// Classify labels a message without running the rest of the pipeline. When
// the session exists its recent turns are passed as context.
func (cs *chatbotService) Classify(ctx context.Context, request *dto.ClassifyRequest) (*dto.ClassifyResponse, error) {
	if cs.agent == nil {
		return nil, errAgentNotInitialized
	}
	if strings.TrimSpace(request.Message) == "" {
		return nil, fmt.Errorf("%w: message is empty", serverutils.ErrBadRequest)
	}

	var history string
	if request.SessionId != "" {
		chatSession, err := cs.sessions.Get(ctx, request.SessionId)
		if err != nil && !errors.Is(err, store.ErrSessionNotFound) {
			return nil, fmt.Errorf("load session: %w", err)
		}
		if chatSession != nil {
			history = cs.sessions.RecentContext(chatSession)
		}
	}

	cat, err := cs.agent.Classifier.Classify(ctx, request.Message, history)
	if err != nil {
		cs.logger.Warn("CHATBOT", "Classification degraded to general", map[string]interface{}{"error": err.Error()})
		cat = category.General
	}

	return &dto.ClassifyResponse{
		Category:    string(cat),
		Description: cat.Description(),
		HasContext:  history != "",
		SessionId:   request.SessionId,
	}, nil
}

func (cs *chatbotService) CreateSession(ctx context.Context, request *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	userId := request.UserId
	if userId == "" {
		userId = constant.AnonymousUserId
	}

	chatSession, err := cs.sessions.Create(ctx, userId)
	if err != nil {
		return nil, err
	}

	cs.logger.Info("CHATBOT", "Session created", map[string]interface{}{"session_id": chatSession.ID})
	return &dto.CreateSessionResponse{
		SessionId: chatSession.ID,
		CreatedAt: chatSession.CreatedAt,
	}, nil
}

func (cs *chatbotService) GetSession(ctx context.Context, sessionId string) (*dto.SessionResponse, error) {
	chatSession, err := cs.sessions.Get(ctx, sessionId)
	if err != nil {
		return nil, notFound(err)
	}

	return cs.mapper.SessionToResponse(chatSession), nil
}

func (cs *chatbotService) DeleteSession(ctx context.Context, sessionId string) error {
	if err := cs.sessions.Delete(ctx, sessionId); err != nil {
		return notFound(err)
	}
	cs.logger.Info("CHATBOT", "Session deleted", map[string]interface{}{"session_id": sessionId})
	return nil
}

func (cs *chatbotService) ListSessions(ctx context.Context) (*dto.ListSessionsResponse, error) {
	sessions, err := cs.sessions.List(ctx)
	if err != nil {
		return nil, err
	}

	return cs.mapper.SessionsToList(sessions), nil
}

func (cs *chatbotService) Health(ctx context.Context) *dto.HealthResponse {
	agentStatus := dto.AgentHealthy
	switch {
	case cs.agent == nil:
		agentStatus = dto.AgentNotInitialized
	case cs.agent.Degraded:
		agentStatus = dto.AgentDegraded
	}

	active, err := cs.sessions.Count(ctx)
	if err != nil {
		cs.logger.Warn("CHATBOT", "Failed to count sessions", map[string]interface{}{"error": err.Error()})
	}

	providers := cs.info.SearchProviders
	if providers == nil {
		providers = []string{}
	}

	return &dto.HealthResponse{
		Status:          "healthy",
		AgentStatus:     agentStatus,
		LLMProvider:     cs.info.LLMProvider,
		LLMKeyStatus:    cs.info.LLMKeyStatus,
		ActiveSessions:  active,
		SearchProviders: providers,
		Timestamp:       cs.now(),
	}
}

func (cs *chatbotService) Stats(ctx context.Context) *dto.UsageStatsResponse {
	snapshot := cs.tracker.Snapshot()
	export := cs.info.EventExport
	if export == "" {
		export = constant.EventExportLocal
	}
	return &dto.UsageStatsResponse{
		TotalChats:     snapshot.TotalChats,
		Errors:         snapshot.Errors,
		ByCategory:     snapshot.ByCategory,
		DegradedStages: snapshot.DegradedStages,
		ByTransport:    snapshot.ByTransport,
		LastChatAt:     snapshot.LastChatAt,
		EventExport:    export,
	}
}

func notFound(err error) error {
	if errors.Is(err, store.ErrSessionNotFound) {
		return fmt.Errorf("%w: session not found", serverutils.ErrNotFound)
	}
	return err
}
