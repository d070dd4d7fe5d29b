package bootstrap

import (
	"context"
	"os"
	"strings"
	"time"

	"ipad-assistant-be/internal/config"
	"ipad-assistant-be/internal/constant"
	"ipad-assistant-be/internal/controller"
	"ipad-assistant-be/internal/handler"
	"ipad-assistant-be/internal/pkg/logger"
	"ipad-assistant-be/internal/repository/contract"
	"ipad-assistant-be/internal/repository/memory"
	redisRepo "ipad-assistant-be/internal/repository/redis"
	"ipad-assistant-be/internal/service"
	"ipad-assistant-be/internal/websocket"
	"ipad-assistant-be/pkg/llm"
	"ipad-assistant-be/pkg/llm/factory"
	"ipad-assistant-be/pkg/rag/classifier"
	"ipad-assistant-be/pkg/rag/response"
	"ipad-assistant-be/pkg/rag/session"
	"ipad-assistant-be/pkg/rag/workflow"
	"ipad-assistant-be/pkg/search"
	"ipad-assistant-be/pkg/store"
	"ipad-assistant-be/pkg/usage"

	pktNats "ipad-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

const probeTimeout = 10 * time.Second

type Container struct {
	// Controllers
	ChatbotController controller.IChatbotController
	CatalogController controller.ICatalogController
	HealthController  controller.IHealthController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	ChatHandler  *handler.ChatHandler
	WebSocketHub *websocket.Hub

	Logger logger.ILogger

	closers []func()
}

// Deps are the pieces NewContainer normally builds from configuration. Tests
// pass their own.
type Deps struct {
	Logger logger.ILogger

	// LLM is nil when the provider could not be configured; the service then
	// starts with the agent not initialized.
	LLM         llm.LLMProvider
	LLMDegraded bool

	Now store.Clock
}

func NewContainer(cfg *config.Config) *Container {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	llmProvider, degraded := newLLMProvider(cfg, sysLogger)

	return Assemble(cfg, Deps{
		Logger:      sysLogger,
		LLM:         llmProvider,
		LLMDegraded: degraded,
		Now:         time.Now,
	})
}

// newLLMProvider builds and probes the configured provider. A nil provider
// means the configuration is unusable; degraded means it was built but did
// not answer the probe.
func newLLMProvider(cfg *config.Config, sysLogger logger.ILogger) (llm.LLMProvider, bool) {
	if err := cfg.Validate(); err != nil {
		sysLogger.Error("BOOTSTRAP", "Invalid configuration, agent not initialized", map[string]interface{}{"error": err.Error()})
		return nil, false
	}

	baseURL := cfg.Ai.LLMBaseURL
	if cfg.Ai.LLMProvider == "ollama" {
		baseURL = cfg.Ai.OllamaBaseURL
	}

	provider, err := factory.NewLLMProvider(factory.Config{
		Provider:    cfg.Ai.LLMProvider,
		APIKey:      cfg.LLMKey(),
		Model:       cfg.Ai.LLMModel,
		BaseURL:     baseURL,
		Temperature: cfg.Ai.Temperature,
		MaxTokens:   cfg.Ai.MaxTokens,
		KeepAlive:   cfg.Ai.OllamaKeepAlive,
		Timeout:     cfg.Ai.RequestTimeout,
	})
	if err != nil {
		sysLogger.Error("BOOTSTRAP", "Failed to initialize LLM provider", map[string]interface{}{"error": err.Error()})
		return nil, false
	}

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	if err := factory.Ping(ctx, provider); err != nil {
		sysLogger.Warn("BOOTSTRAP", "LLM provider did not answer the probe", map[string]interface{}{
			"provider": cfg.Ai.LLMProvider,
			"error":    err.Error(),
		})
		return provider, true
	}

	sysLogger.Info("BOOTSTRAP", "Using LLM provider", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"model":    cfg.Ai.LLMModel,
	})
	return provider, false
}

// Assemble wires every component around already built dependencies.
func Assemble(cfg *config.Config, deps Deps) *Container {
	sysLogger := deps.Logger
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	c := &Container{Logger: sysLogger}

	// 1. Search
	searchAdapter := search.NewAdapter(search.Config{
		SerpAPIKey:     cfg.Keys.SerpAPI,
		GoogleAPIKey:   cfg.Keys.GoogleAPI,
		GoogleEngineID: cfg.Keys.GoogleSearchEngineID,
		InstantURL:     cfg.Search.InstantURL,
		ScrapePages:    cfg.Search.ScrapePages,
		ScrapeDelay:    cfg.Search.ScrapeDelay,
		Timeout:        cfg.Search.Timeout,
		ResultLimit:    cfg.Search.ResultLimit,
		DisableLive:    cfg.Search.DisableLive,
	}, sysLogger.StdLogger("SEARCH"))
	c.closers = append(c.closers, searchAdapter.Close)
	sysLogger.Info("BOOTSTRAP", "Search chain ready", map[string]interface{}{"providers": searchAdapter.Providers()})

	// 2. Pipeline
	var agent *service.Agent
	if deps.LLM != nil {
		queryClassifier := classifier.NewClassifier(deps.LLM, sysLogger.StdLogger("CLASSIFIER"))
		generator := response.NewGenerator(deps.LLM, sysLogger.StdLogger("GENERATOR")).WithClock(now)
		orchestrator := workflow.NewOrchestrator(
			queryClassifier,
			searchAdapter,
			generator,
			cfg.Search.ResultLimit,
			sysLogger.StdLogger("PIPELINE"),
		)
		agent = &service.Agent{
			Orchestrator: orchestrator,
			Classifier:   queryClassifier,
			Degraded:     deps.LLMDegraded,
		}
	}

	// 3. Sessions
	sessionManager := session.NewManager(c.newSessionRepository(cfg, now), now, cfg.Session.ContextSize)

	// 4. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	tracker := usage.NewTracker()
	publisherService := service.NewPublisherService(cfg.App.EventTopic, pubSub)

	var forwarder service.EventForwarder
	var source service.EventSource
	eventExport := constant.EventExportLocal
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "Failed to connect NATS publisher, counting events locally", map[string]interface{}{"error": err.Error()})
		}
		natsSub, subErr := pktNats.NewSubscriber(cfg.App.NatsURL)
		if subErr != nil {
			sysLogger.Warn("BOOTSTRAP", "Failed to connect NATS subscriber, counting events locally", map[string]interface{}{"error": subErr.Error()})
		}
		switch {
		case natsPub != nil && natsSub != nil:
			forwarder, source = natsPub, natsSub
			eventExport = constant.EventExportNats
			c.closers = append(c.closers, natsPub.Close, natsSub.Close)
		case natsPub != nil:
			natsPub.Close()
		case natsSub != nil:
			natsSub.Close()
		}
	}

	c.ConsumerService = service.NewConsumerService(
		pubSub,
		cfg.App.EventTopic,
		tracker,
		forwarder,
		source,
		consumerName(),
		sysLogger,
	)

	// 5. Services
	chatbotService := service.NewChatbotService(
		agent,
		service.AgentInfo{
			LLMProvider:     cfg.Ai.LLMProvider,
			LLMKeyStatus:    llmKeyStatus(cfg),
			SearchProviders: searchAdapter.Providers(),
			EventExport:     eventExport,
		},
		sessionManager,
		publisherService,
		tracker,
		sysLogger,
		now,
	)
	catalogService := service.NewCatalogService(searchAdapter, agent != nil, sysLogger)

	// 6. WebSocket Hub
	wsLogger := sysLogger
	if cfg.App.Environment != "test" {
		wsLogger = logger.NewIsolatedLogger("logs/websocket.log")
	}
	c.WebSocketHub = websocket.NewHub(wsLogger)
	c.ChatHandler = handler.NewChatHandler(chatbotService, c.WebSocketHub, wsLogger)

	// 7. Controllers
	c.ChatbotController = controller.NewChatbotController(chatbotService)
	c.CatalogController = controller.NewCatalogController(catalogService)
	c.HealthController = controller.NewHealthController(chatbotService)

	return c
}

func (c *Container) newSessionRepository(cfg *config.Config, now store.Clock) contract.SessionRepository {
	if cfg.Session.Backend != "redis" {
		return memory.NewSessionRepository(cfg.Session.TTL, now)
	}

	opt, err := redis.ParseURL(cfg.Session.RedisURL)
	if err != nil {
		c.Logger.Warn("BOOTSTRAP", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: cfg.Session.RedisURL}
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		c.Logger.Warn("BOOTSTRAP", "Failed to connect to Redis, sessions stay in memory", map[string]interface{}{"error": err.Error()})
		_ = rdb.Close()
		return memory.NewSessionRepository(cfg.Session.TTL, now)
	}

	c.closers = append(c.closers, func() { _ = rdb.Close() })
	c.Logger.Info("BOOTSTRAP", "Sessions stored in Redis", map[string]interface{}{"addr": opt.Addr})
	return redisRepo.NewSessionRepository(rdb, cfg.Session.TTL, now)
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func llmKeyStatus(cfg *config.Config) string {
	if cfg.Ai.LLMProvider == "ollama" {
		return constant.LLMKeyNotRequired
	}
	if cfg.LLMKey() == "" {
		return constant.LLMKeyMissing
	}
	return constant.LLMKeyPresent
}

// consumerName is the durable name of this instance's export consumer. It is
// stable across restarts on the same host.
func consumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "local"
	}
	return "usage-" + strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '-'
	}, host)
}
