// Command ask runs questions through the assistant pipeline from a terminal.
//
//	go run ./cmd/ask "How much does the iPad Air cost?"
//	go run ./cmd/ask            # interactive, one session for the whole run
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"ipad-assistant-be/internal/config"
	"ipad-assistant-be/internal/pkg/logger"
	"ipad-assistant-be/internal/repository/memory"
	"ipad-assistant-be/pkg/llm/factory"
	"ipad-assistant-be/pkg/rag/classifier"
	"ipad-assistant-be/pkg/rag/response"
	"ipad-assistant-be/pkg/rag/session"
	"ipad-assistant-be/pkg/rag/workflow"
	"ipad-assistant-be/pkg/search"

	"github.com/fatih/color"
)

var (
	titleColor = color.New(color.FgCyan, color.Bold)
	infoColor  = color.New(color.FgHiBlack)
	warnColor  = color.New(color.FgYellow)
	errorColor = color.New(color.FgRed, color.Bold)
	youColor   = color.New(color.FgGreen, color.Bold)
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		errorColor.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	// Pipeline logs go to the file only so the terminal shows answers.
	fileLogger := logger.NewIsolatedLogger(cfg.App.LogFilePath)
	defer fileLogger.Sync()

	baseURL := cfg.Ai.LLMBaseURL
	if cfg.Ai.LLMProvider == "ollama" {
		baseURL = cfg.Ai.OllamaBaseURL
	}
	llmProvider, err := factory.NewLLMProvider(factory.Config{
		Provider:    cfg.Ai.LLMProvider,
		APIKey:      cfg.LLMKey(),
		Model:       cfg.Ai.LLMModel,
		BaseURL:     baseURL,
		Temperature: cfg.Ai.Temperature,
		MaxTokens:   cfg.Ai.MaxTokens,
		Timeout:     cfg.Ai.RequestTimeout,
	})
	if err != nil {
		errorColor.Fprintf(os.Stderr, "llm provider: %v\n", err)
		os.Exit(1)
	}

	adapter := search.NewAdapter(search.Config{
		SerpAPIKey:     cfg.Keys.SerpAPI,
		GoogleAPIKey:   cfg.Keys.GoogleAPI,
		GoogleEngineID: cfg.Keys.GoogleSearchEngineID,
		InstantURL:     cfg.Search.InstantURL,
		ScrapePages:    cfg.Search.ScrapePages,
		ScrapeDelay:    cfg.Search.ScrapeDelay,
		Timeout:        cfg.Search.Timeout,
		ResultLimit:    cfg.Search.ResultLimit,
		DisableLive:    cfg.Search.DisableLive,
	}, fileLogger.StdLogger("SEARCH"))
	defer adapter.Close()

	orchestrator := workflow.NewOrchestrator(
		classifier.NewClassifier(llmProvider, fileLogger.StdLogger("CLASSIFIER")),
		adapter,
		response.NewGenerator(llmProvider, fileLogger.StdLogger("GENERATOR")),
		cfg.Search.ResultLimit,
		fileLogger.StdLogger("PIPELINE"),
	)

	sessions := session.NewManager(memory.NewSessionRepository(cfg.Session.TTL, time.Now), time.Now, cfg.Session.ContextSize)
	ctx := context.Background()
	chatSession, err := sessions.Create(ctx, "cli")
	if err != nil {
		errorColor.Fprintf(os.Stderr, "session: %v\n", err)
		os.Exit(1)
	}

	titleColor.Printf("iPad assistant (%s, search: %s)\n", cfg.Ai.LLMProvider, strings.Join(adapter.Providers(), " > "))

	if len(os.Args) > 1 {
		ask(ctx, orchestrator, sessions, chatSession.ID, strings.Join(os.Args[1:], " "))
		return
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		youColor.Print("you> ")
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		query := strings.TrimSpace(scanner.Text())
		switch query {
		case "":
			continue
		case "exit", "quit":
			return
		}
		ask(ctx, orchestrator, sessions, chatSession.ID, query)
	}
}

func ask(ctx context.Context, orchestrator *workflow.Orchestrator, sessions *session.Manager, sessionID, query string) {
	chatSession, err := sessions.Get(ctx, sessionID)
	if err != nil {
		errorColor.Printf("session: %v\n", err)
		return
	}

	started := time.Now()
	result := orchestrator.Run(ctx, workflow.Input{
		Query:     query,
		SessionID: sessionID,
		UserID:    "cli",
		History:   sessions.RecentContext(chatSession),
	})

	if _, err := sessions.AppendExchange(ctx, sessionID, query, result.Response, string(result.Category), result.Sources); err != nil {
		warnColor.Printf("could not store the exchange: %v\n", err)
	}

	fmt.Println()
	fmt.Println(result.Response)
	fmt.Println()
	infoColor.Printf("category=%s sources=%d took=%s\n", result.Category, len(result.Sources), time.Since(started).Round(time.Millisecond))
	if degraded, ok := result.Metadata["degraded_stages"].([]string); ok && len(degraded) > 0 {
		warnColor.Printf("degraded: %s\n", strings.Join(degraded, ", "))
	}
	if reason, ok := result.Metadata["error"].(string); ok {
		errorColor.Printf("error: %s\n", reason)
	}
}
