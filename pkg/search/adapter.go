package search

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"
)

type Config struct {
	SerpAPIKey     string
	GoogleAPIKey   string
	GoogleEngineID string
	InstantURL     string
	ScrapePages    []string
	ScrapeDelay    time.Duration
	Timeout        time.Duration
	ResultLimit    int
	DisableLive    bool
}

// Adapter walks an ordered provider chain and returns the first non-empty
// result set. The canned provider closes the chain, so results are never
// empty.
type Adapter struct {
	providers    []Provider
	canned       *Canned
	client       *http.Client
	defaultLimit int
	logger       *log.Logger
}

func NewAdapter(cfg Config, logger *log.Logger) *Adapter {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	client := &http.Client{Timeout: cfg.Timeout}

	var providers []Provider
	if !cfg.DisableLive {
		if cfg.SerpAPIKey != "" {
			providers = append(providers, NewSerpAPI(cfg.SerpAPIKey, client))
		}
		if cfg.GoogleAPIKey != "" && cfg.GoogleEngineID != "" {
			providers = append(providers, NewGoogleCSE(cfg.GoogleAPIKey, cfg.GoogleEngineID, client))
		}
		providers = append(providers, NewInstantAnswer(cfg.InstantURL, client))
		if len(cfg.ScrapePages) > 0 {
			providers = append(providers, NewScraper(cfg.ScrapePages, cfg.ScrapeDelay, client, logger))
		}
	}

	a := NewAdapterWithProviders(providers, logger)
	a.client = client
	if cfg.ResultLimit > 0 {
		a.defaultLimit = cfg.ResultLimit
	}
	return a
}

// NewAdapterWithProviders builds an adapter over an explicit chain. The canned
// provider is always appended.
func NewAdapterWithProviders(providers []Provider, logger *log.Logger) *Adapter {
	return &Adapter{
		providers:    providers,
		canned:       NewCanned(),
		defaultLimit: 10,
		logger:       logger,
	}
}

func (a *Adapter) Search(ctx context.Context, query string, limit int) Result {
	return a.run(ctx, Request{Query: query, Limit: a.limit(limit)})
}

// SearchWithFreshnessBias asks every provider that supports it for recently
// published results.
func (a *Adapter) SearchWithFreshnessBias(ctx context.Context, query string, limit int) Result {
	return a.run(ctx, Request{Query: query, Limit: a.limit(limit), Fresh: true})
}

func (a *Adapter) SearchAppleStore(ctx context.Context, query string) Result {
	return a.Search(ctx, fmt.Sprintf("site:apple.com %s iPad", query), 0)
}

func (a *Adapter) SearchAppleSupport(ctx context.Context, query string) Result {
	return a.Search(ctx, fmt.Sprintf("site:support.apple.com %s iPad", query), 0)
}

// Providers lists the chain in the order it is tried.
func (a *Adapter) Providers() []string {
	names := make([]string, 0, len(a.providers)+1)
	for _, p := range a.providers {
		names = append(names, p.Name())
	}
	return append(names, a.canned.Name())
}

// Close releases idle connections held by the shared client.
func (a *Adapter) Close() {
	if a.client != nil {
		a.client.CloseIdleConnections()
	}
}

func (a *Adapter) run(ctx context.Context, req Request) Result {
	for _, p := range a.providers {
		if ctx.Err() != nil {
			break
		}

		hits, err := p.TrySearch(ctx, req)
		if err != nil {
			a.logger.Printf("[WARN] Search provider %s failed: %v", p.Name(), err)
			continue
		}
		if len(hits) == 0 {
			a.logger.Printf("[DEBUG] Search provider %s returned no results", p.Name())
			continue
		}

		if len(hits) > req.Limit {
			hits = hits[:req.Limit]
		}
		return Result{Hits: hits, Provider: p.Name()}
	}

	a.logger.Printf("[SEARCH] Live providers exhausted, using canned results for %q", req.Query)
	return Result{Hits: a.canned.Hits(req.Query, req.Limit), Provider: a.canned.Name()}
}

func (a *Adapter) limit(limit int) int {
	if limit <= 0 {
		return a.defaultLimit
	}
	return limit
}
