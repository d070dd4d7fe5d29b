package service

import (
	"context"
	"strings"

	"ipad-assistant-be/internal/dto"
	"ipad-assistant-be/internal/pkg/logger"
	"ipad-assistant-be/pkg/search"
	"ipad-assistant-be/pkg/utils"
)

const (
	modelsQuery  = "Apple iPad current models"
	pricingQuery = "Apple iPad pricing cost Apple Store"

	maxModels      = 5
	maxPricingHits = 3
	summaryChars   = 200
	snippetChars   = 150
)

// CatalogSearcher is the slice of the search adapter the catalog needs.
type CatalogSearcher interface {
	SearchWithFreshnessBias(ctx context.Context, query string, limit int) search.Result
}

type ICatalogService interface {
	GetCurrentModels(ctx context.Context) (*dto.ModelsResponse, error)
	GetPricingInfo(ctx context.Context) (*dto.PricingResponse, error)
}

type catalogService struct {
	searcher CatalogSearcher
	ready    bool
	logger   logger.ILogger
}

// NewCatalogService answers the model and pricing endpoints straight from
// search results. When ready is false it refuses like the chat endpoints do.
func NewCatalogService(searcher CatalogSearcher, ready bool, log logger.ILogger) ICatalogService {
	return &catalogService{searcher: searcher, ready: ready, logger: log}
}

func (cs *catalogService) GetCurrentModels(ctx context.Context) (*dto.ModelsResponse, error) {
	if !cs.ready {
		return nil, errAgentNotInitialized
	}

	result := cs.searcher.SearchWithFreshnessBias(ctx, modelsQuery, 0)
	hits := result.Hits
	if len(hits) > maxModels {
		hits = hits[:maxModels]
	}

	models := make([]dto.ModelInfo, 0, len(hits))
	for _, hit := range hits {
		if !strings.Contains(strings.ToLower(hit.Title), "ipad") {
			continue
		}
		models = append(models, dto.ModelInfo{
			Title:   hit.Title,
			Summary: utils.Clip(hit.Content, summaryChars) + "...",
			Url:     hit.URL,
		})
	}

	cs.logger.Info("CATALOG", "Models fetched", map[string]interface{}{
		"provider": result.Provider,
		"models":   len(models),
	})
	return &dto.ModelsResponse{Models: models, Provider: result.Provider}, nil
}

func (cs *catalogService) GetPricingInfo(ctx context.Context) (*dto.PricingResponse, error) {
	if !cs.ready {
		return nil, errAgentNotInitialized
	}

	result := cs.searcher.SearchWithFreshnessBias(ctx, pricingQuery, 0)
	hits := result.Hits
	if len(hits) > maxPricingHits {
		hits = hits[:maxPricingHits]
	}

	sources := make([]dto.PricingSource, 0, len(hits))
	for _, hit := range hits {
		sources = append(sources, dto.PricingSource{
			Title:   hit.Title,
			Url:     hit.URL,
			Snippet: utils.Clip(hit.Content, snippetChars) + "...",
		})
	}

	cs.logger.Info("CATALOG", "Pricing fetched", map[string]interface{}{
		"provider": result.Provider,
		"sources":  len(sources),
	})
	return &dto.PricingResponse{
		Pricing:  dto.PricingInfo{Sources: sources},
		Provider: result.Provider,
	}, nil
}
