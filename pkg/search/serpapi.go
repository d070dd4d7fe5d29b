package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const serpAPIEndpoint = "https://serpapi.com/search.json"

type SerpAPI struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

func NewSerpAPI(apiKey string, client *http.Client) *SerpAPI {
	return &SerpAPI{apiKey: apiKey, endpoint: serpAPIEndpoint, client: client}
}

func (s *SerpAPI) Name() string { return SourceSerpAPI }

func (s *SerpAPI) TrySearch(ctx context.Context, req Request) ([]Hit, error) {
	params := url.Values{}
	params.Set("q", fmt.Sprintf("%s site:apple.com OR site:support.apple.com OR iPad", req.Query))
	params.Set("api_key", s.apiKey)
	params.Set("engine", "google")
	params.Set("num", strconv.Itoa(clampLimit(req.Limit, 10)))
	params.Set("hl", "en")
	params.Set("gl", "us")
	if req.Fresh {
		params.Set("tbs", "qdr:m")
	}

	body, err := getBody(ctx, s.client, s.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("serpapi: %w", err)
	}

	var payload struct {
		OrganicResults []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"organic_results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("serpapi: decode: %w", err)
	}

	hits := make([]Hit, 0, len(payload.OrganicResults))
	for _, item := range payload.OrganicResults {
		hits = append(hits, Hit{Title: item.Title, URL: item.Link, Content: item.Snippet, Source: SourceSerpAPI})
	}
	return hits, nil
}
