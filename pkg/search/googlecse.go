package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const googleCSEEndpoint = "https://www.googleapis.com/customsearch/v1"

// GoogleCSE queries the Google Custom Search JSON API.
type GoogleCSE struct {
	apiKey   string
	engineID string
	endpoint string
	client   *http.Client
}

func NewGoogleCSE(apiKey, engineID string, client *http.Client) *GoogleCSE {
	return &GoogleCSE{apiKey: apiKey, engineID: engineID, endpoint: googleCSEEndpoint, client: client}
}

func (g *GoogleCSE) Name() string { return SourceGoogle }

func (g *GoogleCSE) TrySearch(ctx context.Context, req Request) ([]Hit, error) {
	params := url.Values{}
	params.Set("q", fmt.Sprintf("%s iPad Apple", req.Query))
	params.Set("key", g.apiKey)
	params.Set("cx", g.engineID)
	params.Set("num", strconv.Itoa(clampLimit(req.Limit, 10)))
	if req.Fresh {
		params.Set("dateRestrict", "m1")
	}

	body, err := getBody(ctx, g.client, g.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("google cse: %w", err)
	}

	var payload struct {
		Items []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"items"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("google cse: decode: %w", err)
	}

	hits := make([]Hit, 0, len(payload.Items))
	for _, item := range payload.Items {
		hits = append(hits, Hit{Title: item.Title, URL: item.Link, Content: item.Snippet, Source: SourceGoogle})
	}
	return hits, nil
}
