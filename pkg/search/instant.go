package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ipad-assistant-be/pkg/utils"
)

// InstantAnswer uses the unauthenticated DuckDuckGo instant answer API. It
// only knows about topics, so it often returns nothing for long queries.
type InstantAnswer struct {
	endpoint string
	client   *http.Client
	now      func() time.Time
}

type instantTopic struct {
	Text     string         `json:"Text"`
	FirstURL string         `json:"FirstURL"`
	Topics   []instantTopic `json:"Topics"`
}

type instantResponse struct {
	Heading        string         `json:"Heading"`
	AbstractText   string         `json:"AbstractText"`
	AbstractURL    string         `json:"AbstractURL"`
	AbstractSource string         `json:"AbstractSource"`
	RelatedTopics  []instantTopic `json:"RelatedTopics"`
}

func NewInstantAnswer(endpoint string, client *http.Client) *InstantAnswer {
	if endpoint == "" {
		endpoint = "https://api.duckduckgo.com/"
	}
	return &InstantAnswer{endpoint: endpoint, client: client, now: time.Now}
}

func (d *InstantAnswer) Name() string { return SourceInstant }

func (d *InstantAnswer) TrySearch(ctx context.Context, req Request) ([]Hit, error) {
	query := req.Query
	if req.Fresh {
		query = query + " " + strconv.Itoa(d.now().Year())
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("no_html", "1")
	params.Set("skip_disambig", "1")

	body, err := getBody(ctx, d.client, d.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("instant answer: %w", err)
	}

	var payload instantResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("instant answer: decode: %w", err)
	}

	limit := clampLimit(req.Limit, 10)
	var hits []Hit
	if strings.TrimSpace(payload.AbstractText) != "" && payload.AbstractURL != "" {
		title := payload.Heading
		if payload.AbstractSource != "" {
			title = fmt.Sprintf("%s - %s", payload.Heading, payload.AbstractSource)
		}
		hits = append(hits, Hit{Title: title, URL: payload.AbstractURL, Content: payload.AbstractText, Source: SourceInstant})
	}

	for _, topic := range flattenTopics(payload.RelatedTopics) {
		if len(hits) >= limit {
			break
		}
		hits = append(hits, Hit{Title: topicTitle(topic.Text), URL: topic.FirstURL, Content: topic.Text, Source: SourceInstant})
	}
	return hits, nil
}

// flattenTopics expands grouped topics into a single list.
func flattenTopics(topics []instantTopic) []instantTopic {
	var out []instantTopic
	for _, t := range topics {
		if len(t.Topics) > 0 {
			out = append(out, flattenTopics(t.Topics)...)
			continue
		}
		if t.Text != "" && t.FirstURL != "" {
			out = append(out, t)
		}
	}
	return out
}

func topicTitle(text string) string {
	if i := strings.Index(text, " - "); i > 0 {
		return text[:i]
	}
	return utils.Truncate(text, 60)
}
