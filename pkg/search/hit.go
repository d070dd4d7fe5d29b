// Package search wraps the external web search backends behind an ordered
// fallback chain that always produces at least the canned result set.
package search

import "time"

// Hit is one normalized search result. Hits have no identity beyond their
// position; duplicates across providers or query variants are kept.
type Hit struct {
	Title     string     `json:"title"`
	URL       string     `json:"url"`
	Content   string     `json:"content"`
	Source    string     `json:"source"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// Request is what a provider is asked for. Fresh asks the backend to prefer
// recently published pages where it supports that.
type Request struct {
	Query string
	Limit int
	Fresh bool
}

// Result is the output of one adapter call.
type Result struct {
	Hits     []Hit  `json:"hits"`
	Provider string `json:"provider"`
}

const (
	SourceSerpAPI = "serpapi"
	SourceGoogle  = "google_custom"
	SourceInstant = "duckduckgo"
	SourceScrape  = "scrape"
	SourceCanned  = "canned"
)
