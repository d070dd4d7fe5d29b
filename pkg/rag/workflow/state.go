package workflow

import (
	"ipad-assistant-be/pkg/rag/category"
	"ipad-assistant-be/pkg/rag/extract"
	"ipad-assistant-be/pkg/search"
)

const maxSources = 5

// Input is one user request entering the pipeline.
type Input struct {
	Query     string
	SessionID string
	UserID    string
	History   string // rendered recent turns, may be empty
}

// Result is what callers get back. Run never returns an error; failures are
// reported through Category (category.Error) and Metadata["error"].
type Result struct {
	Response string            `json:"response"`
	Sources  []string          `json:"sources"`
	Category category.Category `json:"category"`
	Metadata map[string]any    `json:"metadata"`
}

// State is threaded through every stage of one request. Once Error is set no
// other field is trusted.
type State struct {
	Query     string
	UserID    string
	SessionID string
	History   string

	Category category.Category
	Queries  []string
	Hits     []search.Hit
	Facts    extract.FactBag
	Response string
	Sources  []string
	Error    string
	Metadata map[string]any

	Providers []string
	Degraded  []string
	Visited   []Stage
}

func newState(in Input) *State {
	return &State{
		Query:     in.Query,
		UserID:    in.UserID,
		SessionID: in.SessionID,
		History:   in.History,
		Metadata:  map[string]any{},
	}
}

func (s *State) degrade(stage Stage) {
	for _, d := range s.Degraded {
		if d == stage.String() {
			return
		}
	}
	s.Degraded = append(s.Degraded, stage.String())
}

func (s *State) result() Result {
	sources := s.Sources
	if sources == nil {
		sources = []string{}
	}
	return Result{
		Response: s.Response,
		Sources:  sources,
		Category: s.Category,
		Metadata: s.Metadata,
	}
}
