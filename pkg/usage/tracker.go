// Package usage keeps in-memory counters of completed chats.
package usage

import (
	"sync"
	"time"

	"ipad-assistant-be/pkg/events"
)

type Stats struct {
	TotalChats     int            `json:"total_chats"`
	ByCategory     map[string]int `json:"by_category"`
	DegradedStages map[string]int `json:"degraded_stages"`
	ByTransport    map[string]int `json:"by_transport"`
	Errors         int            `json:"errors"`
	LastChatAt     *time.Time     `json:"last_chat_at,omitempty"`
}

type Tracker struct {
	mu    sync.RWMutex
	stats Stats
}

func NewTracker() *Tracker {
	return &Tracker{stats: Stats{
		ByCategory:     map[string]int{},
		DegradedStages: map[string]int{},
		ByTransport:    map[string]int{},
	}}
}

// Record folds one event into the counters. Events of other types are
// ignored.
func (t *Tracker) Record(event events.Event) {
	if event.EventType() != events.TypeChatCompleted {
		return
	}
	payload := event.Payload()

	t.mu.Lock()
	defer t.mu.Unlock()

	t.stats.TotalChats++

	category, _ := payload["category"].(string)
	if category == "" {
		category = "unknown"
	}
	t.stats.ByCategory[category]++
	if category == "error" {
		t.stats.Errors++
	}

	if transport, ok := payload["transport"].(string); ok && transport != "" {
		t.stats.ByTransport[transport]++
	}

	for _, stage := range stringList(payload["degraded_stages"]) {
		t.stats.DegradedStages[stage]++
	}

	at := event.Timestamp()
	if t.stats.LastChatAt == nil || at.After(*t.stats.LastChatAt) {
		t.stats.LastChatAt = &at
	}
}

// Snapshot returns a copy safe to serialize.
func (t *Tracker) Snapshot() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := Stats{
		TotalChats:     t.stats.TotalChats,
		ByCategory:     copyCounts(t.stats.ByCategory),
		DegradedStages: copyCounts(t.stats.DegradedStages),
		ByTransport:    copyCounts(t.stats.ByTransport),
		Errors:         t.stats.Errors,
	}
	if t.stats.LastChatAt != nil {
		at := *t.stats.LastChatAt
		out.LastChatAt = &at
	}
	return out
}

// stringList accepts both the in-process and the JSON-decoded shape.
func stringList(v interface{}) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []interface{}:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func copyCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
