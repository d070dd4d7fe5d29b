package dto

import "time"

// UsageStatsResponse is returned by GET /stats.
type UsageStatsResponse struct {
	TotalChats     int            `json:"total_chats"`
	Errors         int            `json:"errors"`
	ByCategory     map[string]int `json:"by_category"`
	DegradedStages map[string]int `json:"degraded_stages"`
	ByTransport    map[string]int `json:"by_transport"`
	LastChatAt     *time.Time     `json:"last_chat_at,omitempty"`
	EventExport    string         `json:"event_export"` // "nats" or "local"
}
