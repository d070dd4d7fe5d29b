package dto

import "time"

const (
	AgentHealthy        = "healthy"
	AgentDegraded       = "degraded"
	AgentNotInitialized = "not_initialized"
)

type HealthResponse struct {
	Status          string    `json:"status"`
	AgentStatus     string    `json:"agent_status"`
	LLMProvider     string    `json:"llm_provider"`
	LLMKeyStatus    string    `json:"llm_key_status"` // "present", "missing" or "not_required"
	ActiveSessions  int       `json:"active_sessions"`
	SearchProviders []string  `json:"search_providers"`
	Timestamp       time.Time `json:"timestamp"`
}
