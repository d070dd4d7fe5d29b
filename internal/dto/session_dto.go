package dto

import "time"

type CreateSessionRequest struct {
	UserId string `json:"user_id,omitempty" validate:"omitempty,max=64"`
}

type CreateSessionResponse struct {
	SessionId string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}

type SessionMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Category  string    `json:"category,omitempty"`
	Sources   []string  `json:"sources,omitempty"`
}

type SessionResponse struct {
	SessionId    string           `json:"session_id"`
	UserId       string           `json:"user_id,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	LastActivity time.Time        `json:"last_activity"`
	MessageCount int              `json:"message_count"`
	Messages     []SessionMessage `json:"messages"`
}

// SessionSummary is one row of GET /sessions; messages are omitted.
type SessionSummary struct {
	SessionId    string    `json:"session_id"`
	UserId       string    `json:"user_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
	MessageCount int       `json:"message_count"`
}

type ListSessionsResponse struct {
	Sessions []SessionSummary `json:"sessions"`
	Total    int              `json:"total"`
}
