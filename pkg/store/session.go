package store

import (
	"errors"
	"time"
)

// ErrSessionNotFound is returned for unknown and expired sessions alike.
var ErrSessionNotFound = errors.New("session not found")

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Clock returns the current time. Repositories and the session manager take
// one so expiry can be tested without sleeping.
type Clock func() time.Time

// Turn is one message of a conversation.
type Turn struct {
	Role      string    `json:"role"` // "user" | "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Category  string    `json:"category,omitempty"`
	Sources   []string  `json:"sources,omitempty"`
}

// Session is the server-side record of one conversation.
type Session struct {
	ID           string    `json:"session_id"`
	UserID       string    `json:"user_id,omitempty"`
	Turns        []Turn    `json:"messages"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
}

func NewSession(id, userID string, now time.Time) *Session {
	return &Session{
		ID:           id,
		UserID:       userID,
		Turns:        []Turn{},
		CreatedAt:    now,
		LastActivity: now,
	}
}

// Expired reports whether the session has been idle for longer than ttl.
func (s *Session) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.LastActivity) > ttl
}

// Clone returns a deep copy so callers never share turn slices.
func (s *Session) Clone() *Session {
	c := *s
	c.Turns = make([]Turn, len(s.Turns))
	for i, t := range s.Turns {
		c.Turns[i] = t
		if t.Sources != nil {
			c.Turns[i].Sources = append([]string(nil), t.Sources...)
		}
	}
	return &c
}
