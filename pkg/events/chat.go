package events

import "time"

const TypeChatCompleted = "CHAT_COMPLETED"

// ChatCompleted describes one finished pipeline run.
type ChatCompleted struct {
	SessionID  string
	UserID     string
	Category   string
	Sources    int
	Degraded   []string
	DurationMs int64
	Transport  string // "http" or "websocket"
	At         time.Time
}

func (c ChatCompleted) EventType() string { return TypeChatCompleted }

func (c ChatCompleted) Timestamp() time.Time { return c.At }

func (c ChatCompleted) Payload() map[string]interface{} {
	degraded := make([]interface{}, len(c.Degraded))
	for i, d := range c.Degraded {
		degraded[i] = d
	}
	return map[string]interface{}{
		"session_id":      c.SessionID,
		"user_id":         c.UserID,
		"category":        c.Category,
		"sources":         c.Sources,
		"degraded_stages": degraded,
		"duration_ms":     c.DurationMs,
		"transport":       c.Transport,
	}
}
