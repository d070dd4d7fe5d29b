package mapper

import (
	"ipad-assistant-be/internal/dto"
	"ipad-assistant-be/pkg/store"
)

type SessionMapper struct{}

func NewSessionMapper() *SessionMapper {
	return &SessionMapper{}
}

func (m *SessionMapper) SessionToResponse(s *store.Session) *dto.SessionResponse {
	if s == nil {
		return nil
	}

	messages := make([]dto.SessionMessage, 0, len(s.Turns))
	for _, turn := range s.Turns {
		messages = append(messages, m.TurnToMessage(turn))
	}

	return &dto.SessionResponse{
		SessionId:    s.ID,
		UserId:       s.UserID,
		CreatedAt:    s.CreatedAt,
		LastActivity: s.LastActivity,
		MessageCount: len(messages),
		Messages:     messages,
	}
}

func (m *SessionMapper) TurnToMessage(t store.Turn) dto.SessionMessage {
	return dto.SessionMessage{
		Role:      t.Role,
		Content:   t.Content,
		Timestamp: t.Timestamp,
		Category:  t.Category,
		Sources:   t.Sources,
	}
}

func (m *SessionMapper) SessionToSummary(s *store.Session) dto.SessionSummary {
	return dto.SessionSummary{
		SessionId:    s.ID,
		UserId:       s.UserID,
		CreatedAt:    s.CreatedAt,
		LastActivity: s.LastActivity,
		MessageCount: len(s.Turns),
	}
}

func (m *SessionMapper) SessionsToList(sessions []*store.Session) *dto.ListSessionsResponse {
	summaries := make([]dto.SessionSummary, 0, len(sessions))
	for _, s := range sessions {
		summaries = append(summaries, m.SessionToSummary(s))
	}
	return &dto.ListSessionsResponse{Sessions: summaries, Total: len(summaries)}
}
