package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"ipad-assistant-be/internal/repository/contract"
	"ipad-assistant-be/pkg/store"
	"ipad-assistant-be/pkg/utils"
)

const (
	DefaultContextTurns   = 6
	assistantContextChars = 300
)

// Manager handles session operations on top of a repository.
type Manager struct {
	sessionRepo  contract.SessionRepository
	now          store.Clock
	contextTurns int

	// mu serializes read-modify-write cycles on sessions.
	mu sync.Mutex
}

// NewManager creates a new session manager
func NewManager(sessionRepo contract.SessionRepository, now store.Clock, contextTurns int) *Manager {
	if now == nil {
		now = time.Now
	}
	if contextTurns <= 0 {
		contextTurns = DefaultContextTurns
	}
	return &Manager{sessionRepo: sessionRepo, now: now, contextTurns: contextTurns}
}

// Create starts an empty session. Expired sessions are swept first.
func (m *Manager) Create(ctx context.Context, userID string) (*store.Session, error) {
	if _, err := m.Sweep(ctx); err != nil {
		return nil, err
	}

	session := store.NewSession(uuid.New().String(), userID, m.now())
	if err := m.sessionRepo.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return session, nil
}

// LoadOrCreate returns the live session with the given id, or a new one when
// the id is empty, unknown or expired.
func (m *Manager) LoadOrCreate(ctx context.Context, sessionID, userID string) (*store.Session, bool, error) {
	if sessionID != "" {
		session, err := m.sessionRepo.Get(ctx, sessionID)
		if err == nil {
			return session, false, nil
		}
		if !errors.Is(err, store.ErrSessionNotFound) {
			return nil, false, err
		}
	}

	session, err := m.Create(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	return session, true, nil
}

func (m *Manager) Get(ctx context.Context, sessionID string) (*store.Session, error) {
	return m.sessionRepo.Get(ctx, sessionID)
}

func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionRepo.Delete(ctx, sessionID)
}

// List sweeps expired sessions and returns the rest.
func (m *Manager) List(ctx context.Context) ([]*store.Session, error) {
	if _, err := m.Sweep(ctx); err != nil {
		return nil, err
	}
	return m.sessionRepo.List(ctx)
}

func (m *Manager) Count(ctx context.Context) (int, error) {
	return m.sessionRepo.Count(ctx)
}

// AppendExchange records a user turn and the assistant reply, in that order,
// and refreshes the session's last activity.
func (m *Manager) AppendExchange(ctx context.Context, sessionID, userText, assistantText, category string, sources []string) (*store.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, err := m.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	now := m.now()
	session.Turns = append(session.Turns,
		store.Turn{Role: store.RoleUser, Content: userText, Timestamp: now},
		store.Turn{Role: store.RoleAssistant, Content: assistantText, Timestamp: now, Category: category, Sources: sources},
	)
	session.LastActivity = now

	if err := m.sessionRepo.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return session, nil
}

// RecentContext renders the last turns as "User:"/"Assistant:" lines.
// Assistant turns are truncated; an empty session renders as "".
func (m *Manager) RecentContext(session *store.Session) string {
	if session == nil || len(session.Turns) == 0 {
		return ""
	}

	turns := session.Turns
	if len(turns) > m.contextTurns {
		turns = turns[len(turns)-m.contextTurns:]
	}

	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		if t.Role == store.RoleUser {
			lines = append(lines, "User: "+t.Content)
			continue
		}
		lines = append(lines, "Assistant: "+utils.Truncate(t.Content, assistantContextChars))
	}
	return strings.Join(lines, "\n")
}

// Sweep removes expired sessions and returns how many were dropped.
func (m *Manager) Sweep(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed, err := m.sessionRepo.SweepExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("sweep sessions: %w", err)
	}
	return removed, nil
}
