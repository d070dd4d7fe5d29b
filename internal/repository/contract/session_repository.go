package contract

import (
	"context"

	"ipad-assistant-be/pkg/store"
)

// SessionRepository stores conversation sessions. Implementations hide
// expired sessions from Get, List and Count; SweepExpired physically removes
// them.
type SessionRepository interface {
	Get(ctx context.Context, id string) (*store.Session, error)
	Save(ctx context.Context, session *store.Session) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*store.Session, error)
	SweepExpired(ctx context.Context) (int, error)
	Count(ctx context.Context) (int, error)
}
