package memory

import (
	"context"
	"sort"
	"time"

	"github.com/patrickmn/go-cache"

	"ipad-assistant-be/internal/repository/contract"
	"ipad-assistant-be/pkg/store"
)

type SessionRepository struct {
	cache *cache.Cache
	ttl   time.Duration
	now   store.Clock
}

var _ contract.SessionRepository = (*SessionRepository)(nil)

// NewSessionRepository keeps sessions in a go-cache without its own janitor:
// expiry follows the injected clock.
func NewSessionRepository(ttl time.Duration, now store.Clock) *SessionRepository {
	if now == nil {
		now = time.Now
	}
	return &SessionRepository{
		cache: cache.New(cache.NoExpiration, 0),
		ttl:   ttl,
		now:   now,
	}
}

func (r *SessionRepository) Save(_ context.Context, session *store.Session) error {
	r.cache.Set(session.ID, session.Clone(), cache.NoExpiration)
	return nil
}

func (r *SessionRepository) Get(_ context.Context, sessionID string) (*store.Session, error) {
	x, found := r.cache.Get(sessionID)
	if !found {
		return nil, store.ErrSessionNotFound
	}
	session := x.(*store.Session)
	if session.Expired(r.now(), r.ttl) {
		return nil, store.ErrSessionNotFound
	}
	return session.Clone(), nil
}

// Delete drops the session. An expired session is dropped too but reported
// as not found, matching Get.
func (r *SessionRepository) Delete(_ context.Context, sessionID string) error {
	x, found := r.cache.Get(sessionID)
	if !found {
		return store.ErrSessionNotFound
	}
	r.cache.Delete(sessionID)
	if x.(*store.Session).Expired(r.now(), r.ttl) {
		return store.ErrSessionNotFound
	}
	return nil
}

// List returns live sessions, most recently active first.
func (r *SessionRepository) List(_ context.Context) ([]*store.Session, error) {
	now := r.now()
	var sessions []*store.Session
	for _, item := range r.cache.Items() {
		session := item.Object.(*store.Session)
		if session.Expired(now, r.ttl) {
			continue
		}
		sessions = append(sessions, session.Clone())
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].LastActivity.After(sessions[j].LastActivity)
	})
	return sessions, nil
}

func (r *SessionRepository) SweepExpired(_ context.Context) (int, error) {
	now := r.now()
	removed := 0
	for id, item := range r.cache.Items() {
		if item.Object.(*store.Session).Expired(now, r.ttl) {
			r.cache.Delete(id)
			removed++
		}
	}
	return removed, nil
}

func (r *SessionRepository) Count(ctx context.Context) (int, error) {
	sessions, err := r.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(sessions), nil
}
