package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"ipad-assistant-be/internal/repository/contract"
	"ipad-assistant-be/pkg/store"
)

const keyPrefix = "session:"

// SessionRepository stores sessions as JSON values. Keys carry a TTL equal to
// the inactivity window, refreshed on every save, so Redis drops abandoned
// sessions on its own; the injected clock still decides visibility.
type SessionRepository struct {
	rdb *redis.Client
	ttl time.Duration
	now store.Clock
}

var _ contract.SessionRepository = (*SessionRepository)(nil)

func NewSessionRepository(rdb *redis.Client, ttl time.Duration, now store.Clock) *SessionRepository {
	if now == nil {
		now = time.Now
	}
	return &SessionRepository{rdb: rdb, ttl: ttl, now: now}
}

func key(id string) string { return keyPrefix + id }

func (r *SessionRepository) Save(ctx context.Context, session *store.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := r.rdb.Set(ctx, key(session.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*store.Session, error) {
	data, err := r.rdb.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, store.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var session store.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	if session.Expired(r.now(), r.ttl) {
		return nil, store.ErrSessionNotFound
	}
	return &session, nil
}

// Delete drops the key. A session past its idle window is dropped too but
// reported as not found, matching Get.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	_, getErr := r.Get(ctx, id)
	if getErr != nil && !errors.Is(getErr, store.ErrSessionNotFound) {
		return getErr
	}
	n, err := r.rdb.Del(ctx, key(id)).Result()
	if err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	if n == 0 || getErr != nil {
		return store.ErrSessionNotFound
	}
	return nil
}

func (r *SessionRepository) List(ctx context.Context) ([]*store.Session, error) {
	all, err := r.scan(ctx)
	if err != nil {
		return nil, err
	}

	now := r.now()
	sessions := make([]*store.Session, 0, len(all))
	for _, s := range all {
		if !s.Expired(now, r.ttl) {
			sessions = append(sessions, s)
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].LastActivity.After(sessions[j].LastActivity)
	})
	return sessions, nil
}

func (r *SessionRepository) SweepExpired(ctx context.Context) (int, error) {
	all, err := r.scan(ctx)
	if err != nil {
		return 0, err
	}

	now := r.now()
	var stale []string
	for _, s := range all {
		if s.Expired(now, r.ttl) {
			stale = append(stale, key(s.ID))
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}

	n, err := r.rdb.Del(ctx, stale...).Result()
	if err != nil {
		return 0, fmt.Errorf("redis del: %w", err)
	}
	return int(n), nil
}

func (r *SessionRepository) Count(ctx context.Context) (int, error) {
	sessions, err := r.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(sessions), nil
}

// scan loads every stored session, expired or not.
func (r *SessionRepository) scan(ctx context.Context) ([]*store.Session, error) {
	var keys []string
	iter := r.rdb.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	values, err := r.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}

	sessions := make([]*store.Session, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue // removed between SCAN and MGET
		}
		var s store.Session
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			continue
		}
		sessions = append(sessions, &s)
	}
	return sessions, nil
}
