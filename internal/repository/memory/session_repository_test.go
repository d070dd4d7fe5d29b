package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ipad-assistant-be/pkg/store"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestSessionRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	repo := NewSessionRepository(24*time.Hour, clock.Now)

	s := store.NewSession("abc", "anonymous", clock.Now())
	require.NoError(t, repo.Save(ctx, s))

	got, err := repo.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", got.ID)

	// Returned sessions are copies.
	got.Turns = append(got.Turns, store.Turn{Role: store.RoleUser, Content: "hi"})
	again, err := repo.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Empty(t, again.Turns)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, repo.Delete(ctx, "abc"))
	_, err = repo.Get(ctx, "abc")
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "abc"), store.ErrSessionNotFound)
}

func TestSessionRepositoryExpiry(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	repo := NewSessionRepository(24*time.Hour, clock.Now)

	require.NoError(t, repo.Save(ctx, store.NewSession("old", "", clock.Now())))
	clock.Advance(20 * time.Hour)
	require.NoError(t, repo.Save(ctx, store.NewSession("fresh", "", clock.Now())))

	clock.Advance(5 * time.Hour) // old idle for 25h, fresh for 5h

	_, err := repo.Get(ctx, "old")
	assert.ErrorIs(t, err, store.ErrSessionNotFound)

	sessions, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "fresh", sessions[0].ID)

	removed, err := repo.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, repo.cache.ItemCount())

	removed, err = repo.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestSessionRepositoryDeleteExpired(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	repo := NewSessionRepository(24*time.Hour, clock.Now)

	require.NoError(t, repo.Save(ctx, store.NewSession("old", "", clock.Now())))
	clock.Advance(25 * time.Hour)

	_, err := repo.Get(ctx, "old")
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "old"), store.ErrSessionNotFound)
	assert.Zero(t, repo.cache.ItemCount())
}

func TestSessionRepositoryListOrder(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	repo := NewSessionRepository(time.Hour, clock.Now)

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Save(ctx, store.NewSession(id, "", clock.Now())))
		clock.Advance(time.Minute)
	}

	sessions, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{sessions[0].ID, sessions[1].ID, sessions[2].ID})
}
