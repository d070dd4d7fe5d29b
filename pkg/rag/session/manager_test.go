package session

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ipad-assistant-be/internal/repository/memory"
	"ipad-assistant-be/pkg/store"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestManager() (*Manager, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)}
	repo := memory.NewSessionRepository(24*time.Hour, clock.Now)
	return NewManager(repo, clock.Now, 6), clock
}

func TestAppendExchangeKeepsOrder(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestManager()

	s, err := m.Create(ctx, "anonymous")
	require.NoError(t, err)

	_, err = m.AppendExchange(ctx, s.ID, "iPad Pro price", "It starts at $999.", "pricing", []string{"https://www.apple.com/shop/buy-ipad"})
	require.NoError(t, err)
	clock.Advance(time.Minute)
	_, err = m.AppendExchange(ctx, s.ID, "and the Air?", "It starts at $599.", "pricing", nil)
	require.NoError(t, err)

	got, err := m.Get(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, got.Turns, 4)
	assert.Equal(t, []string{store.RoleUser, store.RoleAssistant, store.RoleUser, store.RoleAssistant},
		[]string{got.Turns[0].Role, got.Turns[1].Role, got.Turns[2].Role, got.Turns[3].Role})
	assert.Equal(t, "iPad Pro price", got.Turns[0].Content)
	assert.Equal(t, "pricing", got.Turns[1].Category)
	assert.True(t, got.Turns[2].Timestamp.After(got.Turns[1].Timestamp))
	assert.Equal(t, clock.Now(), got.LastActivity)
}

func TestLoadOrCreate(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager()

	s, created, err := m.LoadOrCreate(ctx, "", "u1")
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := m.LoadOrCreate(ctx, s.ID, "u1")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, s.ID, again.ID)

	other, created, err := m.LoadOrCreate(ctx, "does-not-exist", "u1")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, "does-not-exist", other.ID)
}

func TestSessionExpiry(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestManager()

	stale, err := m.Create(ctx, "")
	require.NoError(t, err)
	clock.Advance(23 * time.Hour)
	live, err := m.Create(ctx, "")
	require.NoError(t, err)
	clock.Advance(2 * time.Hour)

	_, err = m.Get(ctx, stale.ID)
	assert.ErrorIs(t, err, store.ErrSessionNotFound)

	sessions, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, live.ID, sessions[0].ID)

	_, err = m.AppendExchange(ctx, stale.ID, "hi", "hello", "general", nil)
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
}

func TestRecentContext(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager()

	s, err := m.Create(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, m.RecentContext(s))

	long := strings.Repeat("a", 400)
	for i := 0; i < 4; i++ {
		s, err = m.AppendExchange(ctx, s.ID, "question", long, "general", nil)
		require.NoError(t, err)
	}

	lines := strings.Split(m.RecentContext(s), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "User: question", lines[0])
	assert.Equal(t, "Assistant: "+strings.Repeat("a", 300)+"...", lines[1])
}

func TestRecentContextKeepsMultiByteTurnsValid(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager()

	s, err := m.Create(ctx, "")
	require.NoError(t, err)

	reply := "💰 " + strings.Repeat("é", 400)
	s, err = m.AppendExchange(ctx, s.ID, "prix?", reply, "pricing", nil)
	require.NoError(t, err)

	out := m.RecentContext(s)
	require.True(t, utf8.ValidString(out))

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Assistant: 💰 "+strings.Repeat("é", 298)+"...", lines[1])
}

func TestConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager()

	s, err := m.Create(ctx, "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.AppendExchange(ctx, s.ID, "q", "a", "general", nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := m.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Len(t, got.Turns, 40)
}
