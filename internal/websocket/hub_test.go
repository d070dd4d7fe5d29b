package websocket

import (
	"context"
	"testing"
	"time"

	"ipad-assistant-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(hub *Hub, id string) *Client {
	return &Client{Hub: hub, ID: id, Send: make(chan []byte, 1), done: make(chan struct{})}
}

func isClosed(ch chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func TestHubRegisterAndUnregister(t *testing.T) {
	hub := NewHub(logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	a, b := newTestClient(hub, "a"), newTestClient(hub, "b")
	require.True(t, hub.add(a))
	require.True(t, hub.add(b))
	require.Eventually(t, func() bool { return hub.Count() == 2 }, time.Second, 5*time.Millisecond)

	hub.remove(a)
	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 5*time.Millisecond)
	assert.True(t, isClosed(a.done))
	assert.False(t, isClosed(b.done))

	// Removing twice is harmless.
	hub.remove(a)
}

func TestHubShutdownReleasesClients(t *testing.T) {
	hub := NewHub(logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	c := newTestClient(hub, "c")
	require.True(t, hub.add(c))

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}

	assert.True(t, isClosed(c.done))
	assert.Equal(t, 0, hub.Count())

	// After shutdown registration is refused and removal does not block.
	assert.False(t, hub.add(newTestClient(hub, "late")))
	hub.remove(c)
}

func TestRequestContextCancelledOnShutdown(t *testing.T) {
	hub := NewHub(logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	c := newTestClient(hub, "busy")
	require.True(t, hub.add(c))

	reqCtx, reqCancel := c.requestContext()
	defer reqCancel()
	assert.NoError(t, reqCtx.Err())

	cancel()
	select {
	case <-reqCtx.Done():
	case <-time.After(time.Second):
		t.Fatal("request context outlived the hub")
	}
	assert.ErrorIs(t, reqCtx.Err(), context.Canceled)
}

func TestRequestContextReleasedByCancel(t *testing.T) {
	c := newTestClient(NewHub(logger.NewNopLogger()), "idle")

	reqCtx, reqCancel := c.requestContext()
	reqCancel()

	<-reqCtx.Done()
	assert.False(t, isClosed(c.done))
}
