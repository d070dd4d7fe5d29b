package websocket

import (
	"context"
	"sync"

	"ipad-assistant-be/internal/pkg/logger"
)

// Hub tracks live chat connections and drops them all on shutdown.
type Hub struct {
	clients map[*Client]struct{}

	register   chan *Client
	unregister chan *Client

	// stopped is closed when Run returns.
	stopped chan struct{}

	mu sync.RWMutex

	// Dedicated Logger
	logger logger.ILogger
}

func NewHub(log logger.ILogger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stopped:    make(chan struct{}),
		logger:     log,
	}
}

// Run serves registrations until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"client_id": client.ID, "connections": total})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.done)
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client unregistered", map[string]interface{}{"client_id": client.ID, "connections": total})

		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.done)
			}
			h.mu.Unlock()
			h.logger.Info("Hub", "Hub stopped", nil)
			return
		}
	}
}

// Count returns the number of live connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) add(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.stopped:
		return false
	}
}

func (h *Hub) remove(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.stopped:
	}
}
