package websocket

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs runs one chat connection until the peer goes away.
func ServeWs(hub *Hub, c *websocket.Conn, handle MessageHandler) {
	client := &Client{
		Hub:    hub,
		Conn:   c,
		ID:     uuid.NewString(),
		Send:   make(chan []byte, 16),
		handle: handle,
		done:   make(chan struct{}),
	}
	if !hub.add(client) {
		c.Close()
		return
	}

	go client.writePump()
	client.readPump() // blocks; the fiber handler must not return early
}
