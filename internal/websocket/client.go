package websocket

import (
	"context"
	"time"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 * 1024
)

// MessageHandler turns one inbound text frame into the frame sent back.
type MessageHandler func(ctx context.Context, payload []byte) []byte

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	Hub *Hub

	// The websocket connection.
	Conn *websocket.Conn

	// ID identifies the connection in logs.
	ID string

	// Buffered channel of outbound messages.
	Send chan []byte

	handle MessageHandler

	// done is closed by the hub when the client is dropped.
	done chan struct{}
}

// requestContext is cancelled when the hub drops the client or cancel is
// called, whichever comes first.
func (c *Client) requestContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-c.done:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// readPump reads chat frames, answers each in turn and queues the reply.
// In-flight chats stop when the hub shuts down.
func (c *Client) readPump() {
	ctx, cancel := c.requestContext()
	defer func() {
		cancel()
		c.Hub.remove(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, payload, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("WS_CLIENT", "Unexpected close", map[string]interface{}{"client_id": c.ID, "error": err.Error()})
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		reply := c.handle(ctx, payload)

		// A chat can outlast the pong window while no reads happen.
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))

		select {
		case c.Send <- reply:
		case <-c.done:
			return
		}
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-c.done:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
