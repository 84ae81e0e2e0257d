package websocket

import (
	"context"
	"time"

	ws "github.com/coder/websocket"
)

const (
	// A single incident can fan out several events (create, upvotes, status
	// changes) before a mobile client on a slow link drains them.
	sendBufferSize = 32

	// Mobile networks drop idle connections aggressively.
	pingInterval = 25 * time.Second

	// The feed is one-way; clients have nothing to say beyond control frames.
	readLimit = 512
)

// Client represents a single connected map viewer.
type Client struct {
	hub  *Hub
	conn *ws.Conn
	send chan []byte
}

// NewClient creates a Client tied to the given hub and connection.
func NewClient(hub *Hub, conn *ws.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
}

// Run registers the client, starts the write pump, and runs the read pump.
// It blocks until the connection is closed, then unregisters.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	c.conn.SetReadLimit(readLimit)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.writePump(ctx)
	c.readPump(ctx)
}

// readPump discards anything the client sends. It returns on error
// (connection close), which triggers cleanup.
func (c *Client) readPump(ctx context.Context) {
	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			return
		}
	}
}

// writePump drains the send channel and writes report events to the
// WebSocket, pinging periodically to detect stale connections.
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				// Hub dropped the client; tell the browser not to retry blindly.
				c.conn.Close(ws.StatusNormalClosure, "feed closed")
				return
			}
			if err := c.conn.Write(ctx, ws.MessageText, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
