package ws

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"huddle/internal/relay"
	pkgerrors "huddle/pkg/errors"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
	sendBuffer     = 64
)

// Client is one live session. It satisfies relay.Handle so the presence
// registry and notifier never see websocket types.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan relay.Event

	mu       sync.Mutex
	closed   bool
	username string
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan relay.Event, sendBuffer),
	}
}

func (c *Client) ID() string { return c.id }

// Deliver queues an event for the write pump. A full buffer means the
// client is too slow; the event is dropped per the relay contract.
func (c *Client) Deliver(event relay.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return pkgerrors.Internal("session closed")
	}
	select {
	case c.send <- event:
		return nil
	default:
		return pkgerrors.Internal("session send buffer full")
	}
}

func (c *Client) setUsername(username string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.username = username
}

func (c *Client) Username() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.username
}

// close marks the client dead and closes the send channel exactly once.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// writePump serializes queued events onto the connection and keeps the
// ping/pong heartbeat alive. One goroutine per client.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
