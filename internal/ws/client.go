package ws

import (
	"log/slog"
	"time"
)

const (
	// sendBufferSize is how many pending events a client may lag behind
	// before the hub gives up on it.
	sendBufferSize = 64

	writeTimeout = 5 * time.Second
)

// conn is the subset of *websocket.Conn the hub relies on. Narrowing the
// surface keeps the client testable without a network socket.
type conn interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Client is the hub's handle to one live connection. The hub owns it for its
// whole lifetime; nothing outside this package touches the underlying socket.
type Client struct {
	hub  *Hub
	conn conn
	log  *slog.Logger

	// send carries serialized events to the write pump. It is closed by the
	// hub on unregistration, never by the client itself.
	send chan []byte
}

func newClient(hub *Hub, c conn, log *slog.Logger) *Client {
	return &Client{
		hub:  hub,
		conn: c,
		log:  log,
		send: make(chan []byte, sendBufferSize),
	}
}

// writePump drains the send channel into the socket. Running it on a single
// goroutine serializes delivery per connection. A write failure unregisters
// the client; the error never travels further than this loop.
func (c *Client) writePump(messageType int) {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	for message := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))

		if err := c.conn.WriteMessage(messageType, message); err != nil {
			if c.log != nil {
				c.log.Debug("client write failed, dropping connection", slog.Any("error", err))
			}
			return
		}
	}
}

// readPump consumes inbound frames until the peer goes away. Client messages
// carry no game actions (bets travel over the HTTP API), so frames are
// discarded; the read loop exists to detect disconnects and close frames.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
