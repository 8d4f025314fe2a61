// Package ws fans round events out to every connected web client. A slow or
// dead connection is pruned instead of ever stalling the round engine.
package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	apperr "github.com/elitecasino/crash-backend/internal/errors"
	"github.com/elitecasino/crash-backend/pkg/metrics"
)

// Hub keeps the registry of live connections and broadcasts engine events to
// all of them. All registry mutation happens under one mutex; per-connection
// delivery happens on each client's own write pump.
type Hub struct {
	upgrader websocket.Upgrader
	log      *slog.Logger

	mu      sync.Mutex
	clients map[*Client]struct{}
	closed  bool
}

// NewHub creates a Hub with a custom origin policy for the websocket upgrade.
func NewHub(allowOrigin func(r *http.Request) bool, log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}

	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		log:      log,
		clients:  make(map[*Client]struct{}),
	}
}

// Register adds a connection to the live set.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		close(c.send)
		return
	}

	h.clients[c] = struct{}{}
	metrics.SetConnectedClients(len(h.clients))
}

// Unregister removes a connection and closes its send channel. Unregistering
// a connection that is already gone is a no-op.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}

	delete(h.clients, c)
	close(c.send)
	metrics.SetConnectedClients(len(h.clients))
}

// Broadcast serializes event once and hands it to every registered client.
// The send into each client's buffer never blocks: a client whose buffer is
// full is dropped on the spot, so one dead consumer cannot delay the rest.
func (h *Hub) Broadcast(event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.Error("failed to marshal broadcast event", slog.Any("error", err))
		return
	}

	var stale []*Client

	h.mu.Lock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			stale = append(stale, c)
		}
	}
	for _, c := range stale {
		delete(h.clients, c)
		close(c.send)
	}
	if len(stale) > 0 {
		metrics.SetConnectedClients(len(h.clients))
	}
	h.mu.Unlock()

	for range stale {
		metrics.RecordClientDropped()

		deliveryErr := apperr.NewBroadcastError(nil)
		h.log.Warn("dropping slow client",
			slog.String("code", deliveryErr.Code),
			slog.Int("buffer", sendBufferSize),
		)
	}
}

// Len reports the number of currently registered connections.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeWS upgrades an HTTP request and runs the connection until the client
// disconnects or is pruned.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	socket, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	client := newClient(h, socket, h.log)
	h.Register(client)

	go client.writePump(websocket.TextMessage)
	client.readPump()
}

// Close drops every connection. Called once during shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}

	metrics.SetConnectedClients(0)
}
