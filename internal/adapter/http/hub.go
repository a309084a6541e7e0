package http

import (
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/couchcryptid/hazard-animation-service/internal/observability"
	"github.com/couchcryptid/hazard-animation-service/internal/render"
)

// clientBuffer is how many frames a slow websocket client may fall behind
// before it is dropped.
const clientBuffer = 64

// Hub fans rendered frames out to websocket subscribers.
// It implements render.Sink, so a render.Broadcast renderer can publish
// straight into it.
type Hub struct {
	logger  *slog.Logger
	metrics *observability.Metrics

	mu      sync.Mutex
	clients map[*hubClient]struct{}
}

type hubClient struct {
	conn *websocket.Conn
	send chan render.Frame
}

// NewHub creates an empty frame hub.
func NewHub(logger *slog.Logger, metrics *observability.Metrics) *Hub {
	return &Hub{
		logger:  logger,
		metrics: metrics,
		clients: make(map[*hubClient]struct{}),
	}
}

// Publish sends a frame to every connected client. Clients whose buffers
// are full are disconnected rather than allowed to stall the animation.
func (h *Hub) Publish(frame render.Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- frame:
		default:
			h.dropLocked(c, "send buffer full")
		}
	}
}

// ClientCount returns the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// add registers a connection and starts its write pump.
func (h *Hub) add(conn *websocket.Conn) *hubClient {
	c := &hubClient{conn: conn, send: make(chan render.Frame, clientBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.metrics.StreamClients.Inc()
	go h.writePump(c)
	return c
}

// remove unregisters a connection; safe to call twice.
func (h *Hub) remove(c *hubClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		h.dropLocked(c, "closed")
	}
}

// dropLocked removes a client and closes its send channel.
// Caller holds h.mu.
func (h *Hub) dropLocked(c *hubClient, reason string) {
	delete(h.clients, c)
	close(c.send)
	h.metrics.StreamClients.Dec()
	h.logger.Debug("frame client dropped", "reason", reason)
}

// writePump serializes frames to one connection until its channel closes.
func (h *Hub) writePump(c *hubClient) {
	defer c.conn.Close()
	for frame := range c.send {
		if err := c.conn.WriteJSON(frame); err != nil {
			h.remove(c)
			return
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.dropLocked(c, "hub closing")
	}
}
