// Package wshub streams display protocol envelopes to connected WebSocket
// front-ends.
package wshub

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/uninav/wayfinder/pkg/streaming"
)

const (
	writeTimeout = 5 * time.Second
	sendBuffer   = 256
)

// Hub implements display.Surface over a set of WebSocket connections. A
// display that connects mid-route receives the last route announcement so it
// can catch up.
type Hub struct {
	log      *slog.Logger
	upgrader websocket.Upgrader

	mu        sync.Mutex
	clients   map[*client]struct{}
	lastRoute *streaming.Envelope
	closed    bool
}

type client struct {
	conn *websocket.Conn
	send chan streaming.Envelope
	once sync.Once
}

// New creates an empty hub.
func New(log *slog.Logger) *Hub {
	return &Hub{
		log: log,
		upgrader: websocket.Upgrader{
			// Kiosk front-ends are served from arbitrary origins on the local
			// network.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// ServeHTTP upgrades the request and registers the display connection.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("WebSocket upgrade failed", "error", err)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan streaming.Envelope, sendBuffer),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	replay := h.lastRoute
	h.mu.Unlock()

	h.log.Info("Display connected", "remote", conn.RemoteAddr().String())

	if replay != nil {
		c.enqueue(*replay)
	}

	go h.writeLoop(c)
	go h.readLoop(c)
}

// Present broadcasts the envelope to every connected display. Route and
// reset messages are remembered for replay to late joiners.
func (h *Hub) Present(env streaming.Envelope) error {
	h.mu.Lock()
	switch env.Type {
	case streaming.TypeRoute:
		envCopy := env
		h.lastRoute = &envCopy
	case streaming.TypeReset:
		h.lastRoute = nil
	}
	targets := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.Unlock()

	for _, c := range targets {
		c.enqueue(env)
	}
	return nil
}

// ClientCount returns the number of connected displays.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects all displays and rejects new connections.
func (h *Hub) Close() error {
	h.mu.Lock()
	h.closed = true
	targets := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()

	for _, c := range targets {
		c.close()
	}
	return nil
}

// enqueue pushes an envelope without blocking. Frames arrive at up to 60 Hz;
// a display that cannot keep up loses frames, not the connection.
func (c *client) enqueue(env streaming.Envelope) {
	select {
	case c.send <- env:
	default:
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

func (h *Hub) writeLoop(c *client) {
	defer c.conn.Close()
	for env := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteJSON(env); err != nil {
			h.log.Debug("Display write failed", "error", err)
			h.drop(c)
			return
		}
	}
}

// readLoop drains inbound messages so pings are processed and disconnects
// are detected.
func (h *Hub) readLoop(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.drop(c)
			return
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	_, present := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()

	if present {
		h.log.Info("Display disconnected", "remote", c.conn.RemoteAddr().String())
		c.close()
	}
}
