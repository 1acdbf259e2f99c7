package ws

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/dicearena-go/internal/dependencies/notifier"
	"github.com/mcoot/dicearena-go/internal/metrics"
	"github.com/mcoot/dicearena-go/internal/model"
)

// delivery is an encoded frame for one connection, or for every connection
// when conn is empty
type delivery struct {
	conn    model.ConnectionID
	message []byte
}

// Hub tracks connected clients and fans outbound events out to them.
// Frames queued for one client are written in the order they were sent.
type Hub struct {
	clients map[model.ConnectionID]*Client
	mu      sync.RWMutex
	metrics *metrics.Metrics
	logger  *slog.Logger

	// Channels for managing clients
	register   chan *Client
	unregister chan *Client
	outbound   chan delivery
	done       chan struct{}
	closeOnce  sync.Once
}

// Ensure Hub implements Notifier
var _ notifier.Notifier = (*Hub)(nil)

// NewHub creates a new Hub. Run must be called to start it.
func NewHub(metrics *metrics.Metrics, logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[model.ConnectionID]*Client),
		metrics:    metrics,
		logger:     logger.With(slog.String("component", "ws")),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		outbound:   make(chan delivery, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop. It returns once Close is called.
func (h *Hub) Run() {
	h.logger.Info("ws hub started")
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			clientCount := len(h.clients)
			h.mu.Unlock()
			h.metrics.ClientConnected()
			h.logger.Info("ws client registered",
				slog.String("conn_id", string(client.id)),
				slog.Int("total_clients", clientCount))

		case client := <-h.unregister:
			h.mu.Lock()
			if current, ok := h.clients[client.id]; ok && current == client {
				delete(h.clients, client.id)
				close(client.send)
				clientCount := len(h.clients)
				h.mu.Unlock()
				h.metrics.ClientDisconnected()
				h.logger.Info("ws client unregistered",
					slog.String("conn_id", string(client.id)),
					slog.Duration("connection_duration", time.Since(client.connectedAt)),
					slog.Int("total_clients", clientCount))
			} else {
				h.mu.Unlock()
			}

		case d := <-h.outbound:
			h.deliver(d)

		case <-h.done:
			h.mu.Lock()
			clientCount := len(h.clients)
			for id, client := range h.clients {
				close(client.send)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			h.logger.Info("ws hub stopped", slog.Int("disconnected_clients", clientCount))
			return
		}
	}
}

func (h *Hub) deliver(d delivery) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if d.conn != "" {
		client, ok := h.clients[d.conn]
		if !ok {
			h.logger.Debug("ws message for unknown connection dropped",
				slog.String("conn_id", string(d.conn)))
			return
		}
		h.enqueue(client, d.message)
		return
	}

	dropped := 0
	for _, client := range h.clients {
		if !h.enqueue(client, d.message) {
			dropped++
		}
	}
	if dropped > 0 {
		h.logger.Warn("ws broadcast partial failure",
			slog.Int("sent", len(h.clients)-dropped),
			slog.Int("dropped", dropped))
	}
}

func (h *Hub) enqueue(client *Client, message []byte) bool {
	select {
	case client.send <- message:
		return true
	default:
		h.logger.Warn("ws message dropped - client buffer full",
			slog.String("conn_id", string(client.id)))
		return false
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.send)
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Send queues an event for one connection
func (h *Hub) Send(conn model.ConnectionID, event model.Event) {
	if conn == "" {
		return
	}
	h.queue(conn, event)
}

// Broadcast queues an event for every connection
func (h *Hub) Broadcast(event model.Event) {
	h.queue("", event)
}

func (h *Hub) queue(conn model.ConnectionID, event model.Event) {
	message, err := Encode(event)
	if err != nil {
		h.logger.Error("failed to encode event", slog.String("error", err.Error()))
		return
	}
	select {
	case h.outbound <- delivery{conn: conn, message: message}:
	case <-h.done:
	}
}

// Close shuts down the hub and closes every client's send queue
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
