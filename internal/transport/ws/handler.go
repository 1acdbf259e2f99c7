package ws

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mcoot/dicearena-go/internal/model"
)

// EventHandler receives the inbound client events
type EventHandler interface {
	Login(ctx context.Context, conn model.ConnectionID, req model.LoginRequest) (model.PlayerView, error)
	SendInvite(ctx context.Context, from, to model.PlayerID) error
	RespondInvite(ctx context.Context, responder model.PlayerID, resp model.InviteResponsePayload) error
	RollDice(ctx context.Context, roller model.PlayerID, id model.MatchID) error
	Disconnect(ctx context.Context, player model.PlayerID, conn model.ConnectionID) error
}

// Config holds connection limits and keepalive timings
type Config struct {
	// ReadLimit is the largest inbound frame in bytes
	ReadLimit int64
	// WriteWait is the deadline for a single write
	WriteWait time.Duration
	// PongWait is how long a connection may stay silent
	PongWait time.Duration
	// PingPeriod must be shorter than PongWait
	PingPeriod time.Duration
	// SendBufferSize is the per-client outbound queue length
	SendBufferSize int
	// RateLimit is the sustained inbound frames per second
	RateLimit float64
	// RateBurst is the inbound frame burst allowance
	RateBurst int
}

// DefaultConfig returns the standard connection settings
func DefaultConfig() Config {
	return Config{
		ReadLimit:      4096,
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     54 * time.Second,
		SendBufferSize: 256,
		RateLimit:      20,
		RateBurst:      40,
	}
}

// Handler upgrades HTTP requests to WebSocket clients
type Handler struct {
	hub      *Hub
	events   EventHandler
	cfg      Config
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a new Handler
func NewHandler(hub *Hub, events EventHandler, cfg Config, logger *slog.Logger) *Handler {
	return &Handler{
		hub:    hub,
		events: events,
		cfg:    cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: logger.With(slog.String("component", "ws")),
	}
}

// ServeHTTP upgrades the connection and serves it until it closes
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", slog.String("error", err.Error()))
		return
	}

	client := newClient(model.ConnectionID(uuid.NewString()), h.hub, conn, h.events, h.cfg, h.logger)
	h.hub.Register(client)

	go client.writePump()
	client.readPump(r.Context())
}
