package ws

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/mcoot/dicearena-go/internal/model"
)

// Client is one WebSocket connection. The player it speaks for is bound by
// its first successful login.
type Client struct {
	id          model.ConnectionID
	hub         *Hub
	conn        *websocket.Conn
	send        chan []byte
	handler     EventHandler
	limiter     *rate.Limiter
	cfg         Config
	connectedAt time.Time
	logger      *slog.Logger

	// player is only touched by the read loop
	player model.PlayerID
}

func newClient(id model.ConnectionID, hub *Hub, conn *websocket.Conn, handler EventHandler, cfg Config, logger *slog.Logger) *Client {
	return &Client{
		id:          id,
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, cfg.SendBufferSize),
		handler:     handler,
		limiter:     rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		cfg:         cfg,
		connectedAt: time.Now(),
		logger:      logger.With(slog.String("conn_id", string(id))),
	}
}

// readPump reads frames until the connection fails, dispatching each one.
// On exit the bound player is disconnected and the client unregistered.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		if c.player != "" {
			if err := c.handler.Disconnect(context.WithoutCancel(ctx), c.player, c.id); err != nil {
				c.logger.Debug("disconnect not applied", slog.String("error", err.Error()))
			}
		}
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(c.cfg.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				c.logger.Warn("ws read failed", slog.String("error", err.Error()))
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))

		if !c.limiter.Allow() {
			c.hub.metrics.FrameDropped()
			c.logger.Debug("ws frame dropped - rate limited")
			continue
		}

		frame, err := decode(data)
		if err != nil {
			c.logger.Debug("ws malformed frame ignored", slog.String("error", err.Error()))
			continue
		}
		c.dispatch(ctx, frame)
	}
}

// writePump writes queued frames and keepalive pings until the send queue
// is closed or a write fails.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if !ok {
				// Hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Debug("ws write failed", slog.String("error", err.Error()))
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) dispatch(ctx context.Context, frame inbound) {
	var err error
	switch frame.Event {
	case model.EventLogin:
		err = c.login(ctx, frame)
	case model.EventSendInvite:
		var target model.PlayerID
		if err = frame.payload(&target); err == nil && c.bound() {
			err = c.handler.SendInvite(ctx, c.player, target)
		}
	case model.EventInviteResponse:
		var resp model.InviteResponsePayload
		if err = frame.payload(&resp); err == nil && c.bound() {
			err = c.handler.RespondInvite(ctx, c.player, resp)
		}
	case model.EventRollDice:
		var id model.MatchID
		if err = frame.payload(&id); err == nil && c.bound() {
			err = c.handler.RollDice(ctx, c.player, id)
		}
	default:
		c.logger.Debug("ws unknown event ignored", slog.String("event", string(frame.Event)))
		return
	}

	if err != nil {
		c.logger.Debug("ws event rejected",
			slog.String("event", string(frame.Event)),
			slog.String("player_id", string(c.player)),
			slog.String("error", err.Error()))
	}
}

func (c *Client) login(ctx context.Context, frame inbound) error {
	var req model.LoginRequest
	if err := frame.payload(&req); err != nil {
		return err
	}
	if req.ID == "" {
		return fmt.Errorf("login without id: %w", model.ErrInvalidPlayer)
	}

	// switching identity on one connection releases the previous one
	if c.player != "" && c.player != req.ID {
		if err := c.handler.Disconnect(ctx, c.player, c.id); err != nil {
			return err
		}
		c.player = ""
	}

	view, err := c.handler.Login(ctx, c.id, req)
	if err != nil {
		return err
	}
	c.player = view.ID
	return nil
}

func (c *Client) bound() bool {
	if c.player == "" {
		c.logger.Debug("ws event before login ignored")
		return false
	}
	return true
}
