package invite

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mcoot/dicearena-go/internal/dependencies/clock"
	"github.com/mcoot/dicearena-go/internal/dependencies/notifier"
	"github.com/mcoot/dicearena-go/internal/metrics"
	"github.com/mcoot/dicearena-go/internal/model"
	"github.com/mcoot/dicearena-go/internal/services/match"
	"github.com/mcoot/dicearena-go/internal/services/presence"
	"github.com/mcoot/dicearena-go/internal/services/projector"
	"github.com/mcoot/dicearena-go/internal/services/registry"
	"github.com/mcoot/dicearena-go/internal/storage"
)

// Config holds invite timing settings
type Config struct {
	// Cooldown is the minimum time between invites for the same ordered pair
	Cooldown time.Duration
	// Timeout is how long an unanswered invite holds both players BUSY
	Timeout time.Duration
}

// DefaultConfig returns the standard invite timings
func DefaultConfig() Config {
	return Config{
		Cooldown: 10 * time.Second,
		Timeout:  15 * time.Second,
	}
}

// pending is an invite awaiting a response
type pending struct {
	from   model.PlayerID
	to     model.PlayerID
	sentAt time.Time
	timer  clock.Timer
}

func (p *pending) other(id model.PlayerID) model.PlayerID {
	if id == p.from {
		return p.to
	}
	return p.from
}

// ControllerInterface is the invite handshake used by the arena coordinator
type ControllerInterface interface {
	SendInvite(ctx context.Context, from, to model.PlayerID) error
	RespondInvite(ctx context.Context, from, responder model.PlayerID, accepted bool) error
	Abandon(ctx context.Context, player model.PlayerID) bool
}

// Controller runs the invite handshake between two players.
// It is not safe for concurrent use; callers serialize access, and the
// clock must deliver timer callbacks on the same serialized path.
type Controller struct {
	cfg       Config
	registry  *registry.Service
	presence  *presence.Machine
	cooldowns storage.CooldownStore
	matches   match.ControllerInterface
	notifier  notifier.Notifier
	publisher projector.Publisher
	clock     clock.Clock
	metrics   *metrics.Metrics
	logger    *slog.Logger

	// pending invites keyed by both participants
	pending map[model.PlayerID]*pending
}

// Ensure Controller implements ControllerInterface
var _ ControllerInterface = (*Controller)(nil)

// NewController creates a new invite Controller
func NewController(
	cfg Config,
	registry *registry.Service,
	presence *presence.Machine,
	cooldowns storage.CooldownStore,
	matches match.ControllerInterface,
	notifier notifier.Notifier,
	publisher projector.Publisher,
	clock clock.Clock,
	metrics *metrics.Metrics,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		cfg:       cfg,
		registry:  registry,
		presence:  presence,
		cooldowns: cooldowns,
		matches:   matches,
		notifier:  notifier,
		publisher: publisher,
		clock:     clock,
		metrics:   metrics,
		logger:    logger.With(slog.String("component", "invite")),
		pending:   make(map[model.PlayerID]*pending),
	}
}

// SendInvite asks target to play against sender.
//
// Unknown players are ignored. A repeat invite for the same ordered pair
// inside the cooldown window, or an invite involving a player who is not
// AVAILABLE, is rejected with an errorMsg to the sender. Otherwise both
// become BUSY until the target responds or the invite times out.
func (c *Controller) SendInvite(ctx context.Context, from, to model.PlayerID) error {
	sender, err := c.registry.Get(ctx, from)
	if err != nil {
		return ignoreMissing(err)
	}
	target, err := c.registry.Get(ctx, to)
	if err != nil {
		return ignoreMissing(err)
	}
	if from == to {
		c.sendError(ctx, from, model.MsgPlayerBusy)
		return model.ErrInviteSelf
	}

	now := c.clock.Now()

	last, ok, err := c.cooldowns.LastInvite(ctx, from, to)
	if err != nil {
		return err
	}
	if ok && now.Sub(last) < c.cfg.Cooldown {
		c.metrics.Invite(metrics.InviteCooldown)
		c.sendError(ctx, from, model.MsgCooldownActive)
		return model.ErrCooldownActive
	}

	if !c.presence.IsAvailable(from) || !c.presence.IsAvailable(to) {
		c.metrics.Invite(metrics.InviteBusy)
		c.sendError(ctx, from, model.MsgPlayerBusy)
		return model.ErrPlayerBusy
	}

	if err := c.cooldowns.RecordInvite(ctx, from, to, now); err != nil {
		return err
	}
	_ = c.presence.Transition(from, model.PresenceAvailable, model.PresenceBusy)
	_ = c.presence.Transition(to, model.PresenceAvailable, model.PresenceBusy)

	p := &pending{from: from, to: to, sentAt: now}
	p.timer = c.clock.AfterFunc(c.cfg.Timeout, func() {
		c.expire(context.Background(), p)
	})
	c.pending[from] = p
	c.pending[to] = p

	c.send(ctx, to, model.EventReceiveInvite, model.ReceiveInvitePayload{
		FromID:     sender.ID,
		FromName:   sender.Name,
		FromAvatar: sender.Avatar,
	})

	c.metrics.Invite(metrics.InviteSent)
	c.logger.Info("invite sent",
		slog.String("from", string(from)),
		slog.String("to", string(target.ID)))

	c.publisher.Publish(ctx)
	return nil
}

// RespondInvite resolves the invite from sender to responder. Accepting
// starts a match; declining releases both and tells the sender. A response
// with no matching pending invite is ignored.
func (c *Controller) RespondInvite(ctx context.Context, from, responder model.PlayerID, accepted bool) error {
	p, ok := c.pending[responder]
	if !ok || p.from != from || p.to != responder {
		return model.ErrInviteNotFound
	}
	c.clear(p)

	if accepted {
		c.metrics.Invite(metrics.InviteAccepted)
		c.logger.Info("invite accepted",
			slog.String("from", string(from)),
			slog.String("to", string(responder)))
		_, err := c.matches.CreateSession(ctx, from, responder)
		return err
	}

	c.presence.Release(from)
	c.presence.Release(responder)
	c.sendError(ctx, from, model.MsgInviteDeclined)

	c.metrics.Invite(metrics.InviteDeclined)
	c.logger.Info("invite declined",
		slog.String("from", string(from)),
		slog.String("to", string(responder)))

	c.publisher.Publish(ctx)
	return nil
}

// Abandon cancels the pending invite a player is part of, releasing both
// sides and telling the other side. It reports whether an invite was cancelled.
func (c *Controller) Abandon(ctx context.Context, player model.PlayerID) bool {
	p, ok := c.pending[player]
	if !ok {
		return false
	}
	c.clear(p)

	c.presence.Release(p.from)
	c.presence.Release(p.to)
	c.sendError(ctx, p.other(player), model.MsgInviteCancelled)

	c.metrics.Invite(metrics.InviteCancelled)
	c.logger.Info("invite cancelled",
		slog.String("from", string(p.from)),
		slog.String("to", string(p.to)),
		slog.String("left", string(player)))

	c.publisher.Publish(ctx)
	return true
}

// Pending reports whether a player has an invite awaiting a response
func (c *Controller) Pending(player model.PlayerID) bool {
	_, ok := c.pending[player]
	return ok
}

// expire releases both players of an unanswered invite. The invite must
// still be the live one and both players must still be BUSY.
func (c *Controller) expire(ctx context.Context, p *pending) {
	if c.pending[p.from] != p {
		return
	}
	c.clear(p)

	if !c.presence.Is(p.from, model.PresenceBusy) || !c.presence.Is(p.to, model.PresenceBusy) {
		return
	}
	c.presence.Release(p.from)
	c.presence.Release(p.to)

	c.metrics.Invite(metrics.InviteTimeout)
	c.logger.Info("invite timed out",
		slog.String("from", string(p.from)),
		slog.String("to", string(p.to)),
		slog.Duration("after", c.clock.Now().Sub(p.sentAt)))

	c.publisher.Publish(ctx)
}

func (c *Controller) clear(p *pending) {
	p.timer.Stop()
	if c.pending[p.from] == p {
		delete(c.pending, p.from)
	}
	if c.pending[p.to] == p {
		delete(c.pending, p.to)
	}
}

func (c *Controller) sendError(ctx context.Context, player model.PlayerID, msg string) {
	c.send(ctx, player, model.EventErrorMsg, msg)
}

func (c *Controller) send(ctx context.Context, player model.PlayerID, eventType model.EventType, payload any) {
	conn, ok := c.registry.Connection(ctx, player)
	if !ok {
		return
	}
	c.notifier.Send(conn, model.Event{Type: eventType, Payload: payload})
}

func ignoreMissing(err error) error {
	if errors.Is(err, model.ErrPlayerNotFound) {
		return nil
	}
	return err
}
