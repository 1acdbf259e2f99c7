package arena

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mcoot/dicearena-go/internal/metrics"
	"github.com/mcoot/dicearena-go/internal/model"
	"github.com/mcoot/dicearena-go/internal/services/invite"
	"github.com/mcoot/dicearena-go/internal/services/match"
	"github.com/mcoot/dicearena-go/internal/services/presence"
	"github.com/mcoot/dicearena-go/internal/services/projector"
	"github.com/mcoot/dicearena-go/internal/services/registry"
)

// CoordinatorInterface is the entry point for inbound client events and
// read-only views
type CoordinatorInterface interface {
	Login(ctx context.Context, conn model.ConnectionID, req model.LoginRequest) (model.PlayerView, error)
	SendInvite(ctx context.Context, from, to model.PlayerID) error
	RespondInvite(ctx context.Context, responder model.PlayerID, resp model.InviteResponsePayload) error
	RollDice(ctx context.Context, roller model.PlayerID, id model.MatchID) error
	Disconnect(ctx context.Context, player model.PlayerID, conn model.ConnectionID) error

	Lobby(ctx context.Context) ([]model.PlayerView, error)
	Leaderboard(ctx context.Context) ([]model.PlayerView, error)
	Player(ctx context.Context, id model.PlayerID) (model.PlayerView, error)
}

// Coordinator routes every operation through one Executor so the
// registry, presence, invite and match tables are only touched from a
// single goroutine.
type Coordinator struct {
	exec      *Executor
	registry  *registry.Service
	presence  *presence.Machine
	invites   *invite.Controller
	matches   *match.Controller
	projector *projector.Service
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// Ensure Coordinator implements CoordinatorInterface
var _ CoordinatorInterface = (*Coordinator)(nil)

// NewCoordinator creates a new Coordinator
func NewCoordinator(
	exec *Executor,
	registry *registry.Service,
	presence *presence.Machine,
	invites *invite.Controller,
	matches *match.Controller,
	projector *projector.Service,
	metrics *metrics.Metrics,
	logger *slog.Logger,
) *Coordinator {
	return &Coordinator{
		exec:      exec,
		registry:  registry,
		presence:  presence,
		invites:   invites,
		matches:   matches,
		projector: projector,
		metrics:   metrics,
		logger:    logger.With(slog.String("component", "arena")),
	}
}

// Login registers or refreshes a player on a connection. A player that
// was mid-invite has the invite cancelled; a player that was mid-match
// is sent the match state again and stays PLAYING.
func (c *Coordinator) Login(ctx context.Context, conn model.ConnectionID, req model.LoginRequest) (model.PlayerView, error) {
	var view model.PlayerView
	var err error
	req.ID = model.PlayerID(strings.TrimSpace(string(req.ID)))
	doErr := c.exec.Do(ctx, func() {
		if c.presence.Is(req.ID, model.PresenceBusy) {
			c.invites.Abandon(ctx, req.ID)
		}

		var record *model.PlayerRecord
		record, _, err = c.registry.RegisterOrUpdate(ctx, req, conn)
		if err != nil {
			return
		}

		if !c.matches.Resume(ctx, record.ID) {
			c.presence.Enter(record.ID)
		}
		state, _ := c.presence.Get(record.ID)
		view = model.NewPlayerView(record, state)

		c.metrics.Login()
		c.projector.Publish(ctx)
	})
	return view, errors.Join(doErr, err)
}

// SendInvite starts an invite handshake
func (c *Coordinator) SendInvite(ctx context.Context, from, to model.PlayerID) error {
	var err error
	doErr := c.exec.Do(ctx, func() {
		err = c.invites.SendInvite(ctx, from, to)
	})
	return errors.Join(doErr, err)
}

// RespondInvite accepts or declines an invite sent to responder
func (c *Coordinator) RespondInvite(ctx context.Context, responder model.PlayerID, resp model.InviteResponsePayload) error {
	var err error
	doErr := c.exec.Do(ctx, func() {
		err = c.invites.RespondInvite(ctx, resp.FromID, responder, resp.Accepted)
	})
	return errors.Join(doErr, err)
}

// RollDice submits a roll for a participant of a match
func (c *Coordinator) RollDice(ctx context.Context, roller model.PlayerID, id model.MatchID) error {
	var err error
	doErr := c.exec.Do(ctx, func() {
		err = c.matches.SubmitRoll(ctx, id, roller)
	})
	return errors.Join(doErr, err)
}

// Disconnect detaches a player's connection. The record is kept so the
// player is recognised on reconnect. A pending invite is cancelled and a
// live match starts its forfeit countdown.
func (c *Coordinator) Disconnect(ctx context.Context, player model.PlayerID, conn model.ConnectionID) error {
	var err error
	doErr := c.exec.Do(ctx, func() {
		var detached bool
		detached, err = c.registry.DetachConnection(ctx, player, conn)
		if err != nil || !detached {
			return
		}

		state, _ := c.presence.Get(player)
		switch state {
		case model.PresenceBusy:
			c.invites.Abandon(ctx, player)
		case model.PresencePlaying:
			c.matches.PlayerDetached(ctx, player)
		}

		c.projector.Publish(ctx)
	})
	return errors.Join(doErr, err)
}

// Lobby returns the current lobby view
func (c *Coordinator) Lobby(ctx context.Context) ([]model.PlayerView, error) {
	var views []model.PlayerView
	var err error
	doErr := c.exec.Do(ctx, func() {
		views, err = c.projector.Lobby(ctx)
	})
	return views, errors.Join(doErr, err)
}

// Leaderboard returns the current leaderboard view
func (c *Coordinator) Leaderboard(ctx context.Context) ([]model.PlayerView, error) {
	var views []model.PlayerView
	var err error
	doErr := c.exec.Do(ctx, func() {
		views, err = c.projector.Leaderboard(ctx)
	})
	return views, errors.Join(doErr, err)
}

// Player returns the public view of one player
func (c *Coordinator) Player(ctx context.Context, id model.PlayerID) (model.PlayerView, error) {
	var view model.PlayerView
	var err error
	doErr := c.exec.Do(ctx, func() {
		view, err = c.projector.Player(ctx, id)
	})
	return view, errors.Join(doErr, err)
}

// ActiveMatches returns the number of matches in progress
func (c *Coordinator) ActiveMatches(ctx context.Context) (int, error) {
	var n int
	err := c.exec.Do(ctx, func() {
		n = c.matches.Count()
	})
	return n, err
}
