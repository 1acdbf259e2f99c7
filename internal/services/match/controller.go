package match

import (
	"context"
	"log/slog"
	"time"

	"github.com/mcoot/dicearena-go/internal/dependencies/clock"
	"github.com/mcoot/dicearena-go/internal/dependencies/identifier"
	"github.com/mcoot/dicearena-go/internal/dependencies/notifier"
	"github.com/mcoot/dicearena-go/internal/dependencies/random"
	"github.com/mcoot/dicearena-go/internal/metrics"
	"github.com/mcoot/dicearena-go/internal/model"
	"github.com/mcoot/dicearena-go/internal/services/presence"
	"github.com/mcoot/dicearena-go/internal/services/projector"
	"github.com/mcoot/dicearena-go/internal/services/registry"
)

// Config holds match timing settings
type Config struct {
	// RoundDelay is the pause between the second roll and round resolution
	RoundDelay time.Duration
	// DisconnectGrace is how long a detached participant may stay away
	// before forfeiting. Zero disables forfeits.
	DisconnectGrace time.Duration
}

// DefaultConfig returns the standard match timings
func DefaultConfig() Config {
	return Config{
		RoundDelay:      2 * time.Second,
		DisconnectGrace: 30 * time.Second,
	}
}

// session is a live match plus its pending timers
type session struct {
	match   *model.Match
	resolve clock.Timer
	forfeit map[model.PlayerID]clock.Timer
}

// ControllerInterface is the match session manager used by the invite flow
// and the arena coordinator
type ControllerInterface interface {
	CreateSession(ctx context.Context, p1, p2 model.PlayerID) (model.MatchID, error)
	SubmitRoll(ctx context.Context, id model.MatchID, roller model.PlayerID) error
	Active(player model.PlayerID) (model.MatchID, bool)
	Resume(ctx context.Context, player model.PlayerID) bool
	PlayerDetached(ctx context.Context, player model.PlayerID)
}

// Controller owns every live match session for its whole lifetime.
// It is not safe for concurrent use; callers serialize access, and the
// clock must deliver timer callbacks on the same serialized path.
type Controller struct {
	cfg       Config
	registry  *registry.Service
	presence  *presence.Machine
	notifier  notifier.Notifier
	publisher projector.Publisher
	clock     clock.Clock
	random    random.Random
	ids       identifier.Generator
	metrics   *metrics.Metrics
	logger    *slog.Logger

	sessions map[model.MatchID]*session
	byPlayer map[model.PlayerID]model.MatchID
}

// Ensure Controller implements ControllerInterface
var _ ControllerInterface = (*Controller)(nil)

// NewController creates a new match Controller
func NewController(
	cfg Config,
	registry *registry.Service,
	presence *presence.Machine,
	notifier notifier.Notifier,
	publisher projector.Publisher,
	clock clock.Clock,
	random random.Random,
	ids identifier.Generator,
	metrics *metrics.Metrics,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		cfg:       cfg,
		registry:  registry,
		presence:  presence,
		notifier:  notifier,
		publisher: publisher,
		clock:     clock,
		random:    random,
		ids:       ids,
		metrics:   metrics,
		logger:    logger.With(slog.String("component", "match")),
		sessions:  make(map[model.MatchID]*session),
		byPlayer:  make(map[model.PlayerID]model.MatchID),
	}
}

// CreateSession starts a match between two BUSY players. If either player
// is gone or no longer BUSY, both are released and no session is created.
func (c *Controller) CreateSession(ctx context.Context, p1, p2 model.PlayerID) (model.MatchID, error) {
	r1, err1 := c.registry.Get(ctx, p1)
	r2, err2 := c.registry.Get(ctx, p2)
	if err1 != nil || err2 != nil {
		c.abort(ctx, p1, p2)
		if err1 != nil {
			return "", err1
		}
		return "", err2
	}
	if !c.presence.Is(p1, model.PresenceBusy) || !c.presence.Is(p2, model.PresenceBusy) {
		c.abort(ctx, p1, p2)
		return "", model.ErrPlayerBusy
	}

	_ = c.presence.Transition(p1, model.PresenceBusy, model.PresencePlaying)
	_ = c.presence.Transition(p2, model.PresenceBusy, model.PresencePlaying)

	m := &model.Match{
		ID:        model.MatchID("match_" + c.ids.NewID()),
		P1:        p1,
		P2:        p2,
		Health:    [2]int{model.StartingHealth, model.StartingHealth},
		Round:     1,
		CreatedAt: c.clock.Now(),
	}
	c.sessions[m.ID] = &session{match: m, forfeit: make(map[model.PlayerID]clock.Timer)}
	c.byPlayer[p1] = m.ID
	c.byPlayer[p2] = m.ID

	c.send(ctx, p1, model.EventGameStart, model.GameStartPayload{
		GameID:   m.ID,
		Opponent: model.NewPlayerView(r2, model.PresencePlaying),
	})
	c.send(ctx, p2, model.EventGameStart, model.GameStartPayload{
		GameID:   m.ID,
		Opponent: model.NewPlayerView(r1, model.PresencePlaying),
	})

	c.metrics.MatchStarted()
	c.logger.Info("match started",
		slog.String("match_id", string(m.ID)),
		slog.String("p1", string(p1)),
		slog.String("p2", string(p2)))

	c.publisher.Publish(ctx)
	return m.ID, nil
}

// SubmitRoll rolls the die for a participant and announces it to both.
// Once both have rolled, the round is resolved after RoundDelay. A later
// roll before resolution overwrites the earlier one.
func (c *Controller) SubmitRoll(ctx context.Context, id model.MatchID, roller model.PlayerID) error {
	s, ok := c.sessions[id]
	if !ok {
		return model.ErrMatchNotFound
	}
	m := s.match
	seat := m.Seat(roller)
	if seat < 0 {
		return model.ErrNotParticipant
	}

	roll := random.Die(c.random, model.DieFaces)
	m.Rolls[seat] = &roll

	result := model.RollResultPayload{Roller: roller, Roll: roll}
	c.send(ctx, m.P1, model.EventRollResult, result)
	c.send(ctx, m.P2, model.EventRollResult, result)

	if m.BothRolled() && s.resolve == nil {
		s.resolve = c.clock.AfterFunc(c.cfg.RoundDelay, func() {
			c.resolveRound(context.Background(), s)
		})
	}
	return nil
}

// resolveRound applies the pending rolls of a session. It is a no-op if
// the session ended while the timer was pending.
func (c *Controller) resolveRound(ctx context.Context, s *session) {
	m := s.match
	if c.sessions[m.ID] != s {
		return
	}
	s.resolve = nil
	if !m.BothRolled() {
		return
	}

	out := ResolveRound(m.Health, [2]int{*m.Rolls[0], *m.Rolls[1]})
	m.Health = out.Health
	c.metrics.RoundResolved()

	c.send(ctx, m.P1, model.EventHealthUpdate, model.HealthUpdatePayload{
		MyHP: m.Health[0], OppHP: m.Health[1], Msg: out.Message,
	})
	c.send(ctx, m.P2, model.EventHealthUpdate, model.HealthUpdatePayload{
		MyHP: m.Health[1], OppHP: m.Health[0], Msg: out.Message,
	})

	c.logger.Debug("round resolved",
		slog.String("match_id", string(m.ID)),
		slog.Int("round", m.Round),
		slog.Int("p1_health", m.Health[0]),
		slog.Int("p2_health", m.Health[1]))

	if seat := Winner(m.Health); seat >= 0 {
		c.terminate(ctx, s, m.Participant(seat), metrics.MatchKnockout)
		return
	}

	m.ClearRolls()
	m.Round++
	c.send(ctx, m.P1, model.EventNextRound, nil)
	c.send(ctx, m.P2, model.EventNextRound, nil)
}

// terminate settles a match: the winner gains the stake, the loser pays it,
// both return to AVAILABLE and the session is removed.
func (c *Controller) terminate(ctx context.Context, s *session, winner model.PlayerID, reason string) {
	m := s.match
	loser := m.Opponent(winner)

	if s.resolve != nil {
		s.resolve.Stop()
		s.resolve = nil
	}
	for id, t := range s.forfeit {
		t.Stop()
		delete(s.forfeit, id)
	}
	delete(c.sessions, m.ID)
	delete(c.byPlayer, m.P1)
	delete(c.byPlayer, m.P2)

	c.settle(ctx, winner, model.MatchStake, true)
	c.settle(ctx, loser, -model.MatchStake, false)

	c.metrics.MatchFinished(reason)
	c.logger.Info("match finished",
		slog.String("match_id", string(m.ID)),
		slog.String("winner", string(winner)),
		slog.String("loser", string(loser)),
		slog.String("reason", reason),
		slog.Int("rounds", m.Round))

	c.publisher.Publish(ctx)
}

func (c *Controller) settle(ctx context.Context, id model.PlayerID, delta int, won bool) {
	_ = c.presence.Transition(id, model.PresencePlaying, model.PresenceAvailable)

	record, err := c.registry.AdjustBalance(ctx, id, delta)
	if err != nil {
		c.logger.Error("failed to settle balance",
			slog.String("player_id", string(id)),
			slog.String("error", err.Error()))
		return
	}
	c.send(ctx, id, model.EventGameOver, model.GameOverPayload{
		Won:        won,
		NewBalance: record.Balance,
	})
}

// Active returns the match a player is currently in
func (c *Controller) Active(player model.PlayerID) (model.MatchID, bool) {
	id, ok := c.byPlayer[player]
	return id, ok
}

// Match returns a copy of a live match
func (c *Controller) Match(id model.MatchID) (model.Match, error) {
	s, ok := c.sessions[id]
	if !ok {
		return model.Match{}, model.ErrMatchNotFound
	}
	return *s.match, nil
}

// Count returns the number of live matches
func (c *Controller) Count() int {
	return len(c.sessions)
}

// Resume re-sends the match state to a participant that logged in again,
// and cancels any pending forfeit. It reports whether the player is in a match.
func (c *Controller) Resume(ctx context.Context, player model.PlayerID) bool {
	id, ok := c.byPlayer[player]
	if !ok {
		return false
	}
	s := c.sessions[id]
	m := s.match

	if t, ok := s.forfeit[player]; ok {
		t.Stop()
		delete(s.forfeit, player)
	}

	opponent, err := c.registry.Get(ctx, m.Opponent(player))
	if err != nil {
		c.logger.Error("failed to load opponent on resume",
			slog.String("match_id", string(id)),
			slog.String("error", err.Error()))
		return true
	}

	seat := m.Seat(player)
	c.send(ctx, player, model.EventGameStart, model.GameStartPayload{
		GameID:   m.ID,
		Opponent: model.NewPlayerView(opponent, model.PresencePlaying),
	})
	c.send(ctx, player, model.EventHealthUpdate, model.HealthUpdatePayload{
		MyHP:  m.Health[seat],
		OppHP: m.Health[1-seat],
		Msg:   model.MsgRoundResumed,
	})
	c.logger.Info("match resumed",
		slog.String("match_id", string(id)),
		slog.String("player_id", string(player)))
	return true
}

// PlayerDetached starts the forfeit countdown for a participant that lost
// its connection.
func (c *Controller) PlayerDetached(ctx context.Context, player model.PlayerID) {
	if c.cfg.DisconnectGrace <= 0 {
		return
	}
	id, ok := c.byPlayer[player]
	if !ok {
		return
	}
	s := c.sessions[id]
	if _, pending := s.forfeit[player]; pending {
		return
	}

	s.forfeit[player] = c.clock.AfterFunc(c.cfg.DisconnectGrace, func() {
		c.forfeit(context.Background(), s, player)
	})
}

func (c *Controller) forfeit(ctx context.Context, s *session, player model.PlayerID) {
	if c.sessions[s.match.ID] != s {
		return
	}
	if _, pending := s.forfeit[player]; !pending {
		return
	}
	delete(s.forfeit, player)

	if _, connected := c.registry.Connection(ctx, player); connected {
		return
	}
	c.logger.Info("player forfeited",
		slog.String("match_id", string(s.match.ID)),
		slog.String("player_id", string(player)))
	c.terminate(ctx, s, s.match.Opponent(player), metrics.MatchForfeit)
}

// abort releases both invitees after a session could not be created
func (c *Controller) abort(ctx context.Context, p1, p2 model.PlayerID) {
	c.presence.Release(p1)
	c.presence.Release(p2)
	c.logger.Warn("match aborted",
		slog.String("p1", string(p1)),
		slog.String("p2", string(p2)))
	c.publisher.Publish(ctx)
}

func (c *Controller) send(ctx context.Context, player model.PlayerID, eventType model.EventType, payload any) {
	conn, ok := c.registry.Connection(ctx, player)
	if !ok {
		return
	}
	c.notifier.Send(conn, model.Event{Type: eventType, Payload: payload})
}
