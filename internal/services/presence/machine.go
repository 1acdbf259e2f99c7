package presence

import (
	"fmt"
	"log/slog"

	"github.com/mcoot/dicearena-go/internal/model"
)

// Machine tracks each registered player's presence and enforces the
// AVAILABLE -> BUSY -> PLAYING -> AVAILABLE cycle.
// It is not safe for concurrent use; callers serialize access.
type Machine struct {
	states map[model.PlayerID]model.Presence
	logger *slog.Logger
}

// New creates a new presence Machine
func New(logger *slog.Logger) *Machine {
	return &Machine{
		states: make(map[model.PlayerID]model.Presence),
		logger: logger.With(slog.String("component", "presence")),
	}
}

// Enter gives a newly registered player the AVAILABLE state. A player that
// already has a state keeps it. The resulting state is returned.
func (m *Machine) Enter(id model.PlayerID) model.Presence {
	if state, ok := m.states[id]; ok {
		return state
	}
	m.states[id] = model.PresenceAvailable
	return model.PresenceAvailable
}

// Get returns a player's presence. Unknown players are not invitable.
func (m *Machine) Get(id model.PlayerID) (model.Presence, bool) {
	state, ok := m.states[id]
	return state, ok
}

// Is reports whether a player is currently in the given state
func (m *Machine) Is(id model.PlayerID, state model.Presence) bool {
	current, ok := m.states[id]
	return ok && current == state
}

// IsAvailable reports whether a player can send or receive an invite
func (m *Machine) IsAvailable(id model.PlayerID) bool {
	return m.Is(id, model.PresenceAvailable)
}

// Transition moves a player from one state to another. It fails without
// changing anything if the player is not currently in from, or if the
// move is not part of the cycle.
func (m *Machine) Transition(id model.PlayerID, from, to model.Presence) error {
	if !model.CanTransition(from, to) {
		return fmt.Errorf("%s -> %s: %w", from, to, model.ErrIllegalTransition)
	}
	current, ok := m.states[id]
	if !ok || current != from {
		return fmt.Errorf("player %s is %q, not %q: %w", id, current, from, model.ErrPlayerBusy)
	}
	m.states[id] = to
	m.logger.Debug("presence changed",
		slog.String("player_id", string(id)),
		slog.String("from", string(from)),
		slog.String("to", string(to)))
	return nil
}

// Release moves a BUSY player back to AVAILABLE. It reports whether the
// player was BUSY.
func (m *Machine) Release(id model.PlayerID) bool {
	return m.Transition(id, model.PresenceBusy, model.PresenceAvailable) == nil
}
