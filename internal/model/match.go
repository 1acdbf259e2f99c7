package model

import "time"

const (
	// StartingHealth is each participant's health when a match begins
	StartingHealth = 100
	// DamagePerPip is the damage dealt per point of roll difference
	DamagePerPip = 10
	// DieFaces is the number of faces on the battle die
	DieFaces = 6
	// MatchStake is the balance moved from loser to winner
	MatchStake = 100
)

// MatchID uniquely identifies a match session for the process lifetime
type MatchID string

// Match is one active two-player battle
type Match struct {
	ID MatchID
	P1 PlayerID
	P2 PlayerID

	// Rolls and Health are indexed 0 for P1 and 1 for P2
	Rolls  [2]*int
	Health [2]int

	Round     int
	CreatedAt time.Time
}

// Seat returns the participant index of a player, or -1 if not in the match
func (m *Match) Seat(id PlayerID) int {
	switch id {
	case m.P1:
		return 0
	case m.P2:
		return 1
	default:
		return -1
	}
}

// Participant returns the player at the given seat
func (m *Match) Participant(seat int) PlayerID {
	if seat == 0 {
		return m.P1
	}
	return m.P2
}

// Opponent returns the other participant
func (m *Match) Opponent(id PlayerID) PlayerID {
	if id == m.P1 {
		return m.P2
	}
	return m.P1
}

// BothRolled reports whether both participants have a pending roll
func (m *Match) BothRolled() bool {
	return m.Rolls[0] != nil && m.Rolls[1] != nil
}

// ClearRolls resets both pending rolls for the next round
func (m *Match) ClearRolls() {
	m.Rolls = [2]*int{}
}
