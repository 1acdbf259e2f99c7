package model

// Presence is a player's availability for invites and matches
type Presence string

const (
	PresenceAvailable Presence = "AVAILABLE"
	PresenceBusy      Presence = "BUSY"
	PresencePlaying   Presence = "PLAYING"
)

// presenceTransitions lists the only legal moves of the presence cycle
var presenceTransitions = map[Presence][]Presence{
	PresenceAvailable: {PresenceBusy},
	PresenceBusy:      {PresencePlaying, PresenceAvailable},
	PresencePlaying:   {PresenceAvailable},
}

// CanTransition reports whether moving from one presence to another is allowed
func CanTransition(from, to Presence) bool {
	for _, next := range presenceTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
