package model

import "time"

// PlayerID uniquely identifies a player across reconnects
type PlayerID string

// ConnectionID identifies a single transport connection
type ConnectionID string

// PlayerRecord is a present player as known to the registry
type PlayerRecord struct {
	ID      PlayerID
	Name    string
	Avatar  string
	Balance int

	// Connection is the last connection the player logged in from.
	// Empty means the player is registered but not reachable.
	Connection ConnectionID

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsConnected reports whether the player currently has a live connection
func (p *PlayerRecord) IsConnected() bool {
	return p.Connection != ""
}

// LoginRequest carries the self-reported identity sent with a login event
type LoginRequest struct {
	ID      PlayerID `json:"id"`
	Name    string   `json:"name"`
	Avatar  string   `json:"avatar"`
	Balance int      `json:"balance"`
}
