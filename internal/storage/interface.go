package storage

import (
	"context"
	"time"

	"github.com/mcoot/dicearena-go/internal/model"
)

// PlayerStore holds present-player records
type PlayerStore interface {
	SavePlayer(ctx context.Context, player *model.PlayerRecord) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.PlayerRecord, error)

	// ListPlayers returns every record in first-registration order
	ListPlayers(ctx context.Context) ([]*model.PlayerRecord, error)
}

// CooldownStore holds the last invite time for each ordered player pair
type CooldownStore interface {
	RecordInvite(ctx context.Context, from, to model.PlayerID, at time.Time) error

	// LastInvite returns the last recorded invite time, or false if none is known
	LastInvite(ctx context.Context, from, to model.PlayerID) (time.Time, bool, error)
}

// Storage defines the interface for the in-process state tables
type Storage interface {
	PlayerStore
	CooldownStore
}
