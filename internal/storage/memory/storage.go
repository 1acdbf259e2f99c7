package memory

import (
	"context"
	"sync"
	"time"

	"github.com/mcoot/dicearena-go/internal/model"
	"github.com/mcoot/dicearena-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	players   map[model.PlayerID]*model.PlayerRecord
	order     []model.PlayerID
	cooldowns map[cooldownKey]time.Time
}

type cooldownKey struct {
	from model.PlayerID
	to   model.PlayerID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:   make(map[model.PlayerID]*model.PlayerRecord),
		cooldowns: make(map[cooldownKey]time.Time),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.PlayerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[player.ID]; !ok {
		s.order = append(s.order, player.ID)
	}
	stored := *player
	s.players[player.ID] = &stored
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.PlayerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	out := *player
	return &out, nil
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.PlayerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	players := make([]*model.PlayerRecord, 0, len(s.order))
	for _, id := range s.order {
		p := *s.players[id]
		players = append(players, &p)
	}
	return players, nil
}

// Cooldown operations

func (s *Storage) RecordInvite(ctx context.Context, from, to model.PlayerID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cooldowns[cooldownKey{from, to}] = at
	return nil
}

func (s *Storage) LastInvite(ctx context.Context, from, to model.PlayerID) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	at, ok := s.cooldowns[cooldownKey{from, to}]
	return at, ok, nil
}
