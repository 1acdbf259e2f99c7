package registry

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mcoot/dicearena-go/internal/dependencies/clock"
	"github.com/mcoot/dicearena-go/internal/model"
	"github.com/mcoot/dicearena-go/internal/storage"
)

// Service owns present-player records keyed by stable identity.
// It is not safe for concurrent use; callers serialize access.
type Service struct {
	store  storage.PlayerStore
	clock  clock.Clock
	logger *slog.Logger
}

// New creates a new registry Service
func New(store storage.PlayerStore, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		clock:  clock,
		logger: logger.With(slog.String("component", "registry")),
	}
}

// RegisterOrUpdate creates or refreshes the record for a login.
//
// A new identity is created with the client supplied balance. A known
// identity takes the new name, avatar and connection, and keeps the larger
// of the server and client balances. The previous connection is returned
// so the caller can tell a reconnect from a fresh login.
func (s *Service) RegisterOrUpdate(ctx context.Context, req model.LoginRequest, conn model.ConnectionID) (*model.PlayerRecord, model.ConnectionID, error) {
	req.ID = model.PlayerID(strings.TrimSpace(string(req.ID)))
	if req.ID == "" {
		return nil, "", model.ErrInvalidPlayer
	}

	now := s.clock.Now()

	existing, err := s.store.GetPlayer(ctx, req.ID)
	if err != nil && !errors.Is(err, model.ErrPlayerNotFound) {
		return nil, "", err
	}

	if existing == nil {
		record := &model.PlayerRecord{
			ID:         req.ID,
			Name:       req.Name,
			Avatar:     req.Avatar,
			Balance:    req.Balance,
			Connection: conn,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.store.SavePlayer(ctx, record); err != nil {
			return nil, "", err
		}
		s.logger.Info("player registered",
			slog.String("player_id", string(record.ID)),
			slog.Int("balance", record.Balance))
		return record, "", nil
	}

	previous := existing.Connection
	existing.Name = req.Name
	existing.Avatar = req.Avatar
	existing.Connection = conn
	if req.Balance > existing.Balance {
		existing.Balance = req.Balance
	}
	existing.UpdatedAt = now

	if err := s.store.SavePlayer(ctx, existing); err != nil {
		return nil, "", err
	}
	s.logger.Info("player reconnected",
		slog.String("player_id", string(existing.ID)),
		slog.Int("balance", existing.Balance),
		slog.Bool("replaced_connection", previous != ""))
	return existing, previous, nil
}

// DetachConnection clears the player's connection if it is still conn.
// It reports whether the record was changed.
func (s *Service) DetachConnection(ctx context.Context, id model.PlayerID, conn model.ConnectionID) (bool, error) {
	record, err := s.store.GetPlayer(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return false, nil
		}
		return false, err
	}
	if record.Connection == "" || record.Connection != conn {
		return false, nil
	}

	record.Connection = ""
	record.UpdatedAt = s.clock.Now()
	if err := s.store.SavePlayer(ctx, record); err != nil {
		return false, err
	}
	s.logger.Info("player detached", slog.String("player_id", string(id)))
	return true, nil
}

// Get returns the record for an identity
func (s *Service) Get(ctx context.Context, id model.PlayerID) (*model.PlayerRecord, error) {
	return s.store.GetPlayer(ctx, id)
}

// Connection returns the live connection for a player, if any
func (s *Service) Connection(ctx context.Context, id model.PlayerID) (model.ConnectionID, bool) {
	record, err := s.store.GetPlayer(ctx, id)
	if err != nil || !record.IsConnected() {
		return "", false
	}
	return record.Connection, true
}

// List returns all records in registration order
func (s *Service) List(ctx context.Context) ([]*model.PlayerRecord, error) {
	return s.store.ListPlayers(ctx)
}

// AdjustBalance adds delta to a player's balance. Balances may go negative.
func (s *Service) AdjustBalance(ctx context.Context, id model.PlayerID, delta int) (*model.PlayerRecord, error) {
	record, err := s.store.GetPlayer(ctx, id)
	if err != nil {
		return nil, err
	}
	record.Balance += delta
	record.UpdatedAt = s.clock.Now()
	if err := s.store.SavePlayer(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}
