package projector

import (
	"context"
	"log/slog"
	"sort"

	"github.com/mcoot/dicearena-go/internal/dependencies/notifier"
	"github.com/mcoot/dicearena-go/internal/model"
	"github.com/mcoot/dicearena-go/internal/services/presence"
	"github.com/mcoot/dicearena-go/internal/services/registry"
)

// DefaultLeaderboardSize is the number of players shown on the leaderboard
const DefaultLeaderboardSize = 5

// Publisher pushes fresh projections to every connection
type Publisher interface {
	Publish(ctx context.Context)
}

// Service derives the lobby and leaderboard views from the registry and
// presence machine.
type Service struct {
	registry        *registry.Service
	presence        *presence.Machine
	notifier        notifier.Notifier
	leaderboardSize int
	logger          *slog.Logger
}

// Ensure Service implements Publisher
var _ Publisher = (*Service)(nil)

// New creates a new projector Service
func New(
	registry *registry.Service,
	presence *presence.Machine,
	notifier notifier.Notifier,
	leaderboardSize int,
	logger *slog.Logger,
) *Service {
	if leaderboardSize <= 0 {
		leaderboardSize = DefaultLeaderboardSize
	}
	return &Service{
		registry:        registry,
		presence:        presence,
		notifier:        notifier,
		leaderboardSize: leaderboardSize,
		logger:          logger.With(slog.String("component", "projector")),
	}
}

// Lobby returns connected AVAILABLE players in registration order
func (s *Service) Lobby(ctx context.Context) ([]model.PlayerView, error) {
	players, err := s.registry.List(ctx)
	if err != nil {
		return nil, err
	}

	lobby := make([]model.PlayerView, 0, len(players))
	for _, p := range players {
		if p.IsConnected() && s.presence.IsAvailable(p.ID) {
			lobby = append(lobby, model.NewPlayerView(p, model.PresenceAvailable))
		}
	}
	return lobby, nil
}

// Leaderboard returns the richest players, ties kept in registration order
func (s *Service) Leaderboard(ctx context.Context) ([]model.PlayerView, error) {
	players, err := s.registry.List(ctx)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(players, func(i, j int) bool {
		return players[i].Balance > players[j].Balance
	})
	if len(players) > s.leaderboardSize {
		players = players[:s.leaderboardSize]
	}

	board := make([]model.PlayerView, 0, len(players))
	for _, p := range players {
		board = append(board, s.view(p))
	}
	return board, nil
}

// Player returns the public view of one player
func (s *Service) Player(ctx context.Context, id model.PlayerID) (model.PlayerView, error) {
	p, err := s.registry.Get(ctx, id)
	if err != nil {
		return model.PlayerView{}, err
	}
	return s.view(p), nil
}

// Publish broadcasts the current lobby and leaderboard
func (s *Service) Publish(ctx context.Context) {
	lobby, err := s.Lobby(ctx)
	if err != nil {
		s.logger.Error("failed to build lobby view", slog.String("error", err.Error()))
		return
	}
	leaderboard, err := s.Leaderboard(ctx)
	if err != nil {
		s.logger.Error("failed to build leaderboard view", slog.String("error", err.Error()))
		return
	}

	s.notifier.Broadcast(model.Event{Type: model.EventUpdatePlayerList, Payload: lobby})
	s.notifier.Broadcast(model.Event{Type: model.EventUpdateLeaderboard, Payload: leaderboard})
}

func (s *Service) view(p *model.PlayerRecord) model.PlayerView {
	state, _ := s.presence.Get(p.ID)
	return model.NewPlayerView(p, state)
}
