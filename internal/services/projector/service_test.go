package projector

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/dicearena-go/internal/dependencies/mocks"
	"github.com/mcoot/dicearena-go/internal/model"
	"github.com/mcoot/dicearena-go/internal/services/presence"
	"github.com/mcoot/dicearena-go/internal/services/registry"
	"github.com/mcoot/dicearena-go/internal/storage/memory"
	"github.com/mcoot/dicearena-go/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	registry *registry.Service
	presence *presence.Machine
	notifier *mocks.MockNotifier
	service  *Service
	ctx      context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	logger := testutil.NopLogger()
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.registry = registry.New(memory.New(), clk, logger)
	s.presence = presence.New(logger)
	s.notifier = mocks.NewMockNotifier()
	s.service = New(s.registry, s.presence, s.notifier, DefaultLeaderboardSize, logger)
	s.ctx = context.Background()
}

func (s *ServiceSuite) add(id string, balance int) {
	_, _, err := s.registry.RegisterOrUpdate(s.ctx, model.LoginRequest{
		ID: model.PlayerID(id), Name: id, Balance: balance,
	}, model.ConnectionID("conn-"+id))
	s.Require().NoError(err)
	s.presence.Enter(model.PlayerID(id))
}

func ids(views []model.PlayerView) []model.PlayerID {
	out := make([]model.PlayerID, 0, len(views))
	for _, v := range views {
		out = append(out, v.ID)
	}
	return out
}

// Lobby tests

func (s *ServiceSuite) TestLobbyListsConnectedAvailablePlayers() {
	s.add("alice", 100)
	s.add("bob", 200)
	s.add("carol", 300)

	lobby, err := s.service.Lobby(s.ctx)
	s.Require().NoError(err)
	s.Equal([]model.PlayerID{"alice", "bob", "carol"}, ids(lobby))
}

func (s *ServiceSuite) TestLobbyExcludesBusyAndDetached() {
	s.add("alice", 100)
	s.add("bob", 200)
	s.add("carol", 300)
	s.Require().NoError(s.presence.Transition("bob", model.PresenceAvailable, model.PresenceBusy))
	_, err := s.registry.DetachConnection(s.ctx, "carol", "conn-carol")
	s.Require().NoError(err)

	lobby, err := s.service.Lobby(s.ctx)
	s.Require().NoError(err)
	s.Equal([]model.PlayerID{"alice"}, ids(lobby))
}

// Leaderboard tests

func (s *ServiceSuite) TestLeaderboardSortedAndCapped() {
	s.add("p1", 100)
	s.add("p2", 700)
	s.add("p3", 300)
	s.add("p4", 900)
	s.add("p5", 500)
	s.add("p6", 200)
	s.add("p7", 800)

	board, err := s.service.Leaderboard(s.ctx)
	s.Require().NoError(err)
	s.Equal([]model.PlayerID{"p4", "p7", "p2", "p5", "p3"}, ids(board))

	for i := 1; i < len(board); i++ {
		s.GreaterOrEqual(board[i-1].Balance, board[i].Balance)
	}
}

func (s *ServiceSuite) TestLeaderboardTiesKeepRegistrationOrder() {
	s.add("late", 100)
	s.add("early", 100)
	s.add("rich", 500)

	board, err := s.service.Leaderboard(s.ctx)
	s.Require().NoError(err)
	s.Equal([]model.PlayerID{"rich", "late", "early"}, ids(board))
}

func (s *ServiceSuite) TestLeaderboardIncludesDisconnectedPlayers() {
	s.add("alice", 100)
	_, err := s.registry.DetachConnection(s.ctx, "alice", "conn-alice")
	s.Require().NoError(err)

	board, err := s.service.Leaderboard(s.ctx)
	s.Require().NoError(err)
	s.Equal([]model.PlayerID{"alice"}, ids(board))
}

func (s *ServiceSuite) TestLeaderboardCustomSize() {
	s.service = New(s.registry, s.presence, s.notifier, 2, testutil.NopLogger())
	s.add("a", 1)
	s.add("b", 2)
	s.add("c", 3)

	board, err := s.service.Leaderboard(s.ctx)
	s.Require().NoError(err)
	s.Equal([]model.PlayerID{"c", "b"}, ids(board))
}

// Player tests

func (s *ServiceSuite) TestPlayerViewIncludesPresence() {
	s.add("alice", 100)
	s.Require().NoError(s.presence.Transition("alice", model.PresenceAvailable, model.PresenceBusy))

	view, err := s.service.Player(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.PresenceBusy, view.Status)
	s.Equal(100, view.Balance)
}

func (s *ServiceSuite) TestPlayerNotFound() {
	_, err := s.service.Player(s.ctx, "ghost")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Publish tests

func (s *ServiceSuite) TestPublishBroadcastsBothViews() {
	s.add("alice", 100)

	s.service.Publish(s.ctx)

	broadcasts := s.notifier.Broadcasts()
	s.Require().Len(broadcasts, 2)
	s.Equal(model.EventUpdatePlayerList, broadcasts[0].Type)
	s.Equal(model.EventUpdateLeaderboard, broadcasts[1].Type)

	lobby, ok := broadcasts[0].Payload.([]model.PlayerView)
	s.Require().True(ok)
	s.Equal([]model.PlayerID{"alice"}, ids(lobby))
}
