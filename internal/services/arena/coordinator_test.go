package arena

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/dicearena-go/internal/dependencies/clock"
	"github.com/mcoot/dicearena-go/internal/dependencies/mocks"
	"github.com/mcoot/dicearena-go/internal/model"
	"github.com/mcoot/dicearena-go/internal/services/invite"
	"github.com/mcoot/dicearena-go/internal/services/match"
	"github.com/mcoot/dicearena-go/internal/services/presence"
	"github.com/mcoot/dicearena-go/internal/services/projector"
	"github.com/mcoot/dicearena-go/internal/services/registry"
	"github.com/mcoot/dicearena-go/internal/storage/memory"
	"github.com/mcoot/dicearena-go/internal/testutil"
)

type CoordinatorSuite struct {
	suite.Suite
	clock       *mocks.MockClock
	random      *mocks.MockRandom
	notifier    *mocks.MockNotifier
	exec        *Executor
	coordinator *Coordinator
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

func TestCoordinatorSuite(t *testing.T) {
	suite.Run(t, new(CoordinatorSuite))
}

func (s *CoordinatorSuite) SetupTest() {
	logger := testutil.NopLogger()
	store := memory.New()

	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.notifier = mocks.NewMockNotifier()
	s.exec = NewExecutor(0, logger)
	serial := clock.Serialized(s.clock, s.exec.Submit)

	reg := registry.New(store, serial, logger)
	pres := presence.New(logger)
	proj := projector.New(reg, pres, s.notifier, projector.DefaultLeaderboardSize, logger)
	matches := match.NewController(match.DefaultConfig(), reg, pres, s.notifier, proj,
		serial, s.random, mocks.NewMockIdentifier(), nil, logger)
	invites := invite.NewController(invite.DefaultConfig(), reg, pres, store, matches,
		s.notifier, proj, serial, nil, logger)
	s.coordinator = NewCoordinator(s.exec, reg, pres, invites, matches, proj, nil, logger)

	var ctx context.Context
	ctx, s.cancel = context.WithCancel(context.Background())
	s.ctx = context.Background()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_ = s.exec.Run(ctx)
	}()
}

func (s *CoordinatorSuite) TearDownTest() {
	s.cancel()
	s.wg.Wait()
}

func conn(id string) model.ConnectionID {
	return model.ConnectionID("conn-" + id)
}

func (s *CoordinatorSuite) login(id string, balance int) model.PlayerView {
	return s.loginOn(id, balance, conn(id))
}

func (s *CoordinatorSuite) loginOn(id string, balance int, c model.ConnectionID) model.PlayerView {
	view, err := s.coordinator.Login(s.ctx, c, model.LoginRequest{
		ID: model.PlayerID(id), Name: id, Balance: balance,
	})
	s.Require().NoError(err)
	return view
}

// advance moves the mock clock and waits for the fired timers to run on
// the executor
func (s *CoordinatorSuite) advance(d time.Duration) {
	s.clock.Advance(d)
	s.Require().NoError(s.exec.Do(s.ctx, func() {}))
}

func (s *CoordinatorSuite) status(id model.PlayerID) model.Presence {
	view, err := s.coordinator.Player(s.ctx, id)
	s.Require().NoError(err)
	return view.Status
}

func (s *CoordinatorSuite) startMatch(from, to string) model.MatchID {
	s.Require().NoError(s.coordinator.SendInvite(s.ctx, model.PlayerID(from), model.PlayerID(to)))
	s.Require().NoError(s.coordinator.RespondInvite(s.ctx, model.PlayerID(to), model.InviteResponsePayload{
		FromID: model.PlayerID(from), Accepted: true,
	}))
	e, ok := s.notifier.LastSent(conn(from), model.EventGameStart)
	s.Require().True(ok)
	return e.Payload.(model.GameStartPayload).GameID
}

// Login tests

func (s *CoordinatorSuite) TestLoginRegistersAvailablePlayer() {
	view := s.login("alice", 500)

	s.Equal(model.PlayerID("alice"), view.ID)
	s.Equal(500, view.Balance)
	s.Equal(model.PresenceAvailable, view.Status)

	lobby, err := s.coordinator.Lobby(s.ctx)
	s.Require().NoError(err)
	s.Len(lobby, 1)

	_, ok := s.notifier.LastBroadcast(model.EventUpdatePlayerList)
	s.True(ok)
	_, ok = s.notifier.LastBroadcast(model.EventUpdateLeaderboard)
	s.True(ok)
}

func (s *CoordinatorSuite) TestReconnectKeepsHigherBalance() {
	s.login("alice", 500)
	view := s.loginOn("alice", 200, "conn-alice-2")
	s.Equal(500, view.Balance)

	view = s.loginOn("alice", 900, "conn-alice-3")
	s.Equal(900, view.Balance)
}

func (s *CoordinatorSuite) TestLoginWhileInvitedCancelsInvite() {
	s.login("alice", 500)
	s.login("bob", 300)
	s.Require().NoError(s.coordinator.SendInvite(s.ctx, "alice", "bob"))

	s.loginOn("bob", 300, "conn-bob-2")

	s.Equal(model.PresenceAvailable, s.status("alice"))
	s.Equal(model.PresenceAvailable, s.status("bob"))
	e, ok := s.notifier.LastSent(conn("alice"), model.EventErrorMsg)
	s.Require().True(ok)
	s.Equal(model.MsgInviteCancelled, e.Payload)
}

func (s *CoordinatorSuite) TestPaddedLoginWhileInvitedCancelsInvite() {
	s.login("alice", 500)
	s.login("bob", 300)
	s.Require().NoError(s.coordinator.SendInvite(s.ctx, "alice", "bob"))

	view := s.loginOn(" bob ", 300, "conn-bob-2")

	s.Equal(model.PlayerID("bob"), view.ID)
	s.Equal(model.PresenceAvailable, s.status("alice"))
	s.Equal(model.PresenceAvailable, s.status("bob"))
}

func (s *CoordinatorSuite) TestLoginWhilePlayingResumesMatch() {
	s.login("alice", 500)
	s.login("bob", 300)
	id := s.startMatch("alice", "bob")

	view := s.loginOn("bob", 300, "conn-bob-2")

	s.Equal(model.PresencePlaying, view.Status)
	e, ok := s.notifier.LastSent("conn-bob-2", model.EventGameStart)
	s.Require().True(ok)
	s.Equal(id, e.Payload.(model.GameStartPayload).GameID)
	_, ok = s.notifier.LastSent("conn-bob-2", model.EventHealthUpdate)
	s.True(ok)
}

// Invite and match flow tests

func (s *CoordinatorSuite) TestMatchPlaysToCompletion() {
	s.login("alice", 500)
	s.login("bob", 300)
	id := s.startMatch("alice", "bob")
	s.Equal(model.PresencePlaying, s.status("alice"))

	n, err := s.coordinator.ActiveMatches(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, n)

	for range 2 {
		s.random.QueueRolls(6, 1)
		s.Require().NoError(s.coordinator.RollDice(s.ctx, "alice", id))
		s.Require().NoError(s.coordinator.RollDice(s.ctx, "bob", id))
		s.advance(2 * time.Second)
	}

	alice, err := s.coordinator.Player(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(600, alice.Balance)
	s.Equal(model.PresenceAvailable, alice.Status)

	board, err := s.coordinator.Leaderboard(s.ctx)
	s.Require().NoError(err)
	s.Equal(model.PlayerID("alice"), board[0].ID)
	s.Equal(200, board[1].Balance)

	n, err = s.coordinator.ActiveMatches(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, n)
}

func (s *CoordinatorSuite) TestInviteTimesOutThroughExecutor() {
	s.login("alice", 500)
	s.login("bob", 300)
	s.Require().NoError(s.coordinator.SendInvite(s.ctx, "alice", "bob"))
	s.Equal(model.PresenceBusy, s.status("bob"))

	s.advance(15 * time.Second)

	s.Equal(model.PresenceAvailable, s.status("alice"))
	s.Equal(model.PresenceAvailable, s.status("bob"))
}

func (s *CoordinatorSuite) TestRollForUnknownMatch() {
	s.login("alice", 500)
	err := s.coordinator.RollDice(s.ctx, "alice", "match_missing")
	s.ErrorIs(err, model.ErrMatchNotFound)
}

// Disconnect tests

func (s *CoordinatorSuite) TestDisconnectLeavesLobbyButKeepsRecord() {
	s.login("alice", 500)
	s.Require().NoError(s.coordinator.Disconnect(s.ctx, "alice", conn("alice")))

	lobby, err := s.coordinator.Lobby(s.ctx)
	s.Require().NoError(err)
	s.Empty(lobby)

	board, err := s.coordinator.Leaderboard(s.ctx)
	s.Require().NoError(err)
	s.Len(board, 1)
}

func (s *CoordinatorSuite) TestStaleDisconnectIgnored() {
	s.login("alice", 500)
	s.loginOn("alice", 500, "conn-alice-2")

	s.Require().NoError(s.coordinator.Disconnect(s.ctx, "alice", conn("alice")))

	lobby, err := s.coordinator.Lobby(s.ctx)
	s.Require().NoError(err)
	s.Len(lobby, 1)
}

func (s *CoordinatorSuite) TestDisconnectDuringInviteReleasesBoth() {
	s.login("alice", 500)
	s.login("bob", 300)
	s.Require().NoError(s.coordinator.SendInvite(s.ctx, "alice", "bob"))

	s.Require().NoError(s.coordinator.Disconnect(s.ctx, "alice", conn("alice")))

	s.Equal(model.PresenceAvailable, s.status("bob"))
	e, ok := s.notifier.LastSent(conn("bob"), model.EventErrorMsg)
	s.Require().True(ok)
	s.Equal(model.MsgInviteCancelled, e.Payload)
}

func (s *CoordinatorSuite) TestDisconnectDuringMatchForfeits() {
	s.login("alice", 500)
	s.login("bob", 300)
	s.startMatch("alice", "bob")

	s.Require().NoError(s.coordinator.Disconnect(s.ctx, "bob", conn("bob")))
	s.advance(30 * time.Second)

	alice, err := s.coordinator.Player(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(600, alice.Balance)
	s.Equal(model.PresenceAvailable, alice.Status)
}

func (s *CoordinatorSuite) TestCallsAfterStopFail() {
	s.cancel()
	s.wg.Wait()

	_, err := s.coordinator.Lobby(s.ctx)
	s.ErrorIs(err, model.ErrCoordinatorStopped)
}
