package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.CooldownTTL = 10 * time.Second

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) TestRecordAndGetInvite() {
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.Require().NoError(s.storage.RecordInvite(s.ctx, "alice", "bob", at))

	got, ok, err := s.storage.LastInvite(s.ctx, "alice", "bob")
	s.Require().NoError(err)
	s.True(ok)
	s.True(at.Equal(got))
}

func (s *StorageSuite) TestLastInviteMissing() {
	_, ok, err := s.storage.LastInvite(s.ctx, "alice", "bob")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *StorageSuite) TestCooldownIsOrdered() {
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.Require().NoError(s.storage.RecordInvite(s.ctx, "alice", "bob", at))

	_, ok, err := s.storage.LastInvite(s.ctx, "bob", "alice")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *StorageSuite) TestCooldownKeyLayout() {
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.Require().NoError(s.storage.RecordInvite(s.ctx, "alice", "bob", at))

	s.True(s.mini.Exists("dicearena:cooldown:alice:bob"))
	s.Equal(10*time.Second, s.mini.TTL("dicearena:cooldown:alice:bob"))
}

func (s *StorageSuite) TestCooldownKeysKeepColonIDsApart() {
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.Require().NoError(s.storage.RecordInvite(s.ctx, "a:b", "c", at))

	_, ok, err := s.storage.LastInvite(s.ctx, "a", "b:c")
	s.Require().NoError(err)
	s.False(ok)

	_, ok, err = s.storage.LastInvite(s.ctx, "a:b", "c")
	s.Require().NoError(err)
	s.True(ok)
	s.True(s.mini.Exists("dicearena:cooldown:a%3Ab:c"))
}

func (s *StorageSuite) TestCooldownExpires() {
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.Require().NoError(s.storage.RecordInvite(s.ctx, "alice", "bob", at))

	s.mini.FastForward(11 * time.Second)

	_, ok, err := s.storage.LastInvite(s.ctx, "alice", "bob")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *StorageSuite) TestRecordInviteOverwritesAndRefreshesTTL() {
	first := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.Require().NoError(s.storage.RecordInvite(s.ctx, "alice", "bob", first))
	s.mini.FastForward(8 * time.Second)

	second := first.Add(8 * time.Second)
	s.Require().NoError(s.storage.RecordInvite(s.ctx, "alice", "bob", second))
	s.mini.FastForward(8 * time.Second)

	got, ok, err := s.storage.LastInvite(s.ctx, "alice", "bob")
	s.Require().NoError(err)
	s.True(ok)
	s.True(second.Equal(got))
}

func (s *StorageSuite) TestCorruptEntry() {
	s.Require().NoError(s.mini.Set("dicearena:cooldown:alice:bob", "not-a-number"))

	_, _, err := s.storage.LastInvite(s.ctx, "alice", "bob")
	s.Error(err)
}

func (s *StorageSuite) TestNewConnectsByURL() {
	cfg := DefaultConfig()
	cfg.URL = "redis://" + s.mini.Addr()

	store, err := New(s.ctx, cfg)
	s.Require().NoError(err)
	defer func() { _ = store.Close() }()

	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.Require().NoError(store.RecordInvite(s.ctx, "carol", "dave", at))
	s.True(s.mini.Exists("dicearena:cooldown:carol:dave"))
}

func (s *StorageSuite) TestNewRejectsBadURL() {
	cfg := DefaultConfig()
	cfg.URL = "not a url"

	_, err := New(s.ctx, cfg)
	s.ErrorContains(err, "parse redis url")
}
