package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/dicearena-go/internal/model"
	"github.com/mcoot/dicearena-go/internal/storage"
)

// Storage is a Redis-backed invite cooldown ledger. Entries expire after
// CooldownTTL so the ledger can be shared between processes without growing.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New connects to the server named by cfg.URL and checks it answers
func New(ctx context.Context, cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	s := NewWithClient(redis.NewClient(opts), cfg)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.client.Ping(pingCtx).Err(); err != nil {
		_ = s.client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return s, nil
}

// NewWithClient wraps an existing client
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{client: client, cfg: cfg}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

var _ storage.CooldownStore = (*Storage)(nil)

// RecordInvite stores the invite time in milliseconds under a key that
// expires after CooldownTTL
func (s *Storage) RecordInvite(ctx context.Context, from, to model.PlayerID, at time.Time) error {
	value := strconv.FormatInt(at.UnixMilli(), 10)
	return s.client.Set(ctx, cooldownKey(from, to), value, s.cfg.CooldownTTL).Err()
}

// LastInvite returns the recorded invite time. Expired entries read as absent.
func (s *Storage) LastInvite(ctx context.Context, from, to model.PlayerID) (time.Time, bool, error) {
	value, err := s.client.Get(ctx, cooldownKey(from, to)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}

	ms, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("corrupt cooldown entry for %s->%s: %w", from, to, err)
	}
	return time.UnixMilli(ms), true, nil
}
