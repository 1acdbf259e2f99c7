package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/mcoot/dicearena-go/internal/dependencies/clock"
	"github.com/mcoot/dicearena-go/internal/dependencies/identifier"
	"github.com/mcoot/dicearena-go/internal/dependencies/notifier"
	"github.com/mcoot/dicearena-go/internal/dependencies/random"
	"github.com/mcoot/dicearena-go/internal/metrics"
	"github.com/mcoot/dicearena-go/internal/services/arena"
	"github.com/mcoot/dicearena-go/internal/services/invite"
	"github.com/mcoot/dicearena-go/internal/services/match"
	"github.com/mcoot/dicearena-go/internal/services/presence"
	"github.com/mcoot/dicearena-go/internal/services/projector"
	"github.com/mcoot/dicearena-go/internal/services/registry"
	"github.com/mcoot/dicearena-go/internal/storage"
	"github.com/mcoot/dicearena-go/internal/storage/memory"
	redisstorage "github.com/mcoot/dicearena-go/internal/storage/redis"
	"github.com/mcoot/dicearena-go/internal/transport/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Players   storage.PlayerStore
	Cooldowns storage.CooldownStore

	// External dependencies. Clock delivers timer callbacks on the executor.
	Clock  clock.Clock
	Random random.Random
	IDs    identifier.Generator

	// Observability
	Metrics         *metrics.Metrics
	MetricsRegistry *prometheus.Registry

	// Services
	Executor    *arena.Executor
	Registry    *registry.Service
	Presence    *presence.Machine
	Projector   *projector.Service
	Matches     *match.Controller
	Invites     *invite.Controller
	Coordinator *arena.Coordinator
	Hub         *ws.Hub

	logger  *slog.Logger
	closers []io.Closer
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the cooldown ledger backend ("memory" or "redis")
	// If empty, defaults to "memory". Player records always live in memory.
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// Invite and Match hold the handshake and battle timings
	// If nil, the package defaults are used. Zero durations are kept as given.
	Invite *invite.Config
	Match  *match.Config
	// LeaderboardSize is the number of players on the leaderboard
	// If zero, projector.DefaultLeaderboardSize is used
	LeaderboardSize int
}

func (c Config) withDefaults() Config {
	if c.Invite == nil {
		inv := invite.DefaultConfig()
		c.Invite = &inv
	}
	if c.Match == nil {
		m := match.DefaultConfig()
		c.Match = &m
	}
	return c
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	cfg = cfg.withDefaults()

	players := memory.New()
	var cooldowns storage.CooldownStore
	var closers []io.Closer

	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		cooldowns = players
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisCfg := *cfg.RedisConfig
		redisCfg.CooldownTTL = max(redisCfg.CooldownTTL, cfg.Invite.Cooldown)
		redisStore, err := redisstorage.New(context.Background(), redisCfg)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		cooldowns = redisStore
		closers = append(closers, redisStore)
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	deps := dependencies{
		players:   players,
		cooldowns: cooldowns,
		clock:     clock.New(),
		random:    random.New(),
		ids:       identifier.New(),
		registry:  reg,
	}

	app := newWithDependencies(deps, cfg, logger)
	app.closers = closers
	return app, nil
}

// dependencies are the swappable inputs to newWithDependencies
type dependencies struct {
	players   storage.PlayerStore
	cooldowns storage.CooldownStore
	clock     clock.Clock
	random    random.Random
	ids       identifier.Generator
	registry  *prometheus.Registry
	// notifier overrides the WebSocket hub as the event sink (optional)
	notifier notifier.Notifier
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(deps dependencies, cfg Config, logger *slog.Logger) *App {
	m := metrics.New(deps.registry)

	exec := arena.NewExecutor(arena.DefaultInboxSize, logger)
	serial := clock.Serialized(deps.clock, exec.Submit)

	hub := ws.NewHub(m, logger)
	var sink notifier.Notifier = hub
	if deps.notifier != nil {
		sink = deps.notifier
	}

	reg := registry.New(deps.players, serial, logger)
	pres := presence.New(logger)
	proj := projector.New(reg, pres, sink, cfg.LeaderboardSize, logger)
	matches := match.NewController(*cfg.Match, reg, pres, sink, proj, serial, deps.random, deps.ids, m, logger)
	invites := invite.NewController(*cfg.Invite, reg, pres, deps.cooldowns, matches, sink, proj, serial, m, logger)
	coordinator := arena.NewCoordinator(exec, reg, pres, invites, matches, proj, m, logger)

	return &App{
		Players:         deps.players,
		Cooldowns:       deps.cooldowns,
		Clock:           serial,
		Random:          deps.random,
		IDs:             deps.ids,
		Metrics:         m,
		MetricsRegistry: deps.registry,
		Executor:        exec,
		Registry:        reg,
		Presence:        pres,
		Projector:       proj,
		Matches:         matches,
		Invites:         invites,
		Coordinator:     coordinator,
		Hub:             hub,
		logger:          logger,
	}
}

// Run drives the executor and the WebSocket hub until ctx is cancelled
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.Executor.Run(ctx)
	})
	g.Go(func() error {
		a.Hub.Run()
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		a.Hub.Close()
		return nil
	})
	return g.Wait()
}

// Close releases external connections
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
