package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/mcoot/dicearena-go/internal/api"
	"github.com/mcoot/dicearena-go/internal/config"
	"github.com/mcoot/dicearena-go/internal/factory"
	"github.com/mcoot/dicearena-go/internal/services/invite"
	"github.com/mcoot/dicearena-go/internal/services/match"
	redisstorage "github.com/mcoot/dicearena-go/internal/storage/redis"
	"github.com/mcoot/dicearena-go/internal/transport/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	factoryCfg := factory.Config{
		Logger:      logger,
		StorageType: cfg.StorageType,
		Invite: &invite.Config{
			Cooldown: cfg.InviteCooldown,
			Timeout:  cfg.InviteTimeout,
		},
		Match: &match.Config{
			RoundDelay:      cfg.RoundDelay,
			DisconnectGrace: cfg.DisconnectGrace,
		},
		LeaderboardSize: cfg.LeaderboardSize,
	}
	if cfg.StorageType == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		factoryCfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(factoryCfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = app.Close() }()

	router := api.NewRouter(api.RouterConfig{
		Logger:    logger,
		Arena:     app.Coordinator,
		WebSocket: ws.NewHandler(app.Hub, app.Coordinator, ws.DefaultConfig(), logger),
		Clients:   app.Hub.ClientCount,
		Gatherer:  app.MetricsRegistry,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Host
	serverConfig.Port = cfg.Port
	server := api.NewServer(router, serverConfig, logger)
	server.RegisterOnShutdown(app.Hub.Close)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.Run(ctx)
	})
	g.Go(server.Start)
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutdown signal received")
		return server.Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("server stopped")
}
