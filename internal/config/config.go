package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the server configuration read from the environment
type Config struct {
	Port     int    `env:"PORT" envDefault:"3000"`
	Host     string `env:"HOST"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	StorageType string `env:"STORAGE_TYPE" envDefault:"memory"`
	RedisURL    string `env:"REDIS_URL" envDefault:"redis://localhost:6379"`

	InviteCooldown  time.Duration `env:"INVITE_COOLDOWN" envDefault:"10s"`
	InviteTimeout   time.Duration `env:"INVITE_TIMEOUT" envDefault:"15s"`
	RoundDelay      time.Duration `env:"ROUND_DELAY" envDefault:"2s"`
	DisconnectGrace time.Duration `env:"DISCONNECT_GRACE" envDefault:"30s"`
	LeaderboardSize int           `env:"LEADERBOARD_SIZE" envDefault:"5"`
}

// ParseEnv loads configuration from environment variables into target
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads the optional dotenv files, then parses the environment.
// Variables already set in the environment win over the files.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values the env parser cannot
func (c Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	switch c.StorageType {
	case "memory", "redis":
	default:
		errs = append(errs, fmt.Errorf("STORAGE_TYPE must be memory or redis, got %q", c.StorageType))
	}
	if c.StorageType == "redis" && c.RedisURL == "" {
		errs = append(errs, errors.New("REDIS_URL required when STORAGE_TYPE=redis"))
	}
	if c.InviteCooldown < 0 || c.InviteTimeout <= 0 || c.RoundDelay < 0 || c.DisconnectGrace < 0 {
		errs = append(errs, errors.New("durations must not be negative and INVITE_TIMEOUT must be positive"))
	}
	if c.LeaderboardSize <= 0 {
		errs = append(errs, fmt.Errorf("LEADERBOARD_SIZE must be positive, got %d", c.LeaderboardSize))
	}
	return errors.Join(errs...)
}

// Addr returns the listen address
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// SlogLevel maps LOG_LEVEL to a slog level. Unknown values mean info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
