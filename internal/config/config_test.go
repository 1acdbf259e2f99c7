package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "memory", cfg.StorageType)
	assert.Equal(t, 10*time.Second, cfg.InviteCooldown)
	assert.Equal(t, 15*time.Second, cfg.InviteTimeout)
	assert.Equal(t, 2*time.Second, cfg.RoundDelay)
	assert.Equal(t, 30*time.Second, cfg.DisconnectGrace)
	assert.Equal(t, 5, cfg.LeaderboardSize)
	assert.Equal(t, ":3000", cfg.Addr())
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("INVITE_COOLDOWN", "500ms")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Addr())
	assert.Equal(t, 500*time.Millisecond, cfg.InviteCooldown)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoadDotenvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("LEADERBOARD_SIZE=9\nROUND_DELAY=1s\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("LEADERBOARD_SIZE")
		os.Unsetenv("ROUND_DELAY")
	})

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9, cfg.LeaderboardSize)
	assert.Equal(t, time.Second, cfg.RoundDelay)
}

func TestParseEnvError(t *testing.T) {
	t.Setenv("PORT", "not-an-int")

	var cfg Config
	err := ParseEnv(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			modify: func(c *Config) {},
		},
		{
			name:    "bad storage type",
			modify:  func(c *Config) { c.StorageType = "postgres" },
			wantErr: "STORAGE_TYPE",
		},
		{
			name:    "redis without url",
			modify:  func(c *Config) { c.StorageType = "redis"; c.RedisURL = "" },
			wantErr: "REDIS_URL",
		},
		{
			name:    "zero leaderboard",
			modify:  func(c *Config) { c.LeaderboardSize = 0 },
			wantErr: "LEADERBOARD_SIZE",
		},
		{
			name:    "port out of range",
			modify:  func(c *Config) { c.Port = 70000 },
			wantErr: "PORT",
		},
		{
			name:   "forfeit disabled",
			modify: func(c *Config) { c.DisconnectGrace = 0 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{
				Port:            3000,
				StorageType:     "memory",
				RedisURL:        "redis://localhost:6379",
				InviteCooldown:  10 * time.Second,
				InviteTimeout:   15 * time.Second,
				RoundDelay:      2 * time.Second,
				DisconnectGrace: 30 * time.Second,
				LeaderboardSize: 5,
			}
			tt.modify(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
