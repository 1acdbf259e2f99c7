package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// CooldownTTL is how long an invite cooldown entry is kept. Entries
	// older than the invite cooldown window have no effect, so this
	// should be at least that window.
	CooldownTTL time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		CooldownTTL:  10 * time.Second,
	}
}
