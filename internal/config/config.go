// Package config loads server settings from the environment with sane
// defaults for local development.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	defaultAddr          = ":5000"
	defaultStaticDir     = "./build"
	defaultSweepInterval = 30 * time.Minute
	defaultRoomMaxAge    = 2 * time.Hour
)

type Config struct {
	Addr          string
	StaticDir     string
	SweepInterval time.Duration
	RoomMaxAge    time.Duration

	// AllowedOrigins restricts websocket upgrades. Empty means allow all,
	// which is only acceptable in development.
	AllowedOrigins []string
}

func Load() Config {
	return Config{
		Addr:           envOr("ADDR", defaultAddr),
		StaticDir:      envOr("STATIC_DIR", defaultStaticDir),
		SweepInterval:  envDuration("SWEEP_INTERVAL", defaultSweepInterval),
		RoomMaxAge:     envDuration("ROOM_MAX_AGE", defaultRoomMaxAge),
		AllowedOrigins: envCSV("ALLOWED_ORIGINS", nil),
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Warn().Str("key", key).Str("value", v).Msg("invalid duration, using default")
			return def
		}
		return d
	}
	return def
}

func envCSV(key string, def []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return def
}
