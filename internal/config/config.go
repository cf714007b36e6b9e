// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers a YAML file and environment variables over the defaults.
// - Errors returned to callers wrap this package's sentinel kinds.
package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/underdog/internal/domain/model"
)

// Store drivers.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects text or json log records.
	LogFormat string `koanf:"log_format"`
	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Roster lists the competitors in display order.
	Roster []string `koanf:"roster"`
	// RecentSize is the length of the recent-history sequence.
	RecentSize int `koanf:"recent_size"`
	// WindowSize is the number of contests in the aggregate window; entered
	// counts must sum to it.
	WindowSize int `koanf:"window_size"`
	// RecencyDepth is how many trailing history entries count as recent.
	RecencyDepth int `koanf:"recency_depth"`
	// StreakThreshold is the minimum run length flagged as a streak.
	StreakThreshold int `koanf:"streak_threshold"`
	// LowWinThreshold lists competitors with fewer wins than this.
	LowWinThreshold int `koanf:"low_win_threshold"`

	// StoreDriver selects the session store: memory or sqlite.
	StoreDriver string `koanf:"store_driver"`
	// SQLitePath is the database file used by the sqlite driver.
	SQLitePath string `koanf:"sqlite_path"`
	// DedupeSize bounds the number of remembered round IDs.
	DedupeSize int `koanf:"dedupe_size"`

	// RateLimitRPS and RateLimitBurst configure the HTTP token bucket.
	// A non-positive RPS disables limiting.
	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`
}

// New creates a Config holding the defaults. Context is accepted first to
// follow the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	roster := make([]string, len(model.DefaultRosterNames))
	copy(roster, model.DefaultRosterNames)

	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":9080",
		Roster:          roster,
		RecentSize:      10,
		WindowSize:      100,
		RecencyDepth:    3,
		StreakThreshold: 2,
		LowWinThreshold: 5,
		StoreDriver:     StoreMemory,
		SQLitePath:      "data/underdog.db",
		DedupeSize:      50_000,
		RateLimitRPS:    50,
		RateLimitBurst:  100,
	}
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.RecentSize < 1:
		return fmt.Errorf("%w: recent_size must be positive", ErrInvalidConfig)
	case c.WindowSize < 1:
		return fmt.Errorf("%w: window_size must be positive", ErrInvalidConfig)
	case c.RecencyDepth < 1:
		return fmt.Errorf("%w: recency_depth must be positive", ErrInvalidConfig)
	case c.StreakThreshold < 1:
		return fmt.Errorf("%w: streak_threshold must be positive", ErrInvalidConfig)
	case c.LowWinThreshold < 0:
		return fmt.Errorf("%w: low_win_threshold must not be negative", ErrInvalidConfig)
	}

	switch c.StoreDriver {
	case StoreMemory:
	case StoreSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("%w: sqlite_path must not be empty", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store_driver %q", ErrInvalidConfig, c.StoreDriver)
	}

	if _, err := c.BuildRoster(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// BuildRoster converts the configured names into a model.Roster.
func (c *Config) BuildRoster() (model.Roster, error) {
	return model.NewRoster(c.Roster...)
}
