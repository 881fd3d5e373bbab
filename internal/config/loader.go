package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if IRONGRAPH_CONFIG is set
//  3. env (prefix IRONGRAPH_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("IRONGRAPH_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: IRONGRAPH_ADDR, IRONGRAPH_CACHE_TTL_SECONDS, ...
	// Map env keys like IRONGRAPH_CACHE_TTL_SECONDS -> cache_ttl_seconds,
	// preserving underscores to match koanf tags on the struct.
	envProvider := env.Provider("IRONGRAPH_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "irongraph_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate enforces the basic invariants the rest of the service assumes.
func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.CacheTTLSeconds <= 0:
		return fmt.Errorf("%w: cache_ttl_seconds must be positive", ErrInvalidConfig)
	case c.CacheMaxEntries <= 0:
		return fmt.Errorf("%w: cache_max_entries must be positive", ErrInvalidConfig)
	case c.ActivityFeedSize <= 0:
		return fmt.Errorf("%w: activity_feed_size must be positive", ErrInvalidConfig)
	case c.BroadcastIntervalSeconds <= 0:
		return fmt.Errorf("%w: broadcast_interval_seconds must be positive", ErrInvalidConfig)
	case c.HistogramBins <= 0:
		return fmt.Errorf("%w: histogram_bins must be positive", ErrInvalidConfig)
	case c.DatasetPath == "" && c.SimulateRecords <= 0:
		return fmt.Errorf("%w: simulate_records must be positive without a dataset", ErrInvalidConfig)
	}
	return nil
}
