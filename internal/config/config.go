// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import "runtime"

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// CacheTTLSeconds is the freshness window for cached analytics responses.
	CacheTTLSeconds int `koanf:"cache_ttl_seconds"`

	// CacheMaxEntries caps the response cache before LRU eviction.
	CacheMaxEntries int `koanf:"cache_max_entries"`

	// CacheSweepSeconds is the interval between TTL sweep runs.
	CacheSweepSeconds int `koanf:"cache_sweep_seconds"`

	// ActivityFeedSize bounds the live activity ring buffer.
	ActivityFeedSize int `koanf:"activity_feed_size"`

	// ActivityQueueSize bounds the in-memory activity event queue.
	ActivityQueueSize int `koanf:"activity_queue_size"`

	// BroadcastIntervalSeconds sets the cadence of live stats broadcasts.
	BroadcastIntervalSeconds int `koanf:"broadcast_interval_seconds"`

	// IngestWorkers sets the parallelism of score-column derivation.
	IngestWorkers int `koanf:"ingest_workers"`

	// DatasetPath points at a JSONL record dump to load at startup.
	// Empty means generate SimulateRecords synthetic records instead.
	DatasetPath string `koanf:"dataset_path"`

	// SimulateRecords is the synthetic table size when no dataset is given.
	SimulateRecords int `koanf:"simulate_records"`

	// HistogramBins sets the number of DOTS histogram buckets per response.
	HistogramBins int `koanf:"histogram_bins"`

	// ScatterMaxPoints caps scatter payload size per response.
	ScatterMaxPoints int `koanf:"scatter_max_points"`

	// Auxiliary analytical engine (ClickHouse). Empty Addr disables it.
	EngineAddr           string `koanf:"engine_addr"`
	EngineDatabase       string `koanf:"engine_database"`
	EngineUsername       string `koanf:"engine_username"`
	EnginePassword       string `koanf:"engine_password"`
	EngineTimeoutSeconds int    `koanf:"engine_timeout_seconds"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:                 "info",
		Addr:                     ":9080",
		CacheTTLSeconds:          300,
		CacheMaxEntries:          4096,
		CacheSweepSeconds:        60,
		ActivityFeedSize:         256,
		ActivityQueueSize:        10_000,
		BroadcastIntervalSeconds: 5,
		IngestWorkers:            runtime.NumCPU(),
		DatasetPath:              "",
		SimulateRecords:          50_000,
		HistogramBins:            40,
		ScatterMaxPoints:         2_000,
		EngineAddr:               "",
		EngineDatabase:           "default",
		EngineUsername:           "default",
		EnginePassword:           "",
		EngineTimeoutSeconds:     10,
	}
}
