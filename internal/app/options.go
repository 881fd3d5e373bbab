package service

import (
	"time"

	"github.com/irongraph/irongraph/internal/adapters/engine"
	"github.com/irongraph/irongraph/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithCacheTTL sets the freshness window for cached responses.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithCacheMaxEntries caps the response cache.
func WithCacheMaxEntries(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.cacheMaxEntries = n
		}
	}
}

// WithCacheSweepInterval sets the cadence of the TTL sweep.
func WithCacheSweepInterval(d time.Duration) Option {
	return func(s *Service) {
		if d >= time.Second {
			s.cacheSweep = d
		}
	}
}

// WithFeedSize bounds the live activity ring buffer.
func WithFeedSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.feedSize = n
		}
	}
}

// WithQueueSize bounds the activity event queue.
func WithQueueSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.queueSize = n
		}
	}
}

// WithBroadcastInterval sets the cadence of live stats broadcasts.
func WithBroadcastInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.broadcastInterval = d
		}
	}
}

// WithIngestWorkers sets the parallelism of score derivation at ingest.
func WithIngestWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.ingestWorkers = n
		}
	}
}

// WithHistogramBins sets the number of DOTS histogram buckets.
func WithHistogramBins(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.histogramBins = n
		}
	}
}

// WithScatterMaxPoints caps scatter payload size per response.
func WithScatterMaxPoints(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.scatterMaxPoints = n
		}
	}
}

// WithDatasetPath points the service at a JSONL record dump.
func WithDatasetPath(path string) Option {
	return func(s *Service) {
		s.datasetPath = path
	}
}

// WithSimulateRecords sets the synthetic table size used when no
// dataset is configured.
func WithSimulateRecords(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.simulateRecords = n
		}
	}
}

// WithArchiver sets the analytical archive backend.
func WithArchiver(a engine.Archiver) Option {
	return func(s *Service) {
		if a != nil {
			s.archiver = a
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
