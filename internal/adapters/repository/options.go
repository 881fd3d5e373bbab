// Package repository defines the record table interface and errors.
package repository

import "time"

// Option applies a configuration option to the TableStore.
type Option func(*TableStore)

// WithIngestWorkers sets the parallelism of score-column derivation.
func WithIngestWorkers(n int) Option {
	return func(s *TableStore) {
		if n > 0 {
			s.ingestWorkers = n
		}
	}
}

// WithMetricsUpdateInterval sets the interval for background metrics updates.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(s *TableStore) {
		if interval > 0 {
			s.metricsUpdateInterval = interval
		}
	}
}
