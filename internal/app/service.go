// Package service provides the core analytics service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/irongraph/irongraph/internal/adapters/cache"
	"github.com/irongraph/irongraph/internal/adapters/engine"
	"github.com/irongraph/irongraph/internal/adapters/hub"
	eventqueue "github.com/irongraph/irongraph/internal/adapters/mq/queue"
	"github.com/irongraph/irongraph/internal/adapters/repository"
	"github.com/irongraph/irongraph/internal/domain/model"
	"github.com/irongraph/irongraph/internal/simdata"
	"github.com/irongraph/irongraph/pkg/logger"
)

const simdataSeed = 1013

// Service wires the record table, the response cache, the activity
// queue, and the live hub into the analytics pipeline.
type Service struct {
	mu sync.RWMutex

	// Core components
	table    repository.Store
	cache    *cache.Cache
	queue    eventqueue.Queue
	hub      *hub.Hub
	archiver engine.Archiver
	sweeper  *cron.Cron

	// Configuration
	cacheTTL          time.Duration
	cacheMaxEntries   int
	cacheSweep        time.Duration
	feedSize          int
	queueSize         int
	broadcastInterval time.Duration
	ingestWorkers     int
	histogramBins     int
	scatterMaxPoints  int
	datasetPath       string
	simulateRecords   int

	// State
	started bool
	cancel  context.CancelFunc

	// Logging
	logger logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		cacheTTL:          5 * time.Minute,
		cacheMaxEntries:   4096,
		cacheSweep:        time.Minute,
		feedSize:          256,
		queueSize:         10_000,
		broadcastInterval: 5 * time.Second,
		ingestWorkers:     runtime.NumCPU(),
		histogramBins:     40,
		scatterMaxPoints:  2_000,
		simulateRecords:   50_000,
		archiver:          engine.Noop{},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting analytics service...")

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	s.table = repository.NewTableStore(runCtx,
		repository.WithIngestWorkers(s.ingestWorkers),
	)
	s.cache = cache.New(
		cache.WithTTL(s.cacheTTL),
		cache.WithMaxEntries(s.cacheMaxEntries),
	)
	s.queue = eventqueue.NewInMemoryQueue(
		eventqueue.WithCapacity(s.queueSize),
	)
	s.hub = hub.New(s.queue,
		hub.WithFeedSize(s.feedSize),
		hub.WithBroadcastInterval(s.broadcastInterval),
	)
	go s.hub.Run(runCtx)

	s.sweeper = cron.New()
	spec := fmt.Sprintf("@every %ds", int(s.cacheSweep.Seconds()))
	if _, err := s.sweeper.AddFunc(spec, func() {
		if removed := s.cache.Sweep(); removed > 0 {
			s.logger.Debug(runCtx, "cache sweep", logger.Int("removed", removed))
		}
	}); err != nil {
		cancel()
		return fmt.Errorf("schedule cache sweep: %w", err)
	}
	s.sweeper.Start()

	if err := s.seed(runCtx); err != nil {
		cancel()
		return err
	}

	s.started = true
	s.logger.Info(ctx, "analytics service started",
		logger.Int("records", s.table.Count(ctx)),
		logger.Int("cacheMaxEntries", s.cacheMaxEntries),
		logger.Duration("cacheTTL", s.cacheTTL),
		logger.Int("feedSize", s.feedSize),
	)

	return nil
}

// seed loads the record table from the dataset file, or generates a
// synthetic table when none is configured. The batch is also pushed to
// the archive in the background; archive failures never block startup.
func (s *Service) seed(ctx context.Context) error {
	var (
		batch []model.Record
		err   error
	)
	if s.datasetPath != "" {
		batch, err = loadDataset(s.datasetPath)
		if err != nil {
			return fmt.Errorf("load dataset: %w", err)
		}
		s.logger.Info(ctx, "loaded dataset",
			logger.String("path", s.datasetPath), logger.Int("records", len(batch)))
	} else {
		batch = simdata.Generate(s.simulateRecords, simdataSeed)
		s.logger.Info(ctx, "generated synthetic records", logger.Int("records", len(batch)))
	}

	if len(batch) == 0 {
		return nil
	}
	if _, err := s.table.Ingest(ctx, batch); err != nil {
		return fmt.Errorf("ingest records: %w", err)
	}

	go func() {
		if err := s.archiver.ArchiveRecords(ctx, batch); err != nil {
			s.logger.Warn(ctx, "archive write failed", logger.Error(err))
		}
	}()

	return nil
}

// loadDataset reads a JSONL record dump, one record per line.
func loadDataset(path string) ([]model.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var out []model.Record
	dec := json.NewDecoder(f)
	for dec.More() {
		var r model.Record
		if err := dec.Decode(&r); err != nil {
			return nil, fmt.Errorf("record %d: %w", len(out), err)
		}
		out = append(out, r)
	}
	return out, nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping analytics service...")

	if s.sweeper != nil {
		s.sweeper.Stop()
	}
	if s.hub != nil {
		_ = s.hub.Close()
	}
	if s.queue != nil {
		_ = s.queue.Close()
	}
	if s.cache != nil {
		_ = s.cache.Close()
	}
	if s.table != nil {
		_ = s.table.Close()
	}
	if s.archiver != nil {
		_ = s.archiver.Close()
	}
	if s.cancel != nil {
		s.cancel()
	}

	s.started = false
	s.logger.Info(ctx, "analytics service stopped")
}

// Hub exposes the live hub for the HTTP layer.
func (s *Service) Hub() *hub.Hub {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hub
}

// Federations returns the distinct federation names in the table.
func (s *Service) Federations(ctx context.Context) []string {
	return s.table.Federations(ctx)
}

// ArchiveSummary returns archived rollups from the analytical engine.
func (s *Service) ArchiveSummary(ctx context.Context) (map[string]uint64, map[int]uint64, error) {
	feds, err := s.archiver.FederationCounts(ctx)
	if err != nil {
		return nil, nil, err
	}
	years, err := s.archiver.YearlyCounts(ctx)
	if err != nil {
		return nil, nil, err
	}
	return feds, years, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return map[string]interface{}{"status": "stopped"}
	}

	ctx := context.Background()
	hubStats := s.hub.Stats()
	cacheStats := s.cache.GetStats()

	return map[string]interface{}{
		"status":             "running",
		"table_records":      s.table.Count(ctx),
		"cache_entries":      cacheStats.Entries,
		"cache_hits":         cacheStats.Hits,
		"cache_misses":       cacheStats.Misses,
		"queue_depth":        s.queue.Len(ctx),
		"active_sessions":    hubStats.ActiveSessions,
		"recent_event_count": hubStats.RecentEventCount,
		"load_metric":        hubStats.LoadMetric,
	}
}
