package repository

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/alitto/pond/v2"

	"github.com/irongraph/irongraph/internal/domain/model"
	"github.com/irongraph/irongraph/internal/domain/scoring"
	"github.com/irongraph/irongraph/pkg/metrics"
)

// Append-only, in-memory Store implementation.
//
// Score columns (DOTS, Wilks, IPF GL points, weight class) are derived
// exactly once at ingest, in parallel across a worker pool. Reads take a
// shared lock only long enough to copy the slice header; the records
// themselves are immutable.
type TableStore struct {
	mu          sync.RWMutex
	records     []model.Record
	federations map[string]struct{}

	ingestWorkers         int
	metricsUpdateInterval time.Duration
	pool                  pond.Pool

	stopChan  chan struct{}
	closeOnce sync.Once
}

var _ Store = (*TableStore)(nil)

// NewTableStore creates an empty record table.
func NewTableStore(ctx context.Context, opts ...Option) *TableStore {
	s := &TableStore{
		ingestWorkers:         runtime.NumCPU(),
		metricsUpdateInterval: 5 * time.Second,
		federations:           make(map[string]struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.pool = pond.NewPool(s.ingestWorkers)
	s.stopChan = make(chan struct{})
	s.startMetricsUpdater(ctx)

	return s
}

// Ingest derives score columns for the batch and appends it to the table.
func (s *TableStore) Ingest(ctx context.Context, batch []model.Record) (int, error) {
	select {
	case <-s.stopChan:
		return 0, ErrClosed
	default:
	}
	if len(batch) == 0 {
		return 0, ErrEmptyBatch
	}

	start := time.Now()

	group := s.pool.NewGroupContext(ctx)
	groupCtx := group.Context()

	chunk := (len(batch) + s.ingestWorkers - 1) / s.ingestWorkers
	for lo := 0; lo < len(batch); lo += chunk {
		hi := min(lo+chunk, len(batch))
		part := batch[lo:hi]
		group.Submit(func() {
			if err := groupCtx.Err(); err != nil {
				return
			}
			for i := range part {
				derive(&part[i])
			}
		})
	}
	if err := group.Wait(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	s.records = append(s.records, batch...)
	for i := range batch {
		if f := batch[i].Federation; f != "" {
			s.federations[f] = struct{}{}
		}
	}
	total := len(s.records)
	s.mu.Unlock()

	metrics.UpdateTableRecords(total)
	metrics.RecordIngestLatency(float64(time.Since(start).Milliseconds()))

	return len(batch), nil
}

// derive fills the score columns of a single record.
func derive(r *model.Record) {
	r.Dots = scoring.Dots(r.TotalKg, r.BodyweightKg, r.Sex)
	r.Wilks = scoring.Wilks(r.TotalKg, r.BodyweightKg, r.Sex)
	r.GLPoints = scoring.GLPoints(r.TotalKg, r.BodyweightKg, r.Sex)
	r.WeightClass = scoring.WeightClass(r.BodyweightKg, r.Sex)
}

// Snapshot returns the current table. The slice is append-only so the
// returned header stays valid even while further batches arrive.
func (s *TableStore) Snapshot(_ context.Context) []model.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records
}

// Count returns the number of records in the table.
func (s *TableStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Federations returns the distinct federation names, sorted ascending.
func (s *TableStore) Federations(_ context.Context) []string {
	s.mu.RLock()
	out := make([]string, 0, len(s.federations))
	for f := range s.federations {
		out = append(out, f)
	}
	s.mu.RUnlock()

	sort.Strings(out)
	return out
}

// Close stops the metrics updater and the ingest pool.
func (s *TableStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.pool.StopAndWait()
	})
	return nil
}

// startMetricsUpdater starts a background goroutine that refreshes table metrics.
func (s *TableStore) startMetricsUpdater(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				metrics.UpdateTableRecords(s.Count(ctx))
			}
		}
	}()
}
