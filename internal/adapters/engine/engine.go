// Package engine provides the optional analytical archive backend.
//
// The in-memory table answers every interactive request; the engine is
// a write-behind archive for durable storage and heavy offline rollups.
// A disabled engine is represented by the Noop implementation so callers
// never branch on nil.
package engine

import (
	"context"

	"github.com/irongraph/irongraph/internal/domain/model"
)

// Archiver persists ingested record batches and answers aggregate
// rollup queries over the archive.
type Archiver interface {
	// ArchiveRecords appends a batch to the archive.
	ArchiveRecords(ctx context.Context, batch []model.Record) error

	// FederationCounts returns archived record counts per federation.
	FederationCounts(ctx context.Context) (map[string]uint64, error)

	// YearlyCounts returns archived record counts per competition year.
	YearlyCounts(ctx context.Context) (map[int]uint64, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the backend connection.
	Close() error
}

// Noop is the disabled archive. Writes vanish and rollups are empty.
type Noop struct{}

var _ Archiver = Noop{}

func (Noop) ArchiveRecords(context.Context, []model.Record) error { return nil }

func (Noop) FederationCounts(context.Context) (map[string]uint64, error) {
	return map[string]uint64{}, nil
}

func (Noop) YearlyCounts(context.Context) (map[int]uint64, error) {
	return map[int]uint64{}, nil
}

func (Noop) Ping(context.Context) error { return nil }

func (Noop) Close() error { return nil }
