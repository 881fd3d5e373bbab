// Package repository defines the record table interface and errors.
package repository

import (
	"context"

	"github.com/irongraph/irongraph/internal/domain/model"
)

// Store provides access to the in-memory competition record table.
//
// The table is append-only: Ingest derives the score columns once and
// appends the batch; records are never mutated afterwards, so snapshots
// can be shared read-only across concurrent requests.
type Store interface {
	// Ingest derives the per-record score columns and appends the batch.
	// Returns the number of records appended.
	Ingest(ctx context.Context, batch []model.Record) (int, error)

	// Snapshot returns the current record table. Callers must treat the
	// returned slice and its records as read-only.
	Snapshot(ctx context.Context) []model.Record

	// Count returns the number of records in the table.
	Count(ctx context.Context) int

	// Federations returns the distinct federation names seen at ingest,
	// sorted ascending.
	Federations(ctx context.Context) []string

	// Close stops background goroutines.
	Close() error
}
