package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/irongraph/irongraph/internal/domain/model"
	"github.com/irongraph/irongraph/pkg/metrics"
)

// ClickHouseArchiver implements Archiver on a ClickHouse backend.
// Every backend call is bounded by the configured timeout.
type ClickHouseArchiver struct {
	conn    driver.Conn
	timeout time.Duration
}

// ClickHouseConfig carries connection parameters for the archive.
type ClickHouseConfig struct {
	Addr     string
	Database string
	Username string
	Password string
	Timeout  time.Duration
}

var _ Archiver = (*ClickHouseArchiver)(nil)

// NewClickHouseArchiver connects to ClickHouse and ensures the archive
// table exists.
func NewClickHouseArchiver(ctx context.Context, cfg ClickHouseConfig) (*ClickHouseArchiver, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		DialTimeout: cfg.Timeout,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnect, err)
	}

	a := &ClickHouseArchiver{conn: conn, timeout: cfg.Timeout}

	setupCtx, cancel := a.queryContext(ctx)
	defer cancel()

	if err := conn.Ping(setupCtx); err != nil {
		return nil, fmt.Errorf("%w: ping: %w", ErrConnect, err)
	}

	if err := createTableIfNotExists(setupCtx, conn); err != nil {
		return nil, fmt.Errorf("%w: create table: %w", ErrConnect, err)
	}

	return a, nil
}

// queryContext bounds a backend call by the configured timeout. A zero
// timeout leaves the caller's context untouched.
func (a *ClickHouseArchiver) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, a.timeout)
}

func createTableIfNotExists(ctx context.Context, conn driver.Conn) error {
	return conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS lift_records (
			sex String,
			bodyweight_kg Float64,
			squat_kg Float64,
			bench_kg Float64,
			deadlift_kg Float64,
			total_kg Float64,
			equipment String,
			federation String,
			competed_on Date,
			dots Float64,
			wilks Float64,
			gl_points Float64,
			weight_class String,
			archived_at DateTime DEFAULT now()
		) ENGINE = MergeTree()
		ORDER BY (federation, competed_on)
	`)
}

// ArchiveRecords appends a batch to the archive via async inserts.
func (a *ClickHouseArchiver) ArchiveRecords(ctx context.Context, batch []model.Record) error {
	ctx, cancel := a.queryContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() {
		metrics.RecordEngineQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	query := `
		INSERT INTO lift_records (
			sex, bodyweight_kg, squat_kg, bench_kg, deadlift_kg, total_kg,
			equipment, federation, competed_on,
			dots, wilks, gl_points, weight_class
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	for i := range batch {
		r := &batch[i]
		if err := a.conn.AsyncInsert(ctx, query, false,
			r.Sex.String(),
			r.BodyweightKg,
			r.SquatKg,
			r.BenchKg,
			r.DeadliftKg,
			r.TotalKg,
			r.Equipment.String(),
			r.Federation,
			r.Date,
			r.Dots,
			r.Wilks,
			r.GLPoints,
			r.WeightClass,
		); err != nil {
			metrics.RecordEngineError()
			return fmt.Errorf("%w: %w", ErrQuery, err)
		}
	}
	return nil
}

// FederationCounts returns archived record counts per federation.
func (a *ClickHouseArchiver) FederationCounts(ctx context.Context) (map[string]uint64, error) {
	ctx, cancel := a.queryContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() {
		metrics.RecordEngineQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	var rows []struct {
		Federation string `ch:"federation"`
		Count      uint64 `ch:"cnt"`
	}
	err := a.conn.Select(ctx, &rows, `
		SELECT federation, count() AS cnt
		FROM lift_records
		GROUP BY federation
	`)
	if err != nil {
		metrics.RecordEngineError()
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}

	out := make(map[string]uint64, len(rows))
	for _, row := range rows {
		out[row.Federation] = row.Count
	}
	return out, nil
}

// YearlyCounts returns archived record counts per competition year.
func (a *ClickHouseArchiver) YearlyCounts(ctx context.Context) (map[int]uint64, error) {
	ctx, cancel := a.queryContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() {
		metrics.RecordEngineQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	var rows []struct {
		Year  uint16 `ch:"yr"`
		Count uint64 `ch:"cnt"`
	}
	err := a.conn.Select(ctx, &rows, `
		SELECT toYear(competed_on) AS yr, count() AS cnt
		FROM lift_records
		GROUP BY yr
		ORDER BY yr
	`)
	if err != nil {
		metrics.RecordEngineError()
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}

	out := make(map[int]uint64, len(rows))
	for _, row := range rows {
		out[int(row.Year)] = row.Count
	}
	return out, nil
}

// Ping verifies the backend is reachable.
func (a *ClickHouseArchiver) Ping(ctx context.Context) error {
	ctx, cancel := a.queryContext(ctx)
	defer cancel()
	return a.conn.Ping(ctx)
}

// Close releases the backend connection.
func (a *ClickHouseArchiver) Close() error {
	return a.conn.Close()
}
