// Package model contains domain models passed between layers.
package model

import (
	"slices"
	"time"

	"github.com/irongraph/irongraph/internal/domain/types"
)

// Record is one competition result. Derived score columns are populated
// exactly once at ingest; records are immutable afterwards and the table
// holding them is shared read-only across all requests.
type Record struct {
	Sex          types.Sex
	BodyweightKg float64
	SquatKg      float64 // 0 = lift not competed
	BenchKg      float64
	DeadliftKg   float64
	TotalKg      float64
	Equipment    types.Equipment
	Federation   string
	Date         time.Time

	// Derived at ingest.
	Dots        float64
	Wilks       float64
	GLPoints    float64
	WeightClass string
}

// FilterRequest carries the filter criteria of an analytics request.
// Every field is optional; the zero value is unconstrained.
type FilterRequest struct {
	Sex             *types.Sex
	Equipment       []types.Equipment // union semantics: match any
	WeightClass     string
	MinBodyweightKg float64 // 0 = unset
	MaxBodyweightKg float64 // 0 = unset
	Federation      string
	Period          types.TimePeriod
	Year            int // calendar year for Period == CalendarYear
}

// Normalize returns a canonical copy so that field-wise equal requests
// fingerprint identically: the equipment set is sorted and de-duplicated,
// and selecting every category collapses to the unconstrained form.
func (f FilterRequest) Normalize() FilterRequest {
	out := f
	if len(f.Equipment) > 0 {
		eq := slices.Clone(f.Equipment)
		slices.Sort(eq)
		eq = slices.Compact(eq)
		if len(eq) == len(types.AllEquipment()) {
			eq = nil
		}
		out.Equipment = eq
	}
	if f.Period != types.CalendarYear {
		out.Year = 0
	}
	return out
}

// Reference carries the viewer's own numbers used for percentile ranks.
type Reference struct {
	Sex          types.Sex
	BodyweightKg float64
	SquatKg      float64
	BenchKg      float64
	DeadliftKg   float64
}

// TotalKg sums the three reference lifts.
func (r Reference) TotalKg() float64 {
	return r.SquatKg + r.BenchKg + r.DeadliftKg
}

// AnalyticsRequest is the full computation request: filter criteria, the
// optional reference lifts, and the output format discriminator. The
// format participates in the cache fingerprint.
type AnalyticsRequest struct {
	Filter    FilterRequest
	Reference *Reference
	Format    string // "json" or "columnar-binary"
}

// Bin is one histogram bucket over the DOTS score axis.
type Bin struct {
	Lo    float64 `json:"lo"`
	Hi    float64 `json:"hi"`
	Count int     `json:"count"`
}

// Point is one scatter coordinate (bodyweight vs total, DOTS for shading).
type Point struct {
	BodyweightKg float64 `json:"bw"`
	TotalKg      float64 `json:"total"`
	Dots         float64 `json:"dots"`
}

// AnalyticsResult is the format-agnostic output of the pipeline. A format
// adapter serializes it at the boundary; the numeric core never sees the
// wire encoding.
type AnalyticsResult struct {
	RecordCount int                `json:"record_count"`
	Histogram   []Bin              `json:"histogram"`
	Scatter     []Point            `json:"scatter"`
	Percentiles map[string]float64 `json:"percentiles,omitempty"`
	Duration    time.Duration      `json:"duration_ns"`
}

// ActivityEvent is a single viewer calculation folded into the shared
// activity feed.
type ActivityEvent struct {
	Dots float64        `json:"dots"`
	Tier string         `json:"tier"`
	Lift types.LiftType `json:"lift"`
	At   time.Time      `json:"at"`
}

// UserUpdate is an inbound hub event: a connected viewer's current numbers.
type UserUpdate struct {
	Sex          types.Sex
	BodyweightKg float64
	SquatKg      float64
	BenchKg      float64
	DeadliftKg   float64
	Lift         types.LiftType
}

// StatsUpdate is the periodic hub broadcast payload.
type StatsUpdate struct {
	ActiveSessions   int     `json:"active_sessions"`
	RecentEventCount int     `json:"recent_event_count"`
	LoadMetric       float64 `json:"load_metric"`
}
