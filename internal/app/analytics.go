package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/irongraph/irongraph/internal/adapters/cache"
	"github.com/irongraph/irongraph/internal/domain/filtering"
	"github.com/irongraph/irongraph/internal/domain/model"
	"github.com/irongraph/irongraph/internal/domain/percentile"
	"github.com/irongraph/irongraph/internal/domain/scoring"
	"github.com/irongraph/irongraph/internal/domain/types"
	"github.com/irongraph/irongraph/pkg/logger"
	"github.com/irongraph/irongraph/pkg/metrics"
)

// cancelCheckStride bounds how many rows are scanned between context
// checks during a table scan.
const cancelCheckStride = 4096

// Analytics runs the request pipeline: fingerprint, cache lookup or
// deduplicated compute, then the encoded payload. The bool reports
// whether the payload came from the cache. When the cache is
// unavailable the request falls back to a direct compute.
func (s *Service) Analytics(ctx context.Context, req model.AnalyticsRequest) ([]byte, string, bool, error) {
	if req.Format == "" {
		req.Format = FormatJSON
	}
	contentType, err := contentTypeFor(req.Format)
	if err != nil {
		return nil, "", false, err
	}

	key := cache.Fingerprint(req)
	computeFn := func(ctx context.Context) ([]byte, error) {
		result, err := s.compute(ctx, req)
		if err != nil {
			return nil, err
		}
		return encode(result, req.Format)
	}

	payload, hit, err := s.cache.GetOrCompute(ctx, key, computeFn)
	if errors.Is(err, cache.ErrUnavailable) {
		s.logger.Warn(ctx, "cache unavailable, computing directly")
		metrics.RecordErrorByComponent("cache", "unavailable")
		hit = false
		payload, err = computeFn(ctx)
	}
	if err != nil {
		return nil, "", false, err
	}

	if req.Reference != nil {
		s.publishActivity(ctx, req.Reference)
	}

	return payload, contentType, hit, nil
}

// publishActivity folds the viewer's reference numbers into the live
// activity feed. Best effort: a full queue drops the event.
func (s *Service) publishActivity(ctx context.Context, ref *model.Reference) {
	dots := scoring.Dots(ref.TotalKg(), ref.BodyweightKg, ref.Sex)
	if !scoring.Valid(dots) {
		s.logger.Debug(ctx, "reference not scoreable, activity skipped",
			logger.Float64("bodyweight_kg", ref.BodyweightKg))
		return
	}
	tier := scoring.StrengthTier(dots, types.Total, ref.Sex)
	ok := s.hub.Publish(ctx, model.ActivityEvent{
		Dots: dots,
		Tier: tier.String(),
		Lift: types.Total,
		At:   time.Now().UTC(),
	})
	if !ok {
		s.logger.Debug(ctx, "activity event dropped", logger.Float64("dots", dots))
	}
}

// compute scans the filtered table and builds the aggregate result.
func (s *Service) compute(ctx context.Context, req model.AnalyticsRequest) (*model.AnalyticsResult, error) {
	start := time.Now()

	snapshot := s.table.Snapshot(ctx)
	pred := filtering.Build(req.Filter, time.Now())

	var (
		matched    int
		dotsValues []float64
		totals     []float64
		squats     []float64
		benches    []float64
		deadlifts  []float64
		points     []model.Point
	)
	wantColumns := req.Reference != nil

	for r := range filtering.Select(snapshot, pred) {
		if matched%cancelCheckStride == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("%w: %w", filtering.ErrExecution, err)
			}
		}
		matched++

		if scoring.Valid(r.Dots) {
			dotsValues = append(dotsValues, r.Dots)
			points = append(points, model.Point{
				BodyweightKg: r.BodyweightKg,
				TotalKg:      r.TotalKg,
				Dots:         r.Dots,
			})
		}
		if wantColumns {
			totals = append(totals, r.TotalKg)
			squats = append(squats, r.SquatKg)
			benches = append(benches, r.BenchKg)
			deadlifts = append(deadlifts, r.DeadliftKg)
		}
	}

	result := &model.AnalyticsResult{
		RecordCount: matched,
		Histogram:   histogram(dotsValues, s.histogramBins),
		Scatter:     downsample(points, s.scatterMaxPoints),
	}

	if req.Reference != nil {
		result.Percentiles = s.percentiles(req.Reference, squats, benches, deadlifts, totals, dotsValues)
	}

	result.Duration = time.Since(start)

	metrics.RecordRequestComputed()
	metrics.RecordComputeLatency(float64(result.Duration.Milliseconds()))
	metrics.RecordRecordsFiltered(matched)

	return result, nil
}

// percentiles ranks the viewer's numbers against the filtered columns.
// Columns with no valid values are omitted rather than erroring.
func (s *Service) percentiles(ref *model.Reference, squats, benches, deadlifts, totals, dots []float64) map[string]float64 {
	refDots := scoring.Dots(ref.TotalKg(), ref.BodyweightKg, ref.Sex)

	out := make(map[string]float64, 5)
	put := func(key string, values []float64, reference float64) {
		if pct, ok := percentile.Rank(values, reference); ok {
			out[key] = pct
		}
	}
	put("squat", squats, ref.SquatKg)
	put("bench", benches, ref.BenchKg)
	put("deadlift", deadlifts, ref.DeadliftKg)
	put("total", totals, ref.TotalKg())
	put("dots", dots, refDots)

	if len(out) == 0 {
		return nil
	}
	return out
}

// histogram buckets the DOTS values into n equal-width bins spanning
// the observed range.
func histogram(values []float64, n int) []model.Bin {
	if len(values) == 0 || n <= 0 {
		return []model.Bin{}
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo == hi {
		return []model.Bin{{Lo: lo, Hi: hi, Count: len(values)}}
	}

	width := (hi - lo) / float64(n)
	bins := make([]model.Bin, n)
	for i := range bins {
		bins[i].Lo = lo + float64(i)*width
		bins[i].Hi = lo + float64(i+1)*width
	}
	bins[n-1].Hi = hi

	for _, v := range values {
		idx := int((v - lo) / width)
		if idx >= n {
			idx = n - 1
		}
		bins[idx].Count++
	}
	return bins
}

// downsample thins the scatter to at most max points with an even
// stride, keeping the overall shape of the cloud.
func downsample(points []model.Point, max int) []model.Point {
	if max <= 0 || len(points) <= max {
		if points == nil {
			return []model.Point{}
		}
		return points
	}

	stride := float64(len(points)) / float64(max)
	out := make([]model.Point, 0, max)
	for i := 0; i < max; i++ {
		out = append(out, points[int(math.Floor(float64(i)*stride))])
	}
	return out
}
