// Package percentile ranks a reference value among a column of lift data.
package percentile

import "math"

// valid reports whether a value participates in ranking. NaN, infinite,
// zero, and negative entries are excluded from numerator and denominator
// alike: zero means "lift not competed" in this dataset.
func valid(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

// Rank returns the percentage of valid values strictly less than ref.
// Ties do not count as below. The second return is false when there are
// no valid values or ref itself is invalid; callers must treat that as
// "no data" rather than zero.
//
// The result is full precision; display rounding (half away from zero)
// belongs to the serialization boundary.
func Rank(values []float64, ref float64) (float64, bool) {
	if !valid(ref) {
		return 0, false
	}
	below, total := 0, 0
	for _, v := range values {
		if !valid(v) {
			continue
		}
		total++
		if v < ref {
			below++
		}
	}
	if total == 0 {
		return 0, false
	}
	return 100 * float64(below) / float64(total), true
}

// Round reports a percentage to the nearest integer point, half away
// from zero, matching the external display contract.
func Round(pct float64) int {
	return int(math.Round(pct))
}
