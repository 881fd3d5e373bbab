// Package scoring computes competition strength scores from raw lift
// numbers. Every function here is pure and total: invalid input never
// panics, it yields NaN (or the open "+" class for weight classes), and
// callers exclude NaN or non-positive results from aggregates. The same
// formulas run in a browser-side reimplementation, so results must be
// stable to 1e-3 relative tolerance regardless of evaluation order.
package scoring

import (
	"fmt"
	"math"

	"github.com/irongraph/irongraph/internal/domain/types"
)

// Bodyweights outside this range produce NaN: the published coefficient
// sets are not calibrated beyond it and the polynomials can go negative.
const (
	minBodyweightKg = 20
	maxBodyweightKg = 650
)

// Invalid is the sentinel returned for inputs a formula cannot score.
func Invalid() float64 { return math.NaN() }

// Valid reports whether a score is usable in aggregates.
func Valid(score float64) bool {
	return !math.IsNaN(score) && !math.IsInf(score, 0) && score > 0
}

func scoreable(lift, bw float64) bool {
	if math.IsNaN(lift) || math.IsInf(lift, 0) || lift < 0 {
		return false
	}
	if math.IsNaN(bw) || math.IsInf(bw, 0) {
		return false
	}
	return bw >= minBodyweightKg && bw <= maxBodyweightKg
}

// polyval evaluates a polynomial with coefficients in ascending power
// order using Horner's rule.
func polyval(coeffs []float64, x float64) float64 {
	acc := 0.0
	for i := len(coeffs) - 1; i >= 0; i-- {
		acc = acc*x + coeffs[i]
	}
	return acc
}

// Dots computes the DOTS score: lift * 500 / P(bodyweight), where P is a
// quartic with sex-specific coefficients.
func Dots(lift, bodyweightKg float64, sex types.Sex) float64 {
	if !scoreable(lift, bodyweightKg) {
		return Invalid()
	}
	coeffs := dotsMen
	if sex == types.Female {
		coeffs = dotsWomen
	}
	denom := polyval(coeffs[:], bodyweightKg)
	if denom <= 0 {
		return Invalid()
	}
	return lift * 500 / denom
}

// Wilks computes the Wilks score: lift * 500 / Q(bodyweight), quintic Q.
func Wilks(lift, bodyweightKg float64, sex types.Sex) float64 {
	if !scoreable(lift, bodyweightKg) {
		return Invalid()
	}
	coeffs := wilksMen
	if sex == types.Female {
		coeffs = wilksWomen
	}
	denom := polyval(coeffs[:], bodyweightKg)
	if denom <= 0 {
		return Invalid()
	}
	return lift * 500 / denom
}

// GLPoints computes IPF GL points: lift * 100 / (A - B*exp(-C*bw)).
func GLPoints(lift, bodyweightKg float64, sex types.Sex) float64 {
	if !scoreable(lift, bodyweightKg) {
		return Invalid()
	}
	k := glMen
	if sex == types.Female {
		k = glWomen
	}
	denom := k.a - k.b*math.Exp(-k.c*bodyweightKg)
	if denom <= 0 {
		return Invalid()
	}
	return lift * 100 / denom
}

// WeightClass maps a bodyweight to the smallest class upper bound it does
// not exceed, from the sex-specific IPF ladder. A bodyweight beyond the
// largest bound maps to the open-ended "+" class; an unscoreable
// bodyweight maps to the empty label.
func WeightClass(bodyweightKg float64, sex types.Sex) string {
	if math.IsNaN(bodyweightKg) || math.IsInf(bodyweightKg, 0) ||
		bodyweightKg < minBodyweightKg || bodyweightKg > maxBodyweightKg {
		return ""
	}
	ladder := classLadderMen
	if sex == types.Female {
		ladder = classLadderWomen
	}
	for _, bound := range ladder {
		if bodyweightKg <= bound {
			return trimmedKg(bound)
		}
	}
	return trimmedKg(ladder[len(ladder)-1]) + "+"
}

func trimmedKg(bound float64) string {
	if bound == math.Trunc(bound) {
		return fmt.Sprintf("%d", int(bound))
	}
	return fmt.Sprintf("%g", bound)
}

// StrengthTier buckets a DOTS score into a strength level using the
// ascending lift- and sex-specific thresholds: below the first bound is
// Beginner, at or above the last is WorldClass. Invalid scores are
// Beginner.
func StrengthTier(score float64, lift types.LiftType, sex types.Sex) types.Tier {
	if !Valid(score) {
		return types.Beginner
	}
	table := tierThresholdsMen
	if sex == types.Female {
		table = tierThresholdsWomen
	}
	bounds := table[lift.String()]
	tier := types.Beginner
	for i, bound := range bounds {
		if score >= bound {
			tier = types.Tier(i + 1)
		}
	}
	return tier
}
