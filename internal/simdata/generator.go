// Package simdata generates a synthetic record table for local runs and
// load testing when no dataset file is configured.
package simdata

import (
	"math/rand"
	"time"

	"github.com/irongraph/irongraph/internal/domain/model"
	"github.com/irongraph/irongraph/internal/domain/types"
)

// Distribution constants. Rough shapes taken from public meet results:
// totals scale with bodyweight, women make up a bit under half the
// field, and raw lifting dominates modern meets.
const (
	maleShare      = 0.56
	rawShare       = 0.70
	wrapsShare     = 0.12
	singlePlyShare = 0.13

	maleBodyweightMean  = 93.0
	maleBodyweightSpan  = 18.0
	femaleBodyweightMin = 47.0
)

var federations = []string{"IPF", "USAPL", "USPA", "WRPF", "IPL", "CPU", "SSF"}

// Generate produces n synthetic records. The same seed always produces
// the same table, which keeps percentile assertions stable across runs.
func Generate(n int, seed int64) []model.Record {
	rng := rand.New(rand.NewSource(seed))
	now := time.Now().UTC()

	out := make([]model.Record, n)
	for i := range out {
		out[i] = record(rng, now)
	}
	return out
}

func record(rng *rand.Rand, now time.Time) model.Record {
	sex := types.Female
	if rng.Float64() < maleShare {
		sex = types.Male
	}

	var bw float64
	if sex == types.Male {
		bw = clamp(maleBodyweightMean+rng.NormFloat64()*maleBodyweightSpan, 53, 180)
	} else {
		bw = clamp(72+rng.NormFloat64()*14, femaleBodyweightMin, 140)
	}

	// Strength scales roughly with bodyweight; the multiplier spreads
	// lifters from novice to elite.
	level := 0.55 + rng.Float64()*0.9
	var squat, bench, dead float64
	if sex == types.Male {
		squat = bw * (1.2 + level)
		bench = bw * (0.8 + level*0.7)
		dead = bw * (1.4 + level)
	} else {
		squat = bw * (0.9 + level*0.9)
		bench = bw * (0.5 + level*0.55)
		dead = bw * (1.1 + level*0.95)
	}

	// A small share of entries are single-lift meets.
	switch {
	case rng.Float64() < 0.04:
		squat, dead = 0, 0
	case rng.Float64() < 0.03:
		squat, bench = 0, 0
	}

	return model.Record{
		Sex:          sex,
		BodyweightKg: round1(bw),
		SquatKg:      round1(squat),
		BenchKg:      round1(bench),
		DeadliftKg:   round1(dead),
		TotalKg:      round1(squat) + round1(bench) + round1(dead),
		Equipment:    equipment(rng),
		Federation:   federations[rng.Intn(len(federations))],
		Date:         meetDate(rng, now),
	}
}

func equipment(rng *rand.Rand) types.Equipment {
	r := rng.Float64()
	switch {
	case r < rawShare:
		return types.Raw
	case r < rawShare+wrapsShare:
		return types.Wraps
	case r < rawShare+wrapsShare+singlePlyShare:
		return types.SinglePly
	default:
		return types.MultiPly
	}
}

// meetDate picks a competition date within the last ten years, skewed
// toward recent years.
func meetDate(rng *rand.Rand, now time.Time) time.Time {
	daysBack := int(rng.ExpFloat64() * 900)
	if daysBack > 3650 {
		daysBack = rng.Intn(3650)
	}
	return now.AddDate(0, 0, -daysBack).Truncate(24 * time.Hour)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
