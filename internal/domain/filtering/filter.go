// Package filtering translates a FilterRequest into a lazy predicate over
// the shared record table. Conditions compose conjunctively; the equipment
// set is a union. The table is never copied or mutated: Select yields
// pointers into the caller's slice.
package filtering

import (
	"iter"
	"time"

	"github.com/irongraph/irongraph/internal/domain/model"
	"github.com/irongraph/irongraph/internal/domain/types"
)

// Predicate reports whether a record satisfies every present constraint.
type Predicate func(*model.Record) bool

// Build compiles a request into a single predicate. Fields are assumed
// validated upstream; an absent field imposes no condition. The returned
// predicate is safe for concurrent use.
func Build(req model.FilterRequest, now time.Time) Predicate {
	req = req.Normalize()
	conds := make([]Predicate, 0, 6)

	if req.Sex != nil {
		want := *req.Sex
		conds = append(conds, func(r *model.Record) bool { return r.Sex == want })
	}
	if len(req.Equipment) > 0 {
		var mask uint8
		for _, e := range req.Equipment {
			mask |= 1 << uint8(e)
		}
		conds = append(conds, func(r *model.Record) bool { return mask&(1<<uint8(r.Equipment)) != 0 })
	}
	if req.WeightClass != "" {
		// Label match only: men's and women's classes sharing a numeric
		// boundary are distinguished by a separate sex condition.
		want := req.WeightClass
		conds = append(conds, func(r *model.Record) bool { return r.WeightClass == want })
	}
	if req.MinBodyweightKg > 0 {
		lo := req.MinBodyweightKg
		conds = append(conds, func(r *model.Record) bool { return r.BodyweightKg >= lo })
	}
	if req.MaxBodyweightKg > 0 {
		hi := req.MaxBodyweightKg
		conds = append(conds, func(r *model.Record) bool { return r.BodyweightKg <= hi })
	}
	if req.Federation != "" {
		want := req.Federation
		conds = append(conds, func(r *model.Record) bool { return r.Federation == want })
	}
	if cond := periodCondition(req.Period, req.Year, now); cond != nil {
		conds = append(conds, cond)
	}

	switch len(conds) {
	case 0:
		return func(*model.Record) bool { return true }
	case 1:
		return conds[0]
	}
	return func(r *model.Record) bool {
		for _, c := range conds {
			if !c(r) {
				return false
			}
		}
		return true
	}
}

// periodCondition resolves the time-period selector into date bounds
// relative to now. CalendarYear bounds both ends of the window; the
// rolling selectors only bound the lower end.
func periodCondition(period types.TimePeriod, year int, now time.Time) Predicate {
	switch period {
	case types.CalendarYear:
		lo := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		hi := lo.AddDate(1, 0, 0)
		return func(r *model.Record) bool { return !r.Date.Before(lo) && r.Date.Before(hi) }
	case types.Last12Months:
		return sinceCondition(now.AddDate(0, 0, -365))
	case types.Last5Years:
		return sinceCondition(now.AddDate(0, 0, -5*365))
	case types.Last10Years:
		return sinceCondition(now.AddDate(0, 0, -10*365))
	default:
		return nil
	}
}

func sinceCondition(lo time.Time) Predicate {
	return func(r *model.Record) bool { return !r.Date.Before(lo) }
}

// Select lazily yields the records satisfying pred, in table order,
// without allocating an intermediate copy.
func Select(records []model.Record, pred Predicate) iter.Seq[*model.Record] {
	return func(yield func(*model.Record) bool) {
		for i := range records {
			if !pred(&records[i]) {
				continue
			}
			if !yield(&records[i]) {
				return
			}
		}
	}
}

// Collect materializes a filtered view for callers that need indexable
// access. The returned pointers alias the shared table and must not be
// used to mutate it.
func Collect(records []model.Record, pred Predicate) []*model.Record {
	var out []*model.Record
	for r := range Select(records, pred) {
		out = append(out, r)
	}
	return out
}
