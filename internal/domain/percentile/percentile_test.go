package percentile

import (
	"math"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestRank(t *testing.T) {
	convey.Convey("Given a column of lift values", t, func() {
		values := []float64{100, 150, 200, 250, 300}

		convey.Convey("When the reference sits mid-column", func() {
			pct, ok := Rank(values, 210)

			convey.Convey("Then the rank counts strictly-below values", func() {
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(pct, convey.ShouldAlmostEqual, 60.0)
			})
		})

		convey.Convey("When the reference ties an entry", func() {
			pct, ok := Rank(values, 200)

			convey.Convey("Then the tie does not count as below", func() {
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(pct, convey.ShouldAlmostEqual, 40.0)
			})
		})

		convey.Convey("When the reference is below every entry", func() {
			pct, ok := Rank(values, 50)

			convey.So(ok, convey.ShouldBeTrue)
			convey.So(pct, convey.ShouldEqual, 0.0)
		})

		convey.Convey("When the reference is above every entry", func() {
			pct, ok := Rank(values, 500)

			convey.So(ok, convey.ShouldBeTrue)
			convey.So(pct, convey.ShouldEqual, 100.0)
		})

		convey.Convey("When the column carries sentinel entries", func() {
			dirty := []float64{100, 0, math.NaN(), -50, math.Inf(1), 200, 300}
			pct, ok := Rank(dirty, 250)

			convey.Convey("Then only the valid entries participate", func() {
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(pct, convey.ShouldAlmostEqual, 100.0*2/3)
			})
		})

		convey.Convey("When there is no valid data", func() {
			convey.Convey("Then the rank is reported absent, not zero", func() {
				_, ok := Rank(nil, 250)
				convey.So(ok, convey.ShouldBeFalse)

				_, ok = Rank([]float64{0, math.NaN()}, 250)
				convey.So(ok, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When the reference itself is invalid", func() {
			convey.Convey("Then the rank is reported absent", func() {
				for _, ref := range []float64{0, -10, math.NaN(), math.Inf(-1)} {
					_, ok := Rank(values, ref)
					convey.So(ok, convey.ShouldBeFalse)
				}
			})
		})
	})
}

func TestRound(t *testing.T) {
	convey.Convey("Given display rounding", t, func() {
		convey.Convey("Then halves round away from zero", func() {
			convey.So(Round(66.5), convey.ShouldEqual, 67)
			convey.So(Round(66.4), convey.ShouldEqual, 66)
			convey.So(Round(0.5), convey.ShouldEqual, 1)
			convey.So(Round(100.0), convey.ShouldEqual, 100)
		})
	})
}
