package filtering

import (
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/irongraph/irongraph/internal/domain/model"
	"github.com/irongraph/irongraph/internal/domain/types"
)

func sexPtr(s types.Sex) *types.Sex { return &s }

func testTable() []model.Record {
	date := func(y, m, d int) time.Time {
		return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	}
	return []model.Record{
		{Sex: types.Male, BodyweightKg: 92.5, Equipment: types.Raw, WeightClass: "93", Federation: "IPF", Date: date(2024, 6, 1), TotalKg: 700},
		{Sex: types.Female, BodyweightKg: 62.0, Equipment: types.Raw, WeightClass: "63", Federation: "USAPL", Date: date(2023, 3, 15), TotalKg: 420},
		{Sex: types.Male, BodyweightKg: 118.0, Equipment: types.SinglePly, WeightClass: "120", Federation: "IPF", Date: date(2019, 11, 2), TotalKg: 820},
	}
}

func TestBuild(t *testing.T) {
	convey.Convey("Given a shared record table", t, func() {
		records := testTable()
		now := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

		convey.Convey("When the request is unconstrained", func() {
			got := Collect(records, Build(model.FilterRequest{}, now))

			convey.Convey("Then every record passes in table order", func() {
				convey.So(got, convey.ShouldHaveLength, 3)
				convey.So(got[0], convey.ShouldEqual, &records[0])
				convey.So(got[2], convey.ShouldEqual, &records[2])
			})
		})

		convey.Convey("When filtering by sex and equipment", func() {
			got := Collect(records, Build(model.FilterRequest{
				Sex:       sexPtr(types.Male),
				Equipment: []types.Equipment{types.Raw},
			}, now))

			convey.Convey("Then conditions compose conjunctively", func() {
				convey.So(got, convey.ShouldHaveLength, 1)
				convey.So(got[0].WeightClass, convey.ShouldEqual, "93")
			})
		})

		convey.Convey("When the equipment set names several categories", func() {
			got := Collect(records, Build(model.FilterRequest{
				Equipment: []types.Equipment{types.Raw, types.SinglePly},
			}, now))

			convey.Convey("Then the set matches as a union", func() {
				convey.So(got, convey.ShouldHaveLength, 3)
			})
		})

		convey.Convey("When the equipment set names every category", func() {
			got := Collect(records, Build(model.FilterRequest{
				Equipment: types.AllEquipment(),
			}, now))

			convey.Convey("Then it normalizes to unconstrained", func() {
				convey.So(got, convey.ShouldHaveLength, 3)
			})
		})

		convey.Convey("When bounding bodyweight", func() {
			got := Collect(records, Build(model.FilterRequest{
				MinBodyweightKg: 62.0,
				MaxBodyweightKg: 93.0,
			}, now))

			convey.Convey("Then both bounds are inclusive", func() {
				convey.So(got, convey.ShouldHaveLength, 2)
				convey.So(got[0].Federation, convey.ShouldEqual, "IPF")
				convey.So(got[1].Federation, convey.ShouldEqual, "USAPL")
			})
		})

		convey.Convey("When filtering by weight class and federation", func() {
			got := Collect(records, Build(model.FilterRequest{
				WeightClass: "120",
				Federation:  "IPF",
			}, now))

			convey.So(got, convey.ShouldHaveLength, 1)
			convey.So(got[0].Equipment, convey.ShouldEqual, types.SinglePly)
		})

		convey.Convey("When filtering by calendar year", func() {
			got := Collect(records, Build(model.FilterRequest{
				Period: types.CalendarYear,
				Year:   2023,
			}, now))

			convey.Convey("Then only that year's records pass", func() {
				convey.So(got, convey.ShouldHaveLength, 1)
				convey.So(got[0].Sex, convey.ShouldEqual, types.Female)
			})
		})

		convey.Convey("When filtering by a rolling window", func() {
			convey.Convey("Then the window bounds only the lower end", func() {
				last12 := Collect(records, Build(model.FilterRequest{Period: types.Last12Months}, now))
				convey.So(last12, convey.ShouldHaveLength, 1)

				last5 := Collect(records, Build(model.FilterRequest{Period: types.Last5Years}, now))
				convey.So(last5, convey.ShouldHaveLength, 2)

				last10 := Collect(records, Build(model.FilterRequest{Period: types.Last10Years}, now))
				convey.So(last10, convey.ShouldHaveLength, 3)
			})
		})

		convey.Convey("When no record satisfies the filter", func() {
			got := Collect(records, Build(model.FilterRequest{Federation: "WRPF"}, now))

			convey.Convey("Then the result is empty rather than an error", func() {
				convey.So(got, convey.ShouldBeEmpty)
			})
		})
	})
}

func TestSelect(t *testing.T) {
	convey.Convey("Given a lazy scan", t, func() {
		records := testTable()
		pred := Build(model.FilterRequest{}, time.Now())

		convey.Convey("When the consumer stops early", func() {
			var seen int
			for range Select(records, pred) {
				seen++
				break
			}

			convey.Convey("Then iteration halts without scanning the rest", func() {
				convey.So(seen, convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When iterating fully", func() {
			var seen []*model.Record
			for r := range Select(records, pred) {
				seen = append(seen, r)
			}

			convey.Convey("Then yielded pointers alias the table", func() {
				convey.So(seen, convey.ShouldHaveLength, 3)
				convey.So(seen[1], convey.ShouldEqual, &records[1])
			})
		})
	})
}
