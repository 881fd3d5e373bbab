package hub

import (
	"testing"
	"time"

	"github.com/irongraph/irongraph/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestRing(t *testing.T) {
	convey.Convey("Given a ring of capacity three", t, func() {
		r := NewRing(3)

		convey.Convey("When appending within capacity", func() {
			r.Append(model.ActivityEvent{Dots: 1})
			r.Append(model.ActivityEvent{Dots: 2})

			convey.Convey("Then the snapshot is ordered oldest to newest", func() {
				snap := r.Snapshot()
				convey.So(snap, convey.ShouldHaveLength, 2)
				convey.So(snap[0].Dots, convey.ShouldEqual, 1)
				convey.So(snap[1].Dots, convey.ShouldEqual, 2)
				convey.So(r.Len(), convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When appending past capacity", func() {
			for i := 1; i <= 5; i++ {
				r.Append(model.ActivityEvent{Dots: float64(i)})
			}

			convey.Convey("Then the oldest events are overwritten", func() {
				snap := r.Snapshot()
				convey.So(snap, convey.ShouldHaveLength, 3)
				convey.So(snap[0].Dots, convey.ShouldEqual, 3)
				convey.So(snap[2].Dots, convey.ShouldEqual, 5)
			})
		})

		convey.Convey("When events span a time window", func() {
			now := time.Now()
			r.Append(model.ActivityEvent{At: now.Add(-2 * time.Minute)})
			r.Append(model.ActivityEvent{At: now.Add(-30 * time.Second)})
			r.Append(model.ActivityEvent{At: now})

			convey.Convey("Then CountSince only counts recent events", func() {
				convey.So(r.CountSince(now.Add(-time.Minute)), convey.ShouldEqual, 2)
			})
		})
	})

	convey.Convey("Given a non-positive capacity", t, func() {
		r := NewRing(0)
		r.Append(model.ActivityEvent{Dots: 9})

		convey.Convey("Then the ring still holds one event", func() {
			convey.So(r.Len(), convey.ShouldEqual, 1)
		})
	})
}
