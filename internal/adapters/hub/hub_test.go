package hub

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/irongraph/irongraph/internal/adapters/mq/queue"
	"github.com/irongraph/irongraph/internal/domain/model"
	"github.com/irongraph/irongraph/internal/domain/scoring"
	"github.com/irongraph/irongraph/internal/domain/types"
	"github.com/irongraph/irongraph/pkg/metrics"
	"github.com/smartystreets/goconvey/convey"
)

func TestHub_FoldsEventsIntoFeed(t *testing.T) {
	convey.Convey("Given a running hub", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		h := New(q, WithFeedSize(4), WithBroadcastInterval(time.Hour))
		defer func() { _ = h.Close() }()

		go h.Run(ctx)

		convey.Convey("When activity events are published", func() {
			now := time.Now().UTC()
			for i := 0; i < 6; i++ {
				ok := h.Publish(ctx, model.ActivityEvent{
					Dots: float64(100 + i),
					Tier: "Intermediate",
					Lift: types.Total,
					At:   now,
				})
				convey.So(ok, convey.ShouldBeTrue)
			}

			// Wait for the hub goroutine to drain the queue.
			deadline := time.Now().Add(2 * time.Second)
			for h.ring.Len() < 4 && time.Now().Before(deadline) {
				time.Sleep(5 * time.Millisecond)
			}

			convey.Convey("Then the feed keeps only the newest events", func() {
				feed := h.Feed()
				convey.So(feed, convey.ShouldHaveLength, 4)
				convey.So(feed[0].Dots, convey.ShouldEqual, 102)
				convey.So(feed[3].Dots, convey.ShouldEqual, 105)
			})

			convey.Convey("Then stats reflect the recent activity", func() {
				stats := h.Stats()
				convey.So(stats.ActiveSessions, convey.ShouldEqual, 0)
				convey.So(stats.RecentEventCount, convey.ShouldEqual, 4)
				convey.So(stats.LoadMetric, convey.ShouldAlmostEqual, 4.0/60.0, 1e-9)
			})
		})
	})
}

func TestHub_StalledSessionIsDropped(t *testing.T) {
	convey.Convey("Given a hub with a session whose buffer is full", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(4))
		h := New(q, WithFeedSize(4))
		defer func() { _ = h.Close() }()

		s := &Session{
			id:     "stalled",
			send:   make(chan ServerMessage), // unbuffered, nobody reads
			hub:    h,
			closed: make(chan struct{}),
		}
		h.roster.Store(s.id, s)

		convey.Convey("When broadcasting", func() {
			h.broadcast(context.Background(), ServerMessage{Type: "stats", Payload: h.Stats()})

			convey.Convey("Then the session is removed from the roster", func() {
				convey.So(h.Sessions(), convey.ShouldEqual, 0)
			})
		})
	})
}

func TestScoreUpdate(t *testing.T) {
	convey.Convey("Given viewer updates", t, func() {
		convey.Convey("When the update is valid", func() {
			e, err := scoreUpdate(clientMessage{
				Sex:          "M",
				BodyweightKg: 100,
				SquatKg:      250,
				BenchKg:      160,
				DeadliftKg:   290,
				Lift:         "total",
			})

			convey.Convey("Then it is scored on the summed total", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(e.Lift, convey.ShouldEqual, types.Total)
				convey.So(e.Dots, convey.ShouldAlmostEqual,
					scoring.Dots(700, 100, types.Male), 1e-9)
				convey.So(e.Tier, convey.ShouldNotBeEmpty)
				convey.So(e.At.IsZero(), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When a single lift is selected", func() {
			e, err := scoreUpdate(clientMessage{
				Sex:          "F",
				BodyweightKg: 63,
				SquatKg:      140,
				Lift:         "squat",
			})

			convey.Convey("Then only that lift is scored", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(e.Dots, convey.ShouldAlmostEqual,
					scoring.Dots(140, 63, types.Female), 1e-9)
			})
		})

		convey.Convey("When the bodyweight is below the scoreable range", func() {
			_, err := scoreUpdate(clientMessage{
				Sex:          "M",
				BodyweightKg: 10,
				SquatKg:      100,
				Lift:         "squat",
			})

			convey.Convey("Then the update is rejected instead of scored NaN", func() {
				convey.So(errors.Is(err, ErrUnscoreable), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the selected lift is zero", func() {
			_, err := scoreUpdate(clientMessage{
				Sex:          "F",
				BodyweightKg: 63,
				Lift:         "bench",
			})

			convey.So(errors.Is(err, ErrUnscoreable), convey.ShouldBeTrue)
		})

		convey.Convey("When a rejected update would have entered the feed", func() {
			e, err := scoreUpdate(clientMessage{
				Sex:          "M",
				BodyweightKg: 10,
				SquatKg:      100,
				Lift:         "squat",
			})

			convey.Convey("Then every accepted event stays JSON-encodable", func() {
				convey.So(err, convey.ShouldNotBeNil)
				_, marshalErr := json.Marshal(ServerMessage{Type: "activity", Payload: e})
				convey.So(marshalErr, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the sex label is unknown", func() {
			_, err := scoreUpdate(clientMessage{Sex: "X", Lift: "total"})
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("When the lift label is unknown", func() {
			_, err := scoreUpdate(clientMessage{Sex: "M", Lift: "curl"})
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

// broadcastsSent reads the delivered-broadcast counter off the registry.
func broadcastsSent() float64 {
	families, err := metrics.GetRegistry().Gather()
	if err != nil {
		return -1
	}
	for _, mf := range families {
		if mf.GetName() == "irongraph_analytics_broadcasts_sent_total" {
			return mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	return 0
}

func TestHub_BroadcastCountsDeliveries(t *testing.T) {
	convey.Convey("Given a hub", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(4))
		h := New(q, WithFeedSize(4))
		defer func() { _ = h.Close() }()

		convey.Convey("When broadcasting to an empty roster", func() {
			before := broadcastsSent()
			h.broadcast(context.Background(), ServerMessage{Type: "stats", Payload: h.Stats()})

			convey.Convey("Then no delivery is counted", func() {
				convey.So(broadcastsSent(), convey.ShouldEqual, before)
			})
		})

		convey.Convey("When every session is stalled", func() {
			s := &Session{
				id:     "stalled",
				send:   make(chan ServerMessage), // unbuffered, nobody reads
				hub:    h,
				closed: make(chan struct{}),
			}
			h.roster.Store(s.id, s)

			before := broadcastsSent()
			h.broadcast(context.Background(), ServerMessage{Type: "stats", Payload: h.Stats()})

			convey.Convey("Then no delivery is counted either", func() {
				convey.So(broadcastsSent(), convey.ShouldEqual, before)
			})
		})

		convey.Convey("When a session accepts the message", func() {
			s := &Session{
				id:     "live",
				send:   make(chan ServerMessage, 1),
				hub:    h,
				closed: make(chan struct{}),
			}
			h.roster.Store(s.id, s)

			before := broadcastsSent()
			h.broadcast(context.Background(), ServerMessage{Type: "stats", Payload: h.Stats()})

			convey.Convey("Then the delivery is counted once", func() {
				convey.So(broadcastsSent(), convey.ShouldEqual, before+1)
			})
		})
	})
}
