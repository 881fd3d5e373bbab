package service_test

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"testing"
	"time"

	service "github.com/irongraph/irongraph/internal/app"
	"github.com/irongraph/irongraph/internal/domain/model"
	"github.com/irongraph/irongraph/internal/domain/scoring"
	"github.com/irongraph/irongraph/internal/domain/types"
	"github.com/smartystreets/goconvey/convey"
)

func newTestService(t *testing.T) *service.Service {
	t.Helper()
	svc := service.New(
		service.WithSimulateRecords(2_000),
		service.WithCacheTTL(time.Minute),
		service.WithHistogramBins(10),
		service.WithScatterMaxPoints(100),
		service.WithBroadcastInterval(time.Hour),
	)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

type jsonResponse struct {
	RecordCount int            `json:"record_count"`
	Histogram   []model.Bin    `json:"histogram"`
	Scatter     []model.Point  `json:"scatter"`
	Percentiles map[string]int `json:"percentiles"`
	DurationMs  float64        `json:"duration_ms"`
}

func TestService_Analytics(t *testing.T) {
	convey.Convey("Given a started service", t, func() {
		svc := newTestService(t)
		ctx := context.Background()

		convey.Convey("When requesting unfiltered JSON analytics", func() {
			payload, contentType, cached, err := svc.Analytics(ctx, model.AnalyticsRequest{Format: "json"})

			convey.Convey("Then the payload summarizes the whole table", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cached, convey.ShouldBeFalse)
				convey.So(contentType, convey.ShouldEqual, "application/json")

				var resp jsonResponse
				convey.So(json.Unmarshal(payload, &resp), convey.ShouldBeNil)
				convey.So(resp.RecordCount, convey.ShouldEqual, 2_000)
				convey.So(len(resp.Histogram), convey.ShouldEqual, 10)
				convey.So(len(resp.Scatter), convey.ShouldEqual, 100)
				convey.So(resp.Percentiles, convey.ShouldBeNil)
			})

			convey.Convey("Then an identical request is served from the cache", func() {
				again, _, cachedAgain, err := svc.Analytics(ctx, model.AnalyticsRequest{Format: "json"})
				convey.So(err, convey.ShouldBeNil)
				convey.So(cachedAgain, convey.ShouldBeTrue)
				convey.So(string(again), convey.ShouldEqual, string(payload))
			})
		})

		convey.Convey("When filtering by sex and equipment", func() {
			male := types.Male
			req := model.AnalyticsRequest{
				Filter: model.FilterRequest{
					Sex:       &male,
					Equipment: []types.Equipment{types.Raw},
				},
				Format: "json",
			}

			payload, _, _, err := svc.Analytics(ctx, req)

			convey.Convey("Then only matching records are counted", func() {
				convey.So(err, convey.ShouldBeNil)

				var resp jsonResponse
				convey.So(json.Unmarshal(payload, &resp), convey.ShouldBeNil)
				convey.So(resp.RecordCount, convey.ShouldBeGreaterThan, 0)
				convey.So(resp.RecordCount, convey.ShouldBeLessThan, 2_000)
			})
		})

		convey.Convey("When a reference lifter is supplied", func() {
			req := model.AnalyticsRequest{
				Reference: &model.Reference{
					Sex:          types.Male,
					BodyweightKg: 93,
					SquatKg:      220,
					BenchKg:      140,
					DeadliftKg:   260,
				},
				Format: "json",
			}

			payload, _, _, err := svc.Analytics(ctx, req)

			convey.Convey("Then percentile ranks are reported as integers", func() {
				convey.So(err, convey.ShouldBeNil)

				var resp jsonResponse
				convey.So(json.Unmarshal(payload, &resp), convey.ShouldBeNil)
				for _, key := range []string{"squat", "bench", "deadlift", "total", "dots"} {
					pct, ok := resp.Percentiles[key]
					convey.So(ok, convey.ShouldBeTrue)
					convey.So(pct, convey.ShouldBeBetweenOrEqual, 0, 100)
				}
			})

			convey.Convey("Then the calculation lands in the activity feed", func() {
				deadline := time.Now().Add(2 * time.Second)
				for len(svc.Hub().Feed()) == 0 && time.Now().Before(deadline) {
					time.Sleep(5 * time.Millisecond)
				}
				feed := svc.Hub().Feed()
				convey.So(len(feed), convey.ShouldBeGreaterThan, 0)
				convey.So(feed[len(feed)-1].Tier, convey.ShouldNotBeEmpty)
			})
		})

		convey.Convey("When the reference lifter cannot be scored", func() {
			// Passes the API's positivity check but sits below the
			// scoring coefficients' bodyweight floor.
			req := model.AnalyticsRequest{
				Reference: &model.Reference{
					Sex:          types.Male,
					BodyweightKg: 10,
					SquatKg:      100,
				},
				Format: "json",
			}

			payload, _, _, err := svc.Analytics(ctx, req)

			convey.Convey("Then the request still succeeds", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(payload, convey.ShouldNotBeEmpty)
			})

			convey.Convey("Then no invalid score enters the activity feed", func() {
				time.Sleep(50 * time.Millisecond)
				for _, e := range svc.Hub().Feed() {
					convey.So(scoring.Valid(e.Dots), convey.ShouldBeTrue)
				}
			})
		})

		convey.Convey("When requesting the columnar format", func() {
			payload, contentType, _, err := svc.Analytics(ctx, model.AnalyticsRequest{Format: "columnar-binary"})

			convey.Convey("Then the payload carries the binary header", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(contentType, convey.ShouldEqual, "application/octet-stream")
				convey.So(len(payload), convey.ShouldBeGreaterThan, 13)
				convey.So(string(payload[:4]), convey.ShouldEqual, "IGCB")
				convey.So(payload[4], convey.ShouldEqual, 1)
				convey.So(binary.LittleEndian.Uint32(payload[5:9]), convey.ShouldEqual, 2_000)
			})

			convey.Convey("Then it caches independently of the JSON format", func() {
				jsonPayload, _, _, err := svc.Analytics(ctx, model.AnalyticsRequest{Format: "json"})
				convey.So(err, convey.ShouldBeNil)
				convey.So(string(jsonPayload), convey.ShouldNotEqual, string(payload))
			})
		})

		convey.Convey("When the format is unknown", func() {
			_, _, _, err := svc.Analytics(ctx, model.AnalyticsRequest{Format: "xml"})

			convey.Convey("Then the request is rejected", func() {
				convey.So(err, convey.ShouldWrap, service.ErrValidation)
			})
		})
	})
}

func TestService_Stats(t *testing.T) {
	convey.Convey("Given a started service", t, func() {
		svc := newTestService(t)

		convey.Convey("Then stats report the running state", func() {
			stats := svc.GetStats()
			convey.So(stats["status"], convey.ShouldEqual, "running")
			convey.So(stats["table_records"], convey.ShouldEqual, 2_000)
			convey.So(stats["active_sessions"], convey.ShouldEqual, 0)
		})

		convey.Convey("Then federations are listed", func() {
			feds := svc.Federations(context.Background())
			convey.So(len(feds), convey.ShouldBeGreaterThan, 3)
		})
	})

	convey.Convey("Given a stopped service", t, func() {
		svc := service.New(service.WithSimulateRecords(10))

		convey.Convey("Then stats report it stopped", func() {
			convey.So(svc.GetStats()["status"], convey.ShouldEqual, "stopped")
		})
	})
}
