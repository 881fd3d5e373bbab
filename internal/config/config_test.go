package config_test

import (
	"runtime"
	"testing"

	"github.com/irongraph/irongraph/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.CacheTTLSeconds, convey.ShouldEqual, 300)
			convey.So(cfg.CacheMaxEntries, convey.ShouldEqual, 4096)
			convey.So(cfg.ActivityFeedSize, convey.ShouldEqual, 256)
			convey.So(cfg.ActivityQueueSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.BroadcastIntervalSeconds, convey.ShouldEqual, 5)
			convey.So(cfg.IngestWorkers, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.SimulateRecords, convey.ShouldEqual, 50_000)
			convey.So(cfg.HistogramBins, convey.ShouldEqual, 40)
			convey.So(cfg.ScatterMaxPoints, convey.ShouldEqual, 2_000)
		})
	})
}
