package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/irongraph/irongraph/internal/adapters/engine"
	"github.com/irongraph/irongraph/internal/adapters/http/api"
	service "github.com/irongraph/irongraph/internal/app"
	"github.com/irongraph/irongraph/internal/config"
	"github.com/irongraph/irongraph/pkg/logger"
	"github.com/irongraph/irongraph/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// The custom registry carries its own system gauges; the default
	// collectors would duplicate them.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			logger.Get().Error(context.Background(), "logger sync failed", logger.Error(err))
		}
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env).
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input).
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	opts := []service.Option{
		service.WithLogger(log),
		service.WithCacheTTL(time.Duration(cfg.CacheTTLSeconds) * time.Second),
		service.WithCacheMaxEntries(cfg.CacheMaxEntries),
		service.WithCacheSweepInterval(time.Duration(cfg.CacheSweepSeconds) * time.Second),
		service.WithFeedSize(cfg.ActivityFeedSize),
		service.WithQueueSize(cfg.ActivityQueueSize),
		service.WithBroadcastInterval(time.Duration(cfg.BroadcastIntervalSeconds) * time.Second),
		service.WithIngestWorkers(cfg.IngestWorkers),
		service.WithHistogramBins(cfg.HistogramBins),
		service.WithScatterMaxPoints(cfg.ScatterMaxPoints),
		service.WithDatasetPath(cfg.DatasetPath),
		service.WithSimulateRecords(cfg.SimulateRecords),
	}

	// The analytical engine is optional; the service runs on the
	// in-memory table alone when no address is configured.
	if cfg.EngineAddr != "" {
		archiver, err := engine.NewClickHouseArchiver(ctx, engine.ClickHouseConfig{
			Addr:     cfg.EngineAddr,
			Database: cfg.EngineDatabase,
			Username: cfg.EngineUsername,
			Password: cfg.EnginePassword,
			Timeout:  time.Duration(cfg.EngineTimeoutSeconds) * time.Second,
		})
		if err != nil {
			log.Warn(ctx, "analytical engine unreachable; continuing without archive", logger.String("addr", cfg.EngineAddr), logger.Error(err))
		} else {
			opts = append(opts, service.WithArchiver(archiver))
		}
	}

	svc := service.New(opts...)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)

	mux := http.NewServeMux()
	apiServer := api.NewServer(svc, svc)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// startSystemMetricsUpdater refreshes process-level gauges on a ticker.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
