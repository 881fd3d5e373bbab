// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/irongraph/irongraph/internal/adapters/hub"
	"github.com/irongraph/irongraph/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Analytics runs the computation pipeline and returns the encoded
	// payload, its content type, and whether it came from the cache.
	Analytics(ctx context.Context, req model.AnalyticsRequest) ([]byte, string, bool, error)

	// Federations lists the distinct federation names in the table.
	Federations(ctx context.Context) []string

	// ArchiveSummary returns archived rollups per federation and year.
	ArchiveSummary(ctx context.Context) (map[string]uint64, map[int]uint64, error)

	// Hub exposes the live websocket hub.
	Hub() *hub.Hub
}

// Server wires HTTP routes for the analytics API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	analyticsHandler   *AnalyticsHandler
	liveHandler        *LiveHandler
	federationsHandler *FederationsHandler
	archiveHandler     *ArchiveHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		analyticsHandler:   NewAnalyticsHandler(deps),
		liveHandler:        NewLiveHandler(deps),
		federationsHandler: NewFederationsHandler(deps),
		archiveHandler:     NewArchiveHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/analytics", MetricsMiddleware(s.analyticsHandler.HandleAnalytics, "analytics"))
	mux.HandleFunc("/federations", MetricsMiddleware(s.federationsHandler.HandleFederations, "federations"))
	mux.HandleFunc("/archive/summary", MetricsMiddleware(s.archiveHandler.HandleSummary, "archive_summary"))
	mux.HandleFunc("/live", s.liveHandler.HandleLive)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
