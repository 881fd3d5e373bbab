package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	service "github.com/irongraph/irongraph/internal/app"
	"github.com/irongraph/irongraph/internal/domain/model"
	"github.com/irongraph/irongraph/internal/domain/types"
)

// analyticsRequest mirrors the wire schema for POST /analytics.
type analyticsRequest struct {
	Sex             string            `json:"sex,omitempty"`
	Equipment       []string          `json:"equipment,omitempty"`
	WeightClass     string            `json:"weight_class,omitempty"`
	MinBodyweightKg float64           `json:"min_bodyweight_kg,omitempty"`
	MaxBodyweightKg float64           `json:"max_bodyweight_kg,omitempty"`
	Federation      string            `json:"federation,omitempty"`
	Period          string            `json:"period,omitempty"`
	Year            int               `json:"year,omitempty"`
	Reference       *referencePayload `json:"reference,omitempty"`
	Format          string            `json:"format,omitempty"`
}

type referencePayload struct {
	Sex          string  `json:"sex"`
	BodyweightKg float64 `json:"bodyweight_kg"`
	SquatKg      float64 `json:"squat_kg"`
	BenchKg      float64 `json:"bench_kg"`
	DeadliftKg   float64 `json:"deadlift_kg"`
}

// toModel validates the wire request and converts it to the typed form
// the pipeline accepts. Every label is resolved here so the core never
// sees an unvalidated string.
func (a analyticsRequest) toModel() (model.AnalyticsRequest, error) {
	var out model.AnalyticsRequest

	if a.Sex != "" {
		sex, err := types.ParseSex(a.Sex)
		if err != nil {
			return out, err
		}
		out.Filter.Sex = &sex
	}
	for _, label := range a.Equipment {
		eq, err := types.ParseEquipment(label)
		if err != nil {
			return out, err
		}
		out.Filter.Equipment = append(out.Filter.Equipment, eq)
	}
	period, err := types.ParseTimePeriod(a.Period)
	if err != nil {
		return out, err
	}
	if period == types.CalendarYear && a.Year <= 0 {
		return out, errors.New("calendar-year period requires a year")
	}
	if a.MinBodyweightKg < 0 || a.MaxBodyweightKg < 0 {
		return out, errors.New("bodyweight bounds must be non-negative")
	}
	if a.MaxBodyweightKg > 0 && a.MinBodyweightKg > a.MaxBodyweightKg {
		return out, errors.New("min_bodyweight_kg exceeds max_bodyweight_kg")
	}

	out.Filter.WeightClass = strings.TrimSpace(a.WeightClass)
	out.Filter.MinBodyweightKg = a.MinBodyweightKg
	out.Filter.MaxBodyweightKg = a.MaxBodyweightKg
	out.Filter.Federation = strings.TrimSpace(a.Federation)
	out.Filter.Period = period
	out.Filter.Year = a.Year

	if a.Reference != nil {
		sex, err := types.ParseSex(a.Reference.Sex)
		if err != nil {
			return out, fmt.Errorf("reference: %w", err)
		}
		if a.Reference.BodyweightKg <= 0 {
			return out, errors.New("reference: bodyweight must be positive")
		}
		out.Reference = &model.Reference{
			Sex:          sex,
			BodyweightKg: a.Reference.BodyweightKg,
			SquatKg:      a.Reference.SquatKg,
			BenchKg:      a.Reference.BenchKg,
			DeadliftKg:   a.Reference.DeadliftKg,
		}
	}

	out.Format = a.Format
	return out, nil
}

// AnalyticsHandler handles analytics computation requests.
type AnalyticsHandler struct {
	deps Dependencies
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(deps Dependencies) *AnalyticsHandler {
	return &AnalyticsHandler{deps: deps}
}

// HandleAnalytics handles POST /analytics requests.
func (h *AnalyticsHandler) HandleAnalytics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	var wire analyticsRequest
	if err := json.NewDecoder(r.Body).Decode(&wire); err != nil {
		writeError(w, http.StatusBadRequest, "malformed_body", err)
		return
	}
	req, err := wire.toModel()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err)
		return
	}

	payload, contentType, cached, err := h.deps.Analytics(r.Context(), req)
	switch {
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, "invalid_request", err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "computation_failed", err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	if cached {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	_, _ = w.Write(payload)
}
