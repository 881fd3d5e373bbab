package api

import "net/http"

// FederationsHandler lists the federations present in the table.
type FederationsHandler struct {
	deps Dependencies
}

// NewFederationsHandler creates a new federations handler.
func NewFederationsHandler(deps Dependencies) *FederationsHandler {
	return &FederationsHandler{deps: deps}
}

// HandleFederations handles GET /federations requests.
func (h *FederationsHandler) HandleFederations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"federations": h.deps.Federations(r.Context()),
	})
}

// ArchiveHandler serves rollups from the analytical archive.
type ArchiveHandler struct {
	deps Dependencies
}

// NewArchiveHandler creates a new archive handler.
func NewArchiveHandler(deps Dependencies) *ArchiveHandler {
	return &ArchiveHandler{deps: deps}
}

// HandleSummary handles GET /archive/summary requests.
func (h *ArchiveHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	feds, years, err := h.deps.ArchiveSummary(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "archive_unavailable", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"by_federation": feds,
		"by_year":       years,
	})
}
