package api

import "net/http"

// LiveHandler upgrades viewers onto the websocket hub.
type LiveHandler struct {
	deps Dependencies
}

// NewLiveHandler creates a new live handler.
func NewLiveHandler(deps Dependencies) *LiveHandler {
	return &LiveHandler{deps: deps}
}

// HandleLive handles GET /live websocket upgrade requests.
func (h *LiveHandler) HandleLive(w http.ResponseWriter, r *http.Request) {
	hub := h.deps.Hub()
	if hub == nil {
		writeError(w, http.StatusServiceUnavailable, "hub_unavailable", nil)
		return
	}
	hub.ServeWS(w, r)
}
