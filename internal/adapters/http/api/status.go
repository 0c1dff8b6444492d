package api

import (
	"net/http"
)

// StatusHandler handles service status requests.
type StatusHandler struct {
	statusProvider StatusProvider
}

// NewStatusHandler creates a new status handler.
func NewStatusHandler(statusProvider StatusProvider) *StatusHandler {
	return &StatusHandler{statusProvider: statusProvider}
}

// HandleStatus handles GET /status requests.
func (h *StatusHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.statusProvider.GetStats(r.Context()))
}
