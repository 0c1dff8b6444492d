package api

import (
	"net/http"

	"github.com/okian/pmv/internal/domain/stats"
)

// StatsHandler serves the derived per-player tables.
type StatsHandler struct {
	deps StatsDependencies
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(deps StatsDependencies) *StatsHandler {
	return &StatsHandler{deps: deps}
}

type statsResponse struct {
	GameIDs []int64             `json:"game_ids"`
	Players []stats.PlayerStats `json:"players"`
}

// HandleStats handles GET /stats. game_ids echoes the sessions the table
// covers after resolving latest=true; it is empty when no game filter applied.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	const op = "api.stats"
	f, err := parseFilter(r)
	if err != nil {
		writeFailure(r.Context(), w, op, err)
		return
	}
	res, err := h.deps.PlayerStats(r.Context(), f)
	if err != nil {
		writeFailure(r.Context(), w, op, err)
		return
	}
	ids := res.Filter.GameIDs
	if ids == nil {
		ids = []int64{}
	}
	writeJSON(w, http.StatusOK, statsResponse{GameIDs: ids, Players: res.Rows})
}

// HandleBreakdown handles GET /stats/breakdown.
func (h *StatsHandler) HandleBreakdown(w http.ResponseWriter, r *http.Request) {
	const op = "api.breakdown"
	f, err := parseFilter(r)
	if err != nil {
		writeFailure(r.Context(), w, op, err)
		return
	}
	b, err := h.deps.Breakdown(r.Context(), f)
	if err != nil {
		writeFailure(r.Context(), w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}
