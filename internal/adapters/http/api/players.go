package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/okian/pmv/internal/domain/model"
)

// PlayersHandler handles player registry requests.
type PlayersHandler struct {
	deps PlayerDependencies
}

// NewPlayersHandler creates a new players handler.
func NewPlayersHandler(deps PlayerDependencies) *PlayersHandler {
	return &PlayersHandler{deps: deps}
}

type addPlayerRequest struct {
	Name string `json:"name"`
}

type playerResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// HandleList handles GET /players.
func (h *PlayersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	names, err := h.deps.ListPlayers(r.Context())
	if err != nil {
		writeFailure(r.Context(), w, "api.list_players", err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

// HandleAdd handles POST /players. Adding an existing name returns its id.
func (h *PlayersHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	const op = "api.add_player"
	var req addPlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(r.Context(), w, op, fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	name, err := model.NormalizePlayerName(req.Name)
	if err != nil {
		writeFailure(r.Context(), w, op, err)
		return
	}
	id, err := h.deps.AddPlayer(r.Context(), name)
	if err != nil {
		writeFailure(r.Context(), w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, playerResponse{ID: id, Name: name})
}
