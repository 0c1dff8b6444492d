package api

import (
	"net/http"
)

// GamesHandler handles game session requests.
type GamesHandler struct {
	deps GameDependencies
}

// NewGamesHandler creates a new games handler.
func NewGamesHandler(deps GameDependencies) *GamesHandler {
	return &GamesHandler{deps: deps}
}

type gameIDResponse struct {
	ID int64 `json:"id"`
}

// HandleList handles GET /games, newest first.
func (h *GamesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	games, err := h.deps.ListGames(r.Context())
	if err != nil {
		writeFailure(r.Context(), w, "api.list_games", err)
		return
	}
	writeJSON(w, http.StatusOK, games)
}

// HandleStart handles POST /games.
func (h *GamesHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	id, err := h.deps.StartNewGame(r.Context())
	if err != nil {
		writeFailure(r.Context(), w, "api.start_game", err)
		return
	}
	writeJSON(w, http.StatusCreated, gameIDResponse{ID: id})
}

// HandleCurrent handles GET /games/current.
func (h *GamesHandler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	const op = "api.current_game"
	id, ok, err := h.deps.CurrentGameID(r.Context())
	if err != nil {
		writeFailure(r.Context(), w, op, err)
		return
	}
	if !ok {
		writeFailure(r.Context(), w, op, ErrNoGame)
		return
	}
	writeJSON(w, http.StatusOK, gameIDResponse{ID: id})
}
