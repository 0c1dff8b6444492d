// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	service "github.com/okian/pmv/internal/app"
	"github.com/okian/pmv/internal/domain/model"
	"github.com/okian/pmv/internal/domain/stats"
	"github.com/okian/pmv/pkg/logger"
	"github.com/okian/pmv/pkg/metrics"
)

// PlayerDependencies exposes the player registry.
type PlayerDependencies interface {
	AddPlayer(ctx context.Context, name string) (int64, error)
	ListPlayers(ctx context.Context) ([]string, error)
}

// GameDependencies exposes game sessions.
type GameDependencies interface {
	StartNewGame(ctx context.Context) (int64, error)
	CurrentGameID(ctx context.Context) (int64, bool, error)
	ListGames(ctx context.Context) ([]model.Game, error)
}

// EventDependencies exposes the event log.
type EventDependencies interface {
	InsertEvent(ctx context.Context, in service.EventInput) (model.Event, bool, error)
	QueryEvents(ctx context.Context, f model.EventFilter) ([]model.Event, error)
}

// StatsDependencies exposes the derived tables.
type StatsDependencies interface {
	PlayerStats(ctx context.Context, f model.EventFilter) (service.StatsResult, error)
	Breakdown(ctx context.Context, f model.EventFilter) (stats.ActionBreakdown, error)
}

// StatusProvider defines the interface for getting service statistics.
type StatusProvider interface {
	GetStats(ctx context.Context) map[string]any
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	PlayerDependencies
	GameDependencies
	EventDependencies
	StatsDependencies
	StatusProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statusHandler  *StatusHandler
	playersHandler *PlayersHandler
	gamesHandler   *GamesHandler
	eventsHandler  *EventsHandler
	statsHandler   *StatsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statusHandler:  NewStatusHandler(deps),
		playersHandler: NewPlayersHandler(deps),
		gamesHandler:   NewGamesHandler(deps),
		eventsHandler:  NewEventsHandler(deps),
		statsHandler:   NewStatsHandler(deps),
	}
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(MetricsMiddleware)

		r.Get("/healthz", s.healthHandler.HandleHealth)
		r.Get("/status", s.statusHandler.HandleStatus)

		r.Route("/players", func(r chi.Router) {
			r.Get("/", s.playersHandler.HandleList)
			r.Post("/", s.playersHandler.HandleAdd)
		})

		r.Route("/games", func(r chi.Router) {
			r.Get("/", s.gamesHandler.HandleList)
			r.Post("/", s.gamesHandler.HandleStart)
			r.Get("/current", s.gamesHandler.HandleCurrent)
		})

		r.Get("/events", s.eventsHandler.HandleList)
		r.Post("/events", s.eventsHandler.HandlePost)
		r.Get("/events.csv", s.eventsHandler.HandleCSV)

		r.Get("/stats", s.statsHandler.HandleStats)
		r.Get("/stats/breakdown", s.statsHandler.HandleBreakdown)
	})
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

// writeFailure classifies err, logs server-side failures and writes the
// error body.
func writeFailure(ctx context.Context, w http.ResponseWriter, op string, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		logger.Get().Named("api").Error(ctx, "request failed",
			logger.String("op", op),
			logger.String("code", code),
			logger.Error(err),
		)
		metrics.RecordErrorByComponent("api", code)
	}
	writeError(w, status, code, err)
}
