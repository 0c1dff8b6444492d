package api

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	service "github.com/okian/pmv/internal/app"
	"github.com/okian/pmv/internal/domain/model"
	"github.com/okian/pmv/pkg/logger"
	"github.com/okian/pmv/pkg/metrics"
)

// Idempotency headers.
const (
	headerIdempotencyKey = "Idempotency-Key"
	headerReplayed       = "Idempotent-Replayed"
)

const csvTimeLayout = "2006-01-02T15:04:05.000000Z"

// EventsHandler handles event requests.
type EventsHandler struct {
	deps EventDependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps EventDependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

// eventRequest mirrors the OpenAPI schema for POST /events.
type eventRequest struct {
	Player string `json:"player"`
	Action string `json:"action"`
	GameID *int64 `json:"game_id,omitempty"`
}

func (e eventRequest) toInput(key string) (service.EventInput, error) {
	player, err := model.NormalizePlayerName(e.Player)
	if err != nil {
		return service.EventInput{}, err
	}
	action, err := model.ParseAction(e.Action)
	if err != nil {
		return service.EventInput{}, err
	}
	return service.EventInput{
		Player:         player,
		Action:         action,
		GameID:         e.GameID,
		IdempotencyKey: strings.TrimSpace(key),
	}, nil
}

// HandlePost handles POST /events.
func (h *EventsHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_event"
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(r.Context(), w, op, fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	in, err := req.toInput(r.Header.Get(headerIdempotencyKey))
	if err != nil {
		writeFailure(r.Context(), w, op, err)
		return
	}

	ev, replayed, err := h.deps.InsertEvent(r.Context(), in)
	if err != nil {
		writeFailure(r.Context(), w, op, err)
		return
	}
	if replayed {
		w.Header().Set(headerReplayed, "true")
		writeJSON(w, http.StatusOK, ev)
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}

// HandleList handles GET /events.
func (h *EventsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_events"
	f, err := parseFilter(r)
	if err != nil {
		writeFailure(r.Context(), w, op, err)
		return
	}
	events, err := h.deps.QueryEvents(r.Context(), f)
	if err != nil {
		writeFailure(r.Context(), w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// HandleCSV handles GET /events.csv with the same filters as /events.
func (h *EventsHandler) HandleCSV(w http.ResponseWriter, r *http.Request) {
	const op = "api.export_events"
	f, err := parseFilter(r)
	if err != nil {
		writeFailure(r.Context(), w, op, err)
		return
	}
	events, err := h.deps.QueryEvents(r.Context(), f)
	if err != nil {
		writeFailure(r.Context(), w, op, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="pmv_events.csv"`)
	w.WriteHeader(http.StatusOK)

	if err := writeEventsCSV(w, events); err != nil {
		// Headers are already sent; the client sees a truncated file.
		logger.Get().Named("api").Warn(r.Context(), "csv export interrupted",
			logger.String("op", op),
			logger.Int("events", len(events)),
			logger.Error(err),
		)
		metrics.RecordErrorByComponent("api", "csv_export")
	}
}

// writeEventsCSV writes a header row and one record per event.
func writeEventsCSV(w io.Writer, events []model.Event) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "game_id", "player", "action", "created_at"}); err != nil {
		return err
	}
	for _, e := range events {
		gameID := ""
		if e.GameID != nil {
			gameID = strconv.FormatInt(*e.GameID, 10)
		}
		if err := cw.Write([]string{
			strconv.FormatInt(e.ID, 10),
			gameID,
			e.Player,
			string(e.Action),
			e.CreatedAt.UTC().Format(csvTimeLayout),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
