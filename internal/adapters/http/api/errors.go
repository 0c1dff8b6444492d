package api

import (
	"errors"
	"net/http"

	service "github.com/okian/pmv/internal/app"
	repository "github.com/okian/pmv/internal/adapters/repository"
	"github.com/okian/pmv/internal/domain/dedupe"
	"github.com/okian/pmv/internal/domain/model"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrNoGame     = errors.New("no game session exists")
)

// Error codes returned in errorResponse.Code.
const (
	codeBadRequest    = "bad_request"
	codeInvalidInput  = "invalid_input"
	codeInvalidAction = "invalid_action"
	codeGameNotFound  = "game_not_found"
	codeNoGame        = "no_game"
	codeKeyReused     = "idempotency_key_reused"
	codeUnavailable   = "storage_unavailable"
	codeNotStarted    = "not_started"
	codeInternalError = "internal_error"
)

// classify maps a domain error to an HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, codeBadRequest
	case errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest, codeInvalidInput
	case errors.Is(err, model.ErrInvalidAction):
		return http.StatusBadRequest, codeInvalidAction
	case errors.Is(err, repository.ErrGameNotFound):
		return http.StatusNotFound, codeGameNotFound
	case errors.Is(err, ErrNoGame):
		return http.StatusNotFound, codeNoGame
	case errors.Is(err, dedupe.ErrKeyReused):
		return http.StatusUnprocessableEntity, codeKeyReused
	case errors.Is(err, repository.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, codeUnavailable
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, codeNotStarted
	default:
		return http.StatusInternalServerError, codeInternalError
	}
}
