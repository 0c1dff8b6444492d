package repository

import (
	"errors"
	"fmt"
)

// Sentinel kinds for storage errors.
var (
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrGameNotFound       = errors.New("game not found")
	ErrNotConfigured      = errors.New("storage is not configured")
)

// unavailable tags an I/O failure of op with ErrStorageUnavailable.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}
