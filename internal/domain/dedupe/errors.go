package dedupe

import (
	"errors"
)

// Sentinel kinds for dedupe errors.
var (
	// ErrKeyReused is returned when a key is replayed with a different payload.
	ErrKeyReused = errors.New("idempotency key reused with a different payload")
)
