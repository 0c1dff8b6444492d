// Package cache stores computed stats tables keyed by the filter that
// produced them.
package cache

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/okian/pmv/internal/domain/model"
)

// Sentinel kinds for cache errors.
var (
	ErrCacheUnavailable = errors.New("stats cache unavailable")
	ErrInvalidURL       = errors.New("invalid cache url")
)

// StatsCache is a read-through cache for derived tables.
//
// Entries belong to a generation. Invalidate starts a new one and is called
// after each write to the event log commits. Callers read the generation
// before querying the store and pass it to both Get and Set, so an entry
// computed before a write is retired by that write's bump.
//
// Between a commit and its bump, readers may still be served the previous
// table. If the bump fails, that table is served until its TTL expires.
type StatsCache interface {
	// Generation returns the current generation.
	Generation(ctx context.Context) (int64, error)
	// Get decodes the entry for key into dst and reports whether it existed.
	Get(ctx context.Context, gen int64, key string, dst any) (bool, error)
	// Set stores v under key.
	Set(ctx context.Context, gen int64, key string, v any) error
	// Invalidate retires every stored entry.
	Invalidate(ctx context.Context) error
	Close() error
}

// Key renders a resolved filter as a cache key. The Latest selector must
// already be resolved, otherwise a cached "latest" table would outlive the
// session it was computed for.
func Key(kind string, f model.EventFilter) string {
	var b strings.Builder
	b.WriteString(kind)

	b.WriteString("|g=")
	ids := slices.Clone(f.GameIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	for i, id := range ids {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(id, 10))
	}

	b.WriteString("|s=")
	if f.Start != nil {
		b.WriteString(f.Start.UTC().Format(time.RFC3339Nano))
	}
	b.WriteString("|e=")
	if f.End != nil {
		b.WriteString(f.End.UTC().Format(time.RFC3339Nano))
	}
	if f.Latest {
		b.WriteString("|latest")
	}
	return b.String()
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrCacheUnavailable, err)
}
