// Package dedupe makes retried writes idempotent by remembering the result
// produced for each client-supplied key.
package dedupe

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

const defaultMaxSize = 10_000

type entry[V any] struct {
	fingerprint string
	value       V
}

// outcome is what one singleflight execution hands to every waiting caller.
type outcome[V any] struct {
	entry entry[V]
	fresh bool // fn ran in this execution
}

// Deduper remembers the outcome of successful writes by key.
//
// Concurrent calls with the same key run fn once and share its result. Failed
// calls are not remembered, so a client may retry them with the same key.
type Deduper[V any] struct {
	mu      sync.RWMutex
	seen    map[string]entry[V]
	order   []string // FIFO ring of remembered keys, bounded mode only
	next    int
	maxSize int
	flight  singleflight.Group
}

// New creates an in-memory deduper.
func New[V any](opts ...Option) *Deduper[V] {
	s := settings{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(&s)
	}
	d := &Deduper[V]{
		seen:    make(map[string]entry[V]),
		maxSize: s.maxSize,
	}
	if d.maxSize > 0 {
		d.order = make([]string, 0, d.maxSize)
	}
	return d
}

// Do returns the remembered value for key, or runs fn and remembers its
// result. replayed is true when the value came from an earlier call.
//
// fingerprint identifies the payload; reusing a key with a different
// fingerprint fails with ErrKeyReused.
func (d *Deduper[V]) Do(ctx context.Context, key, fingerprint string, fn func(context.Context) (V, error)) (v V, replayed bool, err error) {
	if e, ok := d.lookup(key); ok {
		return d.replay(key, fingerprint, e)
	}

	// ran is only set when singleflight executes this call's closure.
	ran := false
	res, err, _ := d.flight.Do(key, func() (any, error) {
		ran = true
		// A call that finished between lookup and Do has already recorded.
		if e, ok := d.lookup(key); ok {
			return outcome[V]{entry: e}, nil
		}
		v, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		e := entry[V]{fingerprint: fingerprint, value: v}
		d.record(key, e)
		return outcome[V]{entry: e, fresh: true}, nil
	})
	if err != nil {
		var zero V
		return zero, false, err
	}
	o := res.(outcome[V])
	if ran && o.fresh {
		return o.entry.value, false, nil
	}
	return d.replay(key, fingerprint, o.entry)
}

func (d *Deduper[V]) replay(key, fingerprint string, e entry[V]) (V, bool, error) {
	if e.fingerprint != fingerprint {
		var zero V
		return zero, false, fmt.Errorf("%w: %q", ErrKeyReused, key)
	}
	return e.value, true, nil
}

func (d *Deduper[V]) lookup(key string) (entry[V], bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.seen[key]
	return e, ok
}

func (d *Deduper[V]) record(key string, e entry[V]) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[key]; exists {
		d.seen[key] = e
		return
	}
	d.seen[key] = e
	if d.maxSize <= 0 {
		return
	}
	if len(d.order) < d.maxSize {
		d.order = append(d.order, key)
		return
	}
	delete(d.seen, d.order[d.next])
	d.order[d.next] = key
	d.next = (d.next + 1) % d.maxSize
}

// Size returns the number of remembered keys.
func (d *Deduper[V]) Size() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.seen)
}
