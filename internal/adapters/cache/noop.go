package cache

import "context"

// Noop is the cache used when no Redis URL is configured. It never hits.
type Noop struct{}

// NewNoop returns a cache that stores nothing.
func NewNoop() Noop { return Noop{} }

func (Noop) Generation(context.Context) (int64, error)            { return 0, nil }
func (Noop) Get(context.Context, int64, string, any) (bool, error) { return false, nil }
func (Noop) Set(context.Context, int64, string, any) error         { return nil }
func (Noop) Invalidate(context.Context) error                      { return nil }
func (Noop) Close() error                                          { return nil }

var _ StatsCache = Noop{}
