// Package service wires the store, the stats cache and the idempotency guard
// into the operations served by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/pmv/internal/adapters/cache"
	repository "github.com/okian/pmv/internal/adapters/repository"
	"github.com/okian/pmv/internal/domain/dedupe"
	"github.com/okian/pmv/internal/domain/model"
	"github.com/okian/pmv/internal/domain/stats"
	"github.com/okian/pmv/pkg/logger"
	"github.com/okian/pmv/pkg/metrics"
)

// Cache key kinds.
const (
	kindStats     = "stats"
	kindBreakdown = "breakdown"
)

// EventInput is one event submission.
type EventInput struct {
	Player string
	Action model.Action
	// GameID targets a session; nil means the current one.
	GameID *int64
	// IdempotencyKey makes retries of the same submission return the first
	// result. Empty disables the guard.
	IdempotencyKey string
}

func (in EventInput) fingerprint() string {
	gid := "current"
	if in.GameID != nil {
		gid = strconv.FormatInt(*in.GameID, 10)
	}
	return in.Player + "\x00" + string(in.Action) + "\x00" + gid
}

// StatsResult is a stats table with the filter it was computed for.
type StatsResult struct {
	Filter model.EventFilter
	Rows   []stats.PlayerStats
}

// Service implements the API dependencies for the action tracker.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   repository.Store
	cache   cache.StatsCache
	deduper *dedupe.Deduper[model.Event]

	// Configuration
	dbPath      string
	busyTimeout time.Duration
	redisURL    string
	cacheTTL    time.Duration
	dedupeSize  int

	// State
	started   bool
	startedAt time.Time
	// ownStore and ownCache mark components Start opened; Stop releases only those.
	ownStore bool
	ownCache bool

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dbPath:      "pmv.db",
		busyTimeout: 5 * time.Second,
		cacheTTL:    30 * time.Second,
		dedupeSize:  10_000,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens the store and the cache.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting action tracker service...")

	if s.store == nil {
		store, err := repository.Open(ctx, s.dbPath,
			repository.WithBusyTimeout(s.busyTimeout),
			repository.WithLogger(logger.Get().Named("repository")),
		)
		if err != nil {
			return fmt.Errorf("start service: %w", err)
		}
		s.store = store
		s.ownStore = true
	}

	if s.cache == nil {
		s.cache = s.openCache(ctx)
		s.ownCache = true
	}

	s.deduper = dedupe.New[model.Event](dedupe.WithMaxSize(s.dedupeSize))

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "action tracker service started",
		logger.String("db_path", s.dbPath),
		logger.Bool("stats_cache", s.redisURL != ""),
		logger.Int("dedupe_size", s.dedupeSize),
	)
	return nil
}

// openCache connects to Redis when configured. The cache is an optimisation,
// so an unreachable server degrades to no caching instead of failing Start.
func (s *Service) openCache(ctx context.Context) cache.StatsCache {
	if s.redisURL == "" {
		return cache.NewNoop()
	}
	c, err := cache.NewRedis(ctx, s.redisURL,
		cache.WithTTL(s.cacheTTL),
		cache.WithLogger(logger.Get().Named("cache")),
	)
	if err != nil {
		s.logger.Warn(ctx, "stats cache disabled", logger.Error(err))
		metrics.RecordErrorByComponent("cache", "unavailable")
		return cache.NewNoop()
	}
	return c
}

// Stop closes the store and the cache.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping action tracker service...")

	if s.ownCache {
		if err := s.cache.Close(); err != nil {
			s.logger.Warn(ctx, "closing stats cache", logger.Error(err))
		}
		s.cache, s.ownCache = nil, false
	}
	if s.ownStore {
		if err := s.store.Close(); err != nil {
			s.logger.Warn(ctx, "closing store", logger.Error(err))
		}
		s.store, s.ownStore = nil, false
	}

	s.started = false
	s.logger.Info(ctx, "action tracker service stopped")
}

// components returns the live dependencies or ErrNotStarted.
func (s *Service) components() (repository.Store, cache.StatsCache, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, ErrNotStarted
	}
	return s.store, s.cache, nil
}

// AddPlayer registers a player and returns its id.
func (s *Service) AddPlayer(ctx context.Context, name string) (int64, error) {
	store, _, err := s.components()
	if err != nil {
		return 0, err
	}
	return store.AddPlayer(ctx, name)
}

// ListPlayers returns every registered player name.
func (s *Service) ListPlayers(ctx context.Context) ([]string, error) {
	store, _, err := s.components()
	if err != nil {
		return nil, err
	}
	return store.ListPlayers(ctx)
}

// StartNewGame opens a new session.
func (s *Service) StartNewGame(ctx context.Context) (int64, error) {
	store, _, err := s.components()
	if err != nil {
		return 0, err
	}
	return store.StartNewGame(ctx)
}

// CurrentGameID returns the newest session id, if any.
func (s *Service) CurrentGameID(ctx context.Context) (int64, bool, error) {
	store, _, err := s.components()
	if err != nil {
		return 0, false, err
	}
	return store.CurrentGameID(ctx)
}

// ListGames returns every session, newest first.
func (s *Service) ListGames(ctx context.Context) ([]model.Game, error) {
	store, _, err := s.components()
	if err != nil {
		return nil, err
	}
	return store.ListGames(ctx)
}

// InsertEvent records one event. replayed reports that the idempotency key
// matched an earlier submission and nothing was written.
func (s *Service) InsertEvent(ctx context.Context, in EventInput) (ev model.Event, replayed bool, err error) {
	store, statsCache, err := s.components()
	if err != nil {
		return model.Event{}, false, err
	}

	write := func(ctx context.Context) (model.Event, error) {
		ev, err := store.InsertEvent(ctx, in.Player, in.Action, in.GameID)
		if err != nil {
			return model.Event{}, err
		}
		if err := statsCache.Invalidate(ctx); err != nil {
			s.logger.Warn(ctx, "stats cache invalidation failed", logger.Error(err))
			metrics.RecordErrorByComponent("cache", "invalidate")
		}
		return ev, nil
	}

	if in.IdempotencyKey == "" {
		ev, err = write(ctx)
		return ev, false, err
	}

	in.Player, err = model.NormalizePlayerName(in.Player)
	if err != nil {
		return model.Event{}, false, err
	}
	ev, replayed, err = s.deduper.Do(ctx, in.IdempotencyKey, in.fingerprint(), write)
	if replayed {
		metrics.RecordEventReplayed()
		s.logger.Debug(ctx, "replayed event submission",
			logger.String("idempotency_key", in.IdempotencyKey),
			logger.Int64("event_id", ev.ID),
		)
	}
	return ev, replayed, err
}

// QueryEvents returns the events matching f in insertion order.
func (s *Service) QueryEvents(ctx context.Context, f model.EventFilter) ([]model.Event, error) {
	store, _, err := s.components()
	if err != nil {
		return nil, err
	}
	return store.QueryEvents(ctx, f)
}

// PlayerStats computes the per-player efficiency table for f.
func (s *Service) PlayerStats(ctx context.Context, f model.EventFilter) (StatsResult, error) {
	resolved, rows, err := readThrough(ctx, s, kindStats, f, stats.Compute)
	if err != nil {
		return StatsResult{}, err
	}
	return StatsResult{Filter: resolved, Rows: rows}, nil
}

// Breakdown counts the events matching f by kind and by action.
func (s *Service) Breakdown(ctx context.Context, f model.EventFilter) (stats.ActionBreakdown, error) {
	_, b, err := readThrough(ctx, s, kindBreakdown, f, stats.Breakdown)
	return b, err
}

// readThrough serves compute(events matching f) from the stats cache,
// computing and storing it on a miss. Cache failures fall back to the store.
func readThrough[T any](ctx context.Context, s *Service, kind string, f model.EventFilter, compute func([]model.Event) T) (model.EventFilter, T, error) {
	var zero T
	store, statsCache, err := s.components()
	if err != nil {
		return f, zero, err
	}

	resolved, err := store.ResolveFilter(ctx, f)
	if err != nil {
		return f, zero, err
	}
	key := cache.Key(kind, resolved)

	gen, cacheErr := statsCache.Generation(ctx)
	if cacheErr == nil {
		var cached T
		hit, err := statsCache.Get(ctx, gen, key, &cached)
		switch {
		case err != nil:
			cacheErr = err
		case hit:
			metrics.RecordStatsCacheHit()
			return resolved, cached, nil
		default:
			metrics.RecordStatsCacheMiss()
		}
	}
	if cacheErr != nil {
		metrics.RecordStatsCacheError()
		s.logger.Warn(ctx, "stats cache lookup failed", logger.String("key", key), logger.Error(cacheErr))
	}

	start := time.Now()
	events, err := store.QueryEvents(ctx, resolved)
	if err != nil {
		return resolved, zero, err
	}
	out := compute(events)
	metrics.RecordStatsComputed(len(events), float64(time.Since(start).Microseconds())/1000)

	if cacheErr == nil {
		if err := statsCache.Set(ctx, gen, key, out); err != nil {
			metrics.RecordStatsCacheError()
			s.logger.Warn(ctx, "stats cache store failed", logger.String("key", key), logger.Error(err))
		}
	}
	return resolved, out, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := map[string]any{
		"started":     s.started,
		"db_path":     s.dbPath,
		"stats_cache": s.redisURL != "",
		"dedupe_size": s.dedupeSize,
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	metrics.UpdateSystemMemoryUsage(mem.HeapAlloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if !s.started {
		return out
	}

	out["uptime_seconds"] = int64(time.Since(s.startedAt).Seconds())
	out["idempotency_keys"] = s.deduper.Size()

	counts, err := s.store.Count(ctx)
	if err != nil {
		s.logger.Warn(ctx, "counting rows failed", logger.Error(err))
		out["store_error"] = err.Error()
		return out
	}
	out["players"] = counts.Players
	out["games"] = counts.Games
	out["events"] = counts.Events
	metrics.UpdateStoreRows(counts.Players, counts.Games, counts.Events)

	if id, ok, err := s.store.CurrentGameID(ctx); err == nil && ok {
		out["current_game_id"] = id
	}
	return out
}
