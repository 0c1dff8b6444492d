package service

import (
	"time"

	"github.com/okian/pmv/internal/adapters/cache"
	repository "github.com/okian/pmv/internal/adapters/repository"
	"github.com/okian/pmv/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDBPath sets the SQLite file opened on Start.
func WithDBPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.dbPath = path
		}
	}
}

// WithBusyTimeout sets how long store writers wait on a locked database.
func WithBusyTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.busyTimeout = d
		}
	}
}

// WithRedisURL enables the Redis stats cache.
func WithRedisURL(url string) Option {
	return func(s *Service) {
		s.redisURL = url
	}
}

// WithStatsCacheTTL sets the lifetime of cached stats tables.
func WithStatsCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl >= 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithDedupeSize bounds the remembered idempotency keys. Zero keeps all.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size >= 0 {
			s.dedupeSize = size
		}
	}
}

// WithStore uses an already opened store instead of opening DBPath.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithCache uses c instead of building one from the Redis URL.
func WithCache(c cache.StatsCache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
