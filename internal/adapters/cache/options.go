package cache

import (
	"time"

	"github.com/okian/pmv/pkg/logger"
)

// Option applies a configuration option to the Redis cache.
type Option func(*Redis)

// WithTTL sets the lifetime of each entry. Zero keeps entries until the next
// invalidation.
func WithTTL(ttl time.Duration) Option {
	return func(r *Redis) {
		if ttl >= 0 {
			r.ttl = ttl
		}
	}
}

// WithPrefix namespaces every key written by the cache.
func WithPrefix(prefix string) Option {
	return func(r *Redis) {
		if prefix != "" {
			r.prefix = prefix
		}
	}
}

// WithLogger sets the cache logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Redis) {
		if l != nil {
			r.logger = l
		}
	}
}
