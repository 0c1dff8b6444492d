package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/okian/pmv/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const (
	defaultPrefix = "pmv:stats"
	defaultTTL    = 30 * time.Second
)

// Redis caches stats tables in Redis.
//
// The generation lives at <prefix>:gen and is embedded in every entry key.
// Every process sharing the instance sees a bump at once; retired entries
// expire on their own TTL.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger logger.Logger
}

// NewRedis connects to the server at url (redis://host:port/db) and pings it.
func NewRedis(ctx context.Context, url string, opts ...Option) (*Redis, error) {
	ropts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	r := NewRedisFromClient(redis.NewClient(ropts), opts...)
	if err := r.client.Ping(ctx).Err(); err != nil {
		_ = r.client.Close()
		return nil, unavailable("ping redis", err)
	}
	r.logger.Info(ctx, "stats cache connected", logger.String("addr", ropts.Addr), logger.Duration("ttl", r.ttl))
	return r, nil
}

// NewRedisFromClient wraps an existing client without contacting it.
func NewRedisFromClient(client *redis.Client, opts ...Option) *Redis {
	r := &Redis{
		client: client,
		prefix: defaultPrefix,
		ttl:    defaultTTL,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.Get().Named("cache")
	}
	return r
}

func (r *Redis) genKey() string { return r.prefix + ":gen" }

func (r *Redis) entryKey(gen int64, key string) string {
	return fmt.Sprintf("%s:%d:%s", r.prefix, gen, key)
}

// Generation implements StatsCache.
func (r *Redis) Generation(ctx context.Context) (int64, error) {
	gen, err := r.client.Get(ctx, r.genKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, unavailable("read generation", err)
	}
	return gen, nil
}

// Get implements StatsCache.
func (r *Redis) Get(ctx context.Context, gen int64, key string, dst any) (bool, error) {
	data, err := r.client.Get(ctx, r.entryKey(gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, unavailable("get entry", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		// A corrupt entry is a miss; the caller recomputes and overwrites it.
		r.logger.Warn(ctx, "dropping undecodable cache entry", logger.String("key", key), logger.Error(err))
		return false, nil
	}
	return true, nil
}

// Set implements StatsCache.
func (r *Redis) Set(ctx context.Context, gen int64, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}
	if err := r.client.Set(ctx, r.entryKey(gen, key), data, r.ttl).Err(); err != nil {
		return unavailable("set entry", err)
	}
	return nil
}

// Invalidate implements StatsCache.
func (r *Redis) Invalidate(ctx context.Context) error {
	if err := r.client.Incr(ctx, r.genKey()).Err(); err != nil {
		return unavailable("bump generation", err)
	}
	return nil
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}

var _ StatsCache = (*Redis)(nil)
