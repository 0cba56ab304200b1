package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/yourorg/fleetrent/internal/infrastructure/redis"
	"github.com/yourorg/fleetrent/internal/observability/metrics"
	"github.com/yourorg/fleetrent/internal/reliability/circuitbreaker"
	"github.com/yourorg/fleetrent/pkg/cache"
)

// ListCache is the read cache for the list endpoints. Keys are namespaced
// by aggregate ("vehicles:", "clients:", "rentals:") so writes can
// invalidate a whole namespace. A cache failure is never an error: reads
// fall through to the store, writes are dropped.
type ListCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Invalidate(ctx context.Context, prefix string)
}

// MemoryListCache serves the list cache from the in-process TTL cache.
type MemoryListCache struct {
	cache *cache.Cache
}

// NewMemoryListCache creates an in-process list cache
func NewMemoryListCache() *MemoryListCache {
	return &MemoryListCache{cache: cache.New()}
}

func (m *MemoryListCache) Get(_ context.Context, key string) ([]byte, bool) {
	return m.cache.Get(key)
}

func (m *MemoryListCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	m.cache.Set(key, value, ttl)
}

func (m *MemoryListCache) Invalidate(_ context.Context, prefix string) {
	m.cache.Invalidate(prefix)
}

// RedisListCache serves the list cache from Redis so it is shared across
// instances. A circuit breaker fast-fails cache traffic while Redis is
// down instead of adding its timeout to every list request.
type RedisListCache struct {
	client  *redis.Client
	breaker *circuitbreaker.CircuitBreaker
	logger  *slog.Logger
}

// NewRedisListCache creates a Redis-backed list cache
func NewRedisListCache(client *redis.Client, logger *slog.Logger) *RedisListCache {
	if logger == nil {
		logger = slog.Default()
	}
	breaker := circuitbreaker.New(5, 2, 30*time.Second)
	breaker.OnStateChange(func(from, to circuitbreaker.State) {
		logger.Warn("list cache circuit state changed",
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	})
	return &RedisListCache{client: client, breaker: breaker, logger: logger}
}

func (r *RedisListCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if !r.breaker.Allow() {
		return nil, false
	}
	value, err := r.client.Get(ctx, key)
	if err != nil {
		if redis.IsMiss(err) {
			r.breaker.RecordSuccess()
			return nil, false
		}
		r.breaker.RecordFailure()
		r.logger.Debug("list cache read failed", slog.String("key", key), slog.String("error", err.Error()))
		return nil, false
	}
	r.breaker.RecordSuccess()
	return value, true
}

func (r *RedisListCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if !r.breaker.Allow() {
		return
	}
	if err := r.client.Set(ctx, key, value, ttl); err != nil {
		r.breaker.RecordFailure()
		return
	}
	r.breaker.RecordSuccess()
}

func (r *RedisListCache) Invalidate(ctx context.Context, prefix string) {
	if !r.breaker.Allow() {
		return
	}
	if err := r.client.DeleteByPrefix(ctx, prefix); err != nil {
		r.breaker.RecordFailure()
		r.logger.Warn("list cache invalidation failed", slog.String("prefix", prefix), slog.String("error", err.Error()))
		return
	}
	r.breaker.RecordSuccess()
}

// cacheGet is the nil-safe read used by the service, with hit/miss metrics.
func cacheGet(ctx context.Context, c ListCache, key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	value, ok := c.Get(ctx, key)
	metrics.ObserveCacheLookup(ok)
	return value, ok
}
