package usgs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/couchcryptid/quake-map/internal/domain"
	"github.com/couchcryptid/quake-map/internal/observability"
)

// cacheKey is the single Redis key holding the raw feed bytes. One feed per
// deployment, so one key.
const cacheKey = "quake-map:feed:raw"

// ErrCacheMiss marks an absent or expired cache entry.
var ErrCacheMiss = errors.New("cache miss")

// Store is the raw-bytes cache the fetcher decorator reads and writes
// through. Get returns ErrCacheMiss when the key is absent.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisStore implements Store on a Redis client.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects a Store to the given Redis address.
func NewRedisStore(addr string) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	return b, err
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

// Ping verifies the Redis connection at startup.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// CachedFetcher decorates a FeedFetcher with a shared raw-feed cache, so
// restarts and one-shot renders inside the TTL window do not re-hit the
// upstream feed. Cache failures degrade to a plain fetch; they never fail a
// render pass.
type CachedFetcher struct {
	inner   domain.FeedFetcher
	store   Store
	ttl     time.Duration
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewCachedFetcher wraps a fetcher with the cache store.
func NewCachedFetcher(inner domain.FeedFetcher, store Store, ttl time.Duration, metrics *observability.Metrics, logger *slog.Logger) *CachedFetcher {
	return &CachedFetcher{
		inner:   inner,
		store:   store,
		ttl:     ttl,
		metrics: metrics,
		logger:  logger,
	}
}

// Fetch serves cached feed bytes when present, otherwise fetches upstream and
// writes the raw bytes back with the configured TTL.
func (c *CachedFetcher) Fetch(ctx context.Context) (domain.FeedSnapshot, error) {
	raw, err := c.store.Get(ctx, cacheKey)
	if err == nil {
		snap, derr := DecodeSnapshot(raw)
		if derr == nil {
			c.metrics.FeedCache.WithLabelValues("hit").Inc()
			c.logger.Debug("feed cache hit", "bytes", len(raw))
			return snap, nil
		}
		c.metrics.FeedCache.WithLabelValues("error").Inc()
		c.logger.Warn("discarding undecodable cached feed", "error", derr)
	} else if errors.Is(err, ErrCacheMiss) {
		c.metrics.FeedCache.WithLabelValues("miss").Inc()
	} else {
		c.metrics.FeedCache.WithLabelValues("error").Inc()
		c.logger.Warn("feed cache read failed", "error", err)
	}

	snap, err := c.inner.Fetch(ctx)
	if err != nil {
		return domain.FeedSnapshot{}, err
	}

	if err := c.store.Set(ctx, cacheKey, snap.Raw, c.ttl); err != nil {
		c.metrics.FeedCache.WithLabelValues("error").Inc()
		c.logger.Warn("feed cache write failed", "error", err)
	}
	return snap, nil
}
