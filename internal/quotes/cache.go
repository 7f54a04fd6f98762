package quotes

import (
	"context"
	"errors"
	"time"

	"github.com/coocood/freecache"
	"github.com/go-redis/redis/v8"

	"github.com/jwaldner/breakingbad/internal/logger"
	"github.com/jwaldner/breakingbad/internal/metrics"
)

// Cache stores quote snapshots for a short TTL.
type Cache interface {
	Get(ctx context.Context, symbol string) (*Quote, bool, error)
	Set(ctx context.Context, q *Quote, ttl time.Duration) error
	Name() string
}

// MemoryCache keeps quotes in an in-process freecache arena.
type MemoryCache struct {
	cache *freecache.Cache
}

func NewMemoryCache(sizeMB int) *MemoryCache {
	if sizeMB <= 0 {
		sizeMB = 8
	}
	return &MemoryCache{cache: freecache.NewCache(sizeMB * 1024 * 1024)}
}

func (m *MemoryCache) Name() string { return "memory" }

func (m *MemoryCache) Get(_ context.Context, symbol string) (*Quote, bool, error) {
	value, err := m.cache.Get([]byte(symbol))
	if errors.Is(err, freecache.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var q Quote
	if err := json.Unmarshal(value, &q); err != nil {
		return nil, false, err
	}
	return &q, true, nil
}

func (m *MemoryCache) Set(_ context.Context, q *Quote, ttl time.Duration) error {
	data, err := json.Marshal(q)
	if err != nil {
		return err
	}
	return m.cache.Set([]byte(q.Symbol), data, ttlSeconds(ttl))
}

// RedisCache shares quotes between server instances.
type RedisCache struct {
	client *redis.Client
	prefix string
}

func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

func (r *RedisCache) Name() string { return "redis" }

func (r *RedisCache) Get(ctx context.Context, symbol string) (*Quote, bool, error) {
	data, err := r.client.Get(ctx, r.prefix+symbol).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var q Quote
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, false, err
	}
	return &q, true, nil
}

func (r *RedisCache) Set(ctx context.Context, q *Quote, ttl time.Duration) error {
	data, err := json.Marshal(q)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.prefix+q.Symbol, data, ttl).Err()
}

func ttlSeconds(ttl time.Duration) int {
	s := int(ttl / time.Second)
	if s < 1 {
		s = 1
	}
	return s
}

// Cached serves repeat lookups from a Cache. Cache failures are logged and
// bypassed; they never fail a lookup.
type Cached struct {
	next    Provider
	cache   Cache
	ttl     time.Duration
	metrics *metrics.Metrics
}

func NewCached(next Provider, cache Cache, ttl time.Duration, m *metrics.Metrics) *Cached {
	return &Cached{next: next, cache: cache, ttl: ttl, metrics: m}
}

func (c *Cached) Name() string { return c.next.Name() }

func (c *Cached) Quote(ctx context.Context, symbol string) (*Quote, error) {
	symbol, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}

	q, ok, err := c.cache.Get(ctx, symbol)
	switch {
	case err != nil:
		logger.Warn.Printf("⚠️ QUOTE CACHE: %s get %s failed: %v", c.cache.Name(), symbol, err)
		c.metrics.CountCache(c.cache.Name(), "error")
	case ok:
		c.metrics.CountCache(c.cache.Name(), "hit")
		q.Cached = true
		return q, nil
	default:
		c.metrics.CountCache(c.cache.Name(), "miss")
	}

	q, err = c.next.Quote(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, q, c.ttl); err != nil {
		logger.Warn.Printf("⚠️ QUOTE CACHE: %s set %s failed: %v", c.cache.Name(), symbol, err)
	}
	return q, nil
}
