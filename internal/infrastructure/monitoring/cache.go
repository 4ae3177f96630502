package monitoring

import (
	"context"
	"errors"
	"time"

	"github.com/alchemorsel/cookbook/internal/ports/outbound"
)

// InstrumentedCache counts hits, misses and failures of a cache
type InstrumentedCache struct {
	next    outbound.CacheRepository
	metrics *MetricsCollector
}

var _ outbound.CacheRepository = (*InstrumentedCache)(nil)

// InstrumentCache wraps next
func InstrumentCache(next outbound.CacheRepository, metrics *MetricsCollector) *InstrumentedCache {
	return &InstrumentedCache{next: next, metrics: metrics}
}

func (c *InstrumentedCache) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := c.next.Get(ctx, key)
	switch {
	case err == nil:
		c.metrics.CacheOperation("get", "hit")
	case errors.Is(err, outbound.ErrCacheMiss):
		c.metrics.CacheOperation("get", "miss")
	default:
		c.metrics.CacheOperation("get", "error")
	}
	return value, err
}

func (c *InstrumentedCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := c.next.Set(ctx, key, value, ttl)
	c.metrics.CacheOperation("set", status(err))
	return err
}

func (c *InstrumentedCache) Delete(ctx context.Context, key string) error {
	err := c.next.Delete(ctx, key)
	c.metrics.CacheOperation("delete", status(err))
	return err
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
