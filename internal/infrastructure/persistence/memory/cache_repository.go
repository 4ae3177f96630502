// Package memory provides in-memory implementations of the outbound
// repositories, used by the `memory` database driver and by tests
package memory

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/alchemorsel/cookbook/internal/ports/outbound"
)

const defaultCacheTTL = 24 * time.Hour

type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e cacheEntry) expired(now time.Time) bool {
	return !now.Before(e.expiresAt)
}

// CacheRepository is a TTL cache for a single process. A background sweep
// drops expired entries until Close.
type CacheRepository struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	now     func() time.Time

	closing   chan struct{}
	closed    chan struct{}
	closeOnce sync.Once
}

var _ outbound.CacheRepository = (*CacheRepository)(nil)

// NewCacheRepository starts a cache swept every interval, five minutes
// when interval is not positive
func NewCacheRepository(interval time.Duration) *CacheRepository {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	c := &CacheRepository{
		entries: map[string]cacheEntry{},
		now:     time.Now,
		closing: make(chan struct{}),
		closed:  make(chan struct{}),
	}
	go c.sweepEvery(interval)
	return c
}

func (c *CacheRepository) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || e.expired(c.now()) {
		return nil, outbound.ErrCacheMiss
	}
	return bytes.Clone(e.value), nil
}

func (c *CacheRepository) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	e := cacheEntry{value: bytes.Clone(value), expiresAt: c.now().Add(ttl)}

	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	return nil
}

func (c *CacheRepository) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Close stops the sweep. It is safe to call more than once.
func (c *CacheRepository) Close() error {
	c.closeOnce.Do(func() { close(c.closing) })
	<-c.closed
	return nil
}

func (c *CacheRepository) sweepEvery(interval time.Duration) {
	defer close(c.closed)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.closing:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *CacheRepository) sweep() {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, key)
		}
	}
}
