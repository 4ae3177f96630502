// Package redis provides the Redis-backed cache used for USDA lookups
package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/alchemorsel/cookbook/internal/infrastructure/config"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultCacheTTL = 24 * time.Hour

// NewClient connects to the configured Redis and fails when the first ping
// does not answer within ten seconds
func NewClient(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.Database,
		MaxRetries:   cfg.MaxRetries,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", addr, err)
	}

	logger.Info("Connected to Redis", zap.String("addr", addr), zap.Int("db", cfg.Database))
	return client, nil
}

// CacheRepository implements outbound.CacheRepository with string keys
// under "<prefix>:"
type CacheRepository struct {
	client redis.Cmdable
	prefix string
	log    *zap.Logger
}

var _ outbound.CacheRepository = (*CacheRepository)(nil)

func NewCacheRepository(client redis.Cmdable, prefix string, logger *zap.Logger) *CacheRepository {
	return &CacheRepository{client: client, prefix: prefix, log: logger.Named("redis-cache")}
}

// Key returns the namespaced form of key
func (c *CacheRepository) Key(key string) string {
	if c.prefix == "" {
		return key
	}
	return c.prefix + ":" + key
}

func (c *CacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, c.Key(key)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, outbound.ErrCacheMiss
	case err != nil:
		return nil, c.fail("get", key, err)
	}
	return data, nil
}

func (c *CacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return c.fail("set", key, c.client.Set(ctx, c.Key(key), value, ttl).Err())
}

func (c *CacheRepository) Delete(ctx context.Context, key string) error {
	return c.fail("delete", key, c.client.Del(ctx, c.Key(key)).Err())
}

// Ping is the readiness probe
func (c *CacheRepository) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// fail logs err and wraps it with the operation; nil stays nil
func (c *CacheRepository) fail(op, key string, err error) error {
	if err == nil {
		return nil
	}
	c.log.Warn("Redis cache operation failed", zap.String("op", op), zap.String("key", key), zap.Error(err))
	return fmt.Errorf("redis %s %s: %w", op, c.Key(key), err)
}
