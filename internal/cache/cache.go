package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrMiss is returned when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// KV is the slice of the redis client the cache uses.
type KV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Cache is a small JSON cache over Redis. A nil *Cache is a no-op, so callers
// can run without Redis in tests and degraded deployments.
type Cache struct {
	kv     KV
	logger *zap.Logger
}

func New(kv KV, logger *zap.Logger) *Cache {
	return &Cache{kv: kv, logger: logger}
}

func (c *Cache) Get(ctx context.Context, key string, dest any) error {
	if c == nil || c.kv == nil {
		return ErrMiss
	}
	data, err := c.kv.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Cache read failed", zap.Error(err), zap.String("key", key))
		}
		return ErrMiss
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Warn("Cache entry undecodable, treating as miss",
			zap.Error(err),
			zap.String("key", key),
		)
		return ErrMiss
	}
	return nil
}

func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	if c == nil || c.kv == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("Cache encode failed", zap.Error(err), zap.String("key", key))
		return
	}
	if err := c.kv.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.Warn("Cache write failed", zap.Error(err), zap.String("key", key))
	}
}

func (c *Cache) Delete(ctx context.Context, keys ...string) {
	if c == nil || c.kv == nil || len(keys) == 0 {
		return
	}
	if err := c.kv.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("Cache invalidation failed", zap.Error(err), zap.Strings("keys", keys))
	}
}
