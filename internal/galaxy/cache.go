package galaxy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache keeps encoded buffers in redis so repeated presets and restarts
// skip generation.
type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisCache(client redis.Cmdable, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func CacheKey(params Parameters, seed uint64) string {
	return fmt.Sprintf("galaxy:buffers:%s:%d", params.Hash(), seed)
}

func (c *RedisCache) Get(ctx context.Context, params Parameters, seed uint64) (*PointSet, bool, error) {
	data, err := c.client.Get(ctx, CacheKey(params, seed)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached buffers: %w", err)
	}

	ps, err := DecodeBuffers(data, params, seed)
	if err != nil {
		return nil, false, fmt.Errorf("corrupt cache entry: %w", err)
	}
	return ps, true, nil
}

func (c *RedisCache) Put(ctx context.Context, ps *PointSet) error {
	key := CacheKey(ps.Parameters, ps.Seed)
	if err := c.client.Set(ctx, key, ps.EncodeBuffers(), c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache buffers: %w", err)
	}
	return nil
}
