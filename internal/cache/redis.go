package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisKeyPrefix = "jobpilot:search:"

// Redis is the out-of-process Store backend, for deployments where several
// instances should share search results. TTL handling is delegated to Redis.
type Redis struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedis parses redisURL, verifies connectivity and returns the backend.
func NewRedis(ctx context.Context, redisURL string, logger *zap.Logger) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Redis{client: client, logger: logger}, nil
}

// Get returns the cached payload. Transport errors degrade to a cache miss;
// a search must never fail because the cache is unhealthy.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	payload, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil && r.logger != nil {
			r.logger.Warn("redis cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return payload, true
}

func (r *Redis) Put(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, redisKeyPrefix+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis cache write: %w", err)
	}
	return nil
}
