// Package rediscache provides the bounded, TTL'd read cache from spec §5:
// "read caches (e.g., focus-area analytics) are bounded (<= 50 entries)
// with a 5-minute TTL and a clock-based eviction; cache is a pure
// optimization, never authoritative." Grounded on scheduler-service/
// internal/cache/redis.go's RedisClient wrapper.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"adaptive-engine/internal/config"
	"adaptive-engine/internal/logger"
	"adaptive-engine/internal/metrics"

	"github.com/go-redis/redis/v8"
)

// ErrCacheMiss is returned by Get when key is absent or expired.
var ErrCacheMiss = errors.New("rediscache: cache miss")

// Client wraps a go-redis client with the metrics/logging the teacher's
// scheduler-service cache layer carries.
type Client struct {
	client  *redis.Client
	metrics *metrics.Metrics
	logger  *logger.Logger
}

// New dials Redis per cfg.
func New(cfg config.RedisConfig, m *metrics.Metrics, log *logger.Logger) (*Client, error) {
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	opt.DB = cfg.DB
	opt.MaxRetries = cfg.MaxRetries
	opt.PoolSize = cfg.PoolSize

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("redis connection established")
	return &Client{client: client, metrics: m, logger: log}, nil
}

func (c *Client) Close() error { return c.client.Close() }

func (c *Client) Health(ctx context.Context) error { return c.client.Ping(ctx).Err() }

func (c *Client) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache key %s: %w", key, err)
	}
	return nil
}

func (c *Client) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.metrics.RecordCacheMiss("redis")
			return ErrCacheMiss
		}
		return fmt.Errorf("failed to get cache key %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return fmt.Errorf("failed to unmarshal cached value: %w", err)
	}
	c.metrics.RecordCacheHit("redis")
	return nil
}

func (c *Client) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
