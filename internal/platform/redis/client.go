// Package redis wraps the go-redis client with the small surface this
// service needs: health checking and a best-effort cross-replica lock used
// by the retention scheduler.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"offboard/internal/platform/config"
)

// Client wraps the go-redis client with health checking capabilities.
type Client struct {
	*redis.Client
}

// New creates a new Redis client from the provided configuration.
// Returns nil if the URL is empty (Redis not configured).
func New(cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{Client: client}, nil
}

// Health checks if the Redis connection is healthy.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

// TryLock attempts to acquire a named lock for ttl. A nil receiver (redis
// not configured) always acquires, so single-replica deployments need no
// coordination. The returned release func is a no-op once ttl expires.
func (c *Client) TryLock(ctx context.Context, name string, ttl time.Duration) (bool, func(), error) {
	if c == nil {
		return true, func() {}, nil
	}

	key := "lock:" + name
	ok, err := c.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, nil, fmt.Errorf("acquire lock %s: %w", name, err)
	}
	if !ok {
		return false, nil, nil
	}

	release := func() {
		relCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = c.Del(relCtx, key).Err()
	}
	return true, release, nil
}
