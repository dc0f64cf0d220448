// Package cache provides a redis-backed page cache for the fetcher.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "ligafeed:page:"

// PageCache stores fetched HTML bodies in redis with a TTL. Cache
// failures only cost a network fetch, so they are logged and swallowed.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.SugaredLogger
}

// NewPageCache connects to redis and verifies the connection.
func NewPageCache(redisURL string, ttl time.Duration, log *zap.SugaredLogger) (*PageCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &PageCache{client: client, ttl: ttl, log: log}, nil
}

// Close closes the redis connection.
func (c *PageCache) Close() error {
	return c.client.Close()
}

// GetPage returns the cached body for a URL, if present.
func (c *PageCache) GetPage(ctx context.Context, url string) (string, bool) {
	body, err := c.client.Get(ctx, keyPrefix+url).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		c.log.Warnw("page cache read failed", "url", url, "error", err)
		return "", false
	}
	return body, true
}

// SetPage stores a body with the configured TTL.
func (c *PageCache) SetPage(ctx context.Context, url, body string) {
	if err := c.client.Set(ctx, keyPrefix+url, body, c.ttl).Err(); err != nil {
		c.log.Warnw("page cache write failed", "url", url, "error", err)
	}
}
