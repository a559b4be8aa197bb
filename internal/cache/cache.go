// Package cache provides a Redis-backed cache for per-principal access maps.
// Cache failures are treated as misses so Redis outages degrade to direct
// store reads instead of request failures.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"edcore.org/internal/access"
	"edcore.org/internal/obs"
)

// DefaultTTL bounds staleness for readers that race a concurrent mutation
// on another instance.
const DefaultTTL = 60 * time.Second

// AccessCache implements access.Cache on top of a Redis client.
type AccessCache struct {
	client *redis.Client
	ttl    time.Duration
}

// Option configures an AccessCache.
type Option func(*AccessCache)

// WithTTL overrides the default entry TTL.
func WithTTL(ttl time.Duration) Option {
	return func(c *AccessCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// New connects to Redis and verifies the connection with a ping.
func New(ctx context.Context, addr, password string, db int, opts ...Option) (*AccessCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return wrap(client, opts...), nil
}

// NewFromClient wraps an existing client; tests use this with miniredis.
func NewFromClient(client *redis.Client, opts ...Option) *AccessCache {
	return wrap(client, opts...)
}

func wrap(client *redis.Client, opts ...Option) *AccessCache {
	c := &AccessCache{client: client, ttl: DefaultTTL}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func accessKey(principalID string) string {
	return "access:map:" + principalID
}

// GetMap reads a cached access map. Any Redis or decode error is a miss.
func (c *AccessCache) GetMap(ctx context.Context, principalID string) (access.Map, bool) {
	raw, err := c.client.Get(ctx, accessKey(principalID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			obs.Warn("cache_get_failed", map[string]any{
				"key":   accessKey(principalID),
				"error": err.Error(),
			})
		}
		return nil, false
	}
	var m access.Map
	if err := json.Unmarshal(raw, &m); err != nil {
		// A corrupt entry is unreadable forever; drop it.
		c.client.Del(ctx, accessKey(principalID))
		return nil, false
	}
	if m == nil {
		m = access.Map{}
	}
	return m, true
}

// SetMap stores an access map with the configured TTL. Failures are logged
// and ignored.
func (c *AccessCache) SetMap(ctx context.Context, principalID string, m access.Map) {
	raw, err := json.Marshal(m)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, accessKey(principalID), raw, c.ttl).Err(); err != nil {
		obs.Warn("cache_set_failed", map[string]any{
			"key":   accessKey(principalID),
			"error": err.Error(),
		})
	}
}

// Invalidate removes the cached map after a mutation.
func (c *AccessCache) Invalidate(ctx context.Context, principalID string) {
	if err := c.client.Del(ctx, accessKey(principalID)).Err(); err != nil {
		obs.Warn("cache_del_failed", map[string]any{
			"key":   accessKey(principalID),
			"error": err.Error(),
		})
	}
}

// Close releases the underlying client.
func (c *AccessCache) Close() error {
	return c.client.Close()
}
