package cache

import (
	"context"
	"time"

	"github.com/karlseguin/ccache/v3"
	"github.com/redis/go-redis/v9"
)

// localTTL caps how long a value lives in the in-process tier so that other
// instances' invalidations become visible quickly.
const localTTL = 30 * time.Second

// Client is a two-tier cache: an in-process ccache tier in front of redis.
// Redis connectivity errors are swallowed and behave like cache misses.
type Client struct {
	client *redis.Client
	local  *ccache.Cache[[]byte]
}

// New creates a new cache client backed by redis at addr.
func New(addr, password string, db int, localSize int64) *Client {
	opts := &redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}
	return &Client{
		client: redis.NewClient(opts),
		local:  newLocal(localSize),
	}
}

func newLocal(size int64) *ccache.Cache[[]byte] {
	if size <= 0 {
		size = 1000
	}
	return ccache.New(ccache.Configure[[]byte]().MaxSize(size))
}

// Get returns value or nil if missing or redis unavailable.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	if c == nil {
		return nil, nil
	}
	if c.local != nil {
		if item := c.local.Get(key); item != nil && !item.Expired() {
			return item.Value(), nil
		}
	}
	if c.client == nil {
		return nil, nil
	}
	res, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		// fail safe: behave like cache miss
		return nil, nil
	}
	if c.local != nil {
		c.local.Set(key, res, localTTL)
	}
	return res, nil
}

// Set stores value with TTL, ignoring redis errors.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c == nil {
		return nil
	}
	if c.local != nil {
		c.local.Set(key, value, min(ttl, localTTL))
	}
	if c.client == nil {
		return nil
	}
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		// fail safe: ignore redis errors
		return nil
	}
	return nil
}

// Delete removes a key from both tiers, ignoring redis errors.
func (c *Client) Delete(ctx context.Context, key string) error {
	if c == nil {
		return nil
	}
	if c.local != nil {
		c.local.Delete(key)
	}
	if c.client == nil {
		return nil
	}
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return nil
	}
	return nil
}

// Incr increments a counter in redis, starting its TTL on first increment.
// Counters live only in redis; with redis unavailable it returns 0.
func (c *Client) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	n, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, nil
	}
	if n == 1 {
		_ = c.client.Expire(ctx, key, ttl).Err()
	}
	return n, nil
}

// Count returns the current value of a counter set with Incr.
func (c *Client) Count(ctx context.Context, key string) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	n, err := c.client.Get(ctx, key).Int64()
	if err != nil {
		return 0, nil
	}
	return n, nil
}

// Ping reports whether redis is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Close stops the local tier and closes the redis connection pool.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	if c.local != nil {
		c.local.Stop()
	}
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
