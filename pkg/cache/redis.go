// Package cache stores oracle answers in Redis so identical ranking prompts
// are not paid for twice within a TTL.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// DefaultPrefix namespaces feed keys in a shared Redis.
const DefaultPrefix = "feed:"

// Client is what the oracle decorators need from a cache.
type Client interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// PoolSize of zero keeps go-redis' default of 10 per CPU.
	PoolSize int
	Prefix   string
}

// RedisClient is a Client over one Redis database. Keys are prefixed so
// several deployments can share an instance.
type RedisClient struct {
	client *redis.Client
	prefix string
	hits   atomic.Int64
	misses atomic.Int64
}

// Stats counts lookups since the client was created.
type Stats struct {
	Hits   int64
	Misses int64
}

// NewRedisClient connects and pings. An unreachable server is an error so a
// misconfigured cache is caught at startup rather than on the first feed.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*RedisClient, error) {
	opts := &redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s: %w", cfg.Addr, err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &RedisClient{client: client, prefix: prefix}, nil
}

func (c *RedisClient) key(k string) string { return c.prefix + k }

func (c *RedisClient) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.key(key)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		c.misses.Add(1)
		return nil, ErrCacheMiss
	case err != nil:
		return nil, fmt.Errorf("cache get: %w", err)
	}
	c.hits.Add(1)
	return val, nil
}

// Set stores value for ttl. A zero ttl keeps the key until evicted.
func (c *RedisClient) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (c *RedisClient) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

func (c *RedisClient) Close() error {
	return c.client.Close()
}
