// Package cache provides the Redis access layer: login throttling,
// revoked session tokens and the cached project list.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options tunes the Redis connection pool.
// Zero fields keep the DefaultOptions value.
type Options struct {
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	// OpTimeout bounds each read and write.
	OpTimeout time.Duration
}

// DefaultOptions suits the API server: light traffic, short operations.
func DefaultOptions() Options {
	return Options{
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  2 * time.Second,
		OpTimeout:    500 * time.Millisecond,
	}
}

// Cache provides Redis cache access methods.
type Cache struct {
	client *redis.Client
}

// New creates a new Cache with a Redis client.
func New(ctx context.Context, redisURL string, opts Options) (*Cache, error) {
	opt, err := clientOptions(redisURL, opts)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &Cache{client: client}, nil
}

func clientOptions(redisURL string, opts Options) (*redis.Options, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	def := DefaultOptions()
	if opts.PoolSize <= 0 {
		opts.PoolSize = def.PoolSize
	}
	if opts.MinIdleConns < 0 || opts.MinIdleConns > opts.PoolSize {
		opts.MinIdleConns = min(def.MinIdleConns, opts.PoolSize)
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = def.DialTimeout
	}
	if opts.OpTimeout <= 0 {
		opts.OpTimeout = def.OpTimeout
	}

	opt.PoolSize = opts.PoolSize
	opt.MinIdleConns = opts.MinIdleConns
	opt.DialTimeout = opts.DialTimeout
	opt.ReadTimeout = opts.OpTimeout
	opt.WriteTimeout = opts.OpTimeout
	opt.PoolTimeout = opts.DialTimeout + opts.OpTimeout
	opt.ConnMaxIdleTime = 5 * time.Minute
	return opt, nil
}

// Ping checks Redis connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Client returns the underlying Redis client for tests and maintenance tools.
func (c *Cache) Client() *redis.Client {
	return c.client
}
