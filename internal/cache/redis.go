// Package cache provides the Redis-backed session store and rate limiter.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultNamespace prefixes every key this package writes.
const DefaultNamespace = "ft:"

// Cache provides Redis access methods.
type Cache struct {
	client    *redis.Client
	namespace string
}

// Option configures a Cache.
type Option func(*Cache)

// WithNamespace overrides DefaultNamespace, e.g. to share one Redis between
// deployments.
func WithNamespace(ns string) Option {
	return func(c *Cache) { c.namespace = ns }
}

// New connects to Redis and verifies the connection with a ping.
func New(ctx context.Context, redisURL string, opts ...Option) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	// Sessions are touched on every authenticated request.
	opt.PoolSize = 20
	opt.MinIdleConns = 2
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return NewFromClient(client, opts...), nil
}

// NewFromClient wraps an existing client without pinging it.
func NewFromClient(client *redis.Client, opts ...Option) *Cache {
	c := &Cache{client: client, namespace: DefaultNamespace}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ping checks Redis connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Client returns the underlying Redis client.
func (c *Cache) Client() *redis.Client {
	return c.client
}

// key builds a namespaced key.
func (c *Cache) key(prefix, id string) string {
	return c.namespace + prefix + id
}

// hashKey derives a Redis key suffix from identifiers that contain client
// IPs or usernames, so those never appear in the keyspace.
func hashKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:16]) // 32 hex chars
}
