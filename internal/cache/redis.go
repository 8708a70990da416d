// Package cache provides an optional Redis-backed response cache for dose
// computations. Results are deterministic functions of the request body and
// the factor data version, so cached entries never go stale within a version.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/icrp103-dose-server/internal/domain"
)

// Client wraps a Redis client with get/set helpers for serialized dose
// responses keyed by request digest.
type Client struct {
	redis      *redis.Client
	defaultTTL time.Duration
}

// NewClient creates a cache client and verifies connectivity.
func NewClient(cfg domain.CacheConfig) (*Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.PoolTimeout = cfg.PoolTimeout
	opts.MaxRetries = cfg.MaxRetries

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{
		redis:      client,
		defaultTTL: cfg.DefaultTTL,
	}, nil
}

// Key derives the cache key for a dose computation: the endpoint mode, the
// factor data version, and the SHA-256 digest of the raw request body.
func Key(mode, factorVersion string, body []byte) string {
	digest := sha256.Sum256(body)
	return fmt.Sprintf("dose:%s:%s:%s", mode, factorVersion, hex.EncodeToString(digest[:]))
}

// Get retrieves a cached serialized response. The second return value is
// false on a miss.
func (c *Client) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cached response: %w", err)
	}
	return val, true, nil
}

// Set stores a serialized response under key with the default TTL.
func (c *Client) Set(ctx context.Context, key string, payload []byte) error {
	if err := c.redis.Set(ctx, key, payload, c.defaultTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache response: %w", err)
	}
	return nil
}

// Close releases the underlying Redis connection pool.
func (c *Client) Close() error {
	return c.redis.Close()
}
