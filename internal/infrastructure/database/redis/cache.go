package redis

import (
	"context"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/newdrug-response/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/newdrug-response/pkg/errors"
)

// FingerprintCache stores serialized fingerprints under a common key prefix.
// It satisfies molecule.FingerprintStore.
type FingerprintCache struct {
	client     *Client
	logger     logging.Logger
	prefix     string
	defaultTTL time.Duration
	jitter     func() float64
}

// CacheOption configures a FingerprintCache.
type CacheOption func(*FingerprintCache)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) CacheOption {
	return func(c *FingerprintCache) { c.prefix = prefix }
}

// WithDefaultTTL sets the entry lifetime.  Zero keeps entries forever.
func WithDefaultTTL(ttl time.Duration) CacheOption {
	return func(c *FingerprintCache) { c.defaultTTL = ttl }
}

// NewFingerprintCache builds a cache on client.
func NewFingerprintCache(client *Client, log logging.Logger, opts ...CacheOption) *FingerprintCache {
	if log == nil {
		log = logging.NewNopLogger()
	}
	c := &FingerprintCache{
		client:     client,
		logger:     log,
		prefix:     "newdrug:fp:",
		defaultTTL: 7 * 24 * time.Hour,
		jitter:     rand.Float64,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *FingerprintCache) fullKey(key string) string {
	return c.prefix + key
}

// jitterTTL spreads expiry by ±10% so entries written by one run do not all
// expire together.
func (c *FingerprintCache) jitterTTL(ttl time.Duration) time.Duration {
	if ttl == 0 {
		return 0
	}
	jitter := float64(ttl) * 0.1 * (c.jitter()*2 - 1)
	return ttl + time.Duration(jitter)
}

// MGet returns the values of the keys that exist.
func (c *FingerprintCache) MGet(ctx context.Context, keys []string) (map[string][]byte, error) {
	if len(keys) == 0 {
		return map[string][]byte{}, nil
	}
	if c.client.isClosed() {
		return nil, ErrClientClosed
	}

	pipe := c.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(keys))
	for i, k := range keys {
		cmds[i] = pipe.Get(ctx, c.fullKey(k))
	}
	// Exec reports redis.Nil for any missing key; per-command errors are
	// inspected below.
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, errors.Wrap(err, errors.CodeCache, "fingerprint cache read failed")
	}

	result := make(map[string][]byte, len(keys))
	for i, cmd := range cmds {
		b, err := cmd.Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeCache, "fingerprint cache read failed").WithDetail(keys[i])
		}
		result[keys[i]] = b
	}
	return result, nil
}

// MSet writes every item with the default TTL in one pipeline.
func (c *FingerprintCache) MSet(ctx context.Context, items map[string][]byte) error {
	if len(items) == 0 {
		return nil
	}
	if c.client.isClosed() {
		return ErrClientClosed
	}

	ttl := c.jitterTTL(c.defaultTTL)
	pipe := c.client.Pipeline()
	for k, v := range items {
		pipe.Set(ctx, c.fullKey(k), v, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, errors.CodeCache, "fingerprint cache write failed")
	}
	return nil
}

// Delete removes keys.
func (c *FingerprintCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	fullKeys := make([]string, len(keys))
	for i, k := range keys {
		fullKeys[i] = c.fullKey(k)
	}
	if err := c.client.GetUnderlyingClient().Del(ctx, fullKeys...).Err(); err != nil {
		return errors.Wrap(err, errors.CodeCache, "fingerprint cache delete failed")
	}
	return nil
}

// Ping checks the underlying connection.
func (c *FingerprintCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx)
}

//Personal.AI order the ending
