package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Nil is returned by Get on a cache miss.
const Nil = redis.Nil

// Default TTLs, overridable through configuration.
const (
	TTLEvents  = 5 * time.Minute
	TTLResults = 30 * time.Second
)

const scanBatch = 100

// Client is a thin logging wrapper over go-redis used as a read-through
// cache. Callers treat every error as a miss.
type Client struct {
	rdb        *redis.Client
	KeyBuilder *KeyBuilder
	log        *zap.Logger
}

// NewClient parses redisURL, applies pool settings and pings the server.
func NewClient(redisURL string, environment string, log *zap.Logger) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	opts.PoolSize = 50
	opts.MinIdleConns = 5
	opts.MaxRetries = 3
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(context.Background(), opts.DialTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if log == nil {
		log = zap.NewNop()
	}
	return &Client{rdb: rdb, KeyBuilder: NewKeyBuilder(environment), log: log.Named("redis")}, nil
}

// observe logs a finished command. Failures go out at info so a flapping
// cache is visible without debug logging; misses are not failures.
func (c *Client) observe(op, key string, started time.Time, err error, extra ...zap.Field) {
	fields := append([]zap.Field{
		zap.String("op", op),
		zap.Duration("duration", time.Since(started)),
	}, extra...)
	if key != "" {
		fields = append(fields, zap.String("key_prefix", truncateKey(key)))
	}

	if err != nil && !errors.Is(err, redis.Nil) {
		c.log.Info("redis command failed", append(fields, zap.Error(err))...)
		return
	}
	c.log.Debug("redis command", fields...)
}

func (c *Client) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

// Get returns the value at key, or Nil when it is absent.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	started := time.Now()
	val, err := c.rdb.Get(ctx, key).Result()
	c.observe("get", key, started, err, zap.Bool("hit", err == nil))
	return val, err
}

func (c *Client) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	started := time.Now()
	err := c.rdb.Set(ctx, key, value, ttl).Err()
	c.observe("set", key, started, err)
	return err
}

func (c *Client) Delete(ctx context.Context, keys ...string) error {
	started := time.Now()
	err := c.rdb.Del(ctx, keys...).Err()
	c.observe("del", "", started, err, zap.Int("keys", len(keys)))
	return err
}

// Health pings the server.
func (c *Client) Health(ctx context.Context) error {
	started := time.Now()
	err := c.rdb.Ping(ctx).Err()
	c.observe("ping", "", started, err)
	return err
}

// InvalidatePattern deletes every key matching a glob pattern, walking the
// keyspace with SCAN rather than KEYS.
func (c *Client) InvalidatePattern(ctx context.Context, pattern string) (int, error) {
	started := time.Now()
	removed := 0
	iter := c.rdb.Scan(ctx, 0, pattern, scanBatch).Iterator()

	batch := make([]string, 0, scanBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := c.rdb.Del(ctx, batch...).Err(); err != nil {
			return err
		}
		removed += len(batch)
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatch {
			if err := flush(); err != nil {
				c.observe("invalidate", pattern, started, err)
				return removed, err
			}
		}
	}
	err := iter.Err()
	if err == nil {
		err = flush()
	}
	c.observe("invalidate", pattern, started, err, zap.Int("removed", removed))
	return removed, err
}

func truncateKey(key string) string {
	const limit = 24
	if len(key) <= limit {
		return key
	}
	return key[:limit] + "…"
}
