package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"fest-backend/internal/domain"
	"fest-backend/pkg/metrics"
	"fest-backend/pkg/redis"

	"go.uber.org/zap"
)

// ErrCacheDisabled is returned by Health when no Redis client is configured.
var ErrCacheDisabled = errors.New("cache disabled")

// CacheService provides cache-aside reads for the event catalogue and round
// result pages. A nil Redis client turns every read into a pass-through.
type CacheService struct {
	redis      *redis.Client
	metrics    *metrics.Metrics
	logger     *zap.Logger
	eventsTTL  time.Duration
	resultsTTL time.Duration
}

// NewCacheService creates a new cache service. Zero TTLs fall back to the redis package defaults.
func NewCacheService(redisClient *redis.Client, m *metrics.Metrics, logger *zap.Logger, eventsTTL, resultsTTL time.Duration) *CacheService {
	if eventsTTL <= 0 {
		eventsTTL = redis.TTLEvents
	}
	if resultsTTL <= 0 {
		resultsTTL = redis.TTLResults
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{
		redis:      redisClient,
		metrics:    m,
		logger:     logger,
		eventsTTL:  eventsTTL,
		resultsTTL: resultsTTL,
	}
}

func (c *CacheService) enabled() bool {
	return c != nil && c.redis != nil
}

// getOrLoad serves key from Redis when present and decodable, otherwise
// calls load and stores its result. Cache failures never fail the read.
// Callers check enabled first.
func getOrLoad[T any](ctx context.Context, c *CacheService, cache, key string, ttl time.Duration, load func(ctx context.Context) (T, error)) (T, error) {
	cached, err := c.redis.Get(ctx, key)
	switch {
	case err == nil && cached != "":
		var v T
		unmarshalErr := json.Unmarshal([]byte(cached), &v)
		if unmarshalErr == nil {
			c.metrics.CacheLookup(cache, true)
			return v, nil
		}
		c.logger.Warn("Cache entry corrupted, falling back to database",
			zap.String("cache", cache),
			zap.Error(unmarshalErr))
	case err != nil && !errors.Is(err, redis.Nil):
		c.logger.Warn("Cache error, falling back to database",
			zap.String("cache", cache),
			zap.Error(err))
	}
	c.metrics.CacheLookup(cache, false)

	v, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("Failed to marshal value for caching", zap.String("cache", cache), zap.Error(err))
		return v, nil
	}
	if err := c.redis.Set(ctx, key, string(data), ttl); err != nil {
		c.logger.Error("Failed to populate cache", zap.String("cache", cache), zap.Error(err))
	}
	return v, nil
}

// GetEventsVerbose retrieves the full catalogue with cache-aside.
func (c *CacheService) GetEventsVerbose(ctx context.Context, load func(ctx context.Context) ([]*domain.EventAggregate, error)) ([]*domain.EventAggregate, error) {
	if !c.enabled() {
		return load(ctx)
	}
	return getOrLoad(ctx, c, "events", c.redis.KeyBuilder.KeyEventsVerbose(), c.eventsTTL, load)
}

// GetEventVerbose retrieves one event aggregate with cache-aside.
func (c *CacheService) GetEventVerbose(ctx context.Context, eventID string, load func(ctx context.Context) (*domain.EventAggregate, error)) (*domain.EventAggregate, error) {
	if !c.enabled() {
		return load(ctx)
	}
	return getOrLoad(ctx, c, "event", c.redis.KeyBuilder.KeyEventByID(eventID), c.eventsTTL, load)
}

// GetRoundResultsPage retrieves one page of a round's results with cache-aside.
func (c *CacheService) GetRoundResultsPage(ctx context.Context, roundID string, page, pageSize int, load func(ctx context.Context) (*ResultsPage, error)) (*ResultsPage, error) {
	if !c.enabled() {
		return load(ctx)
	}
	key := c.redis.KeyBuilder.KeyRoundResultsPage(roundID, page, pageSize)
	return getOrLoad(ctx, c, "results", key, c.resultsTTL, load)
}

// InvalidateEvents drops the catalogue and, when eventID is set, that event's entry.
func (c *CacheService) InvalidateEvents(ctx context.Context, eventID string) {
	if !c.enabled() {
		return
	}
	keys := []string{c.redis.KeyBuilder.KeyEventsVerbose()}
	if eventID != "" {
		keys = append(keys, c.redis.KeyBuilder.KeyEventByID(eventID))
	}
	if err := c.redis.Delete(ctx, keys...); err != nil {
		c.logger.Error("Failed to invalidate event caches", zap.Strings("keys", keys), zap.Error(err))
	}
}

// InvalidateRoundResults drops every cached page of the round.
func (c *CacheService) InvalidateRoundResults(ctx context.Context, roundID string) {
	if !c.enabled() {
		return
	}
	pattern := c.redis.KeyBuilder.KeyRoundResultsAll(roundID)
	n, err := c.redis.InvalidatePattern(ctx, pattern)
	if err != nil {
		c.logger.Error("Failed to invalidate round results", zap.String("round_id", roundID), zap.Error(err))
		return
	}
	c.logger.Debug("Round results invalidated", zap.String("round_id", roundID), zap.Int("keys", n))
}

// Health pings Redis. It returns ErrCacheDisabled when caching is off.
func (c *CacheService) Health(ctx context.Context) error {
	if !c.enabled() {
		return ErrCacheDisabled
	}
	start := time.Now()
	err := c.redis.Health(ctx)
	duration := time.Since(start)

	if err != nil {
		c.logger.Error("Cache health check failed",
			zap.Duration("duration", duration),
			zap.Error(err))
		return err
	}

	c.logger.Debug("Cache health check passed", zap.Duration("duration", duration))
	return nil
}
