package currency

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/richxcame/currency-exchange/pkg/logger"
	"go.uber.org/zap"
)

const (
	rateKeyPrefix  = "exchange:rate:"
	staleKeyPrefix = "exchange:rate:stale:"

	// DefaultStaleRetention is how long a rate stays available as a fallback after it expires
	DefaultStaleRetention = 24 * time.Hour
)

// RedisRateCache is a RateCache backed by Redis. Each Set writes a fresh
// entry with the requested TTL and a stale copy that outlives it so that Get
// can still serve the last known rate after expiry.
type RedisRateCache struct {
	client         redis.Cmdable
	staleRetention time.Duration
}

// NewRedisRateCache creates a Redis backed rate cache. A non-positive
// staleRetention disables the stale copy.
func NewRedisRateCache(client redis.Cmdable, staleRetention time.Duration) *RedisRateCache {
	return &RedisRateCache{client: client, staleRetention: staleRetention}
}

// Get returns the fresh rate for key, or the stale copy when the fresh entry is gone
func (c *RedisRateCache) Get(ctx context.Context, key string) (float64, bool) {
	if rate, ok := c.read(ctx, rateKeyPrefix+key); ok {
		return rate, true
	}
	if c.staleRetention <= 0 {
		return 0, false
	}
	return c.read(ctx, staleKeyPrefix+key)
}

// Exists reports whether a fresh entry exists for key
func (c *RedisRateCache) Exists(ctx context.Context, key string) bool {
	n, err := c.client.Exists(ctx, rateKeyPrefix+key).Result()
	if err != nil {
		rateCacheErrorsTotal.WithLabelValues("exists").Inc()
		logger.WithContext(ctx).Warn("Rate cache exists check failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return n > 0
}

// Set stores rate under key for ttl
func (c *RedisRateCache) Set(ctx context.Context, key string, rate float64, ttl time.Duration) {
	value := strconv.FormatFloat(rate, 'f', -1, 64)

	if err := c.client.Set(ctx, rateKeyPrefix+key, value, ttl).Err(); err != nil {
		rateCacheErrorsTotal.WithLabelValues("set").Inc()
		logger.WithContext(ctx).Warn("Rate cache write failed", zap.String("key", key), zap.Error(err))
		return
	}

	if c.staleRetention <= 0 {
		return
	}
	if err := c.client.Set(ctx, staleKeyPrefix+key, value, ttl+c.staleRetention).Err(); err != nil {
		rateCacheErrorsTotal.WithLabelValues("set_stale").Inc()
		logger.WithContext(ctx).Warn("Rate cache stale write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *RedisRateCache) read(ctx context.Context, redisKey string) (float64, bool) {
	value, err := c.client.Get(ctx, redisKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			rateCacheErrorsTotal.WithLabelValues("get").Inc()
			logger.WithContext(ctx).Warn("Rate cache read failed", zap.String("key", redisKey), zap.Error(err))
		}
		return 0, false
	}

	rate, err := strconv.ParseFloat(value, 64)
	if err != nil || !IsUsableRate(rate) {
		rateCacheErrorsTotal.WithLabelValues("decode").Inc()
		logger.WithContext(ctx).Warn("Discarding unusable cached rate", zap.String("key", redisKey), zap.String("value", value))
		return 0, false
	}
	return rate, true
}

// IsUsableRate reports whether rate is finite and positive
func IsUsableRate(rate float64) bool {
	return !math.IsNaN(rate) && !math.IsInf(rate, 0) && rate > 0
}
