package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/richxcame/currency-exchange/pkg/config"
	"github.com/richxcame/currency-exchange/pkg/logger"
	"github.com/richxcame/currency-exchange/pkg/resilience"
	"go.uber.org/zap"
)

// ClientInterface is the subset of the Redis client used outside this package
type ClientInterface interface {
	redis.Cmdable
	Close() error
}

// Client wraps the Redis client
type Client struct {
	*redis.Client
}

// nonRetryableMessages are server replies that will not change on retry
var nonRetryableMessages = []string{
	"wrongtype",
	"err syntax",
	"err invalid",
	"noauth",
	"wrongpass",
	"noperm",
	"err unknown",
	"execabort",
}

// NewRedisClient creates a new Redis client
func NewRedisClient(cfg *config.RedisConfig) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := RetryableOperation(ctx, func(ctx context.Context) (string, error) {
		return client.Ping(ctx).Result()
	}, "redis.ping")
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("unable to connect to redis: %w", err)
	}

	return &Client{Client: client}, nil
}

// Close closes the Redis client
func (c *Client) Close() error {
	return c.Client.Close()
}

// ConservativeRetryConfig is the retry policy used for connection-level Redis calls
func ConservativeRetryConfig() resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    50 * time.Millisecond,
		MaxBackoff:        1 * time.Second,
		BackoffMultiplier: 2.0,
		EnableJitter:      true,
		RetryableChecker:  isRedisRetryable,
	}
}

// RetryableOperation runs a typed Redis operation under ConservativeRetryConfig
func RetryableOperation[T any](ctx context.Context, op func(ctx context.Context) (T, error), name string) (T, error) {
	var zero T

	result, err := resilience.Retry(ctx, ConservativeRetryConfig(), func(ctx context.Context) (interface{}, error) {
		return op(ctx)
	})
	if err != nil {
		logger.Warn("redis operation failed", zap.String("operation", name), zap.Error(err))
		return zero, err
	}

	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("redis operation %s returned unexpected type %T", name, result)
	}
	return typed, nil
}

// isRedisRetryable treats unknown errors as transient; only cancellation,
// cache misses and command/auth errors are final.
func isRedisRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, redis.Nil) {
		return false
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range nonRetryableMessages {
		if strings.Contains(msg, pattern) {
			return false
		}
	}

	return true
}
