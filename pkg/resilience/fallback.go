package resilience

import (
	"context"

	"github.com/richxcame/currency-exchange/pkg/logger"
	"go.uber.org/zap"
)

// FallbackFunc runs instead of the operation while the breaker rejects calls.
// err is the rejection reported by the breaker.
type FallbackFunc func(ctx context.Context, err error) (interface{}, error)

// RejectFallback fails fast with ErrCircuitOpen
func RejectFallback(ctx context.Context, err error) (interface{}, error) {
	return nil, ErrCircuitOpen
}

// GracefulDegradation fails fast with ErrCircuitOpen after logging which
// dependency is being skipped, leaving the caller to pick an alternative.
func GracefulDegradation(dependency string) FallbackFunc {
	return func(ctx context.Context, err error) (interface{}, error) {
		logger.WithContext(ctx).Warn("Circuit breaker open, skipping dependency",
			zap.String("dependency", dependency),
			zap.Error(err),
		)
		return nil, ErrCircuitOpen
	}
}
