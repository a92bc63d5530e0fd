package resilience

import (
	"context"
	"errors"

	"github.com/richxcame/currency-exchange/pkg/logger"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// ErrCircuitOpen is returned when a breaker rejects a call without running it
var ErrCircuitOpen = errors.New("circuit breaker open")

// CircuitBreaker stops calling a dependency after consecutive failures and
// probes it again once Settings.Timeout has passed.
type CircuitBreaker struct {
	name     string
	breaker  *gobreaker.CircuitBreaker
	fallback FallbackFunc
}

// NewCircuitBreaker creates a breaker. A nil fallback selects RejectFallback.
func NewCircuitBreaker(settings Settings, fallback FallbackFunc) *CircuitBreaker {
	name := breakerName(settings.Name)
	if fallback == nil {
		fallback = RejectFallback
	}

	threshold := settings.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	isFailure := settings.IsFailure

	b := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: settings.SuccessThreshold,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			observeTransition(name, from, to)
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || (isFailure != nil && !isFailure(err))
		},
	})
	observeState(name, b.State())

	return &CircuitBreaker{name: name, breaker: b, fallback: fallback}
}

// Name returns the breaker name used in metrics and logs
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// State returns the current breaker state
func (cb *CircuitBreaker) State() gobreaker.State {
	return cb.breaker.State()
}

// Execute runs op through the breaker. While the breaker is open, or
// half-open with its probe quota used, the fallback runs instead of op.
func (cb *CircuitBreaker) Execute(ctx context.Context, op Operation) (interface{}, error) {
	result, err := cb.breaker.Execute(func() (interface{}, error) {
		return op(ctx)
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		observeCall(cb.name, "rejected")
		return cb.fallback(ctx, err)
	case err != nil:
		observeCall(cb.name, "error")
	default:
		observeCall(cb.name, "success")
	}

	return result, err
}
