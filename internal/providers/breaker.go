package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/richxcame/currency-exchange/internal/currency"
	"github.com/richxcame/currency-exchange/pkg/resilience"
)

// breakerProvider guards a provider with a circuit breaker
type breakerProvider struct {
	currency.RateProvider
	breaker *resilience.CircuitBreaker
}

// WithCircuitBreaker wraps p so that an unreachable API is skipped for a
// while instead of being called on every lookup. Answers that prove the API
// is reachable, such as an unlisted pair, do not count as failures.
func WithCircuitBreaker(p currency.RateProvider, settings resilience.Settings) currency.RateProvider {
	if settings.Name == "" {
		settings.Name = p.Name()
	}
	settings.IsFailure = isProviderOutage

	return &breakerProvider{
		RateProvider: p,
		breaker:      resilience.NewCircuitBreaker(settings, resilience.GracefulDegradation(p.Name())),
	}
}

// FetchRate implements currency.RateProvider
func (p *breakerProvider) FetchRate(ctx context.Context, source, target currency.CurrencyCode, key string) (float64, error) {
	result, err := p.breaker.Execute(ctx, func(ctx context.Context) (interface{}, error) {
		return p.RateProvider.FetchRate(ctx, source, target, key)
	})
	if err != nil {
		if errors.Is(err, resilience.ErrCircuitOpen) {
			return 0, fmt.Errorf("%s: %w", p.Name(), err)
		}
		return 0, err
	}

	return result.(float64), nil
}

func isProviderOutage(err error) bool {
	switch {
	case errors.Is(err, currency.ErrUnsupportedBaseCurrency),
		errors.Is(err, currency.ErrRateNotFound),
		errors.Is(err, context.Canceled):
		return false
	default:
		return true
	}
}
