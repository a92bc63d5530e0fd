// Package providers fetches live exchange rates from external APIs.
package providers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/richxcame/currency-exchange/internal/currency"
	"github.com/richxcame/currency-exchange/pkg/logger"
	"github.com/richxcame/currency-exchange/pkg/resilience"
	"github.com/richxcame/currency-exchange/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var errNoProviders = errors.New("no rate providers configured")

// Chain asks each provider in order and returns the first usable rate
type Chain struct {
	providers []currency.RateProvider
}

// NewChain creates a chain over providers. The order is fixed.
func NewChain(providers ...currency.RateProvider) *Chain {
	ps := make([]currency.RateProvider, len(providers))
	copy(ps, providers)
	return &Chain{providers: ps}
}

// Names returns the provider names in the order they are tried
func (c *Chain) Names() []string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return names
}

// FetchRate implements currency.RateFetcher. Each provider is tried once;
// errors, open breakers and unusable rates move on to the next one.
func (c *Chain) FetchRate(ctx context.Context, source, target currency.CurrencyCode, key string) (float64, error) {
	ctx, span := tracing.Tracer("providers").Start(ctx, "Chain.FetchRate")
	defer span.End()
	span.SetAttributes(attribute.String("rate.key", key))

	log := logger.WithContext(ctx).With(zap.String("key", key))

	var lastErr error
	for _, p := range c.providers {
		name := p.Name()

		start := time.Now()
		rate, err := p.FetchRate(ctx, source, target, key)
		providerRequestDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

		switch {
		case errors.Is(err, currency.ErrUnsupportedBaseCurrency):
			providerRequestsTotal.WithLabelValues(name, "skipped").Inc()
			log.Debug("Provider does not support base currency", zap.String("provider", name))
			lastErr = err
			continue
		case errors.Is(err, resilience.ErrCircuitOpen):
			providerRequestsTotal.WithLabelValues(name, "circuit_open").Inc()
			log.Warn("Rate provider circuit open, skipping", zap.String("provider", name))
			lastErr = err
			continue
		case err != nil:
			providerRequestsTotal.WithLabelValues(name, "error").Inc()
			log.Warn("Rate provider failed", zap.String("provider", name), zap.Error(err))
			lastErr = err
			continue
		case !currency.IsUsableRate(rate):
			providerRequestsTotal.WithLabelValues(name, "invalid").Inc()
			log.Warn("Rate provider returned unusable rate", zap.String("provider", name), zap.Float64("rate", rate))
			lastErr = fmt.Errorf("%s: unusable rate %v", name, rate)
			continue
		}

		providerRequestsTotal.WithLabelValues(name, "success").Inc()
		span.SetAttributes(attribute.String("rate.provider", name))
		return rate, nil
	}

	if lastErr == nil {
		lastErr = errNoProviders
	}
	span.RecordError(lastErr)
	span.SetStatus(codes.Error, "all providers failed")

	return 0, &currency.RateFetchError{Source: source, Target: target, Err: lastErr}
}
