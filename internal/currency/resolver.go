package currency

import (
	"context"
	"errors"
	"time"

	"github.com/richxcame/currency-exchange/pkg/logger"
	"github.com/richxcame/currency-exchange/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// DefaultRateTTL is how long a fetched rate is served from cache
const DefaultRateTTL = 60 * time.Minute

// RateResolver looks rates up cache-aside over a RateFetcher, falling back
// to a stale cached value when every live source fails.
type RateResolver struct {
	cache   RateCache
	fetcher RateFetcher
	ttl     time.Duration
}

// NewRateResolver creates a resolver. A non-positive ttl selects DefaultRateTTL.
func NewRateResolver(cache RateCache, fetcher RateFetcher, ttl time.Duration) *RateResolver {
	if ttl <= 0 {
		ttl = DefaultRateTTL
	}
	return &RateResolver{cache: cache, fetcher: fetcher, ttl: ttl}
}

// TTL returns the cache lifetime applied to fetched rates
func (r *RateResolver) TTL() time.Duration {
	return r.ttl
}

// Resolve returns the rate converting one unit of source into target
func (r *RateResolver) Resolve(ctx context.Context, source, target CurrencyCode) (float64, error) {
	key := RateKey(source, target)

	ctx, span := tracing.Tracer("currency").Start(ctx, "RateResolver.Resolve")
	defer span.End()
	span.SetAttributes(attribute.String("rate.key", key))

	log := logger.WithContext(ctx).With(zap.String("key", key))

	// Exists and Get are separate calls; an entry expiring in between is
	// treated as a miss and resolved from the providers.
	if r.cache.Exists(ctx, key) {
		if rate, ok := r.cache.Get(ctx, key); ok {
			rateLookupsTotal.WithLabelValues("cache_hit").Inc()
			span.SetAttributes(attribute.String("rate.outcome", "cache_hit"))
			log.Debug("Rate served from cache", zap.Float64("rate", rate))
			return rate, nil
		}
	}

	rate, err := r.fetcher.FetchRate(ctx, source, target, key)
	if err == nil && !IsUsableRate(rate) {
		err = newKindError(ErrRateNotFound, "Provider returned unusable rate %v for %s", rate, key)
	}
	if err == nil {
		r.cache.Set(ctx, key, rate, r.ttl)
		rateLookupsTotal.WithLabelValues("provider").Inc()
		span.SetAttributes(attribute.String("rate.outcome", "provider"))
		log.Info("Rate fetched from providers", zap.Float64("rate", rate))
		return rate, nil
	}

	if stale, ok := r.cache.Get(ctx, key); ok {
		rateLookupsTotal.WithLabelValues("stale").Inc()
		span.SetAttributes(attribute.String("rate.outcome", "stale"))
		log.Warn("All providers failed, serving cached rate", zap.Float64("rate", stale), zap.Error(err))
		return stale, nil
	}

	rateLookupsTotal.WithLabelValues("failed").Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, "rate fetch failed")
	log.Error("All providers failed and no cached rate is available", zap.Error(err))

	var fetchErr *RateFetchError
	if errors.As(err, &fetchErr) {
		return 0, fetchErr
	}
	return 0, &RateFetchError{Source: source, Target: target, Err: err}
}
