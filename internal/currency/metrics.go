package currency

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rateLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exchange_rate_lookups_total",
			Help: "Rate resolutions by outcome (cache_hit, provider, stale, failed)",
		},
		[]string{"outcome"},
	)

	rateCacheErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exchange_rate_cache_errors_total",
			Help: "Rate cache operations that failed and were ignored",
		},
		[]string{"operation"},
	)

	conversionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exchange_conversions_total",
			Help: "Currency conversions by mode and status",
		},
		[]string{"mode", "status"},
	)

	batchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "exchange_batch_rows",
			Help:    "Number of rows per batch conversion",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)
)
