package providers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	providerRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exchange_provider_requests_total",
			Help: "Rate provider calls by provider and outcome (success, error, invalid, skipped)",
		},
		[]string{"provider", "outcome"},
	)

	providerRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "exchange_provider_request_duration_seconds",
			Help:    "Rate provider call latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)
)
