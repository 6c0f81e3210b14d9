package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FeeCacheHits counts day-cache hits per provider.
	FeeCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "revenue_fee_cache_hits_total",
		Help: "Fee day-cache hits by provider",
	}, []string{"service"})

	// FeeCacheMisses counts day-cache misses per provider.
	FeeCacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "revenue_fee_cache_misses_total",
		Help: "Fee day-cache misses by provider",
	}, []string{"service"})

	// ProviderFetchDuration tracks end-to-end getFees latency per provider.
	ProviderFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "revenue_provider_fetch_duration_seconds",
		Help:    "Provider getFees duration",
		Buckets: prometheus.DefBuckets,
	}, []string{"service", "outcome"})

	// ProviderFailures counts hard provider failures seen by the aggregator.
	ProviderFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "revenue_provider_failures_total",
		Help: "Hard provider failures during aggregation",
	}, []string{"service"})
)
