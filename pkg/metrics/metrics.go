package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "packing_advisor"

// Weather lookup outcomes.
const (
	OutcomeCache    = "cache"
	OutcomeProvider = "provider"
	OutcomeFallback = "fallback"
	OutcomeError    = "error"
)

var (
	// PackingListsGenerated counts packing lists by luggage size.
	PackingListsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "packing_lists_generated_total",
		Help:      "Packing lists generated, by luggage size.",
	}, []string{"luggage_size"})

	// PackingItemsListed observes how many entries each generated list holds.
	PackingItemsListed = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "packing_list_items",
		Help:      "Entries per generated packing list.",
		Buckets:   []float64{5, 10, 15, 20, 25, 30, 40},
	})

	// WeatherLookups counts forecast lookups by outcome.
	WeatherLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "weather_lookups_total",
		Help:      "Forecast lookups by outcome (cache, provider, fallback, error).",
	}, []string{"outcome"})

	// UpstreamDuration observes upstream weather API latency.
	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Latency of upstream weather API requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint", "status"})

	// BreakerState reports the circuit breaker state: 0 closed, 1 half-open, 2 open.
	BreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "circuit_breaker_state",
		Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open).",
	}, []string{"name"})

	// HTTPRequests counts served HTTP requests.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route and status.",
	}, []string{"method", "route", "status"})
)
