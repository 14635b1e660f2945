package shared

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "priceboard_cache_hits_total",
			Help: "Total number of cache hits per source",
		},
		[]string{"source"},
	)

	CacheMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "priceboard_cache_misses_total",
			Help: "Total number of cache misses per source",
		},
		[]string{"source"},
	)

	CacheRefreshFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "priceboard_cache_refresh_failures_total",
			Help: "Total number of failed refreshes per source",
		},
		[]string{"source"},
	)

	CacheStaleServedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "priceboard_cache_stale_served_total",
			Help: "Total number of stale values served after a failed refresh",
		},
		[]string{"source"},
	)

	CacheAgeSeconds = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "priceboard_cache_age_seconds",
			Help: "Age of the last successfully refreshed value per source",
		},
		[]string{"source"},
	)

	UpstreamRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "priceboard_upstream_request_duration_seconds",
			Help:    "Upstream fetch duration in seconds per source",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	TokenRefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "priceboard_token_refreshes_total",
			Help: "Total number of access token refreshes by outcome",
		},
		[]string{"outcome"},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "priceboard_api_requests_total",
			Help: "Total number of API requests per endpoint and status code",
		},
		[]string{"endpoint", "status"},
	)
)

// ObserveUpstreamRequest records the duration of one upstream fetch for a source
func ObserveUpstreamRequest(source string, startedAt time.Time) {
	UpstreamRequestDurationSeconds.WithLabelValues(source).Observe(time.Since(startedAt).Seconds())
}

// UpdateCacheAges publishes the current cached-value age for each source that
// has at least one successful refresh behind it
func UpdateCacheAges(ages map[string]time.Duration) {
	for source, age := range ages {
		CacheAgeSeconds.WithLabelValues(source).Set(age.Seconds())
	}
}
