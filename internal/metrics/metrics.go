// Package metrics defines the Prometheus collectors for the BGG layer.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/secondturn-games/second-turn-games-sub000/internal/cache"
)

var (
	// Upstream BGG API
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bgg_upstream_requests_total",
		Help: "Total number of requests sent to the BGG XML API.",
	}, []string{"endpoint", "status"}) // status: HTTP code or "error"

	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bgg_upstream_request_duration_seconds",
		Help:    "Duration of BGG XML API requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	// Cache
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bgg_cache_lookups_total",
		Help: "Total number of cache lookups.",
	}, []string{"store", "result"}) // result: hit, miss

	CacheEntries = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "bgg_cache_entries",
		Help: "Number of entries currently held per cache store.",
	}, []string{"store"})

	// Service
	SearchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bgg_search_duration_seconds",
		Help:    "Duration of uncached searches in seconds.",
		Buckets: prometheus.DefBuckets,
	})

	SearchFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bgg_search_fallbacks_total",
		Help: "Total number of failed searches, by whether a cached result was served.",
	}, []string{"outcome"}) // outcome: stale, failed
)

// RecordUpstream records one BGG round trip. It matches bgg.RequestObserver.
func RecordUpstream(endpoint string, status int, elapsed time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	UpstreamRequests.WithLabelValues(endpoint, label).Inc()
	UpstreamDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// RecordCacheLookup records one cache lookup. It matches cache.LookupObserver.
func RecordCacheLookup(store string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookups.WithLabelValues(store, result).Inc()
}

// RecordSearch records the duration of an uncached search.
func RecordSearch(elapsed time.Duration) {
	SearchDuration.Observe(elapsed.Seconds())
}

// RecordSearchFallback records a failed search and whether stale data was served.
func RecordSearchFallback(servedStale bool) {
	outcome := "failed"
	if servedStale {
		outcome = "stale"
	}
	SearchFallbacks.WithLabelValues(outcome).Inc()
}

// UpdateCacheMetrics refreshes the per-store entry gauges.
func UpdateCacheMetrics(stats cache.Stats) {
	CacheEntries.WithLabelValues(cache.StoreSearch).Set(float64(stats.SearchEntries))
	CacheEntries.WithLabelValues(cache.StoreDetails).Set(float64(stats.DetailsEntries))
	CacheEntries.WithLabelValues(cache.StoreMetadata).Set(float64(stats.MetadataEntries))
}
