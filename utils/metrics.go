package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_operation_duration_seconds",
			Help:    "Duration of database operations",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation", "collection"},
	)

	// Tracking Metrics
	TrackedClicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracked_clicks_total",
			Help: "Total number of ingested click events",
		},
		[]string{"page"},
	)

	DeviceUpsertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "device_upserts_total",
			Help: "Total number of device upserts by outcome",
		},
		[]string{"result"}, // created, updated, retried
	)

	// Cache Metrics
	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_operations_total",
			Help: "Total number of cache lookups by outcome",
		},
		[]string{"cache", "hit"},
	)

	// Error Metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors by type and reason",
		},
		[]string{"type", "reason"},
	)
)

// TrackDBOperation tracks database operation duration
func TrackDBOperation(operation, collection string) *prometheus.Timer {
	return prometheus.NewTimer(DBOperationDuration.WithLabelValues(operation, collection))
}

// TrackClick increments the ingested-clicks counter
func TrackClick(page string) {
	TrackedClicksTotal.WithLabelValues(page).Inc()
}

// TrackDeviceUpsert records the outcome of a device upsert
func TrackDeviceUpsert(result string) {
	DeviceUpsertsTotal.WithLabelValues(result).Inc()
}

// TrackCacheOperation records a cache hit or miss
func TrackCacheOperation(cache string, hit bool) {
	if hit {
		CacheOperationsTotal.WithLabelValues(cache, "hit").Inc()
	} else {
		CacheOperationsTotal.WithLabelValues(cache, "miss").Inc()
	}
}

// TrackError increments the error counter by type and reason
func TrackError(errorType, reason string) {
	ErrorsTotal.WithLabelValues(errorType, reason).Inc()
}
