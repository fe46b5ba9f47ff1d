package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vidtube/backend/internal/store"
)

var (
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vidtube_store_operation_duration_seconds",
			Help:    "Duration of entity store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "collection"},
	)

	StoreOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidtube_store_operation_errors_total",
			Help: "Total number of failed entity store operations",
		},
		[]string{"operation", "collection", "error_type"},
	)

	TogglesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidtube_toggles_total",
			Help: "Total number of completed toggles by target kind and resulting state",
		},
		[]string{"kind", "state"},
	)

	ToggleRacesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidtube_toggle_races_total",
			Help: "Concurrent toggle races resolved as no-ops",
		},
		[]string{"kind", "race"}, // "create_conflict", "delete_missing"
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidtube_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vidtube_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)

	RateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidtube_rate_limited_total",
			Help: "Total number of requests rejected by the toggle rate limiter",
		},
		[]string{"route"},
	)

	MediaBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vidtube_media_breaker_state",
			Help: "Media storage circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)
)

// RecordStoreOperation records the outcome of one entity store call.
func RecordStoreOperation(operation, collection string, duration time.Duration, err error) {
	StoreOperationDuration.WithLabelValues(operation, collection).Observe(duration.Seconds())
	if err != nil {
		StoreOperationErrors.WithLabelValues(operation, collection, storeErrorType(err)).Inc()
	}
}

// RecordToggle counts a completed toggle.
func RecordToggle(kind, state string) {
	TogglesTotal.WithLabelValues(kind, state).Inc()
}

// RecordToggleRace counts a benign race absorbed by a toggle.
func RecordToggleRace(kind, race string) {
	ToggleRacesTotal.WithLabelValues(kind, race).Inc()
}

// RecordHTTPRequest records a served request.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordRateLimited counts a request rejected by the rate limiter.
func RecordRateLimited(route string) {
	RateLimitedTotal.WithLabelValues(route).Inc()
}

// SetMediaBreakerState publishes the numeric state of a media breaker.
func SetMediaBreakerState(name string, state int) {
	MediaBreakerState.WithLabelValues(name).Set(float64(state))
}

// Label values stay bounded: store sentinels get their own bucket, everything else is "other".
func storeErrorType(err error) string {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return "not_found"
	case errors.Is(err, store.ErrConflict):
		return "conflict"
	default:
		return "other"
	}
}
