package prometheus

import (
	"sync"
	"time"

	"hotel-service/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   prometheus.CounterVec
	HttpRequestDuration prometheus.HistogramVec

	// Database operation metrics
	DbOperationDuration prometheus.HistogramVec

	// Availability engine metrics
	AvailabilityQueriesCounter prometheus.CounterVec
	BookingOperationsCounter   prometheus.CounterVec

	// Reconciliation job metrics
	ReconcileRunsCounter prometheus.CounterVec
	ReconcileDuration    prometheus.Histogram

	// KPI aggregator metrics
	KpiRequestsCounter prometheus.Counter

	initOnce sync.Once
)

// InitMetrics initializes Prometheus metrics with configuration. Safe to call
// more than once; only the first call registers.
func InitMetrics(cfg *config.Config) {
	initOnce.Do(func() {
		prefix := cfg.Metrics.Prefix

		HttpRequestsTotal = *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		)

		HttpRequestDuration = *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		)

		DbOperationDuration = *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_db_operation_duration_seconds",
				Help:    "Duration of database operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation_type"},
		)

		AvailabilityQueriesCounter = *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_availability_queries_total",
				Help: "Total number of live availability queries",
			},
			[]string{"operation"},
		)

		BookingOperationsCounter = *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_booking_operations_total",
				Help: "Total number of booking attempts by outcome",
			},
			[]string{"outcome"},
		)

		ReconcileRunsCounter = *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_reconcile_runs_total",
				Help: "Total number of room-status reconciliation runs by result",
			},
			[]string{"result"},
		)

		ReconcileDuration = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    prefix + "_reconcile_duration_seconds",
				Help:    "Duration of room-status reconciliation runs in seconds",
				Buckets: prometheus.DefBuckets,
			},
		)

		KpiRequestsCounter = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "_kpi_requests_total",
				Help: "Total number of KPI report requests",
			},
		)
	})
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordAvailabilityQuery increments the counter for availability queries
func RecordAvailabilityQuery(operation string) {
	AvailabilityQueriesCounter.WithLabelValues(operation).Inc()
}

// RecordBookingOperation increments the counter for booking attempts
func RecordBookingOperation(outcome string) {
	BookingOperationsCounter.WithLabelValues(outcome).Inc()
}

// RecordReconcileRun records one reconciliation run and its duration
func RecordReconcileRun(result string, startTime time.Time) {
	ReconcileRunsCounter.WithLabelValues(result).Inc()
	ReconcileDuration.Observe(time.Since(startTime).Seconds())
}
