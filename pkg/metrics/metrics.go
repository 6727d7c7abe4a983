package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Delivery pipeline metrics
	DeliveriesTotal        *prometheus.CounterVec
	DeliveryDuration       *prometheus.HistogramVec
	ProviderAttempts       *prometheus.CounterVec
	RateLimitRejections    *prometheus.CounterVec
	SecondaryWriteFailures *prometheus.CounterVec

	// Database metrics
	DatabaseOperations *prometheus.CounterVec
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		DeliveriesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Total number of email deliveries by type and outcome",
		}, []string{"type", "status"}),
		DeliveryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "delivery_duration_seconds",
			Help:      "Wall time of a full delivery run, including retries and backoff",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"type"}),
		ProviderAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_attempts_total",
			Help:      "Individual provider send attempts by outcome",
		}, []string{"status"}),
		RateLimitRejections: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_rejections_total",
			Help:      "Deliveries rejected by the sliding-window limiter",
		}, []string{"type"}),
		SecondaryWriteFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "secondary_write_failures_total",
			Help:      "Audit or analytics writes that failed after a successful send",
		}, []string{"operation"}),
		DatabaseOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "database_operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),
	}
}

// NewTestMetrics creates metrics on a throwaway registry so tests can
// instantiate services without double-registration panics.
func NewTestMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		DeliveriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "deliveries_total",
		}, []string{"type", "status"}),
		DeliveryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name: "delivery_duration_seconds",
		}, []string{"type"}),
		ProviderAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "provider_attempts_total",
		}, []string{"status"}),
		RateLimitRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rate_limit_rejections_total",
		}, []string{"type"}),
		SecondaryWriteFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "secondary_write_failures_total",
		}, []string{"operation"}),
		DatabaseOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "database_operations_total",
		}, []string{"operation", "status"}),
	}
}
