package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Session guard metrics
	GuardRequestsTotal   *prometheus.CounterVec
	GuardFallbacksTotal  *prometheus.CounterVec
	SessionCheckDuration prometheus.Histogram

	// SAML trust bootstrap metrics
	KeygenDuration       prometheus.Histogram
	KeygenErrorsTotal    prometheus.Counter
	SecretRotationsTotal *prometheus.CounterVec

	// Storage metrics
	StorageOperationsTotal   *prometheus.CounterVec
	StorageOperationDuration *prometheus.HistogramVec

	// Application cache metrics
	AppCacheHitsTotal   prometheus.Counter
	AppCacheMissesTotal prometheus.Counter

	registry *prometheus.Registry
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		GuardRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gatehouse_session_guard_requests_total",
				Help: "Total number of requests inspected by the session guard",
			},
			[]string{"outcome"},
		),
		GuardFallbacksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gatehouse_session_guard_fallbacks_total",
				Help: "Fallback resolutions by step (application, tenant_config, tenant_endpoint, not_found)",
			},
			[]string{"step"},
		),
		SessionCheckDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "gatehouse_session_check_duration_seconds",
				Help:    "Interaction session check duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		KeygenDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "gatehouse_saml_keygen_duration_seconds",
				Help:    "RSA keypair and certificate generation duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
			},
		),
		KeygenErrorsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "gatehouse_saml_keygen_errors_total",
				Help: "Total number of failed key material generations",
			},
		),
		SecretRotationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gatehouse_saml_secret_rotations_total",
				Help: "Total number of SAML signing secret rotations",
			},
			[]string{"status"},
		),
		StorageOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gatehouse_storage_operations_total",
				Help: "Total number of storage operations",
			},
			[]string{"operation", "status"},
		),
		StorageOperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gatehouse_storage_operation_duration_seconds",
				Help:    "Storage operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		AppCacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "gatehouse_application_cache_hits_total",
				Help: "Application lookup cache hits",
			},
		),
		AppCacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "gatehouse_application_cache_misses_total",
				Help: "Application lookup cache misses",
			},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.GuardRequestsTotal,
		m.GuardFallbacksTotal,
		m.SessionCheckDuration,
		m.KeygenDuration,
		m.KeygenErrorsTotal,
		m.SecretRotationsTotal,
		m.StorageOperationsTotal,
		m.StorageOperationDuration,
		m.AppCacheHitsTotal,
		m.AppCacheMissesTotal,
	)

	return m
}

// ObserveStorageOperation records a storage operation result and duration
func (m *Metrics) ObserveStorageOperation(operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.StorageOperationsTotal.WithLabelValues(operation, status).Inc()
	m.StorageOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// Handler returns the Prometheus metrics HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
