package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the attendance core
// and its HTTP surface. All methods are safe on a nil receiver.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	actions         *prometheus.CounterVec
	storageFailures *prometheus.CounterVec
	ledgerUpserts   *prometheus.CounterVec
	ledgerChanges   prometheus.Counter
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
}

// NewMetricsService registers the collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	actions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_actions_total",
		Help: "Clock actions by outcome (applied or the guard that rejected them)",
	}, []string{"action", "outcome"})

	storageFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_storage_failures_total",
		Help: "Key-value reads or writes that failed",
	}, []string{"op"})

	ledgerUpserts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_ledger_upserts_total",
		Help: "Ledger upserts by origin (employee mirror or admin correction)",
	}, []string{"origin"})

	ledgerChanges := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "attendance_ledger_change_notifications_total",
		Help: "Ledger change notifications received from the shared store",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "overview_cache_hits_total",
		Help: "Monthly overview cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "overview_cache_misses_total",
		Help: "Monthly overview cache misses",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, actions, storageFailures, ledgerUpserts, ledgerChanges, cacheHits, cacheMisses, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		actions:         actions,
		storageFailures: storageFailures,
		ledgerUpserts:   ledgerUpserts,
		ledgerChanges:   ledgerChanges,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return m.handler
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordAction counts a clock action outcome.
func (m *MetricsService) RecordAction(action, outcome string) {
	if m == nil {
		return
	}
	m.actions.WithLabelValues(action, outcome).Inc()
}

// RecordStorageFailure counts a failed read or write.
func (m *MetricsService) RecordStorageFailure(op string) {
	if m == nil {
		return
	}
	m.storageFailures.WithLabelValues(op).Inc()
}

// RecordLedgerUpsert counts a ledger write.
func (m *MetricsService) RecordLedgerUpsert(origin string) {
	if m == nil {
		return
	}
	m.ledgerUpserts.WithLabelValues(origin).Inc()
}

// RecordLedgerChange counts a received change notification.
func (m *MetricsService) RecordLedgerChange() {
	if m == nil {
		return
	}
	m.ledgerChanges.Inc()
}

// RecordCacheOperation records an overview cache hit or miss.
func (m *MetricsService) RecordCacheOperation(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
		return
	}
	m.cacheMisses.Inc()
}
