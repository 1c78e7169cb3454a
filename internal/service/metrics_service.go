package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	storageLatency  *prometheus.HistogramVec
	syncOperations  *prometheus.CounterVec
	studentsGauge   prometheus.Gauge

	requestCount uint64
	syncFailures uint64
}

// MetricsSnapshot is a lightweight view used by the health endpoint.
type MetricsSnapshot struct {
	RequestsTotal uint64    `json:"requestsTotal"`
	SyncFailures  uint64    `json:"syncFailures"`
	Goroutines    int       `json:"goroutines"`
	GeneratedAt   time.Time `json:"generatedAt"`
}

// NewMetricsService registers core Prometheus collectors.
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

	storageLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storage_operation_seconds",
		Help:    "Latency of key-value storage operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	syncOperations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_operations_total",
		Help: "Remote sync attempts by operation and result",
	}, []string{"operation", "result"})

	studentsGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ledger_students",
		Help: "Number of student records currently loaded",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, storageLatency, syncOperations, studentsGauge, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		storageLatency:  storageLatency,
		syncOperations:  syncOperations,
		studentsGauge:   studentsGauge,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
}

// ObserveStorage records one key-value operation. It matches
// kvstore.ObserveFunc so it can be handed to kvstore.WithObserver.
func (m *MetricsService) ObserveStorage(operation string, duration time.Duration) {
	if m == nil {
		return
	}
	m.storageLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordSync counts a finished push, pull or auto-sync.
func (m *MetricsService) RecordSync(operation string, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
		atomic.AddUint64(&m.syncFailures, 1)
	}
	m.syncOperations.WithLabelValues(operation, result).Inc()
}

// SetStudentCount publishes the loaded record count.
func (m *MetricsService) SetStudentCount(n int) {
	if m == nil {
		return
	}
	m.studentsGauge.Set(float64(n))
}

// Snapshot returns aggregated counters.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	return MetricsSnapshot{
		RequestsTotal: atomic.LoadUint64(&m.requestCount),
		SyncFailures:  atomic.LoadUint64(&m.syncFailures),
		Goroutines:    runtime.NumGoroutine(),
		GeneratedAt:   time.Now().UTC(),
	}
}
