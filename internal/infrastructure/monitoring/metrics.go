package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the file server.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Store operation metrics
	StoreOps        *prometheus.CounterVec
	StoreOpDuration *prometheus.HistogramVec

	// Storage usage (updated on Stats calls)
	StorageBytes prometheus.Gauge
	StorageFiles prometheus.Gauge

	// Session metrics
	SessionsActive prometheus.Gauge
	LoginsTotal    *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	m := &Metrics{
		startTime: time.Now(),

		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fileserver_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fileserver_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fileserver_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fileserver_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),

		StoreOps: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fileserver_store_operations_total",
				Help: "Total number of file store operations",
			},
			[]string{"operation", "status"},
		),
		StoreOpDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fileserver_store_operation_duration_seconds",
				Help:    "File store operation duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"operation"},
		),

		StorageBytes: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "fileserver_storage_bytes",
				Help: "Total bytes stored under the storage root",
			},
		),
		StorageFiles: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "fileserver_storage_files",
				Help: "Total files stored under the storage root",
			},
		),

		SessionsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "fileserver_sessions_active",
				Help: "Number of non-expired sessions",
			},
		),
		LoginsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fileserver_logins_total",
				Help: "Total number of login attempts",
			},
			[]string{"status"},
		),

		Uptime: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "fileserver_uptime_seconds",
				Help: "Server uptime in seconds",
			},
		),
	}

	go m.updateUptime()

	return m
}

func (m *Metrics) updateUptime() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.Uptime.Set(time.Since(m.startTime).Seconds())
	}
}

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))
}

// RecordStoreOp records one file store operation.
func (m *Metrics) RecordStoreOp(operation, status string, duration time.Duration) {
	m.StoreOps.WithLabelValues(operation, status).Inc()
	m.StoreOpDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetStorageUsage updates the storage gauges.
func (m *Metrics) SetStorageUsage(totalBytes, fileCount int64) {
	m.StorageBytes.Set(float64(totalBytes))
	m.StorageFiles.Set(float64(fileCount))
}

// SetSessionsActive sets the number of active sessions.
func (m *Metrics) SetSessionsActive(count int) {
	m.SessionsActive.Set(float64(count))
}

// RecordLogin records a login attempt.
func (m *Metrics) RecordLogin(status string) {
	m.LoginsTotal.WithLabelValues(status).Inc()
}

// StartTime returns when the metrics collector (and so the server) started.
func (m *Metrics) StartTime() time.Time {
	return m.startTime
}
