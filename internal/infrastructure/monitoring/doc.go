// Package monitoring provides Prometheus metrics for the file server:
// HTTP request counters and latency histograms via gin middleware, per
// store-operation counters, storage usage gauges refreshed on Stats calls,
// and session gauges. Metrics are exposed on /metrics via promhttp.
package monitoring
