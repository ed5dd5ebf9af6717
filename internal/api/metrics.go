// internal/api/metrics.go
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the API
type Metrics struct {
	RequestCounter   *prometheus.CounterVec
	LatencyHistogram *prometheus.HistogramVec
	RateLimitHits    prometheus.Counter
	Predictions      prometheus.Counter
	ReportDuration   prometheus.Histogram
	ReportFailures   prometheus.Counter
	HistoryFailures  prometheus.Counter
	CacheLookups     *prometheus.CounterVec
	registry         *prometheus.Registry
}

// NewMetrics creates and registers all metrics on a private registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lifesync_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		LatencyHistogram: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lifesync_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		RateLimitHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lifesync_rate_limit_hits_total",
			Help: "Total number of rate limited report requests",
		}),
		Predictions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lifesync_predictions_total",
			Help: "Total number of completed simulations",
		}),
		ReportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lifesync_report_build_seconds",
			Help:    "Time spent rendering PDF reports",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		ReportFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lifesync_report_failures_total",
			Help: "Total number of report builds that failed",
		}),
		HistoryFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lifesync_history_append_failures_total",
			Help: "Total number of predictions whose history row was not saved",
		}),
		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lifesync_report_cache_lookups_total",
				Help: "Report cache lookups by result",
			},
			[]string{"result"},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.RequestCounter,
		m.LatencyHistogram,
		m.RateLimitHits,
		m.Predictions,
		m.ReportDuration,
		m.ReportFailures,
		m.HistoryFailures,
		m.CacheLookups,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// IncrementRequest increments the request counter
func (m *Metrics) IncrementRequest(method, route string, status int) {
	m.RequestCounter.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	if status == http.StatusTooManyRequests {
		m.RateLimitHits.Inc()
	}
}

// RecordLatency records request latency
func (m *Metrics) RecordLatency(method, route string, seconds float64) {
	m.LatencyHistogram.WithLabelValues(method, route).Observe(seconds)
}

// PredictionMade counts a completed simulation.
func (m *Metrics) PredictionMade() {
	m.Predictions.Inc()
}

// ReportBuilt records the build time of a report, or a failure.
func (m *Metrics) ReportBuilt(d time.Duration, err error) {
	if err != nil {
		m.ReportFailures.Inc()
		return
	}
	m.ReportDuration.Observe(d.Seconds())
}

// HistoryFailed counts a history row that was not saved.
func (m *Metrics) HistoryFailed() {
	m.HistoryFailures.Inc()
}

// ReportCacheLookup counts a report cache hit or miss.
func (m *Metrics) ReportCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// Handler returns the Prometheus metrics handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
