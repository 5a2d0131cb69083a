// Package metrics exposes Prometheus collectors for the gateway.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec
	lookupsTotal               *prometheus.CounterVec
	lookupDurationSeconds      *prometheus.HistogramVec
	upstreamResponsesTotal     *prometheus.CounterVec
	upstreamDurationSeconds    prometheus.Histogram

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)

		lookupsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qrz_lookups_total",
				Help: "Total number of callsign lookups, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		lookupDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "qrz_lookup_duration_seconds",
				Help:    "Histogram of end-to-end lookup latencies, labeled by outcome.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"outcome"},
		)

		upstreamResponsesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qrz_upstream_responses_total",
				Help: "Total number of upstream registry calls, labeled by HTTP status code.",
			},
			[]string{"code"},
		)

		upstreamDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "qrz_upstream_duration_seconds",
				Help:    "Histogram of upstream registry call latencies.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
		)
	})
}

// StatusLabel renders an HTTP status for use as a label value.
// Zero means no response was received.
func StatusLabel(code int) string {
	if code <= 0 {
		return "none"
	}
	return strconv.Itoa(code)
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveLookup records a finished lookup.
func ObserveLookup(outcome string, duration time.Duration) {
	Init()
	lookupsTotal.WithLabelValues(outcome).Inc()
	lookupDurationSeconds.WithLabelValues(outcome).Observe(duration.Seconds())
}

// ObserveUpstream records one call to the registry.
func ObserveUpstream(code int, duration time.Duration) {
	Init()
	upstreamResponsesTotal.WithLabelValues(StatusLabel(code)).Inc()
	upstreamDurationSeconds.Observe(duration.Seconds())
}
