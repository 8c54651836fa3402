package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "multipole"

type metrics struct {
	// requests counts HTTP requests.
	// Labels: route, status
	requests *prometheus.CounterVec

	// latency measures HTTP request latency in seconds.
	// Labels: route
	latency *prometheus.HistogramVec

	// toolCalls counts tool invocations.
	// Labels: tool, outcome (ok, error)
	toolCalls *prometheus.CounterVec

	// toolLatency measures tool execution time in seconds.
	// Labels: tool
	toolLatency *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status code",
		}, []string{"route", "status"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		toolCalls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "tool",
			Name:      "calls_total",
			Help:      "Tool calls by tool and outcome",
		}, []string{"tool", "outcome"}),
		toolLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "tool",
			Name:      "duration_seconds",
			Help:      "Tool execution time in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 15},
		}, []string{"tool"}),
	}
}
