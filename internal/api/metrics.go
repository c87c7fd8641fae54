package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records per-endpoint request counts and latencies on a private registry.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on a fresh registry.
func NewMetrics(namespace string) *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Total number of backend API requests",
		},
		[]string{"op", "outcome"},
	)
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "Backend API request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	registry.MustRegister(requests, duration)

	return &Metrics{
		registry: registry,
		requests: requests,
		duration: duration,
	}
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) observe(op string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(op, outcome(err)).Inc()
	m.duration.WithLabelValues(op).Observe(elapsed.Seconds())
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	switch KindOf(err) {
	case NetworkFailure:
		return "network"
	case DecodeFailure:
		return "decode"
	case EmptyInput:
		return "empty"
	}
	return "error"
}
