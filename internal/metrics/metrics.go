// Package metrics exposes Prometheus instrumentation for the API and its
// upstream LLM calls.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds every collector the service registers.
type Metrics struct {
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	LLMCalls        *prometheus.CounterVec
	LLMDuration     *prometheus.HistogramVec
	RecipesStored   prometheus.Counter
	ImagesGenerated prometheus.Counter

	registry *prometheus.Registry
}

// New creates and registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pantrychef",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total HTTP requests served",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "pantrychef",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		LLMCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pantrychef",
				Subsystem: "llm",
				Name:      "calls_total",
				Help:      "Total LLM API calls by operation and outcome",
			},
			[]string{"operation", "status"},
		),
		LLMDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "pantrychef",
				Subsystem: "llm",
				Name:      "call_duration_seconds",
				Help:      "LLM API call duration in seconds",
				Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
			},
			[]string{"operation"},
		),
		RecipesStored: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "pantrychef",
				Subsystem: "recipes",
				Name:      "stored_total",
				Help:      "Total recipes persisted",
			},
		),
		ImagesGenerated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "pantrychef",
				Subsystem: "images",
				Name:      "generated_total",
				Help:      "Total recipe images generated",
			},
		),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.HTTPRequests,
		m.HTTPDuration,
		m.LLMCalls,
		m.LLMDuration,
		m.RecipesStored,
		m.ImagesGenerated,
	)

	return m
}

// Registry returns the underlying registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveLLMCall records one upstream LLM call.
func (m *Metrics) ObserveLLMCall(operation string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.LLMCalls.WithLabelValues(operation, status).Inc()
	m.LLMDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
