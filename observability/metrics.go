// Package observability holds the Prometheus instrumentation for the chat
// service.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	Queries       *prometheus.CounterVec
	ToolCalls     *prometheus.CounterVec
	ModelLatency  prometheus.Histogram
	ActiveCourses prometheus.Gauge
}

// NewMetrics registers the instruments on reg under the given namespace.
// Tests pass a fresh registry to avoid duplicate registration.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Queries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Chat queries by outcome.",
		}, []string{"outcome"}),
		ToolCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Tool executions by tool name and status.",
		}, []string{"tool", "status"}),
		ModelLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_latency_ms",
			Help:      "Model completion latency in milliseconds.",
			Buckets:   []float64{100, 250, 500, 1000, 2000, 4000, 8000, 16000},
		}),
		ActiveCourses: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_courses",
			Help:      "Number of courses loaded in the catalog.",
		}),
	}
}

// ObserveModelLatency records one model completion duration.
func (m *Metrics) ObserveModelLatency(d time.Duration) {
	m.ModelLatency.Observe(float64(d.Milliseconds()))
}

// CountQuery records a completed query by outcome ("ok" or "error").
func (m *Metrics) CountQuery(outcome string) {
	m.Queries.WithLabelValues(outcome).Inc()
}

// CountToolCall records one tool execution.
func (m *Metrics) CountToolCall(tool, status string) {
	m.ToolCalls.WithLabelValues(tool, status).Inc()
}

// MetricsHandler exposes the default registry in Prometheus text format.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
