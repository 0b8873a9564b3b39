// Package telemetry records decision metrics with Prometheus and exports
// tracing spans with OpenTelemetry.
package telemetry

import (
	"fmt"

	"github.com/jconnelly/underwriting-ai-agent-demos/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for evaluation results. Each
// Metrics has its own registry.
type Metrics struct {
	registry *prometheus.Registry

	Decisions *prometheus.CounterVec
	Failures  *prometheus.CounterVec
	Latency   *prometheus.HistogramVec
}

// NewMetrics creates and registers all collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		Decisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "underwriting_decisions_total",
				Help: "Number of underwriting decisions per variant and decision",
			},
			[]string{"variant", "decision"},
		),
		Failures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "underwriting_evaluation_failures_total",
				Help: "Number of evaluations that failed and fell back to adjudication",
			},
			[]string{"variant"},
		),
		Latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "underwriting_processing_seconds",
				Help:    "Time to evaluate one applicant",
				Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"variant"},
		),
	}
}

// Observe records one evaluation result.
func (m *Metrics) Observe(res *models.EvaluationResult) {
	m.Decisions.WithLabelValues(res.VariantID, string(res.Decision)).Inc()
	if res.Failed() {
		m.Failures.WithLabelValues(res.VariantID).Inc()
	}
	m.Latency.WithLabelValues(res.VariantID).Observe(res.ProcessingTimeMs / 1000)
}

// Registry returns the registry the collectors are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteToTextfile writes the current values in the text exposition format,
// suitable for the node exporter textfile collector.
func (m *Metrics) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
