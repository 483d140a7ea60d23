// Package middleware provides cross-cutting concerns for the decision engine.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/go-mcda/internal/ports"
)

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)

// PrometheusMetrics implements the MetricsCollector interface using Prometheus.
// It exposes algorithm latency, run outcomes and problem sizes.
type PrometheusMetrics struct {
	algorithmLatency   *prometheus.HistogramVec
	algorithmRuns      *prometheus.CounterVec
	alternativesRanked *prometheus.GaugeVec
	eventCounter       *prometheus.CounterVec
	systemGauges       *prometheus.GaugeVec
}

// NewPrometheusMetrics creates the collectors and registers them with reg.
// A nil reg selects prometheus.DefaultRegisterer. Registering twice against
// the same registerer panics, as with any promauto metric.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		algorithmLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mcda_algorithm_duration_seconds",
				Help:    "Execution time of ranking algorithm calculations.",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"operation", ports.LabelAlgorithm, ports.LabelStatus},
		),
		algorithmRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mcda_algorithm_runs_total",
				Help: "Total number of ranking algorithm runs by outcome.",
			},
			[]string{ports.LabelAlgorithm, ports.LabelStatus},
		),
		alternativesRanked: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "mcda_alternatives_ranked",
				Help: "Number of alternatives in the most recent successful ranking.",
			},
			[]string{ports.LabelAlgorithm},
		),
		eventCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mcda_events_total",
				Help: "Total number of other engine events.",
			},
			[]string{"event", ports.LabelAlgorithm},
		),
		systemGauges: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "mcda_engine_state",
				Help: "Current engine state values.",
			},
			[]string{"metric", ports.LabelAlgorithm},
		),
	}
}

// label returns labels[key], or fallback when missing or empty.
func label(labels map[string]string, key, fallback string) string {
	if v := labels[key]; v != "" {
		return v
	}
	return fallback
}

// RecordLatency implements the MetricsCollector interface by recording
// execution latency in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string,
	duration time.Duration,
	labels map[string]string,
) {
	pm.algorithmLatency.WithLabelValues(
		operation,
		label(labels, ports.LabelAlgorithm, "unknown"),
		label(labels, ports.LabelStatus, ports.StatusSuccess),
	).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by incrementing
// Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	algorithm := label(labels, ports.LabelAlgorithm, "unknown")

	switch metric {
	case ports.MetricAlgorithmRuns:
		pm.algorithmRuns.WithLabelValues(algorithm, label(labels, ports.LabelStatus, ports.StatusSuccess)).Add(value)
	default:
		pm.eventCounter.WithLabelValues(metric, algorithm).Add(value)
	}
}

// RecordGauge implements the MetricsCollector interface by setting
// Prometheus gauge values.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, labels map[string]string,
) {
	algorithm := label(labels, ports.LabelAlgorithm, "unknown")

	switch metric {
	case ports.MetricAlternativesRanked:
		pm.alternativesRanked.WithLabelValues(algorithm).Set(value)
	default:
		pm.systemGauges.WithLabelValues(metric, algorithm).Set(value)
	}
}
