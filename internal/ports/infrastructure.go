package ports

import (
	"time"
)

// MetricsCollector defines the interface for collecting operational metrics.
// Implementations should integrate with observability platforms like
// Prometheus, OpenTelemetry, or custom monitoring solutions.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	// The labels map provides additional context for the metric.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	// This is useful for tracking events like successful and failed runs.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	RecordGauge(metric string, value float64, labels map[string]string)
}

// Metric names and labels recorded by the engine.
const (
	// MetricAlgorithmLatency is the latency operation of one Calculate call.
	MetricAlgorithmLatency = "algorithm_calculate"
	// MetricAlgorithmRuns counts Calculate calls.
	MetricAlgorithmRuns = "algorithm_runs"
	// MetricAlternativesRanked is the number of alternatives in the last
	// successful ranking.
	MetricAlternativesRanked = "alternatives_ranked"
	// MetricComparisons counts multi-algorithm comparisons.
	MetricComparisons = "comparisons"

	LabelAlgorithm = "algorithm"
	LabelStatus    = "status"

	StatusSuccess = "success"
	StatusError   = "error"
)
