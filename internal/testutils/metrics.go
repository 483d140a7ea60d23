package testutils

import (
	"maps"
	"sync"
	"time"

	"github.com/ahrav/go-mcda/internal/ports"
)

var _ ports.MetricsCollector = (*RecordingMetrics)(nil)

// MetricCall is one recorded collector invocation.
type MetricCall struct {
	Kind     string
	Name     string
	Value    float64
	Duration time.Duration
	Labels   map[string]string
}

// RecordingMetrics is a ports.MetricsCollector that keeps every call.
// It is safe for concurrent use.
type RecordingMetrics struct {
	mu    sync.Mutex
	calls []MetricCall
}

// NewRecordingMetrics returns an empty recorder.
func NewRecordingMetrics() *RecordingMetrics { return &RecordingMetrics{} }

// RecordLatency implements ports.MetricsCollector.
func (r *RecordingMetrics) RecordLatency(operation string, d time.Duration, labels map[string]string) {
	r.add(MetricCall{Kind: "latency", Name: operation, Duration: d, Labels: maps.Clone(labels)})
}

// RecordCounter implements ports.MetricsCollector.
func (r *RecordingMetrics) RecordCounter(metric string, value float64, labels map[string]string) {
	r.add(MetricCall{Kind: "counter", Name: metric, Value: value, Labels: maps.Clone(labels)})
}

// RecordGauge implements ports.MetricsCollector.
func (r *RecordingMetrics) RecordGauge(metric string, value float64, labels map[string]string) {
	r.add(MetricCall{Kind: "gauge", Name: metric, Value: value, Labels: maps.Clone(labels)})
}

func (r *RecordingMetrics) add(c MetricCall) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
}

// Calls returns a snapshot of the recorded calls, optionally filtered by name.
func (r *RecordingMetrics) Calls(name string) []MetricCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []MetricCall
	for _, c := range r.calls {
		if name == "" || c.Name == name {
			out = append(out, c)
		}
	}
	return out
}
