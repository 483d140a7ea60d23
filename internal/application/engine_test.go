package application

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-mcda/infrastructure/algorithms"
	"github.com/ahrav/go-mcda/internal/domain"
	"github.com/ahrav/go-mcda/internal/ports"
	"github.com/ahrav/go-mcda/internal/testutils"
)

// gateAlgorithm records the peak number of concurrent Calculate calls.
type gateAlgorithm struct {
	stubAlgorithm
	inflight, peak *atomic.Int32
}

func (g *gateAlgorithm) Calculate(ctx context.Context, p *domain.Problem, params map[string]any) (*domain.Result, error) {
	n := g.inflight.Add(1)
	defer g.inflight.Add(-1)
	for {
		cur := g.peak.Load()
		if n <= cur || g.peak.CompareAndSwap(cur, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	return g.stubAlgorithm.Calculate(ctx, p, params)
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	r, err := NewDefaultRegistry()
	require.NoError(t, err)
	e, err := NewEngine(r, opts...)
	require.NoError(t, err)
	return e
}

func TestNewEngine(t *testing.T) {
	_, err := NewEngine(nil)
	assert.Error(t, err)

	_, err = NewEngine(NewRegistry(), WithConcurrency(0))
	assert.ErrorContains(t, err, "concurrency must be positive")

	e, err := NewEngine(NewRegistry(), WithLogger(nil), WithMetrics(nil))
	require.NoError(t, err)
	assert.NotNil(t, e.logger)
	assert.NotNil(t, e.metrics)
	assert.Equal(t, DefaultConcurrency, e.concurrency)
}

func TestEngine_Rank(t *testing.T) {
	metrics := testutils.NewRecordingMetrics()
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	e := newTestEngine(t, WithMetrics(metrics), WithLogger(logger))

	p := testutils.SupplierProblem(t)
	res, err := e.Rank(context.Background(), p, "TOPSIS", nil)
	require.NoError(t, err)

	direct, err := algorithms.NewTOPSISFromConfig(nil)
	require.NoError(t, err)
	want, err := direct.Calculate(context.Background(), p, nil)
	require.NoError(t, err)
	assert.Equal(t, want.Rankings(), res.Rankings())

	latency := metrics.Calls(ports.MetricAlgorithmLatency)
	require.Len(t, latency, 1)
	assert.Equal(t, "latency", latency[0].Kind)
	assert.Equal(t, map[string]string{"algorithm": "topsis", "status": "success"}, latency[0].Labels)

	runs := metrics.Calls(ports.MetricAlgorithmRuns)
	require.Len(t, runs, 1)
	assert.Equal(t, 1.0, runs[0].Value)

	ranked := metrics.Calls(ports.MetricAlternativesRanked)
	require.Len(t, ranked, 1)
	assert.Equal(t, 4.0, ranked[0].Value)

	out := logs.String()
	assert.Contains(t, out, `msg="dispatching algorithm"`)
	assert.Contains(t, out, "algorithm=topsis")
	assert.Contains(t, out, "alternatives=4")
	assert.Contains(t, out, "criteria=3")
	assert.Contains(t, out, `msg="algorithm completed"`)
}

func TestEngine_RankWithParams(t *testing.T) {
	e := newTestEngine(t)
	p := testutils.SupplierProblem(t)

	res, err := e.Rank(context.Background(), p, algorithms.KeyVIKOR, map[string]any{"v": 1.0})
	require.NoError(t, err)
	v, ok := res.Metric("v")
	require.True(t, ok)
	assert.Equal(t, 1.0, v)

	_, err = e.Rank(context.Background(), p, algorithms.KeyVIKOR, map[string]any{"v": -1})
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)
}

func TestEngine_RankFailures(t *testing.T) {
	t.Run("unknown key", func(t *testing.T) {
		metrics := testutils.NewRecordingMetrics()
		var logs bytes.Buffer
		e := newTestEngine(t, WithMetrics(metrics), WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

		_, err := e.Rank(context.Background(), testutils.SupplierProblem(t), "topsys", nil)
		var nf *domain.AlgorithmNotFoundError
		require.True(t, errors.As(err, &nf))
		assert.Equal(t, []string{"topsis"}, nf.Suggestions)
		assert.Empty(t, metrics.Calls(""))
		assert.Contains(t, logs.String(), "level=WARN")
	})

	t.Run("invalid problem", func(t *testing.T) {
		metrics := testutils.NewRecordingMetrics()
		var logs bytes.Buffer
		e := newTestEngine(t, WithMetrics(metrics), WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

		_, err := e.Rank(context.Background(), testutils.IntervalSupplierProblem(t), algorithms.KeyTOPSIS, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidProblem)

		runs := metrics.Calls(ports.MetricAlgorithmRuns)
		require.Len(t, runs, 1)
		assert.Equal(t, ports.StatusError, runs[0].Labels[ports.LabelStatus])
		assert.Empty(t, metrics.Calls(ports.MetricAlternativesRanked))

		out := logs.String()
		assert.Contains(t, out, `msg="algorithm failed"`)
		assert.Contains(t, out, "invalid_problem=true")
	})
}

func TestEngine_Compare(t *testing.T) {
	metrics := testutils.NewRecordingMetrics()
	e := newTestEngine(t, WithMetrics(metrics))
	p := testutils.SupplierProblem(t)

	keys := []string{algorithms.KeyWSM, algorithms.KeyTOPSIS, algorithms.KeyVIKOR}
	report, err := e.Compare(context.Background(), p, keys, map[string]map[string]any{
		algorithms.KeyVIKOR: {"v": 0.8},
	})
	require.NoError(t, err)

	require.Len(t, report.Results, 3)
	for i, key := range keys {
		assert.Equal(t, key, report.Results[i].Name)
		assert.Equal(t, key, report.Results[i].Result.AlgorithmName())
	}
	vikor, ok := report.Result(algorithms.KeyVIKOR)
	require.True(t, ok)
	v, _ := vikor.Metric("v")
	assert.Equal(t, 0.8, v)

	require.NotNil(t, report.Comparison)
	assert.Len(t, report.Comparison.Correlations, 3)
	for _, c := range report.Comparison.Correlations {
		assert.GreaterOrEqual(t, c.KendallTau, -1.0)
		assert.LessOrEqual(t, c.KendallTau, 1.0)
		assert.GreaterOrEqual(t, c.Spearman, -1.0)
		assert.LessOrEqual(t, c.Spearman, 1.0)
	}
	assert.Len(t, report.Comparison.Consensus, p.NumAlternatives())

	assert.Len(t, metrics.Calls(ports.MetricAlgorithmRuns), 3)
	assert.Len(t, metrics.Calls(ports.MetricComparisons), 1)
}

func TestEngine_CompareErrors(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("ok", stubFactory("ok")))
	require.NoError(t, r.Register("failing", func(map[string]any) (ports.Algorithm, error) {
		return &stubAlgorithm{name: "failing", err: errors.New("boom")}, nil
	}))
	e, err := NewEngine(r)
	require.NoError(t, err)
	p := testutils.SupplierProblem(t)

	tests := []struct {
		name   string
		keys   []string
		errMsg string
	}{
		{name: "no keys", errMsg: "at least one"},
		{name: "duplicate keys", keys: []string{"ok", "OK"}, errMsg: "duplicate algorithm key"},
		{name: "unknown key", keys: []string{"ok", "absent"}, errMsg: "algorithm not found"},
		{name: "failing run", keys: []string{"ok", "failing"}, errMsg: "run failing: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := e.Compare(context.Background(), p, tt.keys, nil)
			require.Error(t, err)
			assert.Nil(t, report)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestEngine_CompareRespectsConcurrency(t *testing.T) {
	var inflight, peak atomic.Int32
	r := NewRegistry()
	keys := make([]string, 6)
	for i := range keys {
		keys[i] = fmt.Sprintf("gate%d", i)
		name := keys[i]
		require.NoError(t, r.Register(name, func(map[string]any) (ports.Algorithm, error) {
			return &gateAlgorithm{stubAlgorithm: stubAlgorithm{name: name}, inflight: &inflight, peak: &peak}, nil
		}))
	}

	e, err := NewEngine(r, WithConcurrency(2))
	require.NoError(t, err)

	report, err := e.Compare(context.Background(), testutils.SupplierProblem(t), keys, nil)
	require.NoError(t, err)
	assert.Len(t, report.Results, 6)
	assert.LessOrEqual(t, peak.Load(), int32(2))
	assert.GreaterOrEqual(t, peak.Load(), int32(1))
}

func TestEngine_CompareCanceledContext(t *testing.T) {
	e := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Compare(ctx, testutils.SupplierProblem(t), []string{algorithms.KeyWSM}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_Run(t *testing.T) {
	r, err := NewDefaultRegistry()
	require.NoError(t, err)
	l, err := NewAnalysisLoader(r)
	require.NoError(t, err)
	e, err := NewEngine(r)
	require.NoError(t, err)
	p := testutils.SupplierProblem(t)

	t.Run("with comparison", func(t *testing.T) {
		a, err := l.LoadFromReader(strings.NewReader(validAnalysis))
		require.NoError(t, err)

		report, err := e.Run(context.Background(), p, a)
		require.NoError(t, err)
		require.Len(t, report.Results, 4)

		consensus, ok := report.Result("vikor-consensus")
		require.True(t, ok)
		utility, ok := report.Result("vikor-utility")
		require.True(t, ok)
		cv, _ := consensus.Metric("v")
		uv, _ := utility.Metric("v")
		assert.Equal(t, 0.5, cv)
		assert.Equal(t, 0.9, uv)

		require.NotNil(t, report.Comparison)
		assert.Len(t, report.Comparison.Correlations, 6)
		_, ok = report.Comparison.Correlation("promethee2", "topsis")
		assert.True(t, ok)
	})

	t.Run("without comparison", func(t *testing.T) {
		src := strings.Replace(validAnalysis, "enabled: true", "enabled: false", 1)
		a, err := l.LoadFromReader(strings.NewReader(src))
		require.NoError(t, err)

		report, err := e.Run(context.Background(), p, a)
		require.NoError(t, err)
		assert.Nil(t, report.Comparison)
	})

	t.Run("run failure names the analysis", func(t *testing.T) {
		a, err := l.LoadFromReader(strings.NewReader(validAnalysis))
		require.NoError(t, err)

		_, err = e.Run(context.Background(), testutils.IntervalSupplierProblem(t), a)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidProblem)
		assert.Contains(t, err.Error(), "analysis supplier-selection")
	})

	t.Run("nil analysis", func(t *testing.T) {
		_, err := e.Run(context.Background(), p, nil)
		assert.Error(t, err)
	})
}
