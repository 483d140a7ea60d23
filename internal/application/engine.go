// Package application provides algorithm registration, analysis loading and
// the engine that dispatches decision problems to ranking algorithms.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ahrav/go-mcda/internal/domain"
	"github.com/ahrav/go-mcda/internal/ports"
)

// DefaultConcurrency bounds the algorithms Compare and Run execute at once
// when no other limit is configured.
const DefaultConcurrency = 4

// Engine dispatches decision problems to registered algorithms by key.
// It is safe for concurrent use.
type Engine struct {
	registry    ports.AlgorithmRegistry
	logger      *slog.Logger
	metrics     ports.MetricsCollector
	concurrency int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger. A nil logger is ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics sets the collector that receives latency and run counters.
func WithMetrics(metrics ports.MetricsCollector) Option {
	return func(e *Engine) {
		if metrics != nil {
			e.metrics = metrics
		}
	}
}

// WithConcurrency sets the default limit on concurrently running algorithms.
func WithConcurrency(n int) Option {
	return func(e *Engine) { e.concurrency = n }
}

// NewEngine creates an engine resolving keys against registry.
func NewEngine(registry ports.AlgorithmRegistry, opts ...Option) (*Engine, error) {
	if registry == nil {
		return nil, fmt.Errorf("registry cannot be nil")
	}

	e := &Engine{
		registry:    registry,
		logger:      slog.Default(),
		metrics:     noopMetrics{},
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.concurrency < 1 {
		return nil, fmt.Errorf("concurrency must be positive, got %d", e.concurrency)
	}
	return e, nil
}

// Rank builds the algorithm registered under key with params and ranks p.
func (e *Engine) Rank(ctx context.Context, p *domain.Problem, key string, params map[string]any) (*domain.Result, error) {
	alg, err := e.registry.Get(key, params)
	if err != nil {
		e.logger.Warn("algorithm lookup failed",
			slog.String("algorithm", key),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	return e.execute(ctx, alg, p)
}

// NamedResult is the outcome of one run of a report.
type NamedResult struct {
	// Name is the run label.
	Name string `yaml:"name" json:"name"`
	// Key is the algorithm registry key.
	Key string `yaml:"key" json:"key"`
	// Result is the ranking.
	Result *domain.Result `yaml:"-" json:"-"`
}

// Report collects the results of several algorithms on one problem.
type Report struct {
	// Results holds one entry per run in declaration order.
	Results []NamedResult
	// Comparison is nil unless comparison was requested.
	Comparison *Comparison
}

// Result returns the result of the named run.
func (r *Report) Result(name string) (*domain.Result, bool) {
	for _, nr := range r.Results {
		if nr.Name == name {
			return nr.Result, true
		}
	}
	return nil, false
}

// Run executes every run of a loaded analysis against p. Comparison
// statistics are attached when the analysis enables them.
func (e *Engine) Run(ctx context.Context, p *domain.Problem, a *Analysis) (*Report, error) {
	if a == nil || a.Config == nil {
		return nil, fmt.Errorf("analysis cannot be nil")
	}

	limit := e.concurrency
	if c := a.Config.Comparison.Concurrency; c > 0 {
		limit = c
	}

	e.logger.Debug("running analysis",
		slog.String("analysis", a.Config.Metadata.Name),
		slog.Int("runs", len(a.Runs)),
	)

	report, err := e.runAll(ctx, p, a.Runs, limit)
	if err != nil {
		return nil, fmt.Errorf("analysis %s: %w", a.Config.Metadata.Name, err)
	}
	if a.Config.Comparison.Enabled {
		report.Comparison = e.compare(p, report.Results)
	}
	return report, nil
}

// Compare ranks p with every key and reports rank correlations between the
// results and a Borda consensus ranking. params supplies per-key
// hyperparameters; keys absent from it use defaults.
func (e *Engine) Compare(
	ctx context.Context,
	p *domain.Problem,
	keys []string,
	params map[string]map[string]any,
) (*Report, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("compare requires at least one algorithm key")
	}

	runs := make([]Run, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		folded := foldKey(key)
		if _, dup := seen[folded]; dup {
			return nil, fmt.Errorf("duplicate algorithm key %q", key)
		}
		seen[folded] = struct{}{}

		alg, err := e.registry.Get(key, params[key])
		if err != nil {
			return nil, err
		}
		runs = append(runs, Run{Name: alg.Name(), Key: alg.Name(), Params: params[key], Algorithm: alg})
	}

	report, err := e.runAll(ctx, p, runs, e.concurrency)
	if err != nil {
		return nil, err
	}
	report.Comparison = e.compare(p, report.Results)
	return report, nil
}

// runAll executes runs with at most limit in flight. The first failure stops
// runs that have not started yet.
func (e *Engine) runAll(ctx context.Context, p *domain.Problem, runs []Run, limit int) (*Report, error) {
	results := make([]NamedResult, len(runs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, run := range runs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := e.execute(gctx, run.Algorithm, p)
			if err != nil {
				return fmt.Errorf("run %s: %w", run.Name, err)
			}
			results[i] = NamedResult{Name: run.Name, Key: run.Key, Result: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Report{Results: results}, nil
}

// execute runs one algorithm and records its latency and outcome.
func (e *Engine) execute(ctx context.Context, alg ports.Algorithm, p *domain.Problem) (*domain.Result, error) {
	name := alg.Name()
	attrs := []any{slog.String("algorithm", name)}
	if p != nil {
		attrs = append(attrs,
			slog.Int("alternatives", p.NumAlternatives()),
			slog.Int("criteria", p.NumCriteria()),
		)
	}
	e.logger.Debug("dispatching algorithm", attrs...)

	start := time.Now()
	res, err := alg.Calculate(ctx, p, nil)
	duration := time.Since(start)

	status := ports.StatusSuccess
	if err != nil {
		status = ports.StatusError
	}
	labels := map[string]string{ports.LabelAlgorithm: name, ports.LabelStatus: status}
	e.metrics.RecordLatency(ports.MetricAlgorithmLatency, duration, labels)
	e.metrics.RecordCounter(ports.MetricAlgorithmRuns, 1, labels)

	if err != nil {
		e.logger.Warn("algorithm failed",
			append(attrs,
				slog.Duration("duration", duration),
				slog.String("error", err.Error()),
				slog.Bool("invalid_problem", errors.Is(err, domain.ErrInvalidProblem)),
			)...,
		)
		return nil, err
	}

	e.metrics.RecordGauge(ports.MetricAlternativesRanked, float64(p.NumAlternatives()),
		map[string]string{ports.LabelAlgorithm: name})
	e.logger.Debug("algorithm completed", append(attrs, slog.Duration("duration", duration))...)
	return res, nil
}

// compare builds the comparison block and counts it.
func (e *Engine) compare(p *domain.Problem, results []NamedResult) *Comparison {
	e.metrics.RecordCounter(ports.MetricComparisons, 1, map[string]string{ports.LabelAlgorithm: "all"})
	return NewComparison(p.Alternatives(), results)
}

// noopMetrics discards every measurement.
type noopMetrics struct{}

func (noopMetrics) RecordLatency(string, time.Duration, map[string]string) {}
func (noopMetrics) RecordCounter(string, float64, map[string]string)       {}
func (noopMetrics) RecordGauge(string, float64, map[string]string)         {}
