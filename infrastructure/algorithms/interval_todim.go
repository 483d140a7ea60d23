package algorithms

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-mcda/internal/domain"
	"github.com/ahrav/go-mcda/internal/ports"
)

var _ ports.Algorithm = (*IntervalTODIM)(nil)

// IntervalTODIM is TODIM over interval-valued scores.
//
// Columns are range-normalized against their extreme bounds and pairwise
// differences are interval differences. The value function picks the gain or
// loss branch by the sign of the difference midpoint and maps both bounds
// through it, clipping the part of the interval on the other side of zero.
// This is an approximation: an interval straddling zero contributes only its
// dominant side. Global dominance is an interval; alternatives are ordered by
// possibility degree unless every ξ collapses to a point.
type IntervalTODIM struct {
	config TODIMConfig
	tracer trace.Tracer
}

// NewIntervalTODIM creates an interval TODIM algorithm.
func NewIntervalTODIM(config TODIMConfig) (*IntervalTODIM, error) {
	if err := validateConfig(KeyIntervalTODIM, config); err != nil {
		return nil, err
	}
	return &IntervalTODIM{config: config, tracer: otel.Tracer(instrumentationPrefix + KeyIntervalTODIM)}, nil
}

// NewIntervalTODIMFromConfig is the registry factory for interval TODIM.
func NewIntervalTODIMFromConfig(params map[string]any) (ports.Algorithm, error) {
	cfg, err := configFromMap(KeyIntervalTODIM, DefaultTODIMConfig(), params)
	if err != nil {
		return nil, err
	}
	return NewIntervalTODIM(cfg)
}

// Name returns the registry key.
func (a *IntervalTODIM) Name() string { return KeyIntervalTODIM }

// Description returns a one-line summary.
func (a *IntervalTODIM) Description() string {
	return "Interval TODIM: interval dominance degrees ordered by possibility degree"
}

// Config returns the construction-time configuration.
func (a *IntervalTODIM) Config() TODIMConfig { return a.config }

// Validate checks the configuration.
func (a *IntervalTODIM) Validate() error { return validateConfig(KeyIntervalTODIM, a.config) }

// UnmarshalParameters replaces the configuration from YAML. It must not be
// called concurrently with Calculate.
func (a *IntervalTODIM) UnmarshalParameters(params yaml.Node) error {
	cfg, err := decodeNode(KeyIntervalTODIM, DefaultTODIMConfig(), params)
	if err != nil {
		return err
	}
	a.config = cfg
	return nil
}

// Calculate ranks alternatives by global dominance, best first.
func (a *IntervalTODIM) Calculate(ctx context.Context, p *domain.Problem, params map[string]any) (_ *domain.Result, err error) {
	span := startSpan(ctx, a.tracer, "IntervalTODIM.Calculate", KeyIntervalTODIM, p)
	defer func() { endSpan(span, err) }()

	cfg, err := resolveConfig(KeyIntervalTODIM, a.config, params)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	alts := p.Alternatives()
	crits := p.Criteria()
	vf := newProspectFunction(cfg, p)
	norm := rangeNormalizeIntervals(intervalMatrix(p), crits)
	n := len(alts)

	delta := make([][]domain.Interval, n)
	for i := range delta {
		delta[i] = make([]domain.Interval, n)
		for j := range n {
			if i == j {
				continue
			}
			for k := range crits {
				delta[i][j] = delta[i][j].Add(vf.interval(k, norm[i][k].Sub(norm[j][k])))
			}
		}
	}

	xi := make([]domain.Interval, n)
	for i := range n {
		for j := range n {
			xi[i] = xi[i].Add(delta[i][j].Sub(delta[j][i]))
		}
	}

	mids := make([]float64, n)
	for i, iv := range xi {
		mids[i] = iv.Midpoint()
	}

	metrics := map[string]any{
		"theta":                cfg.Theta,
		"global_dominance":     intervalPairs(alts, xi),
		"normalized_dominance": scoreMap(alts, normalizeRange(mids)),
	}

	var rankings []domain.RankedAlternative
	if allDegenerate(xi) {
		rankings = domain.RankDescending(alts, mids)
		metrics["ordering"] = "descending_midpoint"
	} else {
		rankings = domain.RankIntervals(alts, xi)
		metrics["ordering"] = "possibility_degree"
		metrics["possibility_matrix"] = domain.PossibilityMatrix(xi)
	}

	res, err := domain.NewResult(KeyIntervalTODIM, p, rankings, scoreMap(alts, mids), metrics)
	if err != nil {
		return nil, fmt.Errorf("build result: %w", err)
	}
	return res, nil
}
