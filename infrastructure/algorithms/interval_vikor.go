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

var _ ports.Algorithm = (*IntervalVIKOR)(nil)

// IntervalVIKOR is VIKOR over interval-valued scores.
//
// Normalization uses the column's lowest lower bound and highest upper bound,
// S and R are computed with interval arithmetic, and Q is an interval in
// [0, 1]. When every Q is degenerate the ranking is by ascending Q; otherwise
// the ordering is delegated to the possibility-degree comparator applied to
// -Q, so a wide Q is not ranked by its midpoint alone.
type IntervalVIKOR struct {
	config VIKORConfig
	tracer trace.Tracer
}

// NewIntervalVIKOR creates an interval VIKOR algorithm.
func NewIntervalVIKOR(config VIKORConfig) (*IntervalVIKOR, error) {
	if err := validateConfig(KeyIntervalVIKOR, config); err != nil {
		return nil, err
	}
	return &IntervalVIKOR{config: config, tracer: otel.Tracer(instrumentationPrefix + KeyIntervalVIKOR)}, nil
}

// NewIntervalVIKORFromConfig is the registry factory for interval VIKOR.
func NewIntervalVIKORFromConfig(params map[string]any) (ports.Algorithm, error) {
	cfg, err := configFromMap(KeyIntervalVIKOR, DefaultVIKORConfig(), params)
	if err != nil {
		return nil, err
	}
	return NewIntervalVIKOR(cfg)
}

// Name returns the registry key.
func (a *IntervalVIKOR) Name() string { return KeyIntervalVIKOR }

// Description returns a one-line summary.
func (a *IntervalVIKOR) Description() string {
	return "Interval VIKOR: interval compromise values ordered by possibility degree"
}

// Config returns the construction-time configuration.
func (a *IntervalVIKOR) Config() VIKORConfig { return a.config }

// Validate checks the configuration.
func (a *IntervalVIKOR) Validate() error { return validateConfig(KeyIntervalVIKOR, a.config) }

// UnmarshalParameters replaces the configuration from YAML. It must not be
// called concurrently with Calculate.
func (a *IntervalVIKOR) UnmarshalParameters(params yaml.Node) error {
	cfg, err := decodeNode(KeyIntervalVIKOR, DefaultVIKORConfig(), params)
	if err != nil {
		return err
	}
	a.config = cfg
	return nil
}

// Calculate ranks alternatives, best (lowest Q) first.
func (a *IntervalVIKOR) Calculate(ctx context.Context, p *domain.Problem, params map[string]any) (_ *domain.Result, err error) {
	span := startSpan(ctx, a.tracer, "IntervalVIKOR.Calculate", KeyIntervalVIKOR, p)
	defer func() { endSpan(span, err) }()

	cfg, err := resolveConfig(KeyIntervalVIKOR, a.config, params)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	alts := p.Alternatives()
	crits := p.Criteria()
	w := p.NormalizedWeights()
	m := intervalMatrix(p)
	n := len(alts)

	f := rangeNormalizeIntervals(m, crits)

	s := make([]domain.Interval, n)
	r := make([]domain.Interval, n)
	for i := range f {
		for j := range crits {
			wf := f[i][j].Scale(w[j])
			s[i] = s[i].Add(wf)
			r[i] = domain.MaxInterval(r[i], wf)
		}
	}
	q := intervalCompromiseValues(s, r, cfg.V)

	qMid := make([]float64, n)
	sMid := make([]float64, n)
	rMid := make([]float64, n)
	for i := range q {
		qMid[i] = q[i].Midpoint()
		sMid[i] = s[i].Midpoint()
		rMid[i] = r[i].Midpoint()
	}

	metrics := map[string]any{
		"v":                 cfg.V,
		"group_utility":     intervalPairs(alts, s),
		"individual_regret": intervalPairs(alts, r),
		"compromise_value":  intervalPairs(alts, q),
	}

	var rankings []domain.RankedAlternative
	if allDegenerate(q) {
		rankings = domain.RankAscending(alts, qMid)
		metrics["ordering"] = "ascending_q"
	} else {
		neg := make([]domain.Interval, n)
		for i := range q {
			neg[i] = q[i].Neg()
		}
		rankings = domain.RankIntervals(alts, neg)
		metrics["ordering"] = "possibility_degree"
		metrics["possibility_matrix"] = domain.PossibilityMatrix(neg)
	}
	for k, v := range compromiseConditions(alts, rankings, qMid, sMid, rMid) {
		metrics[k] = v
	}

	res, err := domain.NewResult(KeyIntervalVIKOR, p, rankings, scoreMap(alts, qMid), metrics)
	if err != nil {
		return nil, fmt.Errorf("build result: %w", err)
	}
	return res, nil
}

// intervalCompromiseValues normalizes S and R against the extreme bounds of
// the set and blends them with strategy weight v.
func intervalCompromiseValues(s, r []domain.Interval, v float64) []domain.Interval {
	sLo, sHi := bounds(s)
	rLo, rHi := bounds(r)
	q := make([]domain.Interval, len(s))
	for i := range s {
		if sHi-sLo > 0 {
			q[i] = q[i].Add(s[i].AddScalar(-sLo).Scale(v / (sHi - sLo)))
		}
		if rHi-rLo > 0 {
			q[i] = q[i].Add(r[i].AddScalar(-rLo).Scale((1 - v) / (rHi - rLo)))
		}
		q[i] = q[i].Clamp(0, 1)
	}
	return q
}

// bounds returns the lowest lower bound and highest upper bound.
func bounds(ivs []domain.Interval) (lo, hi float64) {
	lo, hi = ivs[0].Lower(), ivs[0].Upper()
	for _, iv := range ivs[1:] {
		lo = min(lo, iv.Lower())
		hi = max(hi, iv.Upper())
	}
	return lo, hi
}
