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

var _ ports.Algorithm = (*IntervalELECTRE)(nil)

// IntervalELECTRE is ELECTRE-I over interval-valued scores.
//
// Concordance compares midpoints. Discordance is pessimistic: the shortfall
// of i below j is measured from the best bound of j to the worst bound of i,
// relative to the span between the column's lowest lower and highest upper
// bound. Within the kernel and the remainder, alternatives are ordered by
// credibility out-degree.
type IntervalELECTRE struct {
	config ELECTREConfig
	tracer trace.Tracer
}

// NewIntervalELECTRE creates an interval ELECTRE-I algorithm.
func NewIntervalELECTRE(config ELECTREConfig) (*IntervalELECTRE, error) {
	if err := validateConfig(KeyIntervalELECTRE, config); err != nil {
		return nil, err
	}
	return &IntervalELECTRE{config: config, tracer: otel.Tracer(instrumentationPrefix + KeyIntervalELECTRE)}, nil
}

// NewIntervalELECTREFromConfig is the registry factory for interval ELECTRE-I.
func NewIntervalELECTREFromConfig(params map[string]any) (ports.Algorithm, error) {
	cfg, err := configFromMap(KeyIntervalELECTRE, DefaultELECTREConfig(), params)
	if err != nil {
		return nil, err
	}
	return NewIntervalELECTRE(cfg)
}

// Name returns the registry key.
func (a *IntervalELECTRE) Name() string { return KeyIntervalELECTRE }

// Description returns a one-line summary.
func (a *IntervalELECTRE) Description() string {
	return "Interval ELECTRE-I: midpoint concordance with worst-case discordance"
}

// Config returns the construction-time configuration.
func (a *IntervalELECTRE) Config() ELECTREConfig { return a.config }

// Validate checks the configuration.
func (a *IntervalELECTRE) Validate() error { return validateConfig(KeyIntervalELECTRE, a.config) }

// UnmarshalParameters replaces the configuration from YAML. It must not be
// called concurrently with Calculate.
func (a *IntervalELECTRE) UnmarshalParameters(params yaml.Node) error {
	cfg, err := decodeNode(KeyIntervalELECTRE, DefaultELECTREConfig(), params)
	if err != nil {
		return err
	}
	a.config = cfg
	return nil
}

// Calculate ranks kernel members first.
func (a *IntervalELECTRE) Calculate(ctx context.Context, p *domain.Problem, params map[string]any) (_ *domain.Result, err error) {
	span := startSpan(ctx, a.tracer, "IntervalELECTRE.Calculate", KeyIntervalELECTRE, p)
	defer func() { endSpan(span, err) }()

	cfg, err := resolveConfig(KeyIntervalELECTRE, a.config, params)
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

	spans := make([]float64, len(crits))
	for k := range crits {
		lo, hi := m[0][k].Lower(), m[0][k].Upper()
		for i := range m {
			lo = min(lo, m[i][k].Lower())
			hi = max(hi, m[i][k].Upper())
		}
		spans[k] = hi - lo
	}

	conc := newMatrix(n)
	disc := newMatrix(n)
	for i := range n {
		for j := range n {
			if i == j {
				continue
			}
			for k, c := range crits {
				xi, xj := m[i][k], m[j][k]
				diff := xi.Midpoint() - xj.Midpoint()
				shortfall := xj.Upper() - xi.Lower()
				if !c.Direction.IsBenefit() {
					diff = -diff
					shortfall = xi.Upper() - xj.Lower()
				}
				if diff >= -domain.Tolerance {
					conc[i][j] += w[k]
				}
				if spans[k] > 0 && shortfall > 0 {
					disc[i][j] = max(disc[i][j], min(1, shortfall/spans[k]))
				}
			}
		}
	}

	out := outrank(alts, conc, disc, cfg)
	deg := out.outDegree()
	res, err := domain.NewResult(KeyIntervalELECTRE, p, out.rank(alts, deg), scoreMap(alts, deg), out.metrics(alts))
	if err != nil {
		return nil, fmt.Errorf("build result: %w", err)
	}
	return res, nil
}
