package algorithms

import (
	"context"
	"fmt"
	"math"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-mcda/internal/domain"
	"github.com/ahrav/go-mcda/internal/ports"
)

var _ ports.Algorithm = (*TODIM)(nil)

// TODIM ranks alternatives by prospect-theory global dominance.
//
// Scores are measured from a reference point (the column minimum on benefit
// criteria, the maximum on cost criteria) and scaled by the column range. For
// each pair (i, j) and criterion k with difference d = x_ik − x_jk:
//
//	gain: φ =  sqrt(w_k·d^α / Σw)
//	loss: φ = −sqrt((Σw/w_k)·|d|^β / (θ·Σw))
//
// δ(i,j) = Σ_k φ_k(i,j) and ξ(i) = Σ_j δ(i,j) − Σ_j δ(j,i). Alternatives are
// ranked by descending ξ. With α = β = 1 the value function reduces to the
// square-root form.
type TODIM struct {
	config TODIMConfig
	tracer trace.Tracer
}

// TODIMConfig holds the prospect value function parameters.
type TODIMConfig struct {
	// Theta is the loss-aversion coefficient θ.
	Theta float64 `yaml:"theta" json:"theta" validate:"gt=1,finite"`
	// Alpha is the gain curvature exponent.
	Alpha float64 `yaml:"alpha" json:"alpha" validate:"gt=0,max=1"`
	// Beta is the loss curvature exponent.
	Beta float64 `yaml:"beta" json:"beta" validate:"gt=0,max=1"`
}

// DefaultTODIMConfig returns θ = 2.5 with linear gain and loss curvature.
func DefaultTODIMConfig() TODIMConfig {
	return TODIMConfig{Theta: 2.5, Alpha: 1, Beta: 1}
}

// NewTODIM creates a TODIM algorithm with a validated configuration.
func NewTODIM(config TODIMConfig) (*TODIM, error) {
	if err := validateConfig(KeyTODIM, config); err != nil {
		return nil, err
	}
	return &TODIM{config: config, tracer: otel.Tracer(instrumentationPrefix + KeyTODIM)}, nil
}

// NewTODIMFromConfig is the registry factory for TODIM.
func NewTODIMFromConfig(params map[string]any) (ports.Algorithm, error) {
	cfg, err := configFromMap(KeyTODIM, DefaultTODIMConfig(), params)
	if err != nil {
		return nil, err
	}
	return NewTODIM(cfg)
}

// Name returns the registry key.
func (a *TODIM) Name() string { return KeyTODIM }

// Description returns a one-line summary.
func (a *TODIM) Description() string {
	return "TODIM: prospect-theory dominance with loss aversion"
}

// Config returns the construction-time configuration.
func (a *TODIM) Config() TODIMConfig { return a.config }

// Validate checks the configuration.
func (a *TODIM) Validate() error { return validateConfig(KeyTODIM, a.config) }

// UnmarshalParameters replaces the configuration from YAML. It must not be
// called concurrently with Calculate.
func (a *TODIM) UnmarshalParameters(params yaml.Node) error {
	cfg, err := decodeNode(KeyTODIM, DefaultTODIMConfig(), params)
	if err != nil {
		return err
	}
	a.config = cfg
	return nil
}

// Calculate ranks alternatives by descending global dominance.
func (a *TODIM) Calculate(ctx context.Context, p *domain.Problem, params map[string]any) (_ *domain.Result, err error) {
	span := startSpan(ctx, a.tracer, "TODIM.Calculate", KeyTODIM, p)
	defer func() { endSpan(span, err) }()

	cfg, err := resolveConfig(KeyTODIM, a.config, params)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	m, err := crispMatrix(KeyTODIM, p)
	if err != nil {
		return nil, err
	}

	alts := p.Alternatives()
	crits := p.Criteria()
	vf := newProspectFunction(cfg, p)
	n := len(alts)

	norm := make([][]float64, n)
	for i := range norm {
		norm[i] = make([]float64, len(crits))
	}
	for j, c := range crits {
		lo, hi := minMax(column(m, j))
		if hi-lo == 0 {
			continue
		}
		for i := range m {
			if c.Direction.IsBenefit() {
				norm[i][j] = (m[i][j] - lo) / (hi - lo)
			} else {
				norm[i][j] = (hi - m[i][j]) / (hi - lo)
			}
		}
	}

	delta := make([][]float64, n)
	for i := range delta {
		delta[i] = make([]float64, n)
		for j := range n {
			if i == j {
				continue
			}
			for k := range crits {
				delta[i][j] += vf.crisp(k, norm[i][k]-norm[j][k])
			}
		}
	}

	xi := make([]float64, n)
	for i := range n {
		for j := range n {
			xi[i] += delta[i][j] - delta[j][i]
		}
	}

	res, err := domain.NewResult(KeyTODIM, p, domain.RankDescending(alts, xi), scoreMap(alts, xi), map[string]any{
		"theta":                cfg.Theta,
		"normalized":           norm,
		"dominance_matrix":     delta,
		"global_dominance":     scoreMap(alts, xi),
		"normalized_dominance": scoreMap(alts, normalizeRange(xi)),
	})
	if err != nil {
		return nil, fmt.Errorf("build result: %w", err)
	}
	return res, nil
}

// prospectFunction evaluates the TODIM gain/loss value function per criterion.
type prospectFunction struct {
	weights []float64
	total   float64
	cfg     TODIMConfig
}

func newProspectFunction(cfg TODIMConfig, p *domain.Problem) prospectFunction {
	crits := p.Criteria()
	w := make([]float64, len(crits))
	for i, c := range crits {
		w[i] = c.Weight
	}
	return prospectFunction{weights: w, total: p.TotalWeight(), cfg: cfg}
}

// gain returns the value of a gain of magnitude d ≥ 0 on criterion k.
func (f prospectFunction) gain(k int, d float64) float64 {
	return math.Sqrt(f.weights[k] * math.Pow(d, f.cfg.Alpha) / f.total)
}

// loss returns the (negative) value of a loss of magnitude d ≥ 0 on criterion k.
func (f prospectFunction) loss(k int, d float64) float64 {
	return -math.Sqrt((f.total / f.weights[k]) * math.Pow(d, f.cfg.Beta) / (f.cfg.Theta * f.total))
}

// crisp applies the value function to a signed difference.
func (f prospectFunction) crisp(k int, d float64) float64 {
	switch {
	case f.weights[k] == 0 || d == 0:
		return 0
	case d > 0:
		return f.gain(k, d)
	default:
		return f.loss(k, -d)
	}
}

// interval applies the value function to a difference interval. The branch
// is chosen by the sign of the interval when it excludes zero and by the sign
// of its midpoint when it straddles zero; the magnitude is then clipped at 0.
func (f prospectFunction) interval(k int, d domain.Interval) domain.Interval {
	if f.weights[k] == 0 {
		return domain.Interval{}
	}
	switch mid := d.Midpoint(); {
	case mid > 0:
		return domain.MustInterval(f.gain(k, max(0, d.Lower())), f.gain(k, d.Upper()))
	case mid < 0:
		return domain.MustInterval(f.loss(k, -d.Lower()), f.loss(k, max(0, -d.Upper())))
	default:
		return domain.Interval{}
	}
}

// normalizeRange rescales xs to [0, 1]; a constant slice maps to zeros.
func normalizeRange(xs []float64) []float64 {
	lo, hi := minMax(xs)
	out := make([]float64, len(xs))
	if hi-lo == 0 {
		return out
	}
	for i, x := range xs {
		out[i] = (x - lo) / (hi - lo)
	}
	return out
}
