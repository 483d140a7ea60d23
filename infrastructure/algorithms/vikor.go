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

var _ ports.Algorithm = (*VIKOR)(nil)

// VIKOR ranks alternatives by the compromise value Q, lower is better.
//
// Each criterion is min-max normalized to f ∈ [0, 1] in benefit orientation.
// Group utility S = Σ w·f and individual regret R = max(w·f) are combined as
//
//	Q = v·(S−S_min)/(S_max−S_min) + (1−v)·(R−R_min)/(R_max−R_min)
//
// where a term is zero when its denominator is zero. Q always lies in [0, 1].
// With v = 1 the ranking follows normalized S alone, with v = 0 normalized R.
type VIKOR struct {
	config VIKORConfig
	tracer trace.Tracer
}

// VIKORConfig holds the VIKOR hyperparameters shared by both variants.
type VIKORConfig struct {
	// V is the weight of the group utility strategy ("majority of criteria").
	V float64 `yaml:"v" json:"v" validate:"min=0,max=1"`
}

// DefaultVIKORConfig returns the consensus strategy v = 0.5.
func DefaultVIKORConfig() VIKORConfig {
	return VIKORConfig{V: 0.5}
}

// NewVIKOR creates a VIKOR algorithm with a validated configuration.
func NewVIKOR(config VIKORConfig) (*VIKOR, error) {
	if err := validateConfig(KeyVIKOR, config); err != nil {
		return nil, err
	}
	return &VIKOR{config: config, tracer: otel.Tracer(instrumentationPrefix + KeyVIKOR)}, nil
}

// NewVIKORFromConfig is the registry factory for VIKOR.
func NewVIKORFromConfig(params map[string]any) (ports.Algorithm, error) {
	cfg, err := configFromMap(KeyVIKOR, DefaultVIKORConfig(), params)
	if err != nil {
		return nil, err
	}
	return NewVIKOR(cfg)
}

// Name returns the registry key.
func (a *VIKOR) Name() string { return KeyVIKOR }

// Description returns a one-line summary.
func (a *VIKOR) Description() string {
	return "VIKOR: compromise ranking balancing group utility and individual regret"
}

// Config returns the construction-time configuration.
func (a *VIKOR) Config() VIKORConfig { return a.config }

// Validate checks the configuration.
func (a *VIKOR) Validate() error { return validateConfig(KeyVIKOR, a.config) }

// UnmarshalParameters replaces the configuration from YAML. It must not be
// called concurrently with Calculate.
func (a *VIKOR) UnmarshalParameters(params yaml.Node) error {
	cfg, err := decodeNode(KeyVIKOR, DefaultVIKORConfig(), params)
	if err != nil {
		return err
	}
	a.config = cfg
	return nil
}

// Calculate ranks alternatives by ascending Q.
func (a *VIKOR) Calculate(ctx context.Context, p *domain.Problem, params map[string]any) (_ *domain.Result, err error) {
	span := startSpan(ctx, a.tracer, "VIKOR.Calculate", KeyVIKOR, p)
	defer func() { endSpan(span, err) }()

	cfg, err := resolveConfig(KeyVIKOR, a.config, params)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	m, err := crispMatrix(KeyVIKOR, p)
	if err != nil {
		return nil, err
	}

	alts := p.Alternatives()
	crits := p.Criteria()
	w := p.NormalizedWeights()
	n := len(alts)

	f := make([][]float64, n)
	for i := range f {
		f[i] = make([]float64, len(crits))
	}
	for j, c := range crits {
		lo, hi := minMax(column(m, j))
		if hi-lo == 0 {
			continue
		}
		for i := range m {
			if c.Direction.IsBenefit() {
				f[i][j] = (m[i][j] - lo) / (hi - lo)
			} else {
				f[i][j] = (hi - m[i][j]) / (hi - lo)
			}
		}
	}

	s := make([]float64, n)
	r := make([]float64, n)
	for i := range f {
		for j := range crits {
			wf := w[j] * f[i][j]
			s[i] += wf
			r[i] = max(r[i], wf)
		}
	}
	q := compromiseValues(s, r, cfg.V)

	rankings := domain.RankAscending(alts, q)
	metrics := map[string]any{
		"v":                 cfg.V,
		"normalized":        f,
		"group_utility":     scoreMap(alts, s),
		"individual_regret": scoreMap(alts, r),
		"compromise_value":  scoreMap(alts, q),
		"ordering":          "ascending_q",
	}
	for k, v := range compromiseConditions(alts, rankings, q, s, r) {
		metrics[k] = v
	}

	res, err := domain.NewResult(KeyVIKOR, p, rankings, scoreMap(alts, q), metrics)
	if err != nil {
		return nil, fmt.Errorf("build result: %w", err)
	}
	return res, nil
}

// compromiseValues blends normalized S and R with strategy weight v.
func compromiseValues(s, r []float64, v float64) []float64 {
	sMin, sMax := minMax(s)
	rMin, rMax := minMax(r)
	q := make([]float64, len(s))
	for i := range s {
		if sMax-sMin > 0 {
			q[i] += v * (s[i] - sMin) / (sMax - sMin)
		}
		if rMax-rMin > 0 {
			q[i] += (1 - v) * (r[i] - rMin) / (rMax - rMin)
		}
	}
	return q
}

// compromiseConditions evaluates acceptable advantage and acceptable
// stability for the leader of rankings and derives the compromise set.
// q, s and r are scalar (midpoint) values parallel to alts.
func compromiseConditions(alts []string, rankings []domain.RankedAlternative, q, s, r []float64) map[string]any {
	index := make(map[string]int, len(alts))
	for i, a := range alts {
		index[a] = i
	}
	order := make([]int, len(rankings))
	for k, ra := range rankings {
		order[k] = index[ra.Alternative]
	}

	dq := 1 / float64(len(alts)-1)
	first := order[0]
	advantage := q[order[1]]-q[first] >= dq-domain.Tolerance

	sMin, _ := minMax(s)
	rMin, _ := minMax(r)
	stability := domain.CompareScores(s[first], sMin) == 0 || domain.CompareScores(r[first], rMin) == 0

	var set []string
	switch {
	case advantage && stability:
		set = []string{alts[first]}
	case !advantage:
		for _, i := range order {
			if q[i]-q[first] < dq-domain.Tolerance || i == first {
				set = append(set, alts[i])
			}
		}
	default:
		set = []string{alts[first], alts[order[1]]}
	}

	return map[string]any{
		"dq":                   dq,
		"acceptable_advantage": advantage,
		"acceptable_stability": stability,
		"compromise_set":       set,
	}
}
