package algorithms

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-mcda/internal/domain"
	"github.com/ahrav/go-mcda/internal/ports"
)

var _ ports.Algorithm = (*PROMETHEE)(nil)

// Preference function families.
const (
	FunctionUsual              = "usual"
	FunctionUShape             = "u_shape"
	FunctionVShape             = "v_shape"
	FunctionLevel              = "level"
	FunctionVShapeIndifference = "v_shape_indifference"
	FunctionGaussian           = "gaussian"
)

// PROMETHEE is PROMETHEE-II: ranking by net outranking flow.
//
// For each criterion the direction-oriented difference d = x_i − x_j is mapped
// to a preference degree P(d) ∈ [0, 1] by the configured preference function.
// π(i,j) = Σ w·P, the leaving flow Φ⁺(i) = Σ_j π(i,j)/(n−1), the entering flow
// Φ⁻(i) = Σ_j π(j,i)/(n−1), and the net flow Φ = Φ⁺ − Φ⁻ sums to zero over
// all alternatives.
type PROMETHEE struct {
	config PROMETHEEConfig
	tracer trace.Tracer
}

// PreferenceFunction selects a preference function family and its thresholds.
type PreferenceFunction struct {
	Function string `yaml:"function" json:"function" validate:"oneof=usual u_shape v_shape level v_shape_indifference gaussian"`
	// Q is the indifference threshold.
	Q float64 `yaml:"q" json:"q" validate:"min=0,finite"`
	// P is the strict preference threshold.
	P float64 `yaml:"p" json:"p" validate:"min=0,finite"`
	// S is the gaussian spread.
	S float64 `yaml:"s" json:"s" validate:"min=0,finite"`
}

// PROMETHEEConfig holds the default preference function and optional
// per-criterion overrides keyed by criterion name.
type PROMETHEEConfig struct {
	Function string                        `yaml:"function" json:"function" validate:"oneof=usual u_shape v_shape level v_shape_indifference gaussian"`
	Q        float64                       `yaml:"q" json:"q" validate:"min=0,finite"`
	P        float64                       `yaml:"p" json:"p" validate:"min=0,finite"`
	S        float64                       `yaml:"s" json:"s" validate:"min=0,finite"`
	Criteria map[string]PreferenceFunction `yaml:"criteria,omitempty" json:"criteria,omitempty" validate:"dive"`
}

// DefaultPROMETHEEConfig returns the usual (step) function.
func DefaultPROMETHEEConfig() PROMETHEEConfig {
	return PROMETHEEConfig{Function: FunctionUsual}
}

// defaultFunction is the function applied to criteria without an override.
func (c PROMETHEEConfig) defaultFunction() PreferenceFunction {
	return PreferenceFunction{Function: c.Function, Q: c.Q, P: c.P, S: c.S}
}

// For returns the preference function for the named criterion.
func (c PROMETHEEConfig) For(criterion string) PreferenceFunction {
	if f, ok := c.Criteria[criterion]; ok {
		return f
	}
	return c.defaultFunction()
}

func (c PROMETHEEConfig) check(algorithm string) error {
	if err := c.defaultFunction().check(algorithm, ""); err != nil {
		return err
	}
	names := make([]string, 0, len(c.Criteria))
	for name := range c.Criteria {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := c.Criteria[name].check(algorithm, "criteria["+name+"]."); err != nil {
			return err
		}
	}
	return nil
}

// check enforces the threshold relations each family needs.
func (f PreferenceFunction) check(algorithm, prefix string) error {
	switch f.Function {
	case FunctionVShape:
		if f.P <= 0 {
			return domain.NewParameterError(algorithm, prefix+"p", f.P, "must be greater than 0 for v_shape")
		}
	case FunctionLevel, FunctionVShapeIndifference:
		if f.P < f.Q {
			return domain.NewParameterError(algorithm, prefix+"p", f.P, fmt.Sprintf("must be at least q=%g for %s", f.Q, f.Function))
		}
	case FunctionGaussian:
		if f.S <= 0 {
			return domain.NewParameterError(algorithm, prefix+"s", f.S, "must be greater than 0 for gaussian")
		}
	}
	return nil
}

// Degree returns the preference degree for an oriented difference d.
func (f PreferenceFunction) Degree(d float64) float64 {
	if d <= domain.Tolerance {
		return 0
	}
	switch f.Function {
	case FunctionUShape:
		if d > f.Q {
			return 1
		}
		return 0
	case FunctionVShape:
		if d >= f.P {
			return 1
		}
		return d / f.P
	case FunctionLevel:
		switch {
		case d <= f.Q:
			return 0
		case d <= f.P:
			return 0.5
		default:
			return 1
		}
	case FunctionVShapeIndifference:
		switch {
		case d <= f.Q:
			return 0
		case d >= f.P:
			return 1
		default:
			return (d - f.Q) / (f.P - f.Q)
		}
	case FunctionGaussian:
		return 1 - math.Exp(-d*d/(2*f.S*f.S))
	default:
		return 1
	}
}

// NewPROMETHEE creates a PROMETHEE-II algorithm with a validated configuration.
func NewPROMETHEE(config PROMETHEEConfig) (*PROMETHEE, error) {
	if err := validateConfig(KeyPROMETHEE, config); err != nil {
		return nil, err
	}
	return &PROMETHEE{config: config, tracer: otel.Tracer(instrumentationPrefix + KeyPROMETHEE)}, nil
}

// NewPROMETHEEFromConfig is the registry factory for PROMETHEE-II.
func NewPROMETHEEFromConfig(params map[string]any) (ports.Algorithm, error) {
	cfg, err := configFromMap(KeyPROMETHEE, DefaultPROMETHEEConfig(), params)
	if err != nil {
		return nil, err
	}
	return NewPROMETHEE(cfg)
}

// Name returns the registry key.
func (a *PROMETHEE) Name() string { return KeyPROMETHEE }

// Description returns a one-line summary.
func (a *PROMETHEE) Description() string {
	return "PROMETHEE-II: net outranking flow from pairwise preference functions"
}

// Config returns the construction-time configuration.
func (a *PROMETHEE) Config() PROMETHEEConfig { return a.config }

// Validate checks the configuration.
func (a *PROMETHEE) Validate() error { return validateConfig(KeyPROMETHEE, a.config) }

// UnmarshalParameters replaces the configuration from YAML. It must not be
// called concurrently with Calculate.
func (a *PROMETHEE) UnmarshalParameters(params yaml.Node) error {
	cfg, err := decodeNode(KeyPROMETHEE, DefaultPROMETHEEConfig(), params)
	if err != nil {
		return err
	}
	a.config = cfg
	return nil
}

// Calculate ranks alternatives by descending net flow.
func (a *PROMETHEE) Calculate(ctx context.Context, p *domain.Problem, params map[string]any) (_ *domain.Result, err error) {
	span := startSpan(ctx, a.tracer, "PROMETHEE.Calculate", KeyPROMETHEE, p)
	defer func() { endSpan(span, err) }()

	cfg, err := resolveConfig(KeyPROMETHEE, a.config, params)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	m, err := crispMatrix(KeyPROMETHEE, p)
	if err != nil {
		return nil, err
	}

	fl, err := computeFlows(KeyPROMETHEE, p, m, cfg)
	if err != nil {
		return nil, err
	}
	return fl.result(KeyPROMETHEE, p, nil)
}

// flows holds the PROMETHEE-II intermediate matrices.
type flows struct {
	alts       []string
	functions  map[string]PreferenceFunction
	preference [][]float64
	leaving    []float64
	entering   []float64
	net        []float64
}

// computeFlows evaluates preference indices and flows over m, indexed
// [alternative][criterion].
func computeFlows(algorithm string, p *domain.Problem, m [][]float64, cfg PROMETHEEConfig) (flows, error) {
	alts := p.Alternatives()
	crits := p.Criteria()
	w := p.NormalizedWeights()
	n := len(alts)

	for name := range cfg.Criteria {
		if !slices.ContainsFunc(crits, func(c domain.Criterion) bool { return c.Name == name }) {
			return flows{}, domain.NewParameterError(algorithm, "criteria", name, "names an unknown criterion")
		}
	}

	fns := make([]PreferenceFunction, len(crits))
	used := make(map[string]PreferenceFunction, len(crits))
	for k, c := range crits {
		fns[k] = cfg.For(c.Name)
		used[c.Name] = fns[k]
	}

	pi := newMatrix(n)
	for i := range n {
		for j := range n {
			if i == j {
				continue
			}
			for k, c := range crits {
				d := m[i][k] - m[j][k]
				if !c.Direction.IsBenefit() {
					d = -d
				}
				pi[i][j] += w[k] * fns[k].Degree(d)
			}
		}
	}

	fl := flows{
		alts:       alts,
		functions:  used,
		preference: pi,
		leaving:    make([]float64, n),
		entering:   make([]float64, n),
		net:        make([]float64, n),
	}
	scale := 1 / float64(n-1)
	for i := range n {
		for j := range n {
			fl.leaving[i] += pi[i][j] * scale
			fl.entering[i] += pi[j][i] * scale
		}
	}
	for i := range n {
		fl.net[i] = fl.leaving[i] - fl.entering[i]
	}
	return fl, nil
}

// result ranks by net flow and merges extra into the flow metrics.
func (fl flows) result(algorithm string, p *domain.Problem, extra map[string]any) (*domain.Result, error) {
	metrics := map[string]any{
		"preference_functions": fl.functions,
		"preference_matrix":    fl.preference,
		"leaving_flow":         scoreMap(fl.alts, fl.leaving),
		"entering_flow":        scoreMap(fl.alts, fl.entering),
		"net_flow":             scoreMap(fl.alts, fl.net),
	}
	for k, v := range extra {
		metrics[k] = v
	}
	res, err := domain.NewResult(algorithm, p, domain.RankDescending(fl.alts, fl.net), scoreMap(fl.alts, fl.net), metrics)
	if err != nil {
		return nil, fmt.Errorf("build result: %w", err)
	}
	return res, nil
}
