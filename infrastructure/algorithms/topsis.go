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

var _ ports.Algorithm = (*TOPSIS)(nil)

// TOPSIS ranks alternatives by relative closeness to the ideal solution.
//
// Algorithm:
//  1. Vector-normalize each criterion column: r = x / sqrt(Σx²)
//  2. Weight: v = w·r with normalized weights
//  3. Ideal is the column max for benefit criteria and min for cost criteria;
//     the negative-ideal is the opposite
//  4. Euclidean distances D⁺ and D⁻ to ideal and negative-ideal
//  5. Closeness C = D⁻ / (D⁺ + D⁻), 0 when both distances are 0
//
// C always lies in [0, 1]; higher is better.
type TOPSIS struct {
	config TOPSISConfig
	tracer trace.Tracer
}

// TOPSISConfig has no tunable hyperparameters. It exists so TOPSIS decodes
// and validates parameters like every other algorithm and rejects unknown keys.
type TOPSISConfig struct{}

// NewTOPSIS creates a TOPSIS algorithm.
func NewTOPSIS(config TOPSISConfig) (*TOPSIS, error) {
	return &TOPSIS{config: config, tracer: otel.Tracer(instrumentationPrefix + KeyTOPSIS)}, nil
}

// NewTOPSISFromConfig is the registry factory for TOPSIS.
func NewTOPSISFromConfig(params map[string]any) (ports.Algorithm, error) {
	cfg, err := configFromMap(KeyTOPSIS, TOPSISConfig{}, params)
	if err != nil {
		return nil, err
	}
	return NewTOPSIS(cfg)
}

// Name returns the registry key.
func (a *TOPSIS) Name() string { return KeyTOPSIS }

// Description returns a one-line summary.
func (a *TOPSIS) Description() string {
	return "TOPSIS: relative closeness to the ideal and negative-ideal solutions"
}

// Validate checks the configuration.
func (a *TOPSIS) Validate() error { return nil }

// UnmarshalParameters rejects any parameter, as TOPSIS has none.
func (a *TOPSIS) UnmarshalParameters(params yaml.Node) error {
	cfg, err := decodeNode(KeyTOPSIS, TOPSISConfig{}, params)
	if err != nil {
		return err
	}
	a.config = cfg
	return nil
}

// Calculate ranks alternatives by descending closeness.
func (a *TOPSIS) Calculate(ctx context.Context, p *domain.Problem, params map[string]any) (_ *domain.Result, err error) {
	span := startSpan(ctx, a.tracer, "TOPSIS.Calculate", KeyTOPSIS, p)
	defer func() { endSpan(span, err) }()

	if _, err := resolveConfig(KeyTOPSIS, a.config, params); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	m, err := crispMatrix(KeyTOPSIS, p)
	if err != nil {
		return nil, err
	}

	alts := p.Alternatives()
	sol := solveTOPSIS(m, p.Criteria(), p.NormalizedWeights())

	res, err := domain.NewResult(KeyTOPSIS, p,
		domain.RankDescending(alts, sol.closeness),
		scoreMap(alts, sol.closeness),
		sol.metrics(alts),
	)
	if err != nil {
		return nil, fmt.Errorf("build result: %w", err)
	}
	return res, nil
}

// topsisSolution holds every intermediate of a TOPSIS pass.
type topsisSolution struct {
	norms     []float64
	weighted  [][]float64
	ideal     []float64
	antiIdeal []float64
	dPlus     []float64
	dMinus    []float64
	closeness []float64
}

func (s topsisSolution) metrics(alts []string) map[string]any {
	return map[string]any{
		"column_norms":         s.norms,
		"weighted_matrix":      s.weighted,
		"ideal":                s.ideal,
		"negative_ideal":       s.antiIdeal,
		"distance_to_ideal":    scoreMap(alts, s.dPlus),
		"distance_to_nadir":    scoreMap(alts, s.dMinus),
		"relative_closeness":   scoreMap(alts, s.closeness),
		"normalization_method": "vector",
	}
}

// columnNorms returns sqrt(Σx²) per column.
func columnNorms(m [][]float64) []float64 {
	norms := make([]float64, len(m[0]))
	for j := range norms {
		var ss float64
		for i := range m {
			ss += m[i][j] * m[i][j]
		}
		norms[j] = math.Sqrt(ss)
	}
	return norms
}

// solveTOPSIS runs steps 1-5 on a crisp matrix.
func solveTOPSIS(m [][]float64, crits []domain.Criterion, w []float64) topsisSolution {
	n, k := len(m), len(crits)
	s := topsisSolution{
		norms:     columnNorms(m),
		weighted:  make([][]float64, n),
		ideal:     make([]float64, k),
		antiIdeal: make([]float64, k),
		dPlus:     make([]float64, n),
		dMinus:    make([]float64, n),
		closeness: make([]float64, n),
	}

	for i := range m {
		s.weighted[i] = make([]float64, k)
		for j := range k {
			if s.norms[j] > 0 {
				s.weighted[i][j] = w[j] * m[i][j] / s.norms[j]
			}
		}
	}

	for j, c := range crits {
		lo, hi := minMax(column(s.weighted, j))
		if c.Direction.IsBenefit() {
			s.ideal[j], s.antiIdeal[j] = hi, lo
		} else {
			s.ideal[j], s.antiIdeal[j] = lo, hi
		}
	}

	for i := range m {
		var dp, dm float64
		for j := range k {
			dp += (s.weighted[i][j] - s.ideal[j]) * (s.weighted[i][j] - s.ideal[j])
			dm += (s.weighted[i][j] - s.antiIdeal[j]) * (s.weighted[i][j] - s.antiIdeal[j])
		}
		s.dPlus[i] = math.Sqrt(dp)
		s.dMinus[i] = math.Sqrt(dm)
		if total := s.dPlus[i] + s.dMinus[i]; total > 0 {
			s.closeness[i] = s.dMinus[i] / total
		}
	}
	return s
}
