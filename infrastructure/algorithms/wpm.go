package algorithms

import (
	"cmp"
	"context"
	"fmt"
	"math"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-mcda/internal/domain"
	"github.com/ahrav/go-mcda/internal/ports"
)

var _ ports.Algorithm = (*WPM)(nil)

// WPM ranks alternatives by weighted product: Π value^w for benefit criteria
// and Π value^-w for cost criteria, with normalized weights. Non-positive
// values are floored at MinValue so no base is zero or negative.
type WPM struct {
	config WPMConfig
	tracer trace.Tracer
}

// WPMConfig holds the weighted product hyperparameters.
type WPMConfig struct {
	// MinValue is the floor applied to non-positive scores.
	MinValue float64 `yaml:"min_value" json:"min_value" validate:"gt=0,finite"`
}

// DefaultWPMConfig returns a 1e-9 floor.
func DefaultWPMConfig() WPMConfig {
	return WPMConfig{MinValue: 1e-9}
}

// NewWPM creates a WPM with a validated configuration.
func NewWPM(config WPMConfig) (*WPM, error) {
	if err := validateConfig(KeyWPM, config); err != nil {
		return nil, err
	}
	return &WPM{config: config, tracer: otel.Tracer(instrumentationPrefix + KeyWPM)}, nil
}

// NewWPMFromConfig is the registry factory for WPM.
func NewWPMFromConfig(params map[string]any) (ports.Algorithm, error) {
	cfg, err := configFromMap(KeyWPM, DefaultWPMConfig(), params)
	if err != nil {
		return nil, err
	}
	return NewWPM(cfg)
}

// Name returns the registry key.
func (a *WPM) Name() string { return KeyWPM }

// Description returns a one-line summary.
func (a *WPM) Description() string {
	return "Weighted product model: geometric aggregation with weight exponents"
}

// Config returns the construction-time configuration.
func (a *WPM) Config() WPMConfig { return a.config }

// Validate checks the configuration.
func (a *WPM) Validate() error { return validateConfig(KeyWPM, a.config) }

// UnmarshalParameters replaces the configuration from YAML. It must not be
// called concurrently with Calculate.
func (a *WPM) UnmarshalParameters(params yaml.Node) error {
	cfg, err := decodeNode(KeyWPM, DefaultWPMConfig(), params)
	if err != nil {
		return err
	}
	a.config = cfg
	return nil
}

// Calculate ranks alternatives by descending weighted product.
func (a *WPM) Calculate(ctx context.Context, p *domain.Problem, params map[string]any) (_ *domain.Result, err error) {
	span := startSpan(ctx, a.tracer, "WPM.Calculate", KeyWPM, p)
	defer func() { endSpan(span, err) }()

	cfg, err := resolveConfig(KeyWPM, a.config, params)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	m, err := crispMatrix(KeyWPM, p)
	if err != nil {
		return nil, err
	}

	alts := p.Alternatives()
	crits := p.Criteria()
	w := p.NormalizedWeights()

	// Ranks compare log-products, so the tie tolerance is relative to the
	// product.
	logs := make([]float64, len(alts))
	scores := make([]float64, len(alts))
	floored := 0
	for i := range alts {
		for j, c := range crits {
			v := m[i][j]
			if v <= 0 {
				v = cfg.MinValue
				floored++
			}
			exp := w[j]
			if !c.Direction.IsBenefit() {
				exp = -exp
			}
			logs[i] += exp * math.Log(v)
		}
		scores[i] = math.Exp(logs[i])
	}

	rankings := domain.RankFunc(alts, scores,
		func(i, j int) int { return cmp.Compare(logs[j], logs[i]) },
		func(i, j int) bool { return domain.CompareScores(logs[i], logs[j]) == 0 },
	)

	res, err := domain.NewResult(KeyWPM, p, rankings, scoreMap(alts, scores), map[string]any{
		"normalized_weights": w,
		"log_products":       scoreMap(alts, logs),
		"floored_cells":      floored,
		"min_value":          cfg.MinValue,
	})
	if err != nil {
		return nil, fmt.Errorf("build result: %w", err)
	}
	return res, nil
}
