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

var _ ports.Algorithm = (*WSM)(nil)

// WSM ranks alternatives by weighted sum of benefit-oriented scores.
//
// Cost criteria are flipped to benefit orientation as MaxScore - value before
// weighting, and weights are normalized by their sum, so the aggregate stays
// on the scale of the raw scores. Single pass, O(n·m).
//
// WSM is stateless after construction and safe for concurrent use.
type WSM struct {
	config WSMConfig
	tracer trace.Tracer
}

// WSMConfig holds the weighted sum hyperparameters.
type WSMConfig struct {
	// MaxScore is the top of the score scale used to flip cost criteria.
	MaxScore float64 `yaml:"max_score" json:"max_score" validate:"gt=0,finite"`
}

// DefaultWSMConfig returns a 0-100 score scale.
func DefaultWSMConfig() WSMConfig {
	return WSMConfig{MaxScore: 100}
}

// NewWSM creates a WSM with a validated configuration.
func NewWSM(config WSMConfig) (*WSM, error) {
	if err := validateConfig(KeyWSM, config); err != nil {
		return nil, err
	}
	return &WSM{config: config, tracer: otel.Tracer(instrumentationPrefix + KeyWSM)}, nil
}

// NewWSMFromConfig is the registry factory for WSM.
func NewWSMFromConfig(params map[string]any) (ports.Algorithm, error) {
	cfg, err := configFromMap(KeyWSM, DefaultWSMConfig(), params)
	if err != nil {
		return nil, err
	}
	return NewWSM(cfg)
}

// Name returns the registry key.
func (a *WSM) Name() string { return KeyWSM }

// Description returns a one-line summary.
func (a *WSM) Description() string {
	return "Weighted sum model: linear aggregation of benefit-oriented scores"
}

// Config returns the construction-time configuration.
func (a *WSM) Config() WSMConfig { return a.config }

// Validate checks the configuration.
func (a *WSM) Validate() error { return validateConfig(KeyWSM, a.config) }

// UnmarshalParameters replaces the configuration from YAML. It must not be
// called concurrently with Calculate.
func (a *WSM) UnmarshalParameters(params yaml.Node) error {
	cfg, err := decodeNode(KeyWSM, DefaultWSMConfig(), params)
	if err != nil {
		return err
	}
	a.config = cfg
	return nil
}

// Calculate ranks alternatives by descending weighted sum.
func (a *WSM) Calculate(ctx context.Context, p *domain.Problem, params map[string]any) (_ *domain.Result, err error) {
	span := startSpan(ctx, a.tracer, "WSM.Calculate", KeyWSM, p)
	defer func() { endSpan(span, err) }()

	cfg, err := resolveConfig(KeyWSM, a.config, params)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	m, err := crispMatrix(KeyWSM, p)
	if err != nil {
		return nil, err
	}

	alts := p.Alternatives()
	crits := p.Criteria()
	w := p.NormalizedWeights()

	scores := make([]float64, len(alts))
	oriented := make(map[string][]float64, len(alts))
	for i, alt := range alts {
		row := make([]float64, len(crits))
		for j, c := range crits {
			v := m[i][j]
			if !c.Direction.IsBenefit() {
				v = cfg.MaxScore - v
			}
			row[j] = v
			scores[i] += w[j] * v
		}
		oriented[alt] = row
	}

	res, err := domain.NewResult(KeyWSM, p, domain.RankDescending(alts, scores), scoreMap(alts, scores), map[string]any{
		"normalized_weights": w,
		"oriented_scores":    oriented,
		"max_score":          cfg.MaxScore,
	})
	if err != nil {
		return nil, fmt.Errorf("build result: %w", err)
	}
	return res, nil
}
