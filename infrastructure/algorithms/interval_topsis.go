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

var _ ports.Algorithm = (*IntervalTOPSIS)(nil)

// IntervalTOPSIS is TOPSIS over interval-valued scores.
//
// Each column is normalized by a scalar norm computed from midpoints, and both
// bounds are divided by it, so the weighted matrix stays interval-valued.
// Ideal and negative-ideal are chosen by comparing midpoints and remain
// scalars; distances are measured from each alternative's midpoint vector.
// Crisp cells take part as degenerate intervals.
type IntervalTOPSIS struct {
	config TOPSISConfig
	tracer trace.Tracer
}

// NewIntervalTOPSIS creates an interval TOPSIS algorithm.
func NewIntervalTOPSIS(config TOPSISConfig) (*IntervalTOPSIS, error) {
	return &IntervalTOPSIS{config: config, tracer: otel.Tracer(instrumentationPrefix + KeyIntervalTOPSIS)}, nil
}

// NewIntervalTOPSISFromConfig is the registry factory for interval TOPSIS.
func NewIntervalTOPSISFromConfig(params map[string]any) (ports.Algorithm, error) {
	cfg, err := configFromMap(KeyIntervalTOPSIS, TOPSISConfig{}, params)
	if err != nil {
		return nil, err
	}
	return NewIntervalTOPSIS(cfg)
}

// Name returns the registry key.
func (a *IntervalTOPSIS) Name() string { return KeyIntervalTOPSIS }

// Description returns a one-line summary.
func (a *IntervalTOPSIS) Description() string {
	return "Interval TOPSIS: closeness to midpoint-selected ideals over interval scores"
}

// Validate checks the configuration.
func (a *IntervalTOPSIS) Validate() error { return nil }

// UnmarshalParameters rejects any parameter, as TOPSIS has none.
func (a *IntervalTOPSIS) UnmarshalParameters(params yaml.Node) error {
	cfg, err := decodeNode(KeyIntervalTOPSIS, TOPSISConfig{}, params)
	if err != nil {
		return err
	}
	a.config = cfg
	return nil
}

// Calculate ranks alternatives by descending closeness.
func (a *IntervalTOPSIS) Calculate(ctx context.Context, p *domain.Problem, params map[string]any) (_ *domain.Result, err error) {
	span := startSpan(ctx, a.tracer, "IntervalTOPSIS.Calculate", KeyIntervalTOPSIS, p)
	defer func() { endSpan(span, err) }()

	if _, err := resolveConfig(KeyIntervalTOPSIS, a.config, params); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	alts := p.Alternatives()
	w := p.NormalizedWeights()
	ivs := intervalMatrix(p)
	mids := midpoints(ivs)

	// The midpoint pass yields the scalar norms, ideals and distances.
	sol := solveTOPSIS(mids, p.Criteria(), w)

	weighted := make(map[string][][2]float64, len(alts))
	for i, alt := range alts {
		row := make([][2]float64, len(ivs[i]))
		for j, iv := range ivs[i] {
			var v domain.Interval
			if sol.norms[j] > 0 {
				v = iv.Scale(w[j] / sol.norms[j])
			}
			row[j] = [2]float64{v.Lower(), v.Upper()}
		}
		weighted[alt] = row
	}

	metrics := sol.metrics(alts)
	metrics["weighted_intervals"] = weighted
	metrics["normalization_method"] = "vector_midpoint"

	res, err := domain.NewResult(KeyIntervalTOPSIS, p,
		domain.RankDescending(alts, sol.closeness),
		scoreMap(alts, sol.closeness),
		metrics,
	)
	if err != nil {
		return nil, fmt.Errorf("build result: %w", err)
	}
	return res, nil
}
