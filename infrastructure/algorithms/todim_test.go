package algorithms

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-mcda/internal/domain"
	"github.com/ahrav/go-mcda/internal/testutils"
)

func TestTODIM_TwoAlternatives(t *testing.T) {
	alg, err := NewTODIM(DefaultTODIMConfig())
	require.NoError(t, err)

	res, err := alg.Calculate(context.Background(), testutils.SingleCriterion(t, domain.HigherBetter, 3, 4), nil)
	require.NoError(t, err)

	// Normalized scores are 0 and 1: gain sqrt(1), loss -sqrt(1/θ).
	want := 1 + math.Sqrt(1/2.5)
	xi := res.RawScores()
	assert.InDelta(t, want, xi["B"], 1e-12)
	assert.InDelta(t, -want, xi["A"], 1e-12)
	assert.Equal(t, []string{"B", "A"}, res.Order())

	norm, ok := res.Metric("normalized_dominance")
	require.True(t, ok)
	assert.Equal(t, map[string]float64{"A": 0, "B": 1}, norm)
}

func TestTODIM_Direction(t *testing.T) {
	tests := []struct {
		name      string
		direction domain.Direction
		wantOrder []string
	}{
		{name: "benefit", direction: domain.HigherBetter, wantOrder: []string{"C", "B", "A"}},
		{name: "cost", direction: domain.LowerBetter, wantOrder: []string{"A", "B", "C"}},
	}

	alg, err := NewTODIM(DefaultTODIMConfig())
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := alg.Calculate(context.Background(), testutils.SingleCriterion(t, tt.direction, 1, 2, 3), nil)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOrder, res.Order())
		})
	}
}

func TestTODIM_Suppliers(t *testing.T) {
	alg, err := NewTODIM(DefaultTODIMConfig())
	require.NoError(t, err)

	res, err := alg.Calculate(context.Background(), testutils.SupplierProblem(t), nil)
	require.NoError(t, err)

	assert.Less(t, res.RankOf("s3"), res.RankOf("s4"))

	var sum float64
	for _, xi := range res.RawScores() {
		sum += xi
	}
	assert.InDelta(t, 0, sum, 1e-9, "global dominance is antisymmetric")

	norm, _ := res.Metric("normalized_dominance")
	for alt, v := range norm.(map[string]float64) {
		assert.GreaterOrEqual(t, v, 0.0, alt)
		assert.LessOrEqual(t, v, 1.0, alt)
	}
}

func TestProspectFunction(t *testing.T) {
	f := prospectFunction{weights: []float64{0.5, 0}, total: 1, cfg: TODIMConfig{Theta: 2, Alpha: 0.5, Beta: 1}}

	assert.Equal(t, 0.0, f.crisp(0, 0))
	assert.Equal(t, 0.0, f.crisp(1, 0.7), "zero weight contributes nothing")
	assert.InDelta(t, math.Sqrt(0.5*math.Sqrt(0.25)), f.crisp(0, 0.25), 1e-12)
	assert.InDelta(t, -math.Sqrt(2*0.25/2), f.crisp(0, -0.25), 1e-12)

	t.Run("interval picks branch by midpoint", func(t *testing.T) {
		gain := f.interval(0, domain.MustInterval(-0.1, 0.5))
		assert.Equal(t, 0.0, gain.Lower(), "negative part is clipped")
		assert.InDelta(t, f.gain(0, 0.5), gain.Upper(), 1e-12)

		loss := f.interval(0, domain.MustInterval(-0.5, 0.1))
		assert.InDelta(t, f.loss(0, 0.5), loss.Lower(), 1e-12)
		assert.Equal(t, 0.0, loss.Upper())

		assert.Equal(t, domain.Interval{}, f.interval(0, domain.MustInterval(-0.2, 0.2)))
	})
}

func TestTODIM_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]any
		field  string
	}{
		{name: "theta at one", params: map[string]any{"theta": 1}, field: "theta"},
		{name: "theta negative", params: map[string]any{"theta": -2}, field: "theta"},
		{name: "alpha zero", params: map[string]any{"alpha": 0}, field: "alpha"},
		{name: "beta above one", params: map[string]any{"beta": 1.2}, field: "beta"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTODIMFromConfig(tt.params)
			require.ErrorIs(t, err, domain.ErrInvalidParameter)

			var perr *domain.ParameterError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.field, perr.Field)
		})
	}
}
