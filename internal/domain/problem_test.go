package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCriteria() []Criterion {
	return []Criterion{
		{Name: "quality", Weight: 0.6, Direction: HigherBetter},
		{Name: "cost", Weight: 0.4, Direction: LowerBetter},
	}
}

func validScores() map[string]map[string]Value {
	return map[string]map[string]Value{
		"a": {"quality": Scalar(7), "cost": Scalar(300)},
		"b": {"quality": IntervalValue(MustInterval(6, 9)), "cost": Scalar(250)},
	}
}

func TestNewProblem(t *testing.T) {
	p, err := NewProblem([]string{"a", "b"}, validCriteria(), validScores())
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, p.Alternatives())
	assert.Equal(t, 2, p.NumAlternatives())
	assert.Equal(t, 2, p.NumCriteria())
	assert.InDelta(t, 1.0, p.TotalWeight(), 1e-12)
	assert.True(t, p.HasIntervals())
	assert.Equal(t, ProblemSize{Alternatives: 2, Criteria: 2}, p.Size())

	v, ok := p.Score("b", "quality")
	require.True(t, ok)
	assert.True(t, v.IsInterval())
	assert.Equal(t, 7.5, v.Float())

	_, ok = p.Score("z", "quality")
	assert.False(t, ok)
}

func TestNewProblemCopiesInputs(t *testing.T) {
	alts := []string{"a", "b"}
	crits := validCriteria()
	scores := validScores()

	p, err := NewProblem(alts, crits, scores)
	require.NoError(t, err)

	alts[0] = "mutated"
	crits[0].Weight = 0
	scores["a"]["quality"] = Scalar(-1)

	assert.Equal(t, "a", p.Alternatives()[0])
	assert.Equal(t, 0.6, p.Criteria()[0].Weight)
	v, _ := p.Score("a", "quality")
	assert.Equal(t, 7.0, v.Float())

	// Accessors return copies too.
	p.Alternatives()[1] = "mutated"
	assert.Equal(t, "b", p.Alternatives()[1])
}

func TestNewProblemValidation(t *testing.T) {
	tests := []struct {
		name     string
		alts     []string
		criteria []Criterion
		scores   map[string]map[string]Value
		wantMsg  string
	}{
		{
			name:     "too few alternatives",
			alts:     []string{"a"},
			criteria: validCriteria(),
			scores:   validScores(),
			wantMsg:  "alternatives: need at least 2, got 1",
		},
		{
			name:     "no criteria",
			alts:     []string{"a", "b"},
			criteria: nil,
			scores:   validScores(),
			wantMsg:  "criteria: need at least 1, got 0",
		},
		{
			name:     "duplicate alternative",
			alts:     []string{"a", "a"},
			criteria: validCriteria(),
			scores:   validScores(),
			wantMsg:  `duplicate name "a"`,
		},
		{
			name: "weight out of range",
			alts: []string{"a", "b"},
			criteria: []Criterion{
				{Name: "quality", Weight: 1.5, Direction: HigherBetter},
				{Name: "cost", Weight: 0.4, Direction: LowerBetter},
			},
			scores:  validScores(),
			wantMsg: "criteria[quality].weight: 1.5 outside [0, 1]",
		},
		{
			name: "zero total weight",
			alts: []string{"a", "b"},
			criteria: []Criterion{
				{Name: "quality", Weight: 0, Direction: HigherBetter},
				{Name: "cost", Weight: 0, Direction: LowerBetter},
			},
			scores:  validScores(),
			wantMsg: "total weight must be positive",
		},
		{
			name: "unknown direction",
			alts: []string{"a", "b"},
			criteria: []Criterion{
				{Name: "quality", Weight: 0.6, Direction: "sideways"},
				{Name: "cost", Weight: 0.4, Direction: LowerBetter},
			},
			scores:  validScores(),
			wantMsg: `unknown direction "sideways"`,
		},
		{
			name:     "missing score",
			alts:     []string{"a", "b"},
			criteria: validCriteria(),
			scores: map[string]map[string]Value{
				"a": {"quality": Scalar(7), "cost": Scalar(300)},
				"b": {"quality": Scalar(6)},
			},
			wantMsg: "scores[b][cost]: missing value",
		},
		{
			name:     "missing row",
			alts:     []string{"a", "b"},
			criteria: validCriteria(),
			scores: map[string]map[string]Value{
				"a": {"quality": Scalar(7), "cost": Scalar(300)},
			},
			wantMsg: "scores[b]: missing row",
		},
		{
			name:     "non-finite score",
			alts:     []string{"a", "b"},
			criteria: validCriteria(),
			scores: map[string]map[string]Value{
				"a": {"quality": Scalar(math.Inf(1)), "cost": Scalar(300)},
				"b": {"quality": Scalar(6), "cost": Scalar(250)},
			},
			wantMsg: "scores[a][quality]: non-finite value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProblem(tt.alts, tt.criteria, tt.scores)
			require.Error(t, err)
			assert.Nil(t, p)
			assert.ErrorIs(t, err, ErrInvalidProblem)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestProblemValidateNilAndZero(t *testing.T) {
	var p *Problem
	assert.ErrorIs(t, p.Validate(), ErrInvalidProblem)
	assert.ErrorIs(t, (&Problem{}).Validate(), ErrInvalidProblem)
}

func TestNormalizedWeights(t *testing.T) {
	p, err := NewProblem(
		[]string{"a", "b"},
		[]Criterion{
			{Name: "x", Weight: 0.5, Direction: HigherBetter},
			{Name: "y", Weight: 0.5, Direction: HigherBetter},
			{Name: "z", Weight: 1, Direction: LowerBetter},
		},
		map[string]map[string]Value{
			"a": {"x": Scalar(1), "y": Scalar(1), "z": Scalar(1)},
			"b": {"x": Scalar(2), "y": Scalar(2), "z": Scalar(2)},
		},
	)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.25, 0.25, 0.5}, p.NormalizedWeights())
	assert.False(t, p.HasIntervals())
}
