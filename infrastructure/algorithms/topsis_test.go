package algorithms

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-mcda/internal/domain"
	"github.com/ahrav/go-mcda/internal/testutils"
)

func TestTOPSIS_SingleCriterion(t *testing.T) {
	alg, err := NewTOPSIS(TOPSISConfig{})
	require.NoError(t, err)

	res, err := alg.Calculate(context.Background(), testutils.SingleCriterion(t, domain.HigherBetter, 3, 4), nil)
	require.NoError(t, err)

	scores := res.RawScores()
	assert.InDelta(t, 0.0, scores["A"], 1e-12)
	assert.InDelta(t, 1.0, scores["B"], 1e-12)
	assert.Equal(t, []string{"B", "A"}, res.Order())

	norms, ok := res.Metric("column_norms")
	require.True(t, ok)
	assert.InDeltaSlice(t, []float64{5}, norms, 1e-12)
}

func TestTOPSIS_ClosenessInUnitInterval(t *testing.T) {
	problems := map[string]*domain.Problem{
		"suppliers":      testutils.SupplierProblem(t),
		"cost only":      testutils.SingleCriterion(t, domain.LowerBetter, 5, 1, 9, 3),
		"identical rows": testutils.SingleCriterion(t, domain.HigherBetter, 2, 2, 2),
	}

	alg, err := NewTOPSIS(TOPSISConfig{})
	require.NoError(t, err)

	for name, p := range problems {
		t.Run(name, func(t *testing.T) {
			res, err := alg.Calculate(context.Background(), p, nil)
			require.NoError(t, err)
			for alt, c := range res.RawScores() {
				assert.GreaterOrEqual(t, c, 0.0, alt)
				assert.LessOrEqual(t, c, 1.0, alt)
			}
		})
	}
}

func TestTOPSIS_Suppliers(t *testing.T) {
	alg, err := NewTOPSIS(TOPSISConfig{})
	require.NoError(t, err)

	res, err := alg.Calculate(context.Background(), testutils.SupplierProblem(t), nil)
	require.NoError(t, err)

	assert.Less(t, res.RankOf("s3"), res.RankOf("s4"))

	ideal, ok := res.Metric("ideal")
	require.True(t, ok)
	antiIdeal, _ := res.Metric("negative_ideal")
	idealVec := ideal.([]float64)
	antiVec := antiIdeal.([]float64)
	require.Len(t, idealVec, 3)
	assert.Greater(t, idealVec[0], antiVec[0], "quality is a benefit criterion")
	assert.Less(t, idealVec[2], antiVec[2], "price is a cost criterion")
}

func TestTOPSIS_RejectsParameters(t *testing.T) {
	alg, err := NewTOPSIS(TOPSISConfig{})
	require.NoError(t, err)

	_, err = alg.Calculate(context.Background(), testutils.SupplierProblem(t), map[string]any{"p": 2})
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)
}
