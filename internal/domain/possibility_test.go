package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPossibility(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want float64
	}{
		{name: "strict dominance", a: MustInterval(3, 5), b: MustInterval(1, 2), want: 1},
		{name: "strictly dominated", a: MustInterval(1, 2), b: MustInterval(3, 5), want: 0},
		{name: "identical intervals", a: MustInterval(2, 4), b: MustInterval(2, 4), want: 0.5},
		{name: "partial overlap", a: MustInterval(1, 3), b: MustInterval(2, 6), want: 1.0 / 6},
		{name: "crisp inside interval", a: IntervalFromSingle(2), b: MustInterval(1, 3), want: 0.5},
		{name: "crisp greater", a: IntervalFromSingle(4), b: IntervalFromSingle(3), want: 1},
		{name: "crisp smaller", a: IntervalFromSingle(3), b: IntervalFromSingle(4), want: 0},
		{name: "crisp equal", a: IntervalFromSingle(3), b: IntervalFromSingle(3), want: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Possibility(tt.a, tt.b), 1e-12)
		})
	}
}

func TestPossibilityComplementarity(t *testing.T) {
	values := []Interval{
		MustInterval(0, 0),
		MustInterval(1, 1),
		MustInterval(0, 1),
		MustInterval(0.5, 3),
		MustInterval(-2, 0.25),
		MustInterval(2, 2),
		MustInterval(1, 4),
	}

	for _, a := range values {
		assert.InDelta(t, 0.5, Possibility(a, a), 1e-12, "self possibility of %s", a)
		for _, b := range values {
			sum := Possibility(a, b) + Possibility(b, a)
			assert.InDelta(t, 1.0, sum, 1e-12, "P(%s,%s)+P(%s,%s)", a, b, b, a)
			p := Possibility(a, b)
			assert.GreaterOrEqual(t, p, 0.0)
			assert.LessOrEqual(t, p, 1.0)
		}
	}
}

func TestPossibilityMatrix(t *testing.T) {
	m := PossibilityMatrix([]Interval{MustInterval(3, 5), MustInterval(1, 2)})
	require.Len(t, m, 2)
	assert.Equal(t, []float64{0.5, 1}, m[0])
	assert.Equal(t, []float64{0, 0.5}, m[1])
}

func TestRankByPossibility(t *testing.T) {
	t.Run("orders by aggregate preference", func(t *testing.T) {
		ranked := RankByPossibility(map[string]Interval{
			"low":  MustInterval(1, 2),
			"high": MustInterval(3, 5),
			"mid":  MustInterval(2, 3.5),
		})

		require.Len(t, ranked, 3)
		assert.Equal(t, "high", ranked[0].Alternative)
		assert.Equal(t, "mid", ranked[1].Alternative)
		assert.Equal(t, "low", ranked[2].Alternative)
		assert.Equal(t, []int{1, 2, 3}, []int{ranked[0].Rank, ranked[1].Rank, ranked[2].Rank})
	})

	t.Run("identical intervals share a dense rank", func(t *testing.T) {
		ranked := RankByPossibility(map[string]Interval{
			"b":   MustInterval(1, 3),
			"a":   MustInterval(1, 3),
			"top": MustInterval(5, 6),
		})

		require.Len(t, ranked, 3)
		assert.Equal(t, "top", ranked[0].Alternative)
		assert.Equal(t, 1, ranked[0].Rank)
		assert.Equal(t, "a", ranked[1].Alternative)
		assert.Equal(t, "b", ranked[2].Alternative)
		assert.Equal(t, 2, ranked[1].Rank)
		assert.Equal(t, 2, ranked[2].Rank)
	})

	t.Run("mixed scalar and interval values", func(t *testing.T) {
		ranked := RankValuesByPossibility(map[string]Value{
			"crisp": Scalar(4),
			"wide":  IntervalValue(MustInterval(0, 2)),
		})

		require.Len(t, ranked, 2)
		assert.Equal(t, "crisp", ranked[0].Alternative)
		assert.InDelta(t, 1.5, ranked[0].Score, 1e-12)
	})
}
