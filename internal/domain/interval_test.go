package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInterval(t *testing.T) {
	tests := []struct {
		name      string
		lower     float64
		upper     float64
		wantErr   bool
		wantMid   float64
		wantWidth float64
	}{
		{name: "proper interval", lower: 2, upper: 4, wantMid: 3, wantWidth: 2},
		{name: "degenerate interval", lower: 5, upper: 5, wantMid: 5, wantWidth: 0},
		{name: "negative bounds", lower: -3, upper: -1, wantMid: -2, wantWidth: 2},
		{name: "reversed bounds", lower: 4, upper: 2, wantErr: true},
		{name: "NaN bound", lower: math.NaN(), upper: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iv, err := NewInterval(tt.lower, tt.upper)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidInterval)
				var ierr *IntervalError
				assert.ErrorAs(t, err, &ierr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMid, iv.Midpoint())
			assert.Equal(t, tt.wantWidth, iv.Width())
			assert.GreaterOrEqual(t, iv.Width(), 0.0)
			assert.Equal(t, tt.wantWidth == 0, iv.IsDegenerate())
		})
	}
}

func TestIntervalConstructors(t *testing.T) {
	iv, err := IntervalFromTuple([]float64{1, 3})
	require.NoError(t, err)
	assert.Equal(t, MustInterval(1, 3), iv)

	_, err = IntervalFromTuple([]float64{1})
	assert.ErrorIs(t, err, ErrInvalidInterval)

	_, err = IntervalFromTuple([]float64{3, 1})
	assert.ErrorIs(t, err, ErrInvalidInterval)

	single := IntervalFromSingle(7)
	assert.True(t, single.IsDegenerate())
	assert.Equal(t, 7.0, single.Lower())
	assert.Equal(t, 7.0, single.Upper())

	assert.Panics(t, func() { MustInterval(2, 1) })
}

func TestIntervalArithmetic(t *testing.T) {
	tests := []struct {
		name string
		got  Interval
		want Interval
	}{
		{name: "addition", got: MustInterval(2, 4).Add(MustInterval(1, 3)), want: MustInterval(3, 7)},
		{name: "subtraction", got: MustInterval(2, 4).Sub(MustInterval(1, 3)), want: MustInterval(-1, 3)},
		{name: "scale positive", got: MustInterval(2, 4).Scale(2), want: MustInterval(4, 8)},
		{name: "scale zero", got: MustInterval(2, 4).Scale(0), want: MustInterval(0, 0)},
		{name: "scale negative swaps bounds", got: MustInterval(2, 4).Scale(-1), want: MustInterval(-4, -2)},
		{name: "multiply positive", got: MustInterval(1, 2).Mul(MustInterval(3, 4)), want: MustInterval(3, 8)},
		{name: "multiply mixed signs", got: MustInterval(-1, 2).Mul(MustInterval(3, 4)), want: MustInterval(-4, 8)},
		{name: "multiply both straddle", got: MustInterval(-2, 3).Mul(MustInterval(-1, 4)), want: MustInterval(-8, 12)},
		{name: "negation", got: MustInterval(1, 3).Neg(), want: MustInterval(-3, -1)},
		{name: "abs of straddling", got: MustInterval(-3, 2).Abs(), want: MustInterval(0, 3)},
		{name: "abs of negative", got: MustInterval(-3, -2).Abs(), want: MustInterval(2, 3)},
		{name: "clamp", got: MustInterval(-0.5, 1.5).Clamp(0, 1), want: MustInterval(0, 1)},
		{name: "pointwise max", got: MaxInterval(MustInterval(1, 5), MustInterval(2, 3)), want: MustInterval(2, 5)},
		{name: "pointwise min", got: MinInterval(MustInterval(1, 5), MustInterval(2, 3)), want: MustInterval(1, 3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(tt.got), "want %s, got %s", tt.want, tt.got)
		})
	}
}

func TestIntervalDivision(t *testing.T) {
	t.Run("divides by reciprocal", func(t *testing.T) {
		got, err := MustInterval(2, 4).Div(MustInterval(1, 2))
		require.NoError(t, err)
		assert.InDelta(t, 1.0, got.Lower(), 1e-12)
		assert.InDelta(t, 4.0, got.Upper(), 1e-12)
	})

	t.Run("rejects divisor containing zero", func(t *testing.T) {
		_, err := MustInterval(2, 4).Div(MustInterval(-1, 1))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidInterval)
		assert.Contains(t, err.Error(), "divisor contains zero")
	})

	t.Run("rejects divisor touching zero", func(t *testing.T) {
		_, err := MustInterval(2, 4).Div(MustInterval(0, 1))
		assert.ErrorIs(t, err, ErrInvalidInterval)
	})

	t.Run("scalar division", func(t *testing.T) {
		got, err := MustInterval(2, 4).DivScalar(2)
		require.NoError(t, err)
		assert.Equal(t, MustInterval(1, 2), got)

		_, err = MustInterval(2, 4).DivScalar(0)
		assert.ErrorIs(t, err, ErrInvalidInterval)
	})
}

func TestIntervalComparison(t *testing.T) {
	a := MustInterval(1, 5)
	b := MustInterval(2, 3)

	// Midpoints are 3 and 2.5.
	assert.True(t, a.Greater(b))
	assert.True(t, b.Less(a))
	assert.False(t, a.Equal(b))
	assert.True(t, a.Overlaps(b))
	assert.False(t, a.Overlaps(MustInterval(6, 7)))
	assert.True(t, a.Contains(5))
	assert.False(t, a.Contains(5.1))
	assert.Equal(t, "[1, 5]", a.String())
}

func TestIntervalValueSemantics(t *testing.T) {
	a := MustInterval(1, 2)
	_ = a.Add(MustInterval(10, 20))
	_ = a.Scale(-3)

	assert.Equal(t, MustInterval(1, 2), a, "operations must not mutate the receiver")
}
