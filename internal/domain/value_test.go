package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValue(t *testing.T) {
	tests := []struct {
		name       string
		v          Value
		isInterval bool
		isCrisp    bool
		float      float64
		str        string
	}{
		{name: "zero value", v: Value{}, isCrisp: true, float: 0, str: "0"},
		{name: "scalar", v: Scalar(2.5), isCrisp: true, float: 2.5, str: "2.5"},
		{name: "interval", v: IntervalValue(MustInterval(1, 3)), isInterval: true, float: 2, str: "[1, 3]"},
		{name: "degenerate interval", v: IntervalValue(MustInterval(4, 4)), isInterval: true, isCrisp: true, float: 4, str: "[4, 4]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.isInterval, tt.v.IsInterval())
			assert.Equal(t, tt.isCrisp, tt.v.IsCrisp())
			assert.Equal(t, tt.float, tt.v.Float())
			assert.Equal(t, tt.str, tt.v.String())
			assert.True(t, tt.v.IsFinite())
		})
	}

	assert.Equal(t, MustInterval(7, 7), Scalar(7).Interval(), "scalars lift to degenerate intervals")
	assert.False(t, Scalar(math.Inf(1)).IsFinite())
	assert.False(t, Scalar(math.NaN()).IsFinite())
}
