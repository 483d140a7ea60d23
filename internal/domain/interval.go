package domain

import (
	"fmt"
	"math"
)

// Interval is a closed numeric range [Lower, Upper] used wherever a score may
// be uncertain. A degenerate interval (Lower == Upper) represents a crisp value.
//
// Interval is an immutable value type: every operation returns a new Interval.
// The comparison helpers Less, Greater and Equal compare midpoints and are
// conveniences only; ranking of interval aggregates goes through the
// possibility-degree comparator.
type Interval struct {
	lower float64
	upper float64
}

// NewInterval returns [lower, upper]. It fails with an *IntervalError when
// lower > upper or either bound is NaN.
func NewInterval(lower, upper float64) (Interval, error) {
	if math.IsNaN(lower) || math.IsNaN(upper) {
		return Interval{}, &IntervalError{Op: "new", Lower: lower, Upper: upper, Reason: "bounds must not be NaN"}
	}
	if lower > upper {
		return Interval{}, &IntervalError{Op: "new", Lower: lower, Upper: upper, Reason: "lower bound exceeds upper bound"}
	}
	return Interval{lower: lower, upper: upper}, nil
}

// MustInterval is like NewInterval but panics on invalid bounds.
// It is intended for literals in tests and package-level tables.
func MustInterval(lower, upper float64) Interval {
	iv, err := NewInterval(lower, upper)
	if err != nil {
		panic(err)
	}
	return iv
}

// IntervalFromTuple builds an interval from a two element slice.
func IntervalFromTuple(bounds []float64) (Interval, error) {
	if len(bounds) != 2 {
		return Interval{}, &IntervalError{Op: "from_tuple", Reason: fmt.Sprintf("expected 2 bounds, got %d", len(bounds))}
	}
	return NewInterval(bounds[0], bounds[1])
}

// IntervalFromSingle returns the degenerate interval [v, v].
func IntervalFromSingle(v float64) Interval { return Interval{lower: v, upper: v} }

// Lower returns the lower bound.
func (a Interval) Lower() float64 { return a.lower }

// Upper returns the upper bound.
func (a Interval) Upper() float64 { return a.upper }

// Midpoint returns (lower+upper)/2.
func (a Interval) Midpoint() float64 { return (a.lower + a.upper) / 2 }

// Width returns upper-lower. It is never negative.
func (a Interval) Width() float64 { return a.upper - a.lower }

// IsDegenerate reports whether the interval represents a crisp value.
func (a Interval) IsDegenerate() bool { return a.lower == a.upper }

// Contains reports whether x lies inside the closed interval.
func (a Interval) Contains(x float64) bool { return a.lower <= x && x <= a.upper }

// Overlaps reports whether the two intervals share at least one point.
func (a Interval) Overlaps(b Interval) bool { return a.lower <= b.upper && b.lower <= a.upper }

// Add returns [a1+b1, a2+b2].
func (a Interval) Add(b Interval) Interval {
	return Interval{lower: a.lower + b.lower, upper: a.upper + b.upper}
}

// AddScalar shifts both bounds by k.
func (a Interval) AddScalar(k float64) Interval {
	return Interval{lower: a.lower + k, upper: a.upper + k}
}

// Sub returns [a1-b2, a2-b1].
func (a Interval) Sub(b Interval) Interval {
	return Interval{lower: a.lower - b.upper, upper: a.upper - b.lower}
}

// Neg returns [-upper, -lower].
func (a Interval) Neg() Interval { return Interval{lower: -a.upper, upper: -a.lower} }

// Scale multiplies by a scalar, swapping bounds when k is negative.
func (a Interval) Scale(k float64) Interval {
	if k >= 0 {
		return Interval{lower: a.lower * k, upper: a.upper * k}
	}
	return Interval{lower: a.upper * k, upper: a.lower * k}
}

// Mul returns the hull of the four corner products.
func (a Interval) Mul(b Interval) Interval {
	p1 := a.lower * b.lower
	p2 := a.lower * b.upper
	p3 := a.upper * b.lower
	p4 := a.upper * b.upper
	return Interval{
		lower: math.Min(math.Min(p1, p2), math.Min(p3, p4)),
		upper: math.Max(math.Max(p1, p2), math.Max(p3, p4)),
	}
}

// Div multiplies a by the reciprocal [1/b2, 1/b1]. It fails when b contains zero.
func (a Interval) Div(b Interval) (Interval, error) {
	if b.Contains(0) {
		return Interval{}, &IntervalError{Op: "div", Lower: b.lower, Upper: b.upper, Reason: "divisor contains zero"}
	}
	return a.Mul(Interval{lower: 1 / b.upper, upper: 1 / b.lower}), nil
}

// DivScalar divides both bounds by k, which must be non-zero.
func (a Interval) DivScalar(k float64) (Interval, error) {
	if k == 0 {
		return Interval{}, &IntervalError{Op: "div", Lower: k, Upper: k, Reason: "division by zero"}
	}
	return a.Scale(1 / k), nil
}

// Abs returns the interval of |x| for x in a.
func (a Interval) Abs() Interval {
	switch {
	case a.lower >= 0:
		return a
	case a.upper <= 0:
		return a.Neg()
	default:
		return Interval{lower: 0, upper: math.Max(-a.lower, a.upper)}
	}
}

// Clamp restricts both bounds to [lo, hi].
func (a Interval) Clamp(lo, hi float64) Interval {
	return Interval{lower: clamp(a.lower, lo, hi), upper: clamp(a.upper, lo, hi)}
}

// MaxInterval returns the pointwise maximum [max(a1,b1), max(a2,b2)].
func MaxInterval(a, b Interval) Interval {
	return Interval{lower: math.Max(a.lower, b.lower), upper: math.Max(a.upper, b.upper)}
}

// MinInterval returns the pointwise minimum [min(a1,b1), min(a2,b2)].
func MinInterval(a, b Interval) Interval {
	return Interval{lower: math.Min(a.lower, b.lower), upper: math.Min(a.upper, b.upper)}
}

// Less compares midpoints.
func (a Interval) Less(b Interval) bool { return a.Midpoint() < b.Midpoint() }

// Greater compares midpoints.
func (a Interval) Greater(b Interval) bool { return a.Midpoint() > b.Midpoint() }

// Equal reports whether both bounds match exactly.
func (a Interval) Equal(b Interval) bool { return a.lower == b.lower && a.upper == b.upper }

// String formats the interval as [lower, upper].
func (a Interval) String() string { return fmt.Sprintf("[%g, %g]", a.lower, a.upper) }

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
