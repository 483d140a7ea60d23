package domain

import "math"

// Value is a score cell: either a crisp scalar or an Interval.
// The zero Value is the scalar 0.
type Value struct {
	iv       Interval
	interval bool
}

// Scalar returns a crisp Value.
func Scalar(x float64) Value { return Value{iv: IntervalFromSingle(x)} }

// IntervalValue returns an interval-valued Value.
func IntervalValue(iv Interval) Value { return Value{iv: iv, interval: true} }

// IsInterval reports whether the value was supplied as an interval.
// A degenerate interval still reports true.
func (v Value) IsInterval() bool { return v.interval }

// IsCrisp reports whether the value carries no uncertainty, i.e. it is a
// scalar or a degenerate interval.
func (v Value) IsCrisp() bool { return v.iv.IsDegenerate() }

// Float returns the scalar value, or the midpoint of an interval.
func (v Value) Float() float64 { return v.iv.Midpoint() }

// Interval returns the value as an interval, lifting scalars to [x, x].
func (v Value) Interval() Interval { return v.iv }

// IsFinite reports whether both bounds are finite.
func (v Value) IsFinite() bool {
	return !math.IsInf(v.iv.lower, 0) && !math.IsInf(v.iv.upper, 0) &&
		!math.IsNaN(v.iv.lower) && !math.IsNaN(v.iv.upper)
}

// String formats scalars as numbers and intervals as [l, u].
func (v Value) String() string {
	if v.interval {
		return v.iv.String()
	}
	return formatFloat(v.iv.lower)
}
