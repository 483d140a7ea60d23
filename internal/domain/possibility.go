package domain

import (
	"slices"
)

// PossibilityScore is one row of a possibility-degree ranking.
type PossibilityScore struct {
	Rank        int     `yaml:"rank" json:"rank"`
	Alternative string  `yaml:"alternative" json:"alternative"`
	Score       float64 `yaml:"score" json:"score"`
}

// Possibility returns the degree to which a is at least as good as b.
//
// For intervals with combined width L > 0 it is
//
//	clamp((max(0, a.U-b.L) - max(0, a.L-b.U)) / L, 0, 1)
//
// and for two crisp values it is 1, 0 or 0.5 for a > b, a < b and a == b.
// Possibility(a, b) + Possibility(b, a) == 1 for every pair.
func Possibility(a, b Interval) float64 {
	total := a.Width() + b.Width()
	if total > 0 {
		num := max(0, a.upper-b.lower) - max(0, a.lower-b.upper)
		return clamp(num/total, 0, 1)
	}
	switch {
	case a.lower > b.lower:
		return 1
	case a.lower < b.lower:
		return 0
	default:
		return 0.5
	}
}

// PossibilityMatrix returns P[i][j] = Possibility(values[i], values[j]).
func PossibilityMatrix(values []Interval) [][]float64 {
	n := len(values)
	p := make([][]float64, n)
	for i := range n {
		p[i] = make([]float64, n)
		for j := range n {
			p[i][j] = Possibility(values[i], values[j])
		}
	}
	return p
}

// PossibilityScores returns the row sums of the possibility matrix: the
// aggregate preference of each value over the whole set.
func PossibilityScores(values []Interval) []float64 {
	p := PossibilityMatrix(values)
	scores := make([]float64, len(values))
	for i, row := range p {
		for _, v := range row {
			scores[i] += v
		}
	}
	return scores
}

// RankIntervals ranks alternatives by possibility-degree aggregate, highest
// first. alternatives and values are parallel slices. Aggregates within
// Tolerance of the best aggregate of a rank share it; exact ties keep input
// order.
func RankIntervals(alternatives []string, values []Interval) []RankedAlternative {
	return RankDescending(alternatives, PossibilityScores(values))
}

// RankByPossibility ranks a mapping of alternative to interval by
// possibility-degree aggregate. Alternatives are visited in sorted key order
// so equal aggregates tie-break deterministically by name.
func RankByPossibility(values map[string]Interval) []PossibilityScore {
	alts := make([]string, 0, len(values))
	for a := range values {
		alts = append(alts, a)
	}
	slices.Sort(alts)

	ivs := make([]Interval, len(alts))
	for i, a := range alts {
		ivs[i] = values[a]
	}

	ranked := RankIntervals(alts, ivs)
	out := make([]PossibilityScore, len(ranked))
	for i, r := range ranked {
		out[i] = PossibilityScore(r)
	}
	return out
}

// RankValuesByPossibility ranks mixed scalar/interval values; scalars take
// part as degenerate intervals.
func RankValuesByPossibility(values map[string]Value) []PossibilityScore {
	ivs := make(map[string]Interval, len(values))
	for a, v := range values {
		ivs[a] = v.Interval()
	}
	return RankByPossibility(ivs)
}
