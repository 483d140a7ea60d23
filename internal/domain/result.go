package domain

import (
	"cmp"
	"fmt"
	"maps"
	"math"
	"slices"
)

// Tolerance is the absolute difference under which two aggregate scores are
// treated as tied when assigning dense ranks.
const Tolerance = 1e-9

// ProblemSize records the dimensions of a ranked problem.
type ProblemSize struct {
	Alternatives int `yaml:"alternatives" json:"alternatives"`
	Criteria     int `yaml:"criteria" json:"criteria"`
}

// RankedAlternative is one row of a ranking. Rank starts at 1 and is dense.
type RankedAlternative struct {
	Rank        int     `yaml:"rank" json:"rank"`
	Alternative string  `yaml:"alternative" json:"alternative"`
	Score       float64 `yaml:"score" json:"score"`
}

// Metadata describes how a result was produced. Metrics holds algorithm
// specific intermediate values kept for explainability.
type Metadata struct {
	AlgorithmName string         `yaml:"algorithm_name" json:"algorithm_name"`
	ProblemSize   ProblemSize    `yaml:"problem_size" json:"problem_size"`
	Metrics       map[string]any `yaml:"metrics" json:"metrics"`
}

// Result is the immutable outcome of one Calculate call.
type Result struct {
	rankings  []RankedAlternative
	rawScores map[string]float64
	metadata  Metadata
}

// NewResult assembles a Result and checks that rankings cover every
// alternative of p exactly once.
func NewResult(
	algorithm string,
	p *Problem,
	rankings []RankedAlternative,
	rawScores map[string]float64,
	metrics map[string]any,
) (*Result, error) {
	if len(rankings) != p.NumAlternatives() {
		return nil, fmt.Errorf("%s: rankings cover %d of %d alternatives", algorithm, len(rankings), p.NumAlternatives())
	}
	seen := make(map[string]struct{}, len(rankings))
	for _, r := range rankings {
		if _, dup := seen[r.Alternative]; dup {
			return nil, fmt.Errorf("%s: alternative %q ranked twice", algorithm, r.Alternative)
		}
		seen[r.Alternative] = struct{}{}
	}
	for _, a := range p.alternatives {
		if _, ok := seen[a]; !ok {
			return nil, fmt.Errorf("%s: alternative %q missing from rankings", algorithm, a)
		}
	}

	return &Result{
		rankings:  slices.Clone(rankings),
		rawScores: maps.Clone(rawScores),
		metadata: Metadata{
			AlgorithmName: algorithm,
			ProblemSize:   p.Size(),
			Metrics:       cloneMetrics(metrics),
		},
	}, nil
}

// Rankings returns a copy of the ordered ranking.
func (r *Result) Rankings() []RankedAlternative { return slices.Clone(r.rankings) }

// RawScores returns a copy of the native aggregate per alternative.
func (r *Result) RawScores() map[string]float64 { return maps.Clone(r.rawScores) }

// RawScore returns the native aggregate of one alternative.
func (r *Result) RawScore(alt string) (float64, bool) {
	s, ok := r.rawScores[alt]
	return s, ok
}

// Metadata returns a deep copy of the result metadata.
func (r *Result) Metadata() Metadata {
	md := r.metadata
	md.Metrics = cloneMetrics(r.metadata.Metrics)
	return md
}

// Metric returns a deep copy of one entry of the metrics map.
func (r *Result) Metric(key string) (any, bool) {
	v, ok := r.metadata.Metrics[key]
	if !ok {
		return nil, false
	}
	return cloneValue(v), true
}

// AlgorithmName returns the key of the algorithm that produced the result.
func (r *Result) AlgorithmName() string { return r.metadata.AlgorithmName }

// Best returns the alternatives sharing rank 1.
func (r *Result) Best() []string {
	var best []string
	for _, ra := range r.rankings {
		if ra.Rank != 1 {
			break
		}
		best = append(best, ra.Alternative)
	}
	return best
}

// RankOf returns the rank of alt, or 0 when absent.
func (r *Result) RankOf(alt string) int {
	for _, ra := range r.rankings {
		if ra.Alternative == alt {
			return ra.Rank
		}
	}
	return 0
}

// Order returns the alternatives in ranking order.
func (r *Result) Order() []string {
	out := make([]string, len(r.rankings))
	for i, ra := range r.rankings {
		out[i] = ra.Alternative
	}
	return out
}

// RankFunc orders alternatives with order and assigns dense ranks. order must be
// a strict weak ordering returning a negative number when i ranks ahead of j;
// equal elements keep input order. An alternative shares the current rank
// when tied reports it equivalent to the first alternative holding that rank,
// so near-ties never chain across a group. scores supplies the Score column.
func RankFunc(
	alternatives []string,
	scores []float64,
	order func(i, j int) int,
	tied func(i, j int) bool,
) []RankedAlternative {
	idx := make([]int, len(alternatives))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, order)

	out := make([]RankedAlternative, len(idx))
	rank, leader := 0, 0
	for pos, i := range idx {
		if pos == 0 || !tied(leader, i) {
			rank++
			leader = i
		}
		out[pos] = RankedAlternative{Rank: rank, Alternative: alternatives[i], Score: scores[i]}
	}
	return out
}

// RankDescending ranks higher scores first. Scores within Tolerance of the
// best score of a rank share it.
func RankDescending(alternatives []string, scores []float64) []RankedAlternative {
	return RankFunc(alternatives, scores,
		func(i, j int) int { return cmp.Compare(scores[j], scores[i]) },
		func(i, j int) bool { return CompareScores(scores[i], scores[j]) == 0 },
	)
}

// RankAscending ranks lower scores first. Scores within Tolerance of the
// lowest score of a rank share it.
func RankAscending(alternatives []string, scores []float64) []RankedAlternative {
	return RankFunc(alternatives, scores,
		func(i, j int) int { return cmp.Compare(scores[i], scores[j]) },
		func(i, j int) bool { return CompareScores(scores[i], scores[j]) == 0 },
	)
}

// CompareScores returns -1, 0 or 1 comparing a and b within Tolerance.
func CompareScores(a, b float64) int {
	if math.Abs(a-b) <= Tolerance {
		return 0
	}
	if a < b {
		return -1
	}
	return 1
}
