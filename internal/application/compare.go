package application

import (
	"math"
	"slices"

	"github.com/ahrav/go-mcda/internal/domain"
)

// Correlation measures agreement between the rankings of two runs.
// Both coefficients lie in [-1, 1]; 1 means identical orderings.
type Correlation struct {
	A          string  `yaml:"a" json:"a"`
	B          string  `yaml:"b" json:"b"`
	KendallTau float64 `yaml:"kendall_tau" json:"kendall_tau"`
	Spearman   float64 `yaml:"spearman" json:"spearman"`
}

// Comparison summarizes how several algorithms ranked the same problem.
type Comparison struct {
	// Correlations holds one entry per unordered pair of runs, in run order.
	Correlations []Correlation `yaml:"correlations" json:"correlations"`
	// Consensus is the Borda-count aggregate ranking. Score is the Borda total.
	Consensus []domain.RankedAlternative `yaml:"consensus" json:"consensus"`
}

// NewComparison computes pairwise correlations and the Borda consensus over
// results. alternatives fixes the tie-break order of the consensus.
func NewComparison(alternatives []string, results []NamedResult) *Comparison {
	ranks := make([][]int, len(results))
	for i, nr := range results {
		ranks[i] = make([]int, len(alternatives))
		for j, alt := range alternatives {
			ranks[i][j] = nr.Result.RankOf(alt)
		}
	}

	c := &Comparison{}
	for i := range results {
		for j := i + 1; j < len(results); j++ {
			c.Correlations = append(c.Correlations, Correlation{
				A:          results[i].Name,
				B:          results[j].Name,
				KendallTau: KendallTauB(ranks[i], ranks[j]),
				Spearman:   Spearman(ranks[i], ranks[j]),
			})
		}
	}

	totals := make([]float64, len(alternatives))
	for _, r := range ranks {
		for j, pts := range bordaPoints(r) {
			totals[j] += pts
		}
	}
	c.Consensus = domain.RankDescending(alternatives, totals)
	return c
}

// Correlation returns the entry for runs a and b in either order.
func (c *Comparison) Correlation(a, b string) (Correlation, bool) {
	for _, corr := range c.Correlations {
		if (corr.A == a && corr.B == b) || (corr.A == b && corr.B == a) {
			return corr, true
		}
	}
	return Correlation{}, false
}

// bordaPoints awards each alternative one point per alternative ranked
// strictly below it.
func bordaPoints(ranks []int) []float64 {
	pts := make([]float64, len(ranks))
	for i, ri := range ranks {
		for _, rj := range ranks {
			if rj > ri {
				pts[i]++
			}
		}
	}
	return pts
}

// KendallTauB returns Kendall's tau-b between two rank vectors, accounting
// for ties. When either vector is entirely tied the coefficient is undefined;
// it is reported as 1 if both are entirely tied and 0 otherwise.
func KendallTauB(x, y []int) float64 {
	n := len(x)
	if n < 2 {
		return 1
	}

	var concordant, discordant, tiesX, tiesY float64
	for i := range n {
		for j := i + 1; j < n; j++ {
			dx := sign(x[i] - x[j])
			dy := sign(y[i] - y[j])
			switch {
			case dx == 0 && dy == 0:
				tiesX++
				tiesY++
			case dx == 0:
				tiesX++
			case dy == 0:
				tiesY++
			case dx == dy:
				concordant++
			default:
				discordant++
			}
		}
	}

	pairs := float64(n*(n-1)) / 2
	denom := math.Sqrt((pairs - tiesX) * (pairs - tiesY))
	if denom == 0 {
		return degenerate(pairs == tiesX && pairs == tiesY)
	}
	return (concordant - discordant) / denom
}

// Spearman returns Spearman's rho as the Pearson correlation of fractional
// ranks, so ties receive the mean of the positions they span.
func Spearman(x, y []int) float64 {
	if len(x) < 2 {
		return 1
	}
	fx, fy := fractionalRanks(x), fractionalRanks(y)

	mean := float64(len(x)+1) / 2
	var cov, varX, varY float64
	for i := range fx {
		dx, dy := fx[i]-mean, fy[i]-mean
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return degenerate(varX == 0 && varY == 0)
	}
	return cov / math.Sqrt(varX*varY)
}

// fractionalRanks converts dense ranks to 1-based positional ranks with ties
// averaged. The mean of the result is always (n+1)/2.
func fractionalRanks(ranks []int) []float64 {
	idx := make([]int, len(ranks))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int { return ranks[a] - ranks[b] })

	out := make([]float64, len(ranks))
	for start := 0; start < len(idx); {
		end := start
		for end < len(idx) && ranks[idx[end]] == ranks[idx[start]] {
			end++
		}
		avg := float64(start+1+end) / 2
		for _, i := range idx[start:end] {
			out[i] = avg
		}
		start = end
	}
	return out
}

func degenerate(bothTied bool) float64 {
	if bothTied {
		return 1
	}
	return 0
}

func sign(d int) int {
	switch {
	case d < 0:
		return -1
	case d > 0:
		return 1
	}
	return 0
}
