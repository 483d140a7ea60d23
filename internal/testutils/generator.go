package testutils

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/ahrav/go-mcda/internal/domain"
)

// ProblemSpec controls GenerateProblem.
type ProblemSpec struct {
	// Alternatives and Criteria set the matrix dimensions.
	Alternatives, Criteria int
	// IntervalShare is the fraction of cells given a non-degenerate interval.
	// Zero yields a crisp problem.
	IntervalShare float64
	// MaxWidth bounds interval widths. Scores are drawn from [0, 100).
	MaxWidth float64
}

// GenerateProblem builds a random, valid decision problem. The seed controls
// randomization; a fixed value makes benchmarks and property tests
// reproducible. Alternatives are named a0, a1, ... and criteria c0, c1, ...,
// with every third criterion lower_better.
func GenerateProblem(tb testing.TB, spec ProblemSpec, seed int64) *domain.Problem {
	tb.Helper()
	rng := rand.New(rand.NewSource(seed))

	alternatives := make([]string, spec.Alternatives)
	for i := range alternatives {
		alternatives[i] = fmt.Sprintf("a%d", i)
	}

	criteria := make([]domain.Criterion, spec.Criteria)
	for k := range criteria {
		dir := domain.HigherBetter
		if k%3 == 2 {
			dir = domain.LowerBetter
		}
		// Keep weights away from zero so every criterion matters.
		criteria[k] = domain.Criterion{Name: fmt.Sprintf("c%d", k), Weight: 0.1 + 0.9*rng.Float64(), Direction: dir}
	}

	scores := make(map[string]Row, spec.Alternatives)
	for _, alt := range alternatives {
		row := make(Row, spec.Criteria)
		for _, c := range criteria {
			x := 100 * rng.Float64()
			if rng.Float64() < spec.IntervalShare {
				row[c.Name] = domain.IntervalValue(domain.MustInterval(x, x+spec.MaxWidth*rng.Float64()))
				continue
			}
			row[c.Name] = domain.Scalar(x)
		}
		scores[alt] = row
	}

	return MustProblem(tb, alternatives, criteria, scores)
}
