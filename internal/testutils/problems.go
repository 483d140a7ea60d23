// Package testutils provides decision problem fixtures and recording
// collaborators shared by package tests.
package testutils

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-mcda/internal/domain"
)

// Row is one alternative's scores keyed by criterion name.
type Row map[string]domain.Value

// MustProblem builds a problem or fails the test.
func MustProblem(t testing.TB, alternatives []string, criteria []domain.Criterion, scores map[string]Row) *domain.Problem {
	t.Helper()
	m := make(map[string]map[string]domain.Value, len(scores))
	for alt, row := range scores {
		m[alt] = row
	}
	p, err := domain.NewProblem(alternatives, criteria, m)
	require.NoError(t, err, "fixture problem must be valid")
	return p
}

// SingleCriterion builds a problem with one benefit criterion of weight 1.
// values are given in alternative order; alternatives are named A, B, C, ...
func SingleCriterion(t testing.TB, direction domain.Direction, values ...float64) *domain.Problem {
	t.Helper()
	alts := make([]string, len(values))
	scores := make(map[string]Row, len(values))
	for i, v := range values {
		alts[i] = string(rune('A' + i))
		scores[alts[i]] = Row{"score": domain.Scalar(v)}
	}
	return MustProblem(t, alts, []domain.Criterion{{Name: "score", Weight: 1, Direction: direction}}, scores)
}

// SupplierCriteria are the criteria of SupplierProblem.
func SupplierCriteria() []domain.Criterion {
	return []domain.Criterion{
		{Name: "quality", Weight: 0.4, Direction: domain.HigherBetter},
		{Name: "delivery", Weight: 0.3, Direction: domain.HigherBetter},
		{Name: "price", Weight: 0.3, Direction: domain.LowerBetter},
	}
}

// SupplierProblem is a crisp four-supplier selection where s1 is strong on
// quality, s2 is cheapest, s3 is balanced and s4 is dominated by s3.
func SupplierProblem(t testing.TB) *domain.Problem {
	t.Helper()
	return MustProblem(t, []string{"s1", "s2", "s3", "s4"}, SupplierCriteria(), map[string]Row{
		"s1": {"quality": domain.Scalar(9), "delivery": domain.Scalar(6), "price": domain.Scalar(80)},
		"s2": {"quality": domain.Scalar(6), "delivery": domain.Scalar(7), "price": domain.Scalar(50)},
		"s3": {"quality": domain.Scalar(8), "delivery": domain.Scalar(8), "price": domain.Scalar(60)},
		"s4": {"quality": domain.Scalar(7), "delivery": domain.Scalar(7), "price": domain.Scalar(70)},
	})
}

// IntervalSupplierProblem is SupplierProblem with uncertain quality and
// delivery scores centred on the crisp values.
func IntervalSupplierProblem(t testing.TB) *domain.Problem {
	t.Helper()
	iv := func(l, u float64) domain.Value { return domain.IntervalValue(domain.MustInterval(l, u)) }
	return MustProblem(t, []string{"s1", "s2", "s3", "s4"}, SupplierCriteria(), map[string]Row{
		"s1": {"quality": iv(8, 10), "delivery": iv(5, 7), "price": domain.Scalar(80)},
		"s2": {"quality": iv(5, 7), "delivery": iv(6, 8), "price": domain.Scalar(50)},
		"s3": {"quality": iv(7, 9), "delivery": iv(7, 9), "price": domain.Scalar(60)},
		"s4": {"quality": iv(6, 8), "delivery": iv(6, 8), "price": domain.Scalar(70)},
	})
}
