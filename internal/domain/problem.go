// Package domain holds the decision problem model: interval numbers, score
// values, criteria, problems, results and the possibility-degree comparator.
package domain

import (
	"math"
	"strconv"
)

// Direction states whether larger or smaller raw values are preferred on a criterion.
type Direction string

// Supported criterion directions.
const (
	// HigherBetter marks a benefit criterion.
	HigherBetter Direction = "higher_better"
	// LowerBetter marks a cost criterion.
	LowerBetter Direction = "lower_better"
)

// IsValid reports whether d is a known direction.
func (d Direction) IsValid() bool { return d == HigherBetter || d == LowerBetter }

// IsBenefit reports whether larger values are preferred.
func (d Direction) IsBenefit() bool { return d == HigherBetter }

// Criterion is a weighted, directional evaluation axis.
type Criterion struct {
	// Name is unique within a problem.
	Name string `yaml:"name" json:"name"`
	// Weight lies in [0, 1]. Weights need not sum to 1; algorithms
	// normalize by their sum.
	Weight float64 `yaml:"weight" json:"weight"`
	// Direction is higher_better or lower_better.
	Direction Direction `yaml:"direction" json:"direction"`
}

// Problem is an immutable decision problem: the alternatives to rank, the
// criteria to rank them against, and a complete score matrix.
// Construct it with NewProblem; algorithms only read from it.
type Problem struct {
	alternatives []string
	criteria     []Criterion
	scores       map[string]map[string]Value
}

// Minimum problem dimensions.
const (
	MinAlternatives = 2
	MinCriteria     = 1
)

// NewProblem deep-copies its inputs and validates the result.
// It returns a *ValidationError listing every violated rule.
func NewProblem(
	alternatives []string,
	criteria []Criterion,
	scores map[string]map[string]Value,
) (*Problem, error) {
	p := &Problem{
		alternatives: append([]string(nil), alternatives...),
		criteria:     append([]Criterion(nil), criteria...),
		scores:       make(map[string]map[string]Value, len(scores)),
	}
	for alt, row := range scores {
		cp := make(map[string]Value, len(row))
		for c, v := range row {
			cp[c] = v
		}
		p.scores[alt] = cp
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks size, name uniqueness, weight domain, total weight and
// score coverage. Algorithms call it before any numeric work.
func (p *Problem) Validate() error {
	verr := NewValidationError("problem")
	if p == nil {
		verr.AddError("problem is nil")
		return verr
	}

	if len(p.alternatives) < MinAlternatives {
		verr.AddErrorf("alternatives: need at least %d, got %d", MinAlternatives, len(p.alternatives))
	}
	if len(p.criteria) < MinCriteria {
		verr.AddErrorf("criteria: need at least %d, got %d", MinCriteria, len(p.criteria))
	}

	seenAlt := make(map[string]struct{}, len(p.alternatives))
	for i, a := range p.alternatives {
		if a == "" {
			verr.AddErrorf("alternatives[%d]: name must not be empty", i)
			continue
		}
		if _, dup := seenAlt[a]; dup {
			verr.AddErrorf("alternatives[%d]: duplicate name %q", i, a)
		}
		seenAlt[a] = struct{}{}
	}

	seenCrit := make(map[string]struct{}, len(p.criteria))
	var total float64
	for i, c := range p.criteria {
		if c.Name == "" {
			verr.AddErrorf("criteria[%d]: name must not be empty", i)
		} else if _, dup := seenCrit[c.Name]; dup {
			verr.AddErrorf("criteria[%d]: duplicate name %q", i, c.Name)
		}
		seenCrit[c.Name] = struct{}{}

		if math.IsNaN(c.Weight) || c.Weight < 0 || c.Weight > 1 {
			verr.AddErrorf("criteria[%s].weight: %v outside [0, 1]", c.Name, c.Weight)
		} else {
			total += c.Weight
		}
		if !c.Direction.IsValid() {
			verr.AddErrorf("criteria[%s].direction: unknown direction %q", c.Name, c.Direction)
		}
	}
	if len(p.criteria) > 0 && total <= 0 {
		verr.AddErrorf("criteria: total weight must be positive, got %v", total)
	}

	for _, a := range p.alternatives {
		row, ok := p.scores[a]
		if !ok {
			verr.AddErrorf("scores[%s]: missing row", a)
			continue
		}
		for _, c := range p.criteria {
			v, ok := row[c.Name]
			if !ok {
				verr.AddErrorf("scores[%s][%s]: missing value", a, c.Name)
				continue
			}
			if !v.IsFinite() {
				verr.AddErrorf("scores[%s][%s]: non-finite value %s", a, c.Name, v)
			}
		}
	}

	return verr.ErrOrNil()
}

// Alternatives returns a copy of the alternative identifiers in input order.
func (p *Problem) Alternatives() []string { return append([]string(nil), p.alternatives...) }

// Criteria returns a copy of the criteria in input order.
func (p *Problem) Criteria() []Criterion { return append([]Criterion(nil), p.criteria...) }

// NumAlternatives returns the number of alternatives.
func (p *Problem) NumAlternatives() int { return len(p.alternatives) }

// NumCriteria returns the number of criteria.
func (p *Problem) NumCriteria() int { return len(p.criteria) }

// Score returns the value of alternative alt on criterion crit.
func (p *Problem) Score(alt, crit string) (Value, bool) {
	row, ok := p.scores[alt]
	if !ok {
		return Value{}, false
	}
	v, ok := row[crit]
	return v, ok
}

// TotalWeight returns the sum of criterion weights.
func (p *Problem) TotalWeight() float64 {
	var total float64
	for _, c := range p.criteria {
		total += c.Weight
	}
	return total
}

// NormalizedWeights returns each weight divided by the total weight.
func (p *Problem) NormalizedWeights() []float64 {
	total := p.TotalWeight()
	w := make([]float64, len(p.criteria))
	for i, c := range p.criteria {
		w[i] = c.Weight / total
	}
	return w
}

// HasIntervals reports whether any score carries uncertainty.
func (p *Problem) HasIntervals() bool {
	for _, row := range p.scores {
		for _, v := range row {
			if !v.IsCrisp() {
				return true
			}
		}
	}
	return false
}

// Size returns the problem dimensions.
func (p *Problem) Size() ProblemSize {
	return ProblemSize{Alternatives: len(p.alternatives), Criteria: len(p.criteria)}
}

func formatFloat(x float64) string { return strconv.FormatFloat(x, 'g', -1, 64) }
