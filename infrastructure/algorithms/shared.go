// Package algorithms provides the multi-criteria ranking strategies that
// implement the ports.Algorithm interface: weighted sum and product, TOPSIS,
// VIKOR, TODIM, ELECTRE-I and PROMETHEE-II, with interval-valued variants for
// the last five.
package algorithms

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-mcda/internal/domain"
	"github.com/ahrav/go-mcda/internal/ports"
)

// Registry keys of the built-in algorithms.
const (
	KeyWSM                = "wsm"
	KeyWPM                = "wpm"
	KeyTOPSIS             = "topsis"
	KeyIntervalTOPSIS     = "interval_topsis"
	KeyVIKOR              = "vikor"
	KeyIntervalVIKOR      = "interval_vikor"
	KeyTODIM              = "todim"
	KeyIntervalTODIM      = "interval_todim"
	KeyELECTRE            = "electre1"
	KeyIntervalELECTRE    = "interval_electre1"
	KeyPROMETHEE          = "promethee2"
	KeyIntervalPROMETHEE  = "interval_promethee2"
	instrumentationPrefix = "github.com/ahrav/go-mcda/algorithms/"
)

// Builtin pairs a registry key with its factory.
type Builtin struct {
	Key     string
	Factory ports.AlgorithmFactory
}

// Builtins returns the built-in algorithms in registration order.
func Builtins() []Builtin {
	return []Builtin{
		{KeyWSM, NewWSMFromConfig},
		{KeyWPM, NewWPMFromConfig},
		{KeyTOPSIS, NewTOPSISFromConfig},
		{KeyIntervalTOPSIS, NewIntervalTOPSISFromConfig},
		{KeyVIKOR, NewVIKORFromConfig},
		{KeyIntervalVIKOR, NewIntervalVIKORFromConfig},
		{KeyTODIM, NewTODIMFromConfig},
		{KeyIntervalTODIM, NewIntervalTODIMFromConfig},
		{KeyELECTRE, NewELECTREFromConfig},
		{KeyIntervalELECTRE, NewIntervalELECTREFromConfig},
		{KeyPROMETHEE, NewPROMETHEEFromConfig},
		{KeyIntervalPROMETHEE, NewIntervalPROMETHEEFromConfig},
	}
}

// RegisterBuiltins registers every built-in algorithm with r.
func RegisterBuiltins(r ports.AlgorithmRegistry) error {
	for _, b := range Builtins() {
		if err := r.Register(b.Key, b.Factory); err != nil {
			return fmt.Errorf("register %s: %w", b.Key, err)
		}
	}
	return nil
}

// Package-level validator instance for configuration validation.
// Field names in errors use the yaml tag so they match configuration keys.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	})
	return v
}

// crossChecker is implemented by configs with constraints that struct tags
// cannot express.
type crossChecker interface {
	check(algorithm string) error
}

// validateConfig runs struct-tag validation followed by cross-field checks and
// reports the first violation as a *domain.ParameterError.
func validateConfig(algorithm string, cfg any) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return domain.NewParameterError(algorithm, fieldPath(fe), fe.Value(), describeTag(fe))
		}
		return domain.NewParameterError(algorithm, "", nil, err.Error())
	}
	if c, ok := cfg.(crossChecker); ok {
		return c.check(algorithm)
	}
	return nil
}

// fieldPath strips the root struct name from a validator namespace,
// e.g. "PROMETHEEConfig.criteria[cost].p" becomes "criteria[cost].p".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte", "min":
		return "must be at least " + fe.Param()
	case "lt":
		return "must be less than " + fe.Param()
	case "lte", "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of [" + fe.Param() + "]"
	case "required":
		return "is required"
	case "finite":
		return "must be finite"
	default:
		return "failed " + fe.Tag() + " constraint"
	}
}

// resolveConfig returns base overlaid with params. base is deep-copied through
// a YAML round trip, so the caller's config is never modified. Unknown keys
// and out-of-domain values fail with a *domain.ParameterError.
func resolveConfig[T any](algorithm string, base T, params map[string]any) (T, error) {
	if len(params) == 0 {
		return base, nil
	}

	var out T
	seed, err := yaml.Marshal(base)
	if err != nil {
		return out, fmt.Errorf("marshal %s config: %w", algorithm, err)
	}
	if err := yaml.Unmarshal(seed, &out); err != nil {
		return out, fmt.Errorf("copy %s config: %w", algorithm, err)
	}

	overlay, err := yaml.Marshal(params)
	if err != nil {
		return out, domain.NewParameterError(algorithm, "", nil, fmt.Sprintf("unencodable parameters: %v", err))
	}
	if err := decodeStrict(overlay, &out); err != nil {
		return out, domain.NewParameterError(algorithm, "", nil, err.Error())
	}
	if err := validateConfig(algorithm, out); err != nil {
		return out, err
	}
	return out, nil
}

// configFromMap builds a config from defaults and a factory parameter map.
func configFromMap[T any](algorithm string, defaults T, params map[string]any) (T, error) {
	cfg, err := resolveConfig(algorithm, defaults, params)
	if err != nil {
		return cfg, err
	}
	return cfg, validateConfig(algorithm, cfg)
}

// decodeNode decodes a YAML node over defaults, rejecting unknown fields.
func decodeNode[T any](algorithm string, defaults T, node yaml.Node) (T, error) {
	out := defaults
	if node.Kind == 0 {
		return out, validateConfig(algorithm, out)
	}
	data, err := yaml.Marshal(&node)
	if err != nil {
		return out, fmt.Errorf("failed to encode parameters: %w", err)
	}
	if err := decodeStrict(data, &out); err != nil {
		return out, domain.NewParameterError(algorithm, "", nil, err.Error())
	}
	if err := validateConfig(algorithm, out); err != nil {
		return out, err
	}
	return out, nil
}

func decodeStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("failed to decode parameters: %w", err)
	}
	return nil
}

// crispMatrix returns the score matrix indexed [alternative][criterion].
// Crisp algorithms reject uncertain cells rather than collapsing them.
func crispMatrix(algorithm string, p *domain.Problem) ([][]float64, error) {
	alts := p.Alternatives()
	crits := p.Criteria()
	verr := domain.NewValidationError("problem")

	m := make([][]float64, len(alts))
	for i, a := range alts {
		m[i] = make([]float64, len(crits))
		for j, c := range crits {
			v, _ := p.Score(a, c.Name)
			if !v.IsCrisp() {
				verr.AddErrorf("scores[%s][%s]: %s holds interval %s; use the interval variant", a, c.Name, algorithm, v)
				continue
			}
			m[i][j] = v.Float()
		}
	}
	if err := verr.ErrOrNil(); err != nil {
		return nil, err
	}
	return m, nil
}

// intervalMatrix returns the score matrix as intervals, lifting scalars to
// degenerate intervals.
func intervalMatrix(p *domain.Problem) [][]domain.Interval {
	alts := p.Alternatives()
	crits := p.Criteria()
	m := make([][]domain.Interval, len(alts))
	for i, a := range alts {
		m[i] = make([]domain.Interval, len(crits))
		for j, c := range crits {
			v, _ := p.Score(a, c.Name)
			m[i][j] = v.Interval()
		}
	}
	return m
}

// rangeNormalizeIntervals maps each column to [0, 1] in benefit orientation,
// using the column's lowest lower bound and highest upper bound as the range.
// Constant columns map to [0, 0].
func rangeNormalizeIntervals(m [][]domain.Interval, crits []domain.Criterion) [][]domain.Interval {
	out := make([][]domain.Interval, len(m))
	for i := range out {
		out[i] = make([]domain.Interval, len(crits))
	}
	for j, c := range crits {
		lo, hi := m[0][j].Lower(), m[0][j].Upper()
		for i := range m {
			lo = min(lo, m[i][j].Lower())
			hi = max(hi, m[i][j].Upper())
		}
		rng := hi - lo
		if rng == 0 {
			continue
		}
		for i := range m {
			if c.Direction.IsBenefit() {
				out[i][j] = m[i][j].AddScalar(-lo).Scale(1 / rng)
			} else {
				out[i][j] = m[i][j].Neg().AddScalar(hi).Scale(1 / rng)
			}
			out[i][j] = out[i][j].Clamp(0, 1)
		}
	}
	return out
}

// midpoints collapses an interval matrix to its midpoints.
func midpoints(m [][]domain.Interval) [][]float64 {
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = make([]float64, len(row))
		for j, iv := range row {
			out[i][j] = iv.Midpoint()
		}
	}
	return out
}

// column returns column j of m.
func column(m [][]float64, j int) []float64 {
	col := make([]float64, len(m))
	for i := range m {
		col[i] = m[i][j]
	}
	return col
}

func minMax(xs []float64) (lo, hi float64) {
	lo, hi = xs[0], xs[0]
	for _, x := range xs[1:] {
		lo = min(lo, x)
		hi = max(hi, x)
	}
	return lo, hi
}

// scoreMap pairs alternatives with scores.
func scoreMap(alts []string, scores []float64) map[string]float64 {
	out := make(map[string]float64, len(alts))
	for i, a := range alts {
		out[a] = scores[i]
	}
	return out
}

// intervalPairs renders intervals as [lower, upper] pairs keyed by alternative
// so metrics stay plain data.
func intervalPairs(alts []string, ivs []domain.Interval) map[string][2]float64 {
	out := make(map[string][2]float64, len(alts))
	for i, a := range alts {
		out[a] = [2]float64{ivs[i].Lower(), ivs[i].Upper()}
	}
	return out
}

func allDegenerate(ivs []domain.Interval) bool {
	for _, iv := range ivs {
		if iv.Width() > domain.Tolerance {
			return false
		}
	}
	return true
}

// startSpan opens the Calculate span with problem-size attributes.
func startSpan(ctx context.Context, tracer trace.Tracer, op, key string, p *domain.Problem) trace.Span {
	attrs := []attribute.KeyValue{attribute.String("algorithm.key", key)}
	if p != nil {
		attrs = append(attrs,
			attribute.Int("problem.alternatives", p.NumAlternatives()),
			attribute.Int("problem.criteria", p.NumCriteria()),
		)
	}
	_, span := tracer.Start(ctx, op, trace.WithAttributes(attrs...))
	return span
}

// endSpan records err on span, then ends it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
