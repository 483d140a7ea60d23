package algorithms

import (
	"cmp"
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-mcda/internal/domain"
	"github.com/ahrav/go-mcda/internal/ports"
)

var _ ports.Algorithm = (*ELECTRE)(nil)

// ELECTRE is ELECTRE-I: outranking by concordance and discordance, followed
// by kernel extraction.
//
// c(i,j) is the weight share of criteria on which i is not worse than j, and
// d(i,j) the largest shortfall of i below j relative to the criterion's
// observed range. i outranks j when c(i,j) ≥ alpha and d(i,j) ≤ beta. The
// kernel holds the alternatives no other alternative strictly outranks;
// mutual outranking counts as indifference. When a preference cycle leaves no
// such alternative, the kernel falls back to those with the fewest incoming
// edges, so it is never empty.
//
// Kernel members rank ahead of the rest. Within each group alternatives are
// ordered by their direction-signed score sum.
type ELECTRE struct {
	config ELECTREConfig
	tracer trace.Tracer
}

// ELECTREConfig holds the outranking thresholds shared by both variants.
type ELECTREConfig struct {
	// Alpha is the concordance threshold.
	Alpha float64 `yaml:"alpha" json:"alpha" validate:"gt=0,max=1"`
	// Beta is the discordance threshold.
	Beta float64 `yaml:"beta" json:"beta" validate:"min=0,max=1"`
}

// DefaultELECTREConfig returns alpha = 0.6, beta = 0.3.
func DefaultELECTREConfig() ELECTREConfig {
	return ELECTREConfig{Alpha: 0.6, Beta: 0.3}
}

// NewELECTRE creates an ELECTRE-I algorithm with a validated configuration.
func NewELECTRE(config ELECTREConfig) (*ELECTRE, error) {
	if err := validateConfig(KeyELECTRE, config); err != nil {
		return nil, err
	}
	return &ELECTRE{config: config, tracer: otel.Tracer(instrumentationPrefix + KeyELECTRE)}, nil
}

// NewELECTREFromConfig is the registry factory for ELECTRE-I.
func NewELECTREFromConfig(params map[string]any) (ports.Algorithm, error) {
	cfg, err := configFromMap(KeyELECTRE, DefaultELECTREConfig(), params)
	if err != nil {
		return nil, err
	}
	return NewELECTRE(cfg)
}

// Name returns the registry key.
func (a *ELECTRE) Name() string { return KeyELECTRE }

// Description returns a one-line summary.
func (a *ELECTRE) Description() string {
	return "ELECTRE-I: concordance/discordance outranking with kernel extraction"
}

// Config returns the construction-time configuration.
func (a *ELECTRE) Config() ELECTREConfig { return a.config }

// Validate checks the configuration.
func (a *ELECTRE) Validate() error { return validateConfig(KeyELECTRE, a.config) }

// UnmarshalParameters replaces the configuration from YAML. It must not be
// called concurrently with Calculate.
func (a *ELECTRE) UnmarshalParameters(params yaml.Node) error {
	cfg, err := decodeNode(KeyELECTRE, DefaultELECTREConfig(), params)
	if err != nil {
		return err
	}
	a.config = cfg
	return nil
}

// Calculate ranks kernel members first.
func (a *ELECTRE) Calculate(ctx context.Context, p *domain.Problem, params map[string]any) (_ *domain.Result, err error) {
	span := startSpan(ctx, a.tracer, "ELECTRE.Calculate", KeyELECTRE, p)
	defer func() { endSpan(span, err) }()

	cfg, err := resolveConfig(KeyELECTRE, a.config, params)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	m, err := crispMatrix(KeyELECTRE, p)
	if err != nil {
		return nil, err
	}

	alts := p.Alternatives()
	crits := p.Criteria()
	w := p.NormalizedWeights()
	n := len(alts)

	ranges := make([]float64, len(crits))
	for k := range crits {
		lo, hi := minMax(column(m, k))
		ranges[k] = hi - lo
	}

	conc := newMatrix(n)
	disc := newMatrix(n)
	for i := range n {
		for j := range n {
			if i == j {
				continue
			}
			for k, c := range crits {
				diff := m[i][k] - m[j][k]
				if !c.Direction.IsBenefit() {
					diff = -diff
				}
				if diff >= -domain.Tolerance {
					conc[i][j] += w[k]
				} else if ranges[k] > 0 {
					disc[i][j] = max(disc[i][j], min(1, -diff/ranges[k]))
				}
			}
		}
	}

	// Signed sums order alternatives within the kernel and the remainder.
	sums := make([]float64, n)
	for i := range n {
		for k, c := range crits {
			if c.Direction.IsBenefit() {
				sums[i] += m[i][k]
			} else {
				sums[i] -= m[i][k]
			}
		}
	}

	out := outrank(alts, conc, disc, cfg)
	res, err := domain.NewResult(KeyELECTRE, p, out.rank(alts, sums), scoreMap(alts, sums), out.metrics(alts))
	if err != nil {
		return nil, fmt.Errorf("build result: %w", err)
	}
	return res, nil
}

// outranking is the credibility graph derived from concordance and
// discordance matrices.
type outranking struct {
	cfg         ELECTREConfig
	concordance [][]float64
	discordance [][]float64
	credibility [][]float64
	inKernel    []bool
	// fallback reports that no alternative was free of strict outranking.
	fallback bool
}

// outrank thresholds c and d into credibility edges and extracts the kernel.
func outrank(alts []string, c, d [][]float64, cfg ELECTREConfig) outranking {
	n := len(alts)
	cred := newMatrix(n)
	for i := range n {
		for j := range n {
			if i != j && c[i][j] >= cfg.Alpha-domain.Tolerance && d[i][j] <= cfg.Beta+domain.Tolerance {
				cred[i][j] = 1
			}
		}
	}

	inDegree := make([]int, n)
	for i := range n {
		for j := range n {
			if cred[j][i] == 1 && cred[i][j] == 0 {
				inDegree[i]++
			}
		}
	}

	fewest := inDegree[0]
	for _, deg := range inDegree[1:] {
		fewest = min(fewest, deg)
	}
	kernel := make([]bool, n)
	for i, deg := range inDegree {
		kernel[i] = deg == fewest
	}

	return outranking{
		cfg:         cfg,
		concordance: c,
		discordance: d,
		credibility: cred,
		inKernel:    kernel,
		fallback:    fewest > 0,
	}
}

// outDegree counts the alternatives each alternative outranks.
func (o outranking) outDegree() []float64 {
	deg := make([]float64, len(o.credibility))
	for i, row := range o.credibility {
		for _, v := range row {
			deg[i] += v
		}
	}
	return deg
}

// rank places kernel members first, each group ordered by descending score.
func (o outranking) rank(alts []string, scores []float64) []domain.RankedAlternative {
	return domain.RankFunc(alts, scores,
		func(i, j int) int {
			switch {
			case o.inKernel[i] && !o.inKernel[j]:
				return -1
			case !o.inKernel[i] && o.inKernel[j]:
				return 1
			}
			return cmp.Compare(scores[j], scores[i])
		},
		func(i, j int) bool {
			return o.inKernel[i] == o.inKernel[j] && domain.CompareScores(scores[i], scores[j]) == 0
		},
	)
}

func (o outranking) kernel(alts []string) []string {
	var out []string
	for i, in := range o.inKernel {
		if in {
			out = append(out, alts[i])
		}
	}
	return out
}

func (o outranking) metrics(alts []string) map[string]any {
	return map[string]any{
		"alpha":           o.cfg.Alpha,
		"beta":            o.cfg.Beta,
		"concordance":     o.concordance,
		"discordance":     o.discordance,
		"credibility":     o.credibility,
		"kernel":          o.kernel(alts),
		"kernel_fallback": o.fallback,
		"out_degree":      scoreMap(alts, o.outDegree()),
	}
}

func newMatrix(n int) [][]float64 {
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	return m
}
