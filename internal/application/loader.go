package application

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-mcda/internal/ports"
)

// Analysis is a loaded AnalysisConfig with every algorithm instantiated.
// Analyses returned by AnalysisLoader are shared through its cache and must
// not be mutated.
type Analysis struct {
	// Config is the validated source configuration.
	Config *AnalysisConfig
	// Runs holds one entry per configured algorithm, in declaration order.
	Runs []Run
}

// Run is one configured algorithm of an analysis.
type Run struct {
	// Name is the run label, unique within the analysis.
	Name string
	// Key is the registry key.
	Key string
	// Params are the decoded hyperparameters the algorithm was built with.
	Params map[string]any
	// Algorithm is the constructed strategy.
	Algorithm ports.Algorithm
}

// AnalysisLoader parses, validates and caches analysis configurations.
// Identical configurations, after YAML normalization, share one compiled
// Analysis.
type AnalysisLoader struct {
	// validator performs struct tag and custom validation.
	validator *validator.Validate
	// registry resolves algorithm keys and validates parameters.
	registry ports.AlgorithmRegistry
	// cache stores compiled analyses indexed by SHA256 of the normalized config.
	cache   map[string]*Analysis
	cacheMu sync.RWMutex
	// sf prevents duplicate compilation when goroutines load the same config.
	sf singleflight.Group
}

// NewAnalysisLoader creates a loader resolving keys against registry.
// It returns an error if validator registration fails.
func NewAnalysisLoader(registry ports.AlgorithmRegistry) (*AnalysisLoader, error) {
	if registry == nil {
		return nil, fmt.Errorf("registry cannot be nil")
	}

	v := validator.New()
	if err := registerCustomValidators(v, registry); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	return &AnalysisLoader{
		validator: v,
		registry:  registry,
		cache:     make(map[string]*Analysis),
	}, nil
}

// LoadFromFile loads an analysis from a YAML file.
func (l *AnalysisLoader) LoadFromFile(path string) (*Analysis, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return l.load(data)
}

// LoadFromReader loads an analysis from r.
func (l *AnalysisLoader) LoadFromReader(r io.Reader) (*Analysis, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}
	return l.load(data)
}

func (l *AnalysisLoader) load(data []byte) (*Analysis, error) {
	config, err := parseAnalysisYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	hash, err := configHash(config)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate hash: %w", err)
	}

	v, err, _ := l.sf.Do(hash, func() (any, error) {
		if a, ok := l.cached(hash); ok {
			return a, nil
		}
		if err := l.validateConfig(config); err != nil {
			return nil, fmt.Errorf("validation failed: %w", err)
		}
		a, err := l.build(config)
		if err != nil {
			return nil, err
		}
		l.store(hash, a)
		return a, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Analysis), nil
}

// parseAnalysisYAML decodes strictly so configuration typos are not
// silently ignored.
func parseAnalysisYAML(data []byte) (*AnalysisConfig, error) {
	var config AnalysisConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&config); err != nil {
		return nil, fmt.Errorf("YAML decode failed: %w", err)
	}
	return &config, nil
}

// validateConfig runs struct validation and then checks that run names are
// unique.
func (l *AnalysisLoader) validateConfig(config *AnalysisConfig) error {
	if err := l.validator.Struct(config); err != nil {
		return fmt.Errorf("struct validation failed: %w", err)
	}

	seen := make(map[string]int, len(config.Algorithms))
	for i, alg := range config.Algorithms {
		name := foldKey(alg.Name())
		if j, dup := seen[name]; dup {
			return fmt.Errorf("algorithms[%d]: duplicate run name %q (also algorithms[%d]); set a distinct label", i, alg.Name(), j)
		}
		seen[name] = i
	}
	return nil
}

// build instantiates each algorithm, which validates its parameters.
func (l *AnalysisLoader) build(config *AnalysisConfig) (*Analysis, error) {
	a := &Analysis{Config: config, Runs: make([]Run, 0, len(config.Algorithms))}
	for i, ac := range config.Algorithms {
		params, err := decodeParameters(ac.Parameters)
		if err != nil {
			return nil, fmt.Errorf("algorithms[%d] (%s): %w", i, ac.Key, err)
		}
		alg, err := l.registry.Get(ac.Key, params)
		if err != nil {
			return nil, fmt.Errorf("algorithms[%d]: %w", i, err)
		}
		a.Runs = append(a.Runs, Run{Name: ac.Name(), Key: alg.Name(), Params: params, Algorithm: alg})
	}
	return a, nil
}

// decodeParameters converts a parameters node into a factory parameter map.
// An absent node yields nil, selecting the algorithm's defaults.
func decodeParameters(node yaml.Node) (map[string]any, error) {
	if node.Kind == 0 {
		return nil, nil
	}
	var params map[string]any
	if err := node.Decode(&params); err != nil {
		return nil, fmt.Errorf("failed to decode parameters: %w", err)
	}
	return params, nil
}

// configHash computes the SHA256 of the re-encoded config, so whitespace and
// comment differences hash identically.
func configHash(config *AnalysisConfig) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(config); err != nil {
		return "", fmt.Errorf("failed to encode config for hashing: %w", err)
	}
	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:]), nil
}

func (l *AnalysisLoader) cached(hash string) (*Analysis, bool) {
	l.cacheMu.RLock()
	defer l.cacheMu.RUnlock()

	a, ok := l.cache[hash]
	return a, ok
}

func (l *AnalysisLoader) store(hash string, a *Analysis) {
	l.cacheMu.Lock()
	defer l.cacheMu.Unlock()

	l.cache[hash] = a
}

// ClearCache removes all cached analyses.
func (l *AnalysisLoader) ClearCache() {
	l.cacheMu.Lock()
	defer l.cacheMu.Unlock()

	l.cache = make(map[string]*Analysis)
}

// registerCustomValidators registers the semver format check and the
// algokey registry membership check.
func registerCustomValidators(v *validator.Validate, registry ports.AlgorithmRegistry) error {
	if err := v.RegisterValidation("semver", validateSemver); err != nil {
		return fmt.Errorf("failed to register semver validator: %w", err)
	}
	algokey := func(fl validator.FieldLevel) bool {
		return slices.Contains(registry.List(), foldKey(fl.Field().String()))
	}
	if err := v.RegisterValidation("algokey", algokey); err != nil {
		return fmt.Errorf("failed to register algokey validator: %w", err)
	}
	return nil
}

// validateSemver accepts X.Y.Z where X, Y and Z are non-negative integers.
func validateSemver(fl validator.FieldLevel) bool {
	var major, minor, patch int
	n, err := fmt.Sscanf(fl.Field().String(), "%d.%d.%d", &major, &minor, &patch)
	return err == nil && n == 3 && major >= 0 && minor >= 0 && patch >= 0
}
