package application

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"

	"github.com/ahrav/go-mcda/infrastructure/algorithms"
	"github.com/ahrav/go-mcda/internal/domain"
	"github.com/ahrav/go-mcda/internal/ports"
)

// Verify interface compliance at compile time.
var _ ports.AlgorithmRegistry = (*Registry)(nil)

// maxSuggestions caps the "did you mean" keys reported for an unknown key.
const maxSuggestions = 3

// Registry maps algorithm keys to factories.
// Keys are trimmed and Unicode case-folded on both registration and lookup,
// so "TOPSIS" and "topsis" name the same algorithm. Registration is expected
// to finish before concurrent lookups begin, but the registry is safe for
// concurrent use either way.
type Registry struct {
	// factories maps folded keys to their factory functions.
	factories map[string]ports.AlgorithmFactory
	// mu protects concurrent access to the factories map.
	mu sync.RWMutex
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]ports.AlgorithmFactory)}
}

// NewDefaultRegistry returns a registry holding every built-in algorithm.
func NewDefaultRegistry() (*Registry, error) {
	r := NewRegistry()
	if err := algorithms.RegisterBuiltins(r); err != nil {
		return nil, fmt.Errorf("failed to register built-in algorithms: %w", err)
	}
	return r, nil
}

// foldKey normalizes a key for storage and lookup. A Caser is stateful, so
// one is created per call.
func foldKey(key string) string {
	return cases.Fold().String(strings.TrimSpace(key))
}

// Register binds key to factory. It fails with domain.ErrDuplicateAlgorithm
// when the folded key is already bound.
func (r *Registry) Register(key string, factory ports.AlgorithmFactory) error {
	folded := foldKey(key)
	if folded == "" {
		return fmt.Errorf("algorithm key cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory for %q cannot be nil", key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[folded]; exists {
		return fmt.Errorf("%w: %q", domain.ErrDuplicateAlgorithm, folded)
	}
	r.factories[folded] = factory
	return nil
}

// Get builds the algorithm registered under key. An unknown key fails with
// *domain.AlgorithmNotFoundError carrying the closest registered keys.
func (r *Registry) Get(key string, params map[string]any) (ports.Algorithm, error) {
	folded := foldKey(key)

	r.mu.RLock()
	factory, exists := r.factories[folded]
	r.mu.RUnlock()

	if !exists {
		return nil, &domain.AlgorithmNotFoundError{Key: key, Suggestions: r.suggest(folded)}
	}

	alg, err := factory(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create algorithm %s: %w", folded, err)
	}
	return alg, nil
}

// Has reports whether key is registered.
func (r *Registry) Has(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.factories[foldKey(key)]
	return ok
}

// List returns all registered keys in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.factories))
	for k := range r.factories {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// suggest returns up to maxSuggestions registered keys within edit distance
// max(2, len(key)/3) of key, closest first.
func (r *Registry) suggest(key string) []string {
	type candidate struct {
		key  string
		dist int
	}

	limit := max(2, len([]rune(key))/3)
	var found []candidate
	for _, k := range r.List() {
		d := levenshtein.ComputeDistance(key, k)
		if d <= limit || (key != "" && strings.Contains(k, key)) {
			found = append(found, candidate{key: k, dist: d})
		}
	}
	slices.SortStableFunc(found, func(a, b candidate) int { return a.dist - b.dist })

	out := make([]string, 0, min(len(found), maxSuggestions))
	for _, c := range found[:min(len(found), maxSuggestions)] {
		out = append(out, c.key)
	}
	return out
}
