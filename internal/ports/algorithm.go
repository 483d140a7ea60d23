// Package ports defines the core interfaces that form the contract between
// the domain/application layers and the infrastructure layer.
// These interfaces enable dependency inversion and make the system testable.
package ports

import (
	"context"

	"github.com/ahrav/go-mcda/internal/domain"
)

// Algorithm is a ranking strategy over a decision problem.
// Implementations are stateless after construction and safe for concurrent use.
type Algorithm interface {
	// Name returns the registry key of the algorithm.
	Name() string

	// Description returns a one-line human readable summary.
	Description() string

	// Calculate validates p and ranks its alternatives.
	// params overrides construction-time hyperparameters for this call only;
	// the algorithm instance is never modified. Values outside their documented
	// domain fail with a *domain.ParameterError before any computation, and a
	// malformed problem fails with a *domain.ValidationError.
	//
	// The context carries tracing information only. Calculate never blocks.
	//
	// Example:
	//
	//	res, err := alg.Calculate(ctx, problem, map[string]any{"v": 0.7})
	//	if err != nil {
	//	    return fmt.Errorf("rank with %s: %w", alg.Name(), err)
	//	}
	Calculate(ctx context.Context, p *domain.Problem, params map[string]any) (*domain.Result, error)

	// Validate checks that the construction-time configuration is usable.
	Validate() error
}

// AlgorithmFactory builds an Algorithm from construction-time hyperparameters.
// A nil or empty map selects the algorithm's defaults.
type AlgorithmFactory func(params map[string]any) (Algorithm, error)

// AlgorithmRegistry maps string keys to algorithm factories.
type AlgorithmRegistry interface {
	// Register binds key to factory. It fails if key is already bound.
	Register(key string, factory AlgorithmFactory) error

	// Get builds the algorithm registered under key with params.
	// An unknown key fails with *domain.AlgorithmNotFoundError.
	Get(key string, params map[string]any) (Algorithm, error)

	// List returns all registered keys in sorted order.
	List() []string
}
