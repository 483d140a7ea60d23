package application

import (
	"gopkg.in/yaml.v3"
)

// AnalysisConfig declares which algorithms rank a decision problem and with
// which hyperparameters. It is the YAML entry point executed by Engine.Run.
//
//	version: "1.0.0"
//	metadata:
//	  name: supplier-selection
//	algorithms:
//	  - key: topsis
//	  - key: vikor
//	    parameters:
//	      v: 0.7
//	comparison:
//	  enabled: true
type AnalysisConfig struct {
	// Version specifies the configuration schema version using semantic
	// versioning.
	Version string `yaml:"version" validate:"required,semver"`
	// Metadata describes the analysis.
	Metadata Metadata `yaml:"metadata" validate:"required"`
	// Algorithms lists the runs in execution order.
	Algorithms []AlgorithmConfig `yaml:"algorithms" validate:"required,min=1,dive"`
	// Comparison enables cross-algorithm agreement statistics.
	Comparison ComparisonConfig `yaml:"comparison"`
}

// Metadata provides descriptive information about an analysis.
type Metadata struct {
	// Name identifies the analysis in logs and reports.
	Name string `yaml:"name" validate:"required,min=1,max=255"`
	// Description explains the decision being analysed.
	Description string `yaml:"description" validate:"max=1000"`
	// Tags are categorical labels for grouping analyses.
	Tags []string `yaml:"tags" validate:"max=20,dive,min=1,max=50"`
}

// AlgorithmConfig selects one registered algorithm.
type AlgorithmConfig struct {
	// Key is the registry key, matched case-insensitively.
	Key string `yaml:"key" validate:"required,algokey"`
	// Label distinguishes several runs of the same algorithm. It defaults to
	// the key and must be unique within the analysis.
	Label string `yaml:"label,omitempty" validate:"omitempty,min=1,max=100"`
	// Parameters are the algorithm's hyperparameters, validated against the
	// algorithm's own configuration schema when the analysis is loaded.
	Parameters yaml.Node `yaml:"parameters,omitempty"`
}

// Name returns the label, falling back to the key.
func (c AlgorithmConfig) Name() string {
	if c.Label != "" {
		return c.Label
	}
	return c.Key
}

// ComparisonConfig controls multi-algorithm comparison.
type ComparisonConfig struct {
	// Enabled adds rank correlations and a consensus ranking to the report.
	Enabled bool `yaml:"enabled"`
	// Concurrency bounds the algorithms run at once. Zero selects
	// DefaultConcurrency.
	Concurrency int `yaml:"concurrency" validate:"omitempty,min=1,max=64"`
}
