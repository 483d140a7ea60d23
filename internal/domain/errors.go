package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Common domain errors that can occur while building or ranking a decision problem.
var (
	// ErrInvalidProblem indicates that a decision problem failed validation.
	ErrInvalidProblem = errors.New("invalid decision problem")

	// ErrInvalidInterval indicates an interval with lower > upper or an
	// undefined interval operation such as division by a zero-straddling interval.
	ErrInvalidInterval = errors.New("invalid interval")

	// ErrAlgorithmNotFound indicates that no algorithm is registered under a key.
	ErrAlgorithmNotFound = errors.New("algorithm not found")

	// ErrDuplicateAlgorithm indicates that a key is already registered.
	ErrDuplicateAlgorithm = errors.New("algorithm already registered")

	// ErrInvalidParameter indicates a hyperparameter outside its documented domain.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// ValidationError represents an error that occurred during validation.
// It can contain multiple validation failures.
type ValidationError struct {
	// Entity is the name of the entity that failed validation.
	Entity string

	// Errors contains the list of validation error messages.
	Errors []string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation error for %s: %s", e.Entity, e.Errors[0])
	}
	return fmt.Sprintf("validation errors for %s: %s", e.Entity, strings.Join(e.Errors, "; "))
}

// Unwrap returns ErrInvalidProblem so callers can match with errors.Is.
func (e *ValidationError) Unwrap() error { return ErrInvalidProblem }

// AddError adds a new error message to the validation error.
func (e *ValidationError) AddError(msg string) { e.Errors = append(e.Errors, msg) }

// AddErrorf adds a formatted error message to the validation error.
func (e *ValidationError) AddErrorf(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

// HasErrors returns true if there are any validation errors.
func (e *ValidationError) HasErrors() bool { return len(e.Errors) > 0 }

// ErrOrNil returns e when it holds at least one failure and nil otherwise.
func (e *ValidationError) ErrOrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

// NewValidationError creates a new ValidationError for the given entity.
func NewValidationError(entity string) *ValidationError {
	return &ValidationError{
		Entity: entity,
		Errors: make([]string, 0),
	}
}

// IntervalError reports an invalid interval construction or operation.
type IntervalError struct {
	// Op names the operation that failed, e.g. "new" or "div".
	Op string

	// Lower and Upper are the offending bounds.
	Lower, Upper float64

	// Reason is a human readable description of the failure.
	Reason string
}

// Error implements the error interface for IntervalError.
func (e *IntervalError) Error() string {
	return fmt.Sprintf("interval error: op=%s, interval=[%g, %g]: %s", e.Op, e.Lower, e.Upper, e.Reason)
}

// Unwrap returns ErrInvalidInterval.
func (e *IntervalError) Unwrap() error { return ErrInvalidInterval }

// AlgorithmNotFoundError is returned when a registry lookup misses.
type AlgorithmNotFoundError struct {
	// Key is the requested registry key.
	Key string

	// Suggestions lists registered keys close to Key, closest first.
	Suggestions []string
}

// Error implements the error interface for AlgorithmNotFoundError.
func (e *AlgorithmNotFoundError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("algorithm not found: %q", e.Key)
	}
	return fmt.Sprintf("algorithm not found: %q (did you mean %s?)", e.Key, strings.Join(e.Suggestions, ", "))
}

// Unwrap returns ErrAlgorithmNotFound.
func (e *AlgorithmNotFoundError) Unwrap() error { return ErrAlgorithmNotFound }

// ParameterError reports a hyperparameter outside its documented domain.
type ParameterError struct {
	// Algorithm is the registry key of the algorithm being configured.
	Algorithm string

	// Field is the hyperparameter name as it appears in configuration.
	Field string

	// Value is the rejected value, if known.
	Value any

	// Reason describes the violated constraint.
	Reason string
}

// Error implements the error interface for ParameterError.
func (e *ParameterError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid parameter for %s: %s", e.Algorithm, e.Reason)
	}
	return fmt.Sprintf("invalid parameter for %s: %s=%v: %s", e.Algorithm, e.Field, e.Value, e.Reason)
}

// Unwrap returns ErrInvalidParameter.
func (e *ParameterError) Unwrap() error { return ErrInvalidParameter }

// NewParameterError creates a new ParameterError with the given details.
func NewParameterError(algorithm, field string, value any, reason string) *ParameterError {
	return &ParameterError{
		Algorithm: algorithm,
		Field:     field,
		Value:     value,
		Reason:    reason,
	}
}
