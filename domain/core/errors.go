package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound       = errors.New("resource not found")
	ErrRunNotFound    = fmt.Errorf("%w: run", ErrNotFound)
	ErrColumnNotFound = fmt.Errorf("%w: column", ErrNotFound)

	// Input contract errors
	ErrInputType     = errors.New("unsupported column type")
	ErrInvalidTarget = errors.New("target column is not binary")
	ErrInvalidTable  = errors.New("invalid table")
	ErrInvalidOption = errors.New("invalid search option")

	// Precondition violations
	ErrDegenerateSubgroup = errors.New("quality evaluated on an empty subgroup")
)

// Error constructors with context
func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

// NewInputTypeError reports a feature column whose kind the search cannot refine.
func NewInputTypeError(column string, kind fmt.Stringer) error {
	return fmt.Errorf("%w: column %q has kind %s", ErrInputType, column, kind)
}

func NewColumnNotFoundError(column string) error {
	return fmt.Errorf("%w %q", ErrColumnNotFound, column)
}

func NewOptionError(option string, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidOption, option, reason)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInputError reports whether err stems from a dataset or option contract violation.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInputType) ||
		errors.Is(err, ErrInvalidTarget) ||
		errors.Is(err, ErrInvalidTable) ||
		errors.Is(err, ErrInvalidOption) ||
		errors.Is(err, ErrColumnNotFound)
}

func IsPreconditionError(err error) bool {
	return errors.Is(err, ErrDegenerateSubgroup)
}
