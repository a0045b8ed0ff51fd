/*
errors.go - Centralized error types for the valuation engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Engine packages return these; the API maps them to HTTP statuses.

ERROR CATEGORIES:
  1. InvalidInput - A numeric or enumerated precondition was violated
  2. DegenerateConfiguration - Parameters that would force a division by zero
  3. Store errors - Lookup failures for stored company profiles

USAGE:
  result, err := builder.Build(input)
  var inv *generic.InvalidInputError
  if errors.As(err, &inv) {
      fmt.Println("bad field:", inv.Field)
  }

SEE ALSO:
  - types.go: Validate() methods that produce InvalidInputError
  - vesting/vesting.go: Guards the zero-span case
  - api/handlers.go: Status mapping
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidInput is returned when a required precondition is violated:
	// negative quantity, non-positive price, cliff beyond vesting length,
	// unknown curve or tax-regime tag.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDegenerateConfiguration is returned when parameters would force a
	// division by zero. The vesting model guards the only known case
	// (cliff == vesting length), so callers should not normally see it.
	ErrDegenerateConfiguration = errors.New("degenerate configuration")

	// ErrCompanyNotFound is returned when a referenced company profile doesn't exist.
	ErrCompanyNotFound = errors.New("company not found")

	// ErrDuplicateCompany is returned when saving a profile whose ID already exists.
	ErrDuplicateCompany = errors.New("company already exists")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidInputError identifies the offending field.
type InvalidInputError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s %s (got %s)", e.Field, e.Reason, e.Value)
}

func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}

// DegenerateConfigurationError describes which parameters collapsed a divisor.
type DegenerateConfigurationError struct {
	VestingPeriods int
	CliffPeriods   int
	Curve          CurveType
}

func (e *DegenerateConfigurationError) Error() string {
	return fmt.Sprintf("degenerate configuration: curve %s has no vesting span (vesting %d, cliff %d)",
		e.Curve, e.VestingPeriods, e.CliffPeriods)
}

func (e *DegenerateConfigurationError) Unwrap() error {
	return ErrDegenerateConfiguration
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrDegenerateConfiguration) ||
		errors.Is(err, ErrDuplicateCompany)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCompanyNotFound)
}

// FieldOf returns the offending field of an InvalidInputError, or "".
func FieldOf(err error) string {
	var inv *InvalidInputError
	if errors.As(err, &inv) {
		return inv.Field
	}
	return ""
}
