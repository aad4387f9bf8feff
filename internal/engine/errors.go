package engine

import (
	"errors"
	"fmt"
)

// PatternErrorCode categorizes invalid patterns.
type PatternErrorCode string

const (
	// ErrCodeEmptyPattern indicates a pattern without edges.
	ErrCodeEmptyPattern PatternErrorCode = "EMPTY_PATTERN"

	// ErrCodeDisconnected indicates a pattern that is not weakly connected.
	ErrCodeDisconnected PatternErrorCode = "DISCONNECTED"

	// ErrCodeCyclic indicates a pattern containing a directed cycle.
	ErrCodeCyclic PatternErrorCode = "CYCLIC"
)

// ErrInvalidPattern matches every *PatternError with errors.Is.
var ErrInvalidPattern = errors.New("invalid pattern")

// PatternError is returned by Search when the pattern fails a
// precondition. No traversal work has been done when it is returned.
type PatternError struct {
	// Code identifies the failed precondition.
	Code PatternErrorCode

	// Message is a human-readable description.
	Message string

	// Cycles lists the offending entity cycles for ErrCodeCyclic.
	Cycles [][]string
}

// Error implements the error interface.
func (e *PatternError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is makes errors.Is(err, ErrInvalidPattern) hold for every PatternError.
func (e *PatternError) Is(target error) bool {
	return target == ErrInvalidPattern
}

// IsPatternError returns true if err is or wraps a *PatternError.
func IsPatternError(err error) bool {
	var pe *PatternError
	return errors.As(err, &pe)
}
