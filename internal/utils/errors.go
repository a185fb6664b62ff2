// Package utils provides error wrapping and binary decoding helpers shared
// by the container parsing code.
package utils

import "fmt"

// FormatError represents a structured container-format error.
type FormatError struct {
	Context string
	Cause   error
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %v", e.Context, e.Cause)
}

// Unwrap provides compatibility with errors.Unwrap().
func (e *FormatError) Unwrap() error {
	return e.Cause
}

// WrapError creates a contextual error.
func WrapError(context string, cause error) error {
	if cause == nil {
		return nil
	}
	return &FormatError{
		Context: context,
		Cause:   cause,
	}
}
