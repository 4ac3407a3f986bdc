// Package errors provides a lightweight structured error type
// (BibError) for category-based classification in the checkers, the
// document layer, and the lookup clients.
package errors

import (
	"fmt"
)

// ErrorCategory classifies a BibError for handling and reporting.
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Bibliography parsing errors
	CategoryParse ErrorCategory = "parse"

	// External lookup errors
	CategoryNetwork ErrorCategory = "network"
	CategoryStorage ErrorCategory = "storage"

	// Runtime and infrastructure errors
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryInternal   ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// BibError is a structured error with category, retryability, and context.
type BibError struct {
	Category  ErrorCategory `json:"category"`
	Severity  ErrorSeverity `json:"severity"`
	Message   string        `json:"message"`
	Cause     error         `json:"cause,omitempty"`
	Retryable bool          `json:"retryable"`
	Context   ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for BibError.
type ContextFields map[string]any

// Error implements the error interface.
func (e *BibError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling.
func (e *BibError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error.
func (e *BibError) WithContext(key string, value any) *BibError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new BibError.
func New(category ErrorCategory, severity ErrorSeverity, message string) *BibError {
	return &BibError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new BibError that wraps an existing error.
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *BibError {
	return &BibError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// WrapRetryable creates a new retryable BibError that wraps an existing error.
func WrapRetryable(err error, category ErrorCategory, severity ErrorSeverity, message string) *BibError {
	return &BibError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Cause:     err,
		Retryable: true,
	}
}
