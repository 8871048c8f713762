package shardrecon

import (
	"fmt"
)

// ErrorCategory represents the category of a reconstruction error
type ErrorCategory string

const (
	ErrorCategoryArithmetic    ErrorCategory = "arithmetic"
	ErrorCategoryShares        ErrorCategory = "shares"
	ErrorCategoryConsensus     ErrorCategory = "consensus"
	ErrorCategoryInput         ErrorCategory = "input"
	ErrorCategoryConfiguration ErrorCategory = "configuration"
	ErrorCategoryInternal      ErrorCategory = "internal"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

const (
	ErrorSeverityLow      ErrorSeverity = "low"      // Non-critical, operation can continue
	ErrorSeverityMedium   ErrorSeverity = "medium"   // Important, may affect the result
	ErrorSeverityHigh     ErrorSeverity = "high"     // Critical, operation should stop
	ErrorSeverityCritical ErrorSeverity = "critical" // System-level failure
)

// ReconError represents a structured error in the reconstruction library
type ReconError struct {
	Category    ErrorCategory          `json:"category"`
	Severity    ErrorSeverity          `json:"severity"`
	Code        string                 `json:"code"`
	Message     string                 `json:"message"`
	Details     string                 `json:"details,omitempty"`
	Cause       error                  `json:"-"` // Original error, not serialized
	Context     map[string]interface{} `json:"context,omitempty"`
	Recoverable bool                   `json:"recoverable"`
}

// Error implements the error interface
func (e *ReconError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s:%s] %s: %s", e.Category, e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *ReconError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a ReconError with the same code, so that
// errors.Is keeps matching the package sentinels after WithCause, WithContext
// or WithDetails produced a derived copy.
func (e *ReconError) Is(target error) bool {
	t, ok := target.(*ReconError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// clone returns a copy of the error with its own context map.
func (e *ReconError) clone() *ReconError {
	copied := &ReconError{
		Category:    e.Category,
		Severity:    e.Severity,
		Code:        e.Code,
		Message:     e.Message,
		Details:     e.Details,
		Cause:       e.Cause,
		Recoverable: e.Recoverable,
		Context:     make(map[string]interface{}, len(e.Context)+1),
	}
	for k, v := range e.Context {
		copied.Context[k] = v
	}
	return copied
}

// WithContext adds context information to a copy of the error
func (e *ReconError) WithContext(key string, value interface{}) *ReconError {
	copied := e.clone()
	copied.Context[key] = value
	return copied
}

// WithCause sets the underlying cause on a copy of the error
func (e *ReconError) WithCause(cause error) *ReconError {
	copied := e.clone()
	copied.Cause = cause
	return copied
}

// WithDetails sets the detail string on a copy of the error
func (e *ReconError) WithDetails(details string) *ReconError {
	copied := e.clone()
	copied.Details = details
	return copied
}

// IsRecoverable returns whether the error is recoverable
func (e *ReconError) IsRecoverable() bool {
	return e.Recoverable
}

// NewReconError creates a new reconstruction error
func NewReconError(category ErrorCategory, severity ErrorSeverity, code, message string) *ReconError {
	return &ReconError{
		Category:    category,
		Severity:    severity,
		Code:        code,
		Message:     message,
		Context:     make(map[string]interface{}),
		Recoverable: severity != ErrorSeverityCritical,
	}
}

// Arithmetic errors
var (
	ErrDivisionByZero = NewReconError(
		ErrorCategoryArithmetic, ErrorSeverityHigh, "DIVISION_BY_ZERO",
		"denominator is zero")
)

// Share set errors
var (
	ErrInsufficientShares = NewReconError(
		ErrorCategoryShares, ErrorSeverityHigh, "INSUFFICIENT_SHARES",
		"fewer shares than the required subset size")

	ErrDuplicateShares = NewReconError(
		ErrorCategoryShares, ErrorSeverityMedium, "DUPLICATE_SHARES",
		"duplicate x-coordinates in share set")

	ErrInvalidThreshold = NewReconError(
		ErrorCategoryShares, ErrorSeverityHigh, "INVALID_THRESHOLD",
		"subset size is invalid")

	ErrNonIntegerSecret = NewReconError(
		ErrorCategoryShares, ErrorSeverityMedium, "NON_INTEGER_SECRET",
		"elected value is not an integer and cannot seed a new share set")

	ErrInvalidReshareRequest = NewReconError(
		ErrorCategoryShares, ErrorSeverityMedium, "INVALID_RESHARE_REQUEST",
		"reshare request failed validation")
)

// Consensus errors
var (
	ErrNoConsensus = NewReconError(
		ErrorCategoryConsensus, ErrorSeverityHigh, "NO_CONSENSUS",
		"no subset produced a result")
)

// Input document errors
var (
	ErrMalformedDocument = NewReconError(
		ErrorCategoryInput, ErrorSeverityHigh, "MALFORMED_DOCUMENT",
		"test case document is malformed")

	ErrInvalidBase = NewReconError(
		ErrorCategoryInput, ErrorSeverityMedium, "INVALID_BASE",
		"numeral base is out of range")

	ErrInvalidDigits = NewReconError(
		ErrorCategoryInput, ErrorSeverityMedium, "INVALID_DIGITS",
		"digit string is not valid in the declared base")

	ErrShareCountMismatch = NewReconError(
		ErrorCategoryInput, ErrorSeverityMedium, "SHARE_COUNT_MISMATCH",
		"declared share count does not match the document entries")
)

// Configuration errors
var (
	ErrInvalidConfig = NewReconError(
		ErrorCategoryConfiguration, ErrorSeverityHigh, "INVALID_CONFIG",
		"configuration is invalid")
)

// Error helper functions

// WrapError wraps an existing error with reconstruction error context
func WrapError(err error, category ErrorCategory, severity ErrorSeverity, code, message string) *ReconError {
	return NewReconError(category, severity, code, message).WithCause(err)
}

// IsErrorCategory checks if an error belongs to a specific category
func IsErrorCategory(err error, category ErrorCategory) bool {
	if reconErr, ok := err.(*ReconError); ok {
		return reconErr.Category == category
	}
	return false
}

// IsErrorSeverity checks if an error has a specific severity
func IsErrorSeverity(err error, severity ErrorSeverity) bool {
	if reconErr, ok := err.(*ReconError); ok {
		return reconErr.Severity == severity
	}
	return false
}

// IsRecoverableError checks if an error is recoverable
func IsRecoverableError(err error) bool {
	if reconErr, ok := err.(*ReconError); ok {
		return reconErr.IsRecoverable()
	}
	return true // Errors from outside the library are assumed recoverable
}

// GetErrorContext extracts context from a reconstruction error
func GetErrorContext(err error) map[string]interface{} {
	if reconErr, ok := err.(*ReconError); ok {
		return reconErr.Context
	}
	return nil
}
