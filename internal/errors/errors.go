// Package errors defines the structured application error taxonomy.
//
// Four classes matter to callers: validation errors are rejected before any
// mutation, state errors leave the persisted state unchanged, dependency
// errors are retryable and leave the job in its prior consistent state, and
// side-effect warnings are not errors at all — they ride along with a
// successful result as Diagnostic values.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeValidation indicates invalid input, rejected before any mutation.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeState indicates an operation invalid for the current persisted state.
	ErrCodeState ErrorCode = "state"
	// ErrCodeDependency indicates a missing or failed collaborator; retryable.
	ErrCodeDependency ErrorCode = "dependency"
	// ErrCodeNotFound indicates a resource was not found.
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeConflict indicates a conflict with existing data.
	ErrCodeConflict ErrorCode = "conflict"
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "internal"
	// ErrCodeTimeout indicates a timeout occurred.
	ErrCodeTimeout ErrorCode = "timeout"
	// ErrCodeCanceled indicates the operation was canceled.
	ErrCodeCanceled ErrorCode = "canceled"
)

// Machine-readable rejection reasons surfaced to callers.
const (
	ReasonMissingReferenceNumber = "missing_reference_number"
	ReasonMissingVendorFields    = "missing_vendor_fields"
	ReasonNegativeAmount         = "negative_amount"
	ReasonAmountExceedsTotal     = "amount_exceeds_customer_total"
	ReasonInvalidTransition      = "invalid_transition"
	ReasonImmutableField         = "immutable_field"
	ReasonNoPricingRule          = "no_pricing_rule"
	ReasonParserFailure          = "parser_failure"
	ReasonBoundaryMismatch       = "boundary_mismatch"
	ReasonAmountsNotDerived      = "amounts_not_derived"
	ReasonSettlementFrozen       = "settlement_frozen"
	ReasonInvalidFileKind        = "invalid_file_kind"
	ReasonMissingCounterparty    = "missing_counterparty"
)

// AppError is a structured application error with a code, a machine-readable
// reason, a human-readable message, and an optional cause. It supports
// errors.Is and errors.As through Unwrap.
type AppError struct {
	Code    ErrorCode
	Reason  string
	Message string
	// Field is the specific field that caused the error, for validation errors.
	Field string
	Cause error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Validation creates a validation error with a machine-readable reason.
func Validation(reason, message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Reason: reason, Message: message}
}

// ValidationField creates a validation error tied to a specific field.
func ValidationField(reason, field, message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Reason: reason, Field: field, Message: message}
}

// State creates a state error.
func State(reason, message string) *AppError {
	return &AppError{Code: ErrCodeState, Reason: reason, Message: message}
}

// Statef creates a state error with a formatted message.
func Statef(reason, format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeState, Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// Dependency creates a dependency error wrapping its cause.
func Dependency(reason, message string, cause error) *AppError {
	return &AppError{Code: ErrCodeDependency, Reason: reason, Message: message, Cause: cause}
}

// NotFound creates a not-found error.
func NotFound(message string) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: message}
}

// NotFoundf creates a not-found error with a formatted message.
func NotFoundf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict creates a conflict error.
func Conflict(message string) *AppError {
	return &AppError{Code: ErrCodeConflict, Message: message}
}

// Internal creates an internal error.
func Internal(message string) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: message}
}

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// Wrapf wraps an existing error with an AppError and formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...), Cause: err}
}

func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool { return isCode(err, ErrCodeValidation) }

// IsState checks if an error is a state error.
func IsState(err error) bool { return isCode(err, ErrCodeState) }

// IsDependency checks if an error is a dependency error.
func IsDependency(err error) bool { return isCode(err, ErrCodeDependency) }

// IsNotFound checks if an error is a not-found error.
func IsNotFound(err error) bool { return isCode(err, ErrCodeNotFound) }

// IsConflict checks if an error is a conflict error.
func IsConflict(err error) bool { return isCode(err, ErrCodeConflict) }

// IsInternal checks if an error is an internal error.
func IsInternal(err error) bool { return isCode(err, ErrCodeInternal) }

// GetCode returns the ErrorCode from an error, or empty string if not an AppError.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// GetReason returns the machine-readable reason, or empty string.
func GetReason(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Reason
	}
	return ""
}

// GetField returns the offending field name, or empty string.
func GetField(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}
