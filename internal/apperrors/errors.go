package apperrors

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// Code is a stable machine-readable error classification returned to callers.
type Code string

const (
	CodeValidation         Code = "VALIDATION_ERROR"
	CodeInsufficientStock  Code = "INSUFFICIENT_STOCK"
	CodeInvalidTransition  Code = "INVALID_TRANSITION"
	CodeUniquenessConflict Code = "UNIQUENESS_CONFLICT"
	CodeNotFound           Code = "NOT_FOUND"
	CodePersistence        Code = "PERSISTENCE_ERROR"
)

// Error is the single error type flowing out of the store and service layers.
// Retryable is true only for persistence failures; callers retrying across a
// network boundary must supply an idempotency key to avoid double-application.
type Error struct {
	Code      Code
	Message   string
	Retryable bool
	cause     error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Validation reports malformed input. Never retried automatically.
func Validation(format string, args ...interface{}) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// InsufficientStock reports a movement that would drive available quantity
// below zero.
func InsufficientStock(itemID, locationID int64, onHand, change int) *Error {
	return &Error{
		Code: CodeInsufficientStock,
		Message: fmt.Sprintf("insufficient stock for item %d at location %d: on_hand=%d, change=%d",
			itemID, locationID, onHand, change),
	}
}

// InvalidTransition reports a purchase order status change that is not
// permitted from the current state.
func InvalidTransition(from, to string) *Error {
	return &Error{
		Code:    CodeInvalidTransition,
		Message: fmt.Sprintf("cannot transition purchase order from %s to %s", from, to),
	}
}

// UniquenessConflict reports a SKU, vendor name or PO number collision.
func UniquenessConflict(what string) *Error {
	return &Error{
		Code:    CodeUniquenessConflict,
		Message: fmt.Sprintf("%s already exists", what),
	}
}

// NotFound reports a missing record on a read path.
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Persistence wraps a backing-store failure. Retryable by the caller.
func Persistence(msg string, cause error) *Error {
	return &Error{Code: CodePersistence, Message: msg, Retryable: true, cause: cause}
}

// FromPostgres classifies a database error: unique constraint violations
// become UniquenessConflict, everything else is a retryable Persistence error.
func FromPostgres(msg string, err error) *Error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return UniquenessConflict(pqErr.Constraint)
	}
	return Persistence(msg, err)
}

// CodeOf extracts the classification from any error, defaulting to
// CodePersistence for errors that did not originate in this package.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodePersistence
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}
