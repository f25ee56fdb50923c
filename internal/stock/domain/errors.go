package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Match with errors.Is.
var (
	ErrNotFound            = errors.New("not found")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrInvalidQuantity     = errors.New("invalid quantity")
	ErrValidation          = errors.New("validation error")
	ErrConcurrencyConflict = errors.New("concurrency conflict")
	ErrForbidden           = errors.New("forbidden")
)

// Error is a structured failure carrying its kind and a caller-facing message
type Error struct {
	Kind    error
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Is matches the error kind
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Code returns a stable machine-readable code for the kind
func (e *Error) Code() string {
	return KindCode(e.Kind)
}

// KindCode maps an error kind to its wire code
func KindCode(kind error) string {
	switch kind {
	case ErrNotFound:
		return "not_found"
	case ErrInsufficientStock:
		return "insufficient_stock"
	case ErrInvalidQuantity:
		return "invalid_quantity"
	case ErrValidation:
		return "validation_error"
	case ErrConcurrencyConflict:
		return "concurrency_conflict"
	case ErrForbidden:
		return "forbidden"
	default:
		return "internal"
	}
}

// NotFound reports a missing entity
func NotFound(entity string, id uint) *Error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf("%s %d not found", entity, id)}
}

// InsufficientStock reports a deduction larger than the lot holds
func InsufficientStock(lotID uint, requested, available float64) *Error {
	return &Error{
		Kind:    ErrInsufficientStock,
		Message: fmt.Sprintf("lot %d has %g available, %g requested", lotID, available, requested),
	}
}

// InvalidQuantity reports a non-positive or out-of-range quantity
func InvalidQuantity(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrInvalidQuantity, Message: fmt.Sprintf(format, args...)}
}

// Validation reports missing or malformed input fields
func Validation(message string, fields map[string]string) *Error {
	return &Error{Kind: ErrValidation, Message: message, Fields: fields}
}

// Conflict reports that the per-lot lock could not be acquired
func Conflict(lotID uint, err error) *Error {
	return &Error{
		Kind:    ErrConcurrencyConflict,
		Message: fmt.Sprintf("lot %d is busy, retry later", lotID),
		Err:     err,
	}
}

// Forbidden reports a role that may not perform the operation
func Forbidden(message string) *Error {
	return &Error{Kind: ErrForbidden, Message: message}
}

// AsError extracts a structured error, if any
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
