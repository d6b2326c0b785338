package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrInternal is returned when an internal error occurs
	ErrInternal = errors.New("internal error")
)

// Error is a classified error carrying a caller-facing message.
// Kind is one of the sentinels above; errors.Is matches against it.
type Error struct {
	Kind    error
	Message string
	// Field and Rule are set for ErrInvalidInput
	Field string
	Rule  string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// NewNotFound returns an ErrNotFound classified error
func NewNotFound(format string, args ...any) *Error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

// NewInvalidInput returns an ErrInvalidInput classified error for field violating rule
func NewInvalidInput(field, rule, message string) *Error {
	return &Error{Kind: ErrInvalidInput, Message: message, Field: field, Rule: rule}
}

// ProductNotFound is the error for a missing or inactive product
func ProductNotFound(id int64) *Error {
	return NewNotFound("Product with id #%d not found", id)
}

// ErrSomeProductsNotFound is returned by batch validation on a partial match
var ErrSomeProductsNotFound = &Error{Kind: ErrNotFound, Message: "Some products were not found"}
