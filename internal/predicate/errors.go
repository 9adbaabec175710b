package predicate

import (
	"errors"
	"fmt"
)

// Error is returned when a predicate cannot be evaluated or compiled.
//
// Errors are never replaced by a default boolean or SQL fragment; they
// propagate to the caller unchanged.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Attribute is the model key (evaluation) or JSON key (compilation)
	// of the attribute involved, if any.
	Attribute string

	// Comparator is the offending comparator token, if any.
	Comparator string

	// Message is a human-readable description.
	Message string

	// Value is the offending value, if any.
	Value any
}

// ErrorCode categorizes predicate errors.
type ErrorCode string

const (
	// ErrCodeUnsupportedComparator indicates a comparator outside the closed set.
	ErrCodeUnsupportedComparator ErrorCode = "UNSUPPORTED_COMPARATOR"

	// ErrCodeNonStringArrayElement indicates an array value with a
	// non-string element reached SQL compilation.
	ErrCodeNonStringArrayElement ErrorCode = "NON_STRING_ARRAY_ELEMENT"

	// ErrCodeNotImplemented indicates a comparator with no SQL form (startsWith).
	ErrCodeNotImplemented ErrorCode = "NOT_IMPLEMENTED"

	// ErrCodeTypeMismatch indicates a value of the wrong shape, e.g. a
	// scalar where a sequence is required.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"
)

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Attribute != "" && e.Comparator != "":
		return fmt.Sprintf("%s: %s (attribute=%s, comparator=%s)", e.Code, e.Message, e.Attribute, e.Comparator)
	case e.Attribute != "":
		return fmt.Sprintf("%s: %s (attribute=%s)", e.Code, e.Message, e.Attribute)
	case e.Comparator != "":
		return fmt.Sprintf("%s: %s (comparator=%s)", e.Code, e.Message, e.Comparator)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func hasCode(err error, code ErrorCode) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code == code
	}
	return false
}

// IsUnsupportedComparator reports whether err is an UnsupportedComparator error.
func IsUnsupportedComparator(err error) bool { return hasCode(err, ErrCodeUnsupportedComparator) }

// IsNonStringArrayElement reports whether err is a NonStringArrayElement error.
func IsNonStringArrayElement(err error) bool { return hasCode(err, ErrCodeNonStringArrayElement) }

// IsNotImplemented reports whether err is a NotImplemented error.
func IsNotImplemented(err error) bool { return hasCode(err, ErrCodeNotImplemented) }

// IsTypeMismatch reports whether err is a TypeMismatch error.
func IsTypeMismatch(err error) bool { return hasCode(err, ErrCodeTypeMismatch) }

// NewUnsupportedComparatorError creates an Error for a comparator outside the closed set.
func NewUnsupportedComparatorError(attribute string, c Comparator) *Error {
	return &Error{
		Code:       ErrCodeUnsupportedComparator,
		Attribute:  attribute,
		Comparator: c.String(),
		Message:    fmt.Sprintf("not sure how to handle comparator %d", uint8(c)),
	}
}

// NewNonStringArrayElementError creates an Error for an array element that is not a string.
func NewNonStringArrayElementError(jsonKey string, elem any) *Error {
	return &Error{
		Code:      ErrCodeNonStringArrayElement,
		Attribute: jsonKey,
		Message:   fmt.Sprintf("value %v (%T) must be a string", elem, elem),
		Value:     elem,
	}
}

// NewNotImplementedError creates an Error for a comparator with no SQL form.
func NewNotImplementedError(jsonKey string, c Comparator) *Error {
	return &Error{
		Code:       ErrCodeNotImplemented,
		Attribute:  jsonKey,
		Comparator: c.String(),
		Message:    "SQL compilation is not implemented",
	}
}

// NewTypeMismatchError creates an Error for a value of the wrong shape.
func NewTypeMismatchError(attribute string, c Comparator, want string, got any) *Error {
	return &Error{
		Code:       ErrCodeTypeMismatch,
		Attribute:  attribute,
		Comparator: c.String(),
		Message:    fmt.Sprintf("expected %s, got %T", want, got),
		Value:      got,
	}
}
