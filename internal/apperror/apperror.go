package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an expected domain failure. Anything that is not an *Error
// is an unexpected failure.
type Kind int

const (
	KindNotFound Kind = iota
	KindInsufficientStock
	KindInvalidInput
	KindConstraintViolation
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NOT_FOUND"
	case KindInsufficientStock:
		return "INSUFFICIENT_STOCK"
	case KindInvalidInput:
		return "INVALID_INPUT"
	case KindConstraintViolation:
		return "CONSTRAINT_VIOLATION"
	default:
		return "UNKNOWN"
	}
}

// Error is a domain error carrying enough structure for a client to render
// an actionable message.
type Error struct {
	Kind      Kind
	Message   string
	Entity    string // NotFound only
	ProductID string
	Requested int64
	Available int64
	Err       error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound reports a missing product (or other entity) by id.
func NotFound(entity, id string) *Error {
	return &Error{
		Kind:      KindNotFound,
		Message:   fmt.Sprintf("%s not found: %s", entity, id),
		Entity:    entity,
		ProductID: id,
	}
}

// ProductNotFound is NotFound for the product entity.
func ProductNotFound(id string) *Error {
	return NotFound("product", id)
}

func InsufficientStock(productID string, requested, available int64) *Error {
	return &Error{
		Kind:      KindInsufficientStock,
		Message:   fmt.Sprintf("insufficient stock for product %s: requested %d, available %d", productID, requested, available),
		ProductID: productID,
		Requested: requested,
		Available: available,
	}
}

func InvalidInput(message string) *Error {
	return &Error{Kind: KindInvalidInput, Message: message}
}

func InvalidInputf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// ConstraintViolation wraps a storage integrity failure so it surfaces as a
// domain error instead of a raw driver error.
func ConstraintViolation(message string, cause error) *Error {
	return &Error{Kind: KindConstraintViolation, Message: message, Err: cause}
}

// As returns the domain error in err's chain, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func KindOf(err error) (Kind, bool) {
	if e, ok := As(err); ok {
		return e.Kind, true
	}
	return 0, false
}

func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// IsDomain reports whether err is expected control flow rather than an incident.
func IsDomain(err error) bool {
	_, ok := As(err)
	return ok
}
