package posts

import (
	"errors"
	"fmt"
)

// Kind classifies why a post operation failed.
type Kind int

const (
	KindInternal Kind = iota
	KindMissingFields
	KindMissingQuery
	KindInvalidID
	KindNotFound
	KindValidationFailed
	KindStoreError
	KindStoreUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindMissingFields:
		return "missing_fields"
	case KindMissingQuery:
		return "missing_query"
	case KindInvalidID:
		return "invalid_id"
	case KindNotFound:
		return "not_found"
	case KindValidationFailed:
		return "validation_failed"
	case KindStoreError:
		return "store_error"
	case KindStoreUnavailable:
		return "store_unavailable"
	default:
		return "internal"
	}
}

// Error is the failure outcome of a post operation. Message is safe to show
// to callers; Err holds the underlying cause, if any.
type Error struct {
	Kind    Kind
	Message string
	// Fields names the absent fields of a MissingFields error.
	Fields []string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind carried by err, or KindInternal if err is not an
// *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func newError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}
