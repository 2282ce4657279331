package domain

import "errors"

// ErrorKind classifies a failure so the transport layer can pick a status code
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindAuthentication
	KindAuthorization
	KindValidation
	KindConflict
	KindState
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindState:
		return "state"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Error is a user-presentable failure with a kind
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new kinded error
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Validation returns a validation error with the given message
func Validation(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

// NotFound returns a not-found error for the named entity
func NotFound(entity string) error {
	return &Error{Kind: KindNotFound, Message: entity + " not found"}
}

// Internal wraps an unexpected failure. Its message is never shown to callers.
func Internal(message string, err error) error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf returns the kind of the first domain error in err's chain
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// MessageOf returns the user-facing message of err
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal server error"
}

// Common domain errors
var (
	ErrUnauthenticated = NewError(KindAuthentication, "authentication required")
	ErrForbidden       = NewError(KindAuthorization, "you don't have permission to access this resource")
	ErrNotFound        = NewError(KindNotFound, "resource not found")
	ErrDuplicateEntry  = NewError(KindConflict, "duplicate entry")
)
