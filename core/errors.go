package core

import (
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// Kind classifies failures surfaced by the core components.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindNotFound
	KindInvalidArgument
	KindPermissionDenied
	KindUnavailable
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindPermissionDenied:
		return "permission_denied"
	case KindUnavailable:
		return "unavailable"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Error is a typed failure. Domain packages declare their sentinels with NewError.
type Error struct {
	Kind    Kind
	Message string
}

func NewError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func (err *Error) Error() string {
	return err.Message
}

var (
	ErrNotFound         = NewError(KindNotFound, "not found")
	ErrInvalidArgument  = NewError(KindInvalidArgument, "invalid argument")
	ErrPermissionDenied = NewError(KindPermissionDenied, "permission denied")
	ErrUnavailable      = NewError(KindUnavailable, "service unavailable")
	ErrConflict         = NewError(KindConflict, "conflicting update")
)

// KindOf reports the Kind of err, looking through wrapped errors.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var cErr *Error
	if errors.As(err, &cErr) {
		return cErr.Kind
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return KindInvalidArgument
	}
	var fErrs validator.ValidationErrors
	if errors.As(err, &fErrs) {
		return KindInvalidArgument
	}
	return KindUnknown
}

// Unavailable marks err, an external store failure, as transient.
func Unavailable(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &unavailable{cause: errors.Wrap(err, msg)}
}

type unavailable struct {
	cause error
}

func (u *unavailable) Error() string { return u.cause.Error() }
func (u *unavailable) Unwrap() error { return ErrUnavailable }
func (u *unavailable) Cause() error  { return u.cause }

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err *ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s *shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
