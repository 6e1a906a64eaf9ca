package errs

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation       Kind = "validation_error"
	KindNotFound         Kind = "not_found"
	KindInvalidState     Kind = "invalid_state"
	KindReportGeneration Kind = "report_generation_error"
	KindStorage          Kind = "storage_error"
	KindUnauthorized     Kind = "unauthorized"
	KindForbidden        Kind = "forbidden"
	KindInternal         Kind = "internal_error"
)

// Error carries a stable kind tag and a message that is safe to show to the caller.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Is matches any *Error of the same kind, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}

	return t.Kind == e.Kind
}

var (
	ErrValidation       = &Error{Kind: KindValidation, Msg: "invalid input"}
	ErrNotFound         = &Error{Kind: KindNotFound, Msg: "record not found"}
	ErrInvalidState     = &Error{Kind: KindInvalidState, Msg: "operation not allowed in current state"}
	ErrReportGeneration = &Error{Kind: KindReportGeneration, Msg: "report generation failed"}
	ErrStorage          = &Error{Kind: KindStorage, Msg: "storage failure"}
	ErrUnauthorized     = &Error{Kind: KindUnauthorized, Msg: "unauthorized"}
	ErrForbidden        = &Error{Kind: KindForbidden, Msg: "access denied"}

	ErrRecordNotFound = ErrNotFound
)

func newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) error {
	return newf(KindValidation, format, args...)
}

func NotFound(format string, args ...any) error {
	return newf(KindNotFound, format, args...)
}

func InvalidState(format string, args ...any) error {
	return newf(KindInvalidState, format, args...)
}

func Unauthorized(format string, args ...any) error {
	return newf(KindUnauthorized, format, args...)
}

func Forbidden(format string, args ...any) error {
	return newf(KindForbidden, format, args...)
}

// ReportGeneration tags cause as a compositor failure, keeping it in the chain.
func ReportGeneration(cause error) error {
	return fmt.Errorf("%w: %w", ErrReportGeneration, cause)
}

// Storage tags cause as a collaborator read/write failure, keeping it in the chain.
// Causes that are already NotFound keep that kind.
func Storage(cause error) error {
	if errors.Is(cause, ErrNotFound) {
		return cause
	}

	return fmt.Errorf("%w: %w", ErrStorage, cause)
}

// KindOf returns the kind of the outermost *Error in the chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindInternal
}

// MessageOf returns the caller-facing message of the outermost *Error in the chain.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}

	return "internal error"
}
