package engine

import (
	"errors"
	"fmt"

	"github.com/saltmarsh/skirmish/event"
)

// Code categorizes submit failures.
type Code string

const (
	// CodeValidationRejected means a rule or an engine invariant refused
	// the event. Recoverable; state unchanged.
	CodeValidationRejected Code = "VALIDATION_REJECTED"

	// CodePermissionDenied means the submitter is not authorized for the
	// event's origin or target. Recoverable; state unchanged.
	CodePermissionDenied Code = "PERMISSION_DENIED"

	// CodeIntegrityViolation means an internal invariant broke: a replay
	// checksum mismatch, an id gap in the timeline, a registry collision
	// during apply. Fatal to the affected instance.
	CodeIntegrityViolation Code = "INTEGRITY_VIOLATION"

	// CodeGeneric wraps integrator-defined failures from user rules.
	// Recoverable; state unchanged.
	CodeGeneric Code = "GENERIC"
)

// Error is the typed failure returned by the submit pipeline.
//
// Reason carries the structured rejection reason (e.g. "position occupied");
// EventKind and Origin identify the offending event. Err, when set, wraps
// the underlying cause.
type Error struct {
	Code      Code
	Reason    string
	EventKind event.Kind
	Origin    event.Origin
	Err       error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.EventKind != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.EventKind, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Reason)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error { return e.Err }

// IsValidationRejected reports whether err is a validation rejection.
// Uses errors.As to handle wrapped errors.
func IsValidationRejected(err error) bool { return hasCode(err, CodeValidationRejected) }

// IsPermissionDenied reports whether err is a permission rejection.
func IsPermissionDenied(err error) bool { return hasCode(err, CodePermissionDenied) }

// IsIntegrityViolation reports whether err signals a broken invariant.
func IsIntegrityViolation(err error) bool { return hasCode(err, CodeIntegrityViolation) }

func hasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

func rejectf(ev event.Event, format string, args ...any) *Error {
	return &Error{
		Code:      CodeValidationRejected,
		Reason:    fmt.Sprintf(format, args...),
		EventKind: ev.Kind,
		Origin:    ev.Origin,
	}
}

func reject(ev event.Event, cause error) *Error {
	return &Error{
		Code:      CodeValidationRejected,
		Reason:    cause.Error(),
		EventKind: ev.Kind,
		Origin:    ev.Origin,
		Err:       cause,
	}
}

func denied(ev event.Event, reason string) *Error {
	return &Error{
		Code:      CodePermissionDenied,
		Reason:    reason,
		EventKind: ev.Kind,
		Origin:    ev.Origin,
	}
}

func integrityf(format string, args ...any) *Error {
	return &Error{
		Code:   CodeIntegrityViolation,
		Reason: fmt.Sprintf(format, args...),
	}
}

func generic(ev event.Event, cause error) *Error {
	return &Error{
		Code:      CodeGeneric,
		Reason:    cause.Error(),
		EventKind: ev.Kind,
		Origin:    ev.Origin,
		Err:       cause,
	}
}
