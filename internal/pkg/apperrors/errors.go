package apperrors

import (
	"errors"
)

// Kind classifies a failure so handlers can map it to an HTTP status without
// string matching.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthenticated
	KindAccessDenied
	KindValidation
	KindNotFound
	KindInvalidState
	KindExternal
)

// Error carries a user-facing message, a kind, and an optional wrapped cause.
type Error struct {
	Kind    Kind
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

func Unauthenticated(msg string) *Error { return &Error{Kind: KindUnauthenticated, Message: msg} }
func AccessDenied(msg string) *Error    { return &Error{Kind: KindAccessDenied, Message: msg} }
func Validation(msg string) *Error      { return &Error{Kind: KindValidation, Message: msg} }
func NotFound(msg string) *Error        { return &Error{Kind: KindNotFound, Message: msg} }
func InvalidState(msg string) *Error    { return &Error{Kind: KindInvalidState, Message: msg} }

// External wraps a collaborator failure (scoring, notary, identity host).
func External(msg string, err error) *Error {
	return &Error{Kind: KindExternal, Message: msg, Err: err}
}

// KindOf extracts the kind from err, defaulting to Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the user-facing message for err, hiding internal causes.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "Internal Server Error"
}

// HTTPStatus maps an error to the wire status per the registry's error
// contract: 400 validation, 401 unauthenticated, 403 access denied,
// 404 not found, 409 invalid state, 500 other.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return 400
	case KindUnauthenticated:
		return 401
	case KindAccessDenied:
		return 403
	case KindNotFound:
		return 404
	case KindInvalidState:
		return 409
	default:
		return 500
	}
}
