// Package apperr defines the domain failure kinds returned by services and the
// HTTP status each kind maps to.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies a domain failure.
type Kind string

const (
	KindDuplicateUser      Kind = "duplicate_user"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindInvalidToken       Kind = "invalid_token"
	KindMissingSubject     Kind = "missing_subject"
	KindNotFound           Kind = "not_found"
	KindValidation         Kind = "validation"
	KindUnexpected         Kind = "unexpected"
)

// Error is a domain failure with a user-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status returns the HTTP status code for the error kind.
func (e *Error) Status() int {
	return StatusOf(e.Kind)
}

// StatusOf maps a kind to an HTTP status code.
func StatusOf(kind Kind) int {
	switch kind {
	case KindDuplicateUser, KindInvalidCredentials, KindValidation:
		return http.StatusBadRequest
	case KindInvalidToken, KindMissingSubject:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnexpected.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnexpected
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	ok := errors.As(err, &appErr)
	return appErr, ok
}

func NewErrDuplicateUser() *Error {
	return &Error{Kind: KindDuplicateUser, Message: "User already exists"}
}

func NewErrInvalidCredentials() *Error {
	return &Error{Kind: KindInvalidCredentials, Message: "Invalid username or password"}
}

func NewErrInvalidToken() *Error {
	return &Error{Kind: KindInvalidToken, Message: "Invalid JWT token"}
}

func NewErrSubjectMismatch() *Error {
	return &Error{Kind: KindInvalidToken, Message: "Token does not belong to the requested user"}
}

func NewErrMissingSubject() *Error {
	return &Error{Kind: KindMissingSubject, Message: "User not found."}
}

func NewErrNoteNotFound() *Error {
	return &Error{Kind: KindNotFound, Message: "Note not found"}
}

func NewErrValidation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NewErrUnexpected wraps an infrastructure failure. The cause is kept for
// logging and is not part of the message.
func NewErrUnexpected(err error) *Error {
	return &Error{Kind: KindUnexpected, Message: "An unexpected error occurred", Err: err}
}
