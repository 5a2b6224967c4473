package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures surfaced by collaborators and local validation.
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindTransport     ErrorKind = "transport"
	KindAuth          ErrorKind = "auth"
	KindAuthorization ErrorKind = "authorization"
	KindNotFound      ErrorKind = "not_found"
	KindServer        ErrorKind = "server"
)

var (
	// ErrValidation matches any error of KindValidation.
	ErrValidation = &Error{Kind: KindValidation}
	// ErrTransport matches any error of KindTransport.
	ErrTransport = &Error{Kind: KindTransport}
	// ErrAuth matches any error of KindAuth.
	ErrAuth = &Error{Kind: KindAuth}
	// ErrAuthorization matches any error of KindAuthorization.
	ErrAuthorization = &Error{Kind: KindAuthorization}
	// ErrNotFound matches any error of KindNotFound.
	ErrNotFound = &Error{Kind: KindNotFound}
	// ErrServer matches any error of KindServer.
	ErrServer = &Error{Kind: KindServer}
)

// Error is a classified failure. Detail holds the server-provided message verbatim when one exists.
type Error struct {
	Kind   ErrorKind
	Op     string
	Detail string
	Status int
	Err    error
}

// NewError builds a classified error for the given operation.
func NewError(kind ErrorKind, op, detail string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Detail: detail, Err: cause}
}

// ValidationError reports a locally rejected input.
func ValidationError(op, detail string) *Error {
	return NewError(KindValidation, op, detail, nil)
}

func (e *Error) Error() string {
	msg := string(e.Kind) + " error"
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same kind, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first classified error in the chain, or "" when none.
func KindOf(err error) ErrorKind {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind
	}
	return ""
}

// DetailOf returns the server-provided detail of a classified error, or "" when none.
func DetailOf(err error) string {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Detail
	}
	return ""
}
