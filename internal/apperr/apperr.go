// Package apperr defines the closed set of error kinds the service knows
// how to surface over HTTP. Every failure reaching an endpoint boundary is
// either one of these kinds or treated as an internal execution error.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	// Validation covers missing or malformed request input.
	Validation Kind = iota + 1
	// NotFound covers lookups for ids that do not exist.
	NotFound
	// Conflict covers embedding-model mismatches on ingest.
	Conflict
	// State covers operations that require prior state, e.g. an empty index.
	State
	// Config covers provider construction failures.
	Config
	// Execution covers failures inside external calls.
	Execution
)

func (k Kind) HTTPStatus() int {
	switch k {
	case Validation, Conflict, State:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Config, Execution:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

func (e *Error) Kind() Kind { return e.kind }

func New(kind Kind, msg string) error {
	return &Error{kind: kind, msg: msg}
}

func Newf(kind Kind, format string, args ...any) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Wrap tags err with a kind and a prefix naming the failed subsystem.
func Wrap(kind Kind, msg string, err error) error {
	return &Error{kind: kind, msg: msg, err: err}
}

// KindOf returns the kind carried by err, or 0 if err is untagged.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return 0
}

// StatusOf maps err to an HTTP status. Untagged errors are internal.
func StatusOf(err error) int {
	if k := KindOf(err); k != 0 {
		return k.HTTPStatus()
	}
	return http.StatusInternalServerError
}
