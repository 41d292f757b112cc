// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

// Package errs defines the client-facing error taxonomy and the stable error
// codes returned by command handlers.
package errs

import (
	"errors"
	"fmt"

	"github.com/samber/oops"
)

// Kind classifies a client-facing error.
type Kind string

// Error kinds.
const (
	KindAuth       Kind = "auth"
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindNotFound   Kind = "not_found"
	KindDependency Kind = "dependency"
)

// ErrTimeout marks a dependency call that overran its deadline. Errors wrapping
// it are retryable.
var ErrTimeout = errors.New("dependency call timed out")

// Error is a classified error carrying a stable code that clients match on.
type Error struct {
	Kind Kind
	Code string
	// Retryable is set when the failure was transient (for example a store timeout).
	Retryable bool
	// CompensationFailed is set when an undo step of a multi-step workflow also failed.
	CompensationFailed bool

	err error
}

func (e *Error) Error() string {
	if e.err == nil {
		return e.Code
	}
	return e.Code + ": " + e.err.Error()
}

func (e *Error) Unwrap() error { return e.err }

func newError(kind Kind, code string, cause error) *Error {
	builder := oops.In(string(kind)).Code(code)
	var wrapped error
	if cause != nil {
		wrapped = builder.Wrap(cause)
	} else {
		wrapped = builder.New(code)
	}
	return &Error{
		Kind:      kind,
		Code:      code,
		Retryable: cause != nil && errors.Is(cause, ErrTimeout),
		err:       wrapped,
	}
}

// Auth returns an authentication or authorization failure.
func Auth(code string) error {
	return newError(KindAuth, code, nil)
}

// Validation returns a payload validation failure.
func Validation(code string) error {
	return newError(KindValidation, code, nil)
}

// Validationf returns a validation failure with detail for logs.
func Validationf(code, format string, args ...any) error {
	return newError(KindValidation, code, fmt.Errorf(format, args...))
}

// Conflict returns a uniqueness violation.
func Conflict(code string, cause error) error {
	return newError(KindConflict, code, cause)
}

// NotFound returns a missing-entity failure.
func NotFound(code string, cause error) error {
	return newError(KindNotFound, code, cause)
}

// Dependency returns a store, email or federation failure.
func Dependency(code string, cause error) error {
	return newError(KindDependency, code, cause)
}

// Internal wraps an unclassified failure.
func Internal(cause error) error {
	return newError(KindDependency, CodeInternal, cause)
}

// WithCompensation reports that the undo step for primary failed too. The
// result keeps the primary code, is a dependency error and carries both causes.
func WithCompensation(primary, compensation error) error {
	code := CodeOf(primary)
	e := newError(KindDependency, code, errors.Join(primary, compensation))
	e.CompensationFailed = true
	return e
}

// As returns the outermost classified error in the chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf returns the stable code for err, or CodeInternal when unclassified.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	if e, ok := As(err); ok {
		return e.Code
	}
	return CodeInternal
}

// KindOf returns the kind of err, defaulting to KindDependency.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindDependency
}

// IsRetryable reports whether err is a transient failure.
func IsRetryable(err error) bool {
	if e, ok := As(err); ok && e.Retryable {
		return true
	}
	return errors.Is(err, ErrTimeout)
}

// IsCompensationFailed reports whether a workflow undo step failed.
func IsCompensationFailed(err error) bool {
	e, ok := As(err)
	return ok && e.CompensationFailed
}

// Is reports whether err carries the given code.
func Is(err error, code string) bool {
	return CodeOf(err) == code
}
