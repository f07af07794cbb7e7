// Package mosserr wraps internal invariant violations — the things that
// indicate a bug in this program rather than something wrong with the
// moss source being resolved (those go through internal/diag instead,
// attached to the offending element/scope and never aborting a run).
// Grounded on the teacher's internal/errors.CompilerError for the
// wrap/format shape, and on the pack's pkg/errors-style chained-wrap usage
// (viant-linager) for Wrap/Is.
package mosserr

import (
	"errors"
	"fmt"
)

// Kind tags the broad category of an internal error, for callers that want
// to branch without string-matching a message.
type Kind string

const (
	// KindInvariant marks a violated invariant this package documents
	// elsewhere (e.g. store.Module.Root set twice, an arena handle from
	// the wrong module).
	KindInvariant Kind = "invariant"
	// KindLoad marks a failure loading/parsing a module referenced by the
	// `mod` builtin that isn't a plain PathError (diag.PathError covers
	// "file not found"; this covers e.g. a read that failed partway).
	KindLoad Kind = "load"
	// KindPanic marks an error synthesized from a recovered panic.
	KindPanic Kind = "panic"
)

// Error is an internal error: a kind, a message, and an optional wrapped
// cause, chaining via the standard errors.Is/As machinery.
type Error struct {
	Kind  Kind
	Msg   string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds a bare Error with no wrapped cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap builds an Error carrying cause, formatting msg with args like
// fmt.Sprintf.
func Wrap(kind Kind, cause error, msg string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(msg, args...), cause: cause}
}

// Is reports whether err is (or wraps) an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// RecoverPanic converts a recovered panic value into a KindPanic *Error,
// meant to be called from a deferred recover() in each worker goroutine so
// a single worker's bug surfaces as a reportable run failure instead of
// crashing the whole process (SPEC_FULL.md §7).
func RecoverPanic(r any) *Error {
	if err, ok := r.(error); ok {
		return Wrap(KindPanic, err, "worker panicked")
	}
	return New(KindPanic, fmt.Sprintf("worker panicked: %v", r))
}
