// Public domain.

// Package errs defines the error kinds reported by the harmonization core
// and a process-wide last-error channel kept for facade compatibility.
package errs

import (
	"sync"

	"github.com/pkg/errors"
)

// Kind classifies a failure.
type Kind int

const (
	OutOfMemory Kind = iota + 1
	InvalidArgument
	InvalidVariable
	InvalidProduct
	Ingestion
	NoData
)

func (k Kind) String() string {
	switch k {
	case OutOfMemory:
		return "out of memory"
	case InvalidArgument:
		return "invalid argument"
	case InvalidVariable:
		return "invalid variable"
	case InvalidProduct:
		return "invalid product"
	case Ingestion:
		return "ingestion error"
	case NoData:
		return "no data"
	}
	return "unknown error"
}

// Error carries a kind and a wrapped cause.  The cause records the failure
// site, so formatting with %+v yields file and line.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string { return e.Kind.String() + ": " + e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// New creates a kind-tagged error with a formatted message.
func New(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Err: errors.Errorf(format, args...)}
}

// Wrap tags an existing error with a kind and message.  A nil err returns nil.
func Wrap(kind Kind, err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: errors.Wrap(err, message)}
}

// KindOf returns the kind of an error produced by this package, or 0.
func KindOf(err error) Kind {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind
		}
		err = errors.Unwrap(err)
	}
	return 0
}

// last error, written by the facade on every failed call.
// internal code never reads it back.
var (
	mu   sync.Mutex
	last error
)

// SetLast records err as the most recent failure.
func SetLast(err error) {
	mu.Lock()
	last = err
	mu.Unlock()
}

// Last returns the most recently recorded failure, or nil.
func Last() error {
	mu.Lock()
	defer mu.Unlock()
	return last
}
