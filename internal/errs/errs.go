// Package errs defines the closed error taxonomy shared by the storage and
// provider layers. Callers branch on kind with errors.Is rather than matching
// message text.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an error into one of the failure families the rest of the
// application is allowed to branch on.
type Kind int

const (
	// KindUnknown is the zero kind; it never matches any sentinel.
	KindUnknown Kind = iota

	// StorageConnect covers failures opening the persistent store.
	StorageConnect
	// StorageQuery covers failed reads and writes against an open store.
	StorageQuery
	// StorageSchema covers schema creation and migration failures.
	StorageSchema

	// ProviderNetwork covers transport failures and non-2xx responses.
	ProviderNetwork
	// ProviderParse covers responses whose markup did not match expectations.
	ProviderParse
	// ProviderMissing covers pages lacking a required field, e.g. a book name.
	ProviderMissing

	// Precondition covers operations invoked with insufficient input, such as
	// downloading a chapter that carries no URL.
	Precondition
)

var kindNames = map[Kind]string{
	StorageConnect:  "storage connect",
	StorageQuery:    "storage query",
	StorageSchema:   "storage schema",
	ProviderNetwork: "provider network",
	ProviderParse:   "provider parse",
	ProviderMissing: "provider missing field",
	Precondition:    "precondition",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Error is the concrete error type produced by this package. Op names the
// failing operation, Err is the optional underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes the underlying cause to errors.Is / errors.As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches either another *Error with the same kind or a kind sentinel
// produced by Sentinel, so callers can write errors.Is(err, errs.Sentinel(errs.Precondition)).
func (e *Error) Is(target error) bool {
	if s, ok := target.(sentinel); ok {
		return e.Kind == Kind(s)
	}
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// E wraps err with a kind and operation name. A nil err is allowed for
// failures that have no underlying cause (e.g. a missing field).
func E(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf is E with a formatted, cause-less message.
func Errorf(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

type sentinel Kind

func (s sentinel) Error() string { return Kind(s).String() }

// Sentinel returns a comparison target for errors.Is.
func Sentinel(kind Kind) error {
	return sentinel(kind)
}

// KindOf reports the kind of err, or KindUnknown if err was not produced by
// this package anywhere in its chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
