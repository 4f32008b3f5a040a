// Package herr defines the htsget resolver's error taxonomy and its
// mapping onto HTTP status codes, centralized in one place next to the
// domain code it annotates.
package herr

import (
	"errors"
	"fmt"
)

// Kind classifies a resolver error for HTTP-status mapping and metrics
// labeling. The transport layer (out of scope for the core resolver) is
// the only consumer of Kind's HTTPStatus mapping.
type Kind int

const (
	// KindInternal covers anything not classified below.
	KindInternal Kind = iota
	KindNotFound
	KindUnsupportedFormat
	KindInvalidInput
	KindInvalidRange
	KindIO
	KindParse
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindUnsupportedFormat:
		return "UnsupportedFormat"
	case KindInvalidInput:
		return "InvalidInput"
	case KindInvalidRange:
		return "InvalidRange"
	case KindIO:
		return "IoError"
	case KindParse:
		return "ParseError"
	default:
		return "InternalError"
	}
}

// HTTPStatus returns the HTTP status code this error kind maps to, per
// the resolver's published error contract.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindNotFound:
		return 404
	case KindUnsupportedFormat, KindInvalidInput, KindInvalidRange:
		return 400
	default:
		return 500
	}
}

// Error wraps an underlying cause with a Kind, preserving the chain for
// errors.Is/errors.As via Unwrap.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error of the given kind, wrapping err with op as
// context (typically the function or component name).
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// NotFound wraps err as a KindNotFound error.
func NotFound(op string, err error) *Error { return New(KindNotFound, op, err) }

// UnsupportedFormat wraps err as a KindUnsupportedFormat error.
func UnsupportedFormat(op string, err error) *Error {
	return New(KindUnsupportedFormat, op, err)
}

// InvalidInput wraps err as a KindInvalidInput error.
func InvalidInput(op string, err error) *Error { return New(KindInvalidInput, op, err) }

// InvalidRange wraps err as a KindInvalidRange error.
func InvalidRange(op string, err error) *Error { return New(KindInvalidRange, op, err) }

// IO wraps err as a KindIO error.
func IO(op string, err error) *Error { return New(KindIO, op, err) }

// Parse wraps err as a KindParse error.
func Parse(op string, err error) *Error { return New(KindParse, op, err) }

// Internal wraps err as a KindInternal error.
func Internal(op string, err error) *Error { return New(KindInternal, op, err) }

// KindOf extracts the Kind of err if it (or something it wraps) is an
// *Error, defaulting to KindInternal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
