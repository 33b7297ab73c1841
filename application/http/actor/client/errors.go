package client

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies why an exchange failed.
type Kind uint8

const (
	KindUnknown Kind = iota
	// Request method or path cannot be framed. Nothing was sent.
	KindInvalidRequest
	// Dial, write, read or close of the connection failed.
	KindConnection
	// Nothing arrived for too many polls in a row.
	KindReadTimeout
	// Header block or Content-Length could not be used.
	KindMalformedResponse
	// Context given to the exchange was done.
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindInvalidRequest:
		return "invalid request"
	case KindConnection:
		return "connection"
	case KindReadTimeout:
		return "read timeout"
	case KindMalformedResponse:
		return "malformed response"
	case KindCanceled:
		return "canceled"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

var (
	ErrReadTimeout    = errors.New("no data received in time")
	ErrHeaderTooLarge = errors.New("header block exceeds limit")
	ErrNotSucceeded   = errors.New("exchange has not succeeded")
)

// Error is what a failed exchange retains.
type Error struct {
	Kind Kind
	Err  error
}

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func (e *Error) Error() string { return e.Kind.String() + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the kind of the first [*Error] in err's chain,
// or [KindUnknown] if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
