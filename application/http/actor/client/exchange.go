package client

import (
	"bytes"
	"context"
	"strings"
	"sync/atomic"

	"http-exchange/application/http"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/text/encoding/unicode"
)

type State int32

const (
	StatePending State = iota
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Exchange is the handle of one request/response exchange.
// Every method is safe to call from any goroutine at any time.
// Results are only visible once the exchange has left [StatePending].
type Exchange struct {
	id      string
	request http.Request

	state atomic.Int32
	done  chan struct{}

	// Written by the exchange goroutine before the terminal transition.
	status  http.StatusLine
	headers http.Headers
	body    []byte
	text    string
	err     error
}

func newExchange(id string, request http.Request) *Exchange {
	return &Exchange{
		id:      id,
		request: request,
		done:    make(chan struct{}),
	}
}

// succeed and fail each move the exchange out of pending.
// Only the first call of either has an effect.
// Both must be called from the exchange goroutine only.
func (ex *Exchange) succeed(status http.StatusLine, headers http.Headers, body []byte) bool {
	if !ex.IsBusy() {
		return false
	}
	ex.status = status
	ex.headers = headers
	ex.body = body
	ex.text = decodeText(body)
	return ex.transition(StateSucceeded)
}

func (ex *Exchange) fail(err error) bool {
	if !ex.IsBusy() {
		return false
	}
	ex.err = err
	return ex.transition(StateFailed)
}

func (ex *Exchange) transition(to State) bool {
	if !ex.state.CompareAndSwap(int32(StatePending), int32(to)) {
		return false
	}
	close(ex.done)
	return true
}

func (ex *Exchange) ID() string            { return ex.id }
func (ex *Exchange) Request() http.Request { return ex.request }
func (ex *Exchange) State() State          { return State(ex.state.Load()) }
func (ex *Exchange) IsBusy() bool          { return ex.State() == StatePending }
func (ex *Exchange) Succeeded() bool       { return ex.State() == StateSucceeded }
func (ex *Exchange) Failed() bool          { return ex.State() == StateFailed }

// Done is closed once the exchange succeeded or failed.
func (ex *Exchange) Done() <-chan struct{} { return ex.done }

// Wait blocks until the exchange is done or ctx is.
// It returns the exchange error, or ctx's if ctx ended first.
func (ex *Exchange) Wait(ctx context.Context) error {
	select {
	case <-ex.done:
		return ex.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err is nil unless the exchange failed.
func (ex *Exchange) Err() error {
	if !ex.Failed() {
		return nil
	}
	return ex.err
}

// ResponseHeaders returns a copy of the received headers,
// or nil unless the exchange succeeded.
func (ex *Exchange) ResponseHeaders() http.Headers {
	if !ex.Succeeded() {
		return nil
	}
	return ex.headers.Clone()
}

// ResponseText is the body decoded as UTF-8, ill-formed sequences replaced
// by U+FFFD. Empty unless the exchange succeeded.
func (ex *Exchange) ResponseText() string {
	if !ex.Succeeded() {
		return ""
	}
	return ex.text
}

func (ex *Exchange) ResponseBody() []byte {
	if !ex.Succeeded() {
		return nil
	}
	return bytes.Clone(ex.body)
}

// StatusCode is the code of the status line, or 0 if the status line
// was unparsable or the exchange has not succeeded.
func (ex *Exchange) StatusCode() uint {
	if !ex.Succeeded() {
		return 0
	}
	return ex.status.StatusCode
}

// DecodeJSON decodes the response text into v.
func (ex *Exchange) DecodeJSON(v any) error {
	if !ex.Succeeded() {
		return ErrNotSucceeded
	}
	return jsoniter.ConfigCompatibleWithStandardLibrary.UnmarshalFromString(ex.text, v)
}

func decodeText(body []byte) string {
	text, err := unicode.UTF8.NewDecoder().Bytes(body)
	if err != nil {
		return strings.ToValidUTF8(string(body), "�")
	}
	return string(text)
}
