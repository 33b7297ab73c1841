package client

import (
	"time"

	"http-exchange/application/http"

	"github.com/pkg/errors"
)

type Options struct {
	// Host and Port of the server every exchange of the client talks to.
	Host string
	Port uint16

	Send    SendOptions
	Receive ReceiveOptions
}

type SendOptions struct {
	// ContentType of the request body. Empty means [http.DefaultContentType].
	ContentType string

	// WriteTimeout bounds writing the whole request. Zero means no limit.
	WriteTimeout time.Duration
}

type ReceiveOptions struct {
	HeaderPoll PollOptions
	BodyPoll   PollOptions

	// MaxHeaderBytes bounds the header block, terminator included.
	// Zero means [DefaultOptions] value.
	MaxHeaderBytes uint

	// KeepOverflow keeps bytes received past Content-Length in the body.
	// By default the body is cut at exactly Content-Length bytes.
	KeepOverflow bool
}

// PollOptions controls one polling loop.
// The loop waits Interval whenever nothing is readable, and gives up
// after MaxEmptyPolls consecutive waits. Any read resets the count.
type PollOptions struct {
	Interval      time.Duration
	MaxEmptyPolls uint
	ChunkSize     uint
}

// Timeout is the longest a loop can stay without receiving anything.
func (o PollOptions) Timeout() time.Duration {
	return o.Interval * time.Duration(o.MaxEmptyPolls)
}

var DefaultOptions = Options{
	Send: SendOptions{
		ContentType: http.DefaultContentType,
	},
	Receive: ReceiveOptions{
		HeaderPoll: PollOptions{
			Interval:      10 * time.Millisecond,
			MaxEmptyPolls: 500,
			ChunkSize:     1,
		},
		BodyPoll: PollOptions{
			Interval:      time.Millisecond,
			MaxEmptyPolls: 5000,
			ChunkSize:     1024,
		},
		MaxHeaderBytes: 64 << 10,
	},
}

var (
	ErrMissingHost = errors.New("host is required")
	ErrMissingPort = errors.New("port is required")
)

func (o Options) validate() error {
	if o.Host == "" {
		return ErrMissingHost
	}
	if o.Port == 0 {
		return ErrMissingPort
	}
	return nil
}

// withDefaults fills zero fields with [DefaultOptions].
func (o Options) withDefaults() Options {
	def := DefaultOptions

	if o.Send.ContentType == "" {
		o.Send.ContentType = def.Send.ContentType
	}

	o.Receive.HeaderPoll = o.Receive.HeaderPoll.withDefaults(def.Receive.HeaderPoll)
	o.Receive.BodyPoll = o.Receive.BodyPoll.withDefaults(def.Receive.BodyPoll)

	// Headers are always read byte by byte, so nothing past the
	// terminator is ever consumed.
	o.Receive.HeaderPoll.ChunkSize = 1

	if o.Receive.MaxHeaderBytes == 0 {
		o.Receive.MaxHeaderBytes = def.Receive.MaxHeaderBytes
	}

	return o
}

func (o PollOptions) withDefaults(def PollOptions) PollOptions {
	if o.Interval == 0 {
		o.Interval = def.Interval
	}
	if o.MaxEmptyPolls == 0 {
		o.MaxEmptyPolls = def.MaxEmptyPolls
	}
	if o.ChunkSize == 0 {
		o.ChunkSize = def.ChunkSize
	}
	return o
}
