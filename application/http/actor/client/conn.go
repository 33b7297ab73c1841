package client

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"http-exchange/application/http"
	"http-exchange/application/util/rule"
	"http-exchange/transport"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

// conn is the connection of a single exchange.
// It is used by one goroutine only, from dial to close.
type conn struct {
	con transport.Conn

	logger *slog.Logger
	clock  clock.Clock

	opts Options
}

func (c *conn) writeRequest(request http.Request) error {
	if timeout := c.opts.Send.WriteTimeout; timeout > 0 {
		c.con.SetWriteDeadLine(c.clock.Now().Add(timeout))
		defer c.con.SetWriteDeadLine(time.Time{})
	}

	enc := http.NewRequestEncoder(c.con, http.EncodeOptions{ContentType: c.opts.Send.ContentType})
	if err := enc.Encode(request); err != nil {
		return newError(KindConnection, errors.Wrap(err, "writing request"))
	}

	return nil
}

// readHeaders accumulates bytes one at a time until the header terminator.
// The returned block includes the terminator.
func (c *conn) readHeaders(ctx context.Context) ([]byte, error) {
	var (
		buf   bytes.Buffer
		b     = make([]byte, c.opts.Receive.HeaderPoll.ChunkSize)
		limit = int(c.opts.Receive.MaxHeaderBytes)
		opts  = c.opts.Receive.HeaderPoll
	)

	err := c.poll(ctx, opts, func() (int, bool, error) {
		n, err := c.con.Read(b)
		buf.Write(b[:n])
		if err != nil {
			return n, false, newError(KindConnection, errors.Wrap(err, "reading headers"))
		}

		if bytes.HasSuffix(buf.Bytes(), rule.HeaderTerminator) {
			return n, true, nil
		}

		if limit > 0 && buf.Len() >= limit {
			return n, false, newError(KindMalformedResponse, errors.Wrapf(ErrHeaderTooLarge, "%d bytes without terminator", buf.Len()))
		}

		return n, false, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "accumulating headers")
	}

	return buf.Bytes(), nil
}

// readBody accumulates chunks until at least length bytes are received.
// Whatever the last chunk brought past length is kept only with KeepOverflow.
func (c *conn) readBody(ctx context.Context, length uint64) ([]byte, error) {
	if length == 0 {
		return []byte{}, nil
	}

	var (
		buf   = bytes.NewBuffer(make([]byte, 0, min(length, 1<<20)))
		chunk = make([]byte, c.opts.Receive.BodyPoll.ChunkSize)
		opts  = c.opts.Receive.BodyPoll
	)

	err := c.poll(ctx, opts, func() (int, bool, error) {
		n, err := c.con.Read(chunk)
		buf.Write(chunk[:n])
		if err != nil {
			return n, false, newError(KindConnection, errors.Wrap(err, "reading body"))
		}

		return n, uint64(buf.Len()) >= length, nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "accumulating body (%d/%d bytes)", buf.Len(), length)
	}

	body := buf.Bytes()
	if !c.opts.Receive.KeepOverflow && uint64(len(body)) > length {
		c.logger.Debug("dropping bytes past content length", slog.Int("overflow", len(body)-int(length)))
		body = body[:length]
	}

	return body, nil
}

// poll calls read whenever the connection has something to read,
// until read reports done or fails.
// Between reads it waits opts.Interval on the clock. opts.MaxEmptyPolls
// consecutive waits without any byte read fail with [ErrReadTimeout].
func (c *conn) poll(
	ctx context.Context, opts PollOptions,
	read func() (n int, done bool, err error),
) error {
	var emptyPolls uint

	for {
		if err := ctx.Err(); err != nil {
			return newError(KindCanceled, err)
		}

		available, err := c.con.Available()
		if err != nil {
			return newError(KindConnection, errors.Wrap(err, "polling connection"))
		}

		if available > 0 {
			n, done, err := read()
			if err != nil || done {
				return err
			}
			if n > 0 {
				emptyPolls = 0
				continue
			}
		}

		emptyPolls++
		if emptyPolls >= opts.MaxEmptyPolls {
			return newError(KindReadTimeout, errors.Wrapf(ErrReadTimeout, "%d empty polls in %s", emptyPolls, opts.Timeout()))
		}

		select {
		case <-ctx.Done():
			return newError(KindCanceled, ctx.Err())
		case <-c.clock.After(opts.Interval):
		}
	}
}

func (c *conn) close() error {
	if err := c.con.Close(); err != nil {
		return newError(KindConnection, errors.Wrap(err, "closing connection"))
	}
	return nil
}
