package client

import (
	"bytes"
	"context"
	"log/slog"

	"http-exchange/application/http"
	"http-exchange/transport"
	"http-exchange/transport/tcp"

	"github.com/benbjohnson/clock"
	"github.com/dchest/uniuri"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Client starts exchanges with a single server.
// It holds no connection: every exchange dials its own and closes it.
type Client struct {
	opts Options

	logger *slog.Logger
	clock  clock.Clock

	connDialer transport.ConnDialer

	combineAddr CombineAddrFunc
}

type CombineAddrFunc func(host string, port uint16) transport.Addr

func New(
	d transport.ConnDialer,
	logger *slog.Logger,
	clock clock.Clock,
	opts Options,
) (*Client, error) {
	if err := opts.validate(); err != nil {
		return nil, errors.Wrap(err, "validating options")
	}

	client := &Client{
		connDialer: d,
		logger:     logger,
		clock:      clock,
		opts:       opts.withDefaults(),
	}

	client.combineAddr = func(host string, port uint16) transport.Addr {
		return tcp.NewAddr(host, port)
	}

	return client, nil
}

// NewRequest starts an exchange sending body to path with method,
// and returns its handle right away.
// ctx bounds dialing and every wait of the exchange.
func (c *Client) NewRequest(ctx context.Context, path, method string, body []byte) *Exchange {
	ex := newExchange(uniuri.New(), http.Request{
		Method: method,
		Target: path,
		Body:   bytes.Clone(body),
	})

	go c.run(ctx, ex)

	return ex
}

// NewRequestString is [Client.NewRequest] with body sent as UTF-8.
func (c *Client) NewRequestString(ctx context.Context, path, method, body string) *Exchange {
	return c.NewRequest(ctx, path, method, []byte(body))
}

// Do starts an exchange and waits for it.
// The returned error is the exchange error, or ctx's if ctx ended first.
func (c *Client) Do(ctx context.Context, path, method string, body []byte) (*Exchange, error) {
	ex := c.NewRequest(ctx, path, method, body)
	return ex, ex.Wait(ctx)
}

func (c *Client) run(ctx context.Context, ex *Exchange) {
	addr := c.combineAddr(c.opts.Host, c.opts.Port)

	logger := c.logger.With(
		slog.String("exchange", ex.id),
		slog.String("addr", addr.String()),
		slog.String("method", ex.request.Method),
		slog.String("path", ex.request.Target),
	)

	res, err := c.exchange(ctx, ex.request, addr, logger)
	if err != nil {
		ex.fail(err)
		logger.Warn("exchange failed", slog.String("kind", KindOf(err).String()), slog.Any("error", err))
		return
	}

	ex.succeed(res.status, res.headers, res.body)
	logger.Info("exchange succeeded",
		slog.Uint64("status", uint64(res.status.StatusCode)),
		slog.Int("bytes", len(res.body)),
	)
}

type response struct {
	status  http.StatusLine
	headers http.Headers
	body    []byte
}

// exchange runs every phase in order, and stops at the first failure.
// The connection is closed by the time it returns.
func (c *Client) exchange(
	ctx context.Context, request http.Request,
	addr transport.Addr, logger *slog.Logger,
) (_ *response, err error) {
	if err := request.Validate(); err != nil {
		return nil, newError(KindInvalidRequest, err)
	}

	tConn, err := c.connDialer.Dial(ctx, addr)
	if err != nil {
		if ctx.Err() != nil {
			return nil, newError(KindCanceled, errors.Wrap(err, "dialing"))
		}
		return nil, newError(KindConnection, errors.Wrap(err, "dialing"))
	}
	logger.Debug("connected")

	conn := &conn{
		con:    tConn,
		logger: logger,
		clock:  c.clock,
		opts:   c.opts,
	}

	defer func() {
		closeErr := conn.close()
		if closeErr == nil {
			return
		}
		if err == nil {
			// The response is complete; nothing to take back.
			logger.Warn("closing connection after success", slog.Any("error", closeErr))
			return
		}
		err = multierr.Append(err, closeErr)
	}()

	if err := conn.writeRequest(request); err != nil {
		return nil, err
	}
	logger.Debug("request sent", slog.Int("body", len(request.Body)))

	raw, err := conn.readHeaders(ctx)
	if err != nil {
		return nil, err
	}

	headers, err := http.ParseHeaders(raw)
	if err != nil {
		return nil, newError(KindMalformedResponse, errors.Wrap(err, "parsing headers"))
	}

	length, err := headers.ContentLength()
	if err != nil {
		return nil, newError(KindMalformedResponse, err)
	}
	logger.Debug("headers received", slog.Int("bytes", len(raw)), slog.Uint64("content_length", length))

	// The status line only informs; it never fails the exchange.
	statusLine, _, _ := bytes.Cut(raw, []byte{'\n'})
	status, err := http.ParseStatusLine(statusLine)
	if err != nil {
		logger.Debug("unparsable status line", slog.Any("error", err))
	}

	body, err := conn.readBody(ctx, length)
	if err != nil {
		return nil, err
	}

	return &response{status: status, headers: headers, body: body}, nil
}
