package tcp

import (
	"bufio"
	"io"
	"net"
	"os"
	"sync"
	"syscall"
	"time"

	"http-exchange/transport"

	"github.com/pkg/errors"
)

// conn adapts a [net.Conn] to [transport.Conn].
// Every byte goes through br, so probing for readable data never loses any.
type conn struct {
	nc net.Conn
	br *bufio.Reader

	probeWindow time.Duration

	local, remote Addr

	mu        sync.Mutex
	rdeadLine time.Time // protected by mu.
}

var _ transport.Conn = (*conn)(nil)

func newConn(nc net.Conn, probeWindow time.Duration) *conn {
	return &conn{
		nc:          nc,
		br:          bufio.NewReader(nc),
		probeWindow: probeWindow,
		local:       addrFrom(nc.LocalAddr()),
		remote:      addrFrom(nc.RemoteAddr()),
	}
}

func (c *conn) LocalAddr() transport.Addr  { return c.local }
func (c *conn) RemoteAddr() transport.Addr { return c.remote }

func (c *conn) Read(p []byte) (n int, err error) {
	n, err = c.br.Read(p)
	return n, convertErr(err)
}

func (c *conn) Write(p []byte) (n int, err error) {
	n, err = c.nc.Write(p)
	return n, convertErr(err)
}

func (c *conn) Close() error {
	if err := c.nc.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}

// Available waits at most probeWindow for the first byte to arrive.
// Bytes already buffered are reported without touching the socket.
func (c *conn) Available() (n int, err error) {
	if n := c.br.Buffered(); n > 0 {
		return n, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	probe := time.Now().Add(c.probeWindow)
	if !c.rdeadLine.IsZero() {
		if !time.Now().Before(c.rdeadLine) {
			return 0, transport.ErrDeadLineExceeded
		}
		if c.rdeadLine.Before(probe) {
			probe = c.rdeadLine
		}
	}

	if err := c.nc.SetReadDeadline(probe); err != nil {
		return 0, convertErr(err)
	}
	// Restore the deadline set by the user.
	defer c.nc.SetReadDeadline(c.rdeadLine)

	if _, err := c.br.Peek(1); err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			// Nothing arrived in the window.
			return 0, nil
		}
		return 0, convertErr(err)
	}

	return c.br.Buffered(), nil
}

func (c *conn) SetReadDeadLine(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rdeadLine = t
	_ = c.nc.SetReadDeadline(t)
}

func (c *conn) SetWriteDeadLine(t time.Time) { _ = c.nc.SetWriteDeadline(t) }

func convertErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
		return transport.ErrConnClosed
	case errors.Is(err, syscall.ECONNRESET), errors.Is(err, syscall.EPIPE):
		return errors.Wrap(transport.ErrConnClosed, err.Error())
	case errors.Is(err, os.ErrDeadlineExceeded):
		return transport.ErrDeadLineExceeded
	}
	return err
}
