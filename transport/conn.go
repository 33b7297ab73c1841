package transport

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrConnClosed         = errors.New("connection is closed")
	ErrConnListenerClosed = errors.New("conn listener is closed")
	ErrDeadLineExceeded   = errors.New("deadline exceeded")
	ErrNetUnreachable     = errors.New("network is unreachable")
	ErrConnRefused        = errors.New("connection refused")
	ErrHostNotFound       = errors.New("host not found")
	ErrAddrAlreadyInUse   = errors.New("address already in use")
)

type Conn interface {
	Read(p []byte) (n int, err error)
	Write(p []byte) (n int, err error)
	Close() error

	// Available reports how many bytes the next Read can return without blocking.
	// It returns (0, nil) while the peer is silent, and an error once nothing
	// more can ever be read (closed connection, exceeded read deadline).
	Available() (n int, err error)

	LocalAddr() Addr
	RemoteAddr() Addr

	SetReadDeadLine(t time.Time)
	SetWriteDeadLine(t time.Time)
}

// BufferedConn is a [Conn] with fixed-size buffers on both directions.
type BufferedConn interface {
	Conn
	ReadBufSize() uint
	WriteBufSize() uint
}

type ConnListener interface {
	Accept(ctx context.Context) (Conn, error)
	Close() error
}

type ConnDialer interface {
	Dial(ctx context.Context, addr Addr) (Conn, error)
}
