package client

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"http-exchange/transport"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/suite"
)

// scriptedConn makes the next script entry readable whenever it is polled
// with nothing buffered. An empty entry is an empty poll.
type scriptedConn struct {
	transport.Conn

	script []string
	buf    bytes.Buffer

	polls     int
	readSizes []int
	closed    bool
}

func (c *scriptedConn) Available() (int, error) {
	c.polls++
	if c.buf.Len() == 0 && len(c.script) > 0 {
		c.buf.WriteString(c.script[0])
		c.script = c.script[1:]
	}
	if c.buf.Len() == 0 && c.closed {
		return 0, transport.ErrConnClosed
	}
	return c.buf.Len(), nil
}

func (c *scriptedConn) Read(b []byte) (int, error) {
	c.readSizes = append(c.readSizes, len(b))
	return c.buf.Read(b)
}

type ConnTestSuite struct {
	suite.Suite

	con  *scriptedConn
	conn *conn
}

func TestConnTestSuite(t *testing.T) {
	suite.Run(t, new(ConnTestSuite))
}

func (s *ConnTestSuite) SetupTest() {
	opts := Options{
		Receive: ReceiveOptions{
			HeaderPoll: PollOptions{Interval: time.Microsecond, MaxEmptyPolls: 3},
			BodyPoll:   PollOptions{Interval: time.Microsecond, MaxEmptyPolls: 3},
		},
	}

	s.con = &scriptedConn{}
	s.conn = &conn{
		con:    s.con,
		logger: slog.New(slog.DiscardHandler),
		clock:  clock.New(),
		opts:   opts.withDefaults(),
	}
}

func (s *ConnTestSuite) TestReadHeadersByteByByte() {
	s.con.script = []string{"HTTP/1.0 200 OK\r\nContent-Length: 2\r\n\r\nhi"}

	raw, err := s.conn.readHeaders(context.Background())
	s.Require().NoError(err)

	s.Equal("HTTP/1.0 200 OK\r\nContent-Length: 2\r\n\r\n", string(raw))
	s.Equal("hi", s.con.buf.String(), "nothing past the terminator is consumed")
	for _, size := range s.con.readSizes {
		s.Equal(1, size)
	}
}

func (s *ConnTestSuite) TestReadHeadersTerminatorAcrossPolls() {
	s.con.script = []string{"HTTP/1.0 200 OK\r\nA: b\r", "", "\n\r", "", "\n"}

	raw, err := s.conn.readHeaders(context.Background())
	s.Require().NoError(err)
	s.Equal("HTTP/1.0 200 OK\r\nA: b\r\n\r\n", string(raw))
}

func (s *ConnTestSuite) TestReadHeadersLoneLFIsNotTerminator() {
	s.con.script = []string{"HTTP/1.0 200 OK\nA: b\n\n"}

	_, err := s.conn.readHeaders(context.Background())
	s.Require().ErrorIs(err, ErrReadTimeout)
	s.Equal(KindReadTimeout, KindOf(err))
}

func (s *ConnTestSuite) TestReadHeadersTooLarge() {
	s.conn.opts.Receive.MaxHeaderBytes = 8
	s.con.script = []string{"HTTP/1.0 200 OK\r\n"}

	_, err := s.conn.readHeaders(context.Background())
	s.Require().ErrorIs(err, ErrHeaderTooLarge)
	s.Equal(KindMalformedResponse, KindOf(err))
	s.Len(s.con.readSizes, 8)
}

func (s *ConnTestSuite) TestReadHeadersPeerClosed() {
	s.con.script = []string{"HTTP/1.0 200 OK\r\n"}
	s.con.closed = true

	_, err := s.conn.readHeaders(context.Background())
	s.Require().ErrorIs(err, transport.ErrConnClosed)
	s.Equal(KindConnection, KindOf(err))
}

func (s *ConnTestSuite) TestReadBody() {
	s.con.script = []string{"hello ", "", "world"}

	body, err := s.conn.readBody(context.Background(), 11)
	s.Require().NoError(err)
	s.Equal("hello world", string(body))
	for _, size := range s.con.readSizes {
		s.Equal(1024, size)
	}
}

func (s *ConnTestSuite) TestReadBodyZeroLength() {
	s.con.script = []string{"unexpected"}

	body, err := s.conn.readBody(context.Background(), 0)
	s.Require().NoError(err)
	s.Empty(body)
	s.Zero(s.con.polls)
}

func (s *ConnTestSuite) TestReadBodyOverflow() {
	testcases := []struct {
		desc         string
		keepOverflow bool
		expected     string
	}{
		{desc: "truncated", keepOverflow: false, expected: "hello"},
		{desc: "kept", keepOverflow: true, expected: "hello world"},
	}

	for _, tc := range testcases {
		s.Run(tc.desc, func() {
			s.SetupTest()
			s.conn.opts.Receive.KeepOverflow = tc.keepOverflow
			s.con.script = []string{"hello world"}

			body, err := s.conn.readBody(context.Background(), 5)
			s.Require().NoError(err)
			s.Equal(tc.expected, string(body))
		})
	}
}

func (s *ConnTestSuite) TestEmptyPollsResetOnRead() {
	// Two empty polls between every byte: never three in a row.
	s.con.script = []string{"", "", "a", "", "", "b", "", "", "c"}

	body, err := s.conn.readBody(context.Background(), 3)
	s.Require().NoError(err)
	s.Equal("abc", string(body))
}

func (s *ConnTestSuite) TestReadTimeout() {
	_, err := s.conn.readBody(context.Background(), 1)

	s.Require().ErrorIs(err, ErrReadTimeout)
	s.Equal(KindReadTimeout, KindOf(err))
	s.Equal(3, s.con.polls)
}

func (s *ConnTestSuite) TestPollCanceled() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.conn.readBody(ctx, 1)
	s.Require().ErrorIs(err, context.Canceled)
	s.Equal(KindCanceled, KindOf(err))
}

func (s *ConnTestSuite) TestHeaderChunkSizeForcedToOne() {
	opts := Options{Receive: ReceiveOptions{HeaderPoll: PollOptions{ChunkSize: 512}}}
	s.Equal(uint(1), opts.withDefaults().Receive.HeaderPoll.ChunkSize)
}
