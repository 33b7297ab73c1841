package http

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type HeadersTestSuite struct {
	suite.Suite
}

func TestHeadersTestSuite(t *testing.T) {
	suite.Run(t, new(HeadersTestSuite))
}

func (s *HeadersTestSuite) TestParseHeaders() {
	testcases := []struct {
		desc     string
		raw      string
		expected Headers
		wantErr  error
	}{
		{
			desc: "status line is skipped and values are trimmed",
			raw: "" +
				"HTTP/1.0 200 OK\r\n" +
				"Content-Type: text/plain\r\n" +
				"Content-Length: 5\r\n" +
				"\r\n",
			expected: Headers{"Content-Type": "text/plain", "Content-Length": "5"},
		},
		{
			desc: "split on the first colon only",
			raw: "" +
				"HTTP/1.0 200 OK\r\n" +
				"Date: Tue, 15 Nov 1994 08:12:31 GMT\r\n" +
				"Location: http://example.com:8080/a\r\n" +
				"\r\n",
			expected: Headers{
				"Date":     "Tue, 15 Nov 1994 08:12:31 GMT",
				"Location": "http://example.com:8080/a",
			},
		},
		{
			desc:     "only a status line",
			raw:      "HTTP/1.0 204 No Content\r\n\r\n",
			expected: Headers{},
		},
		{
			desc:     "bare LF line endings",
			raw:      "HTTP/1.0 200 OK\nContent-Length:0\n\n",
			expected: Headers{"Content-Length": "0"},
		},
		{
			desc: "duplicate field is rejected",
			raw: "" +
				"HTTP/1.0 200 OK\r\n" +
				"Set-Cookie: a=1\r\n" +
				"Set-Cookie: b=2\r\n" +
				"\r\n",
			wantErr: ErrDuplicateField,
		},
	}

	for _, tc := range testcases {
		s.Run(tc.desc, func() {
			headers, err := ParseHeaders([]byte(tc.raw))
			if tc.wantErr != nil {
				s.ErrorIs(err, tc.wantErr)
				s.Nil(headers)
				return
			}

			s.Require().NoError(err)
			s.Equal(tc.expected, headers)
		})
	}
}

func (s *HeadersTestSuite) TestContentLength() {
	testcases := []struct {
		desc     string
		headers  Headers
		expected uint64
		wantErr  error
	}{
		{
			desc:     "present",
			headers:  Headers{"Content-Length": "11"},
			expected: 11,
		},
		{
			desc:     "zero",
			headers:  Headers{"Content-Length": "0"},
			expected: 0,
		},
		{
			desc:     "name in lower case",
			headers:  Headers{"content-length": "42"},
			expected: 42,
		},
		{
			desc:    "missing",
			headers: Headers{"Content-Type": "text/plain"},
			wantErr: ErrMissingContentLength,
		},
		{
			desc:    "negative",
			headers: Headers{"Content-Length": "-1"},
			wantErr: ErrInvalidContentLength,
		},
		{
			desc:    "not a number",
			headers: Headers{"Content-Length": "five"},
			wantErr: ErrInvalidContentLength,
		},
		{
			desc:    "same name in two cases",
			headers: Headers{"Content-Length": "1", "content-length": "2"},
			wantErr: ErrDuplicateField,
		},
	}

	for _, tc := range testcases {
		s.Run(tc.desc, func() {
			length, err := tc.headers.ContentLength()
			if tc.wantErr != nil {
				s.ErrorIs(err, tc.wantErr)
				return
			}

			s.Require().NoError(err)
			s.Equal(tc.expected, length)
		})
	}
}

func (s *HeadersTestSuite) TestClone() {
	original := Headers{"A": "1"}
	clone := original.Clone()
	clone["A"] = "2"

	s.Equal("1", original["A"])
	s.Nil(Headers(nil).Clone())
}
