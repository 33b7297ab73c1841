package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	testcases := []struct {
		desc     string
		input    []byte
		expected Version
		wantErr  bool
	}{
		{
			desc:     "http 1.1",
			input:    []byte("HTTP/1.1"),
			expected: Version{1, 1},
		},
		{
			desc:     "http 1.0",
			input:    []byte("HTTP/1.0"),
			expected: Version10,
		},
		{
			desc:    "missing prefix",
			input:   []byte("1.1"),
			wantErr: true,
		},
		{
			desc:    "missing prefix (partial)",
			input:   []byte("HTTP1.1"),
			wantErr: true,
		},
		{
			desc:    "missing seperator",
			input:   []byte("HTTP/1"),
			wantErr: true,
		},
		{
			desc:    "two seperators",
			input:   []byte("HTTP/1.1.1"),
			wantErr: true,
		},
		{
			desc:    "version not convertable to int",
			input:   []byte("HTTP/ayo.2"),
			wantErr: true,
		},
		{
			desc:    "negative version",
			input:   []byte("HTTP/1.-1"),
			wantErr: true,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			ver, err := ParseVersion(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}

			assert.Equal(t, tc.expected, ver)
		})
	}
}

func TestVersionToText(t *testing.T) {
	testcases := []struct {
		input    Version
		expected []byte
	}{
		{
			input:    Version{1, 1},
			expected: []byte("HTTP/1.1"),
		},
		{
			input:    Version{1, 0},
			expected: []byte("HTTP/1.0"),
		},
		{
			input:    Version{0, 1},
			expected: []byte("HTTP/0.1"),
		},
		{
			input:    Version{20, 1},
			expected: []byte("HTTP/20.1"),
		},
		{
			input:    Version{100, 100},
			expected: []byte("HTTP/100.100"),
		},
	}
	for _, tc := range testcases {
		t.Run(string(tc.expected), func(t *testing.T) {
			ver := tc.input
			assert.Equal(t, ver.Text(), tc.expected)
		})
	}
}

func TestParseField(t *testing.T) {
	testcases := []struct {
		desc     string
		input    []byte
		expected Field
		wantErr  bool
	}{
		{
			desc:     "value with leading and trailing whitespace",
			input:    []byte("Content-Type:   text/html\t  "),
			expected: Field{"Content-Type", "text/html"},
		},
		{
			desc:     "value keeps colons after the first one",
			input:    []byte("Date: Tue, 15 Nov 1994 08:12:31 GMT"),
			expected: Field{"Date", "Tue, 15 Nov 1994 08:12:31 GMT"},
		},
		{
			desc:     "trailing CR is trimmed",
			input:    []byte("Content-Length: 5\r"),
			expected: Field{"Content-Length", "5"},
		},
		{
			desc:     "name case is kept",
			input:    []byte("content-length:5"),
			expected: Field{"content-length", "5"},
		},
		{
			desc:     "empty value",
			input:    []byte("X-Empty:"),
			expected: Field{"X-Empty", ""},
		},
		{
			desc:    "no colon seperator",
			input:   []byte("HTTP/1.0 200 OK"),
			wantErr: true,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			field, err := ParseField(tc.input)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrMissingColon)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tc.expected, field)
		})
	}
}

func TestFieldToText(t *testing.T) {
	field := Field{Name: "Content-Length", Value: "11"}
	assert.Equal(t, []byte("Content-Length: 11"), field.Text())
}

func TestParseStatusLine(t *testing.T) {
	testcases := []struct {
		desc     string
		input    []byte
		expected StatusLine
		wantErr  bool
	}{
		{
			desc:     "ok",
			input:    []byte("HTTP/1.0 200 OK\r\n"),
			expected: StatusLine{Version: Version10, StatusCode: 200, ReasonPhrase: "OK"},
		},
		{
			desc:     "reason phrase with spaces",
			input:    []byte("HTTP/1.1 404 Not Found"),
			expected: StatusLine{Version: Version{1, 1}, StatusCode: 404, ReasonPhrase: "Not Found"},
		},
		{
			desc:     "no reason phrase",
			input:    []byte("HTTP/1.0 204"),
			expected: StatusLine{Version: Version10, StatusCode: 204},
		},
		{
			desc:    "two digit status",
			input:   []byte("HTTP/1.0 20 OK"),
			wantErr: true,
		},
		{
			desc:    "not a status line",
			input:   []byte("Content-Length: 5"),
			wantErr: true,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			got, err := ParseStatusLine(tc.input)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrMalformedStatusLine)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestRequestValidate(t *testing.T) {
	testcases := []struct {
		desc    string
		request Request
		wantErr error
	}{
		{desc: "valid", request: Request{Method: "POST", Target: "/a?b=c"}},
		{desc: "lowercase method is still a token", request: Request{Method: "post", Target: "/"}},
		{desc: "empty method", request: Request{Target: "/"}, wantErr: ErrInvalidMethod},
		{desc: "method with space", request: Request{Method: "GET /", Target: "/"}, wantErr: ErrInvalidMethod},
		{desc: "empty target", request: Request{Method: "GET"}, wantErr: ErrInvalidTarget},
		{desc: "target with CRLF", request: Request{Method: "GET", Target: "/\r\nHost: x"}, wantErr: ErrInvalidTarget},
		{desc: "body is not inspected", request: Request{Method: "POST", Target: "/", Body: []byte("\r\n\x00")}},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			err := tc.request.Validate()
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
