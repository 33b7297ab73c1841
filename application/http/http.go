package http

import (
	"bytes"
	"strconv"

	"http-exchange/application/util/rule"

	"github.com/pkg/errors"
)

// [Major, Minor]
type Version [2]uint

// Version10 is the only version this package speaks.
var Version10 = Version{1, 0}

// ParseVersion parses http version text(e.g. "HTTP/1.0") into [Version].
func ParseVersion(b []byte) (Version, error) {
	prefix := []byte("HTTP/")
	if !bytes.HasPrefix(b, prefix) {
		return Version{}, errors.Errorf("http version prefix not found: %s", b)
	}

	// Get major and minor version.
	first, second, found := bytes.Cut(b[len(prefix):], []byte{'.'})
	if !found {
		return Version{}, errors.Errorf("dot seperator not found on version: %s", b)
	}

	major, err1 := strconv.ParseUint(string(first), 10, 64)
	minor, err2 := strconv.ParseUint(string(second), 10, 64)
	if err1 != nil || err2 != nil {
		return Version{}, errors.Errorf("http version is not convertable to int: %s", b)
	}

	return Version{uint(major), uint(minor)}, nil
}

func (ver Version) Text() []byte {
	buf := bytes.NewBuffer(nil)
	buf.Write([]byte("HTTP/"))
	buf.Write([]byte(strconv.FormatUint(uint64(ver[0]), 10)))
	buf.Write([]byte{'.'})
	buf.Write([]byte(strconv.FormatUint(uint64(ver[1]), 10)))
	return buf.Bytes()
}

func (ver Version) String() string { return string(ver.Text()) }

// Request is everything needed to frame one request.
// Host and port are not part of it; they belong to the connection.
type Request struct {
	Method string
	Target string
	Body   []byte
}

var (
	ErrInvalidMethod = errors.New("method is not a valid token")
	ErrInvalidTarget = errors.New("request target is empty or contains whitespace/control characters")
)

// Validate checks the request line can be framed without being split.
// Body is never inspected: encoding it properly is up to the caller.
func (r Request) Validate() error {
	if !rule.IsValidToken(r.Method) {
		return errors.Wrapf(ErrInvalidMethod, "method %q", r.Method)
	}
	if !rule.IsValidTarget(r.Target) {
		return errors.Wrapf(ErrInvalidTarget, "target %q", r.Target)
	}
	return nil
}

type StatusLine struct {
	Version      Version
	StatusCode   uint
	ReasonPhrase string
}

var ErrMalformedStatusLine = errors.New("status line is malformed")

// ParseStatusLine parses the first line of a response, with or without its CRLF.
func ParseStatusLine(line []byte) (StatusLine, error) {
	line = bytes.TrimSuffix(line, []byte{rule.LF})
	line = bytes.TrimSuffix(line, []byte{rule.CR})

	parts := bytes.SplitN(line, []byte{rule.SP}, 3)
	if len(parts) < 2 {
		return StatusLine{}, ErrMalformedStatusLine
	}

	ver, err := ParseVersion(parts[0])
	if err != nil {
		return StatusLine{}, errors.Wrapf(ErrMalformedStatusLine, "version: %v", err)
	}

	statusCodeStr := string(parts[1])
	statusCode, err := strconv.ParseUint(statusCodeStr, 10, 64)
	if err != nil || len(statusCodeStr) != 3 {
		return StatusLine{}, errors.Wrapf(ErrMalformedStatusLine, "status code %q", statusCodeStr)
	}

	// reason-phrase is optional.
	var reasonPhrase string
	if len(parts) == 3 {
		reasonPhrase = string(parts[2])
	}

	return StatusLine{Version: ver, StatusCode: uint(statusCode), ReasonPhrase: reasonPhrase}, nil
}

type Field struct{ Name, Value string }

var ErrMissingColon = errors.New("colon seperator not found on field line")

// ParseField splits a field line at its first colon.
// The name is kept as received, the value is trimmed of surrounding whitespace.
func ParseField(fieldLine []byte) (Field, error) {
	name, value, found := bytes.Cut(fieldLine, []byte{':'})
	if !found {
		return Field{}, errors.Wrapf(ErrMissingColon, "%q", string(fieldLine))
	}

	value = bytes.TrimFunc(value, func(r rune) bool {
		return rule.IsWhitespace(r) || r == rune(rule.CR) || r == rune(rule.LF)
	})

	return Field{Name: string(name), Value: string(value)}, nil
}

func (f Field) Text() []byte {
	buf := bytes.NewBuffer(nil)
	buf.WriteString(f.Name)
	buf.Write([]byte(": "))
	buf.WriteString(f.Value)
	return buf.Bytes()
}
