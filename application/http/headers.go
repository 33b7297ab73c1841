package http

import (
	"bytes"
	"maps"
	"strconv"
	"strings"

	"http-exchange/application/util/rule"

	"github.com/pkg/errors"
)

// Headers maps a field name, case as received, to its value.
//
// Unlike full HTTP, a name may appear only once: a repeated field is
// rejected instead of being combined or overwritten.
type Headers map[string]string

var (
	ErrDuplicateField       = errors.New("field appears more than once")
	ErrMissingContentLength = errors.New("Content-Length field is missing")
	ErrInvalidContentLength = errors.New("Content-Length is not a non-negative integer")
)

// ParseHeaders parses a raw header block, status line included.
// Lines without a colon (the status line, the terminating empty lines) are skipped.
func ParseHeaders(raw []byte) (Headers, error) {
	headers := make(Headers)

	for _, line := range bytes.Split(raw, []byte{rule.LF}) {
		line = bytes.TrimSuffix(line, []byte{rule.CR})
		if bytes.IndexByte(line, ':') < 0 {
			continue
		}

		field, err := ParseField(line)
		if err != nil {
			return nil, errors.Wrap(err, "parsing field line")
		}

		if err := headers.add(field); err != nil {
			return nil, err
		}
	}

	return headers, nil
}

func (h Headers) add(f Field) error {
	if _, ok := h[f.Name]; ok {
		return errors.Wrapf(ErrDuplicateField, "%q", f.Name)
	}
	h[f.Name] = f.Value
	return nil
}

// Get looks the name up exactly first, then case-insensitively.
// A case-insensitive match on more than one name is reported as a duplicate.
func (h Headers) Get(name string) (value string, ok bool, err error) {
	if v, ok := h[name]; ok {
		return v, true, h.assertSingle(name)
	}

	for k, v := range h {
		if strings.EqualFold(k, name) {
			return v, true, h.assertSingle(name)
		}
	}

	return "", false, nil
}

func (h Headers) assertSingle(name string) error {
	count := 0
	for k := range h {
		if strings.EqualFold(k, name) {
			count++
		}
	}
	if count > 1 {
		return errors.Wrapf(ErrDuplicateField, "%q (differing case)", name)
	}
	return nil
}

// ContentLength extracts the body length the response announces.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc1945#section-10.4
func (h Headers) ContentLength() (uint64, error) {
	v, ok, err := h.Get("Content-Length")
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrMissingContentLength
	}

	// Any value greater than or equal to 0 is valid.
	// But let's restrict it to 64bit uint.
	length, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidContentLength, "%q", v)
	}

	return length, nil
}

func (h Headers) Clone() Headers {
	if h == nil {
		return nil
	}
	return maps.Clone(h)
}
