package http

import (
	"bytes"
	"io"
	"strconv"

	"http-exchange/application/util/rule"
	iolib "http-exchange/lib/io"

	"github.com/pkg/errors"
)

const DefaultContentType = "application/x-www-form-urlencoded; charset=utf-8"

type EncodeOptions struct {
	// ContentType is sent as is. Empty means [DefaultContentType].
	ContentType string
}

var DefaultEncodeOptions = EncodeOptions{
	ContentType: DefaultContentType,
}

type RequestEncoder struct {
	w    io.Writer
	opts EncodeOptions
}

func NewRequestEncoder(w io.Writer, opts EncodeOptions) *RequestEncoder {
	if opts.ContentType == "" {
		opts.ContentType = DefaultContentType
	}
	return &RequestEncoder{w: w, opts: opts}
}

// Encode writes the preamble and then the body, as two separate writes.
// Each write returns only when every byte was accepted by w.
func (re *RequestEncoder) Encode(request Request) error {
	if _, err := iolib.WriteFull(re.w, re.Preamble(request)); err != nil {
		return errors.Wrap(err, "writing request line & headers")
	}

	if len(request.Body) == 0 {
		return nil
	}

	if _, err := iolib.WriteFull(re.w, request.Body); err != nil {
		return errors.Wrap(err, "writing request body")
	}

	return nil
}

// Preamble frames the request line, the fields and the empty line
// that precede the body.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc1945#section-5
func (re *RequestEncoder) Preamble(request Request) []byte {
	buf := bytes.NewBuffer(nil)

	buf.WriteString(request.Method)
	buf.WriteByte(rule.SP)
	buf.WriteString(request.Target)
	buf.WriteByte(rule.SP)
	buf.Write(Version10.Text())
	buf.Write(rule.CRLF)

	fields := []Field{
		{Name: "Content-Type", Value: re.opts.ContentType},
		{Name: "Content-Length", Value: strconv.Itoa(len(request.Body))},
	}
	for _, field := range fields {
		buf.Write(field.Text())
		buf.Write(rule.CRLF)
	}

	// An empty line as all the headers are written.
	buf.Write(rule.CRLF)

	return buf.Bytes()
}
