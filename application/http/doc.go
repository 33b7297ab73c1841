// Package http implements the subset of Hypertext Transfer Protocol (HTTP/1.0)
// needed for a single request/response exchange over a raw byte stream:
// request framing and header block parsing.
//
// Reference:
//
// - https://datatracker.ietf.org/doc/html/rfc1945
//
// - https://datatracker.ietf.org/doc/html/rfc9112
package http
