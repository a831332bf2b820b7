package httpclient

import (
	"errors"
	"fmt"
)

// ErrCookieConflict marks ambiguous cookie state for a single call.
var ErrCookieConflict = errors.New("cookie conflict")

var errInvalidUTF8 = errors.New("body is not valid UTF-8")

// RequestError is a status-level failure raised by a response hook. It carries
// the response that triggered it.
type RequestError struct {
	Message  string
	Response *Response
	Err      error
}

func (e *RequestError) Error() string { return e.Message }
func (e *RequestError) Unwrap() error { return e.Err }

// CommunicationError is a network or transport failure: DNS, refused
// connection, timeout.
type CommunicationError struct {
	Message string
	Err     error
}

func (e *CommunicationError) Error() string { return e.Message }
func (e *CommunicationError) Unwrap() error { return e.Err }

// InvalidURLError reports a malformed or scheme-incompatible URL.
type InvalidURLError struct {
	Err error
}

func (e *InvalidURLError) Error() string { return e.Err.Error() }
func (e *InvalidURLError) Unwrap() error { return e.Err }

// CookieConflictError reports ambiguous cookie state.
type CookieConflictError struct {
	Err error
}

func (e *CookieConflictError) Error() string { return e.Err.Error() }
func (e *CookieConflictError) Unwrap() error { return e.Err }

// StreamError reports a failure while reading the response body.
type StreamError struct {
	Err error
}

func (e *StreamError) Error() string { return e.Err.Error() }
func (e *StreamError) Unwrap() error { return e.Err }

// DecodeError is returned by Response.JSON, Response.Decode and Response.Text.
// It is never returned by Client.Request.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("decode %s: %v", e.Op, e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }

// StatusError is raised by RaiseForStatus for non-2xx responses.
type StatusError struct {
	StatusCode int
	Status     string
	Method     string
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %s", e.Method, e.URL, e.Status)
}
