package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"

	"github.com/go-resty/resty/v2"
)

// hookError marks errors raised by hooks so they are not mistaken for
// transport failures.
type hookError struct {
	phase string
	err   error
}

func (e *hookError) Error() string { return fmt.Sprintf("%s hook: %v", e.phase, e.err) }
func (e *hookError) Unwrap() error { return e.err }

// classify maps a resty failure onto exactly one error kind.
func classify(err error, resp *resty.Response) error {
	var statusErr *StatusError
	if errors.As(err, &statusErr) && resp != nil && resp.RawResponse != nil {
		return &RequestError{
			Message:  "Error",
			Response: newResponseFromHeader(resp.StatusCode(), resp.Body(), resp.Header()),
			Err:      statusErr,
		}
	}

	var hookErr *hookError
	if errors.Is(err, ErrCookieConflict) {
		if errors.As(err, &hookErr) {
			return &CookieConflictError{Err: hookErr.err}
		}
		return &CookieConflictError{Err: err}
	}
	if errors.As(err, &hookErr) {
		return hookErr.err
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Op == "parse" {
			return &InvalidURLError{Err: err}
		}
		return &CommunicationError{Message: urlErr.Err.Error(), Err: err}
	}

	// A deadline hit while reading the body is still a transport timeout.
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &CommunicationError{Message: err.Error(), Err: err}
	}

	// Headers arrived but the body could not be read.
	if resp != nil && resp.RawResponse != nil {
		return &StreamError{Err: err}
	}

	return &CommunicationError{Message: err.Error(), Err: err}
}
