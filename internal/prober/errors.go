package prober

import (
	"errors"
	"fmt"

	"github.com/samvad-hq/samvad-httpkit/internal/domain"
	"github.com/samvad-hq/samvad-httpkit/pkg/httpclient"
)

// CallError is the prober's own failure type. Kind is one of the domain.Kind*
// constants.
type CallError struct {
	PlanID     string
	Kind       string
	StatusCode int
	Err        error
}

func (e *CallError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("request %s failed (%s, status %d): %v", e.PlanID, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("request %s failed (%s): %v", e.PlanID, e.Kind, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

// translate maps a client error onto a CallError.
func translate(planID string, err error) *CallError {
	out := &CallError{PlanID: planID, Kind: domain.KindOther, Err: err}

	var (
		reqErr    *httpclient.RequestError
		commErr   *httpclient.CommunicationError
		urlErr    *httpclient.InvalidURLError
		cookieErr *httpclient.CookieConflictError
		streamErr *httpclient.StreamError
	)
	switch {
	case errors.As(err, &reqErr):
		out.Kind = domain.KindRequest
		if reqErr.Response != nil {
			out.StatusCode = reqErr.Response.StatusCode()
		}
	case errors.As(err, &commErr):
		out.Kind = domain.KindCommunication
	case errors.As(err, &urlErr):
		out.Kind = domain.KindInvalidURL
	case errors.As(err, &cookieErr):
		out.Kind = domain.KindCookieConflict
	case errors.As(err, &streamErr):
		out.Kind = domain.KindStream
	}
	return out
}
