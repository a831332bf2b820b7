package httpclient

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// TimestampHeader is the header AddTimestamp sets on outgoing requests.
const TimestampHeader = "X-Request-Timestamp"

// Hook names accepted by HooksFromNames.
const (
	HookLogRequest     = "log_request"
	HookAddTimestamp   = "add_timestamp"
	HookLogResponse    = "log_response"
	HookRaiseForStatus = "raise_for_status"
)

// RequestHook runs before the request is sent. It may mutate headers.
type RequestHook func(req *http.Request) error

// ResponseHook runs after the response body has been read. Returning an error
// aborts the call.
type ResponseHook func(req *http.Request, resp *Response) error

// Hooks groups interceptors by phase. Each phase runs in registration order
// and stops at the first error.
type Hooks struct {
	Request  []RequestHook
	Response []ResponseHook
}

func (h *Hooks) empty() bool {
	return h == nil || (len(h.Request) == 0 && len(h.Response) == 0)
}

func (h *Hooks) runRequest(req *http.Request) error {
	if h == nil {
		return nil
	}
	for _, hook := range h.Request {
		if hook == nil {
			continue
		}
		if err := hook(req); err != nil {
			return err
		}
	}
	return nil
}

func (h *Hooks) runResponse(req *http.Request, resp *Response) error {
	if h == nil {
		return nil
	}
	for _, hook := range h.Response {
		if hook == nil {
			continue
		}
		if err := hook(req, resp); err != nil {
			return err
		}
	}
	return nil
}

// LogRequest logs the outgoing method and URL.
func LogRequest(log Logger) RequestHook {
	log = ensureLogger(log)
	return func(req *http.Request) error {
		log.InfoObj("http request sent", "http_request", map[string]any{
			"method": req.Method,
			"url":    req.URL.String(),
		})
		return nil
	}
}

// LogResponse logs the method, URL and status of a received response.
func LogResponse(log Logger) ResponseHook {
	log = ensureLogger(log)
	return func(req *http.Request, resp *Response) error {
		fields := map[string]any{"status": resp.StatusCode()}
		if req != nil {
			fields["method"] = req.Method
			fields["url"] = req.URL.String()
		}
		log.InfoObj("http response received", "http_response", fields)
		return nil
	}
}

// AddTimestamp stamps the request with the current UTC time.
func AddTimestamp(req *http.Request) error {
	req.Header.Set(TimestampHeader, time.Now().UTC().Format(time.RFC3339Nano))
	return nil
}

// RaiseForStatus rejects any response outside the 2xx range with a *StatusError.
func RaiseForStatus(req *http.Request, resp *Response) error {
	if resp.IsSuccess() {
		return nil
	}
	err := &StatusError{
		StatusCode: resp.StatusCode(),
		Status:     fmt.Sprintf("%d %s", resp.StatusCode(), http.StatusText(resp.StatusCode())),
	}
	if req != nil {
		err.Method = req.Method
		err.URL = req.URL.String()
	}
	return err
}

// HooksFromNames builds Hooks from configured hook names. Unknown names are an
// error; an empty list yields nil.
func HooksFromNames(names []string, log Logger) (*Hooks, error) {
	hooks := &Hooks{}
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		switch name {
		case "":
			continue
		case HookLogRequest:
			hooks.Request = append(hooks.Request, LogRequest(log))
		case HookAddTimestamp:
			hooks.Request = append(hooks.Request, AddTimestamp)
		case HookLogResponse:
			hooks.Response = append(hooks.Response, LogResponse(log))
		case HookRaiseForStatus:
			hooks.Response = append(hooks.Response, RaiseForStatus)
		default:
			return nil, fmt.Errorf("unknown hook %q", raw)
		}
	}
	if hooks.empty() {
		return nil, nil
	}
	return hooks, nil
}
