package httpclient

import "context"

// Client abstracts HTTP calls so callers can inject mocks or different transports.
//
// Request issues exactly one exchange. Failures are always one of
// *RequestError, *CommunicationError, *InvalidURLError, *CookieConflictError or
// *StreamError, except errors raised by hooks for reasons other than status
// enforcement, which are returned unchanged.
type Client interface {
	Request(ctx context.Context, method, url string, opts *RequestOptions) (*Response, error)
}

// Logger defines the logging surface the built-in hooks rely on.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) InfoObj(string, string, interface{})  {}
func (NopLogger) DebugObj(string, string, interface{}) {}
func (NopLogger) WarnObj(string, string, interface{})  {}
func (NopLogger) ErrorObj(string, string, interface{}) {}

func ensureLogger(log Logger) Logger {
	if log == nil {
		return NopLogger{}
	}
	return log
}
