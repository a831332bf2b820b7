package httpclient

import (
	"net/http"
	"net/url"
	"time"
)

const defaultTimeout = 30 * time.Second

// RequestOptions overrides client defaults for a single call. Each field
// replaces the default outright: zero Timeout, nil Headers and nil Hooks fall
// back to the client's configuration.
type RequestOptions struct {
	Timeout time.Duration
	Params  url.Values
	JSON    any
	Headers map[string]string
	Hooks   *Hooks
	Cookies []*http.Cookie
}

// ClientOption configures a RestyClient.
type ClientOption func(*RestyClient)

// WithTimeout sets the default per-call timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *RestyClient) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithHeaders sets the default headers.
func WithHeaders(headers map[string]string) ClientOption {
	return func(c *RestyClient) {
		c.headers = copyHeaders(headers)
	}
}

// WithHooks sets the default hooks.
func WithHooks(hooks *Hooks) ClientOption {
	return func(c *RestyClient) {
		c.hooks = hooks
	}
}

// WithTransport routes every call through rt instead of a fresh transport.
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(c *RestyClient) {
		c.transport = rt
	}
}

// WithLogger sets the logger used for client diagnostics.
func WithLogger(log Logger) ClientOption {
	return func(c *RestyClient) {
		c.log = ensureLogger(log)
	}
}

// callConfig is the resolved per-call scope.
type callConfig struct {
	timeout time.Duration
	headers map[string]string
	hooks   *Hooks
}

func (c *RestyClient) resolve(opts *RequestOptions) callConfig {
	cfg := callConfig{
		timeout: c.timeout,
		headers: c.headers,
		hooks:   c.hooks,
	}
	if opts == nil {
		return cfg
	}
	if opts.Timeout > 0 {
		cfg.timeout = opts.Timeout
	}
	if opts.Headers != nil {
		cfg.headers = opts.Headers
	}
	if opts.Hooks != nil {
		cfg.hooks = opts.Hooks
	}
	return cfg
}

func copyHeaders(headers map[string]string) map[string]string {
	if headers == nil {
		return nil
	}
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		out[k] = v
	}
	return out
}
