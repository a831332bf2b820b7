package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// RestyClient implements Client on top of resty. Its configuration is read-only
// after construction; every call gets its own resty.Client.
type RestyClient struct {
	baseURL   string
	timeout   time.Duration
	headers   map[string]string
	hooks     *Hooks
	transport http.RoundTripper
	log       Logger
}

var _ Client = (*RestyClient)(nil)

// NewRestyClient creates a client rooted at baseURL. An invalid base URL is
// reported per call as *InvalidURLError.
func NewRestyClient(baseURL string, opts ...ClientOption) *RestyClient {
	c := &RestyClient{
		baseURL: strings.TrimSpace(baseURL),
		timeout: defaultTimeout,
		log:     NopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// BaseURL returns the configured base URL.
func (c *RestyClient) BaseURL() string { return c.baseURL }

// Timeout returns the default per-call timeout.
func (c *RestyClient) Timeout() time.Duration { return c.timeout }

// Request performs a single HTTP exchange.
func (c *RestyClient) Request(ctx context.Context, method, rawURL string, opts *RequestOptions) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var params url.Values
	if opts != nil {
		params = opts.Params
	}
	target, err := resolveURL(c.baseURL, rawURL, params)
	if err != nil {
		return nil, &InvalidURLError{Err: err}
	}
	if opts != nil {
		if err := checkCookies(opts.Cookies); err != nil {
			return nil, &CookieConflictError{Err: err}
		}
	}

	cfg := c.resolve(opts)
	var received *Response
	rc := c.newTransport(cfg, &received)
	if c.transport == nil {
		defer rc.GetClient().CloseIdleConnections()
	}

	req := rc.R().SetContext(ctx)
	if len(cfg.headers) > 0 {
		req.SetHeaders(cfg.headers)
	}
	if opts != nil {
		if len(opts.Cookies) > 0 {
			req.SetCookies(opts.Cookies)
		}
		if opts.JSON != nil {
			body, err := json.Marshal(opts.JSON)
			if err != nil {
				return nil, fmt.Errorf("encode json body: %w", err)
			}
			req.SetHeader("Content-Type", mimeJSON).SetBody(body)
		}
	}

	resp, err := req.Execute(method, target)
	if err != nil {
		classified := classify(err, resp)
		c.log.DebugObj("http call failed", "http_error", map[string]any{
			"method": method,
			"url":    target,
			"error":  classified.Error(),
		})
		return nil, classified
	}
	if received != nil {
		return received, nil
	}
	return newResponseFromHeader(resp.StatusCode(), resp.Body(), resp.Header()), nil
}

// newTransport builds the resty client scoped to one call. The response seen
// by the response hooks is stored in received.
func (c *RestyClient) newTransport(cfg callConfig, received **Response) *resty.Client {
	rc := resty.New()
	rc.SetTimeout(cfg.timeout)
	if c.transport != nil {
		rc.SetTransport(c.transport)
	}

	hooks := cfg.hooks
	if hooks != nil && len(hooks.Request) > 0 {
		rc.SetPreRequestHook(func(_ *resty.Client, req *http.Request) error {
			if err := hooks.runRequest(req); err != nil {
				return &hookError{phase: "request", err: err}
			}
			return nil
		})
	}
	rc.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		r := newResponseFromHeader(resp.StatusCode(), resp.Body(), resp.Header())
		var raw *http.Request
		if resp.Request != nil {
			raw = resp.Request.RawRequest
		}
		if err := hooks.runResponse(raw, r); err != nil {
			return &hookError{phase: "response", err: err}
		}
		*received = r
		return nil
	})
	return rc
}

// resolveURL joins target onto base the way a browser joins a path onto a
// directory: the base path is kept and the target path appended to it.
func resolveURL(base, target string, params url.Values) (string, error) {
	u, err := url.Parse(strings.TrimSpace(target))
	if err != nil {
		return "", err
	}

	if !u.IsAbs() {
		b, err := url.Parse(base)
		if err != nil {
			return "", err
		}
		ref := *b
		if u.Host != "" {
			ref.Host = u.Host
			ref.Path = u.Path
		} else {
			ref.Path = joinPath(b.Path, u.Path)
		}
		ref.RawPath = ""
		ref.RawQuery = u.RawQuery
		ref.Fragment = u.Fragment
		u = &ref
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q in %q", u.Scheme, u.String())
	}
	if u.Host == "" {
		return "", fmt.Errorf("missing host in %q", u.String())
	}

	if len(params) > 0 {
		q := u.Query()
		for key, values := range params {
			for _, v := range values {
				q.Add(key, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func joinPath(base, target string) string {
	if target == "" {
		return base
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(target, "/")
}

func checkCookies(cookies []*http.Cookie) error {
	seen := make(map[string]string, len(cookies))
	for _, ck := range cookies {
		if ck == nil {
			continue
		}
		if prev, ok := seen[ck.Name]; ok && prev != ck.Value {
			return fmt.Errorf("%w: multiple values for cookie %q", ErrCookieConflict, ck.Name)
		}
		seen[ck.Name] = ck.Value
	}
	return nil
}
