package httpclient

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

const (
	headerContentType = "content-type"
	mimeJSON          = "application/json"
)

// Response wraps a completed HTTP exchange. It is immutable except for the
// JSON cache, which is filled at most once.
type Response struct {
	statusCode int
	content    []byte
	headers    map[string]string

	jsonOnce  sync.Once
	jsonValue any
	jsonErr   error
}

// ResponseOption customizes a Response at construction.
type ResponseOption func(*Response)

// WithJSON supplies an already decoded JSON value. JSON returns it as-is and
// never parses the body.
func WithJSON(v any) ResponseOption {
	return func(r *Response) {
		r.jsonValue = v
		r.jsonOnce.Do(func() {})
	}
}

// NewResponse builds a Response. Header names are lower-cased.
func NewResponse(statusCode int, content []byte, headers map[string]string, opts ...ResponseOption) *Response {
	r := &Response{
		statusCode: statusCode,
		content:    content,
		headers:    make(map[string]string, len(headers)),
	}
	for k, v := range headers {
		r.headers[strings.ToLower(k)] = v
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// newResponseFromHeader materializes a case-insensitive http.Header into a
// plain map and decodes JSON eagerly when the content type is exactly
// application/json. A body that fails to decode stays lazy so JSON reports it.
func newResponseFromHeader(statusCode int, content []byte, header http.Header) *Response {
	headers := flattenHeader(header)

	var opts []ResponseOption
	if headers[headerContentType] == mimeJSON {
		var v any
		if err := json.Unmarshal(content, &v); err == nil {
			opts = append(opts, WithJSON(v))
		}
	}
	return NewResponse(statusCode, content, headers, opts...)
}

func flattenHeader(header http.Header) map[string]string {
	out := make(map[string]string, len(header))
	for k, vals := range header {
		out[strings.ToLower(k)] = strings.Join(vals, ", ")
	}
	return out
}

// StatusCode returns the HTTP status code.
func (r *Response) StatusCode() int { return r.statusCode }

// Content returns the raw body.
func (r *Response) Content() []byte { return r.content }

// Headers returns a copy of the lower-cased header map.
func (r *Response) Headers() map[string]string {
	out := make(map[string]string, len(r.headers))
	for k, v := range r.headers {
		out[k] = v
	}
	return out
}

// Header looks up a header value by case-insensitive name.
func (r *Response) Header(name string) string {
	return r.headers[strings.ToLower(name)]
}

// IsSuccess reports whether the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.statusCode >= 200 && r.statusCode < 300
}

// Text returns the body decoded as UTF-8.
func (r *Response) Text() (string, error) {
	if !utf8.Valid(r.content) {
		return "", &DecodeError{Op: "text", Err: errInvalidUTF8}
	}
	return string(r.content), nil
}

// JSON decodes the body on first use and caches the outcome. Decoding ignores
// the Content-Type header.
func (r *Response) JSON() (any, error) {
	r.jsonOnce.Do(func() {
		if !utf8.Valid(r.content) {
			r.jsonErr = &DecodeError{Op: "json", Err: errInvalidUTF8}
			return
		}
		var v any
		if err := json.Unmarshal(r.content, &v); err != nil {
			r.jsonErr = &DecodeError{Op: "json", Err: err}
			return
		}
		r.jsonValue = v
	})
	return r.jsonValue, r.jsonErr
}

// Decode unmarshals the body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.content, v); err != nil {
		return &DecodeError{Op: "json", Err: err}
	}
	return nil
}

// Get looks up a gjson path in the body.
func (r *Response) Get(path string) gjson.Result {
	return gjson.GetBytes(r.content, path)
}

// String returns the status code.
func (r *Response) String() string {
	return strconv.Itoa(r.statusCode)
}
