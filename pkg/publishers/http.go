package publishers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-httpkit/pkg/httpclient"
)

type httpPublisher struct {
	id     string
	method string
	client httpclient.Client
	typ    string
	log    Logger
}

func newHTTPPublisher(_ context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("publisher %q missing http configuration", cfg.ID)
	}

	client := httpclient.NewRestyClient(cfg.HTTP.URL,
		httpclient.WithTimeout(time.Duration(cfg.HTTP.TimeoutSeconds)*time.Second),
		httpclient.WithHeaders(cfg.HTTP.Headers),
		httpclient.WithHooks(&httpclient.Hooks{
			Response: []httpclient.ResponseHook{httpclient.RaiseForStatus},
		}),
	)

	return &httpPublisher{
		id:     cfg.ID,
		typ:    TypeHTTP,
		method: cfg.HTTP.Method,
		client: client,
		log:    ensureLogger(log),
	}, nil
}

func (h *httpPublisher) ID() string   { return h.id }
func (h *httpPublisher) Type() string { return h.typ }
func (h *httpPublisher) Close() error { return nil }

// Publish posts the event as JSON to the configured endpoint.
func (h *httpPublisher) Publish(ctx context.Context, evt Event) error {
	_, err := h.client.Request(ctx, h.method, "", &httpclient.RequestOptions{JSON: evt})
	if err == nil {
		h.log.DebugObj("http publisher delivered event", "publisher_http_delivery", map[string]any{
			"publisher_id": h.id,
		})
		return nil
	}

	var reqErr *httpclient.RequestError
	if errors.As(err, &reqErr) && reqErr.Response != nil {
		snippet := readBodySnippet(reqErr.Response.Content())
		return fmt.Errorf("http response status %d: %s", reqErr.Response.StatusCode(), snippet)
	}
	return fmt.Errorf("http request: %w", err)
}

func readBodySnippet(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > 512 {
		body = body[:512]
	}
	return strings.TrimSpace(string(body))
}
