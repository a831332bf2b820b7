package httpclient

import (
	"errors"
	"net/http"
	"reflect"
	"testing"
)

func TestResponseJSONCachesDecodedValue(t *testing.T) {
	resp := NewResponse(http.StatusOK, []byte(`{"key":"value"}`), map[string]string{"Content-Type": "text/plain"})

	first, err := resp.JSON()
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	m, ok := first.(map[string]any)
	if !ok {
		t.Fatalf("expected object, got %T", first)
	}
	m["marker"] = true

	second, err := resp.JSON()
	if err != nil {
		t.Fatalf("JSON second call: %v", err)
	}
	if _, ok := second.(map[string]any)["marker"]; !ok {
		t.Fatalf("expected cached value to be returned, got fresh decode %#v", second)
	}
}

func TestResponsePreSuppliedJSONIsAuthoritative(t *testing.T) {
	supplied := map[string]any{"from": "caller"}
	resp := NewResponse(http.StatusOK, []byte(`not json`), nil, WithJSON(supplied))

	got, err := resp.JSON()
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if !reflect.DeepEqual(got, supplied) {
		t.Fatalf("expected supplied value, got %#v", got)
	}
}

func TestResponsePreSuppliedNilIsNotRecomputed(t *testing.T) {
	resp := NewResponse(http.StatusOK, []byte(`{"a":1}`), nil, WithJSON(nil))

	got, err := resp.JSON()
	if err != nil || got != nil {
		t.Fatalf("expected nil value without error, got %#v err=%v", got, err)
	}
}

func TestResponseJSONDecodeError(t *testing.T) {
	resp := NewResponse(http.StatusOK, []byte(`<html></html>`), nil)

	_, err := resp.JSON()
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected *DecodeError, got %T: %v", err, err)
	}
	if decodeErr.Op != "json" {
		t.Fatalf("Op = %q", decodeErr.Op)
	}
}

func TestResponseTextRejectsInvalidUTF8(t *testing.T) {
	resp := NewResponse(http.StatusOK, []byte{0xff, 0xfe, 0xfd}, nil)

	if _, err := resp.Text(); err == nil {
		t.Fatalf("expected error for invalid UTF-8")
	}
	if _, err := resp.JSON(); err == nil {
		t.Fatalf("expected JSON to fail for invalid UTF-8")
	}
}

func TestResponseHeadersAreLowerCased(t *testing.T) {
	resp := newResponseFromHeader(http.StatusOK, []byte(`{}`), http.Header{
		"Content-Type": {"application/json"},
		"X-Multi":      {"a", "b"},
	})

	if got := resp.Headers()["content-type"]; got != "application/json" {
		t.Fatalf("content-type = %q", got)
	}
	if got := resp.Header("X-MULTI"); got != "a, b" {
		t.Fatalf("x-multi = %q", got)
	}
}

func TestResponseEagerDecodeFailureStaysLazy(t *testing.T) {
	resp := newResponseFromHeader(http.StatusOK, []byte(`{broken`), http.Header{
		"Content-Type": {"application/json"},
	})

	if _, err := resp.JSON(); err == nil {
		t.Fatalf("expected decode error from JSON")
	}
}

func TestResponseGetAndString(t *testing.T) {
	resp := NewResponse(http.StatusCreated, []byte(`{"user":{"name":"asha"}}`), nil)

	if got := resp.Get("user.name").String(); got != "asha" {
		t.Fatalf("Get = %q", got)
	}
	if resp.String() != "201" {
		t.Fatalf("String = %q", resp.String())
	}

	var out struct {
		User struct {
			Name string `json:"name"`
		} `json:"user"`
	}
	if err := resp.Decode(&out); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out.User.Name != "asha" {
		t.Fatalf("decoded name = %q", out.User.Name)
	}
}
