package prober

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/samvad-hq/samvad-httpkit/internal/domain"
	"github.com/samvad-hq/samvad-httpkit/internal/plans"
	"github.com/samvad-hq/samvad-httpkit/pkg/httpclient"
	"github.com/samvad-hq/samvad-httpkit/pkg/publishers"
)

// fakePublisher records published events.
type fakePublisher struct {
	mu     sync.Mutex
	events []publishers.Event
}

func (f *fakePublisher) Publish(_ context.Context, evt publishers.Event) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, evt)
	return 1, nil
}

// fakeRecorder keeps the latest outcome per plan and can inject errors.
type fakeRecorder struct {
	mu       sync.Mutex
	outcomes map[string]domain.Outcome
	err      error
}

func (f *fakeRecorder) Record(o domain.Outcome) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.outcomes == nil {
		f.outcomes = make(map[string]domain.Outcome)
	}
	f.outcomes[o.PlanID] = o
	return nil
}

func newAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/posts/1", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":1,"title":"hello"}`))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"not found"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRunRecordsAndPublishesOutcomes(t *testing.T) {
	srv := newAPI(t)
	pub := &fakePublisher{}
	rec := &fakeRecorder{}
	svc := NewService(httpclient.NewRestyClient(srv.URL), pub, rec, nil)

	reg, err := plans.NewRegistry([]plans.Plan{
		{ID: "ok", Path: "/posts/1", Expect: &plans.Expectation{Status: 200, JSONPaths: map[string]string{"title": "hello"}}},
		{ID: "missing", Path: "/missing", Hooks: []string{httpclient.HookRaiseForStatus}},
	})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	err = svc.Run(context.Background(), reg.All())
	if err == nil {
		t.Fatalf("expected joined error for failing plan")
	}
	var callErr *CallError
	if !errors.As(err, &callErr) || callErr.PlanID != "missing" {
		t.Fatalf("expected CallError for missing plan, got %v", err)
	}
	if callErr.Kind != domain.KindRequest || callErr.StatusCode != http.StatusNotFound {
		t.Fatalf("unexpected call error %#v", callErr)
	}

	if len(pub.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(pub.events))
	}
	if ok := rec.outcomes["ok"]; !ok.Success() || ok.StatusCode != 200 {
		t.Fatalf("unexpected ok outcome %#v", ok)
	}
	if missing := rec.outcomes["missing"]; missing.Kind != domain.KindRequest || missing.Error != "Error" {
		t.Fatalf("unexpected missing outcome %#v", missing)
	}
}

func TestExecuteExpectationMismatch(t *testing.T) {
	srv := newAPI(t)
	svc := NewService(httpclient.NewRestyClient(srv.URL), nil, nil, nil)

	outcome, err := svc.Execute(context.Background(), plans.Plan{
		ID:     "title",
		Method: http.MethodGet,
		Path:   "/posts/1",
		Expect: &plans.Expectation{JSONPaths: map[string]string{"title": "bye", "author": "x"}},
	})
	var callErr *CallError
	if !errors.As(err, &callErr) || callErr.Kind != domain.KindExpectation {
		t.Fatalf("expected expectation failure, got %v", err)
	}
	if outcome.StatusCode != http.StatusOK || outcome.CompletedAt.IsZero() {
		t.Fatalf("unexpected outcome %#v", outcome)
	}
}

func TestExecuteNon2xxWithoutExpectationFails(t *testing.T) {
	srv := newAPI(t)
	svc := NewService(httpclient.NewRestyClient(srv.URL), nil, nil, nil)

	_, err := svc.Execute(context.Background(), plans.Plan{ID: "m", Method: http.MethodGet, Path: "/missing"})
	var callErr *CallError
	if !errors.As(err, &callErr) || callErr.Kind != domain.KindExpectation || callErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected expectation failure with status, got %v", err)
	}
}

func TestExecuteTranslatesTransportErrors(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	closedURL := srv.URL
	srv.Close()

	cases := []struct {
		name string
		base string
		plan plans.Plan
		kind string
	}{
		{name: "communication", base: closedURL, plan: plans.Plan{ID: "c", Method: "GET", Path: "/"}, kind: domain.KindCommunication},
		{name: "invalid url", base: "ftp://example.com", plan: plans.Plan{ID: "u", Method: "GET", Path: "/"}, kind: domain.KindInvalidURL},
		{name: "unknown hook", base: closedURL, plan: plans.Plan{ID: "h", Method: "GET", Path: "/", Hooks: []string{"nope"}}, kind: domain.KindOther},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewService(httpclient.NewRestyClient(tc.base), nil, nil, nil)
			outcome, err := svc.Execute(context.Background(), tc.plan)
			var callErr *CallError
			if !errors.As(err, &callErr) {
				t.Fatalf("expected *CallError, got %T: %v", err, err)
			}
			if callErr.Kind != tc.kind || outcome.Kind != tc.kind {
				t.Fatalf("kind = %q (outcome %q), want %q", callErr.Kind, outcome.Kind, tc.kind)
			}
		})
	}
}

func TestRunKeepsGoingWhenRecorderFails(t *testing.T) {
	srv := newAPI(t)
	rec := &fakeRecorder{err: errors.New("disk full")}
	svc := NewService(httpclient.NewRestyClient(srv.URL), nil, rec, nil)

	if err := svc.Run(context.Background(), []plans.Plan{{ID: "ok", Method: "GET", Path: "/posts/1"}}); err != nil {
		t.Fatalf("recorder failures must not fail the run: %v", err)
	}
}

func TestRunRequiresPlans(t *testing.T) {
	svc := NewService(httpclient.NewRestyClient("https://example.com"), nil, nil, nil)
	if err := svc.Run(context.Background(), nil); err == nil {
		t.Fatalf("expected error for empty plan list")
	}
}
