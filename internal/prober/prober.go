package prober

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/samvad-hq/samvad-httpkit/internal/domain"
	"github.com/samvad-hq/samvad-httpkit/internal/logger"
	"github.com/samvad-hq/samvad-httpkit/internal/plans"
	"github.com/samvad-hq/samvad-httpkit/pkg/httpclient"
	"github.com/samvad-hq/samvad-httpkit/pkg/publishers"
)

const eventSource = "samvad-httpkit"

// EventPublisher publishes outcome events downstream.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// OutcomeRecorder persists the latest outcome per plan.
type OutcomeRecorder interface {
	Record(o domain.Outcome) error
}

// Service executes request plans against a single client.
type Service struct {
	client    httpclient.Client
	publisher EventPublisher
	recorder  OutcomeRecorder
	log       logger.Logger
}

// NewService wires a prober. publisher and recorder may be nil.
func NewService(client httpclient.Client, publisher EventPublisher, recorder OutcomeRecorder, log logger.Logger) *Service {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Service{
		client:    client,
		publisher: publisher,
		recorder:  recorder,
		log:       log,
	}
}

// Run executes every plan in order and joins the failures.
func (s *Service) Run(ctx context.Context, ps []plans.Plan) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("prober service is not initialized")
	}
	if len(ps) == 0 {
		return fmt.Errorf("no request plans configured")
	}

	var errs []error
	for _, p := range ps {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		outcome, err := s.Execute(ctx, p)
		if err != nil {
			errs = append(errs, err)
			s.log.ErrorObj("request plan failed", "plan_error", map[string]any{
				"plan_id": p.ID,
				"kind":    outcome.Kind,
				"status":  outcome.StatusCode,
				"error":   err.Error(),
			})
		} else {
			s.log.InfoObj("request plan completed", "plan_result", map[string]any{
				"plan_id":     p.ID,
				"status":      outcome.StatusCode,
				"duration_ms": outcome.DurationMS,
			})
		}
		s.report(ctx, outcome)
	}
	return errors.Join(errs...)
}

// Execute issues one request for p and evaluates its expectations. A non-nil
// error is always a *CallError.
func (s *Service) Execute(ctx context.Context, p plans.Plan) (outcome domain.Outcome, err error) {
	outcome = domain.Outcome{
		PlanID: p.ID,
		Method: p.Method,
		Path:   p.Path,
	}
	start := time.Now()
	defer func() {
		outcome.DurationMS = time.Since(start).Milliseconds()
		outcome.CompletedAt = time.Now().UTC()
	}()

	opts, err := requestOptions(p, s.log)
	if err != nil {
		callErr := &CallError{PlanID: p.ID, Kind: domain.KindOther, Err: err}
		return s.fail(&outcome, callErr), callErr
	}

	resp, err := s.client.Request(ctx, p.Method, p.Path, opts)
	if err != nil {
		callErr := translate(p.ID, err)
		return s.fail(&outcome, callErr), callErr
	}
	outcome.StatusCode = resp.StatusCode()

	if err := checkExpectation(p.Expect, resp); err != nil {
		callErr := &CallError{PlanID: p.ID, Kind: domain.KindExpectation, StatusCode: resp.StatusCode(), Err: err}
		return s.fail(&outcome, callErr), callErr
	}

	outcome.Kind = domain.KindOK
	return outcome, nil
}

func (s *Service) fail(outcome *domain.Outcome, callErr *CallError) domain.Outcome {
	outcome.Kind = callErr.Kind
	outcome.Error = callErr.Err.Error()
	if callErr.StatusCode != 0 {
		outcome.StatusCode = callErr.StatusCode
	}
	return *outcome
}

// report records and publishes an outcome. Failures are logged, not returned.
func (s *Service) report(ctx context.Context, outcome domain.Outcome) {
	if s.recorder != nil {
		if err := s.recorder.Record(outcome); err != nil {
			s.log.WarnObj("outcome record failed", "storage_error", map[string]any{
				"plan_id": outcome.PlanID,
				"error":   err.Error(),
			})
		}
	}
	if s.publisher != nil {
		if _, err := s.publisher.Publish(ctx, publishers.NewEvent(eventSource, outcome)); err != nil {
			s.log.WarnObj("outcome publish failed", "publish_error", map[string]any{
				"plan_id": outcome.PlanID,
				"error":   err.Error(),
			})
		}
	}
}

// requestOptions builds per-call overrides from a plan. A plan that lists
// hooks, even an empty list, replaces the client's default hooks.
func requestOptions(p plans.Plan, log httpclient.Logger) (*httpclient.RequestOptions, error) {
	opts := &httpclient.RequestOptions{
		Timeout: p.Timeout(),
		JSON:    p.JSON,
		Headers: p.Headers,
	}
	if len(p.Params) > 0 {
		opts.Params = url.Values(p.Params)
	}
	if p.Hooks != nil {
		hooks, err := httpclient.HooksFromNames(p.Hooks, log)
		if err != nil {
			return nil, fmt.Errorf("plan hooks: %w", err)
		}
		if hooks == nil {
			hooks = &httpclient.Hooks{}
		}
		opts.Hooks = hooks
	}
	return opts, nil
}

// checkExpectation verifies status and JSON paths. Without an explicit status
// any 2xx is accepted.
func checkExpectation(exp *plans.Expectation, resp *httpclient.Response) error {
	if exp == nil || exp.Status == 0 {
		if !resp.IsSuccess() {
			return fmt.Errorf("unexpected status %d", resp.StatusCode())
		}
	} else if resp.StatusCode() != exp.Status {
		return fmt.Errorf("status %d, want %d", resp.StatusCode(), exp.Status)
	}
	if exp == nil {
		return nil
	}

	var errs []error
	for path, want := range exp.JSONPaths {
		got := resp.Get(path)
		if !got.Exists() {
			errs = append(errs, fmt.Errorf("json path %q not found", path))
			continue
		}
		if got.String() != want {
			errs = append(errs, fmt.Errorf("json path %q = %q, want %q", path, got.String(), want))
		}
	}
	return errors.Join(errs...)
}
