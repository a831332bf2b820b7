package domain

import "time"

// Domain contains core models shared by the prober, storage and publishers.

// Outcome kinds. KindOK marks a call that succeeded and met its expectations.
const (
	KindOK             = "ok"
	KindRequest        = "request"
	KindCommunication  = "communication"
	KindInvalidURL     = "invalid_url"
	KindCookieConflict = "cookie_conflict"
	KindStream         = "stream"
	KindExpectation    = "expectation"
	KindOther          = "other"
)

// Outcome is the result of executing one request plan.
type Outcome struct {
	PlanID      string    `json:"plan_id"`
	Method      string    `json:"method"`
	Path        string    `json:"path"`
	StatusCode  int       `json:"status_code,omitempty"`
	Kind        string    `json:"kind"`
	Error       string    `json:"error,omitempty"`
	DurationMS  int64     `json:"duration_ms"`
	CompletedAt time.Time `json:"completed_at"`
}

// Success reports whether the outcome is KindOK.
func (o Outcome) Success() bool { return o.Kind == KindOK }
