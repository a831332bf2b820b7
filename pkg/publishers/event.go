package publishers

import (
	"time"

	"github.com/samvad-hq/samvad-httpkit/internal/domain"
)

// Event represents the payload published downstream.
type Event struct {
	Source    string         `json:"source"`
	Outcome   domain.Outcome `json:"outcome"`
	EmittedAt time.Time      `json:"emitted_at"`
}

// NewEvent constructs an Event for the given outcome.
func NewEvent(source string, outcome domain.Outcome) Event {
	return Event{
		Source:    source,
		Outcome:   outcome,
		EmittedAt: time.Now().UTC(),
	}
}

// attributes are the message attributes shared by the queue sinks.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"plan_id": e.Outcome.PlanID,
		"kind":    e.Outcome.Kind,
	}
}
