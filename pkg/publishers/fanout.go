package publishers

import (
	"context"
	"errors"
	"fmt"
)

// Fanout delivers each outcome event to every configured sink.
type Fanout struct {
	sinks []Publisher
}

// NewFanout drops nil entries from pubs.
func NewFanout(pubs []Publisher) *Fanout {
	f := &Fanout{}
	for _, p := range pubs {
		if p != nil {
			f.sinks = append(f.sinks, p)
		}
	}
	return f
}

// Publish returns how many sinks accepted evt, plus the joined failures.
func (f *Fanout) Publish(ctx context.Context, evt Event) (int, error) {
	delivered := 0
	err := f.each("publish", func(p Publisher) error {
		if err := p.Publish(ctx, evt); err != nil {
			return err
		}
		delivered++
		return nil
	})
	return delivered, err
}

// Close releases every sink.
func (f *Fanout) Close() error {
	return f.each("close", Publisher.Close)
}

// Size returns the number of sinks.
func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.sinks)
}

func (f *Fanout) each(op string, fn func(Publisher) error) error {
	if f == nil {
		return nil
	}
	var errs []error
	for _, p := range f.sinks {
		if err := fn(p); err != nil {
			errs = append(errs, fmt.Errorf("%s via %s[%s]: %w", op, p.Type(), p.ID(), err))
		}
	}
	return errors.Join(errs...)
}
