package sink

import (
	"context"
	"errors"

	"github.com/okian/annosim/internal/domain/model"
)

// Multi fans every write out to a list of sinks. A failing sink does not stop
// the others; all failures are joined into the returned error.
type Multi struct {
	sinks   []Sink
	observe func(sink string, err error)
}

// NewMulti creates a fan-out over sinks, in order.
func NewMulti(sinks []Sink, opts ...MultiOption) *Multi {
	m := &Multi{
		sinks:   sinks,
		observe: func(string, error) {},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name implements Sink.
func (m *Multi) Name() string { return "multi" }

// Sinks returns the wrapped sinks.
func (m *Multi) Sinks() []Sink { return m.sinks }

// Paths implements Locator by collecting the paths of every wrapped sink.
func (m *Multi) Paths() []string {
	var out []string
	for _, s := range m.sinks {
		if l, ok := s.(Locator); ok {
			out = append(out, l.Paths()...)
		}
	}
	return out
}

// WriteIndividual implements Sink.
func (m *Multi) WriteIndividual(ctx context.Context, records []model.PerformanceRecord) error {
	return m.each(func(s Sink) error { return s.WriteIndividual(ctx, records) })
}

// WriteTeam implements Sink.
func (m *Multi) WriteTeam(ctx context.Context, summaries []model.TeamWeekSummary) error {
	return m.each(func(s Sink) error { return s.WriteTeam(ctx, summaries) })
}

// Close implements Sink.
func (m *Multi) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Multi) each(write func(Sink) error) error {
	var errs []error
	for _, s := range m.sinks {
		err := write(s)
		m.observe(s.Name(), err)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
