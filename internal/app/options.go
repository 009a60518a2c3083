package service

import (
	"context"
	"time"

	"github.com/okian/annosim/internal/adapters/sink"
	"github.com/okian/annosim/internal/config"
	"github.com/okian/annosim/internal/domain/model"
	"github.com/okian/annosim/internal/domain/simulation"
	"github.com/okian/annosim/pkg/logger"
	"github.com/okian/annosim/pkg/metrics"
)

// Generator produces the individual performance table.
type Generator interface {
	Simulate(ctx context.Context) ([]model.PerformanceRecord, error)
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig sets the run configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics manager runs report to.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithSinks replaces the sinks built from the output configuration.
func WithSinks(sinks ...sink.Sink) Option {
	return func(s *Service) {
		if len(sinks) > 0 {
			s.sinks = sinks
		}
	}
}

// WithRand overrides the seeded random source of the simulator.
func WithRand(r simulation.Normal) Option {
	return func(s *Service) {
		if r != nil {
			s.rand = r
		}
	}
}

// WithGenerator replaces the simulator as the source of records.
func WithGenerator(g Generator) Option {
	return func(s *Service) {
		if g != nil {
			s.generator = g
		}
	}
}

// WithClock sets the time source used for the manifest timestamp.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
