package simulation

import "math/rand"

// Normal is the random source the simulator draws from. *rand.Rand
// satisfies it; tests can substitute a scripted stream.
type Normal interface {
	// NormFloat64 returns a standard normal sample.
	NormFloat64() float64
}

// Option applies a configuration option to the Simulator.
type Option func(*Simulator)

// WithRand sets the random source.
func WithRand(r Normal) Option {
	return func(s *Simulator) {
		if r != nil {
			s.rng = r
		}
	}
}

// WithSeed seeds a fresh math/rand generator.
func WithSeed(seed int64) Option {
	return func(s *Simulator) {
		s.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible synthetic data, not security sensitive
	}
}
