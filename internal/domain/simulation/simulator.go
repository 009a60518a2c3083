package simulation

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/okian/annosim/internal/domain/model"
)

const defaultRandomSeed = 42

// Simulator produces performance records from Params and a random source.
// It is not safe for concurrent use: every record advances the shared
// random stream in a fixed order.
type Simulator struct {
	params Params
	rng    Normal
}

// New creates a simulator. Without WithRand or WithSeed it uses seed 42.
func New(params Params, opts ...Option) *Simulator {
	s := &Simulator{
		params: params,
		rng:    rand.New(rand.NewSource(defaultRandomSeed)), //nolint:gosec // reproducible synthetic data
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Params returns the parameters the simulator was built with.
func (s *Simulator) Params() Params {
	return s.params
}

// Simulate returns one record per active person per week in generation
// order: core members in roster order, then each new hire, each person's
// weeks ascending.
func (s *Simulator) Simulate(ctx context.Context) ([]model.PerformanceRecord, error) {
	if err := s.params.Validate(); err != nil {
		return nil, err
	}

	records := make([]model.PerformanceRecord, 0, s.capacity())
	for _, member := range s.params.Core.Members {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during simulation: %w", err)
		}
		for week := 1; week <= s.params.TotalWeeks; week++ {
			records = append(records, s.coreWeek(member, week))
		}
	}
	for _, hire := range s.params.NewHires {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during simulation: %w", err)
		}
		for week := hire.StartWeek; week <= s.params.TotalWeeks; week++ {
			records = append(records, s.hireWeek(hire, week))
		}
	}
	return records, nil
}

func (s *Simulator) capacity() int {
	n := len(s.params.Core.Members) * s.params.TotalWeeks
	for _, h := range s.params.NewHires {
		n += ActiveWeeks(h.StartWeek, s.params.TotalWeeks)
	}
	return n
}

// coreWeek samples the baseline, then applies the training tax and drift.
func (s *Simulator) coreWeek(member string, week int) model.PerformanceRecord {
	b := s.params.Core.Baseline
	m := metrics{
		throughput: s.sample(b.Throughput.Mean, b.Throughput.Std),
		rework:     s.sample(b.ReworkRate.Mean, b.ReworkRate.Std),
		overlap:    s.sample(b.MeanOverlapQuality.Mean, b.MeanOverlapQuality.Std),
		agreement:  s.sample(b.AgreementScore.Mean, b.AgreementScore.Std),
	}.clamp()

	if tax := s.params.Onboarding.TaxAt(week); tax.Active() {
		m = s.params.Onboarding.applyTax(m, tax)
	}
	m = s.params.Core.Drift.At(week).apply(m)
	return toRecord(member, week, m)
}

// hireWeek computes the drifted learning-curve target, then samples around it
// with the widened deviations.
func (s *Simulator) hireWeek(h NewHire, week int) model.PerformanceRecord {
	frac := float64(week-h.StartWeek) / float64(ActiveWeeks(h.StartWeek, s.params.TotalWeeks))
	target := metrics{
		throughput: lerp(h.Trajectory.Throughput, frac),
		rework:     lerp(h.Trajectory.ReworkRate, frac),
		overlap:    lerp(h.Trajectory.MeanOverlapQuality, frac),
		agreement:  lerp(h.Trajectory.AgreementScore, frac),
	}
	target = h.Drift.At(week).apply(target)

	b := s.params.Core.Baseline
	m := metrics{
		throughput: s.sample(target.throughput, b.Throughput.Std*h.StdScale),
		rework:     s.sample(target.rework, b.ReworkRate.Std*h.StdScale),
		overlap:    s.sample(target.overlap, b.MeanOverlapQuality.Std*h.StdScale),
		agreement:  s.sample(target.agreement, b.AgreementScore.Std*h.StdScale),
	}.clamp()
	return toRecord(h.Name, week, m)
}

func (s *Simulator) sample(mean, std float64) float64 {
	return mean + std*s.rng.NormFloat64()
}

func toRecord(person string, week int, m metrics) model.PerformanceRecord {
	return model.PerformanceRecord{
		Week:               week,
		Person:             person,
		Throughput:         int(math.RoundToEven(m.throughput)),
		ReworkRate:         m.rework,
		MeanOverlapQuality: m.overlap,
		AgreementScore:     m.agreement,
	}
}

// ActiveWeeks is the number of weeks a person starting at startWeek works,
// inclusive of the final week. Zero when they start after the last week.
func ActiveWeeks(startWeek, totalWeeks int) int {
	if startWeek > totalWeeks {
		return 0
	}
	return totalWeeks - startWeek + 1
}
