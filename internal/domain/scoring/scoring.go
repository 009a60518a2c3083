// Package scoring rates each team member on a composite of throughput and
// quality, and ranks the team from weakest to strongest.
package scoring

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/okian/annosim/internal/domain/model"
	"github.com/okian/annosim/internal/domain/types"
)

const defaultThroughputCeiling = 1200

// Weights sets how much each normalized metric contributes to the score.
type Weights struct {
	Throughput         float64 `koanf:"throughput" yaml:"throughput"`
	ReworkRate         float64 `koanf:"rework_rate" yaml:"rework_rate"`
	MeanOverlapQuality float64 `koanf:"mean_overlap_quality" yaml:"mean_overlap_quality"`
	AgreementScore     float64 `koanf:"agreement_score" yaml:"agreement_score"`
}

// DefaultWeights weighs every metric equally.
func DefaultWeights() Weights {
	return Weights{Throughput: 0.25, ReworkRate: 0.25, MeanOverlapQuality: 0.25, AgreementScore: 0.25}
}

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithWeights replaces the metric weights. Negative weights are ignored.
func WithWeights(w Weights) Option {
	return func(s *Scorer) {
		if w.Throughput >= 0 && w.ReworkRate >= 0 && w.MeanOverlapQuality >= 0 && w.AgreementScore >= 0 {
			s.weights = w
		}
	}
}

// WithThroughputCeiling sets the weekly throughput treated as a perfect 1.0.
func WithThroughputCeiling(ceiling float64) Option {
	return func(s *Scorer) {
		if ceiling > 0 {
			s.ceiling = ceiling
		}
	}
}

// Scorer computes member scores from performance records.
type Scorer struct {
	weights Weights
	ceiling float64
}

// NewScorer creates a scorer with equal weights and a 1200 unit ceiling.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{
		weights: DefaultWeights(),
		ceiling: defaultThroughputCeiling,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score averages member's records and combines the normalized averages.
// Throughput is capped at the ceiling, rework counts as 1-rate, overlap and
// agreement are used as-is. A member without records scores zero.
func (s *Scorer) Score(ctx context.Context, member string, records []model.PerformanceRecord) (types.Entry, error) {
	if err := ctx.Err(); err != nil {
		return types.Entry{}, fmt.Errorf("context cancelled: %w", err)
	}

	e := types.Entry{Member: member}
	for _, r := range records {
		if r.Person != member {
			continue
		}
		e.Weeks++
		e.AvgThroughput += float64(r.Throughput)
		e.AvgReworkRate += r.ReworkRate
		e.AvgOverlap += r.MeanOverlapQuality
		e.AvgAgreement += r.AgreementScore
	}
	if e.Weeks == 0 {
		return e, nil
	}

	n := float64(e.Weeks)
	e.AvgThroughput /= n
	e.AvgReworkRate /= n
	e.AvgOverlap /= n
	e.AvgAgreement /= n

	e.Score = math.Min(e.AvgThroughput/s.ceiling, 1)*s.weights.Throughput +
		math.Max(0, 1-e.AvgReworkRate)*s.weights.ReworkRate +
		e.AvgOverlap*s.weights.MeanOverlapQuality +
		e.AvgAgreement*s.weights.AgreementScore
	return e, nil
}

// Rank scores every member present in records and orders them by ascending
// score, so the weakest performer is first. Ties break by name.
func (s *Scorer) Rank(ctx context.Context, records []model.PerformanceRecord) ([]types.Entry, error) {
	members := make([]string, 0)
	seen := make(map[string]struct{})
	for _, r := range records {
		if _, ok := seen[r.Person]; ok {
			continue
		}
		seen[r.Person] = struct{}{}
		members = append(members, r.Person)
	}

	entries := make([]types.Entry, 0, len(members))
	for _, m := range members {
		e, err := s.Score(ctx, m, records)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score < entries[j].Score
		}
		return entries[i].Member < entries[j].Member
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// Weakest returns the lowest scoring member, or "" when there are no records.
func (s *Scorer) Weakest(ctx context.Context, records []model.PerformanceRecord) (string, error) {
	entries, err := s.Rank(ctx, records)
	if err != nil || len(entries) == 0 {
		return "", err
	}
	return entries[0].Member, nil
}
