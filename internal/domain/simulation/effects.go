package simulation

import "math"

// metrics is the working state of one person-week before it is emitted.
type metrics struct {
	throughput float64
	rework     float64
	overlap    float64
	agreement  float64
}

// Tax is the strength of the training tax in a given week.
type Tax struct {
	ThroughputDip float64 // fraction removed from throughput
	QualityDip    float64 // fractional rework inflation
}

// Active reports whether any tax applies.
func (t Tax) Active() bool {
	return t.ThroughputDip != 0 || t.QualityDip != 0
}

// TaxAt returns the training tax for week. The effect is full strength on the
// first week of the window and decays linearly, reaching zero at
// progress 1; outside the window it is zero.
func (o Onboarding) TaxAt(week int) Tax {
	if o.ImpactWeeks <= 0 || week < o.StartWeek || week >= o.StartWeek+o.ImpactWeeks {
		return Tax{}
	}
	progress := float64(week-o.StartWeek) / float64(o.ImpactWeeks)
	remaining := 1 - progress
	return Tax{
		ThroughputDip: o.ThroughputDip * remaining,
		QualityDip:    (o.QualityDipMultiplier - 1) * remaining,
	}
}

// applyTax degrades a core member's week. Quality metrics take a fraction of
// the throughput dip.
func (o Onboarding) applyTax(m metrics, t Tax) metrics {
	m.throughput *= 1 - t.ThroughputDip
	m.rework *= 1 + t.QualityDip
	m.overlap *= 1 - t.ThroughputDip*o.OverlapDipFraction
	m.agreement *= 1 - t.ThroughputDip*o.AgreementDipFraction
	return m.clamp()
}

// Drift is the cumulative quality drift at a given week.
type Drift struct {
	ReworkRate         float64 `json:"rework_rate" yaml:"rework_rate"`                   // added to the rework rate
	MeanOverlapQuality float64 `json:"mean_overlap_quality" yaml:"mean_overlap_quality"` // overlap is scaled by 1-drift
	AgreementScore     float64 `json:"agreement_score" yaml:"agreement_score"`           // agreement is scaled by 1-drift
}

// At evaluates every curve of the profile at week.
func (d DriftProfile) At(week int) Drift {
	return Drift{
		ReworkRate:         d.ReworkRate.At(week),
		MeanOverlapQuality: d.MeanOverlapQuality.At(week),
		AgreementScore:     d.AgreementScore.At(week),
	}
}

func (d Drift) apply(m metrics) metrics {
	m.rework += d.ReworkRate
	m.overlap *= 1 - d.MeanOverlapQuality
	m.agreement *= 1 - d.AgreementScore
	return m.clamp()
}

func (m metrics) clamp() metrics {
	m.throughput = math.Max(0, m.throughput)
	m.rework = clampUnit(m.rework)
	m.overlap = clampUnit(m.overlap)
	m.agreement = clampUnit(m.agreement)
	return m
}

func clampUnit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func lerp(e Endpoints, frac float64) float64 {
	return e.Start + (e.End-e.Start)*frac
}
