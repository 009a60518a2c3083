// Package simulation generates weekly performance records for an annotation
// team: a core roster sampled around stable baselines, a temporary training
// tax while a new hire onboards, power-law quality drift, and the new hire's
// own learning curve.
package simulation

import (
	"fmt"
	"math"
)

// Distribution is a normal distribution.
type Distribution struct {
	Mean float64 `koanf:"mean" yaml:"mean"`
	Std  float64 `koanf:"std" yaml:"std"`
}

// Baseline holds the per-week sampling distributions for each metric.
type Baseline struct {
	Throughput         Distribution `koanf:"throughput" yaml:"throughput"`
	ReworkRate         Distribution `koanf:"rework_rate" yaml:"rework_rate"`
	MeanOverlapQuality Distribution `koanf:"mean_overlap_quality" yaml:"mean_overlap_quality"`
	AgreementScore     Distribution `koanf:"agreement_score" yaml:"agreement_score"`
}

// PowerLaw evaluates Base * week^Exponent.
type PowerLaw struct {
	Base     float64 `koanf:"base" yaml:"base"`
	Exponent float64 `koanf:"exponent" yaml:"exponent"`
}

// At returns the drift accumulated by absolute week w.
func (p PowerLaw) At(week int) float64 {
	if week <= 0 {
		return 0
	}
	return p.Base * math.Pow(float64(week), p.Exponent)
}

// DriftProfile is the set of quality drift curves for one role. Throughput
// never drifts.
type DriftProfile struct {
	ReworkRate         PowerLaw `koanf:"rework_rate" yaml:"rework_rate"`
	MeanOverlapQuality PowerLaw `koanf:"mean_overlap_quality" yaml:"mean_overlap_quality"`
	AgreementScore     PowerLaw `koanf:"agreement_score" yaml:"agreement_score"`
}

// CoreTeam describes the experienced members present every week.
type CoreTeam struct {
	Members  []string     `koanf:"members" yaml:"members"`
	Baseline Baseline     `koanf:"baseline" yaml:"baseline"`
	Drift    DriftProfile `koanf:"drift" yaml:"drift"`
}

// Onboarding describes the training tax the core team pays while a new hire
// ramps up. The window covers [StartWeek, StartWeek+ImpactWeeks).
type Onboarding struct {
	StartWeek            int     `koanf:"start_week" yaml:"start_week"`
	ImpactWeeks          int     `koanf:"impact_weeks" yaml:"impact_weeks"`
	ThroughputDip        float64 `koanf:"throughput_dip" yaml:"throughput_dip"`
	QualityDipMultiplier float64 `koanf:"quality_dip_multiplier" yaml:"quality_dip_multiplier"`
	OverlapDipFraction   float64 `koanf:"overlap_dip_fraction" yaml:"overlap_dip_fraction"`
	AgreementDipFraction float64 `koanf:"agreement_dip_fraction" yaml:"agreement_dip_fraction"`
}

// Endpoints are the expected values on a hire's first week and at the end of
// the simulation.
type Endpoints struct {
	Start float64 `koanf:"start" yaml:"start"`
	End   float64 `koanf:"end" yaml:"end"`
}

// Trajectory is a hire's learning curve for every metric.
type Trajectory struct {
	Throughput         Endpoints `koanf:"throughput" yaml:"throughput"`
	ReworkRate         Endpoints `koanf:"rework_rate" yaml:"rework_rate"`
	MeanOverlapQuality Endpoints `koanf:"mean_overlap_quality" yaml:"mean_overlap_quality"`
	AgreementScore     Endpoints `koanf:"agreement_score" yaml:"agreement_score"`
}

// NewHire is a person joining mid-simulation.
type NewHire struct {
	Name       string       `koanf:"name" yaml:"name"`
	StartWeek  int          `koanf:"start_week" yaml:"start_week"`
	Trajectory Trajectory   `koanf:"trajectory" yaml:"trajectory"`
	Drift      DriftProfile `koanf:"drift" yaml:"drift"`
	// StdScale widens the core team's standard deviations for this hire.
	StdScale float64 `koanf:"std_scale" yaml:"std_scale"`
}

// Params is the complete, explicit input of a simulation run.
type Params struct {
	TotalWeeks int        `koanf:"total_weeks" yaml:"total_weeks"`
	Core       CoreTeam   `koanf:"core" yaml:"core"`
	Onboarding Onboarding `koanf:"onboarding" yaml:"onboarding"`
	NewHires   []NewHire  `koanf:"new_hires" yaml:"new_hires"`
}

// DefaultParams returns the reference scenario: a four person core team over
// 24 weeks, joined by Alex in week 9.
func DefaultParams() Params {
	return Params{
		TotalWeeks: 24,
		Core: CoreTeam{
			Members: []string{"Wang", "Sarah", "Michael", "Amir"},
			Baseline: Baseline{
				Throughput:         Distribution{Mean: 1075, Std: 50},
				ReworkRate:         Distribution{Mean: 0.02, Std: 0.005},
				MeanOverlapQuality: Distribution{Mean: 0.98, Std: 0.005},
				AgreementScore:     Distribution{Mean: 0.95, Std: 0.01},
			},
			Drift: DriftProfile{
				ReworkRate:         PowerLaw{Base: 0.0008, Exponent: 1.2},
				MeanOverlapQuality: PowerLaw{Base: 0.0002, Exponent: 1.8},
				AgreementScore:     PowerLaw{Base: 0.00008, Exponent: 1.8},
			},
		},
		Onboarding: Onboarding{
			StartWeek:            9,
			ImpactWeeks:          4,
			ThroughputDip:        0.20,
			QualityDipMultiplier: 1.5,
			OverlapDipFraction:   1.0 / 4,
			AgreementDipFraction: 1.0 / 3,
		},
		NewHires: []NewHire{DefaultNewHire()},
	}
}

// DefaultNewHire returns Alex's profile: joining in week 9, ramping from 650
// to 950 units with a 1.5x wider spread than the core team.
func DefaultNewHire() NewHire {
	return NewHire{
		Name:      "Alex",
		StartWeek: 9,
		Trajectory: Trajectory{
			Throughput:         Endpoints{Start: 650, End: 950},
			ReworkRate:         Endpoints{Start: 0.18, End: 0.12},
			MeanOverlapQuality: Endpoints{Start: 0.88, End: 0.95},
			AgreementScore:     Endpoints{Start: 0.75, End: 0.90},
		},
		Drift: DriftProfile{
			ReworkRate:         PowerLaw{Base: 0.0012, Exponent: 1.3},
			MeanOverlapQuality: PowerLaw{Base: 0.0003, Exponent: 1.9},
			AgreementScore:     PowerLaw{Base: 0.00012, Exponent: 1.9},
		},
		StdScale: 1.5,
	}
}

// Validate reports structurally invalid parameters. In-range values never
// make the simulation fail; a hire starting after the last week simply has
// no records.
func (p Params) Validate() error {
	if p.TotalWeeks < 1 {
		return fmt.Errorf("%w: total_weeks must be >= 1, got %d", ErrInvalidParams, p.TotalWeeks)
	}
	if p.Onboarding.ImpactWeeks < 0 {
		return fmt.Errorf("%w: onboarding impact_weeks must be >= 0, got %d", ErrInvalidParams, p.Onboarding.ImpactWeeks)
	}
	b := p.Core.Baseline
	for name, d := range map[string]Distribution{
		"throughput":           b.Throughput,
		"rework_rate":          b.ReworkRate,
		"mean_overlap_quality": b.MeanOverlapQuality,
		"agreement_score":      b.AgreementScore,
	} {
		if d.Std < 0 {
			return fmt.Errorf("%w: baseline %s std must be >= 0", ErrInvalidParams, name)
		}
	}

	if len(p.Core.Members) == 0 {
		return fmt.Errorf("%w: core members must not be empty", ErrInvalidParams)
	}

	seen := make(map[string]struct{}, len(p.Core.Members)+len(p.NewHires))
	for _, m := range p.Core.Members {
		if m == "" {
			return fmt.Errorf("%w: empty core member name", ErrInvalidParams)
		}
		if _, dup := seen[m]; dup {
			return fmt.Errorf("%w: duplicate person %q", ErrInvalidParams, m)
		}
		seen[m] = struct{}{}
	}
	for _, h := range p.NewHires {
		if h.Name == "" {
			return fmt.Errorf("%w: empty new hire name", ErrInvalidParams)
		}
		if _, dup := seen[h.Name]; dup {
			return fmt.Errorf("%w: duplicate person %q", ErrInvalidParams, h.Name)
		}
		seen[h.Name] = struct{}{}
		if h.StartWeek < 1 {
			return fmt.Errorf("%w: new hire %q start_week must be >= 1", ErrInvalidParams, h.Name)
		}
		if h.StdScale < 0 {
			return fmt.Errorf("%w: new hire %q std_scale must be >= 0", ErrInvalidParams, h.Name)
		}
	}
	return nil
}
