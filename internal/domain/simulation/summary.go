package simulation

// DriftSummary reports how far a role's quality has drifted by the final
// week of the run.
type DriftSummary struct {
	Role        string  `json:"role" yaml:"role"`
	ActiveWeeks int     `json:"active_weeks" yaml:"active_weeks"`
	Drift       Drift   `json:"drift" yaml:"drift"`
	ReworkRatio float64 `json:"rework_ratio" yaml:"rework_ratio"` // rework drift base relative to the core team
}

// SummarizeDrift evaluates every role's drift profile at TotalWeeks. The
// core team comes first, followed by each new hire.
func SummarizeDrift(p Params) []DriftSummary {
	out := make([]DriftSummary, 0, 1+len(p.NewHires))
	out = append(out, DriftSummary{
		Role:        "core",
		ActiveWeeks: p.TotalWeeks,
		Drift:       p.Core.Drift.At(p.TotalWeeks),
		ReworkRatio: 1,
	})
	coreBase := p.Core.Drift.ReworkRate.Base
	for _, h := range p.NewHires {
		ratio := 0.0
		if coreBase != 0 {
			ratio = h.Drift.ReworkRate.Base / coreBase
		}
		out = append(out, DriftSummary{
			Role:        h.Name,
			ActiveWeeks: ActiveWeeks(h.StartWeek, p.TotalWeeks),
			Drift:       h.Drift.At(p.TotalWeeks),
			ReworkRatio: ratio,
		})
	}
	return out
}
