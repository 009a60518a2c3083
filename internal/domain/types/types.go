// Package types contains common types used across the application
package types

// Entry is one row of the member ranking. Rank 1 is the weakest performer.
type Entry struct {
	Rank          int     `json:"rank" yaml:"rank"`
	Member        string  `json:"member" yaml:"member"`
	Score         float64 `json:"score" yaml:"score"`
	AvgThroughput float64 `json:"avg_throughput" yaml:"avg_throughput"`
	AvgReworkRate float64 `json:"avg_rework_rate" yaml:"avg_rework_rate"`
	AvgOverlap    float64 `json:"avg_mean_overlap_quality" yaml:"avg_mean_overlap_quality"`
	AvgAgreement  float64 `json:"avg_agreement_score" yaml:"avg_agreement_score"`
	Weeks         int     `json:"weeks" yaml:"weeks"`
}
