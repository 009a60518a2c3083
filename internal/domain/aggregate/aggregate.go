// Package aggregate reduces individual performance records to team-level
// weekly statistics.
package aggregate

import (
	"math"
	"sort"

	"github.com/okian/annosim/internal/domain/model"
)

const percentMultiplier = 100

// Weekly groups records by week and returns one summary per week present,
// in ascending week order. Weeks without records are skipped, never emitted
// as zero rows. Quality metrics are throughput-weighted; a week whose total
// throughput is zero reports zero for every weighted metric.
func Weekly(records []model.PerformanceRecord) []model.TeamWeekSummary {
	byWeek := make(map[int][]model.PerformanceRecord)
	for _, r := range records {
		byWeek[r.Week] = append(byWeek[r.Week], r)
	}

	weeks := make([]int, 0, len(byWeek))
	for w := range byWeek {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)

	out := make([]model.TeamWeekSummary, 0, len(weeks))
	cumulative := 0
	for _, w := range weeks {
		s := summarize(w, byWeek[w])
		cumulative += s.WeeklyThroughput
		s.CumulativeThroughput = cumulative
		out = append(out, s)
	}
	return out
}

func summarize(week int, group []model.PerformanceRecord) model.TeamWeekSummary {
	var (
		throughput int
		reworked   int
		agreement  float64
		overlap    float64
	)
	for _, r := range group {
		throughput += r.Throughput
		reworked += r.ReworkedCount()
		agreement += r.AgreementScore * float64(r.Throughput)
		overlap += r.MeanOverlapQuality * float64(r.Throughput)
	}

	s := model.TeamWeekSummary{Week: week, WeeklyThroughput: throughput}
	if throughput == 0 {
		return s
	}
	total := float64(throughput)
	s.ReworkRatePct = round(float64(reworked)/total*percentMultiplier, 2)
	s.AgreementScore = round(agreement/total, 4)
	s.MeanOverlapQuality = round(overlap/total, 4)
	return s
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
