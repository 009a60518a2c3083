// Package model contains domain models passed between layers.
package model

import (
	"math"
	"sort"
	"strconv"
)

// PerformanceRecord is one person's output for one week.
type PerformanceRecord struct {
	Week               int     // 1-indexed week number
	Person             string  // roster name
	Throughput         int     // annotations produced, >= 0
	ReworkRate         float64 // fraction of throughput needing rework, [0,1]
	MeanOverlapQuality float64 // IoU-like quality score, [0,1]
	AgreementScore     float64 // inter-annotator reliability, [0,1]
}

// ReworkedCount is the number of annotations sent back for rework.
// Halves round to even.
func (r PerformanceRecord) ReworkedCount() int {
	return int(math.RoundToEven(float64(r.Throughput) * r.ReworkRate))
}

// Key identifies the (week, person) slot the record fills.
func (r PerformanceRecord) Key() string {
	return strconv.Itoa(r.Week) + "/" + r.Person
}

// TeamWeekSummary aggregates every record of a single week.
type TeamWeekSummary struct {
	Week                 int
	WeeklyThroughput     int
	ReworkRatePct        float64 // weighted by throughput, x100, 2 decimals
	AgreementScore       float64 // weighted by throughput, 4 decimals
	MeanOverlapQuality   float64 // weighted by throughput, 4 decimals
	CumulativeThroughput int
}

// SortRecords orders records by week, then person name. The slice is sorted
// in place.
func SortRecords(records []PerformanceRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Week != records[j].Week {
			return records[i].Week < records[j].Week
		}
		return records[i].Person < records[j].Person
	})
}

// Sorted returns a sorted copy, leaving the input untouched.
func Sorted(records []PerformanceRecord) []PerformanceRecord {
	out := make([]PerformanceRecord, len(records))
	copy(out, records)
	SortRecords(out)
	return out
}
