package sink

import (
	"strconv"

	"github.com/okian/annosim/internal/domain/model"
)

// Column layouts shared by every sink.
var (
	IndividualColumns = []string{ //nolint:gochecknoglobals // fixed table layout
		"week", "person", "throughput", "reworked_count",
		"rework_rate", "mean_overlap_quality", "agreement_score",
	}
	TeamColumns = []string{ //nolint:gochecknoglobals // fixed table layout
		"week", "weekly_throughput", "rework_rate_pct", "agreement_score",
		"mean_overlap_quality", "cumulative_throughput",
	}
)

// IndividualRow renders r in IndividualColumns order.
func IndividualRow(r model.PerformanceRecord) []string {
	return []string{
		strconv.Itoa(r.Week),
		r.Person,
		strconv.Itoa(r.Throughput),
		strconv.Itoa(r.ReworkedCount()),
		formatFloat(r.ReworkRate, 4),
		formatFloat(r.MeanOverlapQuality, 4),
		formatFloat(r.AgreementScore, 4),
	}
}

// TeamRow renders s in TeamColumns order.
func TeamRow(s model.TeamWeekSummary) []string {
	return []string{
		strconv.Itoa(s.Week),
		strconv.Itoa(s.WeeklyThroughput),
		formatFloat(s.ReworkRatePct, 2),
		formatFloat(s.AgreementScore, 4),
		formatFloat(s.MeanOverlapQuality, 4),
		strconv.Itoa(s.CumulativeThroughput),
	}
}

func formatFloat(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}
