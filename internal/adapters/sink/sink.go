// Package sink persists the individual and team performance tables.
package sink

import (
	"context"

	"github.com/okian/annosim/internal/domain/model"
)

// Sink writes both performance tables to one destination. Each table is
// written independently; a failed write leaves the caller's data untouched.
type Sink interface {
	// Name identifies the sink in logs and metrics.
	Name() string

	// WriteIndividual replaces the individual table with records, sorted by
	// (week, person).
	WriteIndividual(ctx context.Context, records []model.PerformanceRecord) error

	// WriteTeam replaces the team table with summaries in week order.
	WriteTeam(ctx context.Context, summaries []model.TeamWeekSummary) error

	// Close releases any resources held by the sink.
	Close() error
}

// Locator is implemented by sinks that write to known paths.
type Locator interface {
	Paths() []string
}
