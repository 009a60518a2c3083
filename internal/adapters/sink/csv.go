package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/okian/annosim/internal/domain/model"
)

const (
	defaultIndividualFile = "individual_performance.csv"
	defaultTeamFile       = "team_performance.csv"
	dirPerm               = 0o750
	filePerm              = 0o640
)

// CSVSink writes each table to its own CSV file inside dir.
type CSVSink struct {
	dir            string
	individualFile string
	teamFile       string
}

// NewCSVSink creates a CSV sink rooted at dir. The directory is created on
// the first write.
func NewCSVSink(dir string, opts ...CSVOption) *CSVSink {
	s := &CSVSink{
		dir:            dir,
		individualFile: defaultIndividualFile,
		teamFile:       defaultTeamFile,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements Sink.
func (s *CSVSink) Name() string { return "csv" }

// IndividualPath is where the individual table is written.
func (s *CSVSink) IndividualPath() string { return filepath.Join(s.dir, s.individualFile) }

// TeamPath is where the team table is written.
func (s *CSVSink) TeamPath() string { return filepath.Join(s.dir, s.teamFile) }

// Paths implements Locator.
func (s *CSVSink) Paths() []string { return []string{s.IndividualPath(), s.TeamPath()} }

// WriteIndividual implements Sink.
func (s *CSVSink) WriteIndividual(ctx context.Context, records []model.PerformanceRecord) error {
	sorted := model.Sorted(records)
	rows := make([][]string, 0, len(sorted))
	for _, r := range sorted {
		rows = append(rows, IndividualRow(r))
	}
	return s.write(ctx, s.IndividualPath(), IndividualColumns, rows)
}

// WriteTeam implements Sink.
func (s *CSVSink) WriteTeam(ctx context.Context, summaries []model.TeamWeekSummary) error {
	rows := make([][]string, 0, len(summaries))
	for _, t := range summaries {
		rows = append(rows, TeamRow(t))
	}
	return s.write(ctx, s.TeamPath(), TeamColumns, rows)
}

// Close implements Sink.
func (s *CSVSink) Close() error { return nil }

// write renders the table into a temp file next to path and renames it into
// place, so a failed write never leaves a truncated table behind.
func (s *CSVSink) write(ctx context.Context, path string, header []string, rows [][]string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteFailed, path, err)
	}
	if err := os.MkdirAll(s.dir, dirPerm); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteFailed, path, err)
	}

	tmp, err := os.CreateTemp(s.dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteFailed, path, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op once renamed

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %s: %w", ErrWriteFailed, path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %s: %w", ErrWriteFailed, path, err)
	}
	if err := tmp.Chmod(filePerm); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %s: %w", ErrWriteFailed, path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteFailed, path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteFailed, path, err)
	}
	return nil
}
