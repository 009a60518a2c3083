package sink

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/okian/annosim/internal/domain/model"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const schema = `
CREATE TABLE IF NOT EXISTS individual_performance (
	week INTEGER NOT NULL,
	person TEXT NOT NULL,
	throughput INTEGER NOT NULL,
	reworked_count INTEGER NOT NULL,
	rework_rate REAL NOT NULL,
	mean_overlap_quality REAL NOT NULL,
	agreement_score REAL NOT NULL,
	PRIMARY KEY (week, person)
);

CREATE TABLE IF NOT EXISTS team_performance (
	week INTEGER PRIMARY KEY,
	weekly_throughput INTEGER NOT NULL,
	rework_rate_pct REAL NOT NULL,
	agreement_score REAL NOT NULL,
	mean_overlap_quality REAL NOT NULL,
	cumulative_throughput INTEGER NOT NULL
);
`

// SQLiteSink writes both tables into a SQLite database. Every write replaces
// the table contents inside a single transaction.
type SQLiteSink struct {
	mu     sync.Mutex
	db     *sql.DB
	path   string
	closed bool
}

// NewSQLiteSink opens (or creates) the database at path and ensures the schema.
func NewSQLiteSink(ctx context.Context, path string) (*SQLiteSink, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrWriteFailed, path, err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrWriteFailed, path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: schema %s: %w", ErrWriteFailed, path, err)
	}
	return &SQLiteSink{db: db, path: path}, nil
}

// Name implements Sink.
func (s *SQLiteSink) Name() string { return "sqlite" }

// Paths implements Locator.
func (s *SQLiteSink) Paths() []string { return []string{s.path} }

// DB exposes the underlying handle for read-back.
func (s *SQLiteSink) DB() *sql.DB { return s.db }

// WriteIndividual implements Sink.
func (s *SQLiteSink) WriteIndividual(ctx context.Context, records []model.PerformanceRecord) error {
	sorted := model.Sorted(records)
	return s.replace(ctx, "individual_performance",
		`INSERT INTO individual_performance
			(week, person, throughput, reworked_count, rework_rate, mean_overlap_quality, agreement_score)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
		len(sorted), func(i int) []any {
			r := sorted[i]
			return []any{r.Week, r.Person, r.Throughput, r.ReworkedCount(), r.ReworkRate, r.MeanOverlapQuality, r.AgreementScore}
		})
}

// WriteTeam implements Sink.
func (s *SQLiteSink) WriteTeam(ctx context.Context, summaries []model.TeamWeekSummary) error {
	return s.replace(ctx, "team_performance",
		`INSERT INTO team_performance
			(week, weekly_throughput, rework_rate_pct, agreement_score, mean_overlap_quality, cumulative_throughput)
			VALUES (?, ?, ?, ?, ?, ?)`,
		len(summaries), func(i int) []any {
			t := summaries[i]
			return []any{t.Week, t.WeeklyThroughput, t.ReworkRatePct, t.AgreementScore, t.MeanOverlapQuality, t.CumulativeThroughput}
		})
}

// replace clears table and inserts n rows built by row, all in one transaction.
func (s *SQLiteSink) replace(ctx context.Context, table, insert string, n int, row func(int) []any) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("%w: %s: %w", ErrWriteFailed, s.path, ErrClosed)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %s: begin: %w", ErrWriteFailed, s.path, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil { //nolint:gosec // table is a constant
		return fmt.Errorf("%w: %s: clear %s: %w", ErrWriteFailed, s.path, table, err)
	}
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("%w: %s: prepare %s: %w", ErrWriteFailed, s.path, table, err)
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if _, err = stmt.ExecContext(ctx, row(i)...); err != nil {
			return fmt.Errorf("%w: %s: insert %s: %w", ErrWriteFailed, s.path, table, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: %s: commit %s: %w", ErrWriteFailed, s.path, table, err)
	}
	return nil
}

// Close implements Sink.
func (s *SQLiteSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close %s: %w", s.path, err)
	}
	return nil
}
