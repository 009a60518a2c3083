// Package service runs the annotation performance pipeline: simulate,
// guard, aggregate, rank and persist.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/annosim/internal/adapters/manifest"
	"github.com/okian/annosim/internal/adapters/sink"
	"github.com/okian/annosim/internal/config"
	"github.com/okian/annosim/internal/domain/aggregate"
	"github.com/okian/annosim/internal/domain/dedupe"
	"github.com/okian/annosim/internal/domain/model"
	"github.com/okian/annosim/internal/domain/scoring"
	"github.com/okian/annosim/internal/domain/simulation"
	"github.com/okian/annosim/internal/domain/types"
	"github.com/okian/annosim/pkg/logger"
	"github.com/okian/annosim/pkg/metrics"
)

// Roles used for the records metric.
const (
	roleCore    = "core"
	roleNewHire = "new_hire"
)

// Dataset is the in-memory output of a simulation: both tables.
type Dataset struct {
	Records []model.PerformanceRecord
	Team    []model.TeamWeekSummary
}

// Result describes a completed run.
type Result struct {
	RunID    string
	Seed     int64
	Dataset  Dataset
	Ranking  []types.Entry
	Drift    []simulation.DriftSummary
	Outputs  []string
	Manifest string
	Duration time.Duration
}

// Service orchestrates one generation run.
type Service struct {
	cfg       *config.Config
	logger    logger.Logger
	metrics   *metrics.Manager
	sinks     []sink.Sink
	rand      simulation.Normal
	generator Generator
	now       func() time.Time
}

// New constructs a Service. Without WithConfig it runs the reference scenario.
func New(opts ...Option) *Service {
	s := &Service{
		cfg: config.New(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.metrics == nil {
		s.metrics = metrics.Default()
	}
	return s
}

// Config returns the configuration the service runs with.
func (s *Service) Config() *config.Config {
	return s.cfg
}

// Simulate generates the individual table, verifies every (week, person)
// slot is filled at most once and aggregates the team table from the same
// records.
func (s *Service) Simulate(ctx context.Context) (Dataset, error) {
	start := time.Now()
	records, err := s.source().Simulate(ctx)
	s.observeStage("simulate", start)
	if err != nil {
		return Dataset{}, fmt.Errorf("simulate: %w", err)
	}
	if len(records) == 0 {
		return Dataset{}, ErrMissingRecords
	}

	if err := s.guard(ctx, records); err != nil {
		return Dataset{}, err
	}

	start = time.Now()
	team := aggregate.Weekly(records)
	s.observeStage("aggregate", start)

	return Dataset{Records: records, Team: team}, nil
}

// Rank simulates the dataset and ranks members worst first.
func (s *Service) Rank(ctx context.Context) ([]types.Entry, error) {
	ds, err := s.Simulate(ctx)
	if err != nil {
		return nil, err
	}
	return s.rank(ctx, ds.Records)
}

// Drift summarizes the configured drift profiles at the final week.
func (s *Service) Drift() []simulation.DriftSummary {
	return simulation.SummarizeDrift(s.cfg.Simulation)
}

// Run executes the full pipeline and persists both tables to every sink,
// followed by the optional manifest and metrics textfile. Sink failures
// are reported after every sink has been attempted; the returned Result
// still carries the in-memory tables.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	begin := time.Now()
	runID := manifest.NewRunID()
	log := s.logger
	s.metrics.RecordRun()

	log.Info(ctx, "starting generation run",
		logger.String("runID", runID),
		logger.Int64("seed", s.cfg.Seed),
		logger.Int("weeks", s.cfg.Simulation.TotalWeeks),
		logger.Int("coreMembers", len(s.cfg.Simulation.Core.Members)),
		logger.Int("newHires", len(s.cfg.Simulation.NewHires)),
	)

	ds, err := s.Simulate(ctx)
	if err != nil {
		log.Error(ctx, "simulation failed", logger.String("runID", runID), logger.Error(err))
		return nil, err
	}
	s.recordShape(ds)

	ranking, err := s.rank(ctx, ds.Records)
	if err != nil {
		return nil, err
	}

	res := &Result{
		RunID:   runID,
		Seed:    s.cfg.Seed,
		Dataset: ds,
		Ranking: ranking,
		Drift:   s.Drift(),
	}

	sinks, err := s.buildSinks(ctx)
	if err != nil {
		log.Error(ctx, "sink setup failed", logger.String("runID", runID), logger.Error(err))
		return res, err
	}
	out := sink.NewMulti(sinks, sink.WithObserver(func(name string, err error) {
		if err != nil {
			s.metrics.RecordSinkError(name)
			log.Error(ctx, "sink write failed", logger.String("sink", name), logger.Error(err))
			return
		}
		s.metrics.RecordSinkWrite(name)
	}))
	res.Outputs = out.Paths()

	start := time.Now()
	writeErr := errors.Join(
		out.WriteIndividual(ctx, ds.Records),
		out.WriteTeam(ctx, ds.Team),
	)
	if err := out.Close(); err != nil {
		log.Warn(ctx, "closing sinks", logger.Error(err))
	}
	s.observeStage("write", start)

	if path := s.cfg.Output.Path(s.cfg.Output.ManifestFile); path != "" && writeErr == nil {
		if err := manifest.Write(path, s.manifest(res)); err != nil {
			writeErr = err
			log.Error(ctx, "manifest write failed", logger.Error(err))
		} else {
			res.Manifest = path
		}
	}

	res.Duration = time.Since(begin)
	s.observeStage("run", begin)

	if path := s.cfg.Output.Path(s.cfg.Output.MetricsFile); path != "" {
		if err := s.metrics.WriteTextfile(path); err != nil {
			log.Warn(ctx, "metrics textfile write failed", logger.Error(err))
		}
	}

	if writeErr != nil {
		return res, writeErr
	}

	log.Info(ctx, "generation run complete",
		logger.String("runID", runID),
		logger.Int("records", len(ds.Records)),
		logger.Int("weeks", len(ds.Team)),
		logger.Int("cumulativeThroughput", finalThroughput(ds.Team)),
		logger.String("weakest", weakest(ranking)),
		logger.Any("outputs", res.Outputs),
		logger.Int64("durationMs", res.Duration.Milliseconds()),
	)
	return res, nil
}

func (s *Service) source() Generator {
	if s.generator != nil {
		return s.generator
	}
	opts := []simulation.Option{simulation.WithSeed(s.cfg.Seed)}
	if s.rand != nil {
		opts = append(opts, simulation.WithRand(s.rand))
	}
	return simulation.New(s.cfg.Simulation, opts...)
}

// guard feeds every record key through a fresh deduper.
func (s *Service) guard(ctx context.Context, records []model.PerformanceRecord) error {
	d := dedupe.NewInMemoryDeduper(dedupe.WithCapacity(len(records)))
	for _, r := range records {
		if d.SeenAndRecord(ctx, r.Key()) {
			s.metrics.RecordDuplicateRecord()
		}
	}
	if dups := d.Duplicates(); len(dups) > 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateRecord, strings.Join(dups, ", "))
	}
	return nil
}

func (s *Service) rank(ctx context.Context, records []model.PerformanceRecord) ([]types.Entry, error) {
	start := time.Now()
	defer s.observeStage("rank", start)

	scorer := scoring.NewScorer(
		scoring.WithWeights(s.cfg.Scoring.Weights),
		scoring.WithThroughputCeiling(s.cfg.Scoring.ThroughputCeiling),
	)
	ranking, err := scorer.Rank(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("rank members: %w", err)
	}
	return ranking, nil
}

// buildSinks returns the injected sinks, or the CSV sink plus the optional
// SQLite sink described by the output configuration.
func (s *Service) buildSinks(ctx context.Context) ([]sink.Sink, error) {
	if len(s.sinks) > 0 {
		return s.sinks, nil
	}
	o := s.cfg.Output
	sinks := []sink.Sink{sink.NewCSVSink(o.Dir,
		sink.WithIndividualFile(o.IndividualFile),
		sink.WithTeamFile(o.TeamFile),
	)}
	if path := o.Path(o.SQLitePath); path != "" {
		db, err := sink.NewSQLiteSink(ctx, path)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, db)
	}
	return sinks, nil
}

func (s *Service) recordShape(ds Dataset) {
	core := make(map[string]struct{}, len(s.cfg.Simulation.Core.Members))
	for _, m := range s.cfg.Simulation.Core.Members {
		core[m] = struct{}{}
	}
	var nCore, nHire int
	for _, r := range ds.Records {
		if _, ok := core[r.Person]; ok {
			nCore++
		} else {
			nHire++
		}
	}
	s.metrics.RecordRecords(roleCore, nCore)
	s.metrics.RecordRecords(roleNewHire, nHire)
	s.metrics.UpdateWeeksSimulated(len(ds.Team))
	for _, t := range ds.Team {
		s.metrics.UpdateWeeklyThroughput(t.Week, t.WeeklyThroughput)
	}
	s.metrics.UpdateTeamThroughput(finalThroughput(ds.Team))
}

func (s *Service) manifest(res *Result) manifest.Manifest {
	members := make(map[string]struct{})
	for _, r := range res.Dataset.Records {
		members[r.Person] = struct{}{}
	}
	return manifest.Manifest{
		RunID:       res.RunID,
		Seed:        res.Seed,
		GeneratedAt: s.now().UTC(),
		Counts: manifest.Counts{
			Individual: len(res.Dataset.Records),
			Team:       len(res.Dataset.Team),
			Members:    len(members),
			Weeks:      s.cfg.Simulation.TotalWeeks,
		},
		Outputs: res.Outputs,
		Drift:   res.Drift,
		Ranking: res.Ranking,
	}
}

func (s *Service) observeStage(stage string, start time.Time) {
	s.metrics.RecordStageDuration(stage, float64(time.Since(start).Microseconds())/1000)
}

func finalThroughput(team []model.TeamWeekSummary) int {
	if len(team) == 0 {
		return 0
	}
	return team[len(team)-1].CumulativeThroughput
}

func weakest(ranking []types.Entry) string {
	if len(ranking) == 0 {
		return ""
	}
	return ranking[0].Member
}
