// Package config defines process configuration and its loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Loading layers defaults, an optional YAML file and ANNOSIM_ env vars.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/okian/annosim/internal/domain/scoring"
	"github.com/okian/annosim/internal/domain/simulation"
	"github.com/okian/annosim/pkg/logger"
)

const defaultSeed = 42

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Seed drives the simulation's random stream. Equal seeds give equal
	// output tables.
	Seed int64 `koanf:"seed"`

	// Simulation is the generative model: roster, baselines, onboarding
	// event, drift and new hire trajectories.
	Simulation simulation.Params `koanf:"simulation"`

	Scoring Scoring `koanf:"scoring"`

	Output Output `koanf:"output"`
}

// Scoring configures the member ranking.
type Scoring struct {
	Weights           scoring.Weights `koanf:"weights"`
	ThroughputCeiling float64         `koanf:"throughput_ceiling"`
}

// Output names the files a run writes. Paths are relative to Dir unless
// absolute. Empty optional paths disable that output.
type Output struct {
	Dir            string `koanf:"dir"`
	IndividualFile string `koanf:"individual_file"`
	TeamFile       string `koanf:"team_file"`

	// Optional outputs.
	SQLitePath   string `koanf:"sqlite_path"`
	ManifestFile string `koanf:"manifest_file"`
	MetricsFile  string `koanf:"metrics_file"`
}

// Path resolves name against Dir. Absolute names are returned unchanged and
// an empty name stays empty.
func (o Output) Path(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(o.Dir, name)
}

// New creates a Config holding the reference scenario.
func New() *Config {
	return &Config{
		LogLevel:   "info",
		LogFormat:  logger.FormatText,
		Seed:       defaultSeed,
		Simulation: simulation.DefaultParams(),
		Scoring: Scoring{
			Weights:           scoring.DefaultWeights(),
			ThroughputCeiling: 1200,
		},
		Output: Output{
			Dir:            "public",
			IndividualFile: "individual_performance.csv",
			TeamFile:       "team_performance.csv",
			ManifestFile:   "manifest.yaml",
		},
	}
}

// Validate checks the configuration for values the run cannot use.
func (c *Config) Validate() error {
	switch c.LogFormat {
	case logger.FormatText, logger.FormatJSON:
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	if c.Output.IndividualFile == "" || c.Output.TeamFile == "" {
		return fmt.Errorf("%w: output individual_file and team_file must not be empty", ErrInvalidConfig)
	}
	if c.Scoring.ThroughputCeiling <= 0 {
		return fmt.Errorf("%w: scoring throughput_ceiling must be > 0", ErrInvalidConfig)
	}
	if err := c.Simulation.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
