// Package manifest writes a YAML description of a generation run.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/okian/annosim/internal/domain/simulation"
	"github.com/okian/annosim/internal/domain/types"
)

// ErrWriteManifest wraps every manifest write failure.
var ErrWriteManifest = errors.New("manifest write failed")

// Counts are the row counts of the generated tables.
type Counts struct {
	Individual int `yaml:"individual"`
	Team       int `yaml:"team"`
	Members    int `yaml:"members"`
	Weeks      int `yaml:"weeks"`
}

// Manifest describes one generation run.
type Manifest struct {
	RunID       string                    `yaml:"run_id"`
	Seed        int64                     `yaml:"seed"`
	GeneratedAt time.Time                 `yaml:"generated_at"`
	Counts      Counts                    `yaml:"counts"`
	Outputs     []string                  `yaml:"outputs,omitempty"`
	Drift       []simulation.DriftSummary `yaml:"drift"`
	Ranking     []types.Entry             `yaml:"ranking"`
}

// NewRunID returns a fresh random run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Write encodes m as YAML at path, creating parent directories as needed.
func Write(path string, m Manifest) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteManifest, path, err)
	}
	f, err := os.Create(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteManifest, path, err)
	}

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		f.Close()
		return fmt.Errorf("%w: %s: %w", ErrWriteManifest, path, err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("%w: %s: %w", ErrWriteManifest, path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteManifest, path, err)
	}
	return nil
}

// Read decodes the manifest at path.
func Read(path string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return m, fmt.Errorf("read manifest %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("decode manifest %s: %w", path, err)
	}
	return m, nil
}
