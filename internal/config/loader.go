package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/annosim/internal/domain/simulation"
)

const (
	envPrefix    = "ANNOSIM_"
	envConfigVar = "ANNOSIM_CONFIG"
	envNesting   = "__"
)

// Load builds a Config by layering defaults, an optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. YAML file at path, or at $ANNOSIM_CONFIG when path is empty
//  3. env (prefix ANNOSIM_, "__" separates nesting levels)
func Load(_ context.Context, path string) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path == "" {
		path = os.Getenv(envConfigVar)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", ErrLoadConfig, path, err)
		}
	}

	// ANNOSIM_SIMULATION__ONBOARDING__START_WEEK -> simulation.onboarding.start_week.
	// Single underscores stay, matching the koanf tags.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		if s == envConfigVar {
			return ""
		}
		s = strings.TrimPrefix(s, envPrefix)
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, envNesting, ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: environment: %w", ErrLoadConfig, err)
	}

	cfg := *base
	// Lists replace the defaults wholesale instead of merging element-wise.
	if k.Exists("simulation.core.members") {
		cfg.Simulation.Core.Members = nil
	}
	if k.Exists("simulation.new_hires") {
		cfg.Simulation.NewHires = nil
	}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrLoadConfig, err)
	}
	if k.Exists("simulation.new_hires") {
		hires, err := loadNewHires(k)
		if err != nil {
			return nil, err
		}
		cfg.Simulation.NewHires = hires
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadNewHires decodes each listed hire on top of the default hire profile, so
// fields a file leaves out (drift, std_scale, trajectory endpoints) keep their
// defaults. Name and start week must always be given.
func loadNewHires(k *koanf.Koanf) ([]simulation.NewHire, error) {
	items := k.Slices("simulation.new_hires")
	hires := make([]simulation.NewHire, 0, len(items))
	for i, item := range items {
		h := simulation.DefaultNewHire()
		h.Name = ""
		h.StartWeek = 0
		if err := item.UnmarshalWithConf("", &h, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
			return nil, fmt.Errorf("%w: decode new_hires[%d]: %w", ErrLoadConfig, i, err)
		}
		hires = append(hires, h)
	}
	return hires, nil
}
