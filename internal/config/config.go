// Package config loads placement settings from TOML or YAML files.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/OpenTraceLab/OpenTracePlace/pkg/placement"
	"github.com/OpenTraceLab/OpenTracePlace/pkg/refsel"
)

// Config is the file form of placement.Options. Keys left out of a file
// keep their DefaultConfig values.
type Config struct {
	// Margin is the edge clearance in board units (nanometres for KiCad)
	Margin int64 `toml:"margin" yaml:"margin"`
	// MarginMM overrides Margin when set
	MarginMM *float64 `toml:"margin_mm,omitempty" yaml:"margin_mm,omitempty"`

	Objective  string `toml:"objective" yaml:"objective"`
	Iterations int    `toml:"iterations" yaml:"iterations"`

	// Ignored holds reference selectors such as "J1" or "H1-H4"
	Ignored []string `toml:"ignored" yaml:"ignored"`
	Seed    *uint64  `toml:"seed,omitempty" yaml:"seed,omitempty"`

	Collision        string `toml:"collision" yaml:"collision"`
	IgnoredObstacles bool   `toml:"ignored_obstacles" yaml:"ignored_obstacles"`

	// History is the run history database, empty disables recording
	History string `toml:"history" yaml:"history"`
}

// DefaultConfig returns the settings used when no file is found
func DefaultConfig() *Config {
	opts := placement.DefaultOptions()
	return &Config{
		Margin:           opts.Margin,
		Objective:        opts.Objective.String(),
		Iterations:       opts.Iterations,
		Collision:        opts.Policy.Sides.String(),
		IgnoredObstacles: opts.Policy.IgnoredObstacles,
	}
}

// Load reads the config at explicit, or the first file FindConfigPath finds.
// Without any file it returns DefaultConfig and an empty path.
func Load(explicit string) (*Config, string, error) {
	path := explicit
	if path == "" {
		path = FindConfigPath()
	}
	if path == "" {
		return DefaultConfig(), "", nil
	}
	return LoadFromPath(path)
}

// LoadFromPath reads the config at path. The format follows the extension;
// anything other than .toml is read as YAML.
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, path, fmt.Errorf("parse config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, path, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, path, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, path, nil
}

// Options converts the config into engine options. IgnoredIDs is left empty;
// resolve it against a board with IgnoreSelector.
func (c *Config) Options() (placement.Options, error) {
	opts := placement.DefaultOptions()

	opts.Margin = c.Margin
	if c.MarginMM != nil {
		opts.Margin = int64(math.Round(*c.MarginMM * 1e6))
	}
	opts.Iterations = c.Iterations

	obj, err := placement.ParseObjective(c.Objective)
	if err != nil {
		return opts, err
	}
	opts.Objective = obj

	sides, err := placement.ParseSidePolicy(c.Collision)
	if err != nil {
		return opts, err
	}
	opts.Policy = placement.Policy{Sides: sides, IgnoredObstacles: c.IgnoredObstacles}

	if c.Seed != nil {
		seed := *c.Seed
		opts.Seed = &seed
	}
	return opts, opts.Validate()
}

// IgnoreSelector compiles the ignored selectors into one
func (c *Config) IgnoreSelector() (*refsel.Selector, error) {
	return refsel.Parse(strings.Join(c.Ignored, ", "))
}

// Validate checks every setting without needing a board
func (c *Config) Validate() error {
	if _, err := c.Options(); err != nil {
		return err
	}
	if _, err := c.IgnoreSelector(); err != nil {
		return &placement.Error{Code: placement.CodeInvalidConfiguration, Message: "invalid ignored selector", Cause: err}
	}
	return nil
}
