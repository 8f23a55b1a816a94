// Package config provides unified configuration loading for resonance.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/nvandessel/resonance/internal/constants"
	"github.com/nvandessel/resonance/internal/fidelity"
	"github.com/nvandessel/resonance/internal/models"
	"github.com/nvandessel/resonance/internal/resonance"
	"github.com/nvandessel/resonance/internal/store"
	"gopkg.in/yaml.v3"
)

// ConfigFile is the name of the user config file inside ~/.resonance.
const ConfigFile = "config.yaml"

// ResonanceConfig contains all resonance configuration settings.
type ResonanceConfig struct {
	// Engine holds the coupling law and integration settings.
	Engine EngineSettings `json:"engine" yaml:"engine"`

	// Comparison holds the pair grading thresholds.
	Comparison ComparisonConfig `json:"comparison" yaml:"comparison"`

	// Analysis holds deficit analysis settings.
	Analysis AnalysisConfig `json:"analysis" yaml:"analysis"`

	// Store controls the result history database.
	Store StoreConfig `json:"store" yaml:"store"`

	// Logging contains settings for operational and decision logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// EngineSettings is the YAML form of resonance.Config. Matrices and vectors
// are slices here so a malformed file reports a length error instead of
// silently zero-filling.
type EngineSettings struct {
	Coupling    [][]float64 `json:"coupling" yaml:"coupling"`
	Equilibrium []float64   `json:"equilibrium" yaml:"equilibrium"`
	Anchor      []float64   `json:"anchor" yaml:"anchor"`

	TimeStep            float64 `json:"time_step" yaml:"time_step"`
	KappaBase           float64 `json:"kappa_base" yaml:"kappa_base"`
	EquilibriumPullRate float64 `json:"equilibrium_pull_rate" yaml:"equilibrium_pull_rate"`
	BoundaryResistance  float64 `json:"boundary_resistance" yaml:"boundary_resistance"`

	// RecordInterval is the default trajectory sampling interval.
	RecordInterval int `json:"record_interval" yaml:"record_interval"`

	// DefaultCycles is used by run and compare when no cycle count is given.
	DefaultCycles int `json:"default_cycles" yaml:"default_cycles"`
}

// ComparisonConfig configures pair grading and batch fan-out.
type ComparisonConfig struct {
	ExcellentDistance  float64 `json:"excellent_distance" yaml:"excellent_distance"`
	GoodDistance       float64 `json:"good_distance" yaml:"good_distance"`
	GoodHarmony        float64 `json:"good_harmony" yaml:"good_harmony"`
	AcceptableDistance float64 `json:"acceptable_distance" yaml:"acceptable_distance"`

	// Parallelism bounds concurrent pairs in batch comparisons.
	Parallelism int `json:"parallelism" yaml:"parallelism"`
}

// AnalysisConfig configures deficit analysis.
type AnalysisConfig struct {
	// DeficitCycles is the default cycle budget for deficit analysis.
	DeficitCycles int `json:"deficit_cycles" yaml:"deficit_cycles"`
}

// StoreConfig configures the result history.
type StoreConfig struct {
	// Enabled turns on saving results to .resonance/resonance.db.
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// LoggingConfig configures resonance's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables decision logging to .resonance/decisions.jsonl.
	Level string `json:"level" yaml:"level"`

	// Format is "text" (default) or "json".
	Format string `json:"format" yaml:"format"`
}

// Default returns a ResonanceConfig holding the reference law.
func Default() *ResonanceConfig {
	def := resonance.DefaultConfig()
	coupling := make([][]float64, len(def.Coupling))
	for i, row := range def.Coupling {
		coupling[i] = append([]float64(nil), row[:]...)
	}

	cmp := fidelity.DefaultComparatorConfig()
	return &ResonanceConfig{
		Engine: EngineSettings{
			Coupling:            coupling,
			Equilibrium:         def.Equilibrium.Slice(),
			Anchor:              def.Anchor.Slice(),
			TimeStep:            def.TimeStep,
			KappaBase:           def.KappaBase,
			EquilibriumPullRate: def.EquilibriumPullRate,
			BoundaryResistance:  def.BoundaryResistance,
			RecordInterval:      constants.DefaultRecordInterval,
			DefaultCycles:       constants.DefaultCycles,
		},
		Comparison: ComparisonConfig{
			ExcellentDistance:  cmp.ExcellentDistance,
			GoodDistance:       cmp.GoodDistance,
			GoodHarmony:        cmp.GoodHarmony,
			AcceptableDistance: cmp.AcceptableDistance,
			Parallelism:        cmp.Parallelism,
		},
		Analysis: AnalysisConfig{
			DeficitCycles: constants.DefaultDeficitCycles,
		},
		Store: StoreConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultPath returns ~/.resonance/config.yaml.
func DefaultPath() (string, error) {
	globalDir, err := store.GlobalResonancePath()
	if err != nil {
		return "", err
	}
	return filepath.Join(globalDir, ConfigFile), nil
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.resonance/config.yaml -> environment variables
func Load() (*ResonanceConfig, error) {
	config := Default()

	if configPath, err := DefaultPath(); err == nil {
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file. Keys the file
// omits keep their defaults.
func LoadFromFile(path string) (*ResonanceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return config, nil
}

// Save writes the configuration to path as YAML, creating parent directories.
func (c *ResonanceConfig) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks that the configuration is valid.
func (c *ResonanceConfig) Validate() error {
	if _, err := c.EngineConfig(); err != nil {
		return err
	}

	if c.Engine.RecordInterval <= 0 {
		return fmt.Errorf("record_interval must be positive, got %d", c.Engine.RecordInterval)
	}
	if c.Engine.DefaultCycles < 0 {
		return fmt.Errorf("default_cycles must be non-negative, got %d", c.Engine.DefaultCycles)
	}
	if c.Analysis.DeficitCycles < 0 {
		return fmt.Errorf("deficit_cycles must be non-negative, got %d", c.Analysis.DeficitCycles)
	}

	thresholds := map[string]float64{
		"excellent_distance":  c.Comparison.ExcellentDistance,
		"good_distance":       c.Comparison.GoodDistance,
		"good_harmony":        c.Comparison.GoodHarmony,
		"acceptable_distance": c.Comparison.AcceptableDistance,
	}
	for name, v := range thresholds {
		if v < 0 {
			return fmt.Errorf("%s must be non-negative, got %f", name, v)
		}
	}
	if c.Comparison.Parallelism < 1 {
		return fmt.Errorf("parallelism must be at least 1, got %d", c.Comparison.Parallelism)
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true, "warn": true, "error": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, warn, error, or empty for default)", c.Logging.Level)
	}
	if c.Logging.Format != "" && c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("invalid log format: %s (valid: text, json)", c.Logging.Format)
	}

	return nil
}

// EngineConfig converts the engine settings to a validated resonance.Config.
func (c *ResonanceConfig) EngineConfig() (resonance.Config, error) {
	var out resonance.Config

	if len(c.Engine.Coupling) != constants.Dimension {
		return out, fmt.Errorf("coupling must have %d rows, got %d: %w",
			constants.Dimension, len(c.Engine.Coupling), resonance.ErrInvalidConfig)
	}
	for i, row := range c.Engine.Coupling {
		if len(row) != constants.Dimension {
			return out, fmt.Errorf("coupling row %d must have %d entries, got %d: %w",
				i, constants.Dimension, len(row), resonance.ErrInvalidConfig)
		}
		copy(out.Coupling[i][:], row)
	}

	eq, err := models.ParseVector4(c.Engine.Equilibrium)
	if err != nil {
		return out, fmt.Errorf("equilibrium: %w: %w", err, resonance.ErrInvalidConfig)
	}
	anchor, err := models.ParseVector4(c.Engine.Anchor)
	if err != nil {
		return out, fmt.Errorf("anchor: %w: %w", err, resonance.ErrInvalidConfig)
	}

	out.Equilibrium = eq
	out.Anchor = anchor
	out.TimeStep = c.Engine.TimeStep
	out.KappaBase = c.Engine.KappaBase
	out.EquilibriumPullRate = c.Engine.EquilibriumPullRate
	out.BoundaryResistance = c.Engine.BoundaryResistance

	if err := out.Validate(); err != nil {
		return out, err
	}
	return out, nil
}

// ComparatorConfig returns the grading thresholds for a fidelity.Comparator.
func (c *ResonanceConfig) ComparatorConfig() fidelity.ComparatorConfig {
	return fidelity.ComparatorConfig{
		ExcellentDistance:  c.Comparison.ExcellentDistance,
		GoodDistance:       c.Comparison.GoodDistance,
		GoodHarmony:        c.Comparison.GoodHarmony,
		AcceptableDistance: c.Comparison.AcceptableDistance,
		Parallelism:        c.Comparison.Parallelism,
	}
}

// RunOptions returns run options carrying the configured record interval.
func (c *ResonanceConfig) RunOptions() resonance.RunOptions {
	opts := resonance.DefaultRunOptions()
	opts.RecordInterval = c.Engine.RecordInterval
	return opts
}

// applyEnvOverrides applies environment variable overrides to the config.
// Values that fail to parse are ignored.
func applyEnvOverrides(config *ResonanceConfig) {
	if v := os.Getenv("RESONANCE_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}

	if v := os.Getenv("RESONANCE_LOG_FORMAT"); v != "" {
		config.Logging.Format = v
	}

	if v := os.Getenv("RESONANCE_TIME_STEP"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Engine.TimeStep = f
		}
	}

	if v := os.Getenv("RESONANCE_RECORD_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Engine.RecordInterval = n
		}
	}

	if v := os.Getenv("RESONANCE_DEFICIT_CYCLES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Analysis.DeficitCycles = n
		}
	}

	if v := os.Getenv("RESONANCE_STORE_ENABLED"); v != "" {
		config.Store.Enabled = v == "true" || v == "1"
	}

	if v := os.Getenv("RESONANCE_PARALLELISM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Comparison.Parallelism = n
		}
	}
}
