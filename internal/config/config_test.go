package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nvandessel/resonance/internal/resonance"
)

func TestDefault(t *testing.T) {
	config := Default()

	ec, err := config.EngineConfig()
	if err != nil {
		t.Fatalf("EngineConfig() error = %v", err)
	}
	if ec != resonance.DefaultConfig() {
		t.Errorf("EngineConfig() = %+v, want the reference law", ec)
	}

	if config.Engine.RecordInterval != 10 {
		t.Errorf("expected RecordInterval 10, got %d", config.Engine.RecordInterval)
	}
	if config.Engine.DefaultCycles != 100 {
		t.Errorf("expected DefaultCycles 100, got %d", config.Engine.DefaultCycles)
	}
	if config.Analysis.DeficitCycles != 500 {
		t.Errorf("expected DeficitCycles 500, got %d", config.Analysis.DeficitCycles)
	}
	if config.Comparison.ExcellentDistance != 0.1 || config.Comparison.AcceptableDistance != 0.3 {
		t.Errorf("unexpected comparison thresholds: %+v", config.Comparison)
	}
	if !config.Store.Enabled {
		t.Error("expected Store.Enabled to be true by default")
	}
	if config.Logging.Level != "info" {
		t.Errorf("expected Logging.Level 'info', got '%s'", config.Logging.Level)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("Default().Validate() error = %v", err)
	}
}

func TestDefault_Independent(t *testing.T) {
	a := Default()
	a.Engine.Coupling[0][0] = 99
	a.Engine.Anchor[0] = 99

	b := Default()
	if b.Engine.Coupling[0][0] == 99 || b.Engine.Anchor[0] == 99 {
		t.Error("Default() shares slices between calls")
	}
	if resonance.DefaultCoupling[0][0] == 99 {
		t.Error("Default() aliases resonance.DefaultCoupling")
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
engine:
  anchor: [0.9, 0.9, 0.9, 0.9]
  time_step: 0.05
  record_interval: 25
comparison:
  excellent_distance: 0.05
  parallelism: 8
analysis:
  deficit_cycles: 1000
store:
  enabled: false
logging:
  level: debug
  format: json
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	config, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	ec, err := config.EngineConfig()
	if err != nil {
		t.Fatalf("EngineConfig() error = %v", err)
	}
	if ec.Anchor[2] != 0.9 {
		t.Errorf("expected anchor 0.9, got %v", ec.Anchor)
	}
	if ec.TimeStep != 0.05 {
		t.Errorf("expected TimeStep 0.05, got %f", ec.TimeStep)
	}
	// Keys the file omits keep their defaults.
	if ec.Coupling != resonance.DefaultCoupling {
		t.Errorf("expected default coupling, got %v", ec.Coupling)
	}
	if ec.KappaBase != 0.5 {
		t.Errorf("expected default KappaBase 0.5, got %f", ec.KappaBase)
	}

	if config.Engine.RecordInterval != 25 {
		t.Errorf("expected RecordInterval 25, got %d", config.Engine.RecordInterval)
	}
	if got := config.RunOptions().RecordInterval; got != 25 {
		t.Errorf("RunOptions().RecordInterval = %d, want 25", got)
	}
	cmp := config.ComparatorConfig()
	if cmp.ExcellentDistance != 0.05 || cmp.GoodDistance != 0.2 || cmp.Parallelism != 8 {
		t.Errorf("ComparatorConfig() = %+v", cmp)
	}
	if config.Analysis.DeficitCycles != 1000 {
		t.Errorf("expected DeficitCycles 1000, got %d", config.Analysis.DeficitCycles)
	}
	if config.Store.Enabled {
		t.Error("expected Store.Enabled false")
	}
	if config.Logging.Level != "debug" || config.Logging.Format != "json" {
		t.Errorf("unexpected logging config: %+v", config.Logging)
	}
}

func TestLoadFromFile_Errors(t *testing.T) {
	tmpDir := t.TempDir()

	if _, err := LoadFromFile(filepath.Join(tmpDir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(tmpDir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("engine: [not, a, map"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	if _, err := LoadFromFile(bad); err == nil || !strings.Contains(err.Error(), "parsing config file") {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("RESONANCE_LOG_LEVEL", "trace")
	t.Setenv("RESONANCE_LOG_FORMAT", "json")
	t.Setenv("RESONANCE_TIME_STEP", "0.02")
	t.Setenv("RESONANCE_RECORD_INTERVAL", "5")
	t.Setenv("RESONANCE_DEFICIT_CYCLES", "750")
	t.Setenv("RESONANCE_STORE_ENABLED", "false")
	t.Setenv("RESONANCE_PARALLELISM", "2")

	config := Default()
	applyEnvOverrides(config)

	if config.Logging.Level != "trace" {
		t.Errorf("expected Level 'trace', got '%s'", config.Logging.Level)
	}
	if config.Logging.Format != "json" {
		t.Errorf("expected Format 'json', got '%s'", config.Logging.Format)
	}
	if config.Engine.TimeStep != 0.02 {
		t.Errorf("expected TimeStep 0.02, got %f", config.Engine.TimeStep)
	}
	if config.Engine.RecordInterval != 5 {
		t.Errorf("expected RecordInterval 5, got %d", config.Engine.RecordInterval)
	}
	if config.Analysis.DeficitCycles != 750 {
		t.Errorf("expected DeficitCycles 750, got %d", config.Analysis.DeficitCycles)
	}
	if config.Store.Enabled {
		t.Error("expected Store.Enabled false")
	}
	if config.Comparison.Parallelism != 2 {
		t.Errorf("expected Parallelism 2, got %d", config.Comparison.Parallelism)
	}
}

func TestEnvOverrides_InvalidNumbersIgnored(t *testing.T) {
	t.Setenv("RESONANCE_TIME_STEP", "fast")
	t.Setenv("RESONANCE_RECORD_INTERVAL", "often")

	config := Default()
	applyEnvOverrides(config)

	if config.Engine.TimeStep != 0.1 {
		t.Errorf("expected TimeStep to stay 0.1, got %f", config.Engine.TimeStep)
	}
	if config.Engine.RecordInterval != 10 {
		t.Errorf("expected RecordInterval to stay 10, got %d", config.Engine.RecordInterval)
	}
}

func TestLoad(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	// No file: defaults plus env.
	t.Setenv("RESONANCE_DEFICIT_CYCLES", "42")
	config, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if config.Analysis.DeficitCycles != 42 {
		t.Errorf("expected DeficitCycles 42, got %d", config.Analysis.DeficitCycles)
	}

	// File values apply, env still wins.
	path := filepath.Join(home, ".resonance", "config.yaml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("analysis:\n  deficit_cycles: 900\nengine:\n  default_cycles: 300\n"), 0600); err != nil {
		t.Fatal(err)
	}
	config, err = Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if config.Engine.DefaultCycles != 300 {
		t.Errorf("expected DefaultCycles 300 from file, got %d", config.Engine.DefaultCycles)
	}
	if config.Analysis.DeficitCycles != 42 {
		t.Errorf("expected env DeficitCycles 42 to win, got %d", config.Analysis.DeficitCycles)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	want := Default()
	want.Engine.Coupling[1][2] = 0.75
	want.Comparison.Parallelism = 6
	if err := want.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if got.Engine.Coupling[1][2] != 0.75 || got.Comparison.Parallelism != 6 {
		t.Errorf("round trip lost values: coupling=%v parallelism=%d", got.Engine.Coupling, got.Comparison.Parallelism)
	}
	gotEC, _ := got.EngineConfig()
	wantEC, _ := want.EngineConfig()
	if gotEC != wantEC {
		t.Errorf("engine config after round trip = %+v, want %+v", gotEC, wantEC)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		modify     func(*ResonanceConfig)
		wantErr    bool
		wantConfig bool // error wraps resonance.ErrInvalidConfig
	}{
		{name: "default", modify: func(c *ResonanceConfig) {}},
		{name: "three coupling rows", modify: func(c *ResonanceConfig) { c.Engine.Coupling = c.Engine.Coupling[:3] }, wantErr: true, wantConfig: true},
		{name: "short coupling row", modify: func(c *ResonanceConfig) { c.Engine.Coupling[2] = []float64{1, 1} }, wantErr: true, wantConfig: true},
		{name: "zero coupling entry", modify: func(c *ResonanceConfig) { c.Engine.Coupling[0][1] = 0 }, wantErr: true, wantConfig: true},
		{name: "short equilibrium", modify: func(c *ResonanceConfig) { c.Engine.Equilibrium = []float64{0.5} }, wantErr: true, wantConfig: true},
		{name: "long anchor", modify: func(c *ResonanceConfig) { c.Engine.Anchor = []float64{1, 1, 1, 1, 1} }, wantErr: true, wantConfig: true},
		{name: "zero time step", modify: func(c *ResonanceConfig) { c.Engine.TimeStep = 0 }, wantErr: true, wantConfig: true},
		{name: "zero record interval", modify: func(c *ResonanceConfig) { c.Engine.RecordInterval = 0 }, wantErr: true},
		{name: "negative default cycles", modify: func(c *ResonanceConfig) { c.Engine.DefaultCycles = -1 }, wantErr: true},
		{name: "negative deficit cycles", modify: func(c *ResonanceConfig) { c.Analysis.DeficitCycles = -1 }, wantErr: true},
		{name: "negative threshold", modify: func(c *ResonanceConfig) { c.Comparison.GoodHarmony = -0.1 }, wantErr: true},
		{name: "zero parallelism", modify: func(c *ResonanceConfig) { c.Comparison.Parallelism = 0 }, wantErr: true},
		{name: "bad log level", modify: func(c *ResonanceConfig) { c.Logging.Level = "verbose" }, wantErr: true},
		{name: "empty log level", modify: func(c *ResonanceConfig) { c.Logging.Level = "" }},
		{name: "bad log format", modify: func(c *ResonanceConfig) { c.Logging.Format = "xml" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.modify(config)
			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantConfig && !errors.Is(err, resonance.ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}
