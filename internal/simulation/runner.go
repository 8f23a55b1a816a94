package simulation

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/nvandessel/resonance/internal/fidelity"
	"github.com/nvandessel/resonance/internal/models"
	"github.com/nvandessel/resonance/internal/resonance"
	"github.com/nvandessel/resonance/internal/store"
)

// Runner executes scenarios against the real engine and an isolated store.
type Runner struct {
	t     *testing.T
	store *store.SQLiteStore
}

// NewRunner creates a runner with an isolated SQLite store and sandboxed HOME.
func NewRunner(t *testing.T) *Runner {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	s, err := store.NewSQLiteStore(tmpDir)
	if err != nil {
		t.Fatalf("NewRunner: failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return &Runner{t: t, store: s}
}

// Store returns the runner's history store.
func (r *Runner) Store() *store.SQLiteStore {
	return r.store
}

// Run executes the scenario and fails the test on any engine error.
func (r *Runner) Run(scenario Scenario) SimulationResult {
	r.t.Helper()
	ctx := context.Background()

	engine := r.engine(scenario.Name, scenario.Config)

	opts := resonance.DefaultRunOptions()
	opts.Bounds = scenario.Bounds
	if scenario.RecordInterval > 0 {
		opts.RecordInterval = scenario.RecordInterval
	}
	opts.MaxSamples = scenario.MaxSamples

	var streamed []models.TrajectorySample
	opts.OnSample = func(s models.TrajectorySample) {
		streamed = append(streamed, s)
	}

	result, err := engine.RunCycles(ctx, scenario.Initial, scenario.Cycles, opts)
	if err != nil {
		r.t.Fatalf("scenario %s: RunCycles: %v", scenario.Name, err)
	}

	out := SimulationResult{Name: scenario.Name, Result: result, Streamed: streamed}
	if scenario.Persist {
		out.RecordID, out.Result = r.persist(ctx, scenario.Name, result)
	}
	return out
}

// RunAll executes each scenario in order.
func (r *Runner) RunAll(scenarios []Scenario) []SimulationResult {
	r.t.Helper()
	results := make([]SimulationResult, len(scenarios))
	for i, s := range scenarios {
		results[i] = r.Run(s)
	}
	return results
}

// Compare runs a pair scenario through the comparator and saves the verdict.
func (r *Runner) Compare(pair PairScenario) *models.ComparisonResult {
	r.t.Helper()
	ctx := context.Background()

	c := fidelity.NewComparator(r.engine(pair.Name, pair.Config), fidelity.DefaultComparatorConfig())
	result, err := c.AnalyzePair(ctx, pair.A, pair.B, pair.Cycles)
	if err != nil {
		r.t.Fatalf("pair %s: AnalyzePair: %v", pair.Name, err)
	}

	rec, err := store.NewComparisonRecord(result)
	if err != nil {
		r.t.Fatalf("pair %s: NewComparisonRecord: %v", pair.Name, err)
	}
	if _, err := r.store.Save(ctx, rec); err != nil {
		r.t.Fatalf("pair %s: Save: %v", pair.Name, err)
	}
	return result
}

func (r *Runner) engine(name string, cfg *resonance.Config) *resonance.Engine {
	r.t.Helper()
	if cfg == nil {
		return resonance.NewDefaultEngine()
	}
	e, err := resonance.NewEngine(*cfg)
	if err != nil {
		r.t.Fatalf("scenario %s: NewEngine: %v", name, err)
	}
	return e
}

// persist saves result and returns the decoded copy read back from the store.
func (r *Runner) persist(ctx context.Context, name string, result *models.ResonanceResult) (string, *models.ResonanceResult) {
	r.t.Helper()

	rec, err := store.NewRunRecord(result)
	if err != nil {
		r.t.Fatalf("scenario %s: NewRunRecord: %v", name, err)
	}
	id, err := r.store.Save(ctx, rec)
	if err != nil {
		r.t.Fatalf("scenario %s: Save: %v", name, err)
	}

	got, err := r.store.Get(ctx, id)
	if err != nil || got == nil {
		r.t.Fatalf("scenario %s: Get(%s) = %v, %v", name, id, got, err)
	}
	decoded, err := got.DecodeRun()
	if err != nil {
		r.t.Fatalf("scenario %s: DecodeRun: %v", name, err)
	}
	return id, decoded
}

// FormatResultDebug returns a debug string for a simulation result.
func FormatResultDebug(sr SimulationResult) string {
	var b strings.Builder
	res := sr.Result
	fmt.Fprintf(&b, "Scenario %s: cycles=%d initial=%v final=%v\n", sr.Name, res.Cycles, res.InitialState, res.FinalState)
	fmt.Fprintf(&b, "  harmony %.4f -> %.4f (peak %.4f @ %d)\n", res.InitialHarmony, res.FinalHarmony, res.PeakHarmony, res.PeakCycle)
	fmt.Fprintf(&b, "  dominance A=%.1f%% B=%.1f%% C=%.1f%% D=%.1f%% deficit=%s\n",
		res.Dominance[0], res.Dominance[1], res.Dominance[2], res.Dominance[3], res.Deficit)
	for _, s := range res.Trajectory {
		fmt.Fprintf(&b, "  cycle %d: %v harmony=%.4f\n", s.Cycle, s.State, s.Harmony)
	}
	return b.String()
}
