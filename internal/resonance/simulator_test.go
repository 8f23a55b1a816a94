package resonance

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/nvandessel/resonance/internal/models"
)

func run(t *testing.T, e *Engine, initial []float64, cycles int, opts RunOptions) *models.ResonanceResult {
	t.Helper()
	result, err := e.RunCycles(context.Background(), initial, cycles, opts)
	if err != nil {
		t.Fatalf("RunCycles(%v, %d): %v", initial, cycles, err)
	}
	return result
}

func dominanceSum(r *models.ResonanceResult) float64 {
	var sum float64
	for _, d := range r.Dominance {
		sum += d
	}
	return sum
}

func TestRunCycles_ZeroCycles(t *testing.T) {
	e := NewDefaultEngine()
	initial := []float64{0.2, 0.6, 0.8, 0.6}

	r := run(t, e, initial, 0, DefaultRunOptions())

	if r.FinalState != r.InitialState || r.FinalState != (models.Vector4{0.2, 0.6, 0.8, 0.6}) {
		t.Errorf("FinalState = %v, want initial %v", r.FinalState, initial)
	}
	if r.FinalHarmony != r.InitialHarmony || r.FinalHarmony != e.Harmony(r.InitialState) {
		t.Errorf("FinalHarmony = %v, InitialHarmony = %v", r.FinalHarmony, r.InitialHarmony)
	}
	if dominanceSum(r) != 0 {
		t.Errorf("Dominance = %v, want all zero", r.Dominance)
	}
	if r.Deficit.IsSome() {
		t.Errorf("Deficit = %v, want none", r.Deficit)
	}
	if len(r.Trajectory) != 1 || r.Trajectory[0].Cycle != 0 || r.Trajectory[0].State != r.InitialState {
		t.Errorf("Trajectory = %+v, want a single final sample", r.Trajectory)
	}
}

func TestRunCycles_ZeroCyclesKeepsOutOfRangeInput(t *testing.T) {
	e := NewDefaultEngine()
	r := run(t, e, []float64{1.5, -0.2, 0.5, 0.5}, 0, DefaultRunOptions())
	if r.FinalState != (models.Vector4{1.5, -0.2, 0.5, 0.5}) {
		t.Errorf("FinalState = %v, want the unclamped input", r.FinalState)
	}
}

func TestRunCycles_StaysWithinBounds(t *testing.T) {
	e := NewDefaultEngine()

	initials := [][]float64{
		{0.6, 0.6, 0.6, 0.6},
		{0.2, 0.6, 0.8, 0.6},
		{0, 0, 0, 0},
		{1.5, -0.2, 3.0, 0.5},
		{1, 1, 1, 1},
	}
	boundsSets := [][]float64{
		nil,
		{0.7, 0.6, 0.8, 0.75},
		{0, 0.5, 2, 1},
	}

	for _, cycles := range []int{100, 100000} {
		for _, initial := range initials {
			for _, bounds := range boundsSets {
				opts := DefaultRunOptions()
				opts.Bounds = bounds
				opts.RecordInterval = 1000
				r := run(t, e, initial, cycles, opts)

				for i, x := range r.FinalState {
					if x < 0 || x > r.Bounds[i] {
						t.Errorf("cycles=%d initial=%v bounds=%v: final[%d] = %v outside [0, %v]",
							cycles, initial, r.Bounds, i, x, r.Bounds[i])
					}
				}
				for _, s := range r.Trajectory {
					for i, x := range s.State {
						if x < 0 || x > r.Bounds[i] {
							t.Errorf("cycle %d: state[%d] = %v outside [0, %v]", s.Cycle, i, x, r.Bounds[i])
						}
					}
				}
			}
		}
	}
}

func TestRunCycles_DominanceSumsTo100(t *testing.T) {
	e := NewDefaultEngine()
	for _, cycles := range []int{1, 3, 7, 100, 333} {
		r := run(t, e, []float64{0.1, 0.4, 0.3, 0.2}, cycles, DefaultRunOptions())
		if sum := dominanceSum(r); math.Abs(sum-100) > 1e-9 {
			t.Errorf("cycles=%d: dominance sums to %v, want 100", cycles, sum)
		}
	}
}

func TestRunCycles_SubAnchorStateRises(t *testing.T) {
	e := NewDefaultEngine()
	r := run(t, e, []float64{0.6, 0.6, 0.6, 0.6}, 100, DefaultRunOptions())

	if math.Abs(r.InitialHarmony-1/1.8) > 1e-12 {
		t.Errorf("InitialHarmony = %v, want %v", r.InitialHarmony, 1/1.8)
	}
	if r.FinalHarmony <= r.InitialHarmony {
		t.Errorf("FinalHarmony = %v, want > %v", r.FinalHarmony, r.InitialHarmony)
	}
	if r.PeakHarmony != 1.0 || r.PeakCycle != 1 {
		t.Errorf("peak = %v at cycle %d, want 1.0 at cycle 1", r.PeakHarmony, r.PeakCycle)
	}
}

func TestRunCycles_DeficitAxis(t *testing.T) {
	e := NewDefaultEngine()
	r := run(t, e, []float64{0.2, 0.6, 0.8, 0.6}, 200, DefaultRunOptions())

	if r.DominantAxis != models.AxisA {
		t.Errorf("DominantAxis = %v, want A (dominance %v)", r.DominantAxis, r.Dominance)
	}
	for _, a := range models.Axes[1:] {
		if r.Dominance[a] >= r.Dominance[models.AxisA] {
			t.Errorf("axis %v dominance %v >= A's %v", a, r.Dominance[a], r.Dominance[models.AxisA])
		}
	}
	if !r.Deficit.Equal(models.SomeAxis(models.AxisA)) {
		t.Errorf("Deficit = %v, want A", r.Deficit)
	}
}

func TestRunCycles_ContainerDeterminesAttractor(t *testing.T) {
	e := NewDefaultEngine()
	opts := DefaultRunOptions()
	opts.Bounds = []float64{0.7, 0.6, 0.8, 0.75}

	for _, cycles := range []int{100, 250} {
		r := run(t, e, []float64{0.3, 0.3, 0.3, 0.3}, cycles, opts)
		assertVectorNear(t, "FinalState", r.FinalState, models.Vector4{0.7, 0.6, 0.8, 0.75}, 1e-6)
		if !r.Deficit.Equal(models.SomeAxis(models.AxisC)) {
			t.Errorf("cycles=%d: Deficit = %v, want C (largest bound)", cycles, r.Deficit)
		}
	}
}

func TestRunCycles_EquilibriumOnlyLaw(t *testing.T) {
	cfg := DefaultConfig()
	for i := range cfg.Coupling {
		for j := range cfg.Coupling[i] {
			if i == j {
				cfg.Coupling[i][j] = 1
			} else {
				cfg.Coupling[i][j] = 1e-9
			}
		}
	}
	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	r := run(t, e, []float64{0.3, 0.3, 0.3, 0.3}, 1000, DefaultRunOptions())
	assertVectorNear(t, "FinalState", r.FinalState, DefaultEquilibrium, 1e-3)
}

func TestRunCycles_DoesNotMutateInput(t *testing.T) {
	e := NewDefaultEngine()
	initial := []float64{0.2, 0.6, 0.8, 0.6}
	bounds := []float64{0.9, 0.9, 0.9, 0.9}
	opts := DefaultRunOptions()
	opts.Bounds = bounds

	run(t, e, initial, 50, opts)

	if initial[0] != 0.2 || initial[1] != 0.6 || initial[2] != 0.8 || initial[3] != 0.6 {
		t.Errorf("initial mutated: %v", initial)
	}
	if bounds[0] != 0.9 || bounds[3] != 0.9 {
		t.Errorf("bounds mutated: %v", bounds)
	}
}

func TestRunCycles_Deterministic(t *testing.T) {
	e := NewDefaultEngine()
	a := run(t, e, []float64{0.1, 0.4, 0.3, 0.2}, 150, DefaultRunOptions())
	b := run(t, e, []float64{0.1, 0.4, 0.3, 0.2}, 150, DefaultRunOptions())
	if a.FinalState != b.FinalState || a.Dominance != b.Dominance || a.PeakCycle != b.PeakCycle {
		t.Errorf("repeated runs differ: %+v vs %+v", a, b)
	}
}

func TestRunCycles_Trajectory(t *testing.T) {
	e := NewDefaultEngine()

	tests := []struct {
		name       string
		cycles     int
		interval   int
		wantCycles []int
	}{
		{"final duplicates nothing", 25, 10, []int{0, 10, 20, 25}},
		{"aligned end", 20, 10, []int{0, 10, 20}},
		{"interval one", 3, 1, []int{0, 1, 2, 3}},
		{"interval beyond cycles", 5, 100, []int{0, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultRunOptions()
			opts.RecordInterval = tt.interval
			r := run(t, e, []float64{0.5, 0.5, 0.5, 0.5}, tt.cycles, opts)

			if len(r.Trajectory) != len(tt.wantCycles) {
				t.Fatalf("len(Trajectory) = %d, want %d (%+v)", len(r.Trajectory), len(tt.wantCycles), r.Trajectory)
			}
			for i, c := range tt.wantCycles {
				if r.Trajectory[i].Cycle != c {
					t.Errorf("Trajectory[%d].Cycle = %d, want %d", i, r.Trajectory[i].Cycle, c)
				}
			}
			last := r.Trajectory[len(r.Trajectory)-1]
			if last.State != r.FinalState || last.Harmony != r.FinalHarmony {
				t.Errorf("final sample = %+v, want final state %v", last, r.FinalState)
			}
		})
	}
}

func TestRunCycles_MaxSamplesKeepsMostRecent(t *testing.T) {
	e := NewDefaultEngine()
	var streamed []int

	opts := DefaultRunOptions()
	opts.MaxSamples = 3
	opts.OnSample = func(s models.TrajectorySample) {
		streamed = append(streamed, s.Cycle)
	}
	r := run(t, e, []float64{0.1, 0.1, 0.1, 0.1}, 100, opts)

	want := []int{70, 80, 90, 100}
	if len(r.Trajectory) != len(want) {
		t.Fatalf("len(Trajectory) = %d, want %d", len(r.Trajectory), len(want))
	}
	for i, c := range want {
		if r.Trajectory[i].Cycle != c {
			t.Errorf("Trajectory[%d].Cycle = %d, want %d", i, r.Trajectory[i].Cycle, c)
		}
	}

	if len(streamed) != 11 || streamed[0] != 0 || streamed[10] != 100 {
		t.Errorf("streamed cycles = %v, want 0..90 then 100", streamed)
	}
}

func TestRunCycles_Validation(t *testing.T) {
	e := NewDefaultEngine()

	tests := []struct {
		name    string
		initial []float64
		cycles  int
		opts    func(*RunOptions)
		wantErr []error
	}{
		{"short state", []float64{1, 1, 1}, 10, nil, []error{ErrInvalidDimension}},
		{"long state", []float64{1, 1, 1, 1, 1}, 10, nil, []error{ErrInvalidDimension}},
		{"nil state", nil, 10, nil, []error{ErrInvalidDimension}},
		{"NaN state", []float64{0.5, math.NaN(), 0.5, 0.5}, 10, nil, []error{ErrInvalidState}},
		{"negative cycles", []float64{0.5, 0.5, 0.5, 0.5}, -1, nil, []error{ErrInvalidCycles}},
		{"short bounds", []float64{0.5, 0.5, 0.5, 0.5}, 10,
			func(o *RunOptions) { o.Bounds = []float64{1, 1} },
			[]error{ErrInvalidBounds, ErrInvalidDimension}},
		{"negative bound", []float64{0.5, 0.5, 0.5, 0.5}, 10,
			func(o *RunOptions) { o.Bounds = []float64{1, -1, 1, 1} },
			[]error{ErrInvalidBounds}},
		{"infinite bound", []float64{0.5, 0.5, 0.5, 0.5}, 10,
			func(o *RunOptions) { o.Bounds = []float64{1, 1, math.Inf(1), 1} },
			[]error{ErrInvalidBounds}},
		{"zero interval", []float64{0.5, 0.5, 0.5, 0.5}, 10,
			func(o *RunOptions) { o.RecordInterval = 0 },
			[]error{ErrInvalidRecordInterval}},
		{"negative interval", []float64{0.5, 0.5, 0.5, 0.5}, 10,
			func(o *RunOptions) { o.RecordInterval = -5 },
			[]error{ErrInvalidRecordInterval}},
		{"negative max samples", []float64{0.5, 0.5, 0.5, 0.5}, 10,
			func(o *RunOptions) { o.MaxSamples = -1 },
			[]error{ErrInvalidRecordInterval}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultRunOptions()
			if tt.opts != nil {
				tt.opts(&opts)
			}
			r, err := e.RunCycles(context.Background(), tt.initial, tt.cycles, opts)
			if r != nil {
				t.Errorf("expected nil result on error, got %+v", r)
			}
			for _, want := range tt.wantErr {
				if !errors.Is(err, want) {
					t.Errorf("error = %v, want %v", err, want)
				}
			}
		})
	}
}

func TestRunCycles_Cancelled(t *testing.T) {
	e := NewDefaultEngine()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.RunCycles(ctx, []float64{0.5, 0.5, 0.5, 0.5}, 10, DefaultRunOptions())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	var simErr *SimulationError
	if !errors.As(err, &simErr) || simErr.Cycle != 0 {
		t.Errorf("error = %#v, want *SimulationError at cycle 0", err)
	}
}

func TestRunCycles_NumericInstability(t *testing.T) {
	cfg := DefaultConfig()
	for i := range cfg.Coupling {
		for j := range cfg.Coupling[i] {
			cfg.Coupling[i][j] = 1e308
		}
	}
	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	r, err := e.RunCycles(context.Background(), []float64{0.5, 0.5, 0.5, 0.5}, 10, DefaultRunOptions())
	if r != nil {
		t.Errorf("expected nil result, got %+v", r)
	}
	if !errors.Is(err, ErrNumericInstability) {
		t.Fatalf("error = %v, want ErrNumericInstability", err)
	}
	var simErr *SimulationError
	if !errors.As(err, &simErr) {
		t.Fatalf("error %T is not a *SimulationError", err)
	}
	if simErr.State != (models.Vector4{0.5, 0.5, 0.5, 0.5}) {
		t.Errorf("SimulationError.State = %v, want last good state", simErr.State)
	}
}

func BenchmarkRunCycles(b *testing.B) {
	e := NewDefaultEngine()
	opts := DefaultRunOptions()
	opts.RecordInterval = 1000
	for i := 0; i < b.N; i++ {
		if _, err := e.RunCycles(context.Background(), []float64{0.2, 0.6, 0.8, 0.6}, 10000, opts); err != nil {
			b.Fatal(err)
		}
	}
}
