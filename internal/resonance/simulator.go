package resonance

import (
	"context"
	"fmt"
	"math"

	"github.com/nvandessel/resonance/internal/constants"
	"github.com/nvandessel/resonance/internal/models"
	"github.com/nvandessel/resonance/internal/vecmath"
)

// RunOptions controls a single RunCycles call.
type RunOptions struct {
	// Bounds are the per-axis upper limits. Nil means the engine anchor.
	Bounds []float64

	// RecordInterval is the number of cycles between trajectory samples. Default: 10.
	RecordInterval int

	// MaxSamples caps the periodic samples kept in the result; the most
	// recent ones win. 0 keeps all of them.
	MaxSamples int

	// OnSample, when non-nil, receives every sample as it is recorded,
	// including those later dropped by MaxSamples and the final sample.
	OnSample func(models.TrajectorySample)
}

// DefaultRunOptions returns options using the anchor as bounds and sampling every 10 cycles.
func DefaultRunOptions() RunOptions {
	return RunOptions{
		RecordInterval: constants.DefaultRecordInterval,
	}
}

// RunCycles evolves initial for the given number of cycles and summarizes the run.
//
// Each cycle applies one checked RK4 step, tracks peak harmony, and credits
// the axis holding the largest value. A sample is recorded when
// cycle%RecordInterval == 0, and a final sample is always appended.
//
// The deficit axis is the dominant axis when it dominated more than 50% of
// cycles and finished above where it started; otherwise there is none.
//
// The caller's slices are never retained or modified. ctx is polled every
// constants.CancelCheckInterval cycles; cancellation does not affect the
// numbers of a run that completes.
func (e *Engine) RunCycles(ctx context.Context, initial []float64, cycles int, opts RunOptions) (*models.ResonanceResult, error) {
	state, bounds, err := e.validateRun(initial, cycles, opts)
	if err != nil {
		return nil, err
	}

	initialState := state
	initialHarmony := e.Harmony(state)
	harmony := initialHarmony
	peakHarmony, peakCycle := initialHarmony, 0

	recorder := newTrajectoryRecorder(cycles, opts.RecordInterval, opts.MaxSamples, opts.OnSample)
	var tally [4]int

	for cycle := 0; cycle < cycles; cycle++ {
		if cycle%constants.CancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, &SimulationError{Cycle: cycle, State: state, Err: err}
			}
		}

		next, err := e.StepChecked(state, bounds)
		if err != nil {
			return nil, &SimulationError{Cycle: cycle, State: state, Err: err}
		}
		state = next
		harmony = e.Harmony(state)

		if harmony > peakHarmony {
			peakHarmony = harmony
			peakCycle = cycle
		}

		tally[vecmath.ArgMax(state)]++

		if cycle%opts.RecordInterval == 0 {
			recorder.record(models.TrajectorySample{Cycle: cycle, State: state, Harmony: harmony})
		}
	}

	result := &models.ResonanceResult{
		InitialState:   initialState,
		InitialHarmony: initialHarmony,
		FinalState:     state,
		FinalHarmony:   harmony,
		PeakHarmony:    peakHarmony,
		PeakCycle:      peakCycle,
		Cycles:         cycles,
		Bounds:         bounds,
		Deficit:        models.NoAxis(),
	}
	if cycles > 0 {
		for i, n := range tally {
			result.Dominance[i] = float64(n) * 100 / float64(cycles)
		}
	}
	result.DominantAxis = models.Axes[vecmath.ArgMax(result.Dominance)]
	result.Deficit = deficitAxis(result)
	result.Trajectory = recorder.finish(models.TrajectorySample{Cycle: cycles, State: state, Harmony: harmony})

	return result, nil
}

// deficitAxis applies the dominance rule: the dominant axis counts as the
// deficit only if it held the maximum in more than half the cycles and
// ended above its starting value.
func deficitAxis(r *models.ResonanceResult) models.OptionalAxis {
	axis := r.DominantAxis
	if r.Dominance[axis] > constants.DeficitDominanceThreshold && r.FinalState[axis] > r.InitialState[axis] {
		return models.SomeAxis(axis)
	}
	return models.NoAxis()
}

func (e *Engine) validateRun(initial []float64, cycles int, opts RunOptions) (models.Vector4, models.Vector4, error) {
	state, err := models.ParseVector4(initial)
	if err != nil {
		return state, state, fmt.Errorf("initial state: %w", err)
	}
	if !vecmath.IsFinite(state) {
		return state, state, fmt.Errorf("initial state %v: %w", state, ErrInvalidState)
	}
	if cycles < 0 {
		return state, state, fmt.Errorf("cycles = %d: %w", cycles, ErrInvalidCycles)
	}

	bounds := e.config.Anchor
	if opts.Bounds != nil {
		if len(opts.Bounds) != 4 {
			return state, state, fmt.Errorf("bounds have %d components: %w: %w", len(opts.Bounds), ErrInvalidBounds, ErrInvalidDimension)
		}
		copy(bounds[:], opts.Bounds)
		for i, b := range bounds {
			if !(b >= 0) || math.IsInf(b, 0) {
				return state, state, fmt.Errorf("bounds[%d] = %v: %w", i, b, ErrInvalidBounds)
			}
		}
	}

	if opts.RecordInterval <= 0 {
		return state, state, fmt.Errorf("record interval = %d: %w", opts.RecordInterval, ErrInvalidRecordInterval)
	}
	if opts.MaxSamples < 0 {
		return state, state, fmt.Errorf("max samples = %d must be non-negative: %w", opts.MaxSamples, ErrInvalidRecordInterval)
	}
	return state, bounds, nil
}
