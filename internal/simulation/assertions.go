package simulation

import (
	"math"
	"testing"

	"github.com/nvandessel/resonance/internal/models"
)

// AssertBoundsRespected asserts that the final state and every recorded
// sample lie within [0, bound_i]. Runs of zero cycles are exempt because the
// initial state is returned unclamped.
func AssertBoundsRespected(t *testing.T, sr SimulationResult) {
	t.Helper()
	res := sr.Result
	if res.Cycles == 0 {
		return
	}
	check := func(where string, cycle int, s models.Vector4) {
		for i, v := range s {
			if v < 0 || v > res.Bounds[i] {
				t.Errorf("AssertBoundsRespected: %s: %s cycle %d axis %s = %.6f not in [0, %.4f]",
					sr.Name, where, cycle, models.Axes[i], v, res.Bounds[i])
			}
		}
	}
	check("final", res.Cycles, res.FinalState)
	for _, s := range res.Trajectory {
		check("sample", s.Cycle, s.State)
	}
}

// AssertDominanceSums asserts that dominance percentages total 100 for runs
// with cycles, and are all zero otherwise.
func AssertDominanceSums(t *testing.T, sr SimulationResult) {
	t.Helper()
	sum := 0.0
	for i, d := range sr.Result.Dominance {
		if d < 0 || d > 100 {
			t.Errorf("AssertDominanceSums: %s: axis %s dominance %.4f out of range", sr.Name, models.Axes[i], d)
		}
		sum += d
	}
	want := 100.0
	if sr.Result.Cycles == 0 {
		want = 0
	}
	if math.Abs(sum-want) > 1e-9 {
		t.Errorf("AssertDominanceSums: %s: dominance sums to %.10f, want %.0f", sr.Name, sum, want)
	}
}

// AssertDeficit asserts the reported deficit verdict.
func AssertDeficit(t *testing.T, sr SimulationResult, want models.OptionalAxis) {
	t.Helper()
	if !sr.Result.Deficit.Equal(want) {
		t.Errorf("AssertDeficit: %s: deficit = %s, want %s (dominance %v)", sr.Name, sr.Result.Deficit, want, sr.Result.Dominance)
	}
}

// AssertDominantAxis asserts the axis that held the maximum most often.
func AssertDominantAxis(t *testing.T, sr SimulationResult, want models.Axis) {
	t.Helper()
	if sr.Result.DominantAxis != want {
		t.Errorf("AssertDominantAxis: %s: dominant = %s, want %s (dominance %v)", sr.Name, sr.Result.DominantAxis, want, sr.Result.Dominance)
	}
}

// AssertConverges asserts that every final component is within tol of target.
func AssertConverges(t *testing.T, sr SimulationResult, target models.Vector4, tol float64) {
	t.Helper()
	for i := range target {
		if d := math.Abs(sr.Result.FinalState[i] - target[i]); d > tol {
			t.Errorf("AssertConverges: %s: axis %s final %.6f, target %.6f (off by %.2e > %.2e)",
				sr.Name, models.Axes[i], sr.Result.FinalState[i], target[i], d, tol)
		}
	}
}

// AssertHarmonyImproves asserts final harmony is strictly above the initial harmony.
func AssertHarmonyImproves(t *testing.T, sr SimulationResult) {
	t.Helper()
	if sr.Result.FinalHarmony <= sr.Result.InitialHarmony {
		t.Errorf("AssertHarmonyImproves: %s: harmony %.6f -> %.6f did not improve",
			sr.Name, sr.Result.InitialHarmony, sr.Result.FinalHarmony)
	}
}

// AssertPeakConsistent asserts that the peak is at least the initial harmony
// and every sampled harmony, and that the peak cycle lies inside the run.
func AssertPeakConsistent(t *testing.T, sr SimulationResult) {
	t.Helper()
	res := sr.Result
	if res.PeakHarmony < res.InitialHarmony {
		t.Errorf("AssertPeakConsistent: %s: peak %.6f below initial %.6f", sr.Name, res.PeakHarmony, res.InitialHarmony)
	}
	for _, s := range res.Trajectory {
		if s.Harmony > res.PeakHarmony {
			t.Errorf("AssertPeakConsistent: %s: sample at cycle %d harmony %.6f above peak %.6f", sr.Name, s.Cycle, s.Harmony, res.PeakHarmony)
		}
	}
	if res.PeakCycle < 0 || (res.Cycles > 0 && res.PeakCycle >= res.Cycles) {
		t.Errorf("AssertPeakConsistent: %s: peak cycle %d outside [0, %d)", sr.Name, res.PeakCycle, res.Cycles)
	}
}

// AssertTrajectoryCycles asserts the exact sequence of recorded cycle indices.
func AssertTrajectoryCycles(t *testing.T, sr SimulationResult, want []int) {
	t.Helper()
	got := make([]int, len(sr.Result.Trajectory))
	for i, s := range sr.Result.Trajectory {
		got[i] = s.Cycle
	}
	if len(got) != len(want) {
		t.Errorf("AssertTrajectoryCycles: %s: cycles = %v, want %v", sr.Name, got, want)
		return
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("AssertTrajectoryCycles: %s: cycles = %v, want %v", sr.Name, got, want)
			return
		}
	}
}

// AssertStreamComplete asserts that OnSample delivered one sample per
// interval plus the final sample, regardless of MaxSamples.
func AssertStreamComplete(t *testing.T, sr SimulationResult, interval int) {
	t.Helper()
	cycles := sr.Result.Cycles
	want := 1
	if cycles > 0 {
		want += (cycles-1)/interval + 1
	}
	if len(sr.Streamed) != want {
		t.Errorf("AssertStreamComplete: %s: streamed %d samples, want %d", sr.Name, len(sr.Streamed), want)
		return
	}
	last := sr.Streamed[len(sr.Streamed)-1]
	if last.Cycle != cycles || last.State != sr.Result.FinalState {
		t.Errorf("AssertStreamComplete: %s: last streamed sample = %+v, want final state at cycle %d", sr.Name, last, cycles)
	}
}

// AssertQuality asserts a comparison grade.
func AssertQuality(t *testing.T, result *models.ComparisonResult, want models.Quality) {
	t.Helper()
	if result.Quality != want {
		t.Errorf("AssertQuality: quality = %s, want %s (distance %.6f, same deficit %v, harmony diff %.6f)",
			result.Quality, want, result.ConvergenceDistance, result.SameDeficit, result.HarmonyDifference)
	}
}
