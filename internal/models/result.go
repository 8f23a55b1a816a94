// Package models defines the typed records produced by the resonance engine
// and its fidelity layer.
package models

// TrajectorySample is one recorded point of a run.
type TrajectorySample struct {
	Cycle   int     `json:"cycle"`
	State   Vector4 `json:"state"`
	Harmony float64 `json:"harmony"`
}

// ResonanceResult summarizes a single simulation run.
type ResonanceResult struct {
	InitialState   Vector4 `json:"initial_state"`
	InitialHarmony float64 `json:"initial_harmony"`
	FinalState     Vector4 `json:"final_state"`
	FinalHarmony   float64 `json:"final_harmony"`

	// PeakHarmony is the best harmony seen, including the initial state.
	PeakHarmony float64 `json:"peak_harmony"`
	PeakCycle   int     `json:"peak_cycle"`

	Cycles int     `json:"cycles"`
	Bounds Vector4 `json:"bounds"`

	// Dominance is the percentage of cycles each axis held the maximum value.
	// Sums to 100 when Cycles > 0, all zero otherwise.
	Dominance    [4]float64   `json:"dominance"`
	DominantAxis Axis         `json:"dominant_axis"`
	Deficit      OptionalAxis `json:"deficit"`

	Trajectory []TrajectorySample `json:"trajectory,omitempty"`
}

// DominancePercent returns the dominance percentage for axis a.
func (r *ResonanceResult) DominancePercent(a Axis) float64 {
	return r.Dominance[a]
}

// Quality grades how closely two runs converged.
type Quality string

const (
	QualityExcellent  Quality = "EXCELLENT"
	QualityGood       Quality = "GOOD"
	QualityAcceptable Quality = "ACCEPTABLE"
	QualityPoor       Quality = "POOR"
)

// ComparisonResult is the outcome of running two states to their attractors.
type ComparisonResult struct {
	A *ResonanceResult `json:"a"`
	B *ResonanceResult `json:"b"`

	// ConvergenceDistance is measured between the final states, not the inputs.
	ConvergenceDistance float64 `json:"convergence_distance"`
	SameDeficit         bool    `json:"same_deficit"`
	HarmonyDifference   float64 `json:"harmony_difference"`
	Quality             Quality `json:"quality"`
}

// HarmonyNote is a qualitative reading of a final harmony.
type HarmonyNote string

const (
	HarmonyBalanced             HarmonyNote = "balanced"
	HarmonyModerate             HarmonyNote = "moderate"
	HarmonySignificantImbalance HarmonyNote = "significant-imbalance"
)

// DeficitAnalysis turns a long run into a deficit verdict and recommendations.
type DeficitAnalysis struct {
	Result           *ResonanceResult `json:"result"`
	Deficit          OptionalAxis     `json:"deficit"`
	DeficitDominance float64          `json:"deficit_dominance,omitempty"`
	StrongAxes       []Axis           `json:"strong_axes"`
	HarmonyNote      HarmonyNote      `json:"harmony_note"`
	Recommendations  []string         `json:"recommendations"`
}
