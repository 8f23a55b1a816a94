// Package constants provides named constants used throughout the resonance codebase.
// This centralizes magic numbers for better maintainability and documentation.
package constants

// Integration constants. These are the reference dynamics; changing any of
// them defines a new coupling law rather than correcting the existing one.
const (
	// DefaultTimeStep is the fixed RK4 step size (dt).
	DefaultTimeStep = 0.1

	// DefaultKappaBase is the coupling strength at zero harmony.
	// Kappa ranges over [KappaBase, KappaBase+1].
	DefaultKappaBase = 0.5

	// DefaultEquilibriumPullRate is the constant-rate attraction toward the
	// natural equilibrium, applied regardless of bounds.
	DefaultEquilibriumPullRate = 0.1

	// DefaultBoundaryResistance scales the soft penalty applied to a component
	// that sits outside [0, bound]. The derivative term is -coefficient * overshoot.
	DefaultBoundaryResistance = 2.0
)

// Simulation constants
const (
	// Dimension is the number of axes in a state vector.
	Dimension = 4

	// DefaultRecordInterval is the number of cycles between trajectory samples.
	DefaultRecordInterval = 10

	// DefaultCycles is the cycle budget for a plain run or pair comparison.
	DefaultCycles = 100

	// DefaultDeficitCycles is the larger cycle budget used for deficit analysis.
	DefaultDeficitCycles = 500

	// CancelCheckInterval is how often (in cycles) a long run polls its context.
	CancelCheckInterval = 1024
)

// Deficit detection thresholds (percent of cycles).
const (
	// DeficitDominanceThreshold is the dominance an axis must exceed before it
	// can be reported as the deficit axis.
	DeficitDominanceThreshold = 50.0

	// StrongAxisDominanceThreshold marks axes that rarely dominated as already strong.
	StrongAxisDominanceThreshold = 10.0
)

// Harmony thresholds used by deficit analysis notes.
const (
	// BalancedHarmonyThreshold is the final harmony above which a state is balanced.
	BalancedHarmonyThreshold = 0.8

	// ImbalancedHarmonyThreshold is the final harmony below which a state is
	// significantly imbalanced.
	ImbalancedHarmonyThreshold = 0.5
)

// Convergence quality thresholds, applied in order: excellent, good, acceptable.
const (
	// ExcellentDistanceThreshold requires the same deficit as well.
	ExcellentDistanceThreshold = 0.1

	// GoodDistanceThreshold requires HarmonyDifference below GoodHarmonyThreshold.
	GoodDistanceThreshold = 0.2

	// GoodHarmonyThreshold is the maximum final-harmony gap for a GOOD grade.
	GoodHarmonyThreshold = 0.05

	// AcceptableDistanceThreshold is the largest distance that is not POOR.
	AcceptableDistanceThreshold = 0.3
)

// Batch comparison
const (
	// DefaultParallelism bounds concurrent pair comparisons in a batch.
	DefaultParallelism = 4
)

// Tool surface limits
const (
	// MaxToolCycles caps the cycle count an MCP client may request per call.
	MaxToolCycles = 1_000_000

	// DefaultHistoryLimit is the number of records history returns by default.
	DefaultHistoryLimit = 20
)
