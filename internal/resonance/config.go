package resonance

import (
	"fmt"
	"math"

	"github.com/nvandessel/resonance/internal/constants"
	"github.com/nvandessel/resonance/internal/models"
)

// Config is the coupling law the engine integrates. It is copied into the
// engine at construction and never mutated afterwards.
type Config struct {
	// Coupling is row-major; row i describes how axis i affects the others.
	// The derivative uses its transpose.
	Coupling [4][4]float64

	// Equilibrium weakly attracts every state regardless of bounds.
	Equilibrium models.Vector4

	// Anchor is the harmony reference and the default bounds.
	Anchor models.Vector4

	// TimeStep is the RK4 step size (dt). Default: 0.1.
	TimeStep float64

	// KappaBase is the coupling strength at zero harmony. Default: 0.5.
	KappaBase float64

	// EquilibriumPullRate scales the pull toward Equilibrium. Default: 0.1.
	EquilibriumPullRate float64

	// BoundaryResistance scales the penalty outside [0, bound]. Default: 2.0.
	BoundaryResistance float64
}

// DefaultCoupling is the reference asymmetric coupling matrix.
var DefaultCoupling = [4][4]float64{
	{1.0, 1.4, 1.3, 1.5},
	{0.9, 1.0, 0.7, 1.2},
	{0.6, 0.8, 1.0, 0.5},
	{1.3, 1.1, 1.0, 1.0},
}

// DefaultEquilibrium is the natural equilibrium: φ−1, √2−1, e−2, ln 2.
var DefaultEquilibrium = models.Vector4{
	(math.Sqrt(5) - 1) / 2,
	math.Sqrt2 - 1,
	math.E - 2,
	math.Ln2,
}

// DefaultAnchor is the harmony reference and default upper bound.
var DefaultAnchor = models.Vector4{1, 1, 1, 1}

// DefaultConfig returns the reference coupling law.
func DefaultConfig() Config {
	return Config{
		Coupling:            DefaultCoupling,
		Equilibrium:         DefaultEquilibrium,
		Anchor:              DefaultAnchor,
		TimeStep:            constants.DefaultTimeStep,
		KappaBase:           constants.DefaultKappaBase,
		EquilibriumPullRate: constants.DefaultEquilibriumPullRate,
		BoundaryResistance:  constants.DefaultBoundaryResistance,
	}
}

// Validate checks that the configuration describes a usable coupling law.
// Coupling entries must be positive and finite; the anchor doubles as bounds,
// so it must be non-negative.
func (c Config) Validate() error {
	for i := range c.Coupling {
		for j, w := range c.Coupling[i] {
			if !(w > 0) || math.IsInf(w, 0) {
				return fmt.Errorf("%w: coupling[%d][%d] = %v must be positive and finite", ErrInvalidConfig, i, j, w)
			}
		}
	}
	for i, x := range c.Equilibrium {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("%w: equilibrium[%d] = %v must be finite", ErrInvalidConfig, i, x)
		}
	}
	for i, x := range c.Anchor {
		if !(x >= 0) || math.IsInf(x, 0) {
			return fmt.Errorf("%w: anchor[%d] = %v must be non-negative and finite", ErrInvalidConfig, i, x)
		}
	}
	if !(c.TimeStep > 0) || math.IsInf(c.TimeStep, 0) {
		return fmt.Errorf("%w: time step %v must be positive", ErrInvalidConfig, c.TimeStep)
	}
	for name, v := range map[string]float64{
		"kappa base":            c.KappaBase,
		"equilibrium pull rate": c.EquilibriumPullRate,
		"boundary resistance":   c.BoundaryResistance,
	} {
		if !(v >= 0) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s %v must be non-negative and finite", ErrInvalidConfig, name, v)
		}
	}
	return nil
}
