// Package resonance implements the resonance engine: a coupled,
// state-dependent ODE over four-axis state vectors, integrated with
// fixed-step RK4 and hard-clamped to per-axis bounds.
//
// The derivative of a state s under bounds b is the sum of
//
//	coupling:    kappa(h(s)) * (Mᵗ·s − s)
//	equilibrium: rate * (equilibrium − s)
//	boundary:    −resistance * overshoot, only outside [0, b]
//
// where h is harmony, the closeness of s to the anchor.
package resonance

import (
	"fmt"

	"github.com/nvandessel/resonance/internal/models"
	"github.com/nvandessel/resonance/internal/vecmath"
)

// Engine integrates states under a fixed coupling law.
// The engine is stateless after construction and safe for concurrent use:
// every run keeps its mutable state on the stack of RunCycles.
type Engine struct {
	config Config
}

// NewEngine creates an engine for the given coupling law.
func NewEngine(config Config) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Engine{config: config}, nil
}

// NewDefaultEngine creates an engine for the reference coupling law.
func NewDefaultEngine() *Engine {
	return &Engine{config: DefaultConfig()}
}

// Config returns a copy of the engine's coupling law.
func (e *Engine) Config() Config {
	return e.config
}

// Harmony returns 1 / (1 + ‖state − anchor‖), in (0, 1].
func (e *Engine) Harmony(state models.Vector4) float64 {
	return 1.0 / (1.0 + vecmath.Distance(state, e.config.Anchor))
}

// Kappa returns the coupling strength for a harmony: KappaBase + harmony.
func (e *Engine) Kappa(harmony float64) float64 {
	return e.config.KappaBase + harmony
}

// Derivative returns ds/dt for state under bounds. It has no side effects.
func (e *Engine) Derivative(state, bounds models.Vector4) models.Vector4 {
	kappa := e.Kappa(e.Harmony(state))

	coupled := vecmath.Sub(vecmath.TransposeMul(e.config.Coupling, state), state)
	d := vecmath.Scale(coupled, kappa)
	d = vecmath.AddScaled(d, e.config.EquilibriumPullRate, vecmath.Sub(e.config.Equilibrium, state))

	for i, s := range state {
		switch {
		case s > bounds[i]:
			d[i] -= e.config.BoundaryResistance * (s - bounds[i])
		case s < 0:
			d[i] -= e.config.BoundaryResistance * s
		}
	}
	return d
}

// Step advances state by one RK4 step and clamps the result to [0, bounds].
// Intermediate stages are never clamped.
func (e *Engine) Step(state, bounds models.Vector4) models.Vector4 {
	return vecmath.Clamp(e.rk4(state, bounds), bounds)
}

// StepChecked is Step with a divergence check on the unclamped result.
// It returns ErrNumericInstability if any component is NaN or Inf.
func (e *Engine) StepChecked(state, bounds models.Vector4) (models.Vector4, error) {
	next := e.rk4(state, bounds)
	if !vecmath.IsFinite(next) {
		return state, fmt.Errorf("%w: step from %v produced %v", ErrNumericInstability, state, models.Vector4(next))
	}
	return vecmath.Clamp(next, bounds), nil
}

func (e *Engine) rk4(state, bounds models.Vector4) vecmath.Vec {
	dt := e.config.TimeStep

	k1 := e.Derivative(state, bounds)
	k2 := e.Derivative(vecmath.AddScaled(state, dt/2, k1), bounds)
	k3 := e.Derivative(vecmath.AddScaled(state, dt/2, k2), bounds)
	k4 := e.Derivative(vecmath.AddScaled(state, dt, k3), bounds)

	var next vecmath.Vec
	for i := range next {
		next[i] = state[i] + dt/6*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}
	return next
}
