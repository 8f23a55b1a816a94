package simulation

import "github.com/nvandessel/resonance/internal/resonance"

// Uniform returns a start state with every axis set to v.
func Uniform(v float64) []float64 {
	return []float64{v, v, v, v}
}

// EquilibriumOnlyConfig returns the reference law with the coupling reduced to
// the identity (off-diagonal entries are a negligible positive epsilon so the
// matrix stays valid). Under it only the equilibrium pull moves the state.
func EquilibriumOnlyConfig() *resonance.Config {
	cfg := resonance.DefaultConfig()
	for i := range cfg.Coupling {
		for j := range cfg.Coupling[i] {
			if i == j {
				cfg.Coupling[i][j] = 1
			} else {
				cfg.Coupling[i][j] = 1e-9
			}
		}
	}
	return &cfg
}
