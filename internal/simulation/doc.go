// Package simulation provides a scenario test harness for validating the
// long-run dynamics of the resonance engine.
//
// The harness exercises the real Engine, Comparator, and SQLiteStore with no
// mocks. Scenarios describe a start state, a cycle budget, and optional bounds
// or engine configuration; the Runner executes them, captures every streamed
// trajectory sample, and can persist results through an isolated store for
// round-trip checks. Assertions in this package check properties that must
// hold for every run (bounds, dominance sums, peak consistency) as well as
// scenario-specific outcomes (deficit axis, convergence target).
//
// Each test gets an isolated SQLite database via t.TempDir() and a sandboxed
// HOME to prevent touching user data.
//
// Usage:
//
//	func TestContainerSaturates(t *testing.T) {
//	    r := simulation.NewRunner(t)
//	    result := r.Run(simulation.Scenario{
//	        Name:    "container",
//	        Initial: simulation.Uniform(0.3),
//	        Bounds:  []float64{0.7, 0.6, 0.8, 0.75},
//	        Cycles:  100,
//	    })
//	    simulation.AssertBoundsRespected(t, result)
//	    simulation.AssertConverges(t, result, models.Vector4{0.7, 0.6, 0.8, 0.75}, 1e-3)
//	}
package simulation
