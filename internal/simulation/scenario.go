package simulation

import (
	"github.com/nvandessel/resonance/internal/models"
	"github.com/nvandessel/resonance/internal/resonance"
)

// Scenario defines a single simulation experiment.
type Scenario struct {
	Name    string
	Initial []float64
	Cycles  int

	// Bounds overrides the anchor bounds when non-nil.
	Bounds []float64

	// RecordInterval defaults to the engine default when 0.
	RecordInterval int
	MaxSamples     int

	// Config, when non-nil, replaces the reference engine law.
	Config *resonance.Config

	// Persist saves the result to the runner's store and reads it back,
	// so the returned result is the decoded copy.
	Persist bool
}

// SimulationResult captures the outcome of one scenario.
type SimulationResult struct {
	Name   string
	Result *models.ResonanceResult

	// Streamed holds every sample delivered through OnSample, in order.
	Streamed []models.TrajectorySample

	// RecordID is set when the scenario was persisted.
	RecordID string
}

// PairScenario defines a comparison experiment.
type PairScenario struct {
	Name   string
	A, B   []float64
	Cycles int
	Config *resonance.Config
}
