// Package fidelity judges resonance runs: whether two states converge to the
// same attractor, and which axis a state is missing.
package fidelity

import (
	"context"
	"fmt"
	"math"

	"github.com/nvandessel/resonance/internal/constants"
	"github.com/nvandessel/resonance/internal/logging"
	"github.com/nvandessel/resonance/internal/models"
	"github.com/nvandessel/resonance/internal/resonance"
	"github.com/nvandessel/resonance/internal/vecmath"
	"golang.org/x/sync/errgroup"
)

// ComparatorConfig holds the grading thresholds for pair comparisons.
type ComparatorConfig struct {
	// ExcellentDistance is the distance below which a pair with the same
	// deficit is EXCELLENT. Default: 0.1.
	ExcellentDistance float64

	// GoodDistance and GoodHarmony bound a GOOD pair. Defaults: 0.2, 0.05.
	GoodDistance float64
	GoodHarmony  float64

	// AcceptableDistance is the largest distance that is not POOR. Default: 0.3.
	AcceptableDistance float64

	// Parallelism bounds concurrent pairs in AnalyzeBatch. Default: 4.
	Parallelism int
}

// DefaultComparatorConfig returns the reference grading thresholds.
func DefaultComparatorConfig() ComparatorConfig {
	return ComparatorConfig{
		ExcellentDistance:  constants.ExcellentDistanceThreshold,
		GoodDistance:       constants.GoodDistanceThreshold,
		GoodHarmony:        constants.GoodHarmonyThreshold,
		AcceptableDistance: constants.AcceptableDistanceThreshold,
		Parallelism:        constants.DefaultParallelism,
	}
}

// Pair is one batch comparison input.
type Pair struct {
	Label string    `json:"label,omitempty" yaml:"label,omitempty"`
	A     []float64 `json:"a" yaml:"a"`
	B     []float64 `json:"b" yaml:"b"`
}

// Comparator runs two states independently and grades how closely their
// attractors agree.
type Comparator struct {
	engine    *resonance.Engine
	config    ComparatorConfig
	opts      resonance.RunOptions
	decisions *logging.DecisionLogger
}

// NewComparator creates a comparator that runs with default options.
func NewComparator(engine *resonance.Engine, config ComparatorConfig) *Comparator {
	return &Comparator{
		engine: engine,
		config: config,
		opts:   resonance.DefaultRunOptions(),
	}
}

// WithRunOptions returns a copy of c that runs both states with opts.
func (c *Comparator) WithRunOptions(opts resonance.RunOptions) *Comparator {
	cp := *c
	cp.opts = opts
	return &cp
}

// WithDecisionLogger returns a copy of c that records every verdict to dl.
func (c *Comparator) WithDecisionLogger(dl *logging.DecisionLogger) *Comparator {
	cp := *c
	cp.decisions = dl
	return &cp
}

// AnalyzePair runs a and b for the same number of cycles and compares the
// final states. Equivalence is judged on where the shared dynamics take the
// two states, not on how far apart they started.
func (c *Comparator) AnalyzePair(ctx context.Context, a, b []float64, cycles int) (*models.ComparisonResult, error) {
	ra, err := c.engine.RunCycles(ctx, a, cycles, c.opts)
	if err != nil {
		return nil, fmt.Errorf("running state A: %w", err)
	}
	rb, err := c.engine.RunCycles(ctx, b, cycles, c.opts)
	if err != nil {
		return nil, fmt.Errorf("running state B: %w", err)
	}

	result := &models.ComparisonResult{
		A:                   ra,
		B:                   rb,
		ConvergenceDistance: vecmath.Distance(ra.FinalState, rb.FinalState),
		SameDeficit:         ra.Deficit.Equal(rb.Deficit),
		HarmonyDifference:   math.Abs(ra.FinalHarmony - rb.FinalHarmony),
	}
	result.Quality = c.Grade(result.ConvergenceDistance, result.SameDeficit, result.HarmonyDifference)

	c.decisions.Log("comparison", map[string]any{
		"cycles":               cycles,
		"initial_a":            ra.InitialState.Slice(),
		"initial_b":            rb.InitialState.Slice(),
		"convergence_distance": result.ConvergenceDistance,
		"same_deficit":         result.SameDeficit,
		"deficit_a":            ra.Deficit.String(),
		"deficit_b":            rb.Deficit.String(),
		"harmony_difference":   result.HarmonyDifference,
		"quality":              string(result.Quality),
	})

	return result, nil
}

// Grade applies the quality thresholds in order: EXCELLENT, GOOD, ACCEPTABLE, POOR.
func (c *Comparator) Grade(distance float64, sameDeficit bool, harmonyDiff float64) models.Quality {
	switch {
	case distance < c.config.ExcellentDistance && sameDeficit:
		return models.QualityExcellent
	case distance < c.config.GoodDistance && harmonyDiff < c.config.GoodHarmony:
		return models.QualityGood
	case distance < c.config.AcceptableDistance:
		return models.QualityAcceptable
	default:
		return models.QualityPoor
	}
}

// AnalyzeBatch compares independent pairs concurrently. Results are in
// input order. The first failure cancels the remaining pairs.
func (c *Comparator) AnalyzeBatch(ctx context.Context, pairs []Pair, cycles int) ([]*models.ComparisonResult, error) {
	if cycles < 0 {
		return nil, fmt.Errorf("cycles = %d: %w", cycles, resonance.ErrInvalidCycles)
	}

	results := make([]*models.ComparisonResult, len(pairs))

	g, gctx := errgroup.WithContext(ctx)
	limit := c.config.Parallelism
	if limit <= 0 {
		limit = 1
	}
	g.SetLimit(limit)

	for i, p := range pairs {
		g.Go(func() error {
			r, err := c.AnalyzePair(gctx, p.A, p.B, cycles)
			if err != nil {
				return fmt.Errorf("pair %d %s: %w", i, p.Label, err)
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
