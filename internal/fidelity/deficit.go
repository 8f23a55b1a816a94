package fidelity

import (
	"context"
	"fmt"

	"github.com/nvandessel/resonance/internal/constants"
	"github.com/nvandessel/resonance/internal/logging"
	"github.com/nvandessel/resonance/internal/models"
	"github.com/nvandessel/resonance/internal/resonance"
)

// Analyzer summarizes one long run into deficit recommendations.
// It adds no numerics of its own.
type Analyzer struct {
	engine    *resonance.Engine
	opts      resonance.RunOptions
	decisions *logging.DecisionLogger
}

// NewAnalyzer creates an analyzer that runs with default options.
func NewAnalyzer(engine *resonance.Engine) *Analyzer {
	return &Analyzer{
		engine: engine,
		opts:   resonance.DefaultRunOptions(),
	}
}

// WithRunOptions returns a copy of a that runs with opts.
func (a *Analyzer) WithRunOptions(opts resonance.RunOptions) *Analyzer {
	cp := *a
	cp.opts = opts
	return &cp
}

// WithDecisionLogger returns a copy of a that records every verdict to dl.
func (a *Analyzer) WithDecisionLogger(dl *logging.DecisionLogger) *Analyzer {
	cp := *a
	cp.decisions = dl
	return &cp
}

// DetectDeficit runs state for cycles (constants.DefaultDeficitCycles is the
// usual budget) and turns the result into a verdict.
func (a *Analyzer) DetectDeficit(ctx context.Context, state []float64, cycles int) (*models.DeficitAnalysis, error) {
	result, err := a.engine.RunCycles(ctx, state, cycles, a.opts)
	if err != nil {
		return nil, fmt.Errorf("running deficit analysis: %w", err)
	}

	analysis := Summarize(result)

	a.decisions.Log("deficit", map[string]any{
		"cycles":        cycles,
		"initial":       result.InitialState.Slice(),
		"deficit":       analysis.Deficit.String(),
		"dominance":     result.Dominance[:],
		"final_harmony": result.FinalHarmony,
		"harmony_note":  string(analysis.HarmonyNote),
	})

	return analysis, nil
}

// Summarize converts a finished run into a DeficitAnalysis.
func Summarize(result *models.ResonanceResult) *models.DeficitAnalysis {
	analysis := &models.DeficitAnalysis{
		Result:          result,
		Deficit:         result.Deficit,
		StrongAxes:      make([]models.Axis, 0, 4),
		Recommendations: make([]string, 0, 6),
	}

	if axis, ok := result.Deficit.Get(); ok {
		analysis.DeficitDominance = result.Dominance[axis]
		analysis.Recommendations = append(analysis.Recommendations, fmt.Sprintf(
			"Strengthen axis %s: it dominated %.1f%% of cycles while rising from %.3f to %.3f",
			axis, result.Dominance[axis], result.InitialState[axis], result.FinalState[axis]))
	} else if result.Cycles > 0 {
		analysis.Recommendations = append(analysis.Recommendations,
			"No deficit detected: no axis was pulled up in more than half of the cycles")
	}

	if result.Cycles > 0 {
		for _, axis := range models.Axes {
			if result.Dominance[axis] < constants.StrongAxisDominanceThreshold {
				analysis.StrongAxes = append(analysis.StrongAxes, axis)
				analysis.Recommendations = append(analysis.Recommendations, fmt.Sprintf(
					"Axis %s is already strong (dominant in %.1f%% of cycles)", axis, result.Dominance[axis]))
			}
		}
	}

	switch h := result.FinalHarmony; {
	case h > constants.BalancedHarmonyThreshold:
		analysis.HarmonyNote = models.HarmonyBalanced
		analysis.Recommendations = append(analysis.Recommendations,
			fmt.Sprintf("Final harmony %.3f: the state is balanced", h))
	case h < constants.ImbalancedHarmonyThreshold:
		analysis.HarmonyNote = models.HarmonySignificantImbalance
		analysis.Recommendations = append(analysis.Recommendations,
			fmt.Sprintf("Final harmony %.3f: significant imbalance remains", h))
	default:
		analysis.HarmonyNote = models.HarmonyModerate
		analysis.Recommendations = append(analysis.Recommendations,
			fmt.Sprintf("Final harmony %.3f: moderately balanced", h))
	}

	return analysis
}
