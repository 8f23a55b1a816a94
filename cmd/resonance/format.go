package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/nvandessel/resonance/internal/models"
)

func formatDominance(d [4]float64) string {
	parts := make([]string, len(models.Axes))
	for i, a := range models.Axes {
		parts[i] = fmt.Sprintf("%s %.1f%%", a, d[a])
	}
	return strings.Join(parts, "  ")
}

func printResult(w io.Writer, r *models.ResonanceResult) {
	fmt.Fprintf(w, "Cycles:         %s\n", humanize.Comma(int64(r.Cycles)))
	fmt.Fprintf(w, "Initial state:  %s  (harmony %.4f)\n", r.InitialState, r.InitialHarmony)
	fmt.Fprintf(w, "Final state:    %s  (harmony %.4f)\n", r.FinalState, r.FinalHarmony)
	fmt.Fprintf(w, "Peak harmony:   %.4f at cycle %s\n", r.PeakHarmony, humanize.Comma(int64(r.PeakCycle)))
	fmt.Fprintf(w, "Bounds:         %s\n", r.Bounds)
	fmt.Fprintf(w, "Dominance:      %s\n", formatDominance(r.Dominance))
	fmt.Fprintf(w, "Dominant axis:  %s\n", r.DominantAxis)
	fmt.Fprintf(w, "Deficit:        %s\n", r.Deficit)
}

func printSample(w io.Writer, s models.TrajectorySample) {
	fmt.Fprintf(w, "  %8s  %s  harmony %.4f\n", humanize.Comma(int64(s.Cycle)), s.State, s.Harmony)
}

func printComparison(w io.Writer, label string, c *models.ComparisonResult) {
	if label != "" {
		fmt.Fprintf(w, "%s\n", label)
	}
	fmt.Fprintf(w, "  A: %s -> %s  (harmony %.4f, deficit %s)\n", c.A.InitialState, c.A.FinalState, c.A.FinalHarmony, c.A.Deficit)
	fmt.Fprintf(w, "  B: %s -> %s  (harmony %.4f, deficit %s)\n", c.B.InitialState, c.B.FinalState, c.B.FinalHarmony, c.B.Deficit)
	fmt.Fprintf(w, "  Convergence distance: %.4f\n", c.ConvergenceDistance)
	fmt.Fprintf(w, "  Same deficit:         %v\n", c.SameDeficit)
	fmt.Fprintf(w, "  Harmony difference:   %.4f\n", c.HarmonyDifference)
	fmt.Fprintf(w, "  Quality:              %s\n", c.Quality)
}
