package main

import (
	"fmt"
	"os"

	"github.com/nvandessel/resonance/internal/fidelity"
	"github.com/nvandessel/resonance/internal/models"
	"github.com/nvandessel/resonance/internal/sanitize"
	"github.com/nvandessel/resonance/internal/store"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <a1,b1,c1,d1> <a2,b2,c2,d2>",
		Short: "Run two states to their attractors and grade how closely they converge",
		Long: `Compare where two states settle after the same number of cycles.

The grade is EXCELLENT, GOOD, ACCEPTABLE or POOR, based on the distance
between the final states, whether both report the same deficit, and the
difference in final harmony.

A batch file is a YAML list of pairs:

  - label: baseline
    a: [0.6, 0.6, 0.6, 0.6]
    b: [0.4, 0.7, 0.6, 0.5]

Examples:
  resonance compare 0.6,0.6,0.6,0.6 0.4,0.7,0.6,0.5
  resonance compare --batch pairs.yaml --cycles 200`,
		RunE: func(cmd *cobra.Command, args []string) error {
			batchPath, _ := cmd.Flags().GetString("batch")
			if batchPath == "" && len(args) != 2 {
				return fmt.Errorf("compare needs two states or --batch")
			}
			if batchPath != "" && len(args) != 0 {
				return fmt.Errorf("states cannot be combined with --batch")
			}

			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			comparator := fidelity.NewComparator(e.engine, e.settings.ComparatorConfig()).
				WithRunOptions(e.settings.RunOptions()).
				WithDecisionLogger(e.decisions)
			cycles := cyclesFlag(cmd, e.settings.Engine.DefaultCycles)
			save, _ := cmd.Flags().GetBool("save")

			var (
				labels  []string
				results []*models.ComparisonResult
			)
			if batchPath != "" {
				pairs, err := loadPairs(batchPath)
				if err != nil {
					return err
				}
				results, err = comparator.AnalyzeBatch(cmd.Context(), pairs, cycles)
				if err != nil {
					return fmt.Errorf("comparing batch: %w", err)
				}
				for i, p := range pairs {
					labels = append(labels, pairLabel(i, p))
				}
			} else {
				a, err := parseState(args[:1])
				if err != nil {
					return err
				}
				b, err := parseState(args[1:])
				if err != nil {
					return err
				}
				res, err := comparator.AnalyzePair(cmd.Context(), a, b, cycles)
				if err != nil {
					return fmt.Errorf("comparing states: %w", err)
				}
				results = append(results, res)
				labels = append(labels, "")
			}

			recordIDs := make([]string, len(results))
			if save {
				for i, res := range results {
					label := labels[i]
					recordIDs[i], err = saveRecord(cmd, e, func() (store.Record, error) {
						rec, err := store.NewComparisonRecord(res)
						if err == nil && label != "" {
							rec.Summary = sanitize.Summary(label + ": " + rec.Summary)
						}
						return rec, err
					})
					if err != nil {
						return err
					}
				}
			}

			if isJSON(cmd) {
				type entry struct {
					Label    string                   `json:"label,omitempty"`
					Result   *models.ComparisonResult `json:"result"`
					RecordID string                   `json:"record_id,omitempty"`
				}
				entries := make([]entry, len(results))
				for i, res := range results {
					res.A.Trajectory, res.B.Trajectory = nil, nil
					entries[i] = entry{Label: labels[i], Result: res, RecordID: recordIDs[i]}
				}
				if batchPath == "" {
					return writeJSON(cmd, entries[0])
				}
				return writeJSON(cmd, entries)
			}

			out := cmd.OutOrStdout()
			for i, res := range results {
				if i > 0 {
					fmt.Fprintln(out)
				}
				printComparison(out, labels[i], res)
				if recordIDs[i] != "" {
					fmt.Fprintf(out, "  Saved:                %s\n", recordIDs[i])
				}
			}
			return nil
		},
	}

	cmd.Flags().Int("cycles", 0, "Number of cycles to run each state (default: engine.default_cycles from config)")
	cmd.Flags().String("batch", "", "YAML file listing pairs to compare")
	cmd.Flags().Bool("save", false, "Save each comparison to the project history")

	return cmd
}

// loadPairs reads a YAML list of pairs.
func loadPairs(path string) ([]fidelity.Pair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading batch file: %w", err)
	}

	var pairs []fidelity.Pair
	if err := yaml.Unmarshal(data, &pairs); err != nil {
		return nil, fmt.Errorf("parsing batch file: %w", err)
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("batch file %s has no pairs", path)
	}
	return pairs, nil
}

func pairLabel(i int, p fidelity.Pair) string {
	if label := sanitize.Label(p.Label); label != "" {
		return label
	}
	return fmt.Sprintf("pair %d", i+1)
}
