package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/nvandessel/resonance/internal/fidelity"
	"github.com/nvandessel/resonance/internal/store"
	"github.com/spf13/cobra"
)

func newDeficitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deficit <a> <b> <c> <d>",
		Short: "Find the axis the dynamics keep pulling up and recommend improvements",
		Long: `Run a long simulation and report the deficit axis: the axis that held
the maximum value in more than half of the cycles while rising from where
it started. Axes that almost never dominated are reported as strong.

Examples:
  resonance deficit 0.2 0.6 0.8 0.6
  resonance deficit 0.9,0.1,0.5,0.3 --cycles 1000 --save`,
		Args: cobra.RangeArgs(1, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			state, err := parseState(args)
			if err != nil {
				return err
			}

			analyzer := fidelity.NewAnalyzer(e.engine).
				WithRunOptions(e.settings.RunOptions()).
				WithDecisionLogger(e.decisions)
			cycles := cyclesFlag(cmd, e.settings.Analysis.DeficitCycles)

			analysis, err := analyzer.DetectDeficit(cmd.Context(), state, cycles)
			if err != nil {
				return fmt.Errorf("detecting deficit: %w", err)
			}

			var recordID string
			if save, _ := cmd.Flags().GetBool("save"); save {
				recordID, err = saveRecord(cmd, e, func() (store.Record, error) {
					return store.NewDeficitRecord(analysis)
				})
				if err != nil {
					return err
				}
			}

			if isJSON(cmd) {
				analysis.Result.Trajectory = nil
				return writeJSON(cmd, map[string]any{
					"analysis":  analysis,
					"record_id": recordID,
				})
			}

			out := cmd.OutOrStdout()
			r := analysis.Result
			fmt.Fprintf(out, "Analyzed %s cycles from %s\n", humanize.Comma(int64(r.Cycles)), r.InitialState)
			fmt.Fprintf(out, "Final state:  %s  (harmony %.4f, %s)\n", r.FinalState, r.FinalHarmony, analysis.HarmonyNote)
			fmt.Fprintf(out, "Dominance:    %s\n", formatDominance(r.Dominance))
			if axis, ok := analysis.Deficit.Get(); ok {
				fmt.Fprintf(out, "Deficit:      %s (%.1f%% of cycles)\n", axis, analysis.DeficitDominance)
			} else {
				fmt.Fprintf(out, "Deficit:      none\n")
			}
			if len(analysis.StrongAxes) > 0 {
				fmt.Fprintf(out, "Strong axes:  %v\n", analysis.StrongAxes)
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Recommendations:")
			for _, rec := range analysis.Recommendations {
				fmt.Fprintf(out, "  - %s\n", rec)
			}
			if recordID != "" {
				fmt.Fprintf(out, "\nSaved: %s\n", recordID)
			}
			return nil
		},
	}

	cmd.Flags().Int("cycles", 0, "Number of cycles to run (default: analysis.deficit_cycles from config)")
	cmd.Flags().Bool("save", false, "Save the analysis to the project history")

	return cmd
}
