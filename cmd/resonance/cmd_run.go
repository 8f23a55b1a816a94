package main

import (
	"fmt"

	"github.com/nvandessel/resonance/internal/models"
	"github.com/nvandessel/resonance/internal/pathutil"
	"github.com/nvandessel/resonance/internal/store"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <a> <b> <c> <d>",
		Short: "Evolve a state and report harmony, dominance, and deficit",
		Long: `Evolve a four-axis state through the resonance dynamics.

The state can be given as four numbers or one comma-separated vector.

Examples:
  resonance run 0.6 0.6 0.6 0.6
  resonance run 0.2,0.6,0.8,0.6 --cycles 200
  resonance run 0.3 0.3 0.3 0.3 --bounds 0.7,0.6,0.8,0.75 --trajectory`,
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

			opts := e.settings.RunOptions()
			if b, _ := cmd.Flags().GetString("bounds"); b != "" {
				bounds, err := models.ParseVector4String(b)
				if err != nil {
					return fmt.Errorf("invalid bounds: %w", err)
				}
				opts.Bounds = bounds.Slice()
			}
			if cmd.Flags().Changed("interval") {
				opts.RecordInterval, _ = cmd.Flags().GetInt("interval")
			}
			opts.MaxSamples, _ = cmd.Flags().GetInt("max-samples")

			trajectory, _ := cmd.Flags().GetBool("trajectory")
			jsonOut := isJSON(cmd)
			out := cmd.OutOrStdout()

			if trajectory && !jsonOut {
				fmt.Fprintln(out, "Trajectory:")
				opts.OnSample = func(s models.TrajectorySample) {
					printSample(out, s)
				}
			}

			cycles := cyclesFlag(cmd, e.settings.Engine.DefaultCycles)
			result, err := e.engine.RunCycles(cmd.Context(), state, cycles, opts)
			if err != nil {
				return fmt.Errorf("running cycles: %w", err)
			}
			e.logger.Debug("run complete", "cycles", cycles, "final_harmony", result.FinalHarmony, "deficit", result.Deficit.String())

			var recordID string
			if save, _ := cmd.Flags().GetBool("save"); save {
				recordID, err = saveRecord(cmd, e, func() (store.Record, error) {
					return store.NewRunRecord(result)
				})
				if err != nil {
					return err
				}
			}

			if jsonOut {
				if !trajectory {
					result.Trajectory = nil
				}
				return writeJSON(cmd, map[string]any{
					"result":    result,
					"record_id": recordID,
				})
			}

			if trajectory {
				fmt.Fprintln(out)
			}
			printResult(out, result)
			if recordID != "" {
				fmt.Fprintf(out, "Saved:          %s\n", recordID)
			}
			return nil
		},
	}

	cmd.Flags().Int("cycles", 0, "Number of cycles to run (default: engine.default_cycles from config)")
	cmd.Flags().String("bounds", "", "Per-axis upper bounds as a,b,c,d (default: anchor)")
	cmd.Flags().Int("interval", 0, "Cycles between trajectory samples (default: engine.record_interval from config)")
	cmd.Flags().Int("max-samples", 0, "Keep only the most recent N periodic samples (0 = all)")
	cmd.Flags().Bool("trajectory", false, "Print the sampled trajectory")
	cmd.Flags().Bool("save", false, "Save the result to the project history")

	return cmd
}

// saveRecord builds a record and saves it to the project history.
func saveRecord(cmd *cobra.Command, e *env, build func() (store.Record, error)) (string, error) {
	rec, err := build()
	if err != nil {
		return "", fmt.Errorf("failed to build record: %w", err)
	}

	s, err := e.openStore()
	if err != nil {
		return "", err
	}
	defer s.Close()

	id, err := s.Save(cmd.Context(), rec)
	if err != nil {
		return "", fmt.Errorf("failed to save record: %w", err)
	}
	e.logger.Debug("record saved", "id", id, "kind", rec.Kind.String(), "path", pathutil.RedactPath(s.Path()))
	return id, nil
}
