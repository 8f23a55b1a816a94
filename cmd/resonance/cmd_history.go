package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/nvandessel/resonance/internal/constants"
	"github.com/nvandessel/resonance/internal/store"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved results, newest first",
		Long: `List results saved with --save, newest first.

Examples:
  resonance history
  resonance history --kind deficit --limit 5
  resonance history show <id>
  resonance history delete <id>`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kindFlag, _ := cmd.Flags().GetString("kind")
			limit, _ := cmd.Flags().GetInt("limit")

			kind := constants.RecordKind(strings.ToLower(kindFlag))
			if kind != "" && !kind.Valid() {
				return fmt.Errorf("invalid kind %q (valid: run, comparison, deficit)", kindFlag)
			}
			if limit < 0 {
				return fmt.Errorf("limit must be non-negative, got %d", limit)
			}

			root, _ := cmd.Flags().GetString("root")
			s, err := openProjectStore(root)
			if err != nil {
				return err
			}
			defer s.Close()

			records, err := s.List(cmd.Context(), store.Filter{Kind: kind, Limit: limit})
			if err != nil {
				return fmt.Errorf("failed to list history: %w", err)
			}

			if isJSON(cmd) {
				// Payloads are available through "history show".
				for i := range records {
					records[i].Payload = nil
				}
				return writeJSON(cmd, map[string]any{
					"records": records,
					"count":   len(records),
				})
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No saved results. Use --save with run, compare, or deficit.")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tKIND\tCYCLES\tSAVED\tSUMMARY")
			for _, rec := range records {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					rec.ID, rec.Kind, humanize.Comma(int64(rec.Cycles)), humanize.Time(rec.CreatedAt), rec.Summary)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().String("kind", "", "Filter by kind: run, comparison, deficit")
	cmd.Flags().Int("limit", constants.DefaultHistoryLimit, "Maximum records to list (0 = all)")

	cmd.AddCommand(newHistoryShowCmd(), newHistoryDeleteCmd())
	return cmd
}

func newHistoryShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a saved result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			s, err := openProjectStore(root)
			if err != nil {
				return err
			}
			defer s.Close()

			rec, err := s.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to read record: %w", err)
			}
			if rec == nil {
				return fmt.Errorf("record not found: %s", args[0])
			}

			if isJSON(cmd) {
				return writeJSON(cmd, rec)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:      %s\n", rec.ID)
			fmt.Fprintf(out, "Kind:    %s\n", rec.Kind)
			fmt.Fprintf(out, "Saved:   %s (%s)\n", rec.CreatedAt.Format("2006-01-02 15:04:05 MST"), humanize.Time(rec.CreatedAt))
			fmt.Fprintf(out, "Summary: %s\n\n", rec.Summary)

			switch rec.Kind {
			case constants.KindRun:
				r, err := rec.DecodeRun()
				if err != nil {
					return err
				}
				printResult(out, r)
			case constants.KindComparison:
				c, err := rec.DecodeComparison()
				if err != nil {
					return err
				}
				printComparison(out, "", c)
			case constants.KindDeficit:
				a, err := rec.DecodeDeficit()
				if err != nil {
					return err
				}
				printResult(out, a.Result)
				fmt.Fprintln(out, "Recommendations:")
				for _, line := range a.Recommendations {
					fmt.Fprintf(out, "  - %s\n", line)
				}
			}
			return nil
		},
	}
}

func newHistoryDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			s, err := openProjectStore(root)
			if err != nil {
				return err
			}
			defer s.Close()

			rec, err := s.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to read record: %w", err)
			}
			if rec == nil {
				return fmt.Errorf("record not found: %s", args[0])
			}

			if err := s.Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to delete record: %w", err)
			}

			if isJSON(cmd) {
				return writeJSON(cmd, map[string]string{"status": "deleted", "id": args[0]})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}
