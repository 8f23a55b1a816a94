package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nvandessel/resonance/internal/exports"
	"github.com/nvandessel/resonance/internal/pathutil"
	"github.com/nvandessel/resonance/internal/store"
	"github.com/spf13/cobra"
)

// exportsDir returns <root>/.resonance/exports.
func exportsDir(root string) string {
	return filepath.Join(store.LocalResonancePath(root), pathutil.ExportsDir)
}

// retentionPolicy builds the policy from --keep, --max-age, and --max-size.
// It returns nil when none are set.
func retentionPolicy(cmd *cobra.Command) (exports.RetentionPolicy, error) {
	var policies []exports.RetentionPolicy

	if keep, _ := cmd.Flags().GetInt("keep"); cmd.Flags().Changed("keep") {
		if keep < 1 {
			return nil, fmt.Errorf("--keep must be at least 1, got %d", keep)
		}
		policies = append(policies, &exports.CountPolicy{MaxCount: keep})
	}
	if s, _ := cmd.Flags().GetString("max-age"); s != "" {
		d, err := exports.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("invalid --max-age: %w", err)
		}
		policies = append(policies, &exports.AgePolicy{MaxAge: d})
	}
	if s, _ := cmd.Flags().GetString("max-size"); s != "" {
		n, err := exports.ParseSize(s)
		if err != nil {
			return nil, fmt.Errorf("invalid --max-size: %w", err)
		}
		policies = append(policies, &exports.SizePolicy{MaxTotalBytes: n})
	}

	switch len(policies) {
	case 0:
		return nil, nil
	case 1:
		return policies[0], nil
	default:
		return &exports.CompositePolicy{Policies: policies}, nil
	}
}

// checkExportPath rejects non-.jsonl paths and paths outside the project
// root and ~/.resonance/exports.
func checkExportPath(path, root string) error {
	if err := pathutil.ValidateExportPath(path, root); err != nil {
		return fmt.Errorf("export path rejected: %w", err)
	}
	return nil
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [file.jsonl]",
		Short: "Export the project history as JSON Lines",
		Long: `Write every saved result to a JSONL file, oldest first, one record
per line. The file can be loaded into another project with "resonance import".

The file must be a .jsonl file inside the project root or ~/.resonance/exports. Without an
argument the export goes to .resonance/exports/history-<timestamp>.jsonl.

--keep, --max-age, and --max-size prune older timestamped exports in
.resonance/exports after writing. An export is kept only if it satisfies every
limit given. The newest export always survives --max-size.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			policy, err := retentionPolicy(cmd)
			if err != nil {
				return err
			}

			var path string
			if len(args) == 1 {
				path = args[0]
				if err := checkExportPath(path, root); err != nil {
					return err
				}
			} else {
				path = exports.NewPath(exportsDir(root), time.Now())
			}

			s, err := openProjectStore(root)
			if err != nil {
				return err
			}
			defer s.Close()

			n, err := store.ExportJSONLFile(cmd.Context(), s, path)
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}

			var pruned []string
			if policy != nil {
				pruned, err = exports.ApplyRetention(exportsDir(root), policy)
				if err != nil {
					return fmt.Errorf("pruning exports: %w", err)
				}
			}

			if isJSON(cmd) {
				return writeJSON(cmd, map[string]any{"path": path, "count": n, "pruned": len(pruned)})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d records to %s\n", n, path)
			if len(pruned) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d old exports\n", len(pruned))
			}
			return nil
		},
	}

	cmd.Flags().Int("keep", 0, "Keep at most this many timestamped exports")
	cmd.Flags().String("max-age", "", "Delete timestamped exports older than this (e.g. 30d, 2w, 720h)")
	cmd.Flags().String("max-size", "", "Cap the total size of timestamped exports (e.g. 100MB)")
	return cmd
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.jsonl>",
		Short: "Import results from a JSON Lines export",
		Long: `Load records from a file written by "resonance export". Records with
an ID already in the history replace the existing entry; malformed lines are
skipped and counted.

The file must be a .jsonl file inside the project root or ~/.resonance/exports.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			if err := checkExportPath(args[0], root); err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open import file: %w", err)
			}
			defer f.Close()

			s, err := openProjectStore(root)
			if err != nil {
				return err
			}
			defer s.Close()

			imported, skipped, err := store.ImportJSONL(cmd.Context(), s, f)
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}

			if isJSON(cmd) {
				return writeJSON(cmd, map[string]any{"path": args[0], "imported": imported, "skipped": skipped})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d records from %s (%d skipped)\n", imported, args[0], skipped)
			return nil
		},
	}
}
