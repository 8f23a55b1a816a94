package main

import (
	"fmt"
	"path/filepath"

	"github.com/nvandessel/resonance/internal/mcp"
	"github.com/spf13/cobra"
)

func newMCPServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp-server",
		Short: "Serve resonance tools over MCP (stdio)",
		Long: `Start a Model Context Protocol server on stdin/stdout.

Tools: resonance_run, resonance_compare, resonance_deficit, resonance_history.
Logs go to stderr; tool calls are audited in .resonance/audit.jsonl under --root.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			root, _ := cmd.Flags().GetString("root")
			absRoot, err := filepath.Abs(root)
			if err != nil {
				return fmt.Errorf("failed to resolve root: %w", err)
			}

			server, err := mcp.NewServer(&mcp.Config{
				Name:      "resonance",
				Version:   version,
				Root:      absRoot,
				Settings:  settings,
				LogOutput: cmd.ErrOrStderr(),
			})
			if err != nil {
				return fmt.Errorf("failed to create MCP server: %w", err)
			}

			return server.Run(cmd.Context())
		},
	}
}
