package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/nvandessel/resonance/internal/config"
	"github.com/nvandessel/resonance/internal/logging"
	"github.com/nvandessel/resonance/internal/models"
	"github.com/nvandessel/resonance/internal/resonance"
	"github.com/nvandessel/resonance/internal/store"
	"github.com/spf13/cobra"
)

var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	notifySignals(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "resonance",
		Short: "Four-axis resonance simulator",
		Long: `resonance evolves four-axis states through a coupled harmonic
dynamics, compares where different states settle, and reports which axis
the system keeps pulling up (the deficit).

Results can be saved to a per-project history in .resonance/resonance.db.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for agent consumption)")
	rootCmd.PersistentFlags().String("root", ".", "Project root directory")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.resonance/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: info, debug, trace, warn, error")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newCompareCmd(),
		newDeficitCmd(),
		newHistoryCmd(),
		newExportCmd(),
		newImportCmd(),
		newConfigCmd(),
		newMCPServerCmd(),
	)

	return rootCmd
}

// loadSettings resolves configuration from --config (or the default
// locations) and applies --log-level.
func loadSettings(cmd *cobra.Command) (*config.ResonanceConfig, error) {
	path, _ := cmd.Flags().GetString("config")

	var (
		cfg *config.ResonanceConfig
		err error
	)
	if path != "" {
		cfg, err = config.LoadFromFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// env bundles what a simulation command needs.
type env struct {
	settings  *config.ResonanceConfig
	engine    *resonance.Engine
	logger    *slog.Logger
	decisions *logging.DecisionLogger
	root      string
}

func newEnv(cmd *cobra.Command) (*env, error) {
	settings, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}

	engineCfg, err := settings.EngineConfig()
	if err != nil {
		return nil, err
	}
	engine, err := resonance.NewEngine(engineCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	root, _ := cmd.Flags().GetString("root")
	return &env{
		settings:  settings,
		engine:    engine,
		logger:    logging.NewLoggerWithFormat(settings.Logging.Level, settings.Logging.Format, cmd.ErrOrStderr()),
		decisions: logging.NewDecisionLogger(store.LocalResonancePath(root), settings.Logging.Level),
		root:      root,
	}, nil
}

func (e *env) close() {
	e.decisions.Close()
}

// openStore opens the project history. It fails when the store is disabled.
func (e *env) openStore() (*store.SQLiteStore, error) {
	if !e.settings.Store.Enabled {
		return nil, fmt.Errorf("result store is disabled (set store.enabled to true)")
	}
	return openProjectStore(e.root)
}

func openProjectStore(root string) (*store.SQLiteStore, error) {
	s, err := store.NewSQLiteStore(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return s, nil
}

// cyclesFlag returns --cycles when set, otherwise def.
func cyclesFlag(cmd *cobra.Command, def int) int {
	if cmd.Flags().Changed("cycles") {
		n, _ := cmd.Flags().GetInt("cycles")
		return n
	}
	return def
}

// parseState accepts either four separate numbers or one comma-separated vector.
func parseState(args []string) ([]float64, error) {
	v, err := models.ParseVector4String(strings.Join(args, ","))
	if err != nil {
		return nil, fmt.Errorf("invalid state: %w", err)
	}
	return v.Slice(), nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func isJSON(cmd *cobra.Command) bool {
	jsonOut, _ := cmd.Flags().GetBool("json")
	return jsonOut
}
