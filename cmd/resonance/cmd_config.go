package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/nvandessel/resonance/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage resonance configuration",
		Long: `View and modify resonance configuration settings.

Configuration is stored in ~/.resonance/config.yaml unless --config is given.

Examples:
  resonance config list                          # Show all settings
  resonance config get engine.time_step          # Get a specific setting
  resonance config set analysis.deficit_cycles 1000
  resonance config path                          # Show the config file location`,
	}

	cmd.AddCommand(
		newConfigListCmd(),
		newConfigGetCmd(),
		newConfigSetCmd(),
		newConfigPathCmd(),
	)

	return cmd
}

// configKey exposes one scalar setting to get and set.
type configKey struct {
	name string
	get  func(*config.ResonanceConfig) any
	set  func(*config.ResonanceConfig, string) error
}

func floatKey(name string, field func(*config.ResonanceConfig) *float64) configKey {
	return configKey{
		name: name,
		get:  func(c *config.ResonanceConfig) any { return *field(c) },
		set: func(c *config.ResonanceConfig, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid number for %s: %s", name, v)
			}
			*field(c) = f
			return nil
		},
	}
}

func intKey(name string, field func(*config.ResonanceConfig) *int) configKey {
	return configKey{
		name: name,
		get:  func(c *config.ResonanceConfig) any { return *field(c) },
		set: func(c *config.ResonanceConfig, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid integer for %s: %s", name, v)
			}
			*field(c) = n
			return nil
		},
	}
}

func stringKey(name string, field func(*config.ResonanceConfig) *string) configKey {
	return configKey{
		name: name,
		get:  func(c *config.ResonanceConfig) any { return *field(c) },
		set: func(c *config.ResonanceConfig, v string) error {
			*field(c) = v
			return nil
		},
	}
}

func boolKey(name string, field func(*config.ResonanceConfig) *bool) configKey {
	return configKey{
		name: name,
		get:  func(c *config.ResonanceConfig) any { return *field(c) },
		set: func(c *config.ResonanceConfig, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid boolean for %s: %s", name, v)
			}
			*field(c) = b
			return nil
		},
	}
}

// configKeys lists the settable keys in display order. The coupling matrix,
// equilibrium, and anchor are edited in the YAML file directly.
var configKeys = []configKey{
	floatKey("engine.time_step", func(c *config.ResonanceConfig) *float64 { return &c.Engine.TimeStep }),
	floatKey("engine.kappa_base", func(c *config.ResonanceConfig) *float64 { return &c.Engine.KappaBase }),
	floatKey("engine.equilibrium_pull_rate", func(c *config.ResonanceConfig) *float64 { return &c.Engine.EquilibriumPullRate }),
	floatKey("engine.boundary_resistance", func(c *config.ResonanceConfig) *float64 { return &c.Engine.BoundaryResistance }),
	intKey("engine.record_interval", func(c *config.ResonanceConfig) *int { return &c.Engine.RecordInterval }),
	intKey("engine.default_cycles", func(c *config.ResonanceConfig) *int { return &c.Engine.DefaultCycles }),
	floatKey("comparison.excellent_distance", func(c *config.ResonanceConfig) *float64 { return &c.Comparison.ExcellentDistance }),
	floatKey("comparison.good_distance", func(c *config.ResonanceConfig) *float64 { return &c.Comparison.GoodDistance }),
	floatKey("comparison.good_harmony", func(c *config.ResonanceConfig) *float64 { return &c.Comparison.GoodHarmony }),
	floatKey("comparison.acceptable_distance", func(c *config.ResonanceConfig) *float64 { return &c.Comparison.AcceptableDistance }),
	intKey("comparison.parallelism", func(c *config.ResonanceConfig) *int { return &c.Comparison.Parallelism }),
	intKey("analysis.deficit_cycles", func(c *config.ResonanceConfig) *int { return &c.Analysis.DeficitCycles }),
	boolKey("store.enabled", func(c *config.ResonanceConfig) *bool { return &c.Store.Enabled }),
	stringKey("logging.level", func(c *config.ResonanceConfig) *string { return &c.Logging.Level }),
	stringKey("logging.format", func(c *config.ResonanceConfig) *string { return &c.Logging.Format }),
}

func lookupConfigKey(name string) (configKey, bool) {
	for _, k := range configKeys {
		if k.name == name {
			return k, true
		}
	}
	return configKey{}, false
}

// configPath returns --config when given, otherwise ~/.resonance/config.yaml.
func configPath(cmd *cobra.Command) (string, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return path, nil
	}
	return config.DefaultPath()
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			if isJSON(cmd) {
				return writeJSON(cmd, cfg)
			}

			out := cmd.OutOrStdout()
			path, _ := configPath(cmd)
			fmt.Fprintf(out, "Configuration (%s):\n\n", path)
			for _, k := range configKeys {
				fmt.Fprintf(out, "  %-32s %v\n", k.name+":", k.get(cfg))
			}
			fmt.Fprintf(out, "\n  %-32s %v\n", "engine.equilibrium:", cfg.Engine.Equilibrium)
			fmt.Fprintf(out, "  %-32s %v\n", "engine.anchor:", cfg.Engine.Anchor)
			fmt.Fprintf(out, "  %-32s %v\n", "engine.coupling:", cfg.Engine.Coupling)
			return nil
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, ok := lookupConfigKey(args[0])
			if !ok {
				return fmt.Errorf("unknown configuration key: %s", args[0])
			}

			cfg, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			value := key.get(cfg)
			if isJSON(cmd) {
				return writeJSON(cmd, map[string]any{"key": key.name, "value": value})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", key.name, value)
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, ok := lookupConfigKey(args[0])
			if !ok {
				return fmt.Errorf("unknown configuration key: %s", args[0])
			}

			path, err := configPath(cmd)
			if err != nil {
				return err
			}

			// Load the file alone so environment overrides are not persisted.
			cfg := config.Default()
			if _, statErr := os.Stat(path); statErr == nil {
				if cfg, err = config.LoadFromFile(path); err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
			}

			if err := key.set(cfg, args[1]); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid value for %s: %w", key.name, err)
			}
			if err := cfg.Save(path); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			if isJSON(cmd) {
				return writeJSON(cmd, map[string]any{"status": "updated", "key": key.name, "value": key.get(cfg)})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %v\n", key.name, key.get(cfg))
			return nil
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath(cmd)
			if err != nil {
				return err
			}
			_, statErr := os.Stat(path)
			exists := statErr == nil

			if isJSON(cmd) {
				return writeJSON(cmd, map[string]any{"path": path, "exists": exists})
			}
			if exists {
				fmt.Fprintln(cmd.OutOrStdout(), path)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s (not created yet)\n", path)
			}
			return nil
		},
	}
}
