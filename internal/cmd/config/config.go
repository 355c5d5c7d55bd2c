// Package config provides CLI commands for managing taskban configuration.
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	appconfig "github.com/taskban/taskban/internal/config"
	"github.com/taskban/taskban/internal/logging"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify taskban configuration",
	Long: `View or modify taskban configuration.

Without arguments, displays the current configuration.
Use subcommands to modify settings or create a config file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  taskban config set task.backend sqlite
  taskban config set plan.minimum_step 0.05
  taskban config set refine.list_limit 40

Valid keys:
  task.backend             - Task store: taskwarrior or sqlite
  task.binary              - Taskwarrior executable
  task.data_path           - Taskwarrior data directory
  task.taskrc_path         - Taskwarrior rc file
  task.rank_attribute      - UDA holding the rank key
  task.lane_attribute      - UDA holding the lane
  task.estimate_attribute  - UDA holding the estimate
  refine.lane              - Lane listed while refining (empty = all)
  refine.max_depth         - Project levels navigated
  refine.list_limit        - Tasks listed after each action (0 = all)
  plan.default_lane        - Lane ordered when --task_status is omitted
  plan.minimum_step        - Smallest rank key change of a move
  logging.level            - debug, info, warn or error
  logging.format           - text or json
  logging.file             - Log file (empty = stderr)
  paths.data_dir           - taskban data directory`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at $XDG_CONFIG_HOME/taskban/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

// Register adds all config-related commands to the given parent command.
func Register(parent *cobra.Command) {
	parent.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	cfg := appconfig.Get()

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintln(out)

	// Show where config is being read from
	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Config file: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Config file: (none - using defaults)\n")
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "task:")
	fmt.Fprintf(out, "  backend: %s\n", cfg.Task.Backend)
	fmt.Fprintf(out, "  binary: %s\n", cfg.Task.Binary)
	fmt.Fprintf(out, "  data_path: %s\n", cfg.Task.DataPath)
	fmt.Fprintf(out, "  taskrc_path: %s\n", cfg.Task.TaskrcPath)
	fmt.Fprintf(out, "  rank_attribute: %s\n", cfg.Task.RankAttribute)
	fmt.Fprintf(out, "  lane_attribute: %s\n", cfg.Task.LaneAttribute)
	fmt.Fprintf(out, "  estimate_attribute: %s\n", cfg.Task.EstimateAttribute)

	fmt.Fprintln(out, "refine:")
	fmt.Fprintf(out, "  lane: %s\n", cfg.Refine.Lane)
	fmt.Fprintf(out, "  max_depth: %d\n", cfg.Refine.MaxDepth)
	fmt.Fprintf(out, "  list_limit: %d\n", cfg.Refine.ListLimit)

	fmt.Fprintln(out, "plan:")
	fmt.Fprintf(out, "  default_lane: %s\n", cfg.Plan.DefaultLane)
	fmt.Fprintf(out, "  minimum_step: %g\n", cfg.Plan.MinimumStep)

	fmt.Fprintf(out, "lanes: %s\n", strings.Join(cfg.Lanes, ", "))

	fmt.Fprintln(out, "logging:")
	fmt.Fprintf(out, "  level: %s\n", cfg.Logging.Level)
	fmt.Fprintf(out, "  format: %s\n", cfg.Logging.Format)
	fmt.Fprintf(out, "  file: %s\n", cfg.Logging.File)

	fmt.Fprintln(out, "paths:")
	fmt.Fprintf(out, "  data_dir: %s\n", cfg.Paths.ResolveDataDir())

	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	// Validate the key exists
	validKeys := map[string]string{
		"task.backend":            "backend",
		"task.binary":             "string",
		"task.data_path":          "string",
		"task.taskrc_path":        "string",
		"task.rank_attribute":     "string",
		"task.lane_attribute":     "string",
		"task.estimate_attribute": "string",
		"refine.lane":             "lane",
		"refine.max_depth":        "positive",
		"refine.list_limit":       "int",
		"plan.default_lane":       "lane",
		"plan.minimum_step":       "step",
		"logging.level":           "level",
		"logging.format":          "format",
		"logging.file":            "string",
		"paths.data_dir":          "string",
	}

	keyType, ok := validKeys[key]
	if !ok {
		return fmt.Errorf("unknown configuration key: %s\nRun 'taskban config set --help' to see valid keys", key)
	}

	// Validate the value based on type
	var typedValue any
	switch keyType {
	case "string":
		typedValue = value
	case "backend":
		if !slices.Contains(appconfig.ValidBackends(), value) {
			return fmt.Errorf("invalid value for %s: %s\nValid options: %s",
				key, value, strings.Join(appconfig.ValidBackends(), ", "))
		}
		typedValue = value
	case "lane":
		lanes := appconfig.Get().Lanes
		if value != "" && !slices.Contains(lanes, value) {
			return fmt.Errorf("invalid value for %s: %s\nValid options: %s",
				key, value, strings.Join(lanes, ", "))
		}
		typedValue = value
	case "level":
		if !slices.Contains(appconfig.ValidLogLevels(), strings.ToLower(value)) {
			return fmt.Errorf("invalid value for %s: %s\nValid options: %s",
				key, value, strings.Join(appconfig.ValidLogLevels(), ", "))
		}
		typedValue = strings.ToLower(value)
	case "format":
		if value != logging.FormatText && value != logging.FormatJSON {
			return fmt.Errorf("invalid value for %s: %s\nValid options: %s, %s",
				key, value, logging.FormatText, logging.FormatJSON)
		}
		typedValue = value
	case "int", "positive":
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: expected integer", key)
		}
		if keyType == "positive" && intVal < 1 {
			return fmt.Errorf("invalid value for %s: must be positive", key)
		}
		if intVal < 0 {
			return fmt.Errorf("invalid value for %s: must be non-negative", key)
		}
		typedValue = intVal
	case "step":
		step, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid value for %s: expected a number", key)
		}
		if step < appconfig.MinimumStepFloor {
			return fmt.Errorf("invalid value for %s: must be at least %g", key, appconfig.MinimumStepFloor)
		}
		typedValue = step
	}

	// Ensure config directory exists
	configDir := appconfig.ConfigDir()
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set the value in viper
	viper.Set(key, typedValue)

	// Write to config file
	configFile := appconfig.ConfigFile()
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %v\n", key, typedValue)
	fmt.Fprintf(cmd.OutOrStdout(), "Config saved to %s\n", configFile)

	return nil
}

// defaultConfigContent is written by config init.
const defaultConfigContent = `# taskban configuration

# Task store
task:
  # Backend: taskwarrior or sqlite
  backend: taskwarrior
  # Taskwarrior executable
  binary: task
  data_path: ~/.task/
  taskrc_path: ~/.taskrc
  # User defined attributes used by taskban
  rank_attribute: ord
  lane_attribute: pm
  estimate_attribute: est

# Kanban lanes, in board order
lanes:
  - backlog
  - todo
  - doing
  - done

# Refinement sessions
refine:
  # Lane listed while refining; empty lists every lane
  lane: ""
  # Number of project levels navigated
  max_depth: 3
  # Tasks listed after each action (0 = all)
  list_limit: 20

# Backlog planning
plan:
  # Lane ordered when --task_status is omitted
  default_lane: todo
  # Smallest rank key change a move makes (at least 0.01)
  minimum_step: 0.1

logging:
  # debug, info, warn or error
  level: warn
  # text or json
  format: text
  # Log file; empty logs to stderr
  file: ""
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir := appconfig.ConfigDir()
	configFile := appconfig.ConfigFile()

	// Check if config file already exists
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'taskban config set' to modify values", configFile)
	}

	// Create config directory
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configFile, []byte(defaultConfigContent), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created config file at %s\n", configFile)
	fmt.Fprintln(cmd.OutOrStdout(), "Edit this file to customize taskban's behavior.")

	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	configFile := appconfig.ConfigFile()

	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Active config: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Default path: %s (not created)\n", configFile)
	}

	fmt.Fprintf(out, "Data directory: %s\n", appconfig.Get().Paths.ResolveDataDir())
	fmt.Fprintf(out, "\nEnvironment variables: %s_* (e.g., %s_TASK_BACKEND)\n", appconfig.EnvPrefix, appconfig.EnvPrefix)

	return nil
}
