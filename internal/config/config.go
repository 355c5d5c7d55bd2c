package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables that override config
// keys, e.g. TASKBAN_PLAN_MINIMUM_STEP.
const EnvPrefix = "TASKBAN"

// Task store backends.
const (
	BackendTaskwarrior = "taskwarrior"
	BackendSQLite      = "sqlite"
)

// Config holds all taskban configuration
type Config struct {
	Task    TaskConfig    `mapstructure:"task"`
	Refine  RefineConfig  `mapstructure:"refine"`
	Plan    PlanConfig    `mapstructure:"plan"`
	Lanes   []string      `mapstructure:"lanes"`
	Logging LoggingConfig `mapstructure:"logging"`
	Paths   PathsConfig   `mapstructure:"paths"`
}

// TaskConfig selects and configures the task store backend
type TaskConfig struct {
	// Backend is "taskwarrior" (drive the task binary) or "sqlite" (a
	// standalone board stored in the data directory).
	Backend string `mapstructure:"backend"`
	// Binary is the Taskwarrior executable.
	Binary string `mapstructure:"binary"`
	// DataPath is passed to Taskwarrior as TASKDATA.
	DataPath string `mapstructure:"data_path"`
	// TaskrcPath is passed to Taskwarrior as TASKRC.
	TaskrcPath string `mapstructure:"taskrc_path"`
	// RankAttribute is the user-defined attribute holding the rank key.
	RankAttribute string `mapstructure:"rank_attribute"`
	// LaneAttribute is the user-defined attribute holding the Kanban lane.
	LaneAttribute string `mapstructure:"lane_attribute"`
	// EstimateAttribute is the user-defined attribute holding the estimate.
	EstimateAttribute string `mapstructure:"estimate_attribute"`
}

// RefineConfig controls project navigation
type RefineConfig struct {
	// Lane filters the task listing shown while refining; empty shows all lanes.
	Lane string `mapstructure:"lane"`
	// MaxDepth is the number of project levels navigation descends into.
	MaxDepth int `mapstructure:"max_depth"`
	// ListLimit caps the number of tasks printed after each action.
	ListLimit int `mapstructure:"list_limit"`
}

// PlanConfig controls backlog ordering
type PlanConfig struct {
	// DefaultLane is the lane plan operates on when --task_status is omitted.
	DefaultLane string `mapstructure:"default_lane"`
	// MinimumStep is the smallest rank key change a move may make.
	MinimumStep float64 `mapstructure:"minimum_step"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Level is debug, info, warn or error.
	Level string `mapstructure:"level"`
	// Format is text or json.
	Format string `mapstructure:"format"`
	// File receives log output when set; stderr otherwise.
	File string `mapstructure:"file"`
}

// PathsConfig controls where taskban keeps its own files
type PathsConfig struct {
	// DataDir holds the refinement state and the sqlite board.
	// Empty means DataDir().
	DataDir string `mapstructure:"data_dir"`
}

// ResolveDataDir returns the data directory with ~ expanded, falling back to
// the XDG default when unset.
func (p *PathsConfig) ResolveDataDir() string {
	if p.DataDir == "" {
		return DataDir()
	}
	return ExpandHome(p.DataDir)
}

// ExpandHome expands a leading ~ to the user's home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Task: TaskConfig{
			Backend:           BackendTaskwarrior,
			Binary:            "task",
			DataPath:          "~/.task/",
			TaskrcPath:        "~/.taskrc",
			RankAttribute:     "ord",
			LaneAttribute:     "pm",
			EstimateAttribute: "est",
		},
		Refine: RefineConfig{
			Lane:      "",
			MaxDepth:  3,
			ListLimit: 20,
		},
		Plan: PlanConfig{
			DefaultLane: "todo",
			MinimumStep: 0.1,
		},
		Lanes: []string{"backlog", "todo", "doing", "done"},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
			File:   "",
		},
		Paths: PathsConfig{
			DataDir: "",
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Task store defaults
	viper.SetDefault("task.backend", defaults.Task.Backend)
	viper.SetDefault("task.binary", defaults.Task.Binary)
	viper.SetDefault("task.data_path", defaults.Task.DataPath)
	viper.SetDefault("task.taskrc_path", defaults.Task.TaskrcPath)
	viper.SetDefault("task.rank_attribute", defaults.Task.RankAttribute)
	viper.SetDefault("task.lane_attribute", defaults.Task.LaneAttribute)
	viper.SetDefault("task.estimate_attribute", defaults.Task.EstimateAttribute)

	// Refine defaults
	viper.SetDefault("refine.lane", defaults.Refine.Lane)
	viper.SetDefault("refine.max_depth", defaults.Refine.MaxDepth)
	viper.SetDefault("refine.list_limit", defaults.Refine.ListLimit)

	// Plan defaults
	viper.SetDefault("plan.default_lane", defaults.Plan.DefaultLane)
	viper.SetDefault("plan.minimum_step", defaults.Plan.MinimumStep)

	viper.SetDefault("lanes", defaults.Lanes)

	// Logging defaults
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.format", defaults.Logging.Format)
	viper.SetDefault("logging.file", defaults.Logging.File)

	// Paths defaults
	viper.SetDefault("paths.data_dir", defaults.Paths.DataDir)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "taskban")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".taskban"
	}
	return filepath.Join(home, ".config", "taskban")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DataDir returns the default directory for taskban's own data
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "taskban")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".taskban"
	}
	return filepath.Join(home, ".local", "share", "taskban")
}

// ValidBackends returns the list of valid task store backends
func ValidBackends() []string {
	return []string{BackendTaskwarrior, BackendSQLite}
}

// HasLane reports whether lane is one of the configured lanes.
func (c *Config) HasLane(lane string) bool {
	for _, l := range c.Lanes {
		if l == lane {
			return true
		}
	}
	return false
}
