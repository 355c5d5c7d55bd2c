package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/taskban/taskban/internal/cmd/cmdutil"
	configcmd "github.com/taskban/taskban/internal/cmd/config"
	"github.com/taskban/taskban/internal/cmd/plan"
	"github.com/taskban/taskban/internal/cmd/refine"
	"github.com/taskban/taskban/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "taskban",
	Short: "Kanban refinement and backlog planning on top of Taskwarrior",
	Long: `taskban adds a Kanban workflow to an external task database.

Refinement sessions walk the project hierarchy one project at a time,
showing the pending tasks of each. Backlog planning moves tasks up and
down the urgency ranking of a lane by adjusting a per-task rank key.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringP(cmdutil.FlagConfig, "f", "", "config file (default is $XDG_CONFIG_HOME/taskban/config.yaml)")
	flags.StringP(cmdutil.FlagTaskDataPath, "d", "", "Taskwarrior data directory (default ~/.task/)")
	flags.String(cmdutil.FlagTaskrcPath, "", "Taskwarrior rc file (default ~/.taskrc)")
	flags.StringP(cmdutil.FlagDataPath, "D", "", "taskban data directory (default $XDG_DATA_HOME/taskban)")
	flags.CountP(cmdutil.FlagVerbose, "v", "increase log verbosity (-v info, -vv debug)")
	flags.BoolP(cmdutil.FlagQuiet, "q", false, "only log errors")
	rootCmd.MarkFlagsMutuallyExclusive(cmdutil.FlagVerbose, cmdutil.FlagQuiet)

	refine.Register(rootCmd)
	plan.Register(rootCmd)
	configcmd.Register(rootCmd)
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	// Flags override config values only when set on the command line.
	flags := rootCmd.PersistentFlags()
	_ = viper.BindPFlag("config", flags.Lookup(cmdutil.FlagConfig))
	_ = viper.BindPFlag("task.data_path", flags.Lookup(cmdutil.FlagTaskDataPath))
	_ = viper.BindPFlag("task.taskrc_path", flags.Lookup(cmdutil.FlagTaskrcPath))
	_ = viper.BindPFlag("paths.data_dir", flags.Lookup(cmdutil.FlagDataPath))

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(config.ExpandHome(cfgFile))
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
	}

	viper.SetEnvPrefix(config.EnvPrefix)
	// Replace dots with underscores for nested keys in env vars
	// e.g., TASKBAN_PLAN_MINIMUM_STEP for plan.minimum_step
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
