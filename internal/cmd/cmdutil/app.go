// Package cmdutil builds the objects every taskban command works with: the
// loaded configuration, the logger, the task store backend and the output
// printer.
package cmdutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/taskban/taskban/internal/backlog"
	"github.com/taskban/taskban/internal/config"
	"github.com/taskban/taskban/internal/errors"
	"github.com/taskban/taskban/internal/listing"
	"github.com/taskban/taskban/internal/logging"
	"github.com/taskban/taskban/internal/refine"
	"github.com/taskban/taskban/internal/taskstore"
	"github.com/taskban/taskban/internal/taskstore/sqlite"
	"github.com/taskban/taskban/internal/taskstore/warrior"
)

// Names of the global flags defined on the root command.
const (
	FlagConfig       = "config"
	FlagTaskDataPath = "task_data_path"
	FlagTaskrcPath   = "taskrc_path"
	FlagDataPath     = "data_path"
	FlagVerbose      = "verbose"
	FlagQuiet        = "quiet"
)

// App holds the per-invocation dependencies of a command.
type App struct {
	Config  *config.Config
	Logger  *logging.Logger
	Store   taskstore.Store
	DataDir string
	Out     *listing.Printer
}

// Open loads the configuration and opens the configured backend. The caller
// must Close the returned App.
func Open(cmd *cobra.Command) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, errors.NewConfigError("invalid configuration", err)
	}

	verbose, _ := cmd.Flags().GetCount(FlagVerbose)
	quiet, _ := cmd.Flags().GetBool(FlagQuiet)

	logger, err := logging.New(logging.Options{
		Level:  logging.LevelFromFlags(verbose, quiet, cfg.Logging.Level),
		Format: cfg.Logging.Format,
		File:   config.ExpandHome(cfg.Logging.File),
		Writer: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, errors.NewConfigError("failed to set up logging", err).WithKey("logging.file")
	}
	logger = logger.WithCommand(cmd.CommandPath())

	dataDir := cfg.Paths.ResolveDataDir()
	store, err := OpenStore(cfg, dataDir)
	if err != nil {
		_ = logger.Close()
		return nil, err
	}
	logger.Debug("task store opened", "backend", cfg.Task.Backend, "data_dir", dataDir)

	return &App{
		Config:  cfg,
		Logger:  logger,
		Store:   store,
		DataDir: dataDir,
		Out:     listing.NewPrinter(cmd.OutOrStdout()),
	}, nil
}

// OpenStore opens the task store backend selected by cfg.
func OpenStore(cfg *config.Config, dataDir string) (taskstore.Store, error) {
	switch cfg.Task.Backend {
	case config.BackendTaskwarrior:
		return warrior.New(warrior.Options{
			Binary:     cfg.Task.Binary,
			DataPath:   config.ExpandHome(cfg.Task.DataPath),
			TaskrcPath: config.ExpandHome(cfg.Task.TaskrcPath),
			Attributes: warrior.Attributes{
				Rank:     cfg.Task.RankAttribute,
				Lane:     cfg.Task.LaneAttribute,
				Estimate: cfg.Task.EstimateAttribute,
			},
		}), nil
	case config.BackendSQLite:
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, errors.NewStoreError("failed to create data directory", err).WithBackend(sqlite.BackendName)
		}
		return sqlite.Open(filepath.Join(dataDir, sqlite.DefaultFileName))
	default:
		return nil, errors.NewConfigError(fmt.Sprintf("unknown task backend %q", cfg.Task.Backend), nil).
			WithKey("task.backend")
	}
}

// Close releases the store and the log file.
func (a *App) Close() error {
	return errors.Join(a.Store.Close(), a.Logger.Close())
}

// States returns the refinement state store kept in the data directory.
func (a *App) States() *refine.FileStateStore {
	return refine.NewFileStateStore(a.DataDir)
}

// Navigator returns a project navigator over the app's store.
func (a *App) Navigator() *refine.Navigator {
	return refine.NewNavigator(a.Store, a.States(),
		refine.WithMaxDepth(a.Config.Refine.MaxDepth),
		refine.WithLogger(a.Logger),
	)
}

// Engine returns an order engine over the app's store.
func (a *App) Engine() (*backlog.Engine, error) {
	return backlog.New(a.Store,
		backlog.WithMinimumStep(a.Config.Plan.MinimumStep),
		backlog.WithLogger(a.Logger),
	)
}

// ShowTasks prints the tasks matching f, limited by refine.list_limit.
func (a *App) ShowTasks(ctx context.Context, f taskstore.Filter, highlight int) error {
	tasks, err := a.Store.ListTasks(ctx, f)
	if err != nil {
		return err
	}
	a.Out.Tasks(tasks, listing.TableOptions{
		Limit:     a.Config.Refine.ListLimit,
		Highlight: highlight,
		ShowLane:  f.Lane == "",
	})
	return nil
}

// RequireLane returns a ValidationError unless lane is configured.
func (a *App) RequireLane(flag, lane string) error {
	if a.Config.HasLane(lane) {
		return nil
	}
	return errors.NewValidationError(fmt.Sprintf("unknown lane %q (configured lanes: %v)", lane, a.Config.Lanes)).
		WithField(flag).
		WithValue(lane)
}
