// Package plan provides the backlog planning command.
package plan

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/taskban/taskban/internal/backlog"
	"github.com/taskban/taskban/internal/cmd/cmdutil"
	"github.com/taskban/taskban/internal/errors"
	"github.com/taskban/taskban/internal/taskstore"
)

var planCmd = &cobra.Command{
	Use:   "plan <task-id> <up|down>",
	Short: "Move a task up or down the backlog",
	Long: `Move a task one place up or down among the pending tasks of a lane.

The task's rank key is adjusted so its urgency lands strictly between its
new neighbours. Neighbours are pushed aside when there is not enough room.

Examples:
  taskban plan 12 up
  taskban plan 12 down --task_status backlog --project work`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"up", "down"},
	RunE:      runPlan,
}

var (
	laneFlag    string
	projectFlag string
)

func init() {
	planCmd.Flags().StringVar(&laneFlag, "task_status", "", "lane to order (default plan.default_lane)")
	planCmd.Flags().StringVar(&projectFlag, "project", "", "restrict the ordering to a project and its sub-projects")
}

// Register adds the plan command to the given parent command.
func Register(parent *cobra.Command) {
	parent.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil || id <= 0 {
		return errors.NewValidationError("task id must be a positive integer").
			WithField("task-id").
			WithValue(args[0])
	}
	direction, err := backlog.ParseDirection(args[1])
	if err != nil {
		return err
	}

	app, err := cmdutil.Open(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	lane := laneFlag
	if lane == "" {
		lane = app.Config.Plan.DefaultLane
	}
	if err := app.RequireLane("task_status", lane); err != nil {
		return err
	}

	engine, err := app.Engine()
	if err != nil {
		return err
	}

	filter := taskstore.Filter{Lane: lane, Project: projectFlag}
	result, err := engine.Move(cmd.Context(), filter, id, direction)
	if err != nil {
		return err
	}

	if result.Moved {
		app.Out.Success("Moved task %d %s to position %d (%s %s)",
			id, direction, result.To+1, app.Config.Task.RankAttribute, taskstore.FormatRankKey(result.RankKey))
	} else {
		edge := "top"
		if direction == backlog.Down {
			edge = "bottom"
		}
		app.Out.Warn("Task %d is already at the %s of %s", id, edge, lane)
	}
	return app.ShowTasks(cmd.Context(), filter, id)
}
