package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/taskban/taskban/internal/cmd/cmdutil"
	"github.com/taskban/taskban/internal/taskstore"
)

var addCmd = &cobra.Command{
	Use:   "add <description>...",
	Short: "Add a pending task",
	Long: `Add a pending task to the configured backend.

The task goes to plan.default_lane unless --task_status names another lane.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var (
	addProject  string
	addLane     string
	addUrgency  float64
	addEstimate float64
)

func init() {
	addCmd.Flags().StringVar(&addProject, "project", "", "project of the task (dot-separated)")
	addCmd.Flags().StringVar(&addLane, "task_status", "", "lane of the task (default plan.default_lane)")
	addCmd.Flags().Float64Var(&addUrgency, "urgency", 0, "base urgency (sqlite backend only)")
	addCmd.Flags().Float64Var(&addEstimate, "estimate", 0, "estimate of the task")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	app, err := cmdutil.Open(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	lane := addLane
	if lane == "" {
		lane = app.Config.Plan.DefaultLane
	}
	if err := app.RequireLane("task_status", lane); err != nil {
		return err
	}

	nt := taskstore.NewTask{
		Description: strings.Join(args, " "),
		Project:     addProject,
		Lane:        lane,
		BaseUrgency: addUrgency,
	}
	if cmd.Flags().Changed("estimate") {
		estimate := addEstimate
		nt.Estimate = &estimate
	}

	task, err := app.Store.AddTask(cmd.Context(), nt)
	if err != nil {
		return err
	}
	app.Logger.WithTask(task.ID).Info("task added", "lane", lane, "project", task.Project)
	app.Out.Success("Created task %d", task.ID)
	return nil
}
