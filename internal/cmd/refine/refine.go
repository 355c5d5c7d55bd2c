// Package refine provides the CLI commands of refinement sessions.
package refine

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/taskban/taskban/internal/cmd/cmdutil"
	apprefine "github.com/taskban/taskban/internal/refine"
	"github.com/taskban/taskban/internal/taskstore"
)

var refineCmd = &cobra.Command{
	Use:   "refine",
	Short: "Refine the backlog one project at a time",
	Long: `Refine the backlog one project at a time.

Without a subcommand, shows the project being refined and its pending tasks,
starting a new session at the first project if none is active.`,
	Args: cobra.NoArgs,
	RunE: runRefineShow,
}

var refineNextCmd = &cobra.Command{
	Use:   "next [child|sibling|parent]",
	Short: "Move to the next project",
	Long: `Move to the next project.

Without a relation, moves to the next project in tree order and ends the
session after the last one. With a relation, moves to the first child, the
next sibling, or the sibling after the parent.`,
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: apprefine.Relations(),
	RunE:      stepRunner(apprefine.Forward),
}

var refinePrevCmd = &cobra.Command{
	Use:   "prev [child|sibling|parent]",
	Short: "Move to the previous project",
	Long: `Move to the previous project.

Without a relation, moves to the previous project in tree order. With a
relation, moves to the last child of the previous sibling, the previous
sibling, or the parent.`,
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: apprefine.Relations(),
	RunE:      stepRunner(apprefine.Backward),
}

var refineJumpCmd = &cobra.Command{
	Use:   "jump <project>",
	Short: "Move to a project by name",
	Args:  cobra.ExactArgs(1),
	RunE:  runRefineJump,
}

var refineEndCmd = &cobra.Command{
	Use:   "end",
	Short: "End the refinement session",
	Args:  cobra.NoArgs,
	RunE:  runRefineEnd,
}

func init() {
	refineCmd.AddCommand(refineNextCmd)
	refineCmd.AddCommand(refinePrevCmd)
	refineCmd.AddCommand(refineJumpCmd)
	refineCmd.AddCommand(refineEndCmd)
}

// Register adds the refine command tree to the given parent command.
func Register(parent *cobra.Command) {
	parent.AddCommand(refineCmd)
}

func runRefineShow(cmd *cobra.Command, args []string) error {
	app, err := cmdutil.Open(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	state, err := app.Navigator().Current(cmd.Context())
	if err != nil {
		return err
	}
	return showState(cmd.Context(), app, state)
}

func stepRunner(direction apprefine.Direction) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		relation := apprefine.RelationNone
		if len(args) == 1 {
			r, err := apprefine.ParseRelation(args[0])
			if err != nil {
				return err
			}
			relation = r
		}

		app, err := cmdutil.Open(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		nav := app.Navigator()
		state, err := nav.Move(cmd.Context(), relation, direction)
		if apprefine.IsComplete(err) {
			if err := nav.End(); err != nil {
				return err
			}
			app.Out.Success("Refinement complete")
			return nil
		}
		if err != nil {
			return err
		}
		return showState(cmd.Context(), app, state)
	}
}

func runRefineJump(cmd *cobra.Command, args []string) error {
	app, err := cmdutil.Open(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	state, err := app.Navigator().Jump(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return showState(cmd.Context(), app, state)
}

func runRefineEnd(cmd *cobra.Command, args []string) error {
	app, err := cmdutil.Open(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Navigator().End(); err != nil {
		return err
	}
	app.Out.Success("Refinement ended")
	return nil
}

func showState(ctx context.Context, app *cmdutil.App, state apprefine.State) error {
	app.Out.Title("Refining %s", state.Project)
	app.Out.Info("Session started %s", state.Start.Format("2006-01-02 15:04"))
	return app.ShowTasks(ctx, taskstore.Filter{
		Lane:    app.Config.Refine.Lane,
		Project: state.Project,
	}, 0)
}
