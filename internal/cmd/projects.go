package cmd

import (
	"github.com/spf13/cobra"

	"github.com/taskban/taskban/internal/cmd/cmdutil"
	"github.com/taskban/taskban/internal/errors"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List projects in refinement order",
	Long: `List the projects with pending tasks in the order refinement visits
them. The project of the active refinement session is marked.`,
	Args: cobra.NoArgs,
	RunE: runProjects,
}

func init() {
	rootCmd.AddCommand(projectsCmd)
}

func runProjects(cmd *cobra.Command, args []string) error {
	app, err := cmdutil.Open(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	paths, err := app.Navigator().Projects(cmd.Context())
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		app.Out.Info("No projects with pending tasks.")
		return nil
	}

	// Listing projects must not start a session.
	var current string
	state, err := app.States().Load()
	switch {
	case err == nil:
		current = state.Project
	case !errors.Is(err, errors.ErrStateNotFound):
		return err
	}

	app.Out.Projects(paths, current)
	return nil
}
