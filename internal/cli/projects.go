package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/daycal/internal/planner"
)

func addProjects(topLevel *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List known projects.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.openStore(); err != nil {
				return err
			}
			projects, err := a.cache.Projects()
			if err != nil {
				return err
			}
			printProjects(cmd.OutOrStdout(), projects)
			return nil
		},
	}
	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Register a project name.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.openStore(); err != nil {
				return err
			}
			projects, err := a.cache.Projects()
			if err != nil {
				return err
			}
			state := planner.State{Projects: projects}
			name := strings.Join(args, " ")
			if err := state.AddProject(name); err != nil {
				return err
			}
			if err := a.cache.SetProjects(state.Projects); err != nil {
				return err
			}
			printOK(cmd.OutOrStdout(), "project %q saved", strings.TrimSpace(name))
			return nil
		},
	}
	cmd.AddCommand(add)
	topLevel.AddCommand(cmd)
}
