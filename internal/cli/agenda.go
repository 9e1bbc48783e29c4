package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/daycal/internal/model"
	"github.com/sandeepkv93/daycal/internal/views"
)

type agendaOptions struct {
	project string
	plain   bool
	days    int
}

func addAgenda(topLevel *cobra.Command, a *app) {
	o := &agendaOptions{}
	cmd := &cobra.Command{
		Use:     "agenda [DATE]",
		Aliases: []string{"day", "ls"},
		Short:   "Show the tasks of a day.",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			state, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			start, err := a.dayOrToday(args)
			if err != nil {
				return err
			}
			if o.days < 1 {
				return fmt.Errorf("--days must be at least 1, got %d", o.days)
			}
			first, _ := model.ParseDay(start)
			end := model.FormatDay(first.AddDate(0, 0, o.days-1))
			days, err := model.DayRange(start, end)
			if err != nil {
				return err
			}
			for _, day := range days {
				tasks := state.Day(day, o.project)
				if o.plain {
					title := day
					if o.project != "" {
						title += " · " + o.project
					}
					printTasks(out, title, tasks)
					continue
				}
				_, _ = fmt.Fprint(out, views.RenderMarkdown(views.AgendaMarkdown(day, o.project, tasks, len(state.Later))))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&o.project, "project", "p", "", "Only show tasks of this project.")
	cmd.Flags().BoolVar(&o.plain, "plain", false, "Print a table instead of rendered markdown.")
	cmd.Flags().IntVar(&o.days, "days", 1, "Number of consecutive days to show.")
	topLevel.AddCommand(cmd)
}
