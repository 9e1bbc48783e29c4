package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/daycal/internal/model"
	"github.com/sandeepkv93/daycal/internal/planner"
)

type draftOptions struct {
	date    string
	notes   string
	time    string
	project string
}

func (o *draftOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.date, "date", "d", "", "Day of the task: YYYY-MM-DD, today, tomorrow or yesterday.")
	cmd.Flags().StringVarP(&o.notes, "notes", "n", "", "Free-form notes.")
	cmd.Flags().StringVarP(&o.time, "time", "t", "", "Time of day as HH:MM.")
	cmd.Flags().StringVarP(&o.project, "project", "p", "", "Project name.")
}

func addTaskCommands(topLevel *cobra.Command, a *app) {
	addAdd(topLevel, a)
	addEdit(topLevel, a)
	addMove(topLevel, a)
	addDone(topLevel, a, "done", "Mark a task, or every task on a day, as done.", true)
	addDone(topLevel, a, "undo", "Mark a task, or every task on a day, as not done.", false)
	addRemove(topLevel, a)
}

func addAdd(topLevel *cobra.Command, a *app) {
	o := &draftOptions{}
	cmd := &cobra.Command{
		Use:   "add TITLE",
		Short: "Add a task.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			state, err := a.load(ctx)
			if err != nil {
				return err
			}
			day, err := a.resolveDay(o.date)
			if err != nil {
				return err
			}
			t, err := state.Add(planner.Draft{
				Title:   strings.Join(args, " "),
				Date:    day,
				Notes:   o.notes,
				Time:    o.time,
				Project: o.project,
			})
			if err != nil {
				return err
			}
			if err := a.saveTasks(ctx, state); err != nil {
				return err
			}
			printOK(cmd.OutOrStdout(), "added %s %q on %s", shortID(t.ID), t.Title, t.Date)
			return nil
		},
	}
	o.addFlags(cmd)
	topLevel.AddCommand(cmd)
}

func addEdit(topLevel *cobra.Command, a *app) {
	o := &draftOptions{}
	var title string
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change a task's title, day, notes, time or project.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			state, err := a.load(ctx)
			if err != nil {
				return err
			}
			t, err := state.FindTask(args[0])
			if err != nil {
				return err
			}
			d := planner.Draft{Title: t.Title, Date: t.Date, Notes: t.NotesText(), Time: t.Time, Project: t.Project}
			flags := cmd.Flags()
			if flags.Changed("title") {
				d.Title = title
			}
			if flags.Changed("date") {
				if d.Date, err = a.resolveDay(o.date); err != nil {
					return err
				}
			}
			if flags.Changed("notes") {
				d.Notes = o.notes
			}
			if flags.Changed("time") {
				d.Time = o.time
			}
			if flags.Changed("project") {
				d.Project = o.project
			}
			if t, err = state.Edit(t.ID, d); err != nil {
				return err
			}
			if err := a.saveTasks(ctx, state); err != nil {
				return err
			}
			printOK(cmd.OutOrStdout(), "updated %s %q", shortID(t.ID), t.Title)
			return nil
		},
	}
	o.addFlags(cmd)
	cmd.Flags().StringVar(&title, "title", "", "New title.")
	topLevel.AddCommand(cmd)
}

func addMove(topLevel *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:   "move ID DATE",
		Short: "Move a task to another day.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			state, err := a.load(ctx)
			if err != nil {
				return err
			}
			t, err := state.FindTask(args[0])
			if err != nil {
				return err
			}
			day, err := a.resolveDay(args[1])
			if err != nil {
				return err
			}
			if t, err = state.Move(t.ID, day); err != nil {
				return err
			}
			if err := a.saveTasks(ctx, state); err != nil {
				return err
			}
			printOK(cmd.OutOrStdout(), "moved %q to %s", t.Title, t.Date)
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}

func addDone(topLevel *cobra.Command, a *app, use, short string, completed bool) {
	cmd := &cobra.Command{
		Use:   use + " ID|DATE",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.setCompleted(cmd.Context(), cmd.OutOrStdout(), args[0], completed)
		},
	}
	topLevel.AddCommand(cmd)
}

func (a *app) setCompleted(ctx context.Context, out io.Writer, ref string, completed bool) error {
	state, err := a.load(ctx)
	if err != nil {
		return err
	}
	if day, dayErr := a.resolveDay(ref); dayErr == nil && ref != "" {
		n, err := state.SetDayCompleted(day, completed)
		if err != nil {
			return err
		}
		if n > 0 {
			if err := a.saveTasks(ctx, state); err != nil {
				return err
			}
		}
		printOK(out, "%d task(s) on %s updated", n, day)
		return nil
	}
	t, err := state.FindTask(ref)
	if err != nil {
		return err
	}
	if t.Completed == completed {
		printOK(out, "%q unchanged", t.Title)
		return nil
	}
	if err := state.SetCompleted(t.ID, completed); err != nil {
		return err
	}
	if err := a.saveTasks(ctx, state); err != nil {
		return err
	}
	verb := "done"
	if !completed {
		verb = "not done"
	}
	printOK(out, "%q marked %s", t.Title, verb)
	return nil
}

func addRemove(topLevel *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete a task.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			state, err := a.load(ctx)
			if err != nil {
				return err
			}
			t, err := state.FindTask(args[0])
			if err != nil {
				return err
			}
			if err := a.store.DeleteTask(ctx, t.ID); err != nil {
				return err
			}
			printOK(cmd.OutOrStdout(), "deleted %q", t.Title)
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}

func (a *app) saveTasks(ctx context.Context, state *planner.State) error {
	if err := a.store.SaveAll(ctx, state.Tasks); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	return nil
}

// dayOrToday resolves an optional positional day argument.
func (a *app) dayOrToday(args []string) (string, error) {
	if len(args) == 0 {
		return model.Today(a.today()), nil
	}
	return a.resolveDay(args[0])
}
