package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func addLater(topLevel *cobra.Command, a *app) {
	list := func(cmd *cobra.Command, args []string) error {
		state, err := a.load(cmd.Context())
		if err != nil {
			return err
		}
		printLater(cmd.OutOrStdout(), state.Later)
		return nil
	}
	cmd := &cobra.Command{
		Use:   "later",
		Short: "Manage the list of tasks without a date.",
		Args:  cobra.NoArgs,
		RunE:  list,
	}
	ls := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List later items.",
		Args:    cobra.NoArgs,
		RunE:    list,
	}

	var notes string
	add := &cobra.Command{
		Use:   "add TITLE",
		Short: "Add an item to the later list.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			state, err := a.load(ctx)
			if err != nil {
				return err
			}
			item, err := state.AddLater(strings.Join(args, " "), notes)
			if err != nil {
				return err
			}
			if err := a.store.SaveLater(ctx, state.Later); err != nil {
				return err
			}
			printOK(cmd.OutOrStdout(), "added %s %q to later", shortID(item.ID), item.Title)
			return nil
		},
	}
	add.Flags().StringVarP(&notes, "notes", "n", "", "Free-form notes.")

	schedule := &cobra.Command{
		Use:   "schedule ID DATE",
		Short: "Give a later item a day, turning it into a task.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			state, err := a.load(ctx)
			if err != nil {
				return err
			}
			item, err := state.FindLater(args[0])
			if err != nil {
				return err
			}
			day, err := a.resolveDay(args[1])
			if err != nil {
				return err
			}
			t, err := state.Schedule(item.ID, day)
			if err != nil {
				return err
			}
			if err := a.saveTasks(ctx, state); err != nil {
				return err
			}
			if err := a.store.DeleteLater(ctx, item.ID); err != nil {
				return err
			}
			printOK(cmd.OutOrStdout(), "scheduled %q on %s", t.Title, t.Date)
			return nil
		},
	}

	remove := &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete a later item.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			state, err := a.load(ctx)
			if err != nil {
				return err
			}
			item, err := state.FindLater(args[0])
			if err != nil {
				return err
			}
			if err := a.store.DeleteLater(ctx, item.ID); err != nil {
				return err
			}
			printOK(cmd.OutOrStdout(), "deleted %q from later", item.Title)
			return nil
		},
	}

	push := &cobra.Command{
		Use:   "push TASK_ID",
		Short: "Move a task off the calendar into the later list.",
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
			item, err := state.Defer(t.ID)
			if err != nil {
				return err
			}
			if err := a.store.DeleteTask(ctx, t.ID); err != nil {
				return err
			}
			if err := a.store.SaveLater(ctx, state.Later); err != nil {
				return err
			}
			printOK(cmd.OutOrStdout(), "moved %q to later", item.Title)
			return nil
		},
	}

	cmd.AddCommand(ls, add, schedule, remove, push)
	topLevel.AddCommand(cmd)
}
