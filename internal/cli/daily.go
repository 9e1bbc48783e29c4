package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/daycal/internal/config"
	"github.com/sandeepkv93/daycal/internal/model"
	"github.com/sandeepkv93/daycal/internal/notify"
	"github.com/sandeepkv93/daycal/internal/scheduler"
	"github.com/sandeepkv93/daycal/internal/taskstore"
)

type smsOptions struct {
	to string
}

func addSMS(topLevel *cobra.Command, a *app) {
	o := &smsOptions{}
	cmd := &cobra.Command{
		Use:   "sms [DATE]",
		Short: "Text the task list of a day through the server.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			state, err := a.load(ctx)
			if err != nil {
				return err
			}
			day, err := a.dayOrToday(args)
			if err != nil {
				return err
			}
			to := notify.NormalizePhone(o.to)
			if to == "" {
				to = a.cache.Phone()
			}
			if to == "" {
				to = notify.NormalizePhone(a.cfg.DailySMSTo)
			}
			if to == "" {
				return fmt.Errorf("no destination: pass --to or set %s", config.KeyDailySMSTo)
			}
			api, err := a.client()
			if err != nil {
				return err
			}
			sid, err := api.SendSMS(ctx, to, day, notify.DigestItems(state.Day(day, "")))
			if err != nil {
				return err
			}
			if err := a.cache.SetPhone(to); err != nil {
				a.logger.Printf("cache: remember phone: %v", err)
			}
			printOK(cmd.OutOrStdout(), "sent %s to %s (%s)", day, to, sid)
			return nil
		},
	}
	cmd.Flags().StringVar(&o.to, "to", "", "Destination phone number; defaults to the last one used.")
	topLevel.AddCommand(cmd)
}

type rolloverOptions struct {
	notify    bool
	viaServer bool
}

func addRollover(topLevel *cobra.Command, a *app) {
	o := &rolloverOptions{}
	cmd := &cobra.Command{
		Use:   "rollover",
		Short: "Move yesterday's unfinished tasks to today.",
		Long: `Move yesterday's unfinished tasks to today.

By default the move happens locally and syncs like any other edit. With
--via-server the running server does it, exactly as its daily job would.
--notify also sends the digest and later reminder when Twilio is configured.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			if o.viaServer {
				api, err := a.client()
				if err != nil {
					return err
				}
				from, to, changed, err := api.Rollover(ctx)
				if err != nil {
					return err
				}
				printOK(out, "rolled %d task(s) from %s to %s", changed, from, to)
				return nil
			}

			if err := a.openStore(); err != nil {
				return err
			}
			job := &scheduler.Job{
				Book:     storeBook{a.store},
				Location: a.loc,
				Now:      a.now,
				Logger:   a.logger,
			}
			if !o.notify {
				r, err := job.Rollover(ctx)
				if err != nil {
					return err
				}
				printOK(out, "rolled %d task(s) from %s to %s", r.Changed, r.From, r.To)
				return nil
			}
			notifier, err := a.dispatcher()
			if err != nil {
				return err
			}
			job.Notifier = notifier
			rep := job.Run(ctx)
			printOK(out, "rolled %d task(s) from %s to %s", rep.Rollover.Changed, rep.Rollover.From, rep.Rollover.To)
			var sent []string
			if rep.DigestSID != "" {
				sent = append(sent, "digest "+rep.DigestSID)
			}
			if rep.ReminderSID != "" {
				sent = append(sent, "reminder "+rep.ReminderSID)
			}
			if len(sent) > 0 {
				printOK(out, "sent %s", strings.Join(sent, ", "))
			}
			return rep.Err()
		},
	}
	cmd.Flags().BoolVar(&o.notify, "notify", false, "Also send the digest and later reminder.")
	cmd.Flags().BoolVar(&o.viaServer, "via-server", false, "Ask the server to run the rollover.")
	topLevel.AddCommand(cmd)
}

// storeBook lets the daily job run against the local store: reads refresh
// from the backend and saves replicate in the background.
type storeBook struct {
	store *taskstore.Store
}

var _ scheduler.Book = storeBook{}

func (b storeBook) LoadTasks(ctx context.Context) ([]model.Task, error) {
	return b.store.LoadTasks(ctx)
}

func (b storeBook) SaveTasks(ctx context.Context, tasks []model.Task) error {
	return b.store.SaveAll(ctx, tasks)
}

func (b storeBook) DeleteTask(ctx context.Context, id string) error {
	return b.store.DeleteTask(ctx, id)
}

func (b storeBook) LoadLater(ctx context.Context) ([]model.LaterItem, error) {
	return b.store.LoadLater(ctx)
}

func (b storeBook) SaveLater(ctx context.Context, items []model.LaterItem) error {
	return b.store.SaveLater(ctx, items)
}
