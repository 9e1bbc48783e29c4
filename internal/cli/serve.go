package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/daycal/internal/notify"
	"github.com/sandeepkv93/daycal/internal/scheduler"
	"github.com/sandeepkv93/daycal/internal/server"
	"github.com/sandeepkv93/daycal/internal/storage"
	"github.com/sandeepkv93/daycal/internal/taskstore"
)

type serveOptions struct {
	noCron bool
	addr   string
}

func addServe(topLevel *cobra.Command, a *app) {
	o := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the daily 06:00 job.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, o)
		},
	}
	cmd.Flags().StringVar(&o.addr, "addr", "", "Listen address; defaults to :$PORT.")
	cmd.Flags().BoolVar(&o.noCron, "no-cron", false, "Do not run the daily rollover and digest in-process.")
	topLevel.AddCommand(cmd)
}

// openRepository prefers the hosted backend and falls back to the SQLite file.
func (a *app) openRepository() (storage.Repository, func() error, error) {
	if a.cfg.SupabaseConfigured() {
		repo, err := storage.NewPostgrestRepository(a.cfg.SupabaseURL, a.cfg.SupabaseKey())
		if err != nil {
			return nil, nil, err
		}
		a.logger.Printf("storage: using hosted backend at %s", a.cfg.SupabaseURL)
		return repo, func() error { return nil }, nil
	}
	repo, err := storage.OpenSQLite(a.cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	a.logger.Printf("storage: using sqlite at %s", a.cfg.DBPath)
	return repo, repo.Close, nil
}

func (a *app) dispatcher() (*notify.Dispatcher, error) {
	if !a.cfg.TwilioConfigured() {
		return &notify.Dispatcher{DefaultTo: a.cfg.DailySMSTo}, nil
	}
	sender, err := notify.NewTwilioSender(a.cfg.TwilioAccountSID, a.cfg.TwilioAuthToken, a.cfg.TwilioFrom)
	if err != nil {
		return nil, err
	}
	return &notify.Dispatcher{Sender: sender, DefaultTo: a.cfg.DailySMSTo}, nil
}

func (a *app) serve(ctx context.Context, o *serveOptions) error {
	repo, closeRepo, err := a.openRepository()
	if err != nil {
		return err
	}
	defer func() {
		if err := closeRepo(); err != nil {
			a.logger.Printf("storage: close: %v", err)
		}
	}()

	notifier, err := a.dispatcher()
	if err != nil {
		return err
	}
	if !notifier.Configured() {
		a.logger.Printf("notify: twilio is not configured, sms is disabled")
	}
	job := &scheduler.Job{
		Book:     taskstore.RepositoryReplica{Repo: repo},
		Notifier: notifier,
		Location: a.loc,
		Logger:   a.logger,
	}
	srv := server.New(repo, server.Options{
		Notifier:        notifier,
		Rollover:        job,
		SupabaseURL:     a.cfg.SupabaseURL,
		SupabaseAnonKey: a.cfg.SupabaseAnonKey,
		StaticDir:       a.cfg.StaticDir,
	})

	addr := o.addr
	if addr == "" {
		addr = a.cfg.Addr()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	errs := make(chan error, 2)
	running := 1
	go func() { errs <- srv.Run(ctx, addr) }()
	if !o.noCron {
		running++
		daily := &scheduler.Daily{Job: job, Hour: a.cfg.DailyHour}
		go func() {
			if err := daily.Run(ctx); err != nil {
				errs <- fmt.Errorf("daily job: %w", err)
				return
			}
			errs <- nil
		}()
	}

	var first error
	for i := 0; i < running; i++ {
		err := <-errs
		if err != nil && !errors.Is(err, context.Canceled) && first == nil {
			first = err
		}
		cancel()
	}
	return first
}
