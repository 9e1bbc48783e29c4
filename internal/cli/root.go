// Package cli is the daycal command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/daycal/internal/cache"
	"github.com/sandeepkv93/daycal/internal/client"
	"github.com/sandeepkv93/daycal/internal/config"
	"github.com/sandeepkv93/daycal/internal/model"
	"github.com/sandeepkv93/daycal/internal/planner"
	"github.com/sandeepkv93/daycal/internal/storage"
	"github.com/sandeepkv93/daycal/internal/taskstore"
)

type app struct {
	envFile string
	offline bool
	now     func() time.Time

	cfg    config.Config
	loc    *time.Location
	logger *log.Logger

	cache *cache.Cache
	store *taskstore.Store
	api   *client.Client
}

// Execute runs the command tree and waits for pending syncs, including
// after a failed command.
func Execute(ctx context.Context) error {
	cmd, a := newRoot()
	err := cmd.ExecuteContext(ctx)
	return errors.Join(err, a.close())
}

func newRoot() (*cobra.Command, *app) {
	a := &app{now: time.Now}

	cmd := &cobra.Command{
		Use:           "daycal",
		Short:         "A day-by-day task calendar with CSV import and SMS digests.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.configure(cmd.ErrOrStderr())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "Optional dotenv file with settings.")
	cmd.PersistentFlags().BoolVar(&a.offline, "offline", false, "Work against the local cache only, without syncing.")

	addServe(cmd, a)
	addImport(cmd, a)
	addExport(cmd, a)
	addTaskCommands(cmd, a)
	addAgenda(cmd, a)
	addCalendar(cmd, a)
	addLater(cmd, a)
	addSMS(cmd, a)
	addRollover(cmd, a)
	addProjects(cmd, a)
	return cmd, a
}

func (a *app) configure(stderr io.Writer) error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.loc = loc
	a.logger = log.New(stderr, "daycal: ", 0)
	return nil
}

// openStore opens the local cache and wires replication: the hosted backend
// directly when configured, the daycal server as the fallback.
func (a *app) openStore() error {
	if a.store != nil {
		return nil
	}
	c, err := cache.Open(a.cfg.CacheDir)
	if err != nil {
		return err
	}
	opts := taskstore.Options{Logger: a.logger}
	if !a.offline {
		if a.cfg.SupabaseClientConfigured() {
			repo, err := storage.NewPostgrestRepository(a.cfg.SupabaseURL, a.cfg.SupabaseAnonKey)
			if err != nil {
				return err
			}
			opts.Primary = taskstore.RepositoryReplica{Repo: repo}
		}
		api, err := a.client()
		if err != nil {
			return err
		}
		opts.Fallback = api
	}
	a.cache = c
	a.store = taskstore.New(c, opts)
	return nil
}

func (a *app) client() (*client.Client, error) {
	if a.api != nil {
		return a.api, nil
	}
	api, err := client.New(a.cfg.ServerURL, nil)
	if err != nil {
		return nil, err
	}
	a.api = api
	return api, nil
}

func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}

// load refreshes tasks and the backlog from the backend and returns them as
// planner state.
func (a *app) load(ctx context.Context) (*planner.State, error) {
	if err := a.openStore(); err != nil {
		return nil, err
	}
	tasks, err := a.store.LoadTasks(ctx)
	if err != nil {
		return nil, err
	}
	later, err := a.store.LoadLater(ctx)
	if err != nil {
		return nil, err
	}
	projects, err := a.cache.Projects()
	if err != nil {
		return nil, err
	}
	return &planner.State{Tasks: tasks, Later: later, Projects: projects}, nil
}

func (a *app) today() time.Time {
	return a.now().In(a.loc)
}

// resolveDay accepts YYYY-MM-DD or one of today, tomorrow and yesterday.
func (a *app) resolveDay(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return model.Today(a.today()), nil
	case "tomorrow":
		return model.FormatDay(a.today().AddDate(0, 0, 1)), nil
	case "yesterday":
		return model.Yesterday(a.today()), nil
	}
	if _, err := model.ParseDay(s); err != nil {
		return "", fmt.Errorf("%w, want YYYY-MM-DD", err)
	}
	return s, nil
}
