package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sandeepkv93/daycal/internal/model"
	"github.com/sandeepkv93/daycal/internal/notify"
)

// Book is the task and backlog storage the daily job works against.
type Book interface {
	LoadTasks(ctx context.Context) ([]model.Task, error)
	SaveTasks(ctx context.Context, tasks []model.Task) error
	LoadLater(ctx context.Context) ([]model.LaterItem, error)
}

// Job is the once-a-day maintenance run: carry over unfinished work from
// yesterday, text today's digest and nag about the unscheduled backlog.
type Job struct {
	Book     Book
	Notifier *notify.Dispatcher
	Location *time.Location
	Now      func() time.Time
	Logger   *log.Logger
}

// Rollover is the outcome of moving yesterday's open tasks to today.
type Rollover struct {
	From    string `json:"rolled_from"`
	To      string `json:"rolled_to"`
	Changed int    `json:"changed"`
}

// Report collects the outcome of each step of a run. A failed step never
// prevents the next one.
type Report struct {
	Rollover    Rollover
	RolloverErr error
	DigestSID   string
	DigestErr   error
	ReminderSID string
	ReminderErr error
}

func (r Report) Err() error {
	return errors.Join(r.RolloverErr, r.DigestErr, r.ReminderErr)
}

func (j *Job) now() time.Time {
	now := time.Now
	if j.Now != nil {
		now = j.Now
	}
	loc := j.Location
	if loc == nil {
		loc = time.Local
	}
	return now().In(loc)
}

func (j *Job) logf(format string, args ...any) {
	if j.Logger != nil {
		j.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

// Rollover moves every task dated yesterday that is not completed to today.
// Tasks are saved only when at least one moved.
func (j *Job) Rollover(ctx context.Context) (Rollover, error) {
	now := j.now()
	res := Rollover{From: model.Yesterday(now), To: model.Today(now)}
	tasks, err := j.Book.LoadTasks(ctx)
	if err != nil {
		return res, fmt.Errorf("scheduler: load tasks: %w", err)
	}
	for i := range tasks {
		if tasks[i].Date == res.From && !tasks[i].Completed {
			tasks[i].Date = res.To
			res.Changed++
		}
	}
	if res.Changed == 0 {
		return res, nil
	}
	if err := j.Book.SaveTasks(ctx, tasks); err != nil {
		return res, fmt.Errorf("scheduler: save tasks: %w", err)
	}
	return res, nil
}

func (j *Job) sendDigest(ctx context.Context, today string) (string, error) {
	if !j.Notifier.Configured() {
		return "", nil
	}
	tasks, err := j.Book.LoadTasks(ctx)
	if err != nil {
		return "", fmt.Errorf("scheduler: load tasks: %w", err)
	}
	day := make([]model.Task, 0)
	for _, t := range tasks {
		if t.Date == today {
			day = append(day, t)
		}
	}
	if len(day) == 0 {
		return "", nil
	}
	sid, err := j.Notifier.SendDigest(ctx, "", today, notify.DigestItems(day))
	if errors.Is(err, notify.ErrNoDestination) {
		return "", nil
	}
	return sid, err
}

func (j *Job) sendReminder(ctx context.Context) (string, error) {
	if !j.Notifier.Configured() {
		return "", nil
	}
	later, err := j.Book.LoadLater(ctx)
	if err != nil {
		return "", fmt.Errorf("scheduler: load later: %w", err)
	}
	if len(later) == 0 {
		return "", nil
	}
	sid, err := j.Notifier.SendLaterReminder(ctx, "", len(later))
	if errors.Is(err, notify.ErrNoDestination) {
		return "", nil
	}
	return sid, err
}

// Run performs the rollover, the digest and the backlog reminder in order.
func (j *Job) Run(ctx context.Context) Report {
	var rep Report
	rep.Rollover, rep.RolloverErr = j.Rollover(ctx)
	if rep.RolloverErr != nil {
		j.logf("daily: rollover failed: %v", rep.RolloverErr)
	}
	rep.DigestSID, rep.DigestErr = j.sendDigest(ctx, rep.Rollover.To)
	if rep.DigestErr != nil {
		j.logf("daily: digest failed: %v", rep.DigestErr)
	}
	rep.ReminderSID, rep.ReminderErr = j.sendReminder(ctx)
	if rep.ReminderErr != nil {
		j.logf("daily: later reminder failed: %v", rep.ReminderErr)
	}
	return rep
}

// Daily runs a Job every day at Hour:00 in the job's location.
type Daily struct {
	Job  *Job
	Hour int
	// OnRun, if set, receives every report.
	OnRun func(Report)
}

// Next returns when the job will fire after the job's current time.
func (d *Daily) Next() time.Time {
	return model.NextAt(d.Job.now(), d.Hour)
}

// Run blocks until ctx ends. A run is always followed by scheduling the next
// one, whatever its outcome.
func (d *Daily) Run(ctx context.Context) error {
	if d.Hour < 0 || d.Hour > 23 {
		return fmt.Errorf("scheduler: invalid daily hour %d", d.Hour)
	}
	clock := d.Job.Now
	if clock == nil {
		clock = time.Now
	}
	engine := NewEngine(1, WithClock(clock))
	engine.Start()
	defer engine.Stop()

	schedule := func() error {
		at := d.Next()
		d.Job.logf("daily: next run at %s", at.Format(time.RFC3339))
		return engine.Schedule(Event{ID: model.FormatDay(at), Kind: KindDaily, At: at})
	}
	if err := schedule(); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-engine.C():
			if !ok {
				return ErrEngineStopped
			}
			if ev.Kind != KindDaily {
				continue
			}
			rep := d.Job.Run(ctx)
			if d.OnRun != nil {
				d.OnRun(rep)
			}
			if err := schedule(); err != nil {
				return err
			}
		}
	}
}
