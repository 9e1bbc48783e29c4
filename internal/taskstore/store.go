// Package taskstore is the client's view of tasks and the later backlog: a
// write-through local cache with asynchronous, best-effort replication to a
// backend.
package taskstore

import (
	"context"
	"errors"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/sandeepkv93/daycal/internal/model"
)

var ErrClosed = errors.New("taskstore: closed")

// Replica is a remote copy of the task list and backlog.
type Replica interface {
	LoadTasks(ctx context.Context) ([]model.Task, error)
	SaveTasks(ctx context.Context, tasks []model.Task) error
	LoadLater(ctx context.Context) ([]model.LaterItem, error)
	SaveLater(ctx context.Context, items []model.LaterItem) error
}

// Deleter is implemented by replicas that can remove single rows; replicas
// without it receive the whole list instead.
type Deleter interface {
	DeleteTask(ctx context.Context, id string) error
	DeleteLater(ctx context.Context, id string) error
}

type LocalCache interface {
	Tasks() ([]model.Task, error)
	SetTasks([]model.Task) error
	Later() ([]model.LaterItem, error)
	SetLater([]model.LaterItem) error
}

type Op string

const (
	OpSaveTasks   Op = "save_tasks"
	OpSeedTasks   Op = "seed_tasks"
	OpDeleteTask  Op = "delete_task"
	OpSaveLater   Op = "save_later"
	OpDeleteLater Op = "delete_later"
)

type Via string

const (
	ViaPrimary  Via = "primary"
	ViaFallback Via = "fallback"
)

// SyncResult reports how one replication attempt ended.
type SyncResult struct {
	Op  Op
	Via Via
	Err error
}

type Options struct {
	// Primary is the direct backend connection. Optional.
	Primary Replica
	// Fallback is the durable transport used when Primary is absent or fails.
	Fallback Replica
	// OnSync is called from the replication worker after every attempt. It
	// must not call back into the Store synchronously.
	OnSync func(SyncResult)
	// Timeout bounds each replication attempt. Zero means 30s.
	Timeout time.Duration
	Logger  *log.Logger
}

type job struct {
	op  Op
	ctx context.Context
	run func(ctx context.Context) SyncResult
}

type Store struct {
	cache    LocalCache
	primary  Replica
	fallback Replica
	onSync   func(SyncResult)
	timeout  time.Duration
	logger   *log.Logger

	mu      sync.Mutex
	closed  bool
	jobs    chan job
	pending sync.WaitGroup
	done    chan struct{}
}

func New(cache LocalCache, opts Options) *Store {
	s := &Store{
		cache:    cache,
		primary:  opts.Primary,
		fallback: opts.Fallback,
		onSync:   opts.OnSync,
		timeout:  opts.Timeout,
		logger:   opts.Logger,
		jobs:     make(chan job, 64),
		done:     make(chan struct{}),
	}
	if s.timeout <= 0 {
		s.timeout = 30 * time.Second
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	go s.worker()
	return s
}

func (s *Store) worker() {
	defer close(s.done)
	for j := range s.jobs {
		ctx, cancel := context.WithTimeout(j.ctx, s.timeout)
		res := j.run(ctx)
		cancel()
		res.Op = j.op
		if res.Err != nil {
			s.logger.Printf("taskstore: %s via %s failed: %v", res.Op, res.Via, res.Err)
		}
		if s.onSync != nil {
			s.onSync(res)
		}
		s.pending.Done()
	}
}

// enqueue detaches the job from the caller's cancellation so a replication
// started just before shutdown still runs.
func (s *Store) enqueue(ctx context.Context, op Op, run func(ctx context.Context) SyncResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.pending.Add(1)
	s.jobs <- job{op: op, ctx: context.WithoutCancel(ctx), run: run}
	return nil
}

func (s *Store) replicated() bool {
	return s.primary != nil || s.fallback != nil
}

// Flush blocks until every queued replication has finished or ctx ends.
func (s *Store) Flush(ctx context.Context) error {
	idle := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(idle)
	}()
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting work and waits for queued replication to drain.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.jobs)
	s.mu.Unlock()
	<-s.done
	return nil
}

// Tasks returns the cached task list.
func (s *Store) Tasks() ([]model.Task, error) {
	return s.cache.Tasks()
}

// Later returns the cached backlog.
func (s *Store) Later() ([]model.LaterItem, error) {
	return s.cache.Later()
}

// LoadTasks refreshes the cache from the backend. A non-empty backend wins
// over the cache; an empty backend is seeded from the cache. When the
// backend is unreachable the cache is returned as is.
func (s *Store) LoadTasks(ctx context.Context) ([]model.Task, error) {
	local, cacheErr := s.cache.Tasks()
	if cacheErr != nil {
		s.logger.Printf("taskstore: read cached tasks: %v", cacheErr)
		local = []model.Task{}
	}
	remote, via := s.primary, ViaPrimary
	if remote == nil {
		remote, via = s.fallback, ViaFallback
	}
	if remote == nil {
		return local, cacheErr
	}

	rows, err := remote.LoadTasks(ctx)
	if err != nil {
		s.logger.Printf("taskstore: load tasks: %v", err)
		return local, cacheErr
	}
	if len(rows) > 0 {
		if err := s.cache.SetTasks(rows); err != nil {
			return rows, err
		}
		return rows, nil
	}
	if len(local) > 0 {
		seed := model.CloneTasks(local)
		if err := s.enqueue(ctx, OpSeedTasks, func(ctx context.Context) SyncResult {
			return SyncResult{Via: via, Err: remote.SaveTasks(ctx, seed)}
		}); err != nil {
			return local, err
		}
	}
	return local, cacheErr
}

// SaveAll writes tasks to the cache and replicates them in the background.
// On a replica with row deletes, tasks that were cached but are missing from
// tasks are deleted after the upsert.
func (s *Store) SaveAll(ctx context.Context, tasks []model.Task) error {
	previous, err := s.cache.Tasks()
	if err != nil {
		s.logger.Printf("taskstore: read cached tasks: %v", err)
	}
	snapshot := model.CloneTasks(tasks)
	if err := s.cache.SetTasks(snapshot); err != nil {
		return err
	}
	if !s.replicated() {
		return nil
	}
	removed := droppedIDs(previous, snapshot)
	return s.enqueue(ctx, OpSaveTasks, func(ctx context.Context) SyncResult {
		return s.withFallback(ctx,
			func(ctx context.Context, r Replica) error {
				if err := r.SaveTasks(ctx, snapshot); err != nil {
					return err
				}
				d, ok := r.(Deleter)
				if !ok {
					return nil
				}
				for _, id := range removed {
					if err := d.DeleteTask(ctx, id); err != nil {
						return err
					}
				}
				return nil
			},
			func(ctx context.Context, r Replica) error { return r.SaveTasks(ctx, snapshot) },
		)
	})
}

func droppedIDs(before, after []model.Task) []string {
	kept := make(map[string]bool, len(after))
	for _, t := range after {
		kept[t.ID] = true
	}
	var out []string
	for _, t := range before {
		if !kept[t.ID] {
			out = append(out, t.ID)
		}
	}
	return out
}

// DeleteTask removes a task from the cache and the backend.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	tasks, err := s.cache.Tasks()
	if err != nil {
		return err
	}
	tasks = slices.DeleteFunc(tasks, func(t model.Task) bool { return t.ID == id })
	if err := s.cache.SetTasks(tasks); err != nil {
		return err
	}
	if !s.replicated() {
		return nil
	}
	snapshot := model.CloneTasks(tasks)
	return s.enqueue(ctx, OpDeleteTask, func(ctx context.Context) SyncResult {
		return s.withFallback(ctx,
			func(ctx context.Context, r Replica) error {
				if d, ok := r.(Deleter); ok {
					return d.DeleteTask(ctx, id)
				}
				return r.SaveTasks(ctx, snapshot)
			},
			func(ctx context.Context, r Replica) error { return r.SaveTasks(ctx, snapshot) },
		)
	})
}

// LoadLater refreshes the backlog. A non-empty backend result replaces the
// local backup. An empty backend result restores the backup and pushes it
// back, even when the backend was emptied on purpose.
func (s *Store) LoadLater(ctx context.Context) ([]model.LaterItem, error) {
	backup, cacheErr := s.cache.Later()
	if cacheErr != nil {
		s.logger.Printf("taskstore: read later backup: %v", cacheErr)
		backup = []model.LaterItem{}
	}
	remote := s.fallback
	if remote == nil {
		remote = s.primary
	}
	if remote == nil {
		return backup, cacheErr
	}

	items, err := remote.LoadLater(ctx)
	if err != nil {
		s.logger.Printf("taskstore: load later: %v", err)
		return backup, cacheErr
	}
	if len(items) > 0 {
		if err := s.cache.SetLater(items); err != nil {
			return items, err
		}
		return items, nil
	}
	if len(backup) > 0 {
		return backup, s.SaveLater(ctx, backup)
	}
	return []model.LaterItem{}, nil
}

// SaveLater writes the backlog backup and replicates it in the background.
func (s *Store) SaveLater(ctx context.Context, items []model.LaterItem) error {
	snapshot := model.CloneLater(items)
	if err := s.cache.SetLater(snapshot); err != nil {
		return err
	}
	if !s.replicated() {
		return nil
	}
	return s.enqueue(ctx, OpSaveLater, func(ctx context.Context) SyncResult {
		return s.withFallback(ctx,
			func(ctx context.Context, r Replica) error { return r.SaveLater(ctx, snapshot) },
			func(ctx context.Context, r Replica) error { return r.SaveLater(ctx, snapshot) },
		)
	})
}

// DeleteLater removes one backlog item locally and remotely.
func (s *Store) DeleteLater(ctx context.Context, id string) error {
	items, err := s.cache.Later()
	if err != nil {
		return err
	}
	items = slices.DeleteFunc(items, func(it model.LaterItem) bool { return it.ID == id })
	if err := s.cache.SetLater(items); err != nil {
		return err
	}
	if !s.replicated() {
		return nil
	}
	snapshot := model.CloneLater(items)
	return s.enqueue(ctx, OpDeleteLater, func(ctx context.Context) SyncResult {
		return s.withFallback(ctx,
			func(ctx context.Context, r Replica) error {
				if d, ok := r.(Deleter); ok {
					return d.DeleteLater(ctx, id)
				}
				return r.SaveLater(ctx, snapshot)
			},
			func(ctx context.Context, r Replica) error { return r.SaveLater(ctx, snapshot) },
		)
	})
}

// withFallback tries the primary replica and, if it is missing or fails,
// the fallback.
func (s *Store) withFallback(ctx context.Context, onPrimary, onFallback func(context.Context, Replica) error) SyncResult {
	if s.primary != nil {
		err := onPrimary(ctx, s.primary)
		if err == nil || s.fallback == nil {
			return SyncResult{Via: ViaPrimary, Err: err}
		}
		s.logger.Printf("taskstore: primary replica failed, retrying via fallback: %v", err)
	}
	return SyncResult{Via: ViaFallback, Err: onFallback(ctx, s.fallback)}
}
