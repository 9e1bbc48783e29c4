package taskstore

import (
	"context"
	"errors"
	"io"
	"log"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/sandeepkv93/daycal/internal/cache"
	"github.com/sandeepkv93/daycal/internal/model"
)

type fakeReplica struct {
	mu        sync.Mutex
	tasks     []model.Task
	later     []model.LaterItem
	loadErr   error
	saveErr   error
	saves     int
	laterSave int
}

func (f *fakeReplica) LoadTasks(context.Context) ([]model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return model.CloneTasks(f.tasks), nil
}

func (f *fakeReplica) SaveTasks(_ context.Context, tasks []model.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.tasks = model.CloneTasks(tasks)
	return nil
}

func (f *fakeReplica) LoadLater(context.Context) ([]model.LaterItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return model.CloneLater(f.later), nil
}

func (f *fakeReplica) SaveLater(_ context.Context, items []model.LaterItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.laterSave++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.later = model.CloneLater(items)
	return nil
}

func (f *fakeReplica) snapshot() ([]model.Task, []model.LaterItem, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return model.CloneTasks(f.tasks), model.CloneLater(f.later), f.saves
}

func newTestStore(t *testing.T, opts Options) (*Store, *cache.Cache) {
	t.Helper()
	c, err := cache.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	opts.Logger = log.New(io.Discard, "", 0)
	s := New(c, opts)
	t.Cleanup(func() { _ = s.Close() })
	return s, c
}

func flush(t *testing.T, s *Store) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
}

func task(id, date string) model.Task {
	return model.Task{ID: id, Title: "task " + id, Date: date}
}

func TestSaveAllWritesCacheThenReplicates(t *testing.T) {
	primary := &fakeReplica{}
	results := make(chan SyncResult, 1)
	s, c := newTestStore(t, Options{Primary: primary, OnSync: func(r SyncResult) { results <- r }})

	if err := s.SaveAll(context.Background(), []model.Task{task("a", "2026-02-09")}); err != nil {
		t.Fatalf("save all: %v", err)
	}
	cached, _ := c.Tasks()
	if len(cached) != 1 {
		t.Fatalf("expected cache updated synchronously, got %v", cached)
	}
	res := <-results
	if res.Err != nil || res.Via != ViaPrimary || res.Op != OpSaveTasks {
		t.Fatalf("unexpected sync result: %+v", res)
	}
	remote, _, _ := primary.snapshot()
	if len(remote) != 1 || remote[0].ID != "a" {
		t.Fatalf("unexpected remote tasks: %v", remote)
	}
}

func TestSaveAllFallsBackWhenPrimaryFails(t *testing.T) {
	primary := &fakeReplica{saveErr: errors.New("offline")}
	fallback := &fakeReplica{}
	var mu sync.Mutex
	var got []SyncResult
	s, _ := newTestStore(t, Options{Primary: primary, Fallback: fallback, OnSync: func(r SyncResult) {
		mu.Lock()
		got = append(got, r)
		mu.Unlock()
	}})

	ctx, cancel := context.WithCancel(context.Background())
	if err := s.SaveAll(ctx, []model.Task{task("a", "2026-02-09")}); err != nil {
		t.Fatalf("save all: %v", err)
	}
	cancel()
	flush(t, s)

	remote, _, _ := fallback.snapshot()
	if len(remote) != 1 {
		t.Fatalf("expected fallback to receive tasks after caller cancel, got %v", remote)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0].Via != ViaFallback || got[0].Err != nil {
		t.Fatalf("unexpected sync results: %+v", got)
	}
}

func TestSaveAllWithoutReplicasIsLocalOnly(t *testing.T) {
	s, c := newTestStore(t, Options{})
	if err := s.SaveAll(context.Background(), []model.Task{task("a", "2026-02-09")}); err != nil {
		t.Fatalf("save all: %v", err)
	}
	flush(t, s)
	cached, _ := c.Tasks()
	if len(cached) != 1 {
		t.Fatalf("expected cached task, got %v", cached)
	}
}

func TestLoadTasksBackendWins(t *testing.T) {
	primary := &fakeReplica{tasks: []model.Task{task("remote", "2026-02-09")}}
	s, c := newTestStore(t, Options{Primary: primary})
	_ = c.SetTasks([]model.Task{task("local", "2026-02-09")})

	tasks, err := s.LoadTasks(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != "remote" {
		t.Fatalf("expected backend tasks, got %v", tasks)
	}
	cached, _ := c.Tasks()
	if len(cached) != 1 || cached[0].ID != "remote" {
		t.Fatalf("expected cache overwritten, got %v", cached)
	}
}

func TestLoadTasksSeedsEmptyBackend(t *testing.T) {
	primary := &fakeReplica{}
	s, c := newTestStore(t, Options{Primary: primary})
	_ = c.SetTasks([]model.Task{task("local", "2026-02-09")})

	tasks, err := s.LoadTasks(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != "local" {
		t.Fatalf("expected cached tasks, got %v", tasks)
	}
	flush(t, s)
	remote, _, _ := primary.snapshot()
	if len(remote) != 1 || remote[0].ID != "local" {
		t.Fatalf("expected backend seeded from cache, got %v", remote)
	}
}

func TestLoadTasksUnreachableBackendKeepsCache(t *testing.T) {
	primary := &fakeReplica{loadErr: errors.New("timeout")}
	s, c := newTestStore(t, Options{Primary: primary})
	_ = c.SetTasks([]model.Task{task("local", "2026-02-09")})

	tasks, err := s.LoadTasks(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != "local" {
		t.Fatalf("expected cached tasks, got %v", tasks)
	}
	flush(t, s)
	if _, _, saves := primary.snapshot(); saves != 0 {
		t.Fatalf("expected no seeding on failure, got %d saves", saves)
	}
}

func TestLoadLaterRestoresBackupWhenBackendEmpty(t *testing.T) {
	fallback := &fakeReplica{}
	s, c := newTestStore(t, Options{Fallback: fallback})
	_ = c.SetLater([]model.LaterItem{{ID: "l1", Title: "backup"}})

	items, err := s.LoadLater(context.Background())
	if err != nil {
		t.Fatalf("load later: %v", err)
	}
	if len(items) != 1 || items[0].ID != "l1" {
		t.Fatalf("expected backup restored, got %v", items)
	}
	flush(t, s)
	_, remote, _ := fallback.snapshot()
	if len(remote) != 1 {
		t.Fatalf("expected backup pushed back to backend, got %v", remote)
	}
}

func TestLoadLaterBackendRefreshesBackup(t *testing.T) {
	fallback := &fakeReplica{later: []model.LaterItem{{ID: "srv", Title: "server"}}}
	s, c := newTestStore(t, Options{Fallback: fallback})
	_ = c.SetLater([]model.LaterItem{{ID: "old", Title: "stale"}})

	items, err := s.LoadLater(context.Background())
	if err != nil {
		t.Fatalf("load later: %v", err)
	}
	if len(items) != 1 || items[0].ID != "srv" {
		t.Fatalf("expected server items, got %v", items)
	}
	backup, _ := c.Later()
	if len(backup) != 1 || backup[0].ID != "srv" {
		t.Fatalf("expected backup refreshed, got %v", backup)
	}
}

func TestLoadLaterBothEmpty(t *testing.T) {
	s, _ := newTestStore(t, Options{Fallback: &fakeReplica{}})
	items, err := s.LoadLater(context.Background())
	if err != nil || len(items) != 0 {
		t.Fatalf("expected empty backlog, got %v %v", items, err)
	}
}

func TestDeleteTaskWithoutDeleterSendsWholeList(t *testing.T) {
	fallback := &fakeReplica{}
	s, c := newTestStore(t, Options{Fallback: fallback})
	_ = c.SetTasks([]model.Task{task("a", "2026-02-09"), task("b", "2026-02-09")})

	if err := s.DeleteTask(context.Background(), "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	flush(t, s)
	remote, _, _ := fallback.snapshot()
	if len(remote) != 1 || remote[0].ID != "b" {
		t.Fatalf("expected remaining list replicated, got %v", remote)
	}
}

func TestClosedStoreRejectsReplication(t *testing.T) {
	s, _ := newTestStore(t, Options{Primary: &fakeReplica{}})
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	err := s.SaveAll(context.Background(), []model.Task{task("a", "2026-02-09")})
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

// upsertReplica mirrors a row store: saves never remove rows, only deletes do.
type upsertReplica struct {
	fakeReplica
	deleted []string
}

func (u *upsertReplica) SaveTasks(_ context.Context, tasks []model.Task) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.saves++
	for _, t := range tasks {
		i := slices.IndexFunc(u.tasks, func(have model.Task) bool { return have.ID == t.ID })
		if i < 0 {
			u.tasks = append(u.tasks, t)
			continue
		}
		u.tasks[i] = t
	}
	return nil
}

func (u *upsertReplica) DeleteTask(_ context.Context, id string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.deleted = append(u.deleted, id)
	u.tasks = slices.DeleteFunc(u.tasks, func(t model.Task) bool { return t.ID == id })
	return nil
}

func (u *upsertReplica) DeleteLater(context.Context, string) error {
	return nil
}

func TestSaveAllDeletesDroppedTasksOnUpsertReplica(t *testing.T) {
	primary := &upsertReplica{}
	s, _ := newTestStore(t, Options{Primary: primary})
	ctx := context.Background()

	if err := s.SaveAll(ctx, []model.Task{task("a", "2026-02-09"), task("b", "2026-02-09")}); err != nil {
		t.Fatalf("save all: %v", err)
	}
	if err := s.SaveAll(ctx, []model.Task{task("a", "2026-02-09")}); err != nil {
		t.Fatalf("save all: %v", err)
	}
	flush(t, s)

	tasks, err := s.LoadTasks(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != "a" {
		t.Fatalf("dropped task came back after reload: %v", tasks)
	}
	primary.mu.Lock()
	defer primary.mu.Unlock()
	if len(primary.deleted) != 1 || primary.deleted[0] != "b" {
		t.Fatalf("expected b deleted remotely, got %v", primary.deleted)
	}
}

func TestDeleteTaskUsesRowDelete(t *testing.T) {
	primary := &upsertReplica{}
	s, c := newTestStore(t, Options{Primary: primary})
	ctx := context.Background()
	_ = c.SetTasks([]model.Task{task("a", "2026-02-09"), task("b", "2026-02-09")})
	primary.tasks = []model.Task{task("a", "2026-02-09"), task("b", "2026-02-09")}

	if err := s.DeleteTask(ctx, "b"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	flush(t, s)
	remote, _, saves := primary.snapshot()
	if len(remote) != 1 || remote[0].ID != "a" || saves != 0 {
		t.Fatalf("expected a single row delete, got %v after %d saves", remote, saves)
	}
}
