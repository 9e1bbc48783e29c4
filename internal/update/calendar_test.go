package update

import (
	"context"
	"errors"
	"io"
	"log"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/daycal/internal/cache"
	"github.com/sandeepkv93/daycal/internal/model"
	"github.com/sandeepkv93/daycal/internal/planner"
	"github.com/sandeepkv93/daycal/internal/storage"
	"github.com/sandeepkv93/daycal/internal/taskstore"
)

type fakeSaver struct {
	tasks   []model.Task
	later   []model.LaterItem
	deleted []string
	saves   int
	saveErr error
}

func (f *fakeSaver) SaveTasks(_ context.Context, tasks []model.Task) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.tasks = model.CloneTasks(tasks)
	return nil
}

func (f *fakeSaver) DeleteTask(_ context.Context, id string) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeSaver) SaveLater(_ context.Context, items []model.LaterItem) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.later = model.CloneLater(items)
	return nil
}

func fixedNow() time.Time {
	return time.Date(2026, 2, 9, 10, 0, 0, 0, time.UTC)
}

func calendarFixture() (CalendarModel, *planner.State, *fakeSaver) {
	state := &planner.State{Tasks: []model.Task{
		{ID: "a", Title: "Standup", Date: "2026-02-09", Time: "09:00"},
		{ID: "b", Title: "Write", Date: "2026-02-09"},
		{ID: "c", Title: "Gym", Date: "2026-02-10"},
		{ID: "d", Title: "Rent", Date: "2026-03-31"},
	}}
	saver := &fakeSaver{}
	return NewCalendarModel(context.Background(), state, saver, fixedNow), state, saver
}

func keys(t *testing.T, m CalendarModel, in ...string) CalendarModel {
	t.Helper()
	for _, k := range in {
		updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
		m = updated.(CalendarModel)
	}
	return m
}

func TestCalendarStartsOnToday(t *testing.T) {
	m, _, _ := calendarFixture()
	if m.Day() != "2026-02-09" || m.Cursor != 0 {
		t.Fatalf("unexpected start: day=%s cursor=%d", m.Day(), m.Cursor)
	}
}

func TestCalendarNavigation(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want string
	}{
		{name: "next day", keys: []string{"l"}, want: "2026-02-10"},
		{name: "prev day", keys: []string{"h"}, want: "2026-02-08"},
		{name: "next week", keys: []string{"L"}, want: "2026-02-16"},
		{name: "prev week", keys: []string{"H"}, want: "2026-02-02"},
		{name: "next month", keys: []string{">"}, want: "2026-03-09"},
		{name: "back to today", keys: []string{">", ">", "t"}, want: "2026-02-09"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, _ := calendarFixture()
			m = keys(t, m, tt.keys...)
			if m.Day() != tt.want {
				t.Fatalf("day = %s, want %s", m.Day(), tt.want)
			}
		})
	}
}

func TestCalendarMonthShiftClampsDay(t *testing.T) {
	m, _, _ := calendarFixture()
	m.Focus = time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	m = keys(t, m, ">")
	if m.Day() != "2026-02-28" {
		t.Fatalf("expected clamp to 2026-02-28, got %s", m.Day())
	}
}

func TestCalendarToggleSaves(t *testing.T) {
	m, state, saver := calendarFixture()
	m = keys(t, m, "j", "x")
	if !state.Tasks[1].Completed {
		t.Fatalf("expected Write completed: %+v", state.Tasks)
	}
	if saver.saves != 1 || !saver.tasks[1].Completed {
		t.Fatalf("expected one save with the change, got %d", saver.saves)
	}
	m = keys(t, m, "x")
	if state.Tasks[1].Completed {
		t.Fatal("expected second toggle to reopen the task")
	}
	if m.Status.IsError {
		t.Fatalf("unexpected error: %+v", m.Status)
	}
}

func TestCalendarPostponeMovesToNextDay(t *testing.T) {
	m, state, _ := calendarFixture()
	m = keys(t, m, "j", "n")
	if state.Tasks[1].Date != "2026-02-10" {
		t.Fatalf("expected Write moved, got %+v", state.Tasks[1])
	}
	if m.Cursor != 0 {
		t.Fatalf("expected cursor clamped, got %d", m.Cursor)
	}
}

func TestCalendarDeferToLater(t *testing.T) {
	m, state, saver := calendarFixture()
	m = keys(t, m, "z")
	if len(state.Later) != 1 || state.Later[0].ID != "a" {
		t.Fatalf("unexpected later list: %+v", state.Later)
	}
	if len(saver.deleted) != 1 || saver.deleted[0] != "a" || len(saver.later) != 1 {
		t.Fatalf("expected task deleted and later saved, got deleted=%v later=%d", saver.deleted, len(saver.later))
	}
	if !strings.Contains(m.Status.Text, "later") {
		t.Fatalf("unexpected status: %+v", m.Status)
	}
}

type storeSaver struct {
	*taskstore.Store
}

func (s storeSaver) SaveTasks(ctx context.Context, tasks []model.Task) error {
	return s.SaveAll(ctx, tasks)
}

func TestCalendarDeferSurvivesReloadFromRowStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repo, err := storage.OpenSQLite(filepath.Join(dir, "hosted.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	c, err := cache.Open(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	store := taskstore.New(c, taskstore.Options{
		Primary: taskstore.RepositoryReplica{Repo: repo},
		Logger:  log.New(io.Discard, "", 0),
	})
	t.Cleanup(func() { _ = store.Close() })

	tasks := []model.Task{
		{ID: "a", Title: "Keep", Date: "2026-02-09"},
		{ID: "b", Title: "Defer me", Date: "2026-02-09"},
	}
	if err := store.SaveAll(ctx, tasks); err != nil {
		t.Fatalf("save all: %v", err)
	}
	if err := store.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}

	state := &planner.State{Tasks: model.CloneTasks(tasks)}
	m := NewCalendarModel(ctx, state, storeSaver{store}, fixedNow)
	m = keys(t, m, "z")
	if m.Status.IsError {
		t.Fatalf("unexpected error: %+v", m.Status)
	}
	if err := store.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}

	reloaded, err := store.LoadTasks(ctx)
	if err != nil {
		t.Fatalf("load tasks: %v", err)
	}
	if len(reloaded) != 1 || reloaded[0].ID != "a" {
		t.Fatalf("deferred task came back after reload: %+v", reloaded)
	}
	later, err := store.LoadLater(ctx)
	if err != nil {
		t.Fatalf("load later: %v", err)
	}
	if len(later) != 1 || later[0].ID != "b" {
		t.Fatalf("unexpected later list: %+v", later)
	}
}

func TestCalendarEditOnEmptyDay(t *testing.T) {
	m, _, saver := calendarFixture()
	m = keys(t, m, "h", "x")
	if !m.Status.IsError || saver.saves != 0 {
		t.Fatalf("expected error and no save, got %+v saves=%d", m.Status, saver.saves)
	}
}

func TestCalendarSaveErrorIsReported(t *testing.T) {
	m, _, saver := calendarFixture()
	saver.saveErr = errors.New("disk full")
	m = keys(t, m, "x")
	if !m.Status.IsError || !strings.Contains(m.Status.Text, "disk full") {
		t.Fatalf("unexpected status: %+v", m.Status)
	}
}

func TestCalendarView(t *testing.T) {
	m, _, _ := calendarFixture()
	out := m.View()
	for _, want := range []string{"February 2026", "Standup", "09:00", "2026-02: 3 task(s), 0 completed", "later: 0 item(s)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in view:\n%s", want, out)
		}
	}
}

func TestCalendarQuit(t *testing.T) {
	m, _, _ := calendarFixture()
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if !updated.(CalendarModel).Quitting || cmd == nil {
		t.Fatal("expected quit")
	}
}
