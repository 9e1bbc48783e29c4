// Package planner holds the calendar's in-memory state and the edits the
// terminal client applies to it before persisting through taskstore.
package planner

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/sandeepkv93/daycal/internal/model"
)

var (
	ErrUnknownTask  = errors.New("planner: unknown task")
	ErrUnknownLater = errors.New("planner: unknown later item")
	ErrInvalidName  = errors.New("planner: invalid project name")
)

type State struct {
	Tasks    []model.Task
	Later    []model.LaterItem
	Projects []string
}

// Draft is the user-editable part of a task.
type Draft struct {
	Title   string
	Date    string
	Notes   string
	Time    string
	Project string
}

func (s *State) taskIndex(id string) (int, error) {
	i := slices.IndexFunc(s.Tasks, func(t model.Task) bool { return t.ID == id })
	if i < 0 {
		return -1, fmt.Errorf("%w: %s", ErrUnknownTask, id)
	}
	return i, nil
}

func (s *State) laterIndex(id string) (int, error) {
	i := slices.IndexFunc(s.Later, func(l model.LaterItem) bool { return l.ID == id })
	if i < 0 {
		return -1, fmt.Errorf("%w: %s", ErrUnknownLater, id)
	}
	return i, nil
}

func (d Draft) task(id string, completed bool) model.Task {
	return model.Task{
		ID:        id,
		Title:     strings.TrimSpace(d.Title),
		Date:      strings.TrimSpace(d.Date),
		Notes:     model.OptionalNotes(d.Notes),
		Time:      strings.TrimSpace(d.Time),
		Completed: completed,
		Project:   strings.TrimSpace(d.Project),
	}
}

// Add appends a new task and returns it.
func (s *State) Add(d Draft) (model.Task, error) {
	t := d.task(model.NewID(), false)
	if err := t.Validate(); err != nil {
		return model.Task{}, err
	}
	s.Tasks = append(s.Tasks, t)
	return t, nil
}

// Edit replaces the editable fields of a task, keeping its completion.
func (s *State) Edit(id string, d Draft) (model.Task, error) {
	i, err := s.taskIndex(id)
	if err != nil {
		return model.Task{}, err
	}
	t := d.task(id, s.Tasks[i].Completed)
	if err := t.Validate(); err != nil {
		return model.Task{}, err
	}
	s.Tasks[i] = t
	return t, nil
}

// Move reschedules a task. A moved task starts over as not completed.
func (s *State) Move(id, date string) (model.Task, error) {
	i, err := s.taskIndex(id)
	if err != nil {
		return model.Task{}, err
	}
	if _, err := model.ParseDay(date); err != nil {
		return model.Task{}, err
	}
	s.Tasks[i].Date = date
	s.Tasks[i].Completed = false
	return s.Tasks[i], nil
}

func (s *State) SetCompleted(id string, completed bool) error {
	i, err := s.taskIndex(id)
	if err != nil {
		return err
	}
	s.Tasks[i].Completed = completed
	return nil
}

// SetDayCompleted marks every task on date and reports how many changed.
func (s *State) SetDayCompleted(date string, completed bool) (int, error) {
	if _, err := model.ParseDay(date); err != nil {
		return 0, err
	}
	n := 0
	for i := range s.Tasks {
		if s.Tasks[i].Date == date && s.Tasks[i].Completed != completed {
			s.Tasks[i].Completed = completed
			n++
		}
	}
	return n, nil
}

func (s *State) Delete(id string) error {
	i, err := s.taskIndex(id)
	if err != nil {
		return err
	}
	s.Tasks = slices.Delete(s.Tasks, i, i+1)
	return nil
}

// Defer turns a task into a later item under the same id.
func (s *State) Defer(id string) (model.LaterItem, error) {
	i, err := s.taskIndex(id)
	if err != nil {
		return model.LaterItem{}, err
	}
	t := s.Tasks[i]
	item := model.LaterItem{ID: t.ID, Title: t.Title, Notes: t.Notes}
	s.Tasks = slices.Delete(s.Tasks, i, i+1)
	s.Later = append(s.Later, item)
	return item, nil
}

func (s *State) AddLater(title, notes string) (model.LaterItem, error) {
	item := model.LaterItem{ID: model.NewID(), Title: strings.TrimSpace(title), Notes: model.OptionalNotes(notes)}
	if err := item.Validate(); err != nil {
		return model.LaterItem{}, err
	}
	s.Later = append(s.Later, item)
	return item, nil
}

// Schedule gives a later item a date and moves it into the task list.
func (s *State) Schedule(laterID, date string) (model.Task, error) {
	i, err := s.laterIndex(laterID)
	if err != nil {
		return model.Task{}, err
	}
	if _, err := model.ParseDay(date); err != nil {
		return model.Task{}, err
	}
	item := s.Later[i]
	t := model.Task{ID: item.ID, Title: item.Title, Date: date, Notes: item.Notes}
	s.Later = slices.Delete(s.Later, i, i+1)
	s.Tasks = append(s.Tasks, t)
	return t, nil
}

func (s *State) DropLater(id string) error {
	i, err := s.laterIndex(id)
	if err != nil {
		return err
	}
	s.Later = slices.Delete(s.Later, i, i+1)
	return nil
}

// Day lists the tasks on date in display order, optionally limited to one
// project.
func (s *State) Day(date, project string) []model.Task {
	project = strings.TrimSpace(project)
	out := make([]model.Task, 0)
	for _, t := range s.Tasks {
		if t.Date != date {
			continue
		}
		if project != "" && !strings.EqualFold(t.Project, project) {
			continue
		}
		out = append(out, t)
	}
	slices.SortStableFunc(out, model.ByDate)
	return out
}

// Sorted returns every task in display order.
func (s *State) Sorted() []model.Task {
	out := model.CloneTasks(s.Tasks)
	slices.SortStableFunc(out, model.ByDate)
	return out
}

// AddProject registers a project name; adding an existing name is a no-op.
func (s *State) AddProject(name string) error {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, ",\n") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if slices.ContainsFunc(s.Projects, func(p string) bool { return strings.EqualFold(p, name) }) {
		return nil
	}
	s.Projects = append(s.Projects, name)
	return nil
}

// FindTask resolves a task by id or unique id prefix.
func (s *State) FindTask(ref string) (model.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Task{}, fmt.Errorf("%w: empty id", ErrUnknownTask)
	}
	var match []model.Task
	for _, t := range s.Tasks {
		if t.ID == ref {
			return t, nil
		}
		if strings.HasPrefix(t.ID, ref) {
			match = append(match, t)
		}
	}
	if len(match) != 1 {
		return model.Task{}, fmt.Errorf("%w: %s", ErrUnknownTask, ref)
	}
	return match[0], nil
}

// FindLater resolves a later item by id or unique id prefix.
func (s *State) FindLater(ref string) (model.LaterItem, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.LaterItem{}, fmt.Errorf("%w: empty id", ErrUnknownLater)
	}
	var match []model.LaterItem
	for _, l := range s.Later {
		if l.ID == ref {
			return l, nil
		}
		if strings.HasPrefix(l.ID, ref) {
			match = append(match, l)
		}
	}
	if len(match) != 1 {
		return model.LaterItem{}, fmt.Errorf("%w: %s", ErrUnknownLater, ref)
	}
	return match[0], nil
}
