package importer

import (
	"errors"
	"fmt"
	"slices"

	"github.com/sandeepkv93/daycal/internal/model"
)

var ErrUnknownRow = errors.New("importer: unknown staged row")

type row struct {
	task     StagedTask
	assigned string
}

// Session tracks per-row date assignment for one import. Rows leave the
// session when they are committed as tasks or deferred to the later list.
type Session struct {
	rows []row
}

// NewSession starts a session from staged tasks. A staged date that is not a
// valid day is treated as missing.
func NewSession(staged []StagedTask) *Session {
	s := &Session{rows: make([]row, 0, len(staged))}
	for _, st := range staged {
		r := row{task: st}
		if validDay(st.Date) {
			r.assigned = st.Date
		}
		s.rows = append(s.rows, r)
	}
	return s
}

func validDay(d string) bool {
	if d == "" {
		return false
	}
	_, err := model.ParseDay(d)
	return err == nil
}

func checkDate(date string) error {
	if date == "" {
		return nil
	}
	if _, err := model.ParseDay(date); err != nil {
		return fmt.Errorf("importer: %w", err)
	}
	return nil
}

func (s *Session) index(id string) int {
	return slices.IndexFunc(s.rows, func(r row) bool { return r.task.ID == id })
}

// Assign sets the date of one row. An empty date clears the assignment.
func (s *Session) Assign(id, date string) error {
	if err := checkDate(date); err != nil {
		return err
	}
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownRow, id)
	}
	s.rows[i].assigned = date
	return nil
}

// AssignAll sets the same date on every pending row.
func (s *Session) AssignAll(date string) error {
	if err := checkDate(date); err != nil {
		return err
	}
	for i := range s.rows {
		s.rows[i].assigned = date
	}
	return nil
}

// Defer removes the row and returns it as a later item.
func (s *Session) Defer(id string) (model.LaterItem, error) {
	i := s.index(id)
	if i < 0 {
		return model.LaterItem{}, fmt.Errorf("%w: %s", ErrUnknownRow, id)
	}
	st := s.rows[i].task
	s.rows = slices.Delete(s.rows, i, i+1)
	return model.LaterItem{ID: model.NewID(), Title: st.Title, Notes: st.Notes}, nil
}

// Pending returns the rows still in the session with their current dates.
func (s *Session) Pending() []StagedTask {
	out := make([]StagedTask, 0, len(s.rows))
	for _, r := range s.rows {
		st := r.task
		st.Date = r.assigned
		out = append(out, st)
	}
	return out
}

// Scheduled returns the pending rows that currently carry a date.
func (s *Session) Scheduled() []StagedTask {
	out := make([]StagedTask, 0, len(s.rows))
	for _, st := range s.Pending() {
		if st.Date != "" {
			out = append(out, st)
		}
	}
	return out
}

// CommitScheduled converts every dated row into a task and removes it from
// the session. Undated rows stay pending.
func (s *Session) CommitScheduled() []model.Task {
	keep := make([]row, 0, len(s.rows))
	out := make([]model.Task, 0)
	for _, r := range s.rows {
		if r.assigned == "" {
			keep = append(keep, r)
			continue
		}
		out = append(out, toTask(r.task, r.assigned))
	}
	s.rows = keep
	return out
}

// Apply closes the session: rows with an assigned date, or failing that a
// valid staged date, become tasks; the rest are discarded.
func (s *Session) Apply() []model.Task {
	out := make([]model.Task, 0, len(s.rows))
	for _, r := range s.rows {
		d := r.assigned
		if d == "" && validDay(r.task.Date) {
			d = r.task.Date
		}
		if d == "" {
			continue
		}
		out = append(out, toTask(r.task, d))
	}
	s.rows = nil
	return out
}

func (s *Session) Len() int { return len(s.rows) }

func toTask(st StagedTask, date string) model.Task {
	return model.Task{
		ID:        model.NewID(),
		Title:     st.Title,
		Date:      date,
		Notes:     st.Notes,
		Completed: st.Completed,
	}
}
