package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidTask  = errors.New("model: invalid task")
	ErrInvalidLater = errors.New("model: invalid later item")
)

type Task struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Date      string  `json:"date"`
	Notes     *string `json:"notes"`
	Time      string  `json:"time,omitempty"`
	Completed bool    `json:"completed"`
	Project   string  `json:"project,omitempty"`
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidTask)
	}
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidTask)
	}
	if _, err := ParseDay(t.Date); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTask, err)
	}
	if t.Time != "" {
		if _, err := ParseClock(t.Time); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidTask, err)
		}
	}
	return nil
}

// NotesText returns the notes or "" when absent.
func (t Task) NotesText() string {
	if t.Notes == nil {
		return ""
	}
	return *t.Notes
}

// LaterItem is a task that has not been given a date yet.
type LaterItem struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Notes *string `json:"notes"`
}

func (l LaterItem) Validate() error {
	if strings.TrimSpace(l.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidLater)
	}
	if strings.TrimSpace(l.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidLater)
	}
	return nil
}

func (l LaterItem) NotesText() string {
	if l.Notes == nil {
		return ""
	}
	return *l.Notes
}

// OptionalNotes normalizes blank notes to nil.
func OptionalNotes(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func NewID() string {
	return uuid.NewString()
}

// ByDate orders tasks by day; within a day timed tasks come first by time,
// untimed ones follow by title.
func ByDate(a, b Task) int {
	if a.Date != b.Date {
		return strings.Compare(a.Date, b.Date)
	}
	switch {
	case a.Time != "" && b.Time != "":
		return strings.Compare(a.Time, b.Time)
	case a.Time != "":
		return -1
	case b.Time != "":
		return 1
	}
	return strings.Compare(a.Title, b.Title)
}

// CloneTasks returns a copy of the slice that never aliases the input,
// Notes included.
func CloneTasks(in []Task) []Task {
	out := make([]Task, len(in))
	copy(out, in)
	for i := range out {
		out[i].Notes = cloneNotes(out[i].Notes)
	}
	return out
}

func CloneLater(in []LaterItem) []LaterItem {
	out := make([]LaterItem, len(in))
	copy(out, in)
	for i := range out {
		out[i].Notes = cloneNotes(out[i].Notes)
	}
	return out
}

func cloneNotes(n *string) *string {
	if n == nil {
		return nil
	}
	v := *n
	return &v
}
