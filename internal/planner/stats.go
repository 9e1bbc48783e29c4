package planner

import (
	"strings"
	"time"

	"github.com/sandeepkv93/daycal/internal/model"
)

// streakWindow bounds how far back a completion streak is counted.
const streakWindow = 30

type Stats struct {
	Month     string
	Total     int
	Completed int
	// Streak is the number of consecutive days, ending today, with at least
	// one completed task.
	Streak int
}

// CountByDay returns the number of tasks on each date.
func (s *State) CountByDay() map[string]int {
	out := make(map[string]int)
	for _, t := range s.Tasks {
		out[t.Date]++
	}
	return out
}

// MonthStats summarises the month containing today.
func (s *State) MonthStats(today time.Time) Stats {
	month := today.Format("2006-01")
	st := Stats{Month: month}
	doneOn := make(map[string]bool)
	for _, t := range s.Tasks {
		if t.Completed {
			doneOn[t.Date] = true
		}
		if !strings.HasPrefix(t.Date, month+"-") {
			continue
		}
		st.Total++
		if t.Completed {
			st.Completed++
		}
	}
	for i := 0; i < streakWindow; i++ {
		if !doneOn[model.FormatDay(today.AddDate(0, 0, -i))] {
			break
		}
		st.Streak++
	}
	return st
}
