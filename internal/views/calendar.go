package views

import (
	"fmt"
	"strings"
	"time"
)

type MonthGridData struct {
	// Selected is the highlighted day; its month is the one drawn.
	Selected time.Time
	Today    string
	Counts   map[string]int
}

type DayItemData struct {
	ID        string
	Title     string
	Time      string
	Project   string
	Notes     string
	Completed bool
}

type DayPanelData struct {
	Date   string
	Items  []DayItemData
	Cursor int
	Later  int
}

type StatsData struct {
	Month     string
	Total     int
	Completed int
	Streak    int
}

// RenderMonthGrid draws a Monday-first month with the task count of each
// day. The selected day is bracketed and today is marked with an asterisk.
func RenderMonthGrid(data MonthGridData) string {
	sel := data.Selected
	first := time.Date(sel.Year(), sel.Month(), 1, 0, 0, 0, 0, sel.Location())
	last := first.AddDate(0, 1, -1).Day()
	offset := (int(first.Weekday()) + 6) % 7

	var b strings.Builder
	b.WriteString(first.Format("January 2006") + "\n")
	b.WriteString(" Mo    Tu    We    Th    Fr    Sa    Su\n")
	col := 0
	for ; col < offset; col++ {
		b.WriteString("      ")
	}
	for day := 1; day <= last; day++ {
		date := first.AddDate(0, 0, day-1)
		key := date.Format("2006-01-02")
		cell := fmt.Sprintf("%2d", day)
		if n := data.Counts[key]; n > 0 {
			cell += fmt.Sprintf("·%d", min(n, 9))
		} else {
			cell += "  "
		}
		mark := " "
		if key == data.Today {
			mark = "*"
		}
		if day == sel.Day() {
			cell = selectedStyle.Render("[" + cell + "]")
		} else {
			cell = " " + cell + mark
		}
		b.WriteString(cell)
		col++
		if col == 7 {
			b.WriteString("\n")
			col = 0
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func RenderDayPanel(data DayPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s: %d task(s)\n", data.Date, len(data.Items)))
	if len(data.Items) == 0 {
		b.WriteString("(nothing scheduled)\n")
	}
	for i, item := range data.Items {
		cursor := " "
		if i == data.Cursor {
			cursor = ">"
		}
		check := "[ ]"
		if item.Completed {
			check = "[x]"
		}
		line := fmt.Sprintf("%s %s %s", cursor, check, item.Title)
		if item.Time != "" {
			line = fmt.Sprintf("%s %s %s %s", cursor, check, item.Time, item.Title)
		}
		if item.Project != "" {
			line += " (" + item.Project + ")"
		}
		if i == data.Cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	if sel := data.Cursor; sel >= 0 && sel < len(data.Items) && data.Items[sel].Notes != "" {
		b.WriteString("\nnotes: " + data.Items[sel].Notes + "\n")
	}
	b.WriteString(fmt.Sprintf("\nlater: %d item(s)", data.Later))
	return b.String()
}

func RenderStats(data StatsData) string {
	return fmt.Sprintf("%s: %d task(s), %d completed, %d day streak", data.Month, data.Total, data.Completed, data.Streak)
}

func CalendarFooter() string {
	return "[h/l]day [H/L]week [</>]month [t]today [j/k]task [x]done [n]next day [z]later [q]quit"
}
