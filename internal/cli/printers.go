package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/sandeepkv93/daycal/internal/model"
)

// shortID is the prefix printed in listings; commands accept any unique
// prefix of an id.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func printTasks(w io.Writer, title string, tasks []model.Task) {
	bold := color.New(color.Bold, color.Underline)
	faint := color.New(color.Faint, color.Italic)

	_, _ = fmt.Fprintln(w, bold.Sprint(title))
	if len(tasks) == 0 {
		_, _ = fmt.Fprintln(w, faint.Sprint(" none"))
		return
	}
	done := color.New(color.Faint, color.CrossedOut)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	tbl.Wrap = true
	for _, t := range tasks {
		box := "•"
		titleText := t.Title
		if t.Completed {
			box = "✓"
			titleText = done.Sprint(t.Title)
		}
		tbl.AddRow(faint.Sprint(shortID(t.ID)), t.Date, t.Time, box, titleText, t.Project, t.NotesText())
	}
	_, _ = fmt.Fprintln(w, tbl)
}

func printLater(w io.Writer, items []model.LaterItem) {
	bold := color.New(color.Bold, color.Underline)
	faint := color.New(color.Faint, color.Italic)

	_, _ = fmt.Fprintln(w, bold.Sprint("Later"))
	if len(items) == 0 {
		_, _ = fmt.Fprintln(w, faint.Sprint(" none"))
		return
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	for _, it := range items {
		tbl.AddRow(faint.Sprint(shortID(it.ID)), it.Title, it.NotesText())
	}
	_, _ = fmt.Fprintln(w, tbl)
}

func printProjects(w io.Writer, projects []string) {
	bold := color.New(color.Bold, color.Underline)
	_, _ = fmt.Fprintln(w, bold.Sprint("Projects"))
	if len(projects) == 0 {
		_, _ = fmt.Fprintln(w, color.New(color.Faint, color.Italic).Sprint(" none"))
		return
	}
	for _, p := range projects {
		_, _ = fmt.Fprintln(w, " "+p)
	}
}

func printOK(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintln(w, color.New(color.FgGreen).Sprintf(format, args...))
}
