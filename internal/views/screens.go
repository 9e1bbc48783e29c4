package views

import (
	"fmt"
	"strings"
)

type ImportRowData struct {
	Title     string
	Date      string
	Notes     string
	Completed bool
}

type ImportPanelData struct {
	Rows      []ImportRowData
	Cursor    int
	Scheduled int
}

type LaterPanelData struct {
	Titles []string
	Added  int
}

func RenderImportPanel(data ImportPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("staged: %d row(s), %d with a date\n", len(data.Rows), data.Scheduled))
	if len(data.Rows) == 0 {
		b.WriteString("(nothing left to import)")
		return b.String()
	}
	for i, row := range data.Rows {
		cursor := " "
		if i == data.Cursor {
			cursor = ">"
		}
		date := row.Date
		if date == "" {
			date = missingStyle.Render("no date   ")
		}
		check := " "
		if row.Completed {
			check = "✓"
		}
		line := fmt.Sprintf("%s %s %s %s", cursor, date, check, row.Title)
		if i == data.Cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	if sel := data.Cursor; sel >= 0 && sel < len(data.Rows) && data.Rows[sel].Notes != "" {
		b.WriteString("\nnotes: " + data.Rows[sel].Notes)
	}
	return strings.TrimRight(b.String(), "\n")
}

func RenderLaterPanel(data LaterPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("imported: %d task(s)\n", data.Added))
	b.WriteString(fmt.Sprintf("later: %d item(s)\n", len(data.Titles)))
	for _, title := range data.Titles {
		b.WriteString("- " + title + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: %s", input)
}

func RenderDateEditor(active bool, title, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("date for %q: %s", title, input)
}

func ImportFooter() string {
	return "[j/k]move [enter]date [l]later [a]add scheduled [A]apply [/]command [q]quit"
}
