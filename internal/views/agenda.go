package views

import (
	"fmt"
	"strings"

	"github.com/sandeepkv93/daycal/internal/model"
)

// AgendaMarkdown lays out one day as a markdown checklist. tasks are expected
// in display order.
func AgendaMarkdown(date, project string, tasks []model.Task, later int) string {
	var b strings.Builder
	b.WriteString("# " + date)
	if project != "" {
		b.WriteString(" · " + project)
	}
	b.WriteString("\n\n")
	if len(tasks) == 0 {
		b.WriteString("_Nothing scheduled._\n")
	}
	for _, t := range tasks {
		box := "[ ]"
		if t.Completed {
			box = "[x]"
		}
		line := fmt.Sprintf("- %s ", box)
		if t.Time != "" {
			line += "`" + t.Time + "` "
		}
		line += "**" + escapeMarkdown(t.Title) + "**"
		if t.Project != "" && project == "" {
			line += " _(" + escapeMarkdown(t.Project) + ")_"
		}
		if notes := t.NotesText(); notes != "" {
			line += " — " + escapeMarkdown(notes)
		}
		b.WriteString(line + "\n")
	}
	if later > 0 {
		b.WriteString(fmt.Sprintf("\n> %d item(s) waiting in later.\n", later))
	}
	return b.String()
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	`*`, `\*`,
	`_`, `\_`,
	"`", "\\`",
	`[`, `\[`,
	`]`, `\]`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
