package importer

import (
	"slices"
	"strings"

	"github.com/sandeepkv93/daycal/internal/csvcodec"
	"github.com/sandeepkv93/daycal/internal/model"
)

// StagedTask is a CSV row waiting for a date before it becomes a Task or a
// LaterItem.
type StagedTask struct {
	ID        string
	Title     string
	Date      string
	Notes     *string
	Completed bool
}

type field string

const (
	fieldTitle     field = "title"
	fieldDate      field = "date"
	fieldNotes     field = "notes"
	fieldCompleted field = "completed"
)

// Evaluated in order; the first alias present in the header wins.
var fieldAliases = []struct {
	field   field
	aliases []string
}{
	{fieldTitle, []string{"title", "task", "name"}},
	{fieldDate, []string{"date", "due", "due_date", "day"}},
	{fieldNotes, []string{"notes", "note", "details", "desc", "description"}},
	{fieldCompleted, []string{"completed", "done", "status"}},
}

var (
	headerMarkers   = []string{"title", "task", "date"}
	defaultColumns  = []string{"title", "date", "notes", "completed"}
	completedTruthy = []string{"true", "yes", "y", "1", "done"}
)

type columns map[field]int

func (c columns) cell(row []string, f field) string {
	idx, ok := c[f]
	if !ok || idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func resolveColumns(header []string) columns {
	out := make(columns, len(fieldAliases))
	for _, fa := range fieldAliases {
		out[fa.field] = -1
		for _, alias := range fa.aliases {
			if i := slices.Index(header, alias); i >= 0 {
				out[fa.field] = i
				break
			}
		}
	}
	return out
}

// Stage turns CSV text into staged tasks. Rows without a title are skipped.
func Stage(text string) []StagedTask {
	rows := csvcodec.Parse(text)
	if len(rows) == 0 {
		return nil
	}

	header := make([]string, len(rows[0]))
	for i, c := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(c))
	}
	start := 1
	if !slices.ContainsFunc(headerMarkers, func(m string) bool { return slices.Contains(header, m) }) {
		header = defaultColumns
		start = 0
	}
	cols := resolveColumns(header)

	out := make([]StagedTask, 0, len(rows)-start)
	for _, row := range rows[start:] {
		title := cols.cell(row, fieldTitle)
		if title == "" {
			continue
		}
		completed := slices.Contains(completedTruthy, strings.ToLower(cols.cell(row, fieldCompleted)))
		out = append(out, StagedTask{
			ID:        model.NewID(),
			Title:     title,
			Date:      cols.cell(row, fieldDate),
			Notes:     model.OptionalNotes(cols.cell(row, fieldNotes)),
			Completed: completed,
		})
	}
	return out
}
