// Package csvcodec reads and writes the task CSV format.
//
// The reader is more forgiving than encoding/csv: stray quotes never fail a
// parse, cells are trimmed and blank rows vanish. The writer strips quote
// characters instead of escaping them.
package csvcodec

import (
	"strings"

	"github.com/sandeepkv93/daycal/internal/model"
)

var TaskHeader = []string{"Title", "Date", "Notes", "Completed"}

// Parse splits text into trimmed rows of cells. Rows with no content are
// dropped.
func Parse(text string) [][]string {
	rows := make([][]string, 0)
	row := make([]string, 0)
	var cell strings.Builder
	inQuotes := false

	endCell := func() {
		row = append(row, strings.TrimSpace(cell.String()))
		cell.Reset()
	}
	endRow := func() {
		endCell()
		if !blank(row) {
			rows = append(rows, row)
		}
		row = make([]string, 0)
	}

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		if inQuotes {
			if ch == '"' {
				if i+1 < len(runes) && runes[i+1] == '"' {
					cell.WriteRune('"')
					i++
				} else {
					inQuotes = false
				}
				continue
			}
			cell.WriteRune(ch)
			continue
		}
		switch ch {
		case '"':
			inQuotes = true
		case ',':
			endCell()
		case '\n':
			endRow()
		case '\r':
		default:
			cell.WriteRune(ch)
		}
	}
	endRow()
	return rows
}

func blank(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}

// SerializeRows writes header and rows joined by commas and newlines. Quote
// characters are removed from every cell.
func SerializeRows(header []string, rows [][]string) string {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, joinCells(header))
	for _, r := range rows {
		lines = append(lines, joinCells(r))
	}
	return strings.Join(lines, "\n")
}

func joinCells(cells []string) string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.ReplaceAll(c, `"`, "")
	}
	return strings.Join(out, ",")
}

// Serialize renders tasks as Title,Date,Notes,Completed.
func Serialize(tasks []model.Task) string {
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		completed := "false"
		if t.Completed {
			completed = "true"
		}
		rows = append(rows, []string{t.Title, t.Date, t.NotesText(), completed})
	}
	return SerializeRows(TaskHeader, rows)
}
