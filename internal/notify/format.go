package notify

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/sandeepkv93/daycal/internal/model"
)

// MaxBodyRunes caps an SMS body, header included.
const MaxBodyRunes = 1500

// DigestItem is one line of a daily digest.
type DigestItem struct {
	Title     string  `json:"title"`
	Notes     *string `json:"notes"`
	Completed bool    `json:"completed"`
}

func DigestItems(tasks []model.Task) []DigestItem {
	out := make([]DigestItem, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, DigestItem{Title: t.Title, Notes: t.Notes, Completed: t.Completed})
	}
	return out
}

// FormatDigest renders the "Tasks for <date>" message.
func FormatDigest(date string, items []DigestItem) string {
	var b strings.Builder
	b.WriteString("Tasks for ")
	b.WriteString(date)
	b.WriteByte('\n')
	for i, it := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		line := fmt.Sprintf("%d. %s", i+1, it.Title)
		if it.Notes != nil && *it.Notes != "" {
			line += " — " + *it.Notes
		}
		if it.Completed {
			line += " ✓"
		}
		b.WriteString(strings.TrimSpace(line))
	}
	return truncateRunes(b.String(), MaxBodyRunes)
}

func FormatLaterReminder(n int) string {
	return fmt.Sprintf("You have %d tasks left for scheduling. Schedule now.", n)
}

func truncateRunes(s string, limit int) string {
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}

// NormalizePhone strips every whitespace character from a destination.
func NormalizePhone(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
