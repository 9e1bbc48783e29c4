package views

import (
	"strings"
	"testing"

	"github.com/sandeepkv93/daycal/internal/model"
)

func TestAgendaMarkdown(t *testing.T) {
	tasks := []model.Task{
		{ID: "a", Title: "Standup", Date: "2026-02-09", Time: "09:30", Project: "Work"},
		{ID: "b", Title: "Buy *milk*", Date: "2026-02-09", Completed: true, Notes: model.OptionalNotes("2L")},
	}
	md := AgendaMarkdown("2026-02-09", "", tasks, 3)
	for _, want := range []string{
		"# 2026-02-09",
		"- [ ] `09:30` **Standup** _(Work)_",
		`- [x] **Buy \*milk\*** — 2L`,
		"> 3 item(s) waiting in later.",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected %q in:\n%s", want, md)
		}
	}
}

func TestAgendaMarkdownEmptyDay(t *testing.T) {
	md := AgendaMarkdown("2026-02-09", "Home", nil, 0)
	if !strings.Contains(md, "# 2026-02-09 · Home") || !strings.Contains(md, "_Nothing scheduled._") {
		t.Fatalf("unexpected empty agenda:\n%s", md)
	}
	if strings.Contains(md, "later") {
		t.Fatalf("unexpected later line:\n%s", md)
	}
}

func TestRenderMarkdownEmpty(t *testing.T) {
	if got := RenderMarkdown("  "); got != "" {
		t.Fatalf("expected empty render, got %q", got)
	}
}

func TestRenderImportPanel(t *testing.T) {
	out := RenderImportPanel(ImportPanelData{
		Rows: []ImportRowData{
			{Title: "First", Date: "2026-02-09"},
			{Title: "Second", Notes: "details"},
		},
		Cursor:    1,
		Scheduled: 1,
	})
	if !strings.Contains(out, "staged: 2 row(s), 1 with a date") {
		t.Fatalf("missing summary:\n%s", out)
	}
	if !strings.Contains(out, "First") || !strings.Contains(out, "Second") || !strings.Contains(out, "notes: details") {
		t.Fatalf("unexpected panel:\n%s", out)
	}
}

func TestRenderImportPanelEmpty(t *testing.T) {
	if out := RenderImportPanel(ImportPanelData{}); !strings.Contains(out, "nothing left to import") {
		t.Fatalf("unexpected empty panel: %q", out)
	}
}

func TestRenderCommandPaletteInactive(t *testing.T) {
	if RenderCommandPalette(false, "x") != "" || RenderDateEditor(false, "t", "x") != "" {
		t.Fatal("expected inactive prompts to render nothing")
	}
}
