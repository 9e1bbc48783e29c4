package importer

import (
	"testing"
)

func TestStageHeaderless(t *testing.T) {
	staged := Stage("Call mom,2024-01-05,,false")
	if len(staged) != 1 {
		t.Fatalf("expected 1 staged task, got %d", len(staged))
	}
	got := staged[0]
	if got.Title != "Call mom" || got.Date != "2024-01-05" || got.Notes != nil || got.Completed {
		t.Fatalf("unexpected staged task: %+v", got)
	}
	if got.ID == "" {
		t.Fatal("expected generated id")
	}
}

func TestStageAliasResolution(t *testing.T) {
	text := "task,due,desc,status\nWrite report,2024-02-01,quarterly,done\nRead,2024-02-02,,no"
	staged := Stage(text)
	if len(staged) != 2 {
		t.Fatalf("expected 2 staged tasks, got %d", len(staged))
	}
	first := staged[0]
	if first.Title != "Write report" || first.Date != "2024-02-01" || first.Notes == nil || *first.Notes != "quarterly" || !first.Completed {
		t.Fatalf("unexpected first row: %+v", first)
	}
	if staged[1].Completed || staged[1].Notes != nil {
		t.Fatalf("unexpected second row: %+v", staged[1])
	}
}

func TestResolveColumnsFirstAliasWins(t *testing.T) {
	cols := resolveColumns([]string{"name", "task", "day", "due"})
	if cols[fieldTitle] != 1 {
		t.Fatalf("title index = %d, want 1 (task listed before name)", cols[fieldTitle])
	}
	if cols[fieldDate] != 3 {
		t.Fatalf("date index = %d, want 3 (due listed before day)", cols[fieldDate])
	}
	if cols[fieldNotes] != -1 || cols[fieldCompleted] != -1 {
		t.Fatalf("expected absent notes/completed, got %v", cols)
	}
}

func TestStageDropsRowsWithoutTitle(t *testing.T) {
	text := "Title,Date,Notes\n,2024-01-01,orphan notes\nKeep me,,"
	staged := Stage(text)
	if len(staged) != 1 || staged[0].Title != "Keep me" {
		t.Fatalf("unexpected staged output: %+v", staged)
	}
	if staged[0].Date != "" {
		t.Fatalf("expected empty date, got %q", staged[0].Date)
	}
}

func TestStageHeaderDetectionIsCaseInsensitive(t *testing.T) {
	staged := Stage("  TITLE , Date\nA,2024-01-01")
	if len(staged) != 1 || staged[0].Title != "A" {
		t.Fatalf("unexpected staged output: %+v", staged)
	}
}

func TestStageHeaderWithoutTitleColumn(t *testing.T) {
	staged := Stage("date,notes\n2024-01-01,x")
	if len(staged) != 0 {
		t.Fatalf("expected rows without a title column to be dropped, got %+v", staged)
	}
}

func TestStageCompletedValues(t *testing.T) {
	cases := map[string]bool{
		"true": true, "YES": true, "y": true, "1": true, " Done ": true,
		"false": false, "no": false, "0": false, "": false, "completed": false,
	}
	for in, want := range cases {
		staged := Stage("title,completed\nx," + in)
		if len(staged) != 1 {
			t.Fatalf("%q: expected one row", in)
		}
		if staged[0].Completed != want {
			t.Fatalf("completed(%q) = %v, want %v", in, staged[0].Completed, want)
		}
	}
}

func TestStageEmpty(t *testing.T) {
	if got := Stage(" \n\n"); len(got) != 0 {
		t.Fatalf("expected nothing staged, got %+v", got)
	}
}

func TestStageShortRows(t *testing.T) {
	staged := Stage("title,date,notes,completed\nOnly title")
	if len(staged) != 1 || staged[0].Date != "" || staged[0].Completed {
		t.Fatalf("unexpected staged output: %+v", staged)
	}
}
