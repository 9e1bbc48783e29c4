package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sandeepkv93/daycal/internal/notify"
	"github.com/sandeepkv93/daycal/internal/server"
	"github.com/sandeepkv93/daycal/internal/storage"
)

var testNow = time.Date(2026, 2, 9, 10, 0, 0, 0, time.UTC)

type env struct {
	t       *testing.T
	dir     string
	offline bool
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dir := t.TempDir()
	for _, key := range []string{
		"SUPABASE_URL", "SUPABASE_ANON_KEY", "SUPABASE_SERVICE_ROLE_KEY",
		"TWILIO_ACCOUNT_SID", "TWILIO_AUTH_TOKEN", "TWILIO_SMS_FROM", "DAILY_SMS_TO",
		"DAYCAL_SERVER_URL",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("DAYCAL_CACHE_DIR", filepath.Join(dir, "cache"))
	t.Setenv("LOCAL_TZ", "UTC")
	return &env{t: t, dir: dir, offline: true}
}

func (e *env) run(args ...string) (string, error) {
	e.t.Helper()
	cmd, a := newRoot()
	a.now = func() time.Time { return testNow }
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	base := []string{"--env-file", filepath.Join(e.dir, "missing.env")}
	if e.offline {
		base = append(base, "--offline")
	}
	cmd.SetArgs(append(base, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errors.Join(err, a.close())
}

func (e *env) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run(args...)
	if err != nil {
		e.t.Fatalf("daycal %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func TestAddAndAgenda(t *testing.T) {
	e := newEnv(t)
	out := e.mustRun("add", "Write", "report", "--date", "today", "--time", "09:30", "--project", "Work")
	if !strings.Contains(out, `added`) || !strings.Contains(out, `"Write report" on 2026-02-09`) {
		t.Fatalf("unexpected add output: %q", out)
	}
	e.mustRun("add", "Gym", "-d", "tomorrow")

	out = e.mustRun("agenda", "--plain")
	if !strings.Contains(out, "Write report") || !strings.Contains(out, "09:30") || strings.Contains(out, "Gym") {
		t.Fatalf("unexpected agenda:\n%s", out)
	}
	out = e.mustRun("agenda", "--plain", "--days", "2")
	if !strings.Contains(out, "2026-02-10") || !strings.Contains(out, "Gym") {
		t.Fatalf("expected two days:\n%s", out)
	}
	out = e.mustRun("agenda", "--plain", "--project", "home")
	if strings.Contains(out, "Write report") {
		t.Fatalf("project filter ignored:\n%s", out)
	}
}

func TestAddRejectsBadDate(t *testing.T) {
	e := newEnv(t)
	if _, err := e.run("add", "Oops", "--date", "2026-13-01"); err == nil {
		t.Fatal("expected invalid date error")
	}
}

func TestDoneByDayAndExport(t *testing.T) {
	e := newEnv(t)
	e.mustRun("add", "One")
	e.mustRun("add", "Two")
	e.mustRun("add", "Later one", "--date", "2026-02-12")

	out := e.mustRun("done", "today")
	if !strings.Contains(out, "2 task(s) on 2026-02-09 updated") {
		t.Fatalf("unexpected done output: %q", out)
	}
	csv := e.mustRun("export")
	want := "Title,Date,Notes,Completed\nOne,2026-02-09,,true\nTwo,2026-02-09,,true\nLater one,2026-02-12,,false"
	if csv != want {
		t.Fatalf("export = %q, want %q", csv, want)
	}

	path := filepath.Join(e.dir, "day.csv")
	e.mustRun("export", "--date", "2026-02-12", "-o", path)
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if string(raw) != "Title,Date,Notes,Completed\nLater one,2026-02-12,,false" {
		t.Fatalf("unexpected day export: %q", raw)
	}
}

func TestImportNonInteractive(t *testing.T) {
	e := newEnv(t)
	path := filepath.Join(e.dir, "in.csv")
	body := "Task,Due,Details\nPay rent,2026-02-10,online\nCall mom,,\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	out := e.mustRun("import", path, "--yes")
	if !strings.Contains(out, "imported 1 task(s), 0 to later") {
		t.Fatalf("unexpected import output: %q", out)
	}
	out = e.mustRun("import", path, "--date", "2026-02-20")
	if !strings.Contains(out, "imported 2 task(s)") {
		t.Fatalf("unexpected import output: %q", out)
	}
	csv := e.mustRun("export")
	if !strings.Contains(csv, "Pay rent,2026-02-10,online,false") || strings.Count(csv, "2026-02-20") != 2 {
		t.Fatalf("unexpected export after import:\n%s", csv)
	}
}

func TestImportEmptyFile(t *testing.T) {
	e := newEnv(t)
	path := filepath.Join(e.dir, "empty.csv")
	if err := os.WriteFile(path, []byte("\n\n"), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if _, err := e.run("import", path, "--yes"); err == nil {
		t.Fatal("expected error for a file without rows")
	}
}

func TestLaterLifecycle(t *testing.T) {
	e := newEnv(t)
	e.mustRun("later", "add", "Fix", "bike", "--notes", "chain")
	out := e.mustRun("later")
	if !strings.Contains(out, "Fix bike") || !strings.Contains(out, "chain") {
		t.Fatalf("unexpected later list:\n%s", out)
	}

	// Schedule it using the short id from the listing.
	fields := strings.Fields(strings.Split(out, "\n")[1])
	out = e.mustRun("later", "schedule", fields[0], "tomorrow")
	if !strings.Contains(out, `scheduled "Fix bike" on 2026-02-10`) {
		t.Fatalf("unexpected schedule output: %q", out)
	}
	if out := e.mustRun("later"); !strings.Contains(out, "none") {
		t.Fatalf("expected empty later list:\n%s", out)
	}

	e.mustRun("add", "Read")
	agenda := e.mustRun("agenda", "--plain")
	id := strings.Fields(strings.Split(agenda, "\n")[1])[0]
	e.mustRun("later", "push", id)
	if out := e.mustRun("later", "list"); !strings.Contains(out, "Read") {
		t.Fatalf("expected pushed task in later:\n%s", out)
	}
	if out := e.mustRun("agenda", "--plain"); strings.Contains(out, "Read") {
		t.Fatalf("pushed task still on the calendar:\n%s", out)
	}
}

func TestMoveEditRemove(t *testing.T) {
	e := newEnv(t)
	e.mustRun("add", "Draft")
	id := strings.Fields(strings.Split(e.mustRun("agenda", "--plain"), "\n")[1])[0]

	e.mustRun("done", id)
	out := e.mustRun("move", id, "2026-02-11")
	if !strings.Contains(out, `moved "Draft" to 2026-02-11`) {
		t.Fatalf("unexpected move output: %q", out)
	}
	if csv := e.mustRun("export"); !strings.Contains(csv, "Draft,2026-02-11,,false") {
		t.Fatalf("move must reopen the task:\n%s", csv)
	}

	e.mustRun("edit", id, "--title", "Final", "--notes", "v2")
	if csv := e.mustRun("export"); !strings.Contains(csv, "Final,2026-02-11,v2,false") {
		t.Fatalf("unexpected export after edit:\n%s", csv)
	}

	e.mustRun("rm", id)
	if csv := e.mustRun("export"); strings.Contains(csv, "Final") {
		t.Fatalf("task not removed:\n%s", csv)
	}
	if _, err := e.run("rm", id); err == nil {
		t.Fatal("expected unknown task error")
	}
}

func TestRolloverLocal(t *testing.T) {
	e := newEnv(t)
	e.mustRun("add", "Open", "--date", "yesterday")
	e.mustRun("add", "Closed", "--date", "yesterday")
	e.mustRun("done", strings.Fields(strings.Split(e.mustRun("agenda", "yesterday", "--plain"), "\n")[1])[0])

	out := e.mustRun("rollover")
	if !strings.Contains(out, "rolled 1 task(s) from 2026-02-08 to 2026-02-09") {
		t.Fatalf("unexpected rollover output: %q", out)
	}
	if out := e.mustRun("agenda", "--plain"); !strings.Contains(out, "Open") || strings.Contains(out, "Closed") {
		t.Fatalf("unexpected agenda after rollover:\n%s", out)
	}
}

func TestProjects(t *testing.T) {
	e := newEnv(t)
	e.mustRun("projects", "add", "Home")
	e.mustRun("projects", "add", "home")
	out := e.mustRun("projects")
	if strings.Count(out, "Home") != 1 {
		t.Fatalf("expected one project:\n%s", out)
	}
	if _, err := e.run("projects", "add", "a,b"); err == nil {
		t.Fatal("expected invalid name error")
	}
}

type recordingSender struct {
	mu       sync.Mutex
	to, body string
}

func (s *recordingSender) Send(_ context.Context, to, body string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.to, s.body = to, body
	return "SM42", nil
}

func (s *recordingSender) last() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.to, s.body
}

func TestSMSThroughServer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	e := newEnv(t)
	e.offline = false

	repo, err := storage.OpenSQLite(filepath.Join(e.dir, "server.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	sender := &recordingSender{}
	srv := httptest.NewServer(server.New(repo, server.Options{
		Notifier: &notify.Dispatcher{Sender: sender},
	}).Handler())
	t.Cleanup(srv.Close)
	t.Setenv("DAYCAL_SERVER_URL", srv.URL)

	e.mustRun("add", "Standup", "--time", "09:00")
	out := e.mustRun("sms", "--to", "+1 555 0100")
	if !strings.Contains(out, "sent 2026-02-09 to +15550100 (SM42)") {
		t.Fatalf("unexpected sms output: %q", out)
	}
	to, body := sender.last()
	if to != "+15550100" || body != "Tasks for 2026-02-09\n1. Standup" {
		t.Fatalf("unexpected message to=%q body=%q", to, body)
	}

	// The phone is remembered for the next send.
	e.mustRun("sms", "today")
	if to, _ := sender.last(); to != "+15550100" {
		t.Fatalf("expected cached phone, got %q", to)
	}

	// Tasks were replicated to the server.
	tasks, err := repo.ListTasks(context.Background(), storage.TaskListFilter{})
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "Standup" {
		t.Fatalf("unexpected server tasks: %+v", tasks)
	}
}

func TestSMSWithoutDestination(t *testing.T) {
	e := newEnv(t)
	if _, err := e.run("sms"); err == nil || !strings.Contains(err.Error(), "DAILY_SMS_TO") {
		t.Fatalf("expected missing destination error, got %v", err)
	}
}
