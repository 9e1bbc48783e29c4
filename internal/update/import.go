// Package update holds the interactive terminal screens: the CSV import,
// where staged rows are given dates one by one, all at once, or pushed to the
// later list, and the month calendar.
package update

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/daycal/internal/commands"
	"github.com/sandeepkv93/daycal/internal/importer"
	"github.com/sandeepkv93/daycal/internal/model"
	"github.com/sandeepkv93/daycal/internal/views"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type inputMode int

const (
	inputNone inputMode = iota
	inputDate
	inputPalette
)

type KeyMap struct {
	Up      string
	Down    string
	Date    string
	Later   string
	Add     string
	Apply   string
	Palette string
	Quit    string
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:      "k",
		Down:    "j",
		Date:    "enter",
		Later:   "l",
		Add:     "a",
		Apply:   "A",
		Palette: "/",
		Quit:    "q",
	}
}

// Book is the persisted task list and backlog that committed rows are
// appended to.
type Book interface {
	LoadTasks(ctx context.Context) ([]model.Task, error)
	SaveTasks(ctx context.Context, tasks []model.Task) error
	LoadLater(ctx context.Context) ([]model.LaterItem, error)
	SaveLater(ctx context.Context, items []model.LaterItem) error
}

// Persist appends tasks and later items to book and saves both lists.
func Persist(ctx context.Context, book Book, tasks []model.Task, later []model.LaterItem) error {
	if len(tasks) > 0 {
		current, err := book.LoadTasks(ctx)
		if err != nil {
			return fmt.Errorf("load tasks: %w", err)
		}
		if err := book.SaveTasks(ctx, append(current, tasks...)); err != nil {
			return fmt.Errorf("save tasks: %w", err)
		}
	}
	if len(later) > 0 {
		current, err := book.LoadLater(ctx)
		if err != nil {
			return fmt.Errorf("load later: %w", err)
		}
		if err := book.SaveLater(ctx, append(current, later...)); err != nil {
			return fmt.Errorf("save later: %w", err)
		}
	}
	return nil
}

// ImportResult is what the screen produced: tasks added and items sent to
// the later list. Applied is false when the user quit before applying; tasks
// committed with "add scheduled" are kept either way. The Unsaved lists hold
// commits whose save failed and still need persisting.
type ImportResult struct {
	Tasks        []model.Task
	Later        []model.LaterItem
	Applied      bool
	UnsavedTasks []model.Task
	UnsavedLater []model.LaterItem
}

type ImportModel struct {
	session *importer.Session
	book    Book
	ctx     context.Context
	rows    []importer.StagedTask
	tasks   []model.Task
	later   []model.LaterItem

	unsavedTasks []model.Task
	unsavedLater []model.LaterItem

	Cursor   int
	Status   StatusBar
	Keys     KeyMap
	Applied  bool
	Quitting bool

	mode  inputMode
	input textinput.Model
}

// NewImportModel stages rows for review. Every commit is appended to book
// right away.
func NewImportModel(ctx context.Context, staged []importer.StagedTask, book Book) ImportModel {
	in := textinput.New()
	in.CharLimit = 64
	in.Width = 40
	m := ImportModel{
		session: importer.NewSession(staged),
		book:    book,
		ctx:     ctx,
		tasks:   make([]model.Task, 0),
		later:   make([]model.LaterItem, 0),
		Keys:    DefaultKeyMap(),
		input:   in,
	}
	m.refresh()
	return m
}

func (m ImportModel) Result() ImportResult {
	return ImportResult{
		Tasks:        model.CloneTasks(m.tasks),
		Later:        model.CloneLater(m.later),
		Applied:      m.Applied,
		UnsavedTasks: model.CloneTasks(m.unsavedTasks),
		UnsavedLater: model.CloneLater(m.unsavedLater),
	}
}

// commit persists tasks and later items together with anything a previous
// failed save left behind.
func (m *ImportModel) commit(tasks []model.Task, later []model.LaterItem) error {
	m.tasks = append(m.tasks, tasks...)
	m.later = append(m.later, later...)
	m.unsavedTasks = append(m.unsavedTasks, tasks...)
	m.unsavedLater = append(m.unsavedLater, later...)
	if err := Persist(m.ctx, m.book, m.unsavedTasks, m.unsavedLater); err != nil {
		return fmt.Errorf("not saved, will retry on the next commit: %w", err)
	}
	m.unsavedTasks = nil
	m.unsavedLater = nil
	return nil
}

// Rows returns the rows still waiting for a decision.
func (m ImportModel) Rows() []importer.StagedTask {
	out := make([]importer.StagedTask, len(m.rows))
	copy(out, m.rows)
	return out
}

func (m *ImportModel) refresh() {
	m.rows = m.session.Pending()
	if m.Cursor >= len(m.rows) {
		m.Cursor = len(m.rows) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}

func (m ImportModel) current() (importer.StagedTask, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.rows) {
		return importer.StagedTask{}, false
	}
	return m.rows[m.Cursor], true
}

func (m ImportModel) Init() tea.Cmd {
	return nil
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if key.String() == "ctrl+c" {
		m.Quitting = true
		return m, tea.Quit
	}
	if m.mode != inputNone {
		return m.handleInputKey(key)
	}

	switch key.String() {
	case m.Keys.Up, "up":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case m.Keys.Down, "down":
		if m.Cursor < len(m.rows)-1 {
			m.Cursor++
		}
	case m.Keys.Date:
		row, ok := m.current()
		if !ok {
			m.Status = StatusBar{Text: "no row selected", IsError: true}
			return m, nil
		}
		m.openInput(inputDate, row.Date)
	case m.Keys.Palette:
		m.openInput(inputPalette, "/")
	case m.Keys.Later:
		return m.run(commands.Command{Type: commands.TypeLater})
	case m.Keys.Add:
		return m.run(commands.Command{Type: commands.TypeAdd})
	case m.Keys.Apply:
		return m.run(commands.Command{Type: commands.TypeApply})
	case m.Keys.Quit, "esc":
		m.Quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *ImportModel) openInput(mode inputMode, value string) {
	m.mode = mode
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
}

func (m *ImportModel) closeInput() {
	m.mode = inputNone
	m.input.SetValue("")
	m.input.Blur()
}

func (m ImportModel) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeInput()
		m.Status = StatusBar{}
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.input.Value())
		mode := m.mode
		m.closeInput()
		if mode == inputDate {
			return m.assignCurrent(value)
		}
		cmd, err := commands.Parse(value)
		if err != nil {
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			return m, nil
		}
		return m.run(cmd)
	}
	if msg.Type == tea.KeyRunes {
		m.input.SetValue(m.input.Value() + string(msg.Runes))
		m.input.CursorEnd()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m ImportModel) assignCurrent(date string) (tea.Model, tea.Cmd) {
	row, ok := m.current()
	if !ok {
		m.Status = StatusBar{Text: "no row selected", IsError: true}
		return m, nil
	}
	if err := m.session.Assign(row.ID, date); err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	m.refresh()
	if date == "" {
		m.Status = StatusBar{Text: fmt.Sprintf("cleared date for %q", row.Title)}
	} else {
		m.Status = StatusBar{Text: fmt.Sprintf("%q set to %s", row.Title, date)}
		if m.Cursor < len(m.rows)-1 {
			m.Cursor++
		}
	}
	return m, nil
}

// run executes an import command against the session. The handlers close
// over m, so their side effects land on the returned model.
func (m ImportModel) run(cmd commands.Command) (tea.Model, tea.Cmd) {
	res, err := commands.Execute(cmd, commands.Handlers{
		All: func(a commands.DateArgs) (commands.Result, error) {
			if err := m.session.AssignAll(a.Date); err != nil {
				return commands.Result{}, err
			}
			if a.Date == "" {
				return commands.Result{Message: "cleared all dates"}, nil
			}
			return commands.Result{Message: fmt.Sprintf("all %d row(s) set to %s", m.session.Len(), a.Date)}, nil
		},
		Date: func(a commands.DateArgs) (commands.Result, error) {
			row, ok := m.current()
			if !ok {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "no row selected"}
			}
			if err := m.session.Assign(row.ID, a.Date); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("%q set to %s", row.Title, a.Date)}, nil
		},
		Later: func() (commands.Result, error) {
			row, ok := m.current()
			if !ok {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "no row selected"}
			}
			item, err := m.session.Defer(row.ID)
			if err != nil {
				return commands.Result{}, err
			}
			if err := m.commit(nil, []model.LaterItem{item}); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("%q moved to later", item.Title)}, nil
		},
		Add: func() (commands.Result, error) {
			added := m.session.CommitScheduled()
			if len(added) == 0 {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "no rows have a date yet"}
			}
			if err := m.commit(added, nil); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("added %d scheduled task(s)", len(added))}, nil
		},
		Apply: func() (commands.Result, error) {
			pending := m.session.Len()
			added := m.session.Apply()
			if err := m.commit(added, nil); err != nil {
				return commands.Result{}, err
			}
			m.Applied = true
			msg := fmt.Sprintf("applied %d task(s)", len(added))
			if skipped := pending - len(added); skipped > 0 {
				msg += fmt.Sprintf(", skipped %d without a date", skipped)
			}
			return commands.Result{Message: msg, Done: true}, nil
		},
		Quit: func() (commands.Result, error) {
			m.Quitting = true
			return commands.Result{Done: true}, nil
		},
	})
	m.refresh()
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	m.Status = StatusBar{Text: res.Message}
	if res.Done {
		return m, tea.Quit
	}
	return m, nil
}

func (m ImportModel) View() string {
	rows := make([]views.ImportRowData, 0, len(m.rows))
	scheduled := 0
	for _, r := range m.rows {
		if r.Date != "" {
			scheduled++
		}
		rows = append(rows, views.ImportRowData{
			Title:     r.Title,
			Date:      r.Date,
			Notes:     notesText(r.Notes),
			Completed: r.Completed,
		})
	}
	laterTitles := make([]string, 0, len(m.later))
	for _, it := range m.later {
		laterTitles = append(laterTitles, it.Title)
	}

	prompt := ""
	switch m.mode {
	case inputDate:
		row, _ := m.current()
		prompt = views.RenderDateEditor(true, row.Title, m.input.View())
	case inputPalette:
		prompt = views.RenderCommandPalette(true, m.input.View())
	}

	return views.RenderApp(views.AppData{
		Header:     "daycal import",
		LeftPane:   views.RenderImportPanel(views.ImportPanelData{Rows: rows, Cursor: m.Cursor, Scheduled: scheduled}),
		RightPane:  views.RenderLaterPanel(views.LaterPanelData{Titles: laterTitles, Added: len(m.tasks)}),
		Prompt:     prompt,
		StatusLine: m.Status.Text,
		IsError:    m.Status.IsError,
		Footer:     views.ImportFooter(),
	})
}

func notesText(n *string) string {
	if n == nil {
		return ""
	}
	return *n
}
