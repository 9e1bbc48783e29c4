package update

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/daycal/internal/model"
	"github.com/sandeepkv93/daycal/internal/planner"
	"github.com/sandeepkv93/daycal/internal/views"
)

// Saver persists the calendar after every edit.
type Saver interface {
	SaveTasks(ctx context.Context, tasks []model.Task) error
	DeleteTask(ctx context.Context, id string) error
	SaveLater(ctx context.Context, items []model.LaterItem) error
}

type CalendarKeyMap struct {
	PrevDay   string
	NextDay   string
	PrevWeek  string
	NextWeek  string
	PrevMonth string
	NextMonth string
	Today     string
	Up        string
	Down      string
	Toggle    string
	Postpone  string
	Later     string
	Quit      string
}

func DefaultCalendarKeyMap() CalendarKeyMap {
	return CalendarKeyMap{
		PrevDay:   "h",
		NextDay:   "l",
		PrevWeek:  "H",
		NextWeek:  "L",
		PrevMonth: "<",
		NextMonth: ">",
		Today:     "t",
		Up:        "k",
		Down:      "j",
		Toggle:    "x",
		Postpone:  "n",
		Later:     "z",
		Quit:      "q",
	}
}

// CalendarModel browses the month day by day and edits the selected day's
// tasks in place.
type CalendarModel struct {
	state *planner.State
	saver Saver
	ctx   context.Context
	now   func() time.Time

	Focus    time.Time
	Cursor   int
	Status   StatusBar
	Keys     CalendarKeyMap
	Quitting bool
}

func NewCalendarModel(ctx context.Context, state *planner.State, saver Saver, now func() time.Time) CalendarModel {
	if now == nil {
		now = time.Now
	}
	return CalendarModel{
		state: state,
		saver: saver,
		ctx:   ctx,
		now:   now,
		Focus: startOfDay(now()),
		Keys:  DefaultCalendarKeyMap(),
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func (m CalendarModel) Day() string {
	return model.FormatDay(m.Focus)
}

func (m CalendarModel) items() []model.Task {
	return m.state.Day(m.Day(), "")
}

func (m CalendarModel) current() (model.Task, bool) {
	items := m.items()
	if m.Cursor < 0 || m.Cursor >= len(items) {
		return model.Task{}, false
	}
	return items[m.Cursor], true
}

func (m CalendarModel) Init() tea.Cmd {
	return nil
}

func (m CalendarModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "ctrl+c", m.Keys.Quit, "esc":
		m.Quitting = true
		return m, tea.Quit
	case m.Keys.PrevDay, "left":
		m.shiftFocus(0, -1)
	case m.Keys.NextDay, "right":
		m.shiftFocus(0, 1)
	case m.Keys.PrevWeek:
		m.shiftFocus(0, -7)
	case m.Keys.NextWeek:
		m.shiftFocus(0, 7)
	case m.Keys.PrevMonth:
		m.shiftFocus(-1, 0)
	case m.Keys.NextMonth:
		m.shiftFocus(1, 0)
	case m.Keys.Today:
		m.Focus = startOfDay(m.now())
		m.Cursor = 0
		m.Status = StatusBar{Text: "today: " + m.Day()}
	case m.Keys.Up, "up":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case m.Keys.Down, "down":
		if m.Cursor < len(m.items())-1 {
			m.Cursor++
		}
	case m.Keys.Toggle, " ":
		m.toggle()
	case m.Keys.Postpone:
		m.postpone()
	case m.Keys.Later:
		m.deferCurrent()
	}
	return m, nil
}

func (m *CalendarModel) shiftFocus(months, days int) {
	if months != 0 {
		// Clamp to the last day of the target month instead of overflowing.
		first := time.Date(m.Focus.Year(), m.Focus.Month()+time.Month(months), 1, 0, 0, 0, 0, m.Focus.Location())
		last := first.AddDate(0, 1, -1).Day()
		m.Focus = first.AddDate(0, 0, min(m.Focus.Day(), last)-1)
	} else {
		m.Focus = m.Focus.AddDate(0, 0, days)
	}
	m.Cursor = 0
	m.Status = StatusBar{Text: "day: " + m.Day()}
}

func (m *CalendarModel) toggle() {
	t, ok := m.current()
	if !ok {
		m.Status = StatusBar{Text: "no task selected", IsError: true}
		return
	}
	if err := m.state.SetCompleted(t.ID, !t.Completed); err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return
	}
	if !m.saveTasks() {
		return
	}
	verb := "done"
	if t.Completed {
		verb = "not done"
	}
	m.Status = StatusBar{Text: fmt.Sprintf("%q marked %s", t.Title, verb)}
}

func (m *CalendarModel) postpone() {
	t, ok := m.current()
	if !ok {
		m.Status = StatusBar{Text: "no task selected", IsError: true}
		return
	}
	next := model.FormatDay(m.Focus.AddDate(0, 0, 1))
	if _, err := m.state.Move(t.ID, next); err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return
	}
	if !m.saveTasks() {
		return
	}
	m.clampCursor()
	m.Status = StatusBar{Text: fmt.Sprintf("%q moved to %s", t.Title, next)}
}

func (m *CalendarModel) deferCurrent() {
	t, ok := m.current()
	if !ok {
		m.Status = StatusBar{Text: "no task selected", IsError: true}
		return
	}
	if _, err := m.state.Defer(t.ID); err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return
	}
	if err := m.saver.DeleteTask(m.ctx, t.ID); err != nil {
		m.Status = StatusBar{Text: "delete task: " + err.Error(), IsError: true}
		return
	}
	if err := m.saver.SaveLater(m.ctx, m.state.Later); err != nil {
		m.Status = StatusBar{Text: "save later: " + err.Error(), IsError: true}
		return
	}
	m.clampCursor()
	m.Status = StatusBar{Text: fmt.Sprintf("%q moved to later", t.Title)}
}

func (m *CalendarModel) saveTasks() bool {
	if err := m.saver.SaveTasks(m.ctx, m.state.Tasks); err != nil {
		m.Status = StatusBar{Text: "save tasks: " + err.Error(), IsError: true}
		return false
	}
	return true
}

func (m *CalendarModel) clampCursor() {
	if n := len(m.items()); m.Cursor >= n {
		m.Cursor = max(n-1, 0)
	}
}

func (m CalendarModel) View() string {
	tasks := m.items()
	items := make([]views.DayItemData, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, views.DayItemData{
			ID:        t.ID,
			Title:     t.Title,
			Time:      t.Time,
			Project:   t.Project,
			Notes:     t.NotesText(),
			Completed: t.Completed,
		})
	}
	stats := m.state.MonthStats(m.now())
	left := views.RenderMonthGrid(views.MonthGridData{
		Selected: m.Focus,
		Today:    model.Today(m.now()),
		Counts:   m.state.CountByDay(),
	}) + "\n\n" + views.RenderStats(views.StatsData{
		Month:     stats.Month,
		Total:     stats.Total,
		Completed: stats.Completed,
		Streak:    stats.Streak,
	})

	return views.RenderApp(views.AppData{
		Header:     "daycal",
		LeftPane:   left,
		RightPane:  views.RenderDayPanel(views.DayPanelData{Date: m.Day(), Items: items, Cursor: m.Cursor, Later: len(m.state.Later)}),
		StatusLine: m.Status.Text,
		IsError:    m.Status.IsError,
		Footer:     views.CalendarFooter(),
	})
}
