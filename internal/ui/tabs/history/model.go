// Package history provides the history tab for browsing archived runs.
package history

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/yoga-coach-tui/internal/app"
	"github.com/j-veylop/yoga-coach-tui/internal/models"
	"github.com/j-veylop/yoga-coach-tui/internal/services/summary"
	"github.com/j-veylop/yoga-coach-tui/internal/ui/components"
	"github.com/j-veylop/yoga-coach-tui/internal/ui/styles"
)

// keyMap defines the key bindings specific to the history tab.
type keyMap struct {
	Open key.Binding
	Up   key.Binding
	Down key.Binding
}

// defaultKeyMap returns the default key bindings for the history tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open summary"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "previous run"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next run"),
		),
	}
}

// row is the display form of one archived run.
type row struct {
	runID    string
	date     string
	lessons  string
	duration string
	avgSim   string
	calories string
	sim      float64
}

// Model represents the history tab state.
type Model struct {
	state   *app.State
	table   table.Model
	spinner components.LoadingSpinner
	keys    keyMap
	rows    []row
	width   int
	height  int
}

// New creates a new history model.
func New(state *app.State) *Model {
	t := table.New(
		table.WithColumns(columns(0)),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Subtle).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.Primary)
	s.Selected = s.Selected.
		Foreground(styles.TextPrimary).
		Background(styles.BgAccent).
		Bold(true)
	t.SetStyles(s)

	return &Model{
		state:   state,
		table:   t,
		spinner: components.NewSpinner("Loading history..."),
		keys:    defaultKeyMap(),
	}
}

// columns sizes the table for the given width.
func columns(width int) []table.Column {
	dateWidth := min(max(width-50, 16), 24)
	return []table.Column{
		{Title: "Date", Width: dateWidth},
		{Title: "Lessons", Width: 8},
		{Title: "Time", Width: 8},
		{Title: "Avg Sim", Width: 9},
		{Title: "kcal", Width: 6},
	}
}

// Init initializes the history tab.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Init()
}

// Update handles messages for the history tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case app.DataLoadedMsg, app.ProgramFinishedMsg:
		m.syncRows()

	case app.TabSwitchMsg:
		if msg.Tab == app.TabHistory {
			m.syncRows()
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m, m.handleKeyMsg(msg)
	}
	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Open):
		if id := m.selectedRunID(); id != "" {
			return app.Send(app.ShowSummaryMsg{RunID: id})
		}
		return nil

	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		m.state.SetSelectedRunIndex(m.table.Cursor())
		return cmd
	}
}

// selectedRunID returns the run under the cursor, or "".
func (m *Model) selectedRunID() string {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.rows) {
		return ""
	}
	return m.rows[idx].runID
}

// syncRows rebuilds the table from the archived runs in state.
func (m *Model) syncRows() {
	runs := m.state.GetRuns()
	order := lessonOrder(m.state.GetLessons())

	m.rows = make([]row, 0, len(runs))
	tableRows := make([]table.Row, 0, len(runs))
	for i := range runs {
		r := buildRow(&runs[i], order)
		m.rows = append(m.rows, r)
		tableRows = append(tableRows, table.Row{r.date, r.lessons, r.duration, r.avgSim, r.calories})
	}
	m.table.SetRows(tableRows)

	if idx := m.state.GetSelectedRunIndex(); idx < len(tableRows) {
		m.table.SetCursor(idx)
	}
}

func lessonOrder(lessons []models.Lesson) []string {
	return models.Program{Lessons: lessons}.Order()
}

func buildRow(run *models.ProgramRun, order []string) row {
	derived := summary.ComputeDerived(run, order)
	r := row{
		runID:    run.RunID,
		date:     formatDate(run.FinishedAt),
		lessons:  fmt.Sprintf("%d", len(derived.PerLesson)),
		duration: summary.FormatDuration(derived.Totals.TotalTimeSec),
		avgSim:   "-",
		calories: fmt.Sprintf("%.0f", derived.Totals.TotalCalories),
	}
	if derived.Totals.AvgSim != nil {
		r.sim = *derived.Totals.AvgSim
		r.avgSim = fmt.Sprintf("%.1f%%", r.sim)
	}
	return r
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("Mon Jan 2 15:04")
}

// SetSize sets the available size for the history tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetColumns(columns(width))
	m.table.SetHeight(max(height-14, 3))
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.Open,
		m.keys.Down,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Open},
		{m.keys.Up, m.keys.Down},
	}
}
