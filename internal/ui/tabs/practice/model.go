// Package practice provides the practice tab: the profile form, the lesson
// list of the active run and the live readings of the lesson in progress.
package practice

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/yoga-coach-tui/internal/app"
	"github.com/j-veylop/yoga-coach-tui/internal/ui/components"
	"github.com/j-veylop/yoga-coach-tui/internal/ui/styles"
)

const animationDuration = 800 * time.Millisecond

type animationTickMsg time.Time

func animationTickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*40, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// keyMap defines the key bindings specific to the practice tab.
type keyMap struct {
	New     key.Binding
	Toggle  key.Binding
	Stop    key.Binding
	Finish  key.Binding
	Abandon key.Binding
	Escape  key.Binding
}

// defaultKeyMap returns the default key bindings for the practice tab.
func defaultKeyMap() keyMap {
	return keyMap{
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new practice"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "start/stop lesson"),
		),
		Stop: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "stop lesson"),
		),
		Finish: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "finish program"),
		),
		Abandon: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "abandon"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// smoothed eases a displayed value towards its target.
type smoothed struct {
	start   time.Time
	from    float64
	current float64
	target  float64
}

// retarget starts a new transition if target changed.
func (s *smoothed) retarget(target float64, now time.Time) {
	if target != s.target {
		s.from = s.current
		s.target = target
		s.start = now
	}
}

func (s *smoothed) step(now time.Time) {
	if s.current == s.target {
		return
	}
	progress := now.Sub(s.start).Seconds() / animationDuration.Seconds()
	if progress >= 1 {
		s.current = s.target
		return
	}
	ease := 1.0 - (1.0-progress)*(1.0-progress)
	s.current = s.from + (s.target-s.from)*ease
}

// Model represents the practice tab state.
type Model struct {
	state          *app.State
	table          table.Model
	form           profileForm
	gauge          components.Gauge
	spinner        components.LoadingSpinner
	keys           keyMap
	similarity     smoothed
	width          int
	height         int
	animating      bool
	adding         bool
	confirmAbandon bool
}

// New creates a new practice model.
func New(state *app.State) *Model {
	t := table.New(
		table.WithColumns(columns(0)),
		table.WithFocused(true),
		table.WithHeight(8),
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
		form:    newProfileForm(),
		gauge:   components.NewGauge(),
		spinner: components.NewSpinner("Loading lessons..."),
		keys:    defaultKeyMap(),
	}
}

func columns(width int) []table.Column {
	titleWidth := min(max(width-48, 16), 32)
	return []table.Column{
		{Title: "#", Width: 3},
		{Title: "Lesson", Width: titleWidth},
		{Title: "Length", Width: 7},
		{Title: "Status", Width: 9},
		{Title: "Avg Sim", Width: 8},
	}
}

// Init initializes the practice tab.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Init(), textinput.Blink)
}

// CapturingInput reports whether the profile form or the abandon prompt
// owns the keyboard.
func (m *Model) CapturingInput() bool {
	return m.adding || m.confirmAbandon
}

// Update handles messages for the practice tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case m.adding:
			return m, m.updateForm(keyMsg)
		case m.confirmAbandon:
			return m, m.updateAbandonConfirm(keyMsg)
		default:
			return m, m.handleKeyMsg(keyMsg)
		}
	}

	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case app.DataLoadedMsg, app.ProgramStartedMsg, app.ProgramFinishedMsg, app.LessonStartedMsg:
		m.syncRows()

	case app.LessonStoppedMsg:
		m.syncRows()
		if msg.Next != nil {
			m.selectLesson(msg.Next.Slug)
		}

	case app.ServiceEventMsg:
		m.syncRows()

	case app.SampleMsg:
		if !m.animating {
			m.animating = true
			cmds = append(cmds, animationTickCmd())
		}

	case animationTickMsg:
		cmds = append(cmds, m.handleAnimationTick(time.Time(msg)))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	default:
		if m.adding {
			cmds = append(cmds, m.form.update(msg))
		}
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handleAnimationTick(now time.Time) tea.Cmd {
	m.similarity.retarget(m.state.GetLive().Similarity, now)
	m.similarity.step(now)

	if m.similarity.current != m.similarity.target {
		return animationTickCmd()
	}
	m.animating = false
	return nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	active := m.state.GetActiveRun()

	switch {
	case key.Matches(msg, m.keys.New):
		if m.state.GetRunning() != "" {
			return nil
		}
		m.adding = true
		return m.form.open()

	case active == nil:
		return nil

	case key.Matches(msg, m.keys.Toggle):
		if m.state.GetRunning() != "" {
			return app.Send(app.StopLessonMsg{})
		}
		if slug := m.selectedSlug(); slug != "" {
			return app.Send(app.StartLessonMsg{Slug: slug})
		}

	case key.Matches(msg, m.keys.Stop):
		if m.state.GetRunning() != "" {
			return app.Send(app.StopLessonMsg{})
		}

	case key.Matches(msg, m.keys.Finish):
		return app.Send(app.FinishProgramMsg{})

	case key.Matches(msg, m.keys.Abandon):
		m.confirmAbandon = true

	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return cmd
	}
	return nil
}

// updateForm handles keys while the profile form is open.
func (m *Model) updateForm(msg tea.KeyMsg) tea.Cmd {
	profile, done, cmd := m.form.handleKey(msg)
	if !done {
		return cmd
	}
	m.adding = false
	if profile == nil {
		return nil
	}
	m.table.SetCursor(0)
	return app.Send(app.StartProgramMsg{Profile: profile})
}

// updateAbandonConfirm handles the abandon confirmation.
func (m *Model) updateAbandonConfirm(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		m.confirmAbandon = false
		return app.Send(app.AbandonProgramMsg{})
	case "n", "N", "esc":
		m.confirmAbandon = false
	}
	return nil
}

// selectedSlug returns the lesson under the cursor, or "".
func (m *Model) selectedSlug() string {
	lessons := m.state.GetLessons()
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(lessons) {
		return ""
	}
	return lessons[idx].Slug
}

func (m *Model) selectLesson(slug string) {
	for i, l := range m.state.GetLessons() {
		if l.Slug == slug {
			m.table.SetCursor(i)
			return
		}
	}
}

// SetSize sets the available size for the practice tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetColumns(columns(width))
	m.table.SetHeight(min(max(len(m.state.GetLessons())+1, 3), max(height/3, 3)))
	m.form.setWidth(min(max(width-20, 30), 60))
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	if m.adding {
		return []key.Binding{
			key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
			m.keys.Escape,
		}
	}
	if m.state.GetActiveRun() == nil {
		return []key.Binding{m.keys.New}
	}
	return []key.Binding{
		m.keys.Toggle,
		m.keys.Finish,
		m.keys.Abandon,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.New, m.keys.Toggle, m.keys.Stop},
		{m.keys.Finish, m.keys.Abandon},
	}
}
