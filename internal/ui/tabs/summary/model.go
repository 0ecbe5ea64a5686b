// Package summary provides the summary tab: the statistics of one finished
// run and the coach's message about it.
package summary

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/yoga-coach-tui/internal/app"
	"github.com/j-veylop/yoga-coach-tui/internal/services/coach"
	"github.com/j-veylop/yoga-coach-tui/internal/ui/components"
)

// keyMap defines the key bindings specific to the summary tab.
type keyMap struct {
	Coach      key.Binding
	Regenerate key.Binding
	Latest     key.Binding
	Skip       key.Binding
	Up         key.Binding
	Down       key.Binding
}

// defaultKeyMap returns the default key bindings for the summary tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Coach: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "ask coach"),
		),
		Regenerate: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "new coach message"),
		),
		Latest: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "latest run"),
		),
		Skip: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "show full message"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

// revealMsg carries the next streamed piece of a coach message.
type revealMsg struct {
	runID string
	chunk string
}

// revealDoneMsg is sent when a coach message has been fully streamed.
type revealDoneMsg struct {
	runID string
}

// reveal is a coach message being typed out.
type reveal struct {
	cancel context.CancelFunc
	ch     <-chan string
	runID  string
	text   strings.Builder
}

// Model represents the summary tab state.
type Model struct {
	state       *app.State
	spinner     components.LoadingSpinner
	reveal      *reveal
	keys        keyMap
	viewport    viewport.Model
	typingDelay time.Duration
	width       int
	height      int
}

// New creates a new summary model.
func New(state *app.State) *Model {
	return &Model{
		state:       state,
		spinner:     components.NewSpinner("Loading summary..."),
		keys:        defaultKeyMap(),
		viewport:    viewport.New(0, 0),
		typingDelay: coach.DefaultTypingDelay,
	}
}

// Init initializes the summary tab.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Init()
}

// Update handles messages for the summary tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case app.SummaryLoadedMsg:
		m.stopReveal()
		m.viewport.GotoTop()

	case app.FeedbackLoadedMsg:
		if msg.Error == nil && msg.Text != "" && msg.RunID == m.runID() {
			return m, m.startReveal(msg.RunID, msg.Text)
		}

	case revealMsg:
		if m.reveal == nil || m.reveal.runID != msg.runID {
			return m, nil
		}
		m.reveal.text.WriteString(msg.chunk)
		return m, readReveal(m.reveal)

	case revealDoneMsg:
		if m.reveal != nil && m.reveal.runID == msg.runID {
			m.stopReveal()
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
	runID := m.runID()

	switch {
	case key.Matches(msg, m.keys.Latest):
		return app.Send(app.ShowSummaryMsg{})

	case runID == "":
		return nil

	case key.Matches(msg, m.keys.Coach):
		if _, ok := m.state.GetFeedback(runID); ok || m.reveal != nil {
			return nil
		}
		return app.Send(app.RequestFeedbackMsg{RunID: runID})

	case key.Matches(msg, m.keys.Regenerate):
		m.stopReveal()
		return app.Send(app.RequestFeedbackMsg{RunID: runID, Regenerate: true})

	case key.Matches(msg, m.keys.Skip):
		m.stopReveal()

	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
	return nil
}

// runID returns the run on display, or "".
func (m *Model) runID() string {
	view, _ := m.state.GetSummary()
	if view == nil || view.Run == nil {
		return ""
	}
	return view.Run.RunID
}

func (m *Model) startReveal(runID, text string) tea.Cmd {
	m.stopReveal()
	ctx, cancel := context.WithCancel(context.Background())
	m.reveal = &reveal{
		cancel: cancel,
		ch:     coach.Stream(ctx, text, m.typingDelay),
		runID:  runID,
	}
	return readReveal(m.reveal)
}

func (m *Model) stopReveal() {
	if m.reveal == nil {
		return
	}
	m.reveal.cancel()
	m.reveal = nil
}

func readReveal(r *reveal) tea.Cmd {
	ch, runID := r.ch, r.runID
	return func() tea.Msg {
		chunk, ok := <-ch
		if !ok {
			return revealDoneMsg{runID: runID}
		}
		return revealMsg{runID: runID, chunk: chunk}
	}
}

// SetSize sets the available size for the summary tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.Coach,
		m.keys.Regenerate,
		m.keys.Latest,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Coach, m.keys.Regenerate, m.keys.Skip},
		{m.keys.Latest, m.keys.Up, m.keys.Down},
	}
}
