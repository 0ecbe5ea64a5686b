package practice

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/yoga-coach-tui/internal/models"
	"github.com/j-veylop/yoga-coach-tui/internal/ui/styles"
)

// formField represents which field is currently focused in the profile form.
type formField int

const (
	fieldHeight formField = iota
	fieldWeight
	fieldAge
	fieldGender
	fieldSubmit
	fieldCancel
	fieldCount
)

var fieldLabels = [...]string{
	fieldHeight: "Height (cm)",
	fieldWeight: "Weight (kg)",
	fieldAge:    "Age",
	fieldGender: "Gender",
}

// profileForm collects the profile a new run is started with. Every field
// is optional.
type profileForm struct {
	inputs  [fieldSubmit]textinput.Model
	focused formField
	width   int
}

func newProfileForm() profileForm {
	var f profileForm
	placeholders := [...]string{
		fieldHeight: "170",
		fieldWeight: "65",
		fieldAge:    "35",
		fieldGender: "female / male / other",
	}
	for i := range f.inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.CharLimit = 24
		in.Width = 30
		f.inputs[i] = in
	}
	return f
}

// open resets and focuses the form.
func (f *profileForm) open() tea.Cmd {
	for i := range f.inputs {
		f.inputs[i].SetValue("")
	}
	f.focused = fieldHeight
	f.updateFocus()
	return textinput.Blink
}

func (f *profileForm) setWidth(w int) {
	f.width = w
	for i := range f.inputs {
		f.inputs[i].Width = max(w-14, 10)
	}
}

// handleKey processes a key. done is true once the form closes; profile is
// nil when it was cancelled.
func (f *profileForm) handleKey(msg tea.KeyMsg) (profile *models.ProfileSnapshot, done bool, cmd tea.Cmd) {
	switch msg.String() {
	case "esc":
		f.blurAll()
		return nil, true, nil

	case "tab", "down":
		f.focused = (f.focused + 1) % fieldCount
		f.updateFocus()
		return nil, false, textinput.Blink

	case "shift+tab", "up":
		f.focused = (f.focused - 1 + fieldCount) % fieldCount
		f.updateFocus()
		return nil, false, textinput.Blink

	case "enter":
		switch f.focused {
		case fieldSubmit:
			f.blurAll()
			return f.profile(), true, nil
		case fieldCancel:
			f.blurAll()
			return nil, true, nil
		default:
			f.focused++
			f.updateFocus()
			return nil, false, textinput.Blink
		}
	}

	return nil, false, f.update(msg)
}

// update forwards msg to the focused input.
func (f *profileForm) update(msg tea.Msg) tea.Cmd {
	if f.focused >= fieldSubmit {
		return nil
	}
	var cmd tea.Cmd
	f.inputs[f.focused], cmd = f.inputs[f.focused].Update(msg)
	return cmd
}

func (f *profileForm) profile() *models.ProfileSnapshot {
	value := func(field formField) string {
		return strings.TrimSpace(f.inputs[field].Value())
	}
	return &models.ProfileSnapshot{
		Height: value(fieldHeight),
		Weight: value(fieldWeight),
		Age:    value(fieldAge),
		Gender: value(fieldGender),
	}
}

func (f *profileForm) updateFocus() {
	f.blurAll()
	if f.focused < fieldSubmit {
		f.inputs[f.focused].Focus()
	}
}

func (f *profileForm) blurAll() {
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
}

// view renders the form.
func (f *profileForm) view() string {
	width := max(f.width, 30)

	rows := []string{styles.CardTitleStyle.Render("New Practice"), ""}
	for i := range f.inputs {
		field := formField(i)
		label := styles.BlurredStyle.Render("  " + fieldLabels[field] + ":")
		inputStyle := styles.BlurredBorderStyle
		if f.focused == field {
			label = styles.FocusedStyle.Render("> " + fieldLabels[field] + ":")
			inputStyle = styles.FocusedBorderStyle
		}
		rows = append(rows, label, inputStyle.Width(width-10).Render(f.inputs[i].View()))
	}
	rows = append(rows, "")

	submitStyle := styles.ButtonInactiveStyle
	cancelStyle := styles.ButtonInactiveStyle
	if f.focused == fieldSubmit {
		submitStyle = styles.ButtonActiveStyle
	}
	if f.focused == fieldCancel {
		cancelStyle = styles.ButtonActiveStyle
	}
	rows = append(rows,
		lipgloss.JoinHorizontal(lipgloss.Center,
			submitStyle.Render(" Start "),
			"  ",
			cancelStyle.Render(" Cancel "),
		),
		"",
		styles.HelpStyle.Render("Tab: next field | Enter: submit | Esc: cancel"),
	)

	return styles.ModalContentStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
