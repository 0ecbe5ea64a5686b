package history

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/yoga-coach-tui/internal/ui/components"
	"github.com/j-veylop/yoga-coach-tui/internal/ui/styles"
)

// View renders the history tab.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
	}
	if len(m.rows) == 0 {
		return m.renderEmpty()
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		styles.CardStyle.Width(m.cardWidth()).Render(m.table.View()),
		m.renderTrend(),
	)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) cardWidth() int {
	return max(m.width-6, 50)
}

func (m *Model) renderEmpty() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render("History"),
		"",
		styles.HelpStyle.Render("No completed practice yet."),
		styles.HelpStyle.Render("Finished programs are listed here, newest first."),
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderHeader() string {
	title := styles.TitleStyle.Render("History")
	subtitle := styles.HelpStyle.Render(fmt.Sprintf("%s · last %d runs", m.state.GetProgram(), len(m.rows)))
	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

// renderTrend charts the average similarity of each run, oldest first.
func (m *Model) renderTrend() string {
	sims := make([]float64, 0, len(m.rows))
	for _, r := range m.rows {
		sims = append(sims, r.sim)
	}
	slices.Reverse(sims)

	titleIcon := lipgloss.NewStyle().Foreground(styles.Pose).Render("📈")
	rows := []string{
		fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Similarity trend")),
		"",
		"  " + components.RenderScoreSparkline(sims, max(m.cardWidth()-8, 10)),
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}
