package info

import (
	"fmt"
	"runtime"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/yoga-coach-tui/internal/ui/styles"
	"github.com/j-veylop/yoga-coach-tui/internal/version"
)

// View renders the info tab.
func (m *Model) View() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		m.renderTitle(),
		m.renderStorageCard(),
		m.renderDevicesCard(),
		m.renderAboutCard(),
	)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) cardWidth() int {
	return min(max(m.width-6, 50), 90)
}

// renderTitle renders the info tab title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Kiosk configuration and application information")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) renderStorageCard() string {
	rows := []string{styles.CardTitleStyle.Render("Program & Storage"), ""}

	if m.config == nil {
		rows = append(rows, styles.HelpStyle.Render("Configuration not loaded"))
	} else {
		rows = append(rows,
			m.renderConfigRow("Program", m.config.Program),
			m.renderConfigRow("Lessons", fmt.Sprintf("%d", len(m.state.GetLessons()))),
			m.renderConfigRow("Catalog", m.config.CatalogPath),
			m.renderConfigRow("Database", m.config.DatabasePath),
			m.renderConfigRow("Log File", m.config.LogPath),
			m.renderConfigRow("Save Throttle", m.config.PersistThrottle.String()),
			m.renderConfigRow("Kept Runs", fmt.Sprintf("%d", m.config.HistoryLimit)),
		)
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderDevicesCard() string {
	rows := []string{styles.CardTitleStyle.Render("Devices & Coach"), ""}

	if m.config == nil {
		rows = append(rows, styles.HelpStyle.Render("Configuration not loaded"))
	} else {
		coach := styles.WarningTextStyle.Render("not configured")
		if m.config.CoachAPIKey != "" {
			coach = styles.SuccessTextStyle.Render(m.config.CoachModel)
		}
		rows = append(rows,
			m.renderConfigRow("Camera", orDisabled(m.config.CameraURL)),
			m.renderConfigRow("Similarity", orDisabled(m.config.SimilarityURL)),
			m.renderConfigRow("Heart Rate", orDisabled(m.config.HeartRateURL)),
			m.renderConfigRow("LCD", orDisabled(m.config.LCDURL)),
			m.renderConfigRow("Scoring Every", m.config.SimilarityInterval.String()),
			m.renderConfigRow("MET", fmt.Sprintf("%.1f", m.config.YogaMET)),
			m.renderConfigRow("Coach", coach),
		)
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func orDisabled(url string) string {
	if url == "" {
		return "disabled"
	}
	return url
}

// renderConfigRow renders a configuration key-value row.
func (m *Model) renderConfigRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(16).
		Foreground(styles.TextMuted)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

// renderAboutCard renders the about/version information card.
func (m *Model) renderAboutCard() string {
	rows := []string{
		styles.CardTitleStyle.Render("About Yoga Coach"),
		"",
		m.renderConfigRow("Version", version.GetVersion()),
		m.renderConfigRow("Build Date", version.GetDate()),
		m.renderConfigRow("Git Commit", version.GetCommit()),
		m.renderConfigRow("Go Version", runtime.Version()),
		m.renderConfigRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)),
		"",
		fmt.Sprintf("Archived runs: %s", styles.InfoTextStyle.Render(fmt.Sprintf("%d", len(m.state.GetRuns())))),
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}
