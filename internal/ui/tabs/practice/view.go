package practice

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/yoga-coach-tui/internal/app"
	"github.com/j-veylop/yoga-coach-tui/internal/models"
	"github.com/j-veylop/yoga-coach-tui/internal/services/summary"
	"github.com/j-veylop/yoga-coach-tui/internal/ui/components"
	"github.com/j-veylop/yoga-coach-tui/internal/ui/styles"
)

// View renders the practice tab.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
	}

	var sections []string
	sections = append(sections, m.renderTitle())

	active := m.state.GetActiveRun()
	switch {
	case m.adding:
		sections = append(sections, styles.CenterHorizontal(m.form.view(), m.width-4))
	case active == nil:
		sections = append(sections, m.renderIdle())
	default:
		if m.confirmAbandon {
			sections = append(sections, m.renderAbandonConfirm())
		}
		m.syncRows()
		sections = append(sections,
			styles.CardStyle.Width(m.cardWidth()).Render(m.table.View()),
			m.renderLive(),
		)
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) cardWidth() int {
	return max(m.width-6, 50)
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Practice")

	subtitle := fmt.Sprintf("%s · %d lessons", m.state.GetProgram(), len(m.state.GetLessons()))
	if active := m.state.GetActiveRun(); active != nil {
		subtitle += " · started " + active.StartedAt.Local().Format("15:04")
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, styles.HelpStyle.Render(subtitle), "")
}

func (m *Model) renderIdle() string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		styles.SubTitleStyle.Render("No practice in progress"),
		"",
		styles.HelpStyle.Render("Enter your profile to estimate calories, then work through the lessons."),
		"",
		styles.InfoTextStyle.Render("Press 'n' to start a new practice"),
		"",
	)
	return styles.CardStyle.Width(m.cardWidth()).Render(content)
}

func (m *Model) renderAbandonConfirm() string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		styles.WarningTextStyle.Bold(true).Render("Abandon practice?"),
		"",
		"Recorded lessons will be discarded.",
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			styles.ButtonActiveStyle.Render(" (Y)es "),
			"  ",
			styles.ButtonInactiveStyle.Render(" (N)o "),
		),
		"",
	)
	return styles.CenterHorizontal(styles.ModalContentStyle.Width(50).Render(content), m.width)
}

// renderLive renders the readings of the running lesson.
func (m *Model) renderLive() string {
	width := m.cardWidth()
	running := m.state.GetRunning()

	titleIcon := lipgloss.NewStyle().Foreground(styles.Pose).Render("🧘")
	if running == "" {
		rows := []string{
			fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Live")),
			"",
			styles.HelpStyle.Render("Select a lesson and press enter to begin."),
		}
		return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	live := m.state.GetLive()
	barWidth := max(width-24, 20)

	rows := []string{
		fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render(m.state.LessonTitle(running))),
		"",
	}

	switch {
	case !live.HasSimilarity:
		rows = append(rows, styles.HelpStyle.Render("Waiting for the camera..."))
	case !live.BodyFound:
		rows = append(rows, m.gauge.ViewNoBody("Similarity", barWidth))
	default:
		rows = append(rows, m.gauge.View(m.similarity.current, "Similarity", barWidth))
	}

	heart := styles.HelpStyle.Render("-- bpm")
	if live.HasHeartRate {
		heart = styles.GetHeartRateStyle(live.HeartRate).Render(fmt.Sprintf("%.0f bpm", live.HeartRate))
	}
	rows = append(rows,
		"",
		fmt.Sprintf("♥ %s   🔥 %s", heart, styles.InfoTextStyle.Render(fmt.Sprintf("%.1f kcal", live.Calories))),
		"",
		components.RenderProgress(int(live.Elapsed.Seconds()), m.lessonDuration(running), barWidth),
	)

	similarity, heartRate := m.state.LiveSeries()
	if len(similarity) > 0 || len(heartRate) > 0 {
		chart := components.RenderPracticeChart(similarity, heartRate, max(width-12, 30), 6, "similarity % and heart rate")
		rows = append(rows, "")
		for line := range strings.SplitSeq(chart, "\n") {
			rows = append(rows, "  "+line)
		}
		rows = append(rows, "  "+components.RenderLegend([]components.LegendItem{
			{Label: "Similarity", Color: components.ChartPoseColor},
			{Label: "Heart rate", Color: components.ChartHeartColor},
		}))
	}

	return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) lessonDuration(slug string) int {
	for _, l := range m.state.GetLessons() {
		if l.Slug == slug {
			return l.DurationSec
		}
	}
	return 0
}

// syncRows rebuilds the lesson table from the catalog and the active run.
func (m *Model) syncRows() {
	lessons := m.state.GetLessons()
	active := m.state.GetActiveRun()
	running := m.state.GetRunning()

	rows := make([]table.Row, 0, len(lessons))
	for i, l := range lessons {
		rows = append(rows, table.Row{
			strconv.Itoa(i + 1),
			l.DisplayTitle(),
			summary.FormatDuration(l.DurationSec),
			lessonStatus(active, l.Slug, running),
			lessonAverage(active, l.Slug),
		})
	}
	m.table.SetRows(rows)
}

func lessonStatus(run *models.ProgramRun, slug, running string) string {
	if slug == running {
		return "● live"
	}
	if run == nil {
		return ""
	}
	stats := run.Lesson(slug)
	switch {
	case stats == nil:
		return ""
	case !stats.FinishedAt.IsZero():
		return "✓ done"
	default:
		return "partial"
	}
}

func lessonAverage(run *models.ProgramRun, slug string) string {
	if run == nil {
		return "-"
	}
	stats := run.Lesson(slug)
	if stats == nil {
		return "-"
	}
	mean := stats.Similarity.Mean()
	if mean == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", summary.RoundTenth(*mean))
}

var _ app.InputCapturer = (*Model)(nil)
