package summary

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/yoga-coach-tui/internal/app"
	"github.com/j-veylop/yoga-coach-tui/internal/models"
	runsummary "github.com/j-veylop/yoga-coach-tui/internal/services/summary"
	"github.com/j-veylop/yoga-coach-tui/internal/ui/components"
	"github.com/j-veylop/yoga-coach-tui/internal/ui/styles"
)

// View renders the summary tab.
func (m *Model) View() string {
	if m.state.IsLoading(app.ResourceSummary) {
		return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
	}

	view, data := m.state.GetSummary()
	if view == nil || view.Run == nil {
		return m.renderEmpty()
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(view),
		m.renderTotals(data),
		m.renderLessons(view),
		m.renderCharts(view),
		m.renderCoach(view.Run.RunID),
	)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) cardWidth() int {
	return max(m.width-6, 50)
}

func (m *Model) renderEmpty() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render("Summary"),
		"",
		styles.HelpStyle.Render("No summary to show."),
		styles.HelpStyle.Render("Finish a practice, pick a run on the History tab, or press 'L' for the latest run."),
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderHeader(view *models.RunView) string {
	title := styles.TitleStyle.Render("Summary")

	run := view.Run
	when := "in progress"
	if run.Finished() {
		when = run.FinishedAt.Local().Format("Mon Jan 2 2006, 15:04")
	}
	subtitle := styles.HelpStyle.Render(fmt.Sprintf("%s · %s", run.Program, when))

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) renderTotals(data models.SummaryData) string {
	stat := func(label, value string, style lipgloss.Style) string {
		return lipgloss.JoinVertical(lipgloss.Center,
			style.Bold(true).Render(value),
			styles.HelpStyle.Render(label),
		)
	}

	avgHR := "-"
	if data.AvgHeartRate > 0 {
		avgHR = fmt.Sprintf("%.1f", data.AvgHeartRate)
	}

	cells := []string{
		stat("time", data.Duration, styles.InfoTextStyle),
		stat("kcal", fmt.Sprintf("%d", data.Calories), styles.WarningTextStyle),
		stat("avg similarity", fmt.Sprintf("%.1f%%", data.AvgSimilarity), styles.GetScoreStyle(data.AvgSimilarity, true)),
		stat("best", fmt.Sprintf("%d%%", data.MaxSimilarity), styles.SuccessTextStyle),
		stat("avg bpm", avgHR, styles.GetHeartRateStyle(data.AvgHeartRate)),
	}

	spaced := make([]string, 0, len(cells)*2)
	for i, c := range cells {
		if i > 0 {
			spaced = append(spaced, "    ")
		}
		spaced = append(spaced, c)
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinHorizontal(lipgloss.Top, spaced...))
}

func (m *Model) renderLessons(view *models.RunView) string {
	rows := []string{styles.CardTitleStyle.Render("Lessons"), ""}

	if len(view.PerLesson) == 0 {
		rows = append(rows, styles.HelpStyle.Render("  No lessons recorded"))
	} else {
		header := fmt.Sprintf("%-24s %6s %6s %9s %11s %7s", "Lesson", "Time", "kcal", "Avg Sim", "Min/Max", "Avg HR")
		rows = append(rows, styles.TableHeaderStyle.Render(header))
		for _, l := range view.PerLesson {
			rows = append(rows, fmt.Sprintf("%-24s %6s %6.1f %9s %11s %7s",
				truncate(m.state.LessonTitle(l.Slug), 24),
				runsummary.FormatDuration(l.ElapsedSec),
				l.Calories,
				formatOptional(l.AvgSim, "%.1f%%"),
				formatRange(l.MinSim, l.MaxSim),
				formatOptional(l.AvgHR, "%.1f"),
			))
		}
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderCharts(view *models.RunView) string {
	width := m.cardWidth()
	titleIcon := lipgloss.NewStyle().Foreground(styles.Pose).Render("📊")
	rows := []string{fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Per lesson")), ""}

	sim, simLabels := seriesOf(view.Charts.SimilaritySeries, m.state.LessonTitle)
	hr, hrLabels := seriesOf(view.Charts.HeartRateSeries, m.state.LessonTitle)

	if len(sim) == 0 {
		rows = append(rows, styles.HelpStyle.Render("  No data available"))
	} else {
		rows = append(rows, styles.HelpStyle.Render("  Similarity (%)"))
		for line := range strings.SplitSeq(components.RenderBarChart(sim, simLabels, width-8), "\n") {
			rows = append(rows, "  "+line)
		}
		rows = append(rows, "", styles.HelpStyle.Render("  Heart rate (bpm)"))
		for line := range strings.SplitSeq(components.RenderBarChart(hr, hrLabels, width-8), "\n") {
			rows = append(rows, "  "+line)
		}
	}

	return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderCoach(runID string) string {
	width := m.cardWidth()
	rows := []string{styles.CardTitleStyle.Render("Coach"), ""}

	switch text, cached := m.state.GetFeedback(runID); {
	case m.reveal != nil && m.reveal.runID == runID:
		rows = append(rows, wrap(m.reveal.text.String()+"▍", width-6))
	case cached:
		rows = append(rows, wrap(text, width-6))
	case m.state.IsLoading(app.ResourceFeedback):
		rows = append(rows, m.spinner.View()+" "+styles.HelpStyle.Render("The coach is reviewing your practice..."))
	default:
		rows = append(rows, styles.HelpStyle.Render("Press 'c' to ask the coach about this practice."))
	}

	return styles.FeedbackCardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func seriesOf(points []models.SeriesPoint, titleOf func(string) string) ([]float64, []string) {
	values := make([]float64, len(points))
	labels := make([]string, len(points))
	for i, p := range points {
		values[i] = p.Value
		labels[i] = truncate(titleOf(p.Slug), 16)
	}
	return values, labels
}

func formatOptional(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

func formatRange(lo, hi *float64) string {
	if lo == nil || hi == nil {
		return "-"
	}
	return fmt.Sprintf("%.0f–%.0f%%", *lo, *hi)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func wrap(text string, width int) string {
	return lipgloss.NewStyle().Width(max(width, 20)).Render(text)
}
