package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/yoga-coach-tui/internal/logger"
	"github.com/j-veylop/yoga-coach-tui/internal/ui/styles"
)

const (
	gradientFrom = "#ff6b6b"
	gradientTo   = "#51cf66"
)

// Gauge renders a labelled percentage bar.
type Gauge struct {
	progress progress.Model
}

// NewGauge creates a gauge with a red to green gradient.
func NewGauge() Gauge {
	return Gauge{
		progress: progress.New(
			progress.WithScaledGradient(gradientFrom, gradientTo),
			progress.WithWidth(30),
			progress.WithoutPercentage(),
		),
	}
}

// View renders the gauge at percent with label, fitted to width.
func (g Gauge) View(percent float64, label string, width int) string {
	// Reserve space for label and percentage
	g.progress.Width = max(width-24, 10)

	percent = clampPercent(percent)
	bar := g.progress.ViewAs(percent / 100)

	percentStr := styles.GetScoreStyle(percent, true).
		Width(6).
		Align(lipgloss.Right).
		Render(fmt.Sprintf("%.0f%%", percent))
	labelStr := styles.ProgressLabelStyle.Width(15).Render(label)

	return lipgloss.JoinHorizontal(lipgloss.Center, labelStr, bar, " ", percentStr)
}

// ViewNoBody renders the gauge when the camera sees nobody.
func (g Gauge) ViewNoBody(label string, width int) string {
	labelStr := styles.ProgressLabelStyle.Width(15).Render(label)
	barWidth := max(width-24, 10)
	bar := lipgloss.NewStyle().Foreground(styles.Subtle).Render(strings.Repeat("░", barWidth))
	return lipgloss.JoinHorizontal(lipgloss.Center, labelStr, bar, " ", styles.NoBodyStyle.Render("no body"))
}

// RenderProgress draws how far elapsed is into a lesson of total seconds.
func RenderProgress(elapsed, total, width int) string {
	if total <= 0 {
		return RenderGradientBar(0, width) + " " + styles.HelpStyle.Render(fmt.Sprintf("%ds", elapsed))
	}
	percent := float64(elapsed) / float64(total) * 100
	return RenderGradientBar(percent, width) + " " +
		styles.HelpStyle.Render(fmt.Sprintf("%ds / %ds", min(elapsed, total), total))
}

// RenderGradientBar renders just the bar part with gradient colors.
func RenderGradientBar(percent float64, width int) string {
	if width < 1 {
		return ""
	}

	filled := int(float64(width) * clampPercent(percent) / 100)

	var b strings.Builder
	empty := lipgloss.NewStyle().Foreground(styles.Subtle)
	for i := range width {
		if i < filled {
			t := float64(i) / float64(max(1, width-1))
			color := interpolateColor(gradientFrom, gradientTo, t)
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("█"))
		} else {
			b.WriteString(empty.Render("░"))
		}
	}
	return b.String()
}

func clampPercent(p float64) float64 {
	return min(max(p, 0), 100)
}

func interpolateColor(fromHex, toHex string, t float64) string {
	from := hexToRGB(fromHex)
	to := hexToRGB(toHex)

	r := int(float64(from[0]) + t*(float64(to[0])-float64(from[0])))
	g := int(float64(from[1]) + t*(float64(to[1])-float64(from[1])))
	b := int(float64(from[2]) + t*(float64(to[2])-float64(from[2])))

	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func hexToRGB(hex string) [3]int {
	hex = strings.TrimPrefix(hex, "#")
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		logger.Error("failed to parse hex color", "hex", hex, "error", err)
		return [3]int{0, 0, 0}
	}
	return [3]int{r, g, b}
}
