// Package components provides reusable UI components for the TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/j-veylop/yoga-coach-tui/internal/ui/styles"
)

// ChartColors defines colors for chart elements.
var (
	ChartPoseColor    = lipgloss.Color("#d670d6")
	ChartHeartColor   = lipgloss.Color("#ff6b6b")
	ChartPrimaryColor = lipgloss.Color("#7D56F4")
)

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderLineChart creates a single-series ASCII line chart.
func RenderLineChart(data []float64, width, height int, caption string) string {
	if len(data) == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	width = max(width, 20)
	height = max(height, 3)

	// asciigraph needs two points to draw a line.
	if len(data) == 1 {
		data = []float64{data[0], data[0]}
	}

	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// RenderPracticeChart plots pose similarity against heart rate. The shorter
// series is padded with its last value so both share the x axis.
func RenderPracticeChart(similarity, heartRate []float64, width, height int, caption string) string {
	if len(similarity) == 0 && len(heartRate) == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	width = max(width, 20)
	height = max(height, 3)

	n := max(len(similarity), len(heartRate), 2)
	series := [][]float64{padSeries(similarity, n), padSeries(heartRate, n)}

	return asciigraph.PlotMany(series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.LowerBound(0),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(
			asciigraph.Magenta,
			asciigraph.Red,
		),
	)
}

func padSeries(data []float64, n int) []float64 {
	out := make([]float64, n)
	copy(out, data)
	if len(data) > 0 {
		last := data[len(data)-1]
		for i := len(data); i < n; i++ {
			out[i] = last
		}
	}
	return out
}

// RenderBarChart creates a simple horizontal bar chart.
func RenderBarChart(values []float64, labels []string, width int) string {
	if len(values) == 0 {
		return ""
	}

	maxVal := 0.0
	for _, v := range values {
		maxVal = max(maxVal, v)
	}
	if maxVal == 0 {
		maxVal = 1
	}

	maxLabelLen := 0
	for _, l := range labels {
		maxLabelLen = max(maxLabelLen, lipgloss.Width(l))
	}

	// Leave room for label and value
	barWidth := max(width-maxLabelLen-10, 10)

	var lines []string
	for i, v := range values {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}

		barLen := max(int((v/maxVal)*float64(barWidth)), 0)
		bar := lipgloss.NewStyle().Foreground(ChartPrimaryColor).Render(strings.Repeat("█", barLen))

		lines = append(lines, fmt.Sprintf("%*s │%s %.1f", maxLabelLen, label, bar, v))
	}

	return strings.Join(lines, "\n")
}

// RenderSparkline creates a compact inline sparkline chart.
func RenderSparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	maxVal := 0.0
	for _, v := range values {
		maxVal = max(maxVal, v)
	}
	if maxVal == 0 {
		maxVal = 1
	}

	var result strings.Builder
	for _, v := range sampleSeries(values, width) {
		result.WriteRune(sparkChars[sparkIndex(v, maxVal)])
	}
	return result.String()
}

// RenderScoreSparkline draws similarity percentages colored by score band.
func RenderScoreSparkline(percents []float64, width int) string {
	if len(percents) == 0 || width <= 0 {
		return ""
	}

	var result strings.Builder
	for _, v := range sampleSeries(percents, width) {
		style := styles.GetScoreStyle(v, true)
		result.WriteString(style.Render(string(sparkChars[sparkIndex(v, 100)])))
	}
	return result.String()
}

// sampleSeries picks at most width evenly spaced values.
func sampleSeries(values []float64, width int) []float64 {
	if len(values) <= width {
		return values
	}
	step := float64(len(values)) / float64(width)
	out := make([]float64, 0, width)
	for i := range width {
		out = append(out, values[int(float64(i)*step)])
	}
	return out
}

func sparkIndex(v, maxVal float64) int {
	idx := int((v / maxVal) * float64(len(sparkChars)-1))
	return min(max(idx, 0), len(sparkChars)-1)
}

// RenderLegend creates a chart legend.
func RenderLegend(items []LegendItem) string {
	var parts []string
	for _, item := range items {
		colorBox := lipgloss.NewStyle().Foreground(item.Color).Render("■")
		parts = append(parts, fmt.Sprintf("%s %s", colorBox, item.Label))
	}
	return strings.Join(parts, "  ")
}

// LegendItem represents a single legend entry.
type LegendItem struct {
	Label string
	Color lipgloss.Color
}
