package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

func TestNewSpinner(t *testing.T) {
	s := NewSpinner("Loading")
	if s.label != "Loading" {
		t.Error("Spinner label mismatch")
	}
	if len(s.spinner.Spinner.Frames) != len(Breath.Frames) {
		t.Error("spinner should use the breathing frames")
	}
}

func TestSpinner_Methods(t *testing.T) {
	s := NewSpinner("Loading")

	if !strings.Contains(s.View(), Breath.Frames[0]) {
		t.Errorf("View = %q, want first breathing frame", s.View())
	}
	if !strings.Contains(s.ViewWithLabel(), "Loading") {
		t.Error("ViewWithLabel should include the label")
	}

	if s.Init() == nil {
		t.Error("Init should return command")
	}

	// Ticks addressed to another spinner are ignored.
	if _, cmd := s.Update(spinner.TickMsg{ID: s.spinner.ID() + 1}); cmd != nil {
		t.Error("Update should ignore foreign ticks")
	}

	tick, ok := s.Init()().(spinner.TickMsg)
	if !ok {
		t.Fatal("Init should produce a tick")
	}
	next, cmd := s.Update(tick)
	if cmd == nil {
		t.Error("Update should schedule the next tick")
	}
	if !strings.Contains(next.View(), Breath.Frames[1]) {
		t.Errorf("View after a tick = %q, want second frame", next.View())
	}
}

func TestRenderSpinnerCentered(t *testing.T) {
	s := NewSpinner("Loading...")
	if RenderSpinnerCentered(s, 20, 5) == "" {
		t.Error("RenderSpinnerCentered returned empty")
	}
}

func TestRenderLineChart(t *testing.T) {
	if s := RenderLineChart([]float64{1, 2, 3, 4}, 20, 5, "Test"); !strings.Contains(s, "Test") {
		t.Error("RenderLineChart should include the caption")
	}
	if s := RenderLineChart([]float64{42}, 20, 5, ""); s == "" {
		t.Error("single point should still render")
	}
	if s := RenderLineChart(nil, 20, 5, ""); !strings.Contains(s, "No data") {
		t.Errorf("empty chart = %q", s)
	}
}

func TestRenderPracticeChart(t *testing.T) {
	s := RenderPracticeChart([]float64{50, 60, 70}, []float64{90}, 20, 5, "Session")
	if !strings.Contains(s, "Session") {
		t.Error("RenderPracticeChart should include the caption")
	}
	if s := RenderPracticeChart(nil, nil, 20, 5, ""); !strings.Contains(s, "No data") {
		t.Errorf("empty chart = %q", s)
	}
}

func TestPadSeries(t *testing.T) {
	got := padSeries([]float64{1, 2}, 4)
	want := []float64{1, 2, 2, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("padSeries = %v, want %v", got, want)
		}
	}
	if got := padSeries(nil, 3); len(got) != 3 || got[0] != 0 {
		t.Errorf("padSeries(nil) = %v", got)
	}
}

func TestRenderBarChart(t *testing.T) {
	s := RenderBarChart([]float64{10, 20}, []string{"Tree", "Mountain"}, 40)
	if lines := strings.Split(s, "\n"); len(lines) != 2 {
		t.Errorf("RenderBarChart lines = %d, want 2", len(lines))
	}
	if RenderBarChart(nil, nil, 40) != "" {
		t.Error("empty bar chart should render nothing")
	}
}

func TestRenderSparkline(t *testing.T) {
	s := RenderSparkline([]float64{1, 2, 3}, 10)
	if got := len([]rune(s)); got != 3 {
		t.Errorf("sparkline has %d runes, want 3", got)
	}

	long := make([]float64, 100)
	if got := len([]rune(RenderSparkline(long, 10))); got != 10 {
		t.Errorf("sampled sparkline has %d runes, want 10", got)
	}
}

func TestRenderScoreSparkline(t *testing.T) {
	s := RenderScoreSparkline([]float64{20, 50, 90}, 10)
	if got := ansi.StringWidth(s); got != 3 {
		t.Errorf("score sparkline width = %d, want 3", got)
	}
}

func TestGauge(t *testing.T) {
	g := NewGauge()
	if s := g.View(80, "Similarity", 60); !strings.Contains(s, "80%") {
		t.Errorf("gauge view missing percentage: %q", s)
	}
	if s := g.View(150, "Similarity", 60); !strings.Contains(s, "100%") {
		t.Error("gauge should clamp to 100%")
	}
	if s := g.ViewNoBody("Similarity", 60); !strings.Contains(s, "no body") {
		t.Error("ViewNoBody should say no body")
	}
}

func TestRenderGradientBar(t *testing.T) {
	if got := ansi.StringWidth(RenderGradientBar(50, 10)); got != 10 {
		t.Errorf("bar width = %d, want 10", got)
	}
	if RenderGradientBar(50, 0) != "" {
		t.Error("zero width should render nothing")
	}
}

func TestRenderProgress(t *testing.T) {
	if s := RenderProgress(30, 60, 10); !strings.Contains(s, "30s / 60s") {
		t.Errorf("RenderProgress = %q", s)
	}
	if s := RenderProgress(90, 60, 10); !strings.Contains(s, "60s / 60s") {
		t.Errorf("overrun should cap at total: %q", s)
	}
	if s := RenderProgress(5, 0, 10); !strings.Contains(s, "5s") {
		t.Errorf("unknown duration = %q", s)
	}
}

func TestInterpolateColor(t *testing.T) {
	if got := interpolateColor("#000000", "#ffffff", 0); got != "#000000" {
		t.Errorf("t=0 got %s", got)
	}
	if got := interpolateColor("#000000", "#ffffff", 1); got != "#ffffff" {
		t.Errorf("t=1 got %s", got)
	}
	if got := hexToRGB("zz"); got != [3]int{0, 0, 0} {
		t.Errorf("bad hex = %v", got)
	}
}

func TestRenderLegend(t *testing.T) {
	items := []LegendItem{
		{Label: "Pose", Color: lipgloss.Color("#ffffff")},
	}
	if !strings.Contains(RenderLegend(items), "Pose") {
		t.Error("RenderLegend should include labels")
	}
}
