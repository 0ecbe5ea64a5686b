package practice

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/yoga-coach-tui/internal/app"
	"github.com/j-veylop/yoga-coach-tui/internal/models"
	"github.com/j-veylop/yoga-coach-tui/internal/services/practice"
)

var testLessons = []models.Lesson{
	{Slug: "lesson-1", Title: "Mountain", DurationSec: 60},
	{Slug: "lesson-2", Title: "Tree", DurationSec: 90},
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newIdleModel(t *testing.T) *Model {
	t.Helper()
	state := app.NewState()
	state.SetLoading(app.ResourceInitial, false)
	state.SetProgramData("program-1", testLessons, nil, "")
	m := New(state)
	m.SetSize(100, 40)
	return m
}

func newActiveModel(t *testing.T) *Model {
	t.Helper()
	m := newIdleModel(t)

	done := models.LessonStats{Slug: "lesson-1", FinishedAt: time.Now()}
	done.Similarity.Add(70)
	done.Similarity.Add(81)
	m.state.SetActiveRun(&models.ProgramRun{
		RunID:     "program-1-1-abcdef01",
		Program:   "program-1",
		StartedAt: time.Now(),
		Lessons:   []models.LessonStats{done},
	})
	m.Update(app.DataLoadedMsg{})
	return m
}

func sent(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	return cmd()
}

func TestNew(t *testing.T) {
	m := New(app.NewState())
	if m == nil {
		t.Fatal("New returned nil")
	}
	if m.Init() == nil {
		t.Error("Init returned nil")
	}
}

func TestModel_ViewIdle(t *testing.T) {
	m := newIdleModel(t)

	view := m.View()
	if !strings.Contains(view, "No practice in progress") {
		t.Errorf("expected idle card, got %q", view)
	}
}

func TestModel_ProfileForm(t *testing.T) {
	m := newIdleModel(t)

	m.Update(keyRunes("n"))
	if !m.CapturingInput() {
		t.Fatal("form should capture input")
	}
	if !strings.Contains(m.View(), "New Practice") {
		t.Error("view should show the form")
	}

	m.Update(keyRunes("170"))
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m.Update(keyRunes("62 kg"))
	for range 3 {
		m.Update(tea.KeyMsg{Type: tea.KeyTab})
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	msg, ok := sent(t, cmd).(app.StartProgramMsg)
	if !ok {
		t.Fatal("expected StartProgramMsg")
	}
	if msg.Profile.Height != "170" || msg.Profile.Weight != "62 kg" {
		t.Errorf("unexpected profile: %+v", msg.Profile)
	}
	if msg.Profile.Age != "" || msg.Profile.Gender != "" {
		t.Errorf("untouched fields should be empty: %+v", msg.Profile)
	}
	if m.CapturingInput() {
		t.Error("form should be closed after submit")
	}
}

func TestModel_ProfileFormCancel(t *testing.T) {
	m := newIdleModel(t)

	m.Update(keyRunes("n"))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd != nil {
		t.Error("cancel should not send anything")
	}
	if m.CapturingInput() {
		t.Error("form should be closed after esc")
	}
}

func TestModel_IdleIgnoresRunKeys(t *testing.T) {
	m := newIdleModel(t)

	for _, k := range []tea.KeyMsg{{Type: tea.KeyEnter}, keyRunes("f"), keyRunes("x")} {
		if _, cmd := m.Update(k); cmd != nil {
			t.Errorf("key %q should do nothing without a run", k.String())
		}
	}
}

func TestModel_StartAndStopLesson(t *testing.T) {
	m := newActiveModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	start, ok := sent(t, cmd).(app.StartLessonMsg)
	if !ok || start.Slug != "lesson-1" {
		t.Fatalf("expected StartLessonMsg for lesson-1, got %#v", start)
	}

	m.state.SetRunning("lesson-1")
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if _, ok := sent(t, cmd).(app.StopLessonMsg); !ok {
		t.Error("enter on a running lesson should stop it")
	}

	_, cmd = m.Update(keyRunes("s"))
	if _, ok := sent(t, cmd).(app.StopLessonMsg); !ok {
		t.Error("s should stop the running lesson")
	}

	if _, cmd = m.Update(keyRunes("n")); cmd != nil || m.CapturingInput() {
		t.Error("a new practice cannot start while a lesson runs")
	}
}

func TestModel_FinishAndAbandon(t *testing.T) {
	m := newActiveModel(t)

	_, cmd := m.Update(keyRunes("f"))
	if _, ok := sent(t, cmd).(app.FinishProgramMsg); !ok {
		t.Error("f should finish the program")
	}

	m.Update(keyRunes("x"))
	if !m.CapturingInput() {
		t.Fatal("abandon should ask for confirmation")
	}
	if !strings.Contains(m.View(), "Abandon practice?") {
		t.Error("view should show the confirmation")
	}

	_, cmd = m.Update(keyRunes("n"))
	if cmd != nil || m.CapturingInput() {
		t.Error("n should dismiss the confirmation")
	}

	m.Update(keyRunes("x"))
	_, cmd = m.Update(keyRunes("y"))
	if _, ok := sent(t, cmd).(app.AbandonProgramMsg); !ok {
		t.Error("y should abandon the program")
	}
}

func TestModel_LessonStoppedSelectsNext(t *testing.T) {
	m := newActiveModel(t)

	next := testLessons[1]
	m.Update(app.LessonStoppedMsg{Slug: "lesson-1", Next: &next})
	if got := m.selectedSlug(); got != "lesson-2" {
		t.Errorf("expected lesson-2 selected, got %q", got)
	}
}

func TestModel_Rows(t *testing.T) {
	m := newActiveModel(t)
	m.state.SetRunning("lesson-2")
	m.syncRows()

	rows := m.table.Rows()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][1] != "Mountain" || rows[0][2] != "1:00" || rows[0][3] != "✓ done" || rows[0][4] != "75.5%" {
		t.Errorf("unexpected first row: %v", rows[0])
	}
	if rows[1][3] != "● live" || rows[1][4] != "-" {
		t.Errorf("unexpected second row: %v", rows[1])
	}
}

func TestLessonStatus(t *testing.T) {
	run := &models.ProgramRun{Lessons: []models.LessonStats{{Slug: "a"}}}
	tests := []struct {
		run     *models.ProgramRun
		slug    string
		running string
		want    string
	}{
		{nil, "a", "", ""},
		{nil, "a", "a", "● live"},
		{run, "a", "", "partial"},
		{run, "b", "", ""},
	}
	for _, tt := range tests {
		if got := lessonStatus(tt.run, tt.slug, tt.running); got != tt.want {
			t.Errorf("lessonStatus(%s, %q) = %q, want %q", tt.slug, tt.running, got, tt.want)
		}
	}
}

func TestModel_LiveView(t *testing.T) {
	m := newActiveModel(t)
	m.state.SetRunning("lesson-2")

	if !strings.Contains(m.View(), "Waiting for the camera") {
		t.Error("expected waiting message before the first score")
	}

	m.state.ApplySample(practice.Sample{Slug: "lesson-2", Kind: practice.SampleSimilarity, Value: 80, BodyFound: true})
	m.state.ApplySample(practice.Sample{Slug: "lesson-2", Kind: practice.SampleHeartRate, Value: 96})
	m.state.ApplySample(practice.Sample{Slug: "lesson-2", Kind: practice.SampleElapsed, Elapsed: 30 * time.Second, Calories: 2.5})

	view := m.View()
	for _, want := range []string{"Tree", "96 bpm", "2.5 kcal", "30s / 90s"} {
		if !strings.Contains(view, want) {
			t.Errorf("live view missing %q", want)
		}
	}
}

func TestModel_SimilarityAnimation(t *testing.T) {
	m := newActiveModel(t)
	m.state.SetRunning("lesson-1")
	m.state.ApplySample(practice.Sample{Slug: "lesson-1", Kind: practice.SampleSimilarity, Value: 80, BodyFound: true})

	_, cmd := m.Update(app.SampleMsg{})
	if cmd == nil {
		t.Fatal("a sample should start the animation")
	}

	now := time.Now()
	if m.handleAnimationTick(now) == nil {
		t.Error("animation should continue mid-transition")
	}
	if m.handleAnimationTick(now.Add(animationDuration)) != nil {
		t.Error("animation should stop once settled")
	}
	if m.similarity.current != 80 {
		t.Errorf("expected gauge at 80, got %v", m.similarity.current)
	}
}

func TestModel_Help(t *testing.T) {
	m := newIdleModel(t)
	if len(m.ShortHelp()) != 1 {
		t.Errorf("idle help should only offer a new practice, got %d bindings", len(m.ShortHelp()))
	}
	if len(m.FullHelp()) == 0 {
		t.Error("FullHelp should not be empty")
	}
}
