package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/j-veylop/yoga-coach-tui/internal/config"
	"github.com/j-veylop/yoga-coach-tui/internal/models"
	"github.com/j-veylop/yoga-coach-tui/internal/services/catalog"
	"github.com/j-veylop/yoga-coach-tui/internal/services/practice"
	"github.com/j-veylop/yoga-coach-tui/internal/store"
)

// MockRoundTripper implements http.RoundTripper for testing
type MockRoundTripper struct {
	RoundTripFunc func(req *http.Request) (*http.Response, error)
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.RoundTripFunc(req)
}

type recordedNotifications struct {
	mu     sync.Mutex
	titles []string
}

func (r *recordedNotifications) notify(title, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.titles = append(r.titles, title)
	return nil
}

func (r *recordedNotifications) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.titles...)
}

func twoLessonCatalog() catalog.File {
	return catalog.File{Programs: map[string]models.Program{
		config.DefaultProgram: {
			Title: "Yoga 5 min",
			Lessons: []models.Lesson{
				{Slug: "lesson-1", Title: "Mountain", DurationSec: 60},
				{Slug: "lesson-2", Title: "Tree", DurationSec: 60},
			},
		},
	}}
}

func newTestManager(t *testing.T, cfg *config.Config, opts ...Option) (*Manager, *recordedNotifications) {
	t.Helper()
	if cfg == nil {
		cfg = &config.Config{}
	}
	notes := &recordedNotifications{}
	opts = append([]Option{
		WithBackend(store.NewMemoryBackend()),
		WithCatalog(catalog.NewStatic(twoLessonCatalog())),
		WithNotifier(notes.notify),
	}, opts...)

	mgr, err := NewManager(cfg, opts...)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	t.Cleanup(func() { _ = mgr.Close() })
	return mgr, notes
}

func TestNewManager(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := &config.Config{
		DatabasePath: filepath.Join(tmpDir, "test.db"),
		CatalogPath:  filepath.Join(tmpDir, "lessons.yaml"),
	}

	mgr, err := NewManager(cfg, WithNotifier(func(string, string) error { return nil }))
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	defer mgr.Close()

	if mgr.Database() == nil {
		t.Error("Database should be initialized")
	}
	if mgr.Catalog() == nil {
		t.Error("Catalog should be initialized")
	}
	if mgr.Program() != config.DefaultProgram {
		t.Errorf("Program() = %q, want %q", mgr.Program(), config.DefaultProgram)
	}
	if got := len(mgr.Lessons()); got != 1 {
		t.Errorf("default catalog has %d lessons, want 1", got)
	}
	if mgr.CoachConfigured() {
		t.Error("coach should not be configured without an API key")
	}
}

func TestManager_ProgramFlow(t *testing.T) {
	mgr, notes := newTestManager(t, nil)
	ctx := context.Background()

	if err := mgr.StartLesson(ctx, "lesson-1"); !errors.Is(err, ErrNoActiveRun) {
		t.Fatalf("StartLesson without run: got %v, want ErrNoActiveRun", err)
	}

	run := mgr.StartProgram(&models.ProfileSnapshot{Weight: "70kg"})
	if run == nil || run.RunID == "" {
		t.Fatal("StartProgram should return a run with an id")
	}

	if err := mgr.StartLesson(ctx, "headstand"); err == nil {
		t.Error("StartLesson should reject unknown lessons")
	}

	if err := mgr.StartLesson(ctx, "lesson-1"); err != nil {
		t.Fatalf("StartLesson failed: %v", err)
	}
	if mgr.RunningLesson() != "lesson-1" {
		t.Errorf("RunningLesson() = %q, want lesson-1", mgr.RunningLesson())
	}

	next := mgr.StopLesson()
	if next == nil || next.Slug != "lesson-2" {
		t.Fatalf("StopLesson next = %+v, want lesson-2", next)
	}
	if mgr.StopLesson() != nil {
		t.Error("StopLesson without a running lesson should return nil")
	}

	active := mgr.ActiveRun()
	if active == nil {
		t.Fatal("ActiveRun should be set during the program")
	}
	lesson := active.Lesson("lesson-1")
	if lesson == nil || lesson.FinishedAt.IsZero() {
		t.Fatalf("lesson-1 should be finished: %+v", lesson)
	}

	finished := mgr.FinishProgram()
	if finished == nil || finished.RunID != run.RunID {
		t.Fatalf("FinishProgram = %+v, want run %s", finished, run.RunID)
	}
	if mgr.ActiveRun() != nil {
		t.Error("ActiveRun should be cleared after FinishProgram")
	}
	if mgr.FinishProgram() != nil {
		t.Error("second FinishProgram should return nil")
	}

	history := mgr.Runs()
	if len(history) != 1 || history[0].RunID != run.RunID {
		t.Fatalf("Runs() = %+v", history)
	}

	view := mgr.Summary("")
	if view == nil || view.Run.RunID != run.RunID {
		t.Fatal("Summary should resolve the most recent completed run")
	}
	data := mgr.SummaryData(view)
	if len(data.Poses) != 1 || data.Poses[0].Name != "Mountain" {
		t.Errorf("SummaryData poses = %+v", data.Poses)
	}

	if got := notes.all(); len(got) != 1 || got[0] != "Practice complete" {
		t.Errorf("notifications = %v", got)
	}
}

func TestManager_RunsNewestFirst(t *testing.T) {
	mgr, _ := newTestManager(t, nil)

	first := mgr.StartProgram(nil)
	mgr.FinishProgram()
	time.Sleep(2 * time.Millisecond)
	second := mgr.StartProgram(nil)
	mgr.FinishProgram()

	history := mgr.Runs()
	if len(history) != 2 {
		t.Fatalf("Runs() has %d entries, want 2", len(history))
	}
	if history[0].RunID != second.RunID || history[1].RunID != first.RunID {
		t.Errorf("Runs() order = [%s %s]", history[0].RunID, history[1].RunID)
	}
}

func TestManager_AbandonProgram(t *testing.T) {
	mgr, notes := newTestManager(t, nil)

	mgr.StartProgram(nil)
	if err := mgr.StartLesson(context.Background(), "lesson-1"); err != nil {
		t.Fatalf("StartLesson failed: %v", err)
	}
	mgr.AbandonProgram()

	if mgr.ActiveRun() != nil {
		t.Error("ActiveRun should be cleared")
	}
	if mgr.RunningLesson() != "" {
		t.Error("lesson should be stopped")
	}
	if len(mgr.Runs()) != 0 {
		t.Error("abandoned runs are not archived")
	}
	if len(notes.all()) != 0 {
		t.Error("abandoning should not notify")
	}
}

func TestManager_ResumesActiveRun(t *testing.T) {
	backend := store.NewMemoryBackend()
	first, _ := newTestManager(t, nil, WithBackend(backend))
	run := first.StartProgram(&models.ProfileSnapshot{Weight: "60"})
	if err := first.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	second, _ := newTestManager(t, nil, WithBackend(backend))
	active := second.ActiveRun()
	if active == nil || active.RunID != run.RunID {
		t.Fatalf("ActiveRun after restart = %+v, want %s", active, run.RunID)
	}
}

func TestManager_HeartRateAlert(t *testing.T) {
	mgr, notes := newTestManager(t, nil)

	for _, bpm := range []float64{120, 190, 185, 170, 181} {
		mgr.handleSample(practice.Sample{Slug: "lesson-1", Kind: practice.SampleHeartRate, Value: bpm})
	}

	got := notes.all()
	if len(got) != 2 {
		t.Fatalf("got %d alerts, want 2: %v", len(got), got)
	}
	for _, title := range got {
		if title != "Heart rate high" {
			t.Errorf("unexpected notification %q", title)
		}
	}
}

func TestManager_Subscription(t *testing.T) {
	mgr, _ := newTestManager(t, nil)

	ch, cmd := mgr.Subscribe()
	if ch == nil || cmd == nil {
		t.Fatal("Subscribe should return a channel and a command")
	}

	run := mgr.StartProgram(nil)

	select {
	case event := <-ch:
		changed, ok := event.(RunChangedEvent)
		if !ok {
			t.Fatalf("got %T, want RunChangedEvent", event)
		}
		if changed.Run == nil || changed.Run.RunID != run.RunID {
			t.Errorf("event run = %+v", changed.Run)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	mgr.Unsubscribe(ch)
	if _, ok := <-ch; ok {
		t.Error("channel should be closed after Unsubscribe")
	}
}

func TestManager_CoachFeedback(t *testing.T) {
	var calls atomic.Int32
	client := &http.Client{Transport: &MockRoundTripper{
		RoundTripFunc: func(req *http.Request) (*http.Response, error) {
			calls.Add(1)
			if !strings.HasSuffix(req.URL.Path, "/chat/completions") {
				t.Errorf("unexpected path %s", req.URL.Path)
			}
			body := `{"choices":[{"message":{"role":"assistant","content":"  Lovely balance today.  "}}]}`
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(body)),
				Header:     http.Header{"Content-Type": []string{"application/json"}},
			}, nil
		},
	}}

	cfg := &config.Config{
		CoachAPIURL: "http://coach.test/v1",
		CoachAPIKey: "secret",
		CoachModel:  "test-model",
	}
	mgr, _ := newTestManager(t, cfg, WithHTTPClient(client))
	ctx := context.Background()

	if _, err := mgr.CoachFeedback(ctx, ""); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("CoachFeedback without runs: got %v, want ErrRunNotFound", err)
	}

	run := mgr.StartProgram(nil)
	mgr.FinishProgram()

	for range 2 {
		text, err := mgr.CoachFeedback(ctx, run.RunID)
		if err != nil {
			t.Fatalf("CoachFeedback failed: %v", err)
		}
		if text != "Lovely balance today." {
			t.Errorf("CoachFeedback = %q", text)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("model called %d times, want 1", got)
	}

	if _, ok := mgr.CachedFeedback(run.RunID); !ok {
		t.Error("feedback should be cached")
	}
	mgr.ResetFeedback(run.RunID)
	if _, ok := mgr.CachedFeedback(run.RunID); ok {
		t.Error("ResetFeedback should drop the cached message")
	}
}

func TestManager_CoachFeedbackNotConfigured(t *testing.T) {
	mgr, _ := newTestManager(t, nil)
	run := mgr.StartProgram(nil)
	mgr.FinishProgram()

	if _, err := mgr.CoachFeedback(context.Background(), run.RunID); err == nil {
		t.Error("CoachFeedback should fail without an API key")
	}
}

func TestManager_CatalogReloadReachesSubscribers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lessons.yaml")
	c, err := catalog.New(path)
	if err != nil {
		t.Fatalf("catalog.New failed: %v", err)
	}
	mgr, _ := newTestManager(t, nil, WithCatalog(c))

	ch, _ := mgr.Subscribe()
	defer mgr.Unsubscribe(ch)

	data := `programs:
  yoga_5min:
    lessons:
      - slug: lesson-1
        title: Mountain
        durationSec: 60
      - slug: lesson-2
        title: Tree
        durationSec: 45
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	timeout := time.After(3 * time.Second)
	for {
		select {
		case event := <-ch:
			changed, ok := event.(CatalogChangedEvent)
			if !ok || len(changed.Lessons) != 2 {
				continue
			}
			if changed.Lessons[1].Title != "Tree" {
				t.Errorf("reloaded lessons = %+v", changed.Lessons)
			}
			if got := mgr.Catalog().Order(mgr.Program()); len(got) != 2 {
				t.Errorf("Order after reload = %v", got)
			}
			return
		case <-timeout:
			t.Fatal("timeout waiting for the reloaded catalog")
		}
	}
}
