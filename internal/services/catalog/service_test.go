package catalog

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func newTestService(t *testing.T, content string) (*Service, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "lessons.yaml")
	if content != "" {
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("WriteFile() failed: %v", err)
		}
	}

	svc, err := New(path)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	t.Cleanup(func() {
		if err := svc.Close(); err != nil {
			t.Logf("Close() failed: %v", err)
		}
	})
	return svc, path
}

const twoProgramYAML = `programs:
  yoga_5min:
    title: Short
    lessons:
      - slug: lesson-1
        title: Mountain
        videoId: abc
        durationSec: 60
      - slug: lesson-2
        title: Tree
        durationSec: 90
  yoga_10min:
    lessons:
      - slug: warmup
        durationSec: 120
`

func TestNew_CreatesDefault(t *testing.T) {
	svc, path := newTestService(t, "")

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("catalog file not created: %v", err)
	}
	if got := svc.Order("yoga_5min"); !reflect.DeepEqual(got, []string{"lesson-1"}) {
		t.Errorf("Order() = %v", got)
	}
	l := svc.Find("yoga_5min", "lesson-1")
	if l == nil || l.VideoID != "3Cw_npFF54U" || l.DurationSec != 60 {
		t.Errorf("Find() = %+v", l)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() failed: %v", err)
	}
	f, err := Parse(data)
	if err != nil {
		t.Fatalf("written default does not parse: %v", err)
	}
	if !reflect.DeepEqual(f, DefaultFile()) {
		t.Errorf("written default = %+v", f)
	}
}

func TestNew_RequiresPath(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestNew_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lessons.yaml")
	if err := os.WriteFile(path, []byte("programs: [oops"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := New(path); err == nil {
		t.Error("expected error for malformed catalog")
	}
}

func TestLookups(t *testing.T) {
	svc, _ := newTestService(t, twoProgramYAML)

	if got := svc.Programs(); !reflect.DeepEqual(got, []string{"yoga_10min", "yoga_5min"}) {
		t.Errorf("Programs() = %v", got)
	}
	if got := svc.Order("yoga_5min"); !reflect.DeepEqual(got, []string{"lesson-1", "lesson-2"}) {
		t.Errorf("Order() = %v", got)
	}
	if got := svc.Order("missing"); len(got) != 0 {
		t.Errorf("Order(missing) = %v", got)
	}

	tests := []struct {
		program, slug, want string
	}{
		{"yoga_5min", "lesson-2", "Tree"},
		{"yoga_10min", "warmup", "warmup"},
		{"yoga_5min", "gone", "gone"},
	}
	for _, tt := range tests {
		if got := svc.Title(tt.program, tt.slug); got != tt.want {
			t.Errorf("Title(%s, %s) = %q, want %q", tt.program, tt.slug, got, tt.want)
		}
	}

	if next := svc.Next("yoga_5min", "lesson-1"); next == nil || next.Slug != "lesson-2" {
		t.Errorf("Next(lesson-1) = %+v", next)
	}
	if next := svc.Next("yoga_5min", "lesson-2"); next != nil {
		t.Errorf("Next(last) = %+v, want nil", next)
	}

	lessons := svc.Lessons("yoga_5min")
	lessons[0].Title = "changed"
	if svc.Title("yoga_5min", "lesson-1") != "Mountain" {
		t.Error("Lessons() must return a copy")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{"yaml", twoProgramYAML, false},
		{"json", `{"programs":{"p":{"lessons":[{"slug":"a","title":"A","durationSec":30}]}}}`, false},
		{"empty", ``, true},
		{"no lessons", "programs:\n  p:\n    lessons: []\n", true},
		{"blank slug", "programs:\n  p:\n    lessons:\n      - title: x\n", true},
		{"duplicate slug", "programs:\n  p:\n    lessons:\n      - slug: a\n      - slug: a\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Errorf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWatchFileChange(t *testing.T) {
	svc, path := newTestService(t, "")
	<-svc.Events()

	if err := os.WriteFile(path, []byte(twoProgramYAML), 0o600); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	waitFor(t, svc, EventCatalogChanged)

	if got := svc.Order("yoga_5min"); !reflect.DeepEqual(got, []string{"lesson-1", "lesson-2"}) {
		t.Errorf("Order() after reload = %v", got)
	}
}

func TestWatchFileChange_KeepsCatalogOnError(t *testing.T) {
	svc, path := newTestService(t, twoProgramYAML)
	<-svc.Events()

	if err := os.WriteFile(path, []byte("programs: {}\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	waitFor(t, svc, EventError)
	if got := svc.Order("yoga_5min"); len(got) != 2 {
		t.Errorf("catalog replaced by invalid file: %v", got)
	}
}

func TestNewStatic(t *testing.T) {
	svc := NewStatic(DefaultFile())
	if svc.Title("yoga_5min", "lesson-1") != "Lesson 1" {
		t.Error("static catalog lookup failed")
	}
	if err := svc.Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Errorf("second Close() failed: %v", err)
	}
}

func TestSendEvent_Full(t *testing.T) {
	svc := NewStatic(DefaultFile())
	svc.sendEvent(Event{Type: EventCatalogLoaded})
	svc.sendEvent(Event{Type: EventCatalogChanged})

	if ev := <-svc.Events(); ev.Type != EventCatalogChanged {
		t.Errorf("expected newest event to survive, got %v", ev.Type)
	}
}

func waitFor(t *testing.T, svc *Service, want EventType) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev := <-svc.Events():
			if ev.Type == want {
				return
			}
		case <-timeout:
			t.Fatalf("timeout waiting for event %v", want)
		}
	}
}
