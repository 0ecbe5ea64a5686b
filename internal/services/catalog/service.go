// Package catalog provides the lesson catalog with file watching.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/j-veylop/yoga-coach-tui/internal/logger"
	"github.com/j-veylop/yoga-coach-tui/internal/models"
)

// File is the on-disk catalog layout. JSON files parse too.
type File struct {
	Programs map[string]models.Program `json:"programs" yaml:"programs"`
}

// Event represents a catalog service event.
type Event struct {
	Error error
	Type  EventType
}

// EventType defines the type of catalog event.
type EventType int

const (
	EventCatalogLoaded EventType = iota
	EventCatalogChanged
	EventError
)

// DefaultFile is the catalog written when none exists.
func DefaultFile() File {
	return File{Programs: map[string]models.Program{
		"yoga_5min": {
			Title: "Yoga 5 min",
			Lessons: []models.Lesson{
				{Slug: "lesson-1", Title: "Lesson 1", VideoID: "3Cw_npFF54U", DurationSec: 60},
			},
		},
	}}
}

// Service serves lesson lists and reloads them when the file changes.
type Service struct {
	mu            sync.RWMutex
	programs      map[string]models.Program
	filePath      string
	watcher       *fsnotify.Watcher
	eventChan     chan Event
	stopChan      chan struct{}
	debounceTimer *time.Timer
	closeOnce     sync.Once
}

// New loads the catalog at filePath, creating it with DefaultFile if
// missing, and starts watching it.
func New(filePath string) (*Service, error) {
	if filePath == "" {
		return nil, errors.New("catalog path is required")
	}

	s := &Service{
		filePath:  filePath,
		eventChan: make(chan Event, 100),
		stopChan:  make(chan struct{}),
	}

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create catalog directory: %w", err)
	}

	if err := s.reload(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
		if err := writeFile(filePath, DefaultFile()); err != nil {
			return nil, fmt.Errorf("failed to create catalog file: %w", err)
		}
		s.programs = DefaultFile().Programs
	}

	if err := s.startWatcher(); err != nil {
		return nil, fmt.Errorf("failed to start file watcher: %w", err)
	}

	s.sendEvent(Event{Type: EventCatalogLoaded})
	return s, nil
}

// NewStatic serves a fixed catalog without touching disk.
func NewStatic(f File) *Service {
	return &Service{
		programs:  f.Programs,
		eventChan: make(chan Event, 1),
		stopChan:  make(chan struct{}),
	}
}

// Events returns the event channel for subscribing to catalog changes.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// Programs returns the program keys, sorted.
func (s *Service) Programs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.programs))
	for k := range s.programs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Lessons returns a copy of program's lessons in order.
func (s *Service) Lessons(program string) []models.Lesson {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.programs[program]
	if !ok {
		return nil
	}
	lessons := make([]models.Lesson, len(p.Lessons))
	copy(lessons, p.Lessons)
	return lessons
}

// Order returns program's lesson slugs in order.
func (s *Service) Order(program string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.programs[program].Order()
}

// Find returns the lesson with slug, or nil.
func (s *Service) Find(program, slug string) *models.Lesson {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, l := range s.programs[program].Lessons {
		if l.Slug == slug {
			return &l
		}
	}
	return nil
}

// Title returns the display title of slug, falling back to the slug itself.
func (s *Service) Title(program, slug string) string {
	if l := s.Find(program, slug); l != nil {
		return l.DisplayTitle()
	}
	return slug
}

// Next returns the lesson after slug, or nil at the end.
func (s *Service) Next(program, slug string) *models.Lesson {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lessons := s.programs[program].Lessons
	for i, l := range lessons {
		if l.Slug == slug && i+1 < len(lessons) {
			next := lessons[i+1]
			return &next
		}
	}
	return nil
}

// Parse decodes a YAML or JSON catalog and checks it.
func Parse(data []byte) (File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := f.Validate(); err != nil {
		return File{}, err
	}
	return f, nil
}

// Validate rejects empty programs, blank slugs and duplicate slugs.
func (f File) Validate() error {
	if len(f.Programs) == 0 {
		return errors.New("catalog has no programs")
	}
	for name, p := range f.Programs {
		if len(p.Lessons) == 0 {
			return fmt.Errorf("program %s has no lessons", name)
		}
		seen := make(map[string]bool, len(p.Lessons))
		for _, l := range p.Lessons {
			if l.Slug == "" {
				return fmt.Errorf("program %s has a lesson without slug", name)
			}
			if seen[l.Slug] {
				return fmt.Errorf("program %s lists %s twice", name, l.Slug)
			}
			seen[l.Slug] = true
		}
	}
	return nil
}

// reload reads the catalog file. On failure the current catalog is kept.
func (s *Service) reload() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	f, err := Parse(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.programs = f.Programs
	s.mu.Unlock()
	return nil
}

func writeFile(path string, f File) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	tmpFile := path + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmpFile, path); err != nil {
		if removeErr := os.Remove(tmpFile); removeErr != nil {
			logger.Error("failed to remove temp file", "error", removeErr)
		}
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// startWatcher starts the file system watcher.
func (s *Service) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = watcher

	// Watch the directory so editors that replace the file are seen
	if err := watcher.Add(filepath.Dir(s.filePath)); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return err
	}

	go s.watchLoop()
	return nil
}

// watchLoop handles file system events with debouncing.
func (s *Service) watchLoop() {
	const debounceInterval = 100 * time.Millisecond

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(s.filePath) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				s.mu.Lock()
				if s.debounceTimer != nil {
					s.debounceTimer.Stop()
				}
				s.debounceTimer = time.AfterFunc(debounceInterval, s.handleFileChange)
				s.mu.Unlock()
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-s.stopChan:
			return
		}
	}
}

func (s *Service) handleFileChange() {
	if err := s.reload(); err != nil {
		logger.Warn("catalog reload failed", "path", s.filePath, "error", err)
		s.sendEvent(Event{Type: EventError, Error: err})
		return
	}

	logger.Info("catalog reloaded", "path", s.filePath)
	s.sendEvent(Event{Type: EventCatalogChanged})
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop oldest event
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops the file watcher and cleans up resources.
func (s *Service) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stopChan)

		s.mu.Lock()
		if s.debounceTimer != nil {
			s.debounceTimer.Stop()
		}
		s.mu.Unlock()

		if s.watcher != nil {
			err = s.watcher.Close()
		}
	})
	return err
}
