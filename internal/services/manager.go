// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"

	"github.com/j-veylop/yoga-coach-tui/internal/config"
	"github.com/j-veylop/yoga-coach-tui/internal/db"
	"github.com/j-veylop/yoga-coach-tui/internal/logger"
	"github.com/j-veylop/yoga-coach-tui/internal/models"
	"github.com/j-veylop/yoga-coach-tui/internal/services/catalog"
	"github.com/j-veylop/yoga-coach-tui/internal/services/coach"
	"github.com/j-veylop/yoga-coach-tui/internal/services/devices"
	"github.com/j-veylop/yoga-coach-tui/internal/services/practice"
	"github.com/j-veylop/yoga-coach-tui/internal/services/runs"
	"github.com/j-veylop/yoga-coach-tui/internal/services/summary"
	"github.com/j-veylop/yoga-coach-tui/internal/store"
)

// HighHeartRate is the bpm above which a desktop alert is raised.
const HighHeartRate = 180

var (
	// ErrNoActiveRun is returned when a lesson is started outside a run.
	ErrNoActiveRun = errors.New("no active run")
	// ErrRunNotFound is returned when a summary or feedback target is missing.
	ErrRunNotFound = errors.New("run not found")
)

type (
	// RunChangedEvent is emitted when the active run starts, changes lesson or ends.
	RunChangedEvent struct {
		Run *models.ProgramRun
	}

	// SampleEvent carries one live practice reading.
	SampleEvent struct {
		Sample practice.Sample
	}

	// LessonStoppedEvent is emitted when a lesson ends. Next is nil after
	// the last lesson of the program.
	LessonStoppedEvent struct {
		Next *models.Lesson
		Slug string
	}

	// ProgramFinishedEvent is emitted when a run is archived.
	ProgramFinishedEvent struct {
		Run *models.ProgramRun
	}

	// CatalogChangedEvent is emitted when the lesson catalog is reloaded.
	CatalogChangedEvent struct {
		Lessons []models.Lesson
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Error   error
		Service string
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (RunChangedEvent) isServiceEvent()      {}
func (SampleEvent) isServiceEvent()          {}
func (LessonStoppedEvent) isServiceEvent()   {}
func (ProgramFinishedEvent) isServiceEvent() {}
func (CatalogChangedEvent) isServiceEvent()  {}
func (ErrorEvent) isServiceEvent()           {}

// Notifier shows a desktop notification.
type Notifier func(title, message string) error

func beeepNotify(title, message string) error {
	return beeep.Notify(title, message, "")
}

// Option customizes NewManager.
type Option func(*Manager)

// WithBackend stores runs in b instead of the SQLite database.
func WithBackend(b store.Backend) Option {
	return func(m *Manager) { m.backend = b }
}

// WithCatalog serves lessons from c instead of the catalog file.
func WithCatalog(c *catalog.Service) Option {
	return func(m *Manager) { m.catalog = c }
}

// WithHTTPClient routes device and coach traffic through c.
func WithHTTPClient(c *http.Client) Option {
	return func(m *Manager) { m.httpClient = c }
}

// WithNotifier replaces desktop notifications.
func WithNotifier(n Notifier) Option {
	return func(m *Manager) { m.notify = n }
}

// Manager orchestrates services and event routing.
type Manager struct {
	mu          sync.RWMutex
	program     string
	met         float64
	backend     store.Backend
	httpClient  *http.Client
	notify      Notifier
	database    *db.DB
	store       *store.Store
	runs        *runs.Aggregator
	catalog     *catalog.Service
	lcd         *devices.LCDClient
	session     *practice.Session
	coach       *coach.Client
	prompts     *coach.Prompts
	feedback    *coach.FeedbackCache
	eventChan   chan ServiceEvent
	stopChan    chan struct{}
	subscribers []chan<- ServiceEvent
	closeOnce   sync.Once
	hrAlerted   bool
}

// NewManager creates a new service manager.
func NewManager(cfg *config.Config, opts ...Option) (*Manager, error) {
	m := &Manager{
		program:   cfg.Program,
		met:       cfg.YogaMET,
		notify:    beeepNotify,
		eventChan: make(chan ServiceEvent, 100),
		stopChan:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.program == "" {
		m.program = config.DefaultProgram
	}

	if m.backend == nil {
		database, err := db.New(cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		m.database = database
		m.backend = database
	}
	m.store = store.New(m.backend)

	if m.catalog == nil {
		c, err := catalog.New(cfg.CatalogPath)
		if err != nil {
			m.closeDatabase()
			return nil, err
		}
		m.catalog = c
	}

	m.feedback = coach.NewFeedbackCache(m.store)
	m.runs = runs.New(m.store,
		runs.WithThrottleWait(cfg.PersistThrottle),
		runs.WithHistoryLimit(cfg.HistoryLimit),
		runs.WithArchiveHook(m.feedback.CleanupProgram),
	)

	m.lcd = devices.NewLCDClient(cfg.LCDURL, m.httpClient)
	m.coach = coach.NewClient(cfg.CoachAPIURL, cfg.CoachAPIKey, cfg.CoachModel, m.httpClient)
	m.prompts = coach.NewPrompts(cfg.PromptDir)

	var scorer practice.Scorer
	if cfg.CameraURL != "" && cfg.SimilarityURL != "" {
		scorer = devices.NewSimilarityClient(cfg.CameraURL, cfg.SimilarityURL, cfg.SnapshotDir, m.httpClient)
	}
	var hr practice.HeartRateSource
	if cfg.HeartRateURL != "" {
		hr = devices.NewHeartRateClient(cfg.HeartRateURL, m.httpClient)
	}
	m.session = practice.NewSession(m.runs, scorer, hr, m.lcd, practice.Config{
		SimilarityInterval: cfg.SimilarityInterval,
		HeartRateInterval:  cfg.HeartRateInterval,
	}, m.handleSample)

	// Pick up a run left active by an earlier session.
	if run := m.runs.ActiveRun(m.program); run != nil {
		m.session.SetCaloriesPerSecond(practice.CaloriesPerSecond(run.Profile, m.met))
		logger.Info("resuming active run", "program", m.program, "run_id", run.RunID)
	}

	go m.lcd.Init(context.Background())
	go m.routeEvents()

	return m, nil
}

// routeEvents routes events from individual services to subscribers.
func (m *Manager) routeEvents() {
	for {
		select {
		case event := <-m.catalog.Events():
			m.handleCatalogEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) handleCatalogEvent(event catalog.Event) {
	switch event.Type {
	case catalog.EventCatalogLoaded, catalog.EventCatalogChanged:
		m.broadcast(CatalogChangedEvent{Lessons: m.Lessons()})

	case catalog.EventError:
		m.broadcast(ErrorEvent{
			Service: "catalog",
			Error:   event.Error,
		})
	}
}

func (m *Manager) handleSample(s practice.Sample) {
	m.broadcast(SampleEvent{Sample: s})

	if s.Kind != practice.SampleHeartRate {
		return
	}

	// Alert once per excursion above the threshold.
	m.mu.Lock()
	high := s.Value > HighHeartRate
	alert := high && !m.hrAlerted
	m.hrAlerted = high
	m.mu.Unlock()

	if alert {
		m.sendNotification("Heart rate high", fmt.Sprintf("%.0f bpm. Slow down and breathe.", s.Value))
	}
}

func (m *Manager) sendNotification(title, message string) {
	if m.notify == nil {
		return
	}
	if err := m.notify(title, message); err != nil {
		logger.Debug("notification failed", "title", title, "error", err)
	}
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	// Send to main event channel
	select {
	case m.eventChan <- event:
	default:
	}

	// Send to subscribers
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, WaitForEvent(ch)
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Program returns the program key this kiosk runs.
func (m *Manager) Program() string {
	return m.program
}

// Catalog returns the lesson catalog.
func (m *Manager) Catalog() *catalog.Service {
	return m.catalog
}

// Lessons returns the program's lessons in order.
func (m *Manager) Lessons() []models.Lesson {
	return m.catalog.Lessons(m.program)
}

// ActiveRun returns the program's in-progress run, or nil.
func (m *Manager) ActiveRun() *models.ProgramRun {
	return m.runs.Peek(m.program)
}

// RunningLesson returns the slug being practiced, or "".
func (m *Manager) RunningLesson() string {
	return m.session.Running()
}

// StartProgram begins a fresh run with profile, discarding any lesson in
// progress.
func (m *Manager) StartProgram(profile *models.ProfileSnapshot) *models.ProgramRun {
	m.session.Stop()

	run := m.runs.BeginRun(m.program, profile)
	m.session.SetCaloriesPerSecond(practice.CaloriesPerSecond(profile, m.met))

	m.mu.Lock()
	m.hrAlerted = false
	m.mu.Unlock()

	total := len(m.Lessons())
	go m.lcd.LessonStart(context.Background(), total)

	m.broadcast(RunChangedEvent{Run: run})
	return run
}

// StartLesson starts sampling slug in the active run.
func (m *Manager) StartLesson(ctx context.Context, slug string) error {
	if m.runs.ActiveRun(m.program) == nil {
		return ErrNoActiveRun
	}
	if m.catalog.Find(m.program, slug) == nil {
		return fmt.Errorf("unknown lesson %q in program %s", slug, m.program)
	}
	if err := m.session.Start(ctx, slug); err != nil {
		return err
	}
	m.broadcast(RunChangedEvent{Run: m.ActiveRun()})
	return nil
}

// StopLesson ends the running lesson and returns the lesson that follows
// it, or nil after the last one.
func (m *Manager) StopLesson() *models.Lesson {
	slug := m.session.Stop()
	if slug == "" {
		return nil
	}

	next := m.catalog.Next(m.program, slug)
	m.broadcast(LessonStoppedEvent{Slug: slug, Next: next})
	m.broadcast(RunChangedEvent{Run: m.ActiveRun()})
	return next
}

// FinishProgram stops any running lesson and archives the active run.
func (m *Manager) FinishProgram() *models.ProgramRun {
	m.session.Stop()
	m.runs.ActiveRun(m.program)

	run := m.runs.FinishProgram()
	if run == nil {
		return nil
	}

	view := summary.Load(m.runs, m.program, run.RunID, m.catalog.Order(m.program))
	data := summary.Summarize(view, m.titleOf)
	m.sendNotification("Practice complete",
		fmt.Sprintf("%s practiced, %d kcal burned.", data.Duration, data.Calories))

	m.broadcast(ProgramFinishedEvent{Run: run})
	m.broadcast(RunChangedEvent{})
	return run
}

// AbandonProgram discards the active run without archiving it.
func (m *Manager) AbandonProgram() {
	m.session.Stop()
	m.runs.ResetActiveRun(m.program)
	m.broadcast(RunChangedEvent{})
}

// Summary derives the statistics of runID, or of the most recent completed
// run when runID is empty.
func (m *Manager) Summary(runID string) *models.RunView {
	return summary.Load(m.runs, m.program, runID, m.catalog.Order(m.program))
}

// SummaryData flattens view for display and prompting.
func (m *Manager) SummaryData(view *models.RunView) models.SummaryData {
	return summary.Summarize(view, m.titleOf)
}

// Runs returns the archived runs, newest first.
func (m *Manager) Runs() []models.ProgramRun {
	history := m.runs.Runs(m.program)
	slices.Reverse(history)
	return history
}

// CachedFeedback returns a previously generated message for runID.
func (m *Manager) CachedFeedback(runID string) (string, bool) {
	return m.feedback.Get(runID)
}

// CoachFeedback returns the coaching message for runID, generating and
// caching it on first request.
func (m *Manager) CoachFeedback(ctx context.Context, runID string) (string, error) {
	view := m.Summary(runID)
	if view == nil {
		return "", ErrRunNotFound
	}
	id := view.Run.RunID

	if text, ok := m.feedback.Get(id); ok {
		return text, nil
	}

	system, user, err := m.prompts.Build(m.SummaryData(view))
	if err != nil {
		return "", err
	}

	text, err := m.coach.Generate(ctx, system, user)
	if err != nil {
		return "", fmt.Errorf("failed to generate feedback: %w", err)
	}
	text = strings.TrimSpace(text)
	if text != "" {
		m.feedback.Set(id, text)
	}
	return text, nil
}

// CoachConfigured reports whether feedback can be generated.
func (m *Manager) CoachConfigured() bool {
	return m.coach.Configured()
}

// ResetFeedback drops the cached message of runID so it is generated again.
func (m *Manager) ResetFeedback(runID string) {
	m.feedback.Remove(runID)
}

func (m *Manager) titleOf(slug string) string {
	return m.catalog.Title(m.program, slug)
}

// Database returns the database instance, or nil with a custom backend.
func (m *Manager) Database() *db.DB {
	return m.database
}

// Close stops the running lesson, flushes pending writes and closes all
// services. Calls after the first are no-ops.
func (m *Manager) Close() error {
	var err error
	m.closeOnce.Do(func() { err = m.close() })
	return err
}

func (m *Manager) close() error {
	m.session.Stop()
	m.runs.Flush()

	close(m.stopChan)

	m.mu.Lock()
	for _, sub := range m.subscribers {
		close(sub)
	}
	m.subscribers = nil
	m.mu.Unlock()

	var errs []error
	if err := m.catalog.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := m.closeDatabase(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (m *Manager) closeDatabase() error {
	if m.database == nil {
		return nil
	}
	return m.database.Close()
}
