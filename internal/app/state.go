// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"sync"
	"time"

	"github.com/j-veylop/yoga-coach-tui/internal/models"
	"github.com/j-veylop/yoga-coach-tui/internal/services/practice"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

const (
	// LoadingNotificationID is the fixed ID for loading notifications.
	LoadingNotificationID = "__loading__"
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	ID        string
	Type      NotificationType
	Message   string
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// Resources tracked by the loading state.
const (
	ResourceInitial  = "initial"
	ResourceRuns     = "runs"
	ResourceSummary  = "summary"
	ResourceFeedback = "feedback"
)

// maxLivePoints bounds the live chart series.
const maxLivePoints = 120

// LoadingState tracks loading states for different resources.
type LoadingState struct {
	Initial  bool
	Runs     bool
	Summary  bool
	Feedback bool
}

// LiveStats is the latest reading of the lesson in progress.
type LiveStats struct {
	Slug          string
	Elapsed       time.Duration
	Calories      float64
	Similarity    float64
	HeartRate     float64
	BodyFound     bool
	HasSimilarity bool
	HasHeartRate  bool
}

// State is the data shared by the application model and its tabs.
type State struct {
	mu sync.RWMutex

	Program string
	Lessons []models.Lesson
	Active  *models.ProgramRun
	Running string
	Live    LiveStats

	similaritySeries []float64
	heartRateSeries  []float64

	Runs             []models.ProgramRun
	SelectedRunIndex int

	Summary     *models.RunView
	SummaryData models.SummaryData
	feedback    map[string]string

	Loading LoadingState

	LastUpdated time.Time

	notifications   []Notification
	notificationSeq int
}

// NewState creates an empty state with the initial load pending.
func NewState() *State {
	return &State{
		Lessons:       make([]models.Lesson, 0),
		Runs:          make([]models.ProgramRun, 0),
		feedback:      make(map[string]string),
		notifications: make([]Notification, 0),
		Loading: LoadingState{
			Initial: true,
		},
	}
}

// SetLoading sets the loading state for a specific resource.
func (s *State) SetLoading(resource string, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch resource {
	case ResourceInitial:
		s.Loading.Initial = loading
	case ResourceRuns:
		s.Loading.Runs = loading
	case ResourceSummary:
		s.Loading.Summary = loading
	case ResourceFeedback:
		s.Loading.Feedback = loading
	}
}

// AnyLoading returns true if any resource is currently loading.
func (s *State) AnyLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.Loading.Initial ||
		s.Loading.Runs ||
		s.Loading.Summary ||
		s.Loading.Feedback
}

// IsInitialLoading returns true if initial data is still loading.
func (s *State) IsInitialLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Loading.Initial
}

// IsLoading reports whether resource is loading.
func (s *State) IsLoading(resource string) bool {
	for _, r := range s.GetLoadingResources() {
		if r == resource {
			return true
		}
	}
	return false
}

// GetLoadingResources returns a list of currently loading resources.
func (s *State) GetLoadingResources() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var resources []string
	if s.Loading.Initial {
		resources = append(resources, ResourceInitial)
	}
	if s.Loading.Runs {
		resources = append(resources, ResourceRuns)
	}
	if s.Loading.Summary {
		resources = append(resources, ResourceSummary)
	}
	if s.Loading.Feedback {
		resources = append(resources, ResourceFeedback)
	}
	return resources
}

// SetProgramData replaces the program, its lessons and its run state.
func (s *State) SetProgramData(program string, lessons []models.Lesson, active *models.ProgramRun, running string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Program = program
	s.Lessons = lessons
	s.Active = active
	s.Running = running
	s.LastUpdated = time.Now()
}

// GetProgram returns the program key.
func (s *State) GetProgram() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Program
}

// SetLessons replaces the lesson list.
func (s *State) SetLessons(lessons []models.Lesson) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Lessons = lessons
}

// GetLessons returns a copy of the lesson list.
func (s *State) GetLessons() []models.Lesson {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lessons := make([]models.Lesson, len(s.Lessons))
	copy(lessons, s.Lessons)
	return lessons
}

// LessonTitle returns the display title of slug.
func (s *State) LessonTitle(slug string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.Lessons {
		if s.Lessons[i].Slug == slug {
			return s.Lessons[i].DisplayTitle()
		}
	}
	return slug
}

// SetActiveRun replaces the in-progress run.
func (s *State) SetActiveRun(run *models.ProgramRun) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Active = run
	s.LastUpdated = time.Now()
}

// GetActiveRun returns the in-progress run, or nil.
func (s *State) GetActiveRun() *models.ProgramRun {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Active
}

// SetRunning marks slug as the lesson in progress and resets the live
// readings when it changes.
func (s *State) SetRunning(slug string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slug != s.Running {
		s.Live = LiveStats{Slug: slug}
		s.similaritySeries = nil
		s.heartRateSeries = nil
	}
	s.Running = slug
}

// GetRunning returns the slug of the lesson in progress, or "".
func (s *State) GetRunning() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Running
}

// ApplySample folds a live reading into the current lesson's stats.
// Samples for another lesson are ignored.
func (s *State) ApplySample(sample practice.Sample) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sample.Slug != s.Running {
		return
	}

	switch sample.Kind {
	case practice.SampleElapsed:
		s.Live.Elapsed = sample.Elapsed
		s.Live.Calories = sample.Calories
	case practice.SampleSimilarity:
		s.Live.Similarity = sample.Value
		s.Live.BodyFound = sample.BodyFound
		s.Live.HasSimilarity = true
		s.similaritySeries = appendBounded(s.similaritySeries, sample.Value)
	case practice.SampleHeartRate:
		s.Live.HeartRate = sample.Value
		s.Live.HasHeartRate = true
		s.heartRateSeries = appendBounded(s.heartRateSeries, sample.Value)
	}
}

func appendBounded(series []float64, v float64) []float64 {
	series = append(series, v)
	if len(series) > maxLivePoints {
		series = series[len(series)-maxLivePoints:]
	}
	return series
}

// GetLive returns the latest readings.
func (s *State) GetLive() LiveStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Live
}

// LiveSeries returns copies of the similarity and heart-rate series of the
// lesson in progress.
func (s *State) LiveSeries() (similarity, heartRate []float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]float64(nil), s.similaritySeries...), append([]float64(nil), s.heartRateSeries...)
}

// SetRuns replaces the archived runs, newest first, keeping the selection
// in range.
func (s *State) SetRuns(runs []models.ProgramRun) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Runs = runs
	if s.SelectedRunIndex >= len(runs) {
		s.SelectedRunIndex = max(len(runs)-1, 0)
	}
}

// GetRuns returns a copy of the archived runs.
func (s *State) GetRuns() []models.ProgramRun {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]models.ProgramRun, len(s.Runs))
	copy(runs, s.Runs)
	return runs
}

// GetSelectedRunIndex returns the currently selected run index.
func (s *State) GetSelectedRunIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.SelectedRunIndex
}

// SetSelectedRunIndex updates the selected run index.
func (s *State) SetSelectedRunIndex(idx int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SelectedRunIndex = idx
}

// SetSummary replaces the run shown on the summary tab.
func (s *State) SetSummary(view *models.RunView, data models.SummaryData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Summary = view
	s.SummaryData = data
}

// GetSummary returns the run shown on the summary tab, or nil.
func (s *State) GetSummary() (*models.RunView, models.SummaryData) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Summary, s.SummaryData
}

// SetFeedback stores the coach's message for runID.
func (s *State) SetFeedback(runID, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if text == "" {
		delete(s.feedback, runID)
		return
	}
	s.feedback[runID] = text
}

// GetFeedback returns the coach's message for runID.
func (s *State) GetFeedback(runID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.feedback[runID]
	return text, ok
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationSeq++
	id := time.Now().Format("20060102150405") + "-" + string(rune('A'+s.notificationSeq%26))

	notification := Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	}

	s.notifications = append(s.notifications, notification)

	// Keep only the last 10 notifications
	if len(s.notifications) > 10 {
		s.notifications = s.notifications[len(s.notifications)-10:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	s.notifications = active
}

// GetNotifications returns a copy of all active notifications.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Clear expired inline when reading
	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}

	return active
}

// ClearAllNotifications removes all notifications.
func (s *State) ClearAllNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = make([]Notification, 0)
}

// SetLoadingNotification sets a loading notification message.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  0,
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *State) ClearLoadingNotification() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// GetLastUpdated returns the last time the state was updated.
func (s *State) GetLastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastUpdated
}
