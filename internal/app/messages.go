package app

import (
	"time"

	"github.com/j-veylop/yoga-coach-tui/internal/models"
	"github.com/j-veylop/yoga-coach-tui/internal/services"
)

// TickMsg is sent periodically to trigger state refresh.
type TickMsg struct {
	Time time.Time
}

// StartLoadingMsg signals that a resource is starting to load.
type StartLoadingMsg struct {
	Resource string
}

// StopLoadingMsg signals that a resource has finished loading.
type StopLoadingMsg struct {
	Resource string
}

// DataLoadedMsg carries the program, its lessons and its run state.
type DataLoadedMsg struct {
	Active  *models.ProgramRun
	Program string
	Running string
	Lessons []models.Lesson
	Runs    []models.ProgramRun
}

// StartProgramMsg requests a fresh run for the given profile.
type StartProgramMsg struct {
	Profile *models.ProfileSnapshot
}

// ProgramStartedMsg confirms a run was started.
type ProgramStartedMsg struct {
	Run *models.ProgramRun
}

// StartLessonMsg requests practicing a lesson of the active run.
type StartLessonMsg struct {
	Slug string
}

// LessonStartedMsg contains the result of starting a lesson.
type LessonStartedMsg struct {
	Error error
	Slug  string
}

// StopLessonMsg requests ending the running lesson.
type StopLessonMsg struct{}

// LessonStoppedMsg reports a stopped lesson and the lesson after it.
type LessonStoppedMsg struct {
	Next *models.Lesson
	Slug string
}

// FinishProgramMsg requests archiving the active run.
type FinishProgramMsg struct{}

// ProgramFinishedMsg contains the archived run, or nil when nothing was active.
type ProgramFinishedMsg struct {
	Run *models.ProgramRun
}

// AbandonProgramMsg requests discarding the active run.
type AbandonProgramMsg struct{}

// ShowSummaryMsg requests the summary of RunID. An empty RunID means the
// most recent completed run.
type ShowSummaryMsg struct {
	RunID string
}

// SummaryLoadedMsg contains a derived run summary. View is nil when the run
// does not exist.
type SummaryLoadedMsg struct {
	View  *models.RunView
	RunID string
	Data  models.SummaryData
}

// RequestFeedbackMsg asks the coach about RunID. Regenerate drops any
// cached message first.
type RequestFeedbackMsg struct {
	RunID      string
	Regenerate bool
}

// FeedbackLoadedMsg contains the coach's message for a run.
type FeedbackLoadedMsg struct {
	Error error
	RunID string
	Text  string
}

// RefreshMsg requests a refresh of data.
type RefreshMsg struct {
	Resource string // "all", "runs", "summary"
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Type     NotificationType
	Message  string
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ClearExpiredNotificationsMsg triggers clearing of expired notifications.
type ClearExpiredNotificationsMsg struct{}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SampleMsg forwards a live practice reading to the tabs.
type SampleMsg struct {
	Event services.SampleEvent
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}
