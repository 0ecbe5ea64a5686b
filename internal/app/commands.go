package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/yoga-coach-tui/internal/models"
	"github.com/j-veylop/yoga-coach-tui/internal/services"
)

const (
	// DefaultTickInterval is the default interval between ticks.
	DefaultTickInterval = 2 * time.Second

	// DefaultNotificationDuration is the default duration for notifications.
	DefaultNotificationDuration = 5 * time.Second

	// QuickNotificationDuration is for brief notifications.
	QuickNotificationDuration = 3 * time.Second

	// LongNotificationDuration is for important notifications.
	LongNotificationDuration = 10 * time.Second

	// FeedbackTimeout bounds one coach request.
	FeedbackTimeout = 90 * time.Second
)

// tickCmd returns a command that sends a TickMsg after the specified interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// defaultTickCmd returns a command that sends a TickMsg after the default interval.
func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

// loadDataCmd returns a command that loads the program and its runs.
func loadDataCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		return DataLoadedMsg{
			Program: mgr.Program(),
			Lessons: mgr.Lessons(),
			Active:  mgr.ActiveRun(),
			Running: mgr.RunningLesson(),
			Runs:    mgr.Runs(),
		}
	}
}

// startProgramCmd returns a command that begins a run.
func startProgramCmd(mgr *services.Manager, profile *models.ProfileSnapshot) tea.Cmd {
	return func() tea.Msg {
		return ProgramStartedMsg{Run: mgr.StartProgram(profile)}
	}
}

// startLessonCmd returns a command that starts practicing slug.
func startLessonCmd(mgr *services.Manager, slug string) tea.Cmd {
	return func() tea.Msg {
		// The session outlives this command; it ends on StopLesson.
		err := mgr.StartLesson(context.Background(), slug)
		return LessonStartedMsg{Slug: slug, Error: err}
	}
}

// stopLessonCmd returns a command that ends the running lesson.
func stopLessonCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		slug := mgr.RunningLesson()
		next := mgr.StopLesson()
		return LessonStoppedMsg{Slug: slug, Next: next}
	}
}

// finishProgramCmd returns a command that archives the active run.
func finishProgramCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		return ProgramFinishedMsg{Run: mgr.FinishProgram()}
	}
}

// abandonProgramCmd returns a command that discards the active run.
func abandonProgramCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		mgr.AbandonProgram()
		return RefreshMsg{Resource: "all"}
	}
}

// loadSummaryCmd returns a command that derives the summary of runID.
func loadSummaryCmd(mgr *services.Manager, runID string) tea.Cmd {
	return func() tea.Msg {
		view := mgr.Summary(runID)
		msg := SummaryLoadedMsg{RunID: runID, View: view}
		if view != nil {
			msg.Data = mgr.SummaryData(view)
		}
		return msg
	}
}

// loadFeedbackCmd returns a command that fetches the coach's message.
func loadFeedbackCmd(mgr *services.Manager, runID string, regenerate bool) tea.Cmd {
	return func() tea.Msg {
		if regenerate {
			mgr.ResetFeedback(runID)
		}
		ctx, cancel := context.WithTimeout(context.Background(), FeedbackTimeout)
		defer cancel()

		text, err := mgr.CoachFeedback(ctx, runID)
		return FeedbackLoadedMsg{RunID: runID, Text: text, Error: err}
	}
}

// subscribeToServicesCmd returns a command that subscribes to service events.
func subscribeToServicesCmd(mgr *services.Manager) tea.Cmd {
	ch, _ := mgr.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{Channel: ch}
	}
}

// waitForServiceEventCmd returns a command that waits for the next service event.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

// clearNotificationCmd returns a command that removes a notification after a delay.
func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

// notifySuccessCmd returns a command that adds a success notification.
func notifySuccessCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationSuccess,
			Message:  message,
			Duration: DefaultNotificationDuration,
		}
	}
}

// notifyErrorCmd returns a command that adds an error notification.
func notifyErrorCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationError,
			Message:  message,
			Duration: LongNotificationDuration,
		}
	}
}

// notifyWarningCmd returns a command that adds a warning notification.
func notifyWarningCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationWarning,
			Message:  message,
			Duration: DefaultNotificationDuration,
		}
	}
}

// notifyInfoCmd returns a command that adds an info notification.
func notifyInfoCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationInfo,
			Message:  message,
			Duration: QuickNotificationDuration,
		}
	}
}

// Send returns a command that emits msg. Tabs use it to raise requests.
func Send(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}
