package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/j-veylop/yoga-coach-tui/internal/config"
	"github.com/j-veylop/yoga-coach-tui/internal/logger"
	"github.com/j-veylop/yoga-coach-tui/internal/models"
	"github.com/j-veylop/yoga-coach-tui/internal/services"
	runsummary "github.com/j-veylop/yoga-coach-tui/internal/services/summary"
	"github.com/j-veylop/yoga-coach-tui/internal/ui/components"
)

const coachTimeout = 90 * time.Second

// openManager starts the services for a one-shot command. Log lines go to
// the log file so they do not mix with the command output. The LCD and
// desktop notifications stay quiet. The returned func releases both.
func openManager(opts *options) (*services.Manager, func(), error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, nil, err
	}
	cfg.LCDURL = ""

	logCloser, err := logger.Setup(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}

	mgr, err := services.NewManager(cfg, services.WithNotifier(func(string, string) error { return nil }))
	if err != nil {
		_ = logCloser.Close()
		return nil, nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	return mgr, func() {
		if err := mgr.Close(); err != nil {
			logger.Warn("error closing services", "error", err)
		}
		_ = logCloser.Close()
	}, nil
}

func newSummaryCmd(opts *options) *cobra.Command {
	var (
		runID    string
		asJSON   bool
		askCoach bool
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the summary of a finished run",
		Long: `Show the statistics of a finished run. Without --run the most recent
completed run of the program is shown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, closeAll, err := openManager(opts)
			if err != nil {
				return err
			}
			defer closeAll()

			view := mgr.Summary(runID)
			if view == nil {
				if runID != "" {
					return fmt.Errorf("run %q: %w", runID, services.ErrRunNotFound)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "No completed practice yet.")
				return nil
			}
			data := mgr.SummaryData(view)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(data)
			}

			printSummary(cmd.OutOrStdout(), view, data)

			feedback, ok := mgr.CachedFeedback(view.Run.RunID)
			if !ok && askCoach {
				if !mgr.CoachConfigured() {
					return fmt.Errorf("coach is not configured (set %s)", config.EnvCoachAPIKey)
				}
				ctx, cancel := context.WithTimeout(cmd.Context(), coachTimeout)
				defer cancel()
				if feedback, err = mgr.CoachFeedback(ctx, view.Run.RunID); err != nil {
					return err
				}
				ok = feedback != ""
			}
			if ok {
				fmt.Fprintf(cmd.OutOrStdout(), "\nCoach:\n%s\n", feedback)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "run ID to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	cmd.Flags().BoolVar(&askCoach, "coach", false, "ask the coach for feedback when none is cached")
	return cmd
}

func printSummary(w io.Writer, view *models.RunView, data models.SummaryData) {
	bold := lipgloss.NewStyle().Bold(true)

	fmt.Fprintf(w, "%s  %s\n", bold.Render(view.Run.RunID), view.Run.FinishedAt.Local().Format("Mon Jan 2 2006, 15:04"))
	fmt.Fprintf(w, "Time %s   kcal %d   avg similarity %.1f%%   best %d%%   avg HR %.1f\n\n",
		data.Duration, data.Calories, data.AvgSimilarity, data.MaxSimilarity, data.AvgHeartRate)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Lesson", "Time", "kcal", "Avg Sim", "Avg HR")
	for _, p := range data.Poses {
		t.Row(p.Name, p.Duration, fmt.Sprintf("%d", p.Calories),
			fmt.Sprintf("%.1f%%", p.AvgSimilarity), fmt.Sprintf("%.1f", p.AvgHeartRate))
	}
	fmt.Fprintln(w, t.Render())

	sim := make([]float64, len(view.Charts.SimilaritySeries))
	for i, p := range view.Charts.SimilaritySeries {
		sim[i] = p.Value
	}
	hr := make([]float64, len(view.Charts.HeartRateSeries))
	for i, p := range view.Charts.HeartRateSeries {
		hr[i] = p.Value
	}
	if len(sim) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, components.RenderPracticeChart(sim, hr, 60, 8, "similarity % and heart rate per lesson"))
	}
}

func newRunsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "runs",
		Short: "List archived runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, closeAll, err := openManager(opts)
			if err != nil {
				return err
			}
			defer closeAll()

			runs := mgr.Runs()
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No completed practice yet.")
				return nil
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("Run", "Finished", "Lessons", "Time", "Avg Sim", "kcal")
			for _, run := range runs {
				view := mgr.Summary(run.RunID)
				if view == nil {
					continue
				}
				avg := "-"
				if view.Totals.AvgSim != nil {
					avg = fmt.Sprintf("%.1f%%", *view.Totals.AvgSim)
				}
				t.Row(
					run.RunID,
					run.FinishedAt.Local().Format("2006-01-02 15:04"),
					fmt.Sprintf("%d", len(view.PerLesson)),
					runsummary.FormatDuration(view.Totals.TotalTimeSec),
					avg,
					fmt.Sprintf("%.0f", view.Totals.TotalCalories),
				)
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
}

func newResetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Discard the unfinished run of the program",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, closeAll, err := openManager(opts)
			if err != nil {
				return err
			}
			defer closeAll()

			active := mgr.ActiveRun()
			if active == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No practice in progress.")
				return nil
			}
			mgr.AbandonProgram()
			fmt.Fprintf(cmd.OutOrStdout(), "Discarded run %s (%d lessons recorded).\n", active.RunID, len(active.Lessons))
			return nil
		},
	}
}
