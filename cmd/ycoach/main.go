// Package main is the entry point for the yoga kiosk coach. Without a
// subcommand it runs the practice TUI; subcommands inspect stored runs.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/j-veylop/yoga-coach-tui/internal/app"
	"github.com/j-veylop/yoga-coach-tui/internal/config"
	"github.com/j-veylop/yoga-coach-tui/internal/logger"
	"github.com/j-veylop/yoga-coach-tui/internal/services"
	"github.com/j-veylop/yoga-coach-tui/internal/ui/tabs/history"
	"github.com/j-veylop/yoga-coach-tui/internal/ui/tabs/info"
	"github.com/j-veylop/yoga-coach-tui/internal/ui/tabs/practice"
	"github.com/j-veylop/yoga-coach-tui/internal/ui/tabs/summary"
	"github.com/j-veylop/yoga-coach-tui/internal/version"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// options are the flags shared by every command.
type options struct {
	program string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "ycoach",
		Short: "Yoga kiosk coach",
		Long: `ycoach guides a practitioner through a yoga program, scoring each pose
against the reference video and recording heart rate and calories.

Keyboard Shortcuts:
  1-4             Switch between tabs (Practice, Summary, History, Info)
  Tab/Shift+Tab   Navigate between tabs
  n               Start a new practice
  Enter           Start or stop the selected lesson
  f               Finish the program
  ?               Toggle help
  q, Ctrl+C       Quit

Configuration is read from .env files in the current directory,
~/.config/ycoach/.env and the parent directories, then from the environment.`,
		SilenceUsage: true,
		Version:      version.GetVersion(),
		RunE: func(_ *cobra.Command, _ []string) error {
			return runTUI(opts)
		},
	}
	rootCmd.SetVersionTemplate(version.Info() + "\n")
	rootCmd.PersistentFlags().StringVarP(&opts.program, "program", "p", "", "program to use (default: PROGRAM or "+config.DefaultProgram+")")

	rootCmd.AddCommand(
		newSummaryCmd(opts),
		newRunsCmd(opts),
		newResetCmd(opts),
		newVersionCmd(),
	)
	return rootCmd
}

// loadConfig loads the configuration and applies flag overrides.
func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.program != "" {
		cfg.Program = opts.program
	}
	return cfg, nil
}

// runTUI contains the main application logic, separated for cleaner error handling.
func runTUI(opts *options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logCloser, err := logger.Setup(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	svcManager, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	model := app.NewModel(svcManager)

	state := model.GetState()
	model.SetTabs([]app.Tab{
		practice.New(state),
		summary.New(state),
		history.New(state),
		info.New(state, cfg),
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Info())
		},
	}
}
