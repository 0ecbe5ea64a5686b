package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-veylop/yoga-coach-tui/internal/config"
	"github.com/j-veylop/yoga-coach-tui/internal/db"
	"github.com/j-veylop/yoga-coach-tui/internal/models"
	"github.com/j-veylop/yoga-coach-tui/internal/services/runs"
	"github.com/j-veylop/yoga-coach-tui/internal/store"
)

// setupEnv points the configuration at a temporary directory and returns
// the database path.
func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "kiosk.db")
	t.Setenv(config.EnvDatabasePath, dbPath)
	t.Setenv(config.EnvCatalogPath, filepath.Join(dir, "lessons.yaml"))
	t.Setenv(config.EnvLogPath, filepath.Join(dir, "ycoach.log"))
	t.Setenv(config.EnvLogLevel, "info")
	t.Setenv(config.EnvPromptDir, dir)
	t.Setenv(config.EnvProgram, config.DefaultProgram)
	t.Setenv(config.EnvCoachAPIKey, "")
	return dbPath
}

// seedRuns archives one finished run and leaves one active.
func seedRuns(t *testing.T, dbPath string) *models.ProgramRun {
	t.Helper()
	database, err := db.New(dbPath)
	require.NoError(t, err)
	defer database.Close()

	agg := runs.New(store.New(database))
	agg.BeginRun(config.DefaultProgram, &models.ProfileSnapshot{Weight: "60"})
	agg.BeginLesson("lesson-1")
	agg.RecordSimilarity("lesson-1", 70, true)
	agg.RecordSimilarity("lesson-1", 90, true)
	agg.RecordHeartRate("lesson-1", 100)
	agg.SetLessonElapsed("lesson-1", 61)
	agg.SetLessonCalories("lesson-1", 3.4)
	agg.FinishLesson("lesson-1")
	finished := agg.FinishProgram()
	require.NotNil(t, finished)

	agg.BeginRun(config.DefaultProgram, nil)
	agg.BeginLesson("lesson-1")
	agg.Flush()
	return finished
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRunsCommand(t *testing.T) {
	dbPath := setupEnv(t)

	out, err := execute(t, "runs")
	require.NoError(t, err)
	assert.Contains(t, out, "No completed practice yet.")

	finished := seedRuns(t, dbPath)

	out, err = execute(t, "runs")
	require.NoError(t, err)
	assert.Contains(t, out, finished.RunID)
	assert.Contains(t, out, "80.0%")
	assert.Contains(t, out, "1:01")
}

func TestSummaryCommandJSON(t *testing.T) {
	dbPath := setupEnv(t)
	finished := seedRuns(t, dbPath)

	out, err := execute(t, "summary", "--json", "--run", finished.RunID)
	require.NoError(t, err)

	var data models.SummaryData
	require.NoError(t, json.Unmarshal([]byte(out), &data))
	assert.Equal(t, "1:01", data.Duration)
	assert.Equal(t, 3, data.Calories)
	assert.InDelta(t, 80.0, data.AvgSimilarity, 0.001)
	assert.Equal(t, 90, data.MaxSimilarity)
	require.Len(t, data.Poses, 1)
	assert.Equal(t, "Lesson 1", data.Poses[0].Name)
}

func TestSummaryCommandText(t *testing.T) {
	dbPath := setupEnv(t)
	finished := seedRuns(t, dbPath)

	out, err := execute(t, "summary")
	require.NoError(t, err)
	assert.Contains(t, out, finished.RunID)
	assert.Contains(t, out, "Lesson 1")
}

func TestSummaryCommandUnknownRun(t *testing.T) {
	setupEnv(t)

	_, err := execute(t, "summary", "--run", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestSummaryCommandCoachNotConfigured(t *testing.T) {
	dbPath := setupEnv(t)
	seedRuns(t, dbPath)

	_, err := execute(t, "summary", "--coach")
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.EnvCoachAPIKey)
}

func TestResetCommand(t *testing.T) {
	dbPath := setupEnv(t)
	seedRuns(t, dbPath)

	out, err := execute(t, "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "Discarded run")

	out, err = execute(t, "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "No practice in progress.")
}

func TestOneShotCommandsLogToFile(t *testing.T) {
	dbPath := setupEnv(t)
	seedRuns(t, dbPath)

	out, err := execute(t, "reset")
	require.NoError(t, err)
	assert.NotContains(t, out, "active run reset")

	logged, err := os.ReadFile(filepath.Join(filepath.Dir(dbPath), "ycoach.log"))
	require.NoError(t, err)
	assert.Contains(t, string(logged), "active run reset")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "ycoach")
}
