package summary

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-veylop/yoga-coach-tui/internal/models"
	"github.com/j-veylop/yoga-coach-tui/internal/services/runs"
	"github.com/j-veylop/yoga-coach-tui/internal/store"
	"github.com/j-veylop/yoga-coach-tui/internal/store/storetest"
)

func acc(samples ...float64) models.StatAccumulator {
	var a models.StatAccumulator
	for _, s := range samples {
		a.Add(s)
	}
	return a
}

func lesson(slug string, elapsed int, calories float64, sim, hr models.StatAccumulator) models.LessonStats {
	return models.LessonStats{Slug: slug, ElapsedSec: elapsed, Calories: calories, Similarity: sim, HeartRate: hr}
}

func TestComputeDerived_OrdersAndDropsUnknown(t *testing.T) {
	run := &models.ProgramRun{Lessons: []models.LessonStats{
		lesson("c", 30, 1, acc(), acc()),
		lesson("stale", 99, 9, acc(10), acc(100)),
		lesson("a", 10, 2, acc(), acc()),
	}}

	d := ComputeDerived(run, []string{"a", "b", "c"})

	require.Len(t, d.OrderedLessons, 2)
	assert.Equal(t, "a", d.OrderedLessons[0].Slug)
	assert.Equal(t, "c", d.OrderedLessons[1].Slug)
	assert.Equal(t, 40, d.Totals.TotalTimeSec)
	assert.Equal(t, 3.0, d.Totals.TotalCalories)
	assert.Equal(t, []string{"a", "c"}, []string{d.PerLesson[0].Slug, d.PerLesson[1].Slug})

	assert.Equal(t, "stale", run.Lessons[1].Slug, "input run is not modified")
}

func TestComputeDerived_NullSafety(t *testing.T) {
	run := &models.ProgramRun{Lessons: []models.LessonStats{
		lesson("a", 10, 1, acc(), acc()),
		lesson("b", 20, 2, acc(), acc()),
	}}

	d := ComputeDerived(run, []string{"a", "b"})

	assert.Nil(t, d.Totals.AvgSim)
	assert.Nil(t, d.Totals.MinSim)
	assert.Nil(t, d.Totals.MaxSim)
	assert.Nil(t, d.Totals.AvgHR)
	for _, row := range d.PerLesson {
		assert.Nil(t, row.AvgSim)
		assert.Nil(t, row.MinSim)
		assert.Nil(t, row.MaxSim)
		assert.Nil(t, row.AvgHR)
	}
	assert.Equal(t, []models.SeriesPoint{{Slug: "a"}, {Slug: "b"}}, d.Charts.SimilaritySeries)
	assert.Equal(t, []models.SeriesPoint{{Slug: "a"}, {Slug: "b"}}, d.Charts.HeartRateSeries)
}

func TestComputeDerived_CombinedMeans(t *testing.T) {
	run := &models.ProgramRun{Lessons: []models.LessonStats{
		lesson("a", 60, 2.5, acc(70, 80), acc(100, 101, 102)),
		lesson("b", 30, 1.25, acc(91), acc()),
	}}

	d := ComputeDerived(run, []string{"a", "b"})

	// (70+80+91)/3 = 80.333..
	require.NotNil(t, d.Totals.AvgSim)
	assert.Equal(t, 80.3, *d.Totals.AvgSim)
	assert.Equal(t, 70.0, *d.Totals.MinSim)
	assert.Equal(t, 91.0, *d.Totals.MaxSim)
	assert.Equal(t, 101.0, *d.Totals.AvgHR)
	assert.InDelta(t, 3.75, d.Totals.TotalCalories, 1e-9)

	assert.Equal(t, 75.0, *d.PerLesson[0].AvgSim)
	assert.Equal(t, 101.0, *d.PerLesson[0].AvgHR)
	assert.Nil(t, d.PerLesson[1].AvgHR)
	assert.Equal(t, []models.SeriesPoint{{Slug: "a", Value: 101}, {Slug: "b", Value: 0}}, d.Charts.HeartRateSeries)
	assert.Equal(t, []models.SeriesPoint{{Slug: "a", Value: 75}, {Slug: "b", Value: 91}}, d.Charts.SimilaritySeries)
}

func TestComputeDerived_Deterministic(t *testing.T) {
	run := &models.ProgramRun{Lessons: []models.LessonStats{
		lesson("b", 5, 0.5, acc(33, 44), acc(60)),
		lesson("a", 7, 0.7, acc(55), acc(70, 71)),
	}}
	order := []string{"a", "b"}

	assert.Equal(t, ComputeDerived(run, order), ComputeDerived(run, order))
}

func TestComputeDerived_NilRun(t *testing.T) {
	d := ComputeDerived(nil, []string{"a"})
	assert.Empty(t, d.PerLesson)
	assert.Nil(t, d.Totals.AvgSim)
	assert.NotNil(t, d.Charts.SimilaritySeries)
}

func TestRoundTenth(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{76.5, 76.5},
		{80.333333, 80.3},
		{80.36, 80.4},
		{99.96, 100},
		{0, 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, RoundTenth(tt.in), 1e-9, "RoundTenth(%v)", tt.in)
	}
}

func TestEndToEndScenario(t *testing.T) {
	clock := storetest.NewFakeClock(time.Date(2025, 9, 19, 10, 0, 0, 0, time.UTC))
	agg := runs.New(store.New(store.NewMemoryBackend()), runs.WithClock(clock))

	agg.BeginRun("yoga_5min", nil)
	agg.BeginLesson("lesson-1")
	agg.RecordSimilarity("lesson-1", 72, true)
	agg.RecordSimilarity("lesson-1", 81, true)
	agg.SetLessonElapsed("lesson-1", 42)
	agg.FinishLesson("lesson-1")
	archived := agg.FinishProgram()
	require.NotNil(t, archived)

	view := Load(agg, "yoga_5min", archived.RunID, []string{"lesson-1"})
	require.NotNil(t, view)
	require.Len(t, view.PerLesson, 1)

	row := view.PerLesson[0]
	assert.Equal(t, "lesson-1", row.Slug)
	assert.Equal(t, 42, row.ElapsedSec)
	require.NotNil(t, row.AvgSim)
	assert.Equal(t, 76.5, *row.AvgSim)
	assert.Equal(t, 72.0, *row.MinSim)
	assert.Equal(t, 81.0, *row.MaxSim)
	assert.Nil(t, row.AvgHR)
	require.NotNil(t, view.Totals.AvgSim)
	assert.Equal(t, 76.5, *view.Totals.AvgSim)
}
