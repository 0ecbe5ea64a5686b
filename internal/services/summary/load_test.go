package summary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-veylop/yoga-coach-tui/internal/models"
)

type fakeSource struct {
	archived []models.ProgramRun
	active   *models.ProgramRun
}

func (f *fakeSource) Run(_ string, runID string) *models.ProgramRun {
	for i := range f.archived {
		if f.archived[i].RunID == runID {
			return &f.archived[i]
		}
	}
	return nil
}

func (f *fakeSource) MostRecentCompletedRun(string) *models.ProgramRun {
	if len(f.archived) == 0 {
		return nil
	}
	return &f.archived[len(f.archived)-1]
}

func (f *fakeSource) Peek(string) *models.ProgramRun {
	return f.active
}

func TestLoad(t *testing.T) {
	src := &fakeSource{
		archived: []models.ProgramRun{
			{RunID: "old", Lessons: []models.LessonStats{lesson("a", 10, 0, acc(), acc())}},
			{RunID: "new", Lessons: []models.LessonStats{lesson("a", 20, 0, acc(), acc())}},
		},
		active: &models.ProgramRun{RunID: "live", Lessons: []models.LessonStats{lesson("a", 5, 0, acc(), acc())}},
	}
	order := []string{"a"}

	tests := []struct {
		name    string
		runID   string
		wantID  string
		elapsed int
	}{
		{"most recent by default", "", "new", 20},
		{"explicit archived", "old", "old", 10},
		{"active run by id", "live", "live", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := Load(src, "yoga_5min", tt.runID, order)
			require.NotNil(t, view)
			assert.Equal(t, tt.wantID, view.Run.RunID)
			assert.Equal(t, tt.elapsed, view.Totals.TotalTimeSec)
		})
	}
}

func TestLoad_NotFound(t *testing.T) {
	assert.Nil(t, Load(&fakeSource{}, "yoga_5min", "", nil))
	assert.Nil(t, Load(&fakeSource{}, "yoga_5min", "missing", nil))

	src := &fakeSource{active: &models.ProgramRun{RunID: "live"}}
	assert.Nil(t, Load(src, "yoga_5min", "other", nil))
}
