package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatAccumulator(t *testing.T) {
	var a StatAccumulator
	assert.Nil(t, a.Mean(), "empty accumulator has no mean")

	for _, v := range []float64{70, 90, 80} {
		a.Add(v)
	}
	assert.Equal(t, 3, a.Count)
	assert.Equal(t, 240.0, a.Sum)
	require.NotNil(t, a.Min)
	require.NotNil(t, a.Max)
	assert.Equal(t, 70.0, *a.Min)
	assert.Equal(t, 90.0, *a.Max)
	assert.Equal(t, 80.0, *a.Mean())

	var b StatAccumulator
	b.Add(50)
	a.Merge(b)
	a.Merge(StatAccumulator{})
	assert.Equal(t, 4, a.Count)
	assert.Equal(t, 50.0, *a.Min)
	assert.Equal(t, 90.0, *a.Max)
}

func TestStatAccumulatorClone(t *testing.T) {
	var a StatAccumulator
	a.Add(10)

	c := a.Clone()
	*c.Min = 99
	assert.Equal(t, 10.0, *a.Min, "clone shares Min with the original")
}

func TestProfileSnapshotWeightKg(t *testing.T) {
	tests := []struct {
		weight string
		want   float64
		ok     bool
	}{
		{"62", 62, true},
		{" 62.5 kg ", 62.5, true},
		{"70,5", 70.5, true},
		{"", 0, false},
		{"heavy", 0, false},
		{"-3", 0, false},
	}
	for _, tt := range tests {
		p := &ProfileSnapshot{Weight: tt.weight}
		got, ok := p.WeightKg()
		assert.Equal(t, tt.ok, ok, "WeightKg(%q)", tt.weight)
		assert.Equal(t, tt.want, got, "WeightKg(%q)", tt.weight)
	}

	var nilProfile *ProfileSnapshot
	_, ok := nilProfile.WeightKg()
	assert.False(t, ok, "nil profile has no weight")
}

func TestProgramRunClone(t *testing.T) {
	run := &ProgramRun{
		RunID:     "p-1-abc",
		StartedAt: time.Now(),
		Profile:   &ProfileSnapshot{Age: "40"},
		Lessons:   []LessonStats{{Slug: "lesson-1"}},
	}
	run.Lessons[0].Similarity.Add(60)

	c := run.Clone()
	c.Profile.Age = "41"
	c.Lessons[0].Slug = "changed"
	*c.Lessons[0].Similarity.Max = 1

	assert.Equal(t, "40", run.Profile.Age)
	assert.Equal(t, "lesson-1", run.Lessons[0].Slug)
	assert.Equal(t, 60.0, *run.Lessons[0].Similarity.Max)
	assert.Nil(t, (*ProgramRun)(nil).Clone())
}

func TestProgramRunLesson(t *testing.T) {
	run := &ProgramRun{Lessons: []LessonStats{{Slug: "a"}, {Slug: "b"}}}

	l := run.Lesson("b")
	require.NotNil(t, l)
	assert.Equal(t, "b", l.Slug)
	assert.Nil(t, run.Lesson("c"))
	assert.False(t, run.Finished())
}

func TestProgramOrder(t *testing.T) {
	p := Program{Lessons: []Lesson{{Slug: "x"}, {Slug: "y", Title: "Why"}}}

	assert.Equal(t, []string{"x", "y"}, p.Order())
	assert.Equal(t, "x", p.Lessons[0].DisplayTitle(), "title falls back to the slug")
	assert.Equal(t, "Why", p.Lessons[1].DisplayTitle())
	assert.Equal(t, 90*time.Second, Lesson{DurationSec: 90}.Duration())
}
