// Package models defines data structures and domain types.
package models

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// SchemaVersion marks the persisted ProgramRun layout.
const SchemaVersion = 1

// ProfileSnapshot is the user profile captured once when a run starts.
// Values are kept as entered; parsing happens where they are used.
type ProfileSnapshot struct {
	Height string `json:"height,omitempty"`
	Weight string `json:"weight,omitempty"`
	Age    string `json:"age,omitempty"`
	Gender string `json:"gender,omitempty"`
}

// WeightKg parses Weight. Trailing units such as "kg" are ignored.
func (p *ProfileSnapshot) WeightKg() (float64, bool) {
	if p == nil {
		return 0, false
	}
	s := strings.TrimSpace(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(p.Weight)), "kg"))
	s = strings.ReplaceAll(s, ",", ".")
	kg, err := strconv.ParseFloat(s, 64)
	if err != nil || kg <= 0 || math.IsInf(kg, 0) || math.IsNaN(kg) {
		return 0, false
	}
	return kg, true
}

// Clone returns a copy, or nil for nil.
func (p *ProfileSnapshot) Clone() *ProfileSnapshot {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// StatAccumulator keeps running aggregates of a sample stream.
// Count is zero exactly when Min and Max are nil.
type StatAccumulator struct {
	Sum   float64  `json:"sum"`
	Count int      `json:"count"`
	Min   *float64 `json:"min"`
	Max   *float64 `json:"max"`
}

// Add folds one sample in.
func (a *StatAccumulator) Add(v float64) {
	a.Sum += v
	a.Count++
	if a.Min == nil || v < *a.Min {
		a.Min = float64Ptr(v)
	}
	if a.Max == nil || v > *a.Max {
		a.Max = float64Ptr(v)
	}
}

// Merge folds another accumulator in.
func (a *StatAccumulator) Merge(o StatAccumulator) {
	if o.Count == 0 {
		return
	}
	a.Sum += o.Sum
	a.Count += o.Count
	if o.Min != nil && (a.Min == nil || *o.Min < *a.Min) {
		a.Min = float64Ptr(*o.Min)
	}
	if o.Max != nil && (a.Max == nil || *o.Max > *a.Max) {
		a.Max = float64Ptr(*o.Max)
	}
}

// Mean returns Sum/Count, or nil when empty.
func (a StatAccumulator) Mean() *float64 {
	if a.Count == 0 {
		return nil
	}
	return float64Ptr(a.Sum / float64(a.Count))
}

// Clone returns a copy that shares no pointers with a.
func (a StatAccumulator) Clone() StatAccumulator {
	c := StatAccumulator{Sum: a.Sum, Count: a.Count}
	if a.Min != nil {
		c.Min = float64Ptr(*a.Min)
	}
	if a.Max != nil {
		c.Max = float64Ptr(*a.Max)
	}
	return c
}

// LessonStats holds the metrics of one lesson within a run. ElapsedSec and
// Calories are absolute values, replaced on each update.
type LessonStats struct {
	StartedAt  time.Time       `json:"startedAt,omitzero"`
	FinishedAt time.Time       `json:"finishedAt,omitzero"`
	Slug       string          `json:"slug"`
	Similarity StatAccumulator `json:"similarity"`
	HeartRate  StatAccumulator `json:"heartRate"`
	Calories   float64         `json:"calories"`
	ElapsedSec int             `json:"elapsedSec"`
}

// Clone returns a deep copy.
func (l *LessonStats) Clone() LessonStats {
	c := *l
	c.Similarity = l.Similarity.Clone()
	c.HeartRate = l.HeartRate.Clone()
	return c
}

// ProgramRun is one attempt at a multi-lesson program. Lessons are kept in
// the order they were first touched, not catalog order.
type ProgramRun struct {
	StartedAt     time.Time        `json:"startedAt,omitzero"`
	FinishedAt    time.Time        `json:"finishedAt,omitzero"`
	Profile       *ProfileSnapshot `json:"profile,omitempty"`
	RunID         string           `json:"runId"`
	Program       string           `json:"program"`
	Lessons       []LessonStats    `json:"lessons"`
	SchemaVersion int              `json:"schemaVersion"`
}

// Finished reports whether the run has been completed.
func (r *ProgramRun) Finished() bool {
	return !r.FinishedAt.IsZero()
}

// Lesson returns the stats for slug, or nil.
func (r *ProgramRun) Lesson(slug string) *LessonStats {
	for i := range r.Lessons {
		if r.Lessons[i].Slug == slug {
			return &r.Lessons[i]
		}
	}
	return nil
}

// Clone returns a deep copy, or nil for nil.
func (r *ProgramRun) Clone() *ProgramRun {
	if r == nil {
		return nil
	}
	c := *r
	c.Profile = r.Profile.Clone()
	c.Lessons = make([]LessonStats, len(r.Lessons))
	for i := range r.Lessons {
		c.Lessons[i] = r.Lessons[i].Clone()
	}
	return &c
}

func float64Ptr(v float64) *float64 {
	return &v
}
