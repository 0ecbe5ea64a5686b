// Package runs records per-lesson metrics of a program run and archives
// completed runs into a bounded history.
package runs

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/j-veylop/yoga-coach-tui/internal/logger"
	"github.com/j-veylop/yoga-coach-tui/internal/models"
	"github.com/j-veylop/yoga-coach-tui/internal/store"
)

// DefaultHistoryLimit is the number of completed runs kept per program.
const DefaultHistoryLimit = 10

const (
	minHeartRate  = 40
	maxHeartRate  = 200
	maxSimilarity = 100

	runIDTimeFormat = "2006-01-02T15:04:05.000Z"
	runIDSuffixLen  = 8
)

// ActiveKey is the store key of a program's in-progress run.
func ActiveKey(program string) string { return "pr_active_" + program }

// RunsKey is the store key of a program's archived runs, oldest first.
func RunsKey(program string) string { return "pr_runs_" + program }

// ArchiveHook is called after a run is archived with the ids of every run
// still kept for that program.
type ArchiveHook func(program string, keptRunIDs []string)

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithClock replaces the wall clock for timestamps and the write throttle.
func WithClock(c store.Clock) Option {
	return func(a *Aggregator) {
		if c != nil {
			a.clock = c
		}
	}
}

// WithThrottleWait sets the coalescing window for sample writes.
// Non-positive values keep the default.
func WithThrottleWait(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.wait = d
		}
	}
}

// WithHistoryLimit sets how many completed runs are kept per program.
func WithHistoryLimit(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.historyLimit = n
		}
	}
}

// WithArchiveHook registers fn to run after FinishProgram.
func WithArchiveHook(fn ArchiveHook) Option {
	return func(a *Aggregator) { a.onArchive = fn }
}

// Aggregator owns the active run of each program. Mutations apply to the
// run of the current program, which is set by BeginRun and ActiveRun.
// Without an active run every mutation is a no-op.
//
// Runs returned to callers are copies; the live run is never shared.
type Aggregator struct {
	store        *store.Store
	clock        store.Clock
	onArchive    ArchiveHook
	wait         time.Duration
	historyLimit int

	mu        sync.Mutex
	current   string
	active    map[string]*models.ProgramRun
	throttles map[string]*store.Throttle[*models.ProgramRun]
}

// New creates an aggregator persisting to s.
func New(s *store.Store, opts ...Option) *Aggregator {
	a := &Aggregator{
		store:        s,
		clock:        store.SystemClock{},
		wait:         store.DefaultThrottleWait,
		historyLimit: DefaultHistoryLimit,
		active:       make(map[string]*models.ProgramRun),
		throttles:    make(map[string]*store.Throttle[*models.ProgramRun]),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// BeginRun starts a fresh run for program, replacing any active one, and
// persists it immediately.
func (a *Aggregator) BeginRun(program string, profile *models.ProfileSnapshot) *models.ProgramRun {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	run := &models.ProgramRun{
		SchemaVersion: models.SchemaVersion,
		RunID:         newRunID(program, now),
		Program:       program,
		StartedAt:     now,
		Profile:       profile.Clone(),
		Lessons:       []models.LessonStats{},
	}

	a.active[program] = run
	a.current = program
	a.persistNow(run)

	logger.Info("run started", "program", program, "run_id", run.RunID)
	return run.Clone()
}

// ActiveRun returns the in-progress run for program, loading it from the
// store on first access. It also makes program the current program.
func (a *Aggregator) ActiveRun(program string) *models.ProgramRun {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.current = program
	return a.load(program).Clone()
}

// Peek returns program's active run without changing the current program.
func (a *Aggregator) Peek(program string) *models.ProgramRun {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.load(program).Clone()
}

// CurrentProgram returns the program mutations apply to.
func (a *Aggregator) CurrentProgram() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// BeginLesson makes sure slug has stats in the current run.
func (a *Aggregator) BeginLesson(slug string) {
	a.withLesson(slug, func(*models.LessonStats) {})
}

// RecordSimilarity adds a pose similarity sample to slug. Samples without a
// detected body or with a non-finite value are dropped.
func (a *Aggregator) RecordSimilarity(slug string, value float64, bodyFound bool) {
	if !bodyFound || !finite(value) {
		return
	}
	v := math.Max(0, math.Min(maxSimilarity, math.Round(value)))
	a.withLesson(slug, func(l *models.LessonStats) {
		l.Similarity.Add(v)
	})
}

// RecordHeartRate adds a heart-rate sample to slug. Readings that round to a
// value outside [40, 200] bpm are dropped.
func (a *Aggregator) RecordHeartRate(slug string, hr float64) {
	if !finite(hr) {
		return
	}
	v := math.Round(hr)
	if v < minHeartRate || v > maxHeartRate {
		return
	}
	a.withLesson(slug, func(l *models.LessonStats) {
		l.HeartRate.Add(v)
	})
}

// SetLessonElapsed replaces the elapsed seconds of slug.
func (a *Aggregator) SetLessonElapsed(slug string, seconds float64) {
	if !finite(seconds) {
		return
	}
	a.withLesson(slug, func(l *models.LessonStats) {
		l.ElapsedSec = int(math.Max(0, math.Floor(seconds)))
	})
}

// SetLessonCalories replaces the calorie total of slug.
func (a *Aggregator) SetLessonCalories(slug string, total float64) {
	if !finite(total) {
		return
	}
	a.withLesson(slug, func(l *models.LessonStats) {
		l.Calories = math.Max(0, total)
	})
}

// AddCaloriesIncrement adds delta to the calorie total of slug. Negative
// deltas count as zero.
func (a *Aggregator) AddCaloriesIncrement(slug string, delta float64) {
	if !finite(delta) {
		return
	}
	a.withLesson(slug, func(l *models.LessonStats) {
		l.Calories = math.Max(0, l.Calories+math.Max(0, delta))
	})
}

// FinishLesson stamps the finish time of slug once and persists immediately.
func (a *Aggregator) FinishLesson(slug string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	run := a.currentRun()
	if run == nil {
		return
	}
	l := run.Lesson(slug)
	if l == nil {
		return
	}
	if l.FinishedAt.IsZero() {
		l.FinishedAt = a.now()
	}
	a.persistNow(run)
}

// FinishProgram completes the current run, appends it to the program's
// history and clears the active slot. It returns the archived run, or nil
// when no run is active.
func (a *Aggregator) FinishProgram() *models.ProgramRun {
	a.mu.Lock()

	run := a.currentRun()
	if run == nil {
		a.mu.Unlock()
		return nil
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = a.now()
	}

	program := run.Program
	a.cancel(program)

	history := store.GetOr(a.store, RunsKey(program), []models.ProgramRun{})
	history = append(history, *run)
	if over := len(history) - a.historyLimit; over > 0 {
		history = history[over:]
	}
	a.store.Set(RunsKey(program), history)
	a.store.Remove(ActiveKey(program))
	delete(a.active, program)

	kept := make([]string, len(history))
	for i := range history {
		kept[i] = history[i].RunID
	}
	hook := a.onArchive
	archived := run.Clone()
	a.mu.Unlock()

	logger.Info("run archived", "program", program, "run_id", archived.RunID, "history", len(kept))
	if hook != nil {
		hook(program, kept)
	}
	return archived
}

// ResetActiveRun discards program's active run without archiving it.
func (a *Aggregator) ResetActiveRun(program string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.cancel(program)
	delete(a.active, program)
	a.store.Remove(ActiveKey(program))
	logger.Info("active run reset", "program", program)
}

// Run returns the archived run with runID, or nil.
func (a *Aggregator) Run(program, runID string) *models.ProgramRun {
	for _, r := range a.Runs(program) {
		if r.RunID == runID {
			return &r
		}
	}
	return nil
}

// MostRecentCompletedRun returns the newest archived run, or nil.
func (a *Aggregator) MostRecentCompletedRun(program string) *models.ProgramRun {
	history := a.Runs(program)
	if len(history) == 0 {
		return nil
	}
	return &history[len(history)-1]
}

// Runs returns the archived runs of program, oldest first.
func (a *Aggregator) Runs(program string) []models.ProgramRun {
	return store.GetOr(a.store, RunsKey(program), []models.ProgramRun(nil))
}

// Flush writes any pending throttled state now.
func (a *Aggregator) Flush() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, t := range a.throttles {
		t.Flush()
	}
}

// withLesson applies f to slug's stats in the current run, creating them
// if needed, and schedules a throttled write.
func (a *Aggregator) withLesson(slug string, f func(*models.LessonStats)) {
	if slug == "" {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	run := a.currentRun()
	if run == nil {
		return
	}
	f(a.ensureLesson(run, slug))
	a.throttle(run.Program).Call(run.Clone())
}

func (a *Aggregator) ensureLesson(run *models.ProgramRun, slug string) *models.LessonStats {
	if l := run.Lesson(slug); l != nil {
		if l.StartedAt.IsZero() {
			l.StartedAt = a.now()
		}
		return l
	}
	run.Lessons = append(run.Lessons, models.LessonStats{
		Slug:      slug,
		StartedAt: a.now(),
	})
	return &run.Lessons[len(run.Lessons)-1]
}

// currentRun expects a.mu held.
func (a *Aggregator) currentRun() *models.ProgramRun {
	if a.current == "" {
		return nil
	}
	return a.load(a.current)
}

// load expects a.mu held. Misses are not cached so a run written by an
// earlier session is picked up on the next access.
func (a *Aggregator) load(program string) *models.ProgramRun {
	if run, ok := a.active[program]; ok {
		return run
	}
	var run models.ProgramRun
	if !a.store.Get(ActiveKey(program), &run) || run.Program != program {
		return nil
	}
	if run.Lessons == nil {
		run.Lessons = []models.LessonStats{}
	}
	a.active[program] = &run
	logger.Debug("active run rehydrated", "program", program, "run_id", run.RunID)
	return &run
}

// persistNow writes run immediately, superseding any pending throttled write.
func (a *Aggregator) persistNow(run *models.ProgramRun) {
	a.cancel(run.Program)
	a.store.Set(ActiveKey(run.Program), run)
}

func (a *Aggregator) cancel(program string) {
	if t, ok := a.throttles[program]; ok {
		t.Cancel()
	}
}

func (a *Aggregator) throttle(program string) *store.Throttle[*models.ProgramRun] {
	t, ok := a.throttles[program]
	if !ok {
		key := ActiveKey(program)
		t = store.NewThrottle(func(run *models.ProgramRun) {
			a.store.Set(key, run)
		}, a.wait, store.WithClock(a.clock))
		a.throttles[program] = t
	}
	return t
}

func (a *Aggregator) now() time.Time {
	return a.clock.Now().UTC().Truncate(time.Millisecond)
}

// newRunID builds "{program}-{ISO-8601 ms}-{8 hex}". The suffix keeps two
// runs started in the same millisecond apart.
func newRunID(program string, at time.Time) string {
	return fmt.Sprintf("%s-%s-%s", program, at.UTC().Format(runIDTimeFormat), uuid.NewString()[:runIDSuffixLen])
}

// BelongsTo reports whether runID was minted for program. A program whose
// name extends another's with "-" does not match the shorter one.
func BelongsTo(program, runID string) bool {
	rest, ok := strings.CutPrefix(runID, program+"-")
	if !ok || len(rest) != len(runIDTimeFormat)+1+runIDSuffixLen {
		return false
	}
	stamp, suffix := rest[:len(runIDTimeFormat)], rest[len(runIDTimeFormat)+1:]
	if rest[len(runIDTimeFormat)] != '-' {
		return false
	}
	if _, err := time.Parse(runIDTimeFormat, stamp); err != nil {
		return false
	}
	for _, r := range suffix {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return false
		}
	}
	return true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
