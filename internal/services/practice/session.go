// Package practice drives a live lesson: it samples the camera scorer and
// heart-rate monitor and feeds elapsed time and calories to the recorder.
package practice

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/j-veylop/yoga-coach-tui/internal/logger"
	"github.com/j-veylop/yoga-coach-tui/internal/models"
	"github.com/j-veylop/yoga-coach-tui/internal/services/devices"
)

// ErrAlreadyRunning is returned by Start while a lesson is in progress.
var ErrAlreadyRunning = errors.New("a lesson is already running")

// Recorder receives lesson metrics. *runs.Aggregator implements it.
type Recorder interface {
	BeginLesson(slug string)
	RecordSimilarity(slug string, value float64, bodyFound bool)
	RecordHeartRate(slug string, hr float64)
	SetLessonElapsed(slug string, seconds float64)
	AddCaloriesIncrement(slug string, delta float64)
	FinishLesson(slug string)
}

// Scorer rates the current camera frame against a target pose.
type Scorer interface {
	Score(ctx context.Context, slug string) (devices.Score, error)
}

// HeartRateSource returns the latest heart-rate reading, or nil.
type HeartRateSource interface {
	Current(ctx context.Context) (*devices.HeartRateReading, error)
}

// Display is told when a lesson ends.
type Display interface {
	LessonNext(ctx context.Context)
}

// SampleKind identifies a live sample.
type SampleKind int

const (
	SampleElapsed SampleKind = iota
	SampleSimilarity
	SampleHeartRate
)

// Sample is a live reading forwarded to the UI.
type Sample struct {
	Slug      string
	Kind      SampleKind
	Value     float64
	Calories  float64
	Elapsed   time.Duration
	BodyFound bool
}

// Config sets the sampling cadence.
type Config struct {
	Tick               time.Duration
	SimilarityInterval time.Duration
	HeartRateInterval  time.Duration
	CaloriesPerSecond  float64
}

// Session runs one lesson at a time.
type Session struct {
	rec      Recorder
	scorer   Scorer
	hr       HeartRateSource
	display  Display
	onSample func(Sample)

	// lifecycle serializes Start and Stop.
	lifecycle sync.Mutex

	mu       sync.Mutex
	cfg      Config
	slug     string
	started  time.Time
	calories float64
	cancel   context.CancelFunc
	group    *errgroup.Group
}

// NewSession wires a session. scorer, hr and display may be nil; their
// loops are then skipped.
func NewSession(rec Recorder, scorer Scorer, hr HeartRateSource, display Display, cfg Config, onSample func(Sample)) *Session {
	if cfg.Tick <= 0 {
		cfg.Tick = time.Second
	}
	return &Session{
		rec:      rec,
		scorer:   scorer,
		hr:       hr,
		display:  display,
		cfg:      cfg,
		onSample: onSample,
	}
}

// SetCaloriesPerSecond changes the burn rate used from the next tick on.
func (s *Session) SetCaloriesPerSecond(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.CaloriesPerSecond = v
}

// Running returns the slug of the lesson in progress, or "".
func (s *Session) Running() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slug
}

// Start begins slug and its sampling loops. The loops stop when ctx ends
// or Stop is called.
func (s *Session) Start(ctx context.Context, slug string) error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.slug != "" {
		return ErrAlreadyRunning
	}

	s.rec.BeginLesson(slug)

	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)

	s.slug = slug
	s.started = time.Now()
	s.calories = 0
	s.cancel = cancel
	s.group = g

	g.Go(func() error { return s.tickLoop(gctx, slug) })
	if s.scorer != nil && s.cfg.SimilarityInterval > 0 {
		g.Go(func() error { return s.similarityLoop(gctx, slug) })
	}
	if s.hr != nil && s.cfg.HeartRateInterval > 0 {
		g.Go(func() error { return s.heartRateLoop(gctx, slug) })
	}

	logger.Info("lesson started", "slug", slug)
	return nil
}

// Stop ends the running lesson, stamps its finish time and advances the
// display. It returns the stopped slug, or "" when nothing was running.
func (s *Session) Stop() string {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	s.mu.Lock()
	slug, cancel, g := s.slug, s.cancel, s.group
	s.mu.Unlock()

	if slug == "" {
		return ""
	}

	cancel()
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("lesson loop failed", "slug", slug, "error", err)
	}

	// Record the final elapsed value so a stop between ticks is not lost.
	s.mu.Lock()
	elapsed := time.Since(s.started)
	s.slug, s.cancel, s.group = "", nil, nil
	s.mu.Unlock()

	s.rec.SetLessonElapsed(slug, elapsed.Seconds())
	s.rec.FinishLesson(slug)
	if s.display != nil {
		s.display.LessonNext(context.Background())
	}

	logger.Info("lesson stopped", "slug", slug, "elapsed", elapsed.Round(time.Second))
	return slug
}

func (s *Session) tickLoop(ctx context.Context, slug string) error {
	ticker := time.NewTicker(s.cfg.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.mu.Lock()
			elapsed := time.Since(s.started)
			delta := s.cfg.CaloriesPerSecond * s.cfg.Tick.Seconds()
			s.calories += delta
			total := s.calories
			s.mu.Unlock()

			s.rec.SetLessonElapsed(slug, elapsed.Seconds())
			s.rec.AddCaloriesIncrement(slug, delta)
			s.emit(Sample{Slug: slug, Kind: SampleElapsed, Elapsed: elapsed, Calories: total})
		}
	}
}

func (s *Session) similarityLoop(ctx context.Context, slug string) error {
	return poll(ctx, s.cfg.SimilarityInterval, func() {
		score, err := s.scorer.Score(ctx, slug)
		if err != nil {
			if ctx.Err() == nil {
				logger.Debug("similarity sample dropped", "slug", slug, "error", err)
			}
			return
		}
		s.rec.RecordSimilarity(slug, score.Percent, score.BodyFound)
		s.emit(Sample{Slug: slug, Kind: SampleSimilarity, Value: score.Percent, BodyFound: score.BodyFound})
	})
}

func (s *Session) heartRateLoop(ctx context.Context, slug string) error {
	return poll(ctx, s.cfg.HeartRateInterval, func() {
		reading, err := s.hr.Current(ctx)
		if err != nil {
			if ctx.Err() == nil {
				logger.Debug("heart rate sample dropped", "slug", slug, "error", err)
			}
			return
		}
		if reading == nil {
			return
		}
		s.rec.RecordHeartRate(slug, float64(reading.HeartRate))
		s.emit(Sample{Slug: slug, Kind: SampleHeartRate, Value: float64(reading.HeartRate)})
	})
}

// poll runs fn once right away and then every interval until ctx ends.
func poll(ctx context.Context, interval time.Duration, fn func()) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		fn()
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (s *Session) emit(sample Sample) {
	if s.onSample != nil {
		s.onSample(sample)
	}
}

// CaloriesPerSecond estimates energy use from the MET value of the activity
// and the profile's body weight. It is 0 when the weight is unknown.
func CaloriesPerSecond(profile *models.ProfileSnapshot, met float64) float64 {
	kg, ok := profile.WeightKg()
	if !ok || met <= 0 {
		return 0
	}
	return met * 3.5 * kg / 200 / 60
}
