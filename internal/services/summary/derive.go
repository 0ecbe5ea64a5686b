// Package summary turns stored program runs into display-ready statistics.
package summary

import (
	"math"

	"github.com/j-veylop/yoga-coach-tui/internal/models"
)

// ComputeDerived orders run's lessons by order, dropping slugs order does not
// name, and aggregates them. It does not modify run.
func ComputeDerived(run *models.ProgramRun, order []string) models.Derived {
	d := models.Derived{
		OrderedLessons: []models.LessonStats{},
		PerLesson:      []models.LessonSummary{},
		Charts: models.Charts{
			SimilaritySeries: []models.SeriesPoint{},
			HeartRateSeries:  []models.SeriesPoint{},
		},
	}
	if run == nil {
		return d
	}

	bySlug := make(map[string]*models.LessonStats, len(run.Lessons))
	for i := range run.Lessons {
		bySlug[run.Lessons[i].Slug] = &run.Lessons[i]
	}

	var sim, hr models.StatAccumulator
	for _, slug := range order {
		l, ok := bySlug[slug]
		if !ok {
			continue
		}
		d.OrderedLessons = append(d.OrderedLessons, l.Clone())

		d.Totals.TotalTimeSec += l.ElapsedSec
		d.Totals.TotalCalories += l.Calories
		sim.Merge(l.Similarity)
		hr.Merge(l.HeartRate)

		row := models.LessonSummary{
			Slug:       l.Slug,
			ElapsedSec: l.ElapsedSec,
			Calories:   l.Calories,
			AvgSim:     roundedMean(l.Similarity),
			MinSim:     copyPtr(l.Similarity.Min),
			MaxSim:     copyPtr(l.Similarity.Max),
			AvgHR:      roundedMean(l.HeartRate),
		}
		d.PerLesson = append(d.PerLesson, row)
		d.Charts.SimilaritySeries = append(d.Charts.SimilaritySeries, models.SeriesPoint{Slug: slug, Value: valueOrZero(row.AvgSim)})
		d.Charts.HeartRateSeries = append(d.Charts.HeartRateSeries, models.SeriesPoint{Slug: slug, Value: valueOrZero(row.AvgHR)})
	}

	d.Totals.AvgSim = roundedMean(sim)
	d.Totals.MinSim = sim.Min
	d.Totals.MaxSim = sim.Max
	d.Totals.AvgHR = roundedMean(hr)
	return d
}

// RoundTenth rounds v to one decimal place.
func RoundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

func roundedMean(a models.StatAccumulator) *float64 {
	m := a.Mean()
	if m == nil {
		return nil
	}
	r := RoundTenth(*m)
	return &r
}

func copyPtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func valueOrZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
