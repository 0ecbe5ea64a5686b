package summary

import (
	"fmt"
	"math"

	"github.com/j-veylop/yoga-coach-tui/internal/models"
)

// FormatDuration renders seconds as M:SS.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// Transform flattens derived statistics into the record the coach prompt
// embeds. titleOf names each lesson; a nil titleOf or an empty title falls
// back to the slug.
func Transform(totals models.Totals, perLesson []models.LessonSummary, titleOf func(slug string) string) models.SummaryData {
	data := models.SummaryData{
		Duration:      FormatDuration(totals.TotalTimeSec),
		Calories:      int(math.Round(totals.TotalCalories)),
		AvgSimilarity: valueOrZero(totals.AvgSim),
		MaxSimilarity: int(math.Round(valueOrZero(totals.MaxSim))),
		AvgHeartRate:  valueOrZero(totals.AvgHR),
		Poses:         make([]models.PoseSummary, 0, len(perLesson)),
	}

	for _, l := range perLesson {
		name := l.Slug
		if titleOf != nil {
			if t := titleOf(l.Slug); t != "" {
				name = t
			}
		}
		data.Poses = append(data.Poses, models.PoseSummary{
			Name:          name,
			Duration:      FormatDuration(l.ElapsedSec),
			Calories:      int(math.Round(l.Calories)),
			AvgSimilarity: valueOrZero(l.AvgSim),
			AvgHeartRate:  valueOrZero(l.AvgHR),
		})
	}
	return data
}

// Summarize is Transform applied to a RunView.
func Summarize(view *models.RunView, titleOf func(slug string) string) models.SummaryData {
	if view == nil {
		return Transform(models.Totals{}, nil, titleOf)
	}
	return Transform(view.Totals, view.PerLesson, titleOf)
}
