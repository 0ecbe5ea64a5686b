package models

// Totals aggregates a run across its catalog-ordered lessons. Nil averages
// mean no samples were recorded.
type Totals struct {
	AvgSim        *float64 `json:"avgSim"`
	MinSim        *float64 `json:"minSim"`
	MaxSim        *float64 `json:"maxSim"`
	AvgHR         *float64 `json:"avgHR"`
	TotalCalories float64  `json:"totalCalories"`
	TotalTimeSec  int      `json:"totalTimeSec"`
}

// LessonSummary is the display row for one lesson.
type LessonSummary struct {
	AvgSim     *float64 `json:"avgSim"`
	MinSim     *float64 `json:"minSim"`
	MaxSim     *float64 `json:"maxSim"`
	AvgHR      *float64 `json:"avgHR"`
	Slug       string   `json:"slug"`
	Calories   float64  `json:"calories"`
	ElapsedSec int      `json:"elapsedSec"`
}

// SeriesPoint is one chart sample; missing values are charted as 0.
type SeriesPoint struct {
	Slug  string  `json:"slug"`
	Value float64 `json:"value"`
}

// Charts holds the per-lesson series for display.
type Charts struct {
	SimilaritySeries []SeriesPoint `json:"similaritySeries"`
	HeartRateSeries  []SeriesPoint `json:"heartRateSeries"`
}

// Derived is the display-ready projection of a ProgramRun.
type Derived struct {
	OrderedLessons []LessonStats   `json:"orderedLessons"`
	PerLesson      []LessonSummary `json:"perLesson"`
	Charts         Charts          `json:"charts"`
	Totals         Totals          `json:"totals"`
}

// RunView pairs a run with its derivation.
type RunView struct {
	Run *ProgramRun
	Derived
}
