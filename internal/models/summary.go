package models

// PoseSummary is one per-lesson entry of a SummaryData.
type PoseSummary struct {
	Name          string  `json:"name"`
	Duration      string  `json:"duration"`
	Calories      int     `json:"calories"`
	AvgSimilarity float64 `json:"avg_similarity"`
	AvgHeartRate  float64 `json:"avg_hr"`
}

// SummaryData is the flattened run summary handed to the coach prompt.
// Averages keep their one-decimal precision; missing values are 0.
type SummaryData struct {
	Duration      string        `json:"duration"`
	Poses         []PoseSummary `json:"poses"`
	Calories      int           `json:"calories"`
	AvgSimilarity float64       `json:"avg_similarity"`
	MaxSimilarity int           `json:"max_similarity"`
	AvgHeartRate  float64       `json:"avg_hr"`
}
