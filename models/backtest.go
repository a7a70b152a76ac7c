package models

// PredictionResult is one verified prediction from a replay
type PredictionResult struct {
	Index      int     `json:"index"` // position of the outcome that produced the prediction
	Pattern    int     `json:"pattern"`
	Prediction Outcome `json:"prediction"`
	Actual     Outcome `json:"actual"`
	WasCorrect bool    `json:"was_correct"`
}

// PatternStats aggregates replay results for one pattern id
type PatternStats struct {
	Total         int     `json:"total"`
	Hits          int     `json:"hits"`
	HitPercentage float64 `json:"hit_percentage"`
}

// BacktestResults stores the outcome of replaying a sequence through the engine
type BacktestResults struct {
	Outcomes       int     `json:"outcomes"`
	Total          int     `json:"total"`
	Hits           int     `json:"hits"`
	Misses         int     `json:"misses"`
	HitPercentage  float64 `json:"hit_percentage"`
	Unresolved     bool    `json:"unresolved"` // a prediction is still open after the last outcome
	MaxConsecutive struct {
		Hits   int `json:"hits"`
		Misses int `json:"misses"`
	} `json:"max_consecutive"`
	PatternPerformance map[int]*PatternStats `json:"pattern_performance"`
	DetailedResults    []PredictionResult    `json:"detailed_results"`
}
