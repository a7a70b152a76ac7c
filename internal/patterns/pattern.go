package patterns

import (
	"github.com/Alias1177/StudioPredictor/models"
)

const (
	H = models.Home
	A = models.Away
	T = models.Tie
)

// Rule is one entry of the priority table. Match and Predict only ever see
// histories that are at least MinLen long.
type Rule struct {
	ID          int
	MinLen      int
	Description string
	Match       func(outcomes []models.Outcome) bool
	Predict     func(outcomes []models.Outcome) models.Outcome
}

// Rules is evaluated top to bottom and the first match wins. The order is
// the tie-break policy between overlapping rules and must not change.
var Rules = []Rule{
	suffix(1, "HHHH", H, H, H, H, H),
	suffix(2, "AAAA", A, A, A, A, A),
	{
		ID:          6,
		MinLen:      6,
		Description: "serpentine",
		Match:       alternating(6),
		Predict:     last,
	},
	suffix(5, "HH-AA", H, A, A, H, H),
	suffix(5, "AA-HH", A, H, H, A, A),
	suffix(9, "H-A-A-H-A-A", A, A, A, H, A, A, H),
	suffix(10, "A-H-H-A-H-H", H, H, H, A, H, H, A),
	suffix(16, "AAA-HHH", H, H, H, H, A, A, A),
	suffix(17, "HH-T-HH", H, H, H, T, H, H),
	{
		ID:          32,
		MinLen:      3,
		Description: "triple repeat",
		Match: func(o []models.Outcome) bool {
			return at(o, 1) == at(o, 2) && at(o, 2) == at(o, 3)
		},
		Predict: last,
	},
	suffix(33, "HH-A", H, A, H, H),
	suffix(34, "AA-H", A, H, A, A),
	suffix(35, "H-A-H", A, H, A, H),
	suffix(36, "A-H-A", H, A, H, A),
	suffix(37, "T-H-T", H, T, H, T),
	suffix(38, "T-A-T", A, T, A, T),
	{
		ID:          31,
		MinLen:      2,
		Description: "alternation",
		Match:       alternating(2),
		Predict:     last,
	},
}

// Detect runs the rule table over the outcome history (oldest first) and
// returns the first rule that fires. Histories shorter than two never match.
func Detect(outcomes []models.Outcome) (models.Prediction, bool) {
	if len(outcomes) < 2 {
		return models.Prediction{}, false
	}
	for _, r := range Rules {
		if len(outcomes) < r.MinLen {
			continue
		}
		if r.Match(outcomes) {
			return models.Prediction{Pattern: r.ID, Outcome: r.Predict(outcomes)}, true
		}
	}
	return models.Prediction{}, false
}

// DetectHistory is Detect over history entries, ignoring their timestamps.
func DetectHistory(history []models.HistoryEntry) (models.Prediction, bool) {
	outcomes := make([]models.Outcome, len(history))
	for i, e := range history {
		outcomes[i] = e.Outcome
	}
	return Detect(outcomes)
}

// Describe returns the label of a pattern id, or "" for unknown ids.
// Pattern 5 has two templates sharing one id; the first label is returned.
func Describe(id int) string {
	for _, r := range Rules {
		if r.ID == id {
			return r.Description
		}
	}
	return ""
}

// at returns the i-th most recent outcome, 1-indexed.
func at(o []models.Outcome, i int) models.Outcome {
	return o[len(o)-i]
}

func last(o []models.Outcome) models.Outcome {
	return at(o, 1)
}

// suffix builds a rule matching the exact template, given most recent first.
func suffix(id int, desc string, prediction models.Outcome, recentFirst ...models.Outcome) Rule {
	return Rule{
		ID:          id,
		MinLen:      len(recentFirst),
		Description: desc,
		Match: func(o []models.Outcome) bool {
			for i, want := range recentFirst {
				if at(o, i+1) != want {
					return false
				}
			}
			return true
		},
		Predict: func([]models.Outcome) models.Outcome {
			return prediction
		},
	}
}

// alternating matches when each of the last n outcomes differs from its neighbour.
// Only exactly the last n are inspected.
func alternating(n int) func([]models.Outcome) bool {
	return func(o []models.Outcome) bool {
		for i := 1; i < n; i++ {
			if at(o, i) == at(o, i+1) {
				return false
			}
		}
		return true
	}
}
