package baktest

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/Alias1177/StudioPredictor/internal/analyze"
	"github.com/Alias1177/StudioPredictor/internal/storage"
	"github.com/Alias1177/StudioPredictor/models"
)

// RunBacktest replays outcomes, oldest first, through a fresh in-memory engine
// and collects every prediction the engine verified along the way.
func RunBacktest(ctx context.Context, outcomes []models.Outcome) (*models.BacktestResults, error) {
	clock := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	engine, err := analyze.Open(ctx, storage.NewMemoryStore(nil),
		analyze.WithLogger(zerolog.Nop()),
		analyze.WithClock(func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("opening replay engine: %w", err)
	}

	results := &models.BacktestResults{
		Outcomes:           len(outcomes),
		PatternPerformance: make(map[int]*models.PatternStats),
		DetailedResults:    []models.PredictionResult{},
	}

	var (
		open              *models.Prediction
		openIndex         int
		consecutiveHits   int
		consecutiveMisses int
	)

	for i, outcome := range outcomes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ev, err := engine.Submit(ctx, outcome)
		if err != nil {
			return nil, fmt.Errorf("outcome %d: %w", i, err)
		}

		if ev.Resolution != models.Pending && open != nil {
			wasCorrect := ev.Resolution == models.Hit
			results.DetailedResults = append(results.DetailedResults, models.PredictionResult{
				Index:      openIndex,
				Pattern:    open.Pattern,
				Prediction: open.Outcome,
				Actual:     outcome,
				WasCorrect: wasCorrect,
			})

			stats, ok := results.PatternPerformance[open.Pattern]
			if !ok {
				stats = &models.PatternStats{}
				results.PatternPerformance[open.Pattern] = stats
			}
			stats.Total++

			if wasCorrect {
				stats.Hits++
				consecutiveHits++
				consecutiveMisses = 0
			} else {
				consecutiveMisses++
				consecutiveHits = 0
			}

			if consecutiveHits > results.MaxConsecutive.Hits {
				results.MaxConsecutive.Hits = consecutiveHits
			}
			if consecutiveMisses > results.MaxConsecutive.Misses {
				results.MaxConsecutive.Misses = consecutiveMisses
			}
		}

		open, openIndex = ev.Prediction, i
	}

	perf := engine.Performance()
	results.Total = perf.Total
	results.Hits = perf.Hits
	results.Misses = perf.Misses
	results.HitPercentage = perf.Accuracy()
	results.Unresolved = open != nil

	for _, stats := range results.PatternPerformance {
		if stats.Total > 0 {
			stats.HitPercentage = float64(stats.Hits) / float64(stats.Total) * 100
		}
	}

	return results, nil
}

// ParseSequence reads outcomes from text such as "HAHT", "H A T" or
// "home,away,draw". Letters may be run together; words must be separated.
func ParseSequence(s string) ([]models.Outcome, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == ';' || r == '-'
	})

	var outcomes []models.Outcome
	for _, field := range fields {
		if o, err := models.ParseOutcome(field); err == nil {
			outcomes = append(outcomes, o)
			continue
		}
		for _, r := range field {
			o, err := models.ParseOutcome(string(r))
			if err != nil {
				return nil, fmt.Errorf("parsing %q: %w", field, err)
			}
			outcomes = append(outcomes, o)
		}
	}
	return outcomes, nil
}
