package view

import (
	"fmt"
	"strings"

	"github.com/Alias1177/StudioPredictor/internal/patterns"
	"github.com/Alias1177/StudioPredictor/models"
)

const (
	gridColumns = 9
	gridRows    = 8
)

// Source is the read-only part of the engine a dashboard needs.
type Source interface {
	CurrentPrediction() (models.Prediction, bool)
	HistoryView(limit int) []models.Outcome
	RecentSignals(limit int) []models.Signal
	Performance() models.Performance
	HistoryLen() int
}

func Emoji(o models.Outcome) string {
	switch o {
	case models.Home:
		return "🔴"
	case models.Away:
		return "🔵"
	default:
		return "🟡"
	}
}

// Label is the emoji plus the upper-case name, e.g. "🔴 HOME".
func Label(o models.Outcome) string {
	return Emoji(o) + " " + o.String()
}

// PredictionCard describes the suggestion for the next round. historyLen
// tells a short history apart from one no pattern fits.
func PredictionCard(p models.Prediction, ok bool, historyLen int) string {
	if !ok {
		if historyLen < 2 {
			return "Record at least 2 results to see a suggestion for the next game."
		}
		return "No known pattern in the latest results. Keep recording to get a suggestion."
	}
	name := patterns.Describe(p.Pattern)
	return fmt.Sprintf("Suggestion based on pattern %d (%s):\n%s", p.Pattern, name, Label(p.Outcome))
}

// Metrics renders the performance counters
func Metrics(perf models.Performance) string {
	accuracy := "0%"
	if perf.Total > 0 {
		accuracy = fmt.Sprintf("%.2f%%", perf.Accuracy())
	}
	return fmt.Sprintf("Accuracy: %s | Predictions: %d | Hits: %d", accuracy, perf.Total, perf.Hits)
}

// HistoryGrid lays out outcomes (newest first) in rows of nine, at most eight rows.
func HistoryGrid(outcomes []models.Outcome) string {
	if len(outcomes) == 0 {
		return "No results recorded yet."
	}
	if limit := gridColumns * gridRows; len(outcomes) > limit {
		outcomes = outcomes[:limit]
	}

	var b strings.Builder
	for start := 0; start < len(outcomes); start += gridColumns {
		end := min(start+gridColumns, len(outcomes))
		if start > 0 {
			b.WriteByte('\n')
		}
		for i := start; i < end; i++ {
			if i > start {
				b.WriteByte(' ')
			}
			b.WriteString(Emoji(outcomes[i]))
		}
	}
	return b.String()
}

// SignalList renders signals newest first, one per line.
func SignalList(signals []models.Signal) string {
	if len(signals) == 0 {
		return "No suggestions yet. Predictions appear after 2+ games."
	}
	lines := make([]string, 0, len(signals))
	for _, s := range signals {
		line := fmt.Sprintf("%s  Pattern %d  %s", s.Time, s.Pattern, Label(s.Prediction))
		if mark := s.Correct.Symbol(); mark != "" {
			line += "  " + mark
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// Event summarizes the result of one submission.
func Event(ev models.PredictionEvent) string {
	var parts []string
	parts = append(parts, fmt.Sprintf("Recorded %s at %s.", Label(ev.Outcome), ev.Timestamp))
	if mark := ev.Resolution.Symbol(); mark != "" {
		parts = append(parts, "Previous suggestion: "+mark)
	}
	if ev.Prediction != nil {
		parts = append(parts, fmt.Sprintf("Next: %s (pattern %d)", Label(ev.Prediction.Outcome), ev.Prediction.Pattern))
	}
	return strings.Join(parts, "\n")
}

// Dashboard is the full status page: suggestion, metrics, history and recent signals.
func Dashboard(src Source, historyLimit, signalLimit int) string {
	p, ok := src.CurrentPrediction()
	sections := []string{
		PredictionCard(p, ok, src.HistoryLen()),
		Metrics(src.Performance()),
		"History (newest → oldest):\n" + HistoryGrid(src.HistoryView(historyLimit)),
		"Latest suggestions:\n" + SignalList(src.RecentSignals(signalLimit)),
	}
	return strings.Join(sections, "\n\n")
}
