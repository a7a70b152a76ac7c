package analyze

import (
	"time"

	"github.com/Alias1177/StudioPredictor/models"
)

// OutcomeLog is the ordered record of submitted outcomes. Apart from Record,
// the only mutations are dropping the newest entry and clearing everything.
type OutcomeLog struct {
	entries []models.HistoryEntry
}

// Record appends outcome stamped with now and returns the timestamp used
func (l *OutcomeLog) Record(outcome models.Outcome, now time.Time) string {
	ts := models.FormatTimestamp(now)
	l.entries = append(l.entries, models.HistoryEntry{Time: ts, Outcome: outcome})
	return ts
}

// Undo removes the newest entry. It reports false on an empty log.
func (l *OutcomeLog) Undo() (models.HistoryEntry, bool) {
	if len(l.entries) == 0 {
		return models.HistoryEntry{}, false
	}
	last := l.entries[len(l.entries)-1]
	l.entries = l.entries[:len(l.entries)-1]
	return last, true
}

func (l *OutcomeLog) Clear() {
	l.entries = []models.HistoryEntry{}
}

func (l *OutcomeLog) Len() int {
	return len(l.entries)
}

// Entries exposes the log oldest first. Callers must not modify the slice.
func (l *OutcomeLog) Entries() []models.HistoryEntry {
	return l.entries
}

// Newest returns up to limit outcomes, most recent first.
func (l *OutcomeLog) Newest(limit int) []models.Outcome {
	n := len(l.entries)
	if limit > n {
		limit = n
	}
	out := make([]models.Outcome, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, l.entries[i].Outcome)
	}
	return out
}
