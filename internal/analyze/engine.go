package analyze

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/StudioPredictor/internal/patterns"
	"github.com/Alias1177/StudioPredictor/internal/storage"
	"github.com/Alias1177/StudioPredictor/models"
)

// Default view sizes used by the front ends
const (
	DefaultHistoryLimit = 72
	DefaultSignalLimit  = 5
)

// Recorder receives engine activity, typically for metrics.
type Recorder interface {
	ObserveSubmit(ev models.PredictionEvent)
	ObserveUndo()
	ObservePerformance(p models.Performance)
}

// Engine tracks one session: its outcome log, the prediction signals and the
// hit/miss counters. It is not safe for concurrent use; every call runs to
// completion before the next one.
type Engine struct {
	store    models.SnapshotStore
	outcomes OutcomeLog
	signals  []models.Signal
	perf     models.Performance
	now      func() time.Time
	logger   zerolog.Logger
	recorder Recorder

	loadWarning error
}

type Option func(*Engine)

// WithClock overrides the wall clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		e.recorder = r
	}
}

// Open loads the session state from store. A missing snapshot starts empty and
// is written out immediately. A corrupt snapshot is discarded the same way and
// the reason is kept in LoadWarning. Only store failures are returned.
func Open(ctx context.Context, store models.SnapshotStore, opts ...Option) (*Engine, error) {
	e := &Engine{
		store:  store,
		now:    time.Now,
		logger: log.With().Str("component", "engine").Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}

	snap, err := store.Load(ctx)
	switch {
	case err == nil:
		e.restore(snap)
		e.observePerformance()
		return e, nil
	case errors.Is(err, storage.ErrNotFound):
		e.logger.Info().Msg("No saved state, starting empty")
	case errors.Is(err, storage.ErrCorrupt):
		e.loadWarning = err
		e.logger.Warn().Err(err).Msg("Saved state is corrupted, resetting history")
	default:
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}

	e.reset()
	if err := e.persist(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

// LoadWarning returns why the saved state was discarded on Open, or nil.
func (e *Engine) LoadWarning() error {
	return e.loadWarning
}

// Submit records a new outcome, verifies the pending prediction against it,
// runs the pattern table and saves. The returned event is valid even when
// saving fails; the error then only reports that the snapshot is stale.
func (e *Engine) Submit(ctx context.Context, outcome models.Outcome) (models.PredictionEvent, error) {
	if !outcome.Valid() {
		return models.PredictionEvent{}, fmt.Errorf("%w: %q", models.ErrInvalidOutcome, outcome)
	}

	ts := e.outcomes.Record(outcome, e.now())
	ev := models.PredictionEvent{
		Timestamp:  ts,
		Outcome:    outcome,
		Resolution: e.resolve(outcome),
	}

	if p, ok := patterns.DetectHistory(e.outcomes.Entries()); ok {
		e.signals = append(e.signals, models.Signal{
			Time:       ts,
			Pattern:    p.Pattern,
			Prediction: p.Outcome,
		})
		ev.Prediction = &p
	}

	logEvent := e.logger.Debug().
		Str("time", ts).
		Str("outcome", string(outcome)).
		Str("resolution", ev.Resolution.String())
	if ev.Prediction != nil {
		logEvent = logEvent.Int("pattern", ev.Prediction.Pattern).Str("prediction", string(ev.Prediction.Outcome))
	}
	logEvent.Msg("Outcome submitted")

	if e.recorder != nil {
		e.recorder.ObserveSubmit(ev)
	}
	e.observePerformance()

	return ev, e.persist(ctx)
}

// resolve settles the newest pending signal against outcome.
func (e *Engine) resolve(outcome models.Outcome) models.Verdict {
	for i := len(e.signals) - 1; i >= 0; i-- {
		sig := &e.signals[i]
		if sig.Resolved() {
			continue
		}
		if sig.Prediction == outcome {
			sig.Correct = models.Hit
			e.perf.Hits++
		} else {
			sig.Correct = models.Miss
			e.perf.Misses++
		}
		e.perf.Total++
		return sig.Correct
	}
	return models.Pending
}

// Undo reverses the most recent Submit: the newest outcome goes away together
// with the signal it produced, and the signal it settled is reopened with its
// counter contribution taken back. It reports false when there is nothing to undo.
func (e *Engine) Undo(ctx context.Context) (bool, error) {
	removed, ok := e.outcomes.Undo()
	if !ok {
		return false, nil
	}

	dropped := false
	if n := len(e.signals); n > 0 && e.signals[n-1].Time == removed.Time && !e.signals[n-1].Resolved() {
		e.signals = e.signals[:n-1]
		dropped = true
	}

	if n := len(e.signals); n > 0 {
		last := &e.signals[n-1]
		entries := e.outcomes.Entries()
		withRemoved := append(entries[:len(entries):len(entries)], removed)
		switch {
		case last.Resolved() && producedBy(entries, *last):
			e.reverse(last.Correct)
			last.Correct = models.Pending
		case !dropped && last.Time == removed.Time && producedBy(withRemoved, *last):
			// A settled signal stamped by the removed entry itself, as older files can hold.
			e.reverse(last.Correct)
			e.signals = e.signals[:n-1]
		}
	}

	e.logger.Debug().Str("time", removed.Time).Str("outcome", string(removed.Outcome)).Msg("Outcome undone")
	if e.recorder != nil {
		e.recorder.ObserveUndo()
	}
	e.observePerformance()

	return true, e.persist(ctx)
}

// producedBy reports whether sig is the signal the newest entry of history
// generated when it was submitted.
func producedBy(history []models.HistoryEntry, sig models.Signal) bool {
	if len(history) == 0 || history[len(history)-1].Time != sig.Time {
		return false
	}
	p, ok := patterns.DetectHistory(history)
	return ok && p.Pattern == sig.Pattern && p.Outcome == sig.Prediction
}

// reverse takes back one resolution, never going below zero.
func (e *Engine) reverse(v models.Verdict) {
	switch v {
	case models.Hit:
		e.perf.Hits = max(0, e.perf.Hits-1)
	case models.Miss:
		e.perf.Misses = max(0, e.perf.Misses-1)
	default:
		return
	}
	e.perf.Total = max(0, e.perf.Total-1)
}

// Clear drops history, signals and counters.
func (e *Engine) Clear(ctx context.Context) error {
	e.reset()
	e.logger.Info().Msg("History cleared")
	e.observePerformance()
	return e.persist(ctx)
}

// CurrentPrediction reports what the table suggests for the next outcome
// without recording a signal.
func (e *Engine) CurrentPrediction() (models.Prediction, bool) {
	return patterns.DetectHistory(e.outcomes.Entries())
}

// HistoryView returns up to limit outcomes, newest first.
func (e *Engine) HistoryView(limit int) []models.Outcome {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return e.outcomes.Newest(limit)
}

// RecentSignals returns up to limit signals, newest first.
func (e *Engine) RecentSignals(limit int) []models.Signal {
	if limit <= 0 {
		limit = DefaultSignalLimit
	}
	n := len(e.signals)
	if limit > n {
		limit = n
	}
	out := make([]models.Signal, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, e.signals[i])
	}
	return out
}

func (e *Engine) Accuracy() float64 {
	return e.perf.Accuracy()
}

func (e *Engine) Performance() models.Performance {
	return e.perf
}

// HistoryLen is the number of recorded outcomes
func (e *Engine) HistoryLen() int {
	return e.outcomes.Len()
}

// Snapshot returns a copy of the full state.
func (e *Engine) Snapshot() *models.Snapshot {
	snap := &models.Snapshot{
		History:     e.outcomes.Entries(),
		Signals:     e.signals,
		Performance: e.perf,
	}
	return snap.Clone()
}

func (e *Engine) restore(snap *models.Snapshot) {
	snap = snap.Clone()
	e.outcomes = OutcomeLog{entries: snap.History}
	e.signals = snap.Signals
	e.perf = snap.Performance

	if sum := e.perf.Hits + e.perf.Misses; e.perf.Total != sum {
		e.logger.Warn().
			Int("total", e.perf.Total).
			Int("hits", e.perf.Hits).
			Int("misses", e.perf.Misses).
			Msg("Performance total out of sync, recomputing")
		e.perf.Total = sum
	}

	e.logger.Info().
		Int("history", len(snap.History)).
		Int("signals", len(snap.Signals)).
		Int("total", e.perf.Total).
		Msg("State restored")
}

func (e *Engine) reset() {
	e.outcomes.Clear()
	e.signals = []models.Signal{}
	e.perf = models.Performance{}
}

func (e *Engine) persist(ctx context.Context) error {
	if err := e.store.Save(ctx, e.Snapshot()); err != nil {
		e.logger.Error().Err(err).Msg("Failed to save state")
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

func (e *Engine) observePerformance() {
	if e.recorder != nil {
		e.recorder.ObservePerformance(e.perf)
	}
}
