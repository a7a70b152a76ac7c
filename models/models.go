package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidOutcome is returned for anything outside Home/Away/Tie.
var ErrInvalidOutcome = errors.New("invalid outcome")

// Outcome is the result of one game round
type Outcome string

const (
	Home Outcome = "H"
	Away Outcome = "A"
	Tie  Outcome = "T"
)

// Valid reports whether o is one of the three recorded values.
func (o Outcome) Valid() bool {
	return o == Home || o == Away || o == Tie
}

func (o Outcome) String() string {
	switch o {
	case Home:
		return "HOME"
	case Away:
		return "AWAY"
	case Tie:
		return "TIE"
	default:
		return "UNKNOWN"
	}
}

// ParseOutcome accepts the persisted letters as well as the spelled-out names
func ParseOutcome(s string) (Outcome, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "h", "home":
		return Home, nil
	case "a", "away":
		return Away, nil
	case "t", "tie", "draw", "d":
		return Tie, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidOutcome, s)
}

func (o *Outcome) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v := Outcome(s)
	if !v.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidOutcome, s)
	}
	*o = v
	return nil
}

// HistoryEntry is one recorded outcome, stored on disk as ["HH:MM:SS", "H"]
type HistoryEntry struct {
	Time    string
	Outcome Outcome
}

func (e HistoryEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{e.Time, string(e.Outcome)})
}

func (e *HistoryEntry) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("history entry: expected 2 elements, got %d", len(pair))
	}
	var ts string
	if err := json.Unmarshal(pair[0], &ts); err != nil {
		return fmt.Errorf("history entry time: %w", err)
	}
	var outcome Outcome
	if err := json.Unmarshal(pair[1], &outcome); err != nil {
		return fmt.Errorf("history entry outcome: %w", err)
	}
	e.Time = ts
	e.Outcome = outcome
	return nil
}

// Verdict is the resolution state of a Signal
type Verdict int

const (
	Pending Verdict = iota
	Hit
	Miss
)

func (v Verdict) String() string {
	switch v {
	case Hit:
		return "hit"
	case Miss:
		return "miss"
	default:
		return "pending"
	}
}

// Symbol returns the mark shown next to a resolved signal.
func (v Verdict) Symbol() string {
	switch v {
	case Hit:
		return "✅"
	case Miss:
		return "❌"
	default:
		return ""
	}
}

func (v Verdict) MarshalJSON() ([]byte, error) {
	if v == Pending {
		return []byte("null"), nil
	}
	return json.Marshal(v.String())
}

// UnmarshalJSON also understands the check/cross marks older snapshots used.
func (v *Verdict) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*v = Pending
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "hit", "✅":
		*v = Hit
	case "miss", "❌":
		*v = Miss
	default:
		return fmt.Errorf("unknown verdict %q", s)
	}
	return nil
}

// Signal is a recorded prediction waiting for (or verified by) the next outcome
type Signal struct {
	Time       string  `json:"time"`
	Pattern    int     `json:"pattern"`
	Prediction Outcome `json:"prediction"`
	Correct    Verdict `json:"correct"`
}

// Resolved reports whether a later outcome has already verified the signal.
func (s Signal) Resolved() bool {
	return s.Correct != Pending
}

// Performance holds counters over resolved signals. Total always equals Hits+Misses.
type Performance struct {
	Total  int `json:"total"`
	Hits   int `json:"hits"`
	Misses int `json:"misses"`
}

// Accuracy returns hits/total as a percentage, 0 when nothing was resolved yet.
func (p Performance) Accuracy() float64 {
	if p.Total == 0 {
		return 0.0
	}
	return float64(p.Hits) / float64(p.Total) * 100
}

// Snapshot is the persisted engine state
type Snapshot struct {
	History     []HistoryEntry `json:"history"`
	Signals     []Signal       `json:"signals"`
	Performance Performance    `json:"performance"`
}

// EmptySnapshot returns a zeroed snapshot with non-nil slices so it encodes as [].
func EmptySnapshot() *Snapshot {
	return &Snapshot{
		History: []HistoryEntry{},
		Signals: []Signal{},
	}
}

// Clone returns a deep copy of the snapshot
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := &Snapshot{
		History:     make([]HistoryEntry, len(s.History)),
		Signals:     make([]Signal, len(s.Signals)),
		Performance: s.Performance,
	}
	copy(out.History, s.History)
	copy(out.Signals, s.Signals)
	return out
}

// Prediction is the pattern that fired and the outcome it suggests for the next round
type Prediction struct {
	Pattern int     `json:"pattern"`
	Outcome Outcome `json:"outcome"`
}

// PredictionEvent is returned for every submitted outcome
type PredictionEvent struct {
	Timestamp  string      `json:"timestamp"`
	Outcome    Outcome     `json:"outcome"`
	Prediction *Prediction `json:"prediction,omitempty"` // nil when no rule fired
	Resolution Verdict     `json:"resolution"`           // Pending when no earlier signal was open
}

// Validate checks the parts of a decoded snapshot the JSON layer cannot.
func (s *Snapshot) Validate() error {
	for i, sig := range s.Signals {
		if !sig.Prediction.Valid() {
			return fmt.Errorf("signal %d: %w: %q", i, ErrInvalidOutcome, sig.Prediction)
		}
	}
	p := s.Performance
	if p.Hits < 0 || p.Misses < 0 || p.Total < 0 {
		return fmt.Errorf("negative performance counters: %+v", p)
	}
	return nil
}
