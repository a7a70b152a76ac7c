package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/StudioPredictor/models"
)

var (
	// ErrNotFound means no snapshot has been saved yet
	ErrNotFound = errors.New("snapshot not found")
	// ErrCorrupt means a snapshot exists but cannot be decoded into valid state
	ErrCorrupt = errors.New("snapshot corrupt")
)

// FileStore keeps the snapshot as an indented JSON document on disk.
type FileStore struct {
	path   string
	logger zerolog.Logger
}

// NewFileStore creates a store for path. The parent directory is created on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path:   path,
		logger: log.With().Str("component", "file_store").Str("path", path).Logger(),
	}
}

// Path returns the snapshot file location
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(ctx context.Context) (*models.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	snap, err := Decode(data)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().Int("history", len(snap.History)).Int("signals", len(snap.Signals)).Msg("Loaded snapshot")
	return snap, nil
}

// Save replaces the whole file. No atomic rename is attempted.
func (s *FileStore) Save(ctx context.Context, snap *models.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := Encode(snap)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating snapshot dir: %w", err)
		}
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// Delete removes the snapshot file. A missing file is not an error.
func (s *FileStore) Delete(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing snapshot: %w", err)
	}
	return nil
}

// Encode renders a snapshot the way it is stored on disk.
func Encode(snap *models.Snapshot) ([]byte, error) {
	if snap == nil {
		snap = models.EmptySnapshot()
	}
	out := snap.Clone()
	if out.History == nil {
		out.History = []models.HistoryEntry{}
	}
	if out.Signals == nil {
		out.Signals = []models.Signal{}
	}
	data, err := json.MarshalIndent(out, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return data, nil
}

// Decode parses and validates a stored snapshot. Any failure is reported as ErrCorrupt.
func Decode(data []byte) (*models.Snapshot, error) {
	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if snap.History == nil {
		snap.History = []models.HistoryEntry{}
	}
	if snap.Signals == nil {
		snap.Signals = []models.Signal{}
	}
	return &snap, nil
}
