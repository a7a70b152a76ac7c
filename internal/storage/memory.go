package storage

import (
	"context"

	"github.com/Alias1177/StudioPredictor/models"
)

// MemoryStore keeps a copy of the last saved snapshot in process memory.
// It backs replays and tests.
type MemoryStore struct {
	snap  *models.Snapshot
	Saves int
}

// NewMemoryStore returns an empty store. Pass a snapshot to pre-seed it.
func NewMemoryStore(seed *models.Snapshot) *MemoryStore {
	return &MemoryStore{snap: seed.Clone()}
}

func (m *MemoryStore) Load(ctx context.Context) (*models.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.snap == nil {
		return nil, ErrNotFound
	}
	return m.snap.Clone(), nil
}

func (m *MemoryStore) Save(ctx context.Context, snap *models.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.snap = snap.Clone()
	m.Saves++
	return nil
}
