package models

import "context"

// SnapshotStore loads and saves a whole engine snapshot. Save replaces
// whatever was stored before.
type SnapshotStore interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
}

// SnapshotDeleter is implemented by stores that can drop their snapshot
// entirely. Deleting a snapshot that does not exist is not an error.
type SnapshotDeleter interface {
	Delete(ctx context.Context) error
}
