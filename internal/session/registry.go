package session

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/Alias1177/StudioPredictor/internal/analyze"
	"github.com/Alias1177/StudioPredictor/internal/storage"
	"github.com/Alias1177/StudioPredictor/models"
)

// StoreFactory returns the snapshot store backing one session
type StoreFactory func(sessionID string) models.SnapshotStore

// FileStores keeps each session in <dir>/<sessionID>.json
func FileStores(dir string) StoreFactory {
	return func(sessionID string) models.SnapshotStore {
		return storage.NewFileStore(filepath.Join(dir, sessionID+".json"))
	}
}

// Registry opens one engine per session on first use and keeps it for the
// life of the process. It is meant to be driven from a single goroutine.
type Registry struct {
	stores  StoreFactory
	opts    []analyze.Option
	engines map[string]*analyze.Engine
}

func NewRegistry(stores StoreFactory, opts ...analyze.Option) *Registry {
	return &Registry{
		stores:  stores,
		opts:    opts,
		engines: make(map[string]*analyze.Engine),
	}
}

// Get returns the session's engine. opened is true when this call loaded it,
// which is when callers should check LoadWarning.
func (r *Registry) Get(ctx context.Context, sessionID string) (engine *analyze.Engine, opened bool, err error) {
	if e, ok := r.engines[sessionID]; ok {
		return e, false, nil
	}
	e, err := analyze.Open(ctx, r.stores(sessionID), r.opts...)
	if err != nil {
		return nil, false, err
	}
	r.engines[sessionID] = e
	return e, true, nil
}

// Forget deletes the session's stored snapshot, when its store supports
// deletion, and closes the session so the next Get starts from scratch.
func (r *Registry) Forget(ctx context.Context, sessionID string) error {
	if d, ok := r.stores(sessionID).(models.SnapshotDeleter); ok {
		if err := d.Delete(ctx); err != nil {
			return err
		}
	}
	delete(r.engines, sessionID)
	return nil
}

func (r *Registry) Len() int {
	return len(r.engines)
}

// FileSessionIDs lists the sessions stored under dir by FileStores.
func FileSessionIDs(dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(paths))
	for _, p := range paths {
		ids = append(ids, strings.TrimSuffix(filepath.Base(p), ".json"))
	}
	return ids, nil
}
