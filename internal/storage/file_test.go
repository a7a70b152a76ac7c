package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/StudioPredictor/models"
)

func sampleSnapshot() *models.Snapshot {
	return &models.Snapshot{
		History: []models.HistoryEntry{
			{Time: "12:00:00", Outcome: models.Home},
			{Time: "12:00:10", Outcome: models.Away},
			{Time: "12:00:20", Outcome: models.Away},
		},
		Signals: []models.Signal{
			{Time: "12:00:10", Pattern: 31, Prediction: models.Away, Correct: models.Hit},
		},
		Performance: models.Performance{Total: 1, Hits: 1},
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(filepath.Join(t.TempDir(), "nested", "analyzer_data.json"))

	want := sampleSnapshot()
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFileStoreMissing(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "absent.json"))

	_, err := store.Load(context.Background())
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFileStoreCorrupt(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "not json", content: "{history: ["},
		{name: "bad outcome", content: `{"history": [["10:00:00", "Z"]], "signals": [], "performance": {}}`},
		{name: "bad prediction", content: `{"history": [], "signals": [{"time": "10:00:00", "pattern": 1, "prediction": "Q"}], "performance": {}}`},
		{name: "missing prediction", content: `{"history": [], "signals": [{"time": "10:00:00", "pattern": 1}], "performance": {}}`},
		{name: "bad verdict", content: `{"history": [], "signals": [{"time": "10:00:00", "pattern": 1, "prediction": "H", "correct": "maybe"}]}`},
		{name: "negative counters", content: `{"performance": {"total": -1, "hits": 0, "misses": -1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "analyzer_data.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := NewFileStore(path).Load(context.Background())
			assert.True(t, errors.Is(err, ErrCorrupt), "got %v", err)
		})
	}
}

func TestFileStoreMissingKeysUseDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analyzer_data.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"history": [["08:00:00", "T"]]}`), 0o644))

	got, err := NewFileStore(path).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, got.History, 1)
	assert.Empty(t, got.Signals)
	assert.NotNil(t, got.Signals)
	assert.Equal(t, models.Performance{}, got.Performance)
}

func TestEncodeIndentsLikeStoredFiles(t *testing.T) {
	data, err := Encode(&models.Snapshot{})
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n    \"history\": []")
}

func TestMemoryStoreCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(nil)

	_, err := store.Load(ctx)
	assert.True(t, errors.Is(err, ErrNotFound))

	snap := sampleSnapshot()
	require.NoError(t, store.Save(ctx, snap))
	snap.History[0].Outcome = models.Tie

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Home, got.History[0].Outcome)
	assert.Equal(t, 1, store.Saves)
}

func TestFileStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, store.Save(ctx, sampleSnapshot()))

	require.NoError(t, store.Delete(ctx))
	assert.NoFileExists(t, store.Path())

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, store.Delete(ctx), "deleting twice is fine")
}
