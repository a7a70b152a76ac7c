package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/StudioPredictor/internal/config"
	"github.com/Alias1177/StudioPredictor/internal/storage"
	"github.com/Alias1177/StudioPredictor/models"
)

func TestDSN(t *testing.T) {
	p := ConnectionParams{Host: "localhost", Port: "5432", User: "app", Password: "secret", DBName: "predictor", SSLMode: "disable"}
	assert.Equal(t, "host=localhost port=5432 user=app password=secret dbname=predictor sslmode=disable", p.DSN())
}

func TestParamsFromConfig(t *testing.T) {
	p := ParamsFromConfig(config.DBConfig{Host: "db", Port: "6543", User: "u", Password: "p", Name: "n", SSLMode: "require"})
	assert.Equal(t, ConnectionParams{Host: "db", Port: "6543", User: "u", Password: "p", DBName: "n", SSLMode: "require"}, p)
}

// openTestDB connects to the database named by TEST_DB_HOST, skipping otherwise.
func openTestDB(t *testing.T) *DB {
	t.Helper()
	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("TEST_DB_HOST not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := New(ctx, ConnectionParams{
		Host:     host,
		Port:     os.Getenv("TEST_DB_PORT"),
		User:     os.Getenv("TEST_DB_USER"),
		Password: os.Getenv("TEST_DB_PASSWORD"),
		DBName:   os.Getenv("TEST_DB_NAME"),
		SSLMode:  "disable",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSnapshotStoreRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	id := fmt.Sprintf("test-%d", time.Now().UnixNano())
	t.Cleanup(func() { _ = db.DeleteSnapshot(ctx, id) })

	store := db.Store(id)
	_, err := store.Load(ctx)
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	want := &models.Snapshot{
		History: []models.HistoryEntry{{Time: "11:00:00", Outcome: models.Home}, {Time: "11:00:05", Outcome: models.Away}},
		Signals: []models.Signal{{Time: "11:00:05", Pattern: 31, Prediction: models.Away}},
	}
	require.NoError(t, store.Save(ctx, want))
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	ids, err := db.SessionIDs(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, id)

	require.NoError(t, store.Delete(ctx))
	_, err = store.Load(ctx)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
	assert.NoError(t, store.Delete(ctx))
}
