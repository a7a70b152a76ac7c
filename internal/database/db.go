package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/StudioPredictor/internal/config"
	"github.com/Alias1177/StudioPredictor/internal/storage"
	"github.com/Alias1177/StudioPredictor/models"
)

// DB represents a database connection
type DB struct {
	*sql.DB
}

// ConnectionParams holds PostgreSQL connection parameters
type ConnectionParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// ParamsFromConfig maps the DB_* settings onto connection params.
func ParamsFromConfig(c config.DBConfig) ConnectionParams {
	return ConnectionParams{
		Host:     c.Host,
		Port:     c.Port,
		User:     c.User,
		Password: c.Password,
		DBName:   c.Name,
		SSLMode:  c.SSLMode,
	}
}

// DSN renders the params as a lib/pq connection string.
func (p ConnectionParams) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode,
	)
}

// New creates a new database connection, retrying the first ping while the
// server comes up.
func New(ctx context.Context, params ConnectionParams) (*DB, error) {
	db, err := sql.Open("postgres", params.DSN())
	if err != nil {
		return nil, err
	}

	logger := log.With().Str("component", "database").Str("host", params.Host).Logger()

	// Use exponential backoff for retries
	backoffStrategy := backoff.NewExponentialBackOff()
	backoffStrategy.MaxElapsedTime = 30 * time.Second

	operation := func() error {
		if err := db.PingContext(ctx); err != nil {
			logger.Warn().Err(err).Msg("Database not reachable yet")
			return err
		}
		return nil
	}
	if err := backoff.Retry(operation, backoff.WithContext(backoffStrategy, ctx)); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// Create tables if they don't exist
	if err := createTables(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{db}, nil
}

// createTables creates the necessary tables if they don't exist
func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS session_snapshots (
			session_id TEXT PRIMARY KEY,
			snapshot JSONB NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}
	return nil
}

// SnapshotStore persists one session's snapshot as a row
type SnapshotStore struct {
	db        *DB
	sessionID string
}

// Store returns the snapshot store for a session.
func (db *DB) Store(sessionID string) *SnapshotStore {
	return &SnapshotStore{db: db, sessionID: sessionID}
}

func (s *SnapshotStore) Load(ctx context.Context) (*models.Snapshot, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT snapshot
		FROM session_snapshots
		WHERE session_id = $1
	`, s.sessionID).Scan(&raw)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("loading snapshot %s: %w", s.sessionID, err)
	}

	return storage.Decode(raw)
}

// Delete removes the session's row
func (s *SnapshotStore) Delete(ctx context.Context) error {
	return s.db.DeleteSnapshot(ctx, s.sessionID)
}

// Save upserts the whole snapshot for the session
func (s *SnapshotStore) Save(ctx context.Context, snap *models.Snapshot) error {
	data, err := storage.Encode(snap)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO session_snapshots (session_id, snapshot, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (session_id)
		DO UPDATE SET
			snapshot = EXCLUDED.snapshot,
			updated_at = EXCLUDED.updated_at
	`, s.sessionID, string(data), time.Now())
	if err != nil {
		return fmt.Errorf("saving snapshot %s: %w", s.sessionID, err)
	}
	return nil
}

// SessionIDs lists every session that has a stored snapshot
func (db *DB) SessionIDs(ctx context.Context) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT session_id FROM session_snapshots ORDER BY session_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteSnapshot removes a session's row
func (db *DB) DeleteSnapshot(ctx context.Context, sessionID string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM session_snapshots WHERE session_id = $1`, sessionID)
	return err
}
