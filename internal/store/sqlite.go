package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/config"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/database"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/model"
)

// SQLiteStore keeps snapshots in a local SQLite file, for the desktop process
// and single-host installs without a network database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and migrates) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := database.Open(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Name implements Store.
func (s *SQLiteStore) Name() string {
	return config.BackendSQLite
}

// Load implements Store.
func (s *SQLiteStore) Load(ctx context.Context, userID string) (model.Snapshot, error) {
	var document string
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM portfolio_snapshot WHERE user_id = ?`,
		userID,
	).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	return decodeSnapshot([]byte(document))
}

// Save implements Store.
func (s *SQLiteStore) Save(ctx context.Context, userID string, snapshot model.Snapshot) error {
	data, err := encodeSnapshot(snapshot)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO portfolio_snapshot (user_id, document, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			document = excluded.document,
			updated_at = excluded.updated_at`,
		userID,
		string(data),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}
	return nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM portfolio_snapshot WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

// Ping implements Store.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return database.HealthCheck(ctx, s.db)
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
