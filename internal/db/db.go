// Package db persists the per-user document registry in SQLite. The
// registry records which pipeline state each user is in (uploaded,
// indexed) alongside the uploaded filename.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// State is a user's position in the ingestion pipeline.
type State string

const (
	StateUploaded State = "uploaded"
	StateIndexed  State = "indexed"
)

// Document is one user's registry row. Each user holds at most one
// document at a time; a re-upload replaces the row.
type Document struct {
	UserID     string
	Filename   string
	State      State
	UploadedAt time.Time
	IndexedAt  *time.Time
}

// DB wraps a sql.DB with registry helpers.
type DB struct {
	*sql.DB
	path string
}

// Open creates or opens a SQLite database at the given path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	d := &DB{DB: sqlDB, path: path}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// OpenMemory creates an in-memory SQLite database (useful for testing).
func OpenMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}

	d := &DB{DB: sqlDB, path: ":memory:"}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

func (d *DB) migrate() error {
	_, err := d.Exec(schema)
	return err
}

const schema = `
CREATE TABLE IF NOT EXISTS documents (
    user_id TEXT PRIMARY KEY,
    filename TEXT NOT NULL,
    state TEXT NOT NULL CHECK(state IN ('uploaded','indexed')),
    uploaded_at DATETIME NOT NULL DEFAULT (datetime('now')),
    indexed_at DATETIME
);
`

// RecordUpload registers a fresh upload for the user, replacing any prior
// row. A new upload always resets the state to uploaded.
func (d *DB) RecordUpload(ctx context.Context, userID, filename string) error {
	_, err := d.ExecContext(ctx, `
        INSERT INTO documents (user_id, filename, state, uploaded_at, indexed_at)
        VALUES (?, ?, ?, ?, NULL)
        ON CONFLICT(user_id) DO UPDATE SET
            filename = excluded.filename,
            state = excluded.state,
            uploaded_at = excluded.uploaded_at,
            indexed_at = NULL`,
		userID, filename, StateUploaded, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("recording upload: %w", err)
	}
	return nil
}

// MarkIndexed transitions the user's document to the indexed state.
// Returns false if the user has no registered document.
func (d *DB) MarkIndexed(ctx context.Context, userID string) (bool, error) {
	res, err := d.ExecContext(ctx, `
        UPDATE documents SET state = ?, indexed_at = ? WHERE user_id = ?`,
		StateIndexed, time.Now().UTC(), userID)
	if err != nil {
		return false, fmt.Errorf("marking indexed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// Get returns the user's registry row, or nil if none exists.
func (d *DB) Get(ctx context.Context, userID string) (*Document, error) {
	row := d.QueryRowContext(ctx, `
        SELECT user_id, filename, state, uploaded_at, indexed_at
        FROM documents WHERE user_id = ?`, userID)

	var doc Document
	var indexedAt sql.NullTime
	err := row.Scan(&doc.UserID, &doc.Filename, &doc.State, &doc.UploadedAt, &indexedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading document row: %w", err)
	}
	if indexedAt.Valid {
		doc.IndexedAt = &indexedAt.Time
	}
	return &doc, nil
}

// Delete removes the user's registry row. Deleting an absent row is a
// no-op.
func (d *DB) Delete(ctx context.Context, userID string) error {
	if _, err := d.ExecContext(ctx, `DELETE FROM documents WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("deleting document row: %w", err)
	}
	return nil
}
