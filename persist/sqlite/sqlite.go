// Package sqlite is a snapshot.Backend on an embedded SQLite database
// (modernc.org/sqlite, pure Go). The Record is stored as a JSON payload in a
// single keyed row of the snapshots table.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/katalvlaran/transformlab/snapshot"
)

// DefaultKey is the row key used when none is configured.
const DefaultKey = "transformlab"

// Backend stores the Record under key in db.
type Backend struct {
	db   *sql.DB
	key  string
	path string
}

// New opens (or creates) the database at path and ensures the table exists.
func New(ctx context.Context, path, key string) (*Backend, error) {
	if path == "" {
		path = "transformlab.db"
	}
	if key == "" {
		key = DefaultKey
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("sqlite: create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// one writer; SQLite serializes anyway.
	db.SetMaxOpenConns(1)
	if _, err = db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS snapshots (
		key TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: create snapshots table: %w", err)
	}

	return &Backend{db: db, key: key, path: path}, nil
}

// Path returns the database path.
func (b *Backend) Path() string { return b.path }

// Load returns the stored Record or snapshot.ErrNoSnapshot.
func (b *Backend) Load(ctx context.Context) (snapshot.Record, error) {
	var payload []byte
	err := b.db.QueryRowContext(ctx, `SELECT payload FROM snapshots WHERE key = ?`, b.key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return snapshot.Record{}, snapshot.ErrNoSnapshot
	}
	if err != nil {
		return snapshot.Record{}, fmt.Errorf("sqlite: select: %w", err)
	}

	return snapshot.Unmarshal(snapshot.JSON, payload)
}

// Save upserts r.
func (b *Backend) Save(ctx context.Context, r snapshot.Record) error {
	payload, err := snapshot.Marshal(snapshot.JSON, r)
	if err != nil {
		return err
	}
	if _, err = b.db.ExecContext(ctx,
		`INSERT INTO snapshots(key, payload, updated_at) VALUES(?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		b.key, payload); err != nil {
		return fmt.Errorf("sqlite: upsert %s: %w", b.key, err)
	}

	return nil
}

// Close closes the database.
func (b *Backend) Close() error { return b.db.Close() }

var _ snapshot.Backend = (*Backend)(nil)
