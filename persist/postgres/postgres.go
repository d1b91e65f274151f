// Package postgres is a snapshot.Backend on PostgreSQL through database/sql
// with the pgx driver. The Record is stored as JSONB in a keyed row.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"github.com/katalvlaran/transformlab/snapshot"
)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/transformlab?sslmode=disable"

	// DefaultKey is the row key used when none is configured.
	DefaultKey = "transformlab"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Backend stores the Record under key.
type Backend struct {
	db  *sql.DB
	key string
}

// New connects to dsn (defaultDSN when empty), pings, and ensures the table.
func New(ctx context.Context, dsn, key string) (*Backend, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	return NewFromDB(ctx, db, key)
}

// NewFromDB wraps an open *sql.DB (any Postgres-compatible driver).
func NewFromDB(ctx context.Context, db *sql.DB, key string) (*Backend, error) {
	if key == "" {
		key = DefaultKey
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS transformlab_snapshots (
		key TEXT PRIMARY KEY,
		payload JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`); err != nil {
		return nil, fmt.Errorf("postgres: ensure snapshots table: %w", err)
	}

	return &Backend{db: db, key: key}, nil
}

// Load returns the stored Record or snapshot.ErrNoSnapshot.
func (b *Backend) Load(ctx context.Context) (snapshot.Record, error) {
	var payload []byte
	err := b.db.QueryRowContext(ctx, `SELECT payload FROM transformlab_snapshots WHERE key = $1`, b.key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return snapshot.Record{}, snapshot.ErrNoSnapshot
	}
	if err != nil {
		return snapshot.Record{}, fmt.Errorf("postgres: select: %w", err)
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
		`INSERT INTO transformlab_snapshots(key, payload, updated_at) VALUES($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`,
		b.key, payload); err != nil {
		return fmt.Errorf("postgres: upsert %s: %w", b.key, err)
	}

	return nil
}

// Close closes the pool.
func (b *Backend) Close() error { return b.db.Close() }

var _ snapshot.Backend = (*Backend)(nil)
