// Package file is a snapshot.Backend that keeps the Record in one JSON or
// TOML file, chosen by the file extension. Writes go to a temporary file in
// the same directory that is then renamed over the target, so a crash never
// leaves a half-written snapshot.
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/katalvlaran/transformlab/snapshot"
)

// Backend stores the Record at path.
type Backend struct {
	mu    sync.Mutex
	path  string
	codec snapshot.Codec
}

// New creates a file backend. The directory is created if missing.
func New(path string) (*Backend, error) {
	if path == "" {
		return nil, fmt.Errorf("file: path required")
	}
	codec, err := snapshot.CodecForPath(path)
	if err != nil {
		return nil, fmt.Errorf("file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("file: create dirs: %w", err)
	}

	return &Backend{path: path, codec: codec}, nil
}

// Path returns the snapshot file path.
func (b *Backend) Path() string { return b.path }

// Load reads and decodes the file; a missing file is snapshot.ErrNoSnapshot.
func (b *Backend) Load(ctx context.Context) (snapshot.Record, error) {
	if err := ctx.Err(); err != nil {
		return snapshot.Record{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	data, err := os.ReadFile(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return snapshot.Record{}, snapshot.ErrNoSnapshot
	}
	if err != nil {
		return snapshot.Record{}, fmt.Errorf("file: read %s: %w", b.path, err)
	}

	return snapshot.Unmarshal(b.codec, data)
}

// Save encodes r and atomically replaces the file.
func (b *Backend) Save(ctx context.Context, r snapshot.Record) (retErr error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := snapshot.Marshal(b.codec, r)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(b.path), "."+filepath.Base(b.path)+".*")
	if err != nil {
		return fmt.Errorf("file: create temp: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("file: write: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("file: sync: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("file: close: %w", err)
	}
	if err = os.Rename(tmp.Name(), b.path); err != nil {
		return fmt.Errorf("file: rename: %w", err)
	}

	return nil
}

// Close does nothing; the file is opened per call.
func (b *Backend) Close() error { return nil }

var _ snapshot.Backend = (*Backend)(nil)
