// SPDX-License-Identifier: MIT

// Package persist selects and opens a snapshot.Backend by driver name and
// keeps it in step with a store through an Autosaver.
//
// Drivers:
//
//	memory    in-process, lost on exit (default)
//	file      JSON or TOML file, by extension
//	sqlite    embedded database file
//	postgres  PostgreSQL via pgx
//	redis     one key
//	mongo     one document
//	s3        one object
package persist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/katalvlaran/transformlab/persist/file"
	"github.com/katalvlaran/transformlab/persist/memory"
	"github.com/katalvlaran/transformlab/persist/mongo"
	"github.com/katalvlaran/transformlab/persist/postgres"
	"github.com/katalvlaran/transformlab/persist/redis"
	"github.com/katalvlaran/transformlab/persist/s3"
	"github.com/katalvlaran/transformlab/persist/sqlite"
	"github.com/katalvlaran/transformlab/snapshot"
)

// ErrUnknownDriver indicates an unsupported driver name.
var ErrUnknownDriver = errors.New("persist: unknown driver")

// Driver names a backend implementation.
type Driver string

const (
	Memory   Driver = "memory"
	File     Driver = "file"
	SQLite   Driver = "sqlite"
	Postgres Driver = "postgres"
	Redis    Driver = "redis"
	Mongo    Driver = "mongo"
	S3       Driver = "s3"
)

// Drivers lists every supported driver.
func Drivers() []Driver {
	return []Driver{Memory, File, SQLite, Postgres, Redis, Mongo, S3}
}

// ParseDriver parses a driver name (case-insensitive); "" is Memory.
func ParseDriver(s string) (Driver, error) {
	d := Driver(strings.ToLower(strings.TrimSpace(s)))
	if d == "" {
		return Memory, nil
	}
	for _, known := range Drivers() {
		if d == known {
			return d, nil
		}
	}

	return "", fmt.Errorf("%w %q", ErrUnknownDriver, s)
}

// Config selects a driver and carries the settings of every driver. Only the
// block of the selected driver is read.
type Config struct {
	Driver   Driver         `toml:"driver"`
	File     FileConfig     `toml:"file"`
	SQLite   SQLiteConfig   `toml:"sqlite"`
	Postgres PostgresConfig `toml:"postgres"`
	Redis    redis.Config   `toml:"redis"`
	Mongo    mongo.Config   `toml:"mongo"`
	S3       s3.Config      `toml:"s3"`
}

// FileConfig configures the file driver.
type FileConfig struct {
	Path string `toml:"path"`
}

// SQLiteConfig configures the sqlite driver.
type SQLiteConfig struct {
	Path string `toml:"path"`
	Key  string `toml:"key"`
}

// PostgresConfig configures the postgres driver.
type PostgresConfig struct {
	DSN string `toml:"dsn"`
	Key string `toml:"key"`
}

// Validate checks the driver name and the fields it requires.
func (c Config) Validate() error {
	d, err := ParseDriver(string(c.Driver))
	if err != nil {
		return err
	}
	switch d {
	case File:
		if c.File.Path == "" {
			return errors.New("persist: file.path required")
		}
		if _, err = snapshot.CodecForPath(c.File.Path); err != nil {
			return fmt.Errorf("persist: file.path: %w", err)
		}
	case S3:
		if c.S3.Bucket == "" {
			return errors.New("persist: s3.bucket required")
		}
	}

	return nil
}

// Open connects the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg Config) (snapshot.Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	d, _ := ParseDriver(string(cfg.Driver))

	switch d {
	case File:
		return file.New(cfg.File.Path)
	case SQLite:
		return sqlite.New(ctx, cfg.SQLite.Path, cfg.SQLite.Key)
	case Postgres:
		return postgres.New(ctx, cfg.Postgres.DSN, cfg.Postgres.Key)
	case Redis:
		return redis.New(ctx, cfg.Redis)
	case Mongo:
		return mongo.New(ctx, cfg.Mongo)
	case S3:
		return s3.New(ctx, cfg.S3)
	default:
		return memory.New(), nil
	}
}
