// Package redis is a snapshot.Backend that keeps the Record as a JSON value
// under a single Redis key.
//
// Usage:
//
//	b, err := redis.New(ctx, redis.Config{Addr: "localhost:6379"})
//	if err != nil {
//	    return err
//	}
//	defer b.Close()
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/katalvlaran/transformlab/snapshot"
)

// DefaultKey is the Redis key used when none is configured.
const DefaultKey = "transformlab:snapshot"

// Config holds connection settings.
type Config struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Key      string `toml:"key"`
}

// client is the subset of *goredis.Client the backend calls.
type client interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
	Close() error
}

// Backend stores the Record under one key.
type Backend struct {
	rdb client
	key string
}

// New connects to Redis and pings it.
func New(ctx context.Context, cfg Config) (*Backend, error) {
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", cfg.Addr, err)
	}

	return newBackend(rdb, cfg.Key), nil
}

func newBackend(rdb client, key string) *Backend {
	if key == "" {
		key = DefaultKey
	}

	return &Backend{rdb: rdb, key: key}
}

// Load returns the stored Record or snapshot.ErrNoSnapshot.
func (b *Backend) Load(ctx context.Context) (snapshot.Record, error) {
	data, err := b.rdb.Get(ctx, b.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return snapshot.Record{}, snapshot.ErrNoSnapshot
	}
	if err != nil {
		return snapshot.Record{}, fmt.Errorf("redis: get %s: %w", b.key, err)
	}

	return snapshot.Unmarshal(snapshot.JSON, data)
}

// Save writes r without expiry.
func (b *Backend) Save(ctx context.Context, r snapshot.Record) error {
	data, err := snapshot.Marshal(snapshot.JSON, r)
	if err != nil {
		return err
	}
	if err = b.rdb.Set(ctx, b.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis: set %s: %w", b.key, err)
	}

	return nil
}

// Close closes the client.
func (b *Backend) Close() error { return b.rdb.Close() }

var _ snapshot.Backend = (*Backend)(nil)
