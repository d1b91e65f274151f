// Package mongo is a snapshot.Backend that keeps the Record in one MongoDB
// document, addressed by _id.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/katalvlaran/transformlab/snapshot"
)

// Defaults used when Config leaves fields empty.
const (
	DefaultDatabase   = "transformlab"
	DefaultCollection = "snapshots"
	DefaultKey        = "transformlab"
)

// Config holds connection settings.
type Config struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
	Key        string `toml:"key"`
}

// document is the stored shape. Payload is the JSON encoding of the Record
// so floats keep their exact decimal form.
type document struct {
	ID        string    `bson:"_id"`
	Payload   string    `bson:"payload"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// Backend stores the Record in coll under key.
type Backend struct {
	client *mongo.Client
	coll   *mongo.Collection
	key    string
}

// New connects and pings the server.
func New(ctx context.Context, cfg Config) (*Backend, error) {
	if cfg.URI == "" {
		cfg.URI = "mongodb://localhost:27017"
	}
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Key == "" {
		cfg.Key = DefaultKey
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}

	return &Backend{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
		key:    cfg.Key,
	}, nil
}

// Load returns the stored Record or snapshot.ErrNoSnapshot.
func (b *Backend) Load(ctx context.Context) (snapshot.Record, error) {
	var doc document
	err := b.coll.FindOne(ctx, bson.M{"_id": b.key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return snapshot.Record{}, snapshot.ErrNoSnapshot
	}
	if err != nil {
		return snapshot.Record{}, fmt.Errorf("mongo: find %s: %w", b.key, err)
	}

	return snapshot.Unmarshal(snapshot.JSON, []byte(doc.Payload))
}

// Save upserts r.
func (b *Backend) Save(ctx context.Context, r snapshot.Record) error {
	data, err := snapshot.Marshal(snapshot.JSON, r)
	if err != nil {
		return err
	}
	doc := document{ID: b.key, Payload: string(data), UpdatedAt: time.Now().UTC()}
	if _, err = b.coll.ReplaceOne(ctx, bson.M{"_id": b.key}, doc, options.Replace().SetUpsert(true)); err != nil {
		return fmt.Errorf("mongo: replace %s: %w", b.key, err)
	}

	return nil
}

// Close disconnects the client.
func (b *Backend) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return b.client.Disconnect(ctx)
}

var _ snapshot.Backend = (*Backend)(nil)
