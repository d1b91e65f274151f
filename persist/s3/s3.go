// Package s3 is a snapshot.Backend that keeps the Record as one JSON object
// in an S3 (or S3-compatible) bucket.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/katalvlaran/transformlab/snapshot"
)

// DefaultKey is the object key used when none is configured.
const DefaultKey = "transformlab/snapshot.json"

// Config holds bucket and credential settings. Empty credentials fall back
// to the default AWS chain.
type Config struct {
	Region          string `toml:"region"`
	Bucket          string `toml:"bucket"`
	Key             string `toml:"key"`
	Endpoint        string `toml:"endpoint"`
	AccessKeyID     string `toml:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key"`
	SessionToken    string `toml:"session_token"`
	PathStyle       bool   `toml:"path_style"`
}

// objectAPI is the subset of *s3.Client the backend calls.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Backend stores the Record at bucket/key.
type Backend struct {
	client objectAPI
	bucket string
	key    string
}

// New builds an S3 client from cfg.
func New(ctx context.Context, cfg Config) (*Backend, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3: bucket required")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return newBackend(client, cfg.Bucket, cfg.Key), nil
}

// ConfigFromEnv reads TRANSFORMLAB_S3_* variables over base.
func ConfigFromEnv(base Config) Config {
	set := func(dst *string, name string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	set(&base.Region, "TRANSFORMLAB_S3_REGION")
	set(&base.Bucket, "TRANSFORMLAB_S3_BUCKET")
	set(&base.Key, "TRANSFORMLAB_S3_KEY")
	set(&base.Endpoint, "TRANSFORMLAB_S3_ENDPOINT")
	set(&base.AccessKeyID, "TRANSFORMLAB_S3_ACCESS_KEY_ID")
	set(&base.SecretAccessKey, "TRANSFORMLAB_S3_SECRET_ACCESS_KEY")
	set(&base.SessionToken, "TRANSFORMLAB_S3_SESSION_TOKEN")
	if v := strings.ToLower(os.Getenv("TRANSFORMLAB_S3_PATH_STYLE")); v != "" {
		base.PathStyle = v == "1" || v == "true" || v == "yes"
	}

	return base
}

func newBackend(client objectAPI, bucket, key string) *Backend {
	if key == "" {
		key = DefaultKey
	}

	return &Backend{client: client, bucket: bucket, key: key}
}

// Load fetches and decodes the object; a missing object is
// snapshot.ErrNoSnapshot.
func (b *Backend) Load(ctx context.Context) (snapshot.Record, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &b.bucket, Key: &b.key})
	if err != nil {
		if isNotFound(err) {
			return snapshot.Record{}, snapshot.ErrNoSnapshot
		}
		return snapshot.Record{}, fmt.Errorf("s3: get %s/%s: %w", b.bucket, b.key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return snapshot.Record{}, fmt.Errorf("s3: read %s/%s: %w", b.bucket, b.key, err)
	}

	return snapshot.Unmarshal(snapshot.JSON, data)
}

// Save uploads r, replacing the object.
func (b *Backend) Save(ctx context.Context, r snapshot.Record) error {
	data, err := snapshot.Marshal(snapshot.JSON, r)
	if err != nil {
		return err
	}
	if _, err = b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &b.bucket,
		Key:         &b.key,
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	}); err != nil {
		return fmt.Errorf("s3: put %s/%s: %w", b.bucket, b.key, err)
	}

	return nil
}

// Close does nothing; the client holds no dedicated connections.
func (b *Backend) Close() error { return nil }

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var re *awshttp.ResponseError
	if errors.As(err, &re) && re.HTTPStatusCode() == http.StatusNotFound {
		return true
	}

	return false
}

var _ snapshot.Backend = (*Backend)(nil)
