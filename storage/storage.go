// Package storage provides the object storage adapter used for every durable
// artifact the pipeline produces, plus the stable key layout.
package storage

import (
	"context"
	"io"
	"time"
)

// ObjectStore is the narrow capability surface the pipeline depends on.
// Keys double as storage locators; both S3 and the in-memory test store
// implement it.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	// DeletePrefix purges every object under prefix (working storage cleanup).
	DeletePrefix(ctx context.Context, prefix string) error
	SignedUploadURL(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)
	SignedDownloadURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}
