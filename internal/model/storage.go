package model

import (
	"context"
	"io"
)

// Storage holds attachment payloads keyed by object name.
type Storage interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
