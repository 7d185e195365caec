package model

import (
	"context"
	"io"
)

// Storage keeps note bodies that are too large to be stored inline.
type Storage interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
