package ports

import (
	"context"
	"io"
	"time"
)

// StagingStorage : временное хранилище файлов между шагами drop и upload
type StagingStorage interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	PresignedGetURL(ctx context.Context, key string, expire time.Duration) (string, error)
}
