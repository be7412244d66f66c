package ports

import (
	"context"
	"time"
)

// CacheRepository : Redis слой, значения хранятся в JSON
type CacheRepository interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
