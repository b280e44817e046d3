package domain

import (
	"context"
	"time"
)

// ResponseCache defines how serialized read responses are cached (usually in
// Redis). A miss is reported as ErrNotFound. Cache failures must degrade to
// the backing store, never fail the request.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) error
}
