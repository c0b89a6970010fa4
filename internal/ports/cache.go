package ports

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned when a key is absent / Retourné quand une clé est absente
var ErrCacheMiss = errors.New("cache miss")

// Cache stores JSON values with TTL / Stocke des valeurs JSON avec TTL
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) error
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
	Close() error
}
