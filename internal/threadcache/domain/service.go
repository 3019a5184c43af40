package domain

import (
	"context"
	"errors"
	"time"

	composerdomain "github.com/smallbiznis/threadly/internal/composer/domain"
)

var ErrUnavailable = errors.New("cache_unavailable")

// Store is the shared backing store for cache entries.
type Store interface {
	Get(ctx context.Context, key string, now time.Time) ([]byte, bool, error)
	Set(ctx context.Context, key string, payload []byte, now, expiresAt time.Time) error
	Clear(ctx context.Context) error
}

// Service is the result cache consulted by the compose pipeline. Get
// and Set degrade silently on store outages: the cache is a performance
// optimization and never a correctness dependency, so an unreachable
// store reads as a guaranteed miss.
type Service interface {
	// Key derives the content-addressed cache key from normalized
	// content and the effective options.
	Key(normalizedContent string, opts composerdomain.Options) string

	Get(ctx context.Context, key string) (*composerdomain.Thread, bool)
	Set(ctx context.Context, key string, thread *composerdomain.Thread)

	// Clear removes every entry; administrative operation.
	Clear(ctx context.Context) error
}
