package domain

import (
	"context"
	"time"
)

// Store is the shared, externally synchronized backing store for usage
// counters. IncrementAndCheck must perform window rollover, the limit
// test and the increment as one atomic operation against the store; a
// separate read-then-write would let concurrent requests from the same
// identity both pass a check only one should have passed.
type Store interface {
	IncrementAndCheck(ctx context.Context, identity string, now time.Time, limits Limits) (Decision, error)
	Get(ctx context.Context, identity string) (*UsageRecord, error)
	SetPremiumUntil(ctx context.Context, identity string, until time.Time) error
}

// Service is the quota guard consulted by the compose pipeline.
type Service interface {
	// Consume spends one quota unit for identity, or bypasses counting
	// for an identity with active premium. Denials are returned as
	// *ExceededError; store outages as ErrStoreUnavailable unless the
	// guard is configured to fail open.
	Consume(ctx context.Context, identity string) (Decision, error)

	// Usage reports current counters and reset boundaries without
	// consuming anything.
	Usage(ctx context.Context, identity string) (UsageSummary, error)

	// GrantPremium marks identity as premium until the given time.
	GrantPremium(ctx context.Context, identity string, until time.Time) error
}
