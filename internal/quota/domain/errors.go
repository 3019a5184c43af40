package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidIdentity   = errors.New("invalid_identity")
	ErrInvalidLimits     = errors.New("invalid_limits")
	ErrStoreUnavailable  = errors.New("quota_store_unavailable")
	ErrRecordNotFound    = errors.New("usage_record_not_found")
)

// ExceededError is returned when an identity is over its daily or
// monthly cap. ResetAt tells the caller when to come back.
type ExceededError struct {
	Scope   string
	ResetAt time.Time
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("quota_exceeded: %s window resets at %s", e.Scope, e.ResetAt.Format(time.RFC3339))
}
