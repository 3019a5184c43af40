// Package domain defines the usage-quota model: rolling per-identity
// daily and monthly counters with premium bypass.
package domain

import "time"

// UsageRecord is the persisted rolling counter for one identity. Rows
// are created lazily on the first request and rolled forward in place,
// never deleted.
type UsageRecord struct {
	Identity string `gorm:"primaryKey;type:text"`

	DailyCount       int       `gorm:"not null;default:0"`
	DailyWindowStart time.Time `gorm:"not null"`

	MonthlyCount       int       `gorm:"not null;default:0"`
	MonthlyWindowStart time.Time `gorm:"not null"`

	PremiumUntil *time.Time

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (UsageRecord) TableName() string { return "usage_records" }

// PremiumActive reports whether the record grants quota bypass at now.
// An expired premium flag is treated exactly like free tier.
func (r *UsageRecord) PremiumActive(now time.Time) bool {
	return r != nil && r.PremiumUntil != nil && r.PremiumUntil.After(now)
}

// Limits are the free-tier caps tested on every increment.
type Limits struct {
	Daily   int
	Monthly int
}

// Decision is the outcome of one atomic test-and-increment.
type Decision struct {
	Allowed          bool
	Bypassed         bool
	DailyRemaining   int
	MonthlyRemaining int

	// Scope names the exhausted window ("daily" or "monthly") and
	// ResetAt its next boundary; both are set only on denial.
	Scope   string
	ResetAt time.Time
}

const (
	ScopeDaily   = "daily"
	ScopeMonthly = "monthly"
)

// UsageSummary is the read-only view served to callers.
type UsageSummary struct {
	Identity         string     `json:"identity"`
	DailyUsed        int        `json:"daily_used"`
	DailyLimit       int        `json:"daily_limit"`
	DailyResetAt     time.Time  `json:"daily_reset_at"`
	MonthlyUsed      int        `json:"monthly_used"`
	MonthlyLimit     int        `json:"monthly_limit"`
	MonthlyResetAt   time.Time  `json:"monthly_reset_at"`
	Premium          bool       `json:"premium"`
	PremiumUntil     *time.Time `json:"premium_until,omitempty"`
}
