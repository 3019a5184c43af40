package domain

import (
	"testing"
	"time"
)

func TestDayWindows(t *testing.T) {
	now := time.Date(2025, time.March, 14, 15, 9, 26, 0, time.UTC)
	if got := DayStart(now); !got.Equal(time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected day start %v", got)
	}
	if got := NextDayStart(now); !got.Equal(time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected next day start %v", got)
	}
}

func TestDayStartConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	// 02:30 on the 2nd in UTC+7 is still the 1st in UTC.
	now := time.Date(2025, time.June, 2, 2, 30, 0, 0, loc)
	if got := DayStart(now); !got.Equal(time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected day start %v", got)
	}
}

func TestMonthWindows(t *testing.T) {
	now := time.Date(2025, time.December, 31, 23, 59, 59, 0, time.UTC)
	if got := MonthStart(now); !got.Equal(time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected month start %v", got)
	}
	if got := NextMonthStart(now); !got.Equal(time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected january rollover, got %v", got)
	}
}

func TestPremiumActive(t *testing.T) {
	now := time.Date(2025, time.May, 1, 12, 0, 0, 0, time.UTC)

	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	if !(&UsageRecord{PremiumUntil: &future}).PremiumActive(now) {
		t.Fatalf("expected active premium")
	}
	if (&UsageRecord{PremiumUntil: &past}).PremiumActive(now) {
		t.Fatalf("expired premium must not bypass")
	}
	if (&UsageRecord{}).PremiumActive(now) {
		t.Fatalf("missing premium must not bypass")
	}
	var nilRecord *UsageRecord
	if nilRecord.PremiumActive(now) {
		t.Fatalf("nil record must not bypass")
	}
}
