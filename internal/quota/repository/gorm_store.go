// Package repository provides the usage-counter stores: a gorm-backed
// store for shared deployments and an in-memory store for tests and
// single-node development.
package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/smallbiznis/threadly/internal/quota/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GormStore keeps usage counters in the shared database so quota
// correctness holds across concurrently running service instances.
type GormStore struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewGormStore(db *gorm.DB, log *zap.Logger) *GormStore {
	return &GormStore{
		db:  db,
		log: log.Named("quota.store"),
	}
}

// IncrementAndCheck rolls both windows forward and test-and-increments
// both counters in a single conditional UPDATE. The database applies
// the statement atomically, so of N concurrent requests for the same
// identity exactly as many commit as the limits permit; RowsAffected
// decides allow versus deny.
func (s *GormStore) IncrementAndCheck(ctx context.Context, identity string, now time.Time, limits domain.Limits) (domain.Decision, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return domain.Decision{}, domain.ErrInvalidIdentity
	}
	if limits.Daily <= 0 || limits.Monthly <= 0 {
		return domain.Decision{}, domain.ErrInvalidLimits
	}

	now = now.UTC()
	dayStart := domain.DayStart(now)
	monthStart := domain.MonthStart(now)

	if err := s.ensureRecord(ctx, identity, dayStart, monthStart, now); err != nil {
		return domain.Decision{}, err
	}

	result := s.db.WithContext(ctx).Exec(
		`UPDATE usage_records
		 SET daily_count = CASE WHEN daily_window_start < ? THEN 1 ELSE daily_count + 1 END,
		     daily_window_start = CASE WHEN daily_window_start < ? THEN ? ELSE daily_window_start END,
		     monthly_count = CASE WHEN monthly_window_start < ? THEN 1 ELSE monthly_count + 1 END,
		     monthly_window_start = CASE WHEN monthly_window_start < ? THEN ? ELSE monthly_window_start END,
		     updated_at = ?
		 WHERE identity = ?
		   AND (CASE WHEN daily_window_start < ? THEN 0 ELSE daily_count END) < ?
		   AND (CASE WHEN monthly_window_start < ? THEN 0 ELSE monthly_count END) < ?`,
		dayStart, dayStart, dayStart,
		monthStart, monthStart, monthStart,
		now,
		identity,
		dayStart, limits.Daily,
		monthStart, limits.Monthly,
	)
	if result.Error != nil {
		return domain.Decision{}, result.Error
	}

	record, err := s.Get(ctx, identity)
	if err != nil {
		return domain.Decision{}, err
	}

	if result.RowsAffected > 0 {
		return domain.Decision{
			Allowed:          true,
			DailyRemaining:   limits.Daily - effectiveCount(record.DailyCount, record.DailyWindowStart, dayStart),
			MonthlyRemaining: limits.Monthly - effectiveCount(record.MonthlyCount, record.MonthlyWindowStart, monthStart),
		}, nil
	}

	return denial(record, now, dayStart, monthStart, limits), nil
}

func (s *GormStore) Get(ctx context.Context, identity string) (*domain.UsageRecord, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return nil, domain.ErrInvalidIdentity
	}

	var record domain.UsageRecord
	err := s.db.WithContext(ctx).
		Where("identity = ?", identity).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (s *GormStore) SetPremiumUntil(ctx context.Context, identity string, until time.Time) error {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return domain.ErrInvalidIdentity
	}

	now := time.Now().UTC()
	if err := s.ensureRecord(ctx, identity, domain.DayStart(now), domain.MonthStart(now), now); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Exec(
		`UPDATE usage_records SET premium_until = ?, updated_at = ? WHERE identity = ?`,
		until.UTC(), now, identity,
	).Error
}

// ensureRecord lazily creates the counter row; ON CONFLICT DO NOTHING
// keeps concurrent first requests race-free.
func (s *GormStore) ensureRecord(ctx context.Context, identity string, dayStart, monthStart, now time.Time) error {
	return s.db.WithContext(ctx).Exec(
		`INSERT INTO usage_records (identity, daily_count, daily_window_start, monthly_count, monthly_window_start, created_at, updated_at)
		 VALUES (?, 0, ?, 0, ?, ?, ?)
		 ON CONFLICT (identity) DO NOTHING`,
		identity, dayStart, monthStart, now, now,
	).Error
}

// effectiveCount treats a stale window as zero without mutating it.
func effectiveCount(count int, windowStart, currentStart time.Time) int {
	if windowStart.Before(currentStart) {
		return 0
	}
	return count
}

func denial(record *domain.UsageRecord, now, dayStart, monthStart time.Time, limits domain.Limits) domain.Decision {
	daily := effectiveCount(record.DailyCount, record.DailyWindowStart, dayStart)
	monthly := effectiveCount(record.MonthlyCount, record.MonthlyWindowStart, monthStart)

	decision := domain.Decision{
		DailyRemaining:   maxInt(limits.Daily-daily, 0),
		MonthlyRemaining: maxInt(limits.Monthly-monthly, 0),
	}
	if daily >= limits.Daily {
		decision.Scope = domain.ScopeDaily
		decision.ResetAt = domain.NextDayStart(now)
	} else {
		decision.Scope = domain.ScopeMonthly
		decision.ResetAt = domain.NextMonthStart(now)
	}
	return decision
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
