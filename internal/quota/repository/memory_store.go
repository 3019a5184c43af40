package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/smallbiznis/threadly/internal/quota/domain"
)

// MemoryStore implements the same test-and-increment semantics as
// GormStore behind a mutex. It is only safe for a single process; shared
// deployments must use the database-backed store.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*domain.UsageRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*domain.UsageRecord)}
}

func (s *MemoryStore) IncrementAndCheck(ctx context.Context, identity string, now time.Time, limits domain.Limits) (domain.Decision, error) {
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

	s.mu.Lock()
	defer s.mu.Unlock()

	record := s.records[identity]
	if record == nil {
		record = &domain.UsageRecord{
			Identity:           identity,
			DailyWindowStart:   dayStart,
			MonthlyWindowStart: monthStart,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		s.records[identity] = record
	}

	if record.DailyWindowStart.Before(dayStart) {
		record.DailyCount = 0
		record.DailyWindowStart = dayStart
	}
	if record.MonthlyWindowStart.Before(monthStart) {
		record.MonthlyCount = 0
		record.MonthlyWindowStart = monthStart
	}

	if record.DailyCount >= limits.Daily || record.MonthlyCount >= limits.Monthly {
		return denial(record, now, dayStart, monthStart, limits), nil
	}

	record.DailyCount++
	record.MonthlyCount++
	record.UpdatedAt = now

	return domain.Decision{
		Allowed:          true,
		DailyRemaining:   limits.Daily - record.DailyCount,
		MonthlyRemaining: limits.Monthly - record.MonthlyCount,
	}, nil
}

func (s *MemoryStore) Get(ctx context.Context, identity string) (*domain.UsageRecord, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return nil, domain.ErrInvalidIdentity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[identity]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	clone := *record
	return &clone, nil
}

func (s *MemoryStore) SetPremiumUntil(ctx context.Context, identity string, until time.Time) error {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return domain.ErrInvalidIdentity
	}

	now := time.Now().UTC()
	until = until.UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	record := s.records[identity]
	if record == nil {
		record = &domain.UsageRecord{
			Identity:           identity,
			DailyWindowStart:   domain.DayStart(now),
			MonthlyWindowStart: domain.MonthStart(now),
			CreatedAt:          now,
		}
		s.records[identity] = record
	}
	record.PremiumUntil = &until
	record.UpdatedAt = now
	return nil
}
