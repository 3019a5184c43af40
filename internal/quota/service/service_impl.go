// Package service implements the quota guard: premium bypass, atomic
// counter consumption and the fail-open/fail-closed outage policy.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/smallbiznis/threadly/internal/clock"
	"github.com/smallbiznis/threadly/internal/config"
	"github.com/smallbiznis/threadly/internal/quota/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParam struct {
	fx.In

	Log   *zap.Logger
	Cfg   config.Config
	Store domain.Store
	Clock clock.Clock
}

type Service struct {
	log   *zap.Logger
	cfg   config.QuotaConfig
	store domain.Store
	clock clock.Clock
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		log:   p.Log.Named("quota.service"),
		cfg:   p.Cfg.Quota,
		store: p.Store,
		clock: p.Clock,
	}
}

func (s *Service) Consume(ctx context.Context, identity string) (domain.Decision, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return domain.Decision{}, domain.ErrInvalidIdentity
	}

	now := s.clock.Now()

	if s.cfg.PremiumBypass {
		bypassed, err := s.premiumActive(ctx, identity, now)
		if err != nil {
			return s.storeFailure(identity, err)
		}
		if bypassed {
			return domain.Decision{Allowed: true, Bypassed: true}, nil
		}
	}

	decision, err := s.store.IncrementAndCheck(ctx, identity, now, s.limits())
	if err != nil {
		if errors.Is(err, domain.ErrInvalidIdentity) || errors.Is(err, domain.ErrInvalidLimits) {
			return domain.Decision{}, err
		}
		return s.storeFailure(identity, err)
	}
	if !decision.Allowed {
		return decision, &domain.ExceededError{Scope: decision.Scope, ResetAt: decision.ResetAt}
	}
	return decision, nil
}

func (s *Service) Usage(ctx context.Context, identity string) (domain.UsageSummary, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return domain.UsageSummary{}, domain.ErrInvalidIdentity
	}

	now := s.clock.Now()
	limits := s.limits()
	summary := domain.UsageSummary{
		Identity:       identity,
		DailyLimit:     limits.Daily,
		DailyResetAt:   domain.NextDayStart(now),
		MonthlyLimit:   limits.Monthly,
		MonthlyResetAt: domain.NextMonthStart(now),
	}

	record, err := s.store.Get(ctx, identity)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return summary, nil
		}
		return domain.UsageSummary{}, domain.ErrStoreUnavailable
	}

	if !record.DailyWindowStart.Before(domain.DayStart(now)) {
		summary.DailyUsed = record.DailyCount
	}
	if !record.MonthlyWindowStart.Before(domain.MonthStart(now)) {
		summary.MonthlyUsed = record.MonthlyCount
	}
	if record.PremiumActive(now) {
		summary.Premium = true
		summary.PremiumUntil = record.PremiumUntil
	}
	return summary, nil
}

func (s *Service) GrantPremium(ctx context.Context, identity string, until time.Time) error {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return domain.ErrInvalidIdentity
	}
	if err := s.store.SetPremiumUntil(ctx, identity, until); err != nil {
		if errors.Is(err, domain.ErrInvalidIdentity) {
			return err
		}
		return domain.ErrStoreUnavailable
	}
	return nil
}

func (s *Service) premiumActive(ctx context.Context, identity string, now time.Time) (bool, error) {
	record, err := s.store.Get(ctx, identity)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return record.PremiumActive(now), nil
}

// storeFailure applies the configured outage policy. Failing open trades
// enforcement for availability and is logged loudly; failing closed is
// the default.
func (s *Service) storeFailure(identity string, err error) (domain.Decision, error) {
	if s.cfg.FailOpen {
		s.log.Warn("quota store unavailable, failing open",
			zap.String("identity", identity),
			zap.Error(err),
		)
		return domain.Decision{Allowed: true}, nil
	}
	s.log.Error("quota store unavailable, failing closed",
		zap.String("identity", identity),
		zap.Error(err),
	)
	return domain.Decision{}, domain.ErrStoreUnavailable
}

func (s *Service) limits() domain.Limits {
	return domain.Limits{Daily: s.cfg.DailyLimit, Monthly: s.cfg.MonthlyLimit}
}
