// Package service sequences the compose pipeline: quota guard, result
// cache, external generation and the segmentation core.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/threadly/internal/clock"
	"github.com/smallbiznis/threadly/internal/composer/domain"
	"github.com/smallbiznis/threadly/internal/composer/segment"
	"github.com/smallbiznis/threadly/internal/config"
	generatordomain "github.com/smallbiznis/threadly/internal/generator/domain"
	"github.com/smallbiznis/threadly/internal/observability/metrics"
	quotadomain "github.com/smallbiznis/threadly/internal/quota/domain"
	cachedomain "github.com/smallbiznis/threadly/internal/threadcache/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	outcomeSuccess          = "success"
	outcomeCacheHit         = "cache_hit"
	outcomeQuotaExceeded    = "quota_exceeded"
	outcomeStoreUnavailable = "store_unavailable"
	outcomeGenerationFailed = "generation_failed"
	outcomeValidationFailed = "validation_failed"
	outcomeInvalidInput     = "invalid_input"
)

type ServiceParam struct {
	fx.In

	Log       *zap.Logger
	Cfg       config.Config
	Quota     quotadomain.Service
	Cache     cachedomain.Service
	Generator generatordomain.Generator
	Node      *snowflake.Node
	Clock     clock.Clock
}

type Service struct {
	log       *zap.Logger
	cfg       config.Config
	quota     quotadomain.Service
	cache     cachedomain.Service
	generator generatordomain.Generator
	node      *snowflake.Node
	clock     clock.Clock
	metrics   *metrics.ComposeMetrics
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		log:       p.Log.Named("composer.service"),
		cfg:       p.Cfg,
		quota:     p.Quota,
		cache:     p.Cache,
		generator: p.Generator,
		node:      p.Node,
		clock:     p.Clock,
		metrics: metrics.ComposeWithConfig(metrics.Config{
			ServiceName: p.Cfg.Observability.ServiceName,
			Environment: p.Cfg.Environment,
		}),
	}
}

// Compose runs the full pipeline. When Quota.CountCacheHits is set the
// quota unit is spent before the cache lookup, so a hit still counts;
// otherwise the cache is consulted first and hits are free.
func (s *Service) Compose(ctx context.Context, req domain.ComposeRequest) (*domain.Thread, error) {
	start := time.Now()

	opts, err := s.effectiveOptions(req.Options)
	if err != nil {
		s.metrics.ObserveCompose(outcomeInvalidInput, time.Since(start))
		return nil, err
	}
	cleaned := segment.Clean(req.Content)
	if cleaned == "" {
		s.metrics.ObserveCompose(outcomeInvalidInput, time.Since(start))
		return nil, domain.ErrEmptyContent
	}

	key := s.cache.Key(cleaned, opts)

	if s.cfg.Quota.CountCacheHits {
		if err := s.consume(ctx, req.Identity); err != nil {
			s.metrics.ObserveCompose(s.quotaOutcome(err), time.Since(start))
			return nil, err
		}
		if thread, ok := s.lookup(ctx, key); ok {
			s.metrics.ObserveCompose(outcomeCacheHit, time.Since(start))
			return thread, nil
		}
	} else {
		if thread, ok := s.lookup(ctx, key); ok {
			s.metrics.ObserveCompose(outcomeCacheHit, time.Since(start))
			return thread, nil
		}
		if err := s.consume(ctx, req.Identity); err != nil {
			s.metrics.ObserveCompose(s.quotaOutcome(err), time.Since(start))
			return nil, err
		}
	}

	text, err := s.generate(ctx, cleaned)
	if err != nil {
		s.metrics.ObserveCompose(outcomeGenerationFailed, time.Since(start))
		return nil, err
	}

	thread, err := s.assemble(text, opts)
	if err != nil {
		s.log.Error("segment validation failed after split",
			zap.String("identity", req.Identity), zap.Error(err))
		s.metrics.ObserveCompose(outcomeValidationFailed, time.Since(start))
		return nil, err
	}
	thread.Source = domain.SourceMetadata{
		SourceURL:   req.SourceURL,
		ContentHash: key,
		Model:       s.cfg.Generator.Model,
		GeneratedAt: s.clock.Now().UTC(),
	}

	// A caller hanging up after generation must not lose the entry.
	s.cache.Set(context.WithoutCancel(ctx), key, thread)

	s.metrics.ObserveThreadSegments(thread.TotalCount)
	s.metrics.ObserveCompose(outcomeSuccess, time.Since(start))
	return thread, nil
}

// Preview segments caller-supplied text directly. No quota unit is
// spent and nothing is generated or cached.
func (s *Service) Preview(ctx context.Context, req domain.PreviewRequest) (*domain.Thread, error) {
	opts, err := s.effectiveOptions(req.Options)
	if err != nil {
		return nil, err
	}
	cleaned := segment.Clean(req.Content)
	if cleaned == "" {
		return nil, domain.ErrEmptyContent
	}

	thread, err := s.assemble(cleaned, opts)
	if err != nil {
		return nil, err
	}
	thread.Source = domain.SourceMetadata{
		ContentHash: s.cache.Key(cleaned, opts),
		GeneratedAt: s.clock.Now().UTC(),
	}
	return thread, nil
}

func (s *Service) effectiveOptions(opts domain.Options) (domain.Options, error) {
	if opts.MaxLength == 0 {
		opts.MaxLength = s.cfg.Compose.MaxLength
	}
	if opts.WarningThreshold == 0 {
		opts.WarningThreshold = s.cfg.Compose.WarningThreshold
		if opts.WarningThreshold > opts.MaxLength {
			opts.WarningThreshold = opts.MaxLength
		}
	}
	if opts.AddNumbers == nil {
		v := s.cfg.Compose.AddNumbers
		opts.AddNumbers = &v
	}
	if opts.NumberFormat == "" {
		opts.NumberFormat = s.cfg.Compose.NumberFormat
	}
	if opts.MaxLength < 1 || opts.WarningThreshold < 0 || opts.WarningThreshold > opts.MaxLength {
		return domain.Options{}, domain.ErrInvalidOptions
	}
	return opts, nil
}

func (s *Service) consume(ctx context.Context, identity string) error {
	decision, err := s.quota.Consume(ctx, identity)
	if err != nil {
		var exceeded *quotadomain.ExceededError
		switch {
		case errors.As(err, &exceeded):
			s.metrics.IncQuotaDecision("denied_" + exceeded.Scope)
		default:
			s.metrics.IncQuotaDecision("store_error")
		}
		return err
	}
	if decision.Bypassed {
		s.metrics.IncQuotaDecision("bypassed")
	} else {
		s.metrics.IncQuotaDecision("allowed")
	}
	return nil
}

func (s *Service) quotaOutcome(err error) string {
	var exceeded *quotadomain.ExceededError
	if errors.As(err, &exceeded) {
		return outcomeQuotaExceeded
	}
	return outcomeStoreUnavailable
}

func (s *Service) lookup(ctx context.Context, key string) (*domain.Thread, bool) {
	cached, ok := s.cache.Get(ctx, key)
	if !ok {
		s.metrics.IncCacheLookup("miss")
		return nil, false
	}
	s.metrics.IncCacheLookup("hit")

	thread := *cached
	thread.Source.CacheHit = true
	return &thread, true
}

func (s *Service) generate(ctx context.Context, content string) (string, error) {
	genCtx, cancel := context.WithTimeout(ctx, s.cfg.Generator.Timeout)
	defer cancel()

	genStart := time.Now()
	raw, err := s.generator.Produce(genCtx, content)
	s.metrics.ObserveGeneration(time.Since(genStart))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", generatordomain.ErrGenerationTimeout
		}
		return "", err
	}

	text := segment.Clean(raw)
	if text == "" {
		return "", generatordomain.ErrGenerationFailed
	}
	return text, nil
}

// assemble runs the pure segmentation core and builds the thread. The
// returned thread has no source metadata yet.
func (s *Service) assemble(text string, opts domain.Options) (*domain.Thread, error) {
	split := segment.SplitOptions{
		MaxLength:     opts.MaxLength,
		PreserveWords: true,
		AddNumbers:    *opts.AddNumbers,
		NumberFormat:  opts.NumberFormat,
	}
	plain, total, err := segment.Split(text, split)
	if err != nil {
		return nil, err
	}

	final := plain
	if split.AddNumbers {
		final = segment.Number(plain, opts.NumberFormat, total)
	}

	reports, stats, err := segment.Validate(final, opts.MaxLength, opts.WarningThreshold)
	if err != nil {
		return nil, err
	}

	segments := make([]domain.Segment, len(final))
	for i, content := range final {
		segments[i] = domain.Segment{
			Content:        content,
			Order:          reports[i].Order,
			CharacterCount: reports[i].CharacterCount,
			Remaining:      reports[i].Remaining,
			IsWarning:      reports[i].IsWarning,
		}
	}

	return &domain.Thread{
		ID:         s.node.Generate().String(),
		Segments:   segments,
		TotalCount: total,
		Stats:      stats,
	}, nil
}
