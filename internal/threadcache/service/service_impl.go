// Package service implements the content-addressed result cache on top
// of a shared store, with an in-process read-through layer for repeat
// lookups on the same node.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/smallbiznis/threadly/internal/cache"
	"github.com/smallbiznis/threadly/internal/clock"
	composerdomain "github.com/smallbiznis/threadly/internal/composer/domain"
	"github.com/smallbiznis/threadly/internal/config"
	"github.com/smallbiznis/threadly/internal/threadcache/domain"
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
	cfg   config.CacheConfig
	store domain.Store
	clock clock.Clock

	// hot short-circuits repeat reads on this node; the shared store
	// stays the source of truth and its TTL the authoritative one.
	hot *cache.TTLCache[string, *composerdomain.Thread]
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		log:   p.Log.Named("threadcache.service"),
		cfg:   p.Cfg.Cache,
		store: p.Store,
		clock: p.Clock,
		hot:   cache.NewTTLCache[string, *composerdomain.Thread](),
	}
}

// Key hashes normalized content together with every option that changes
// segmentation output, so the same article with different settings
// occupies different entries.
func (s *Service) Key(normalizedContent string, opts composerdomain.Options) string {
	h := sha256.New()
	h.Write([]byte(normalizedContent))
	h.Write([]byte{0})
	addNumbers := false
	if opts.AddNumbers != nil {
		addNumbers = *opts.AddNumbers
	}
	fmt.Fprintf(h, "%d|%d|%t|%s", opts.MaxLength, opts.WarningThreshold, addNumbers, opts.NumberFormat)
	return hex.EncodeToString(h.Sum(nil))
}

func (s *Service) Get(ctx context.Context, key string) (*composerdomain.Thread, bool) {
	if !s.cfg.Enabled {
		return nil, false
	}
	if thread, ok := s.hot.Get(key); ok {
		return thread, true
	}

	payload, ok, err := s.store.Get(ctx, key, s.clock.Now())
	if err != nil {
		// The cache is an optimization; an unreachable store is a miss.
		s.log.Warn("cache store unavailable, treating as miss", zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var thread composerdomain.Thread
	if err := json.Unmarshal(payload, &thread); err != nil {
		s.log.Warn("corrupt cache entry, treating as miss", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	s.hot.Set(key, &thread, s.cfg.HotTTL)
	return &thread, true
}

func (s *Service) Set(ctx context.Context, key string, thread *composerdomain.Thread) {
	if !s.cfg.Enabled || thread == nil {
		return
	}

	payload, err := json.Marshal(thread)
	if err != nil {
		s.log.Warn("failed to encode thread for cache", zap.Error(err))
		return
	}

	now := s.clock.Now()
	if err := s.store.Set(ctx, key, payload, now, now.Add(s.cfg.TTL)); err != nil {
		s.log.Warn("cache store write failed", zap.Error(err))
		return
	}
	s.hot.Set(key, thread, s.cfg.HotTTL)
}

// Clear empties the shared store and this node's read-through layer.
// Other nodes keep serving entries already promoted into their own
// read-through layers until those expire, so a cleared entry can still
// be returned for up to HotTTL after Clear returns.
func (s *Service) Clear(ctx context.Context) error {
	s.hot.Flush()
	if err := s.store.Clear(ctx); err != nil {
		s.log.Error("cache clear failed", zap.Error(err))
		return domain.ErrUnavailable
	}
	return nil
}
