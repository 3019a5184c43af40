// Package repository provides the cache entry stores: gorm-backed for
// shared deployments, in-memory for tests and single-node development.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/threadly/internal/threadcache/domain"
	"gorm.io/gorm"
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Get(ctx context.Context, key string, now time.Time) ([]byte, bool, error) {
	var entry domain.Entry
	err := s.db.WithContext(ctx).
		Where("key = ? AND expires_at > ?", key, now.UTC()).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return entry.Thread, true, nil
}

// Set replaces any existing entry under key; last writer wins.
func (s *GormStore) Set(ctx context.Context, key string, payload []byte, now, expiresAt time.Time) error {
	return s.db.WithContext(ctx).Exec(
		`INSERT INTO thread_cache_entries (key, thread, created_at, expires_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (key) DO UPDATE SET thread = excluded.thread,
		                                 created_at = excluded.created_at,
		                                 expires_at = excluded.expires_at`,
		key, payload, now.UTC(), expiresAt.UTC(),
	).Error
}

func (s *GormStore) Clear(ctx context.Context) error {
	return s.db.WithContext(ctx).Exec(`DELETE FROM thread_cache_entries`).Error
}
