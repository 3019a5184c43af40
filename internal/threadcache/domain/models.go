// Package domain defines the content-addressed result cache model.
package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Entry is one cached thread, keyed by the hash of normalized content
// plus segmentation options. Entries are replaced wholesale, never
// mutated in place; a stale key simply expires.
type Entry struct {
	Key       string         `gorm:"primaryKey;type:text"`
	Thread    datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time      `gorm:"not null"`
	ExpiresAt time.Time      `gorm:"not null;index"`
}

func (Entry) TableName() string { return "thread_cache_entries" }
