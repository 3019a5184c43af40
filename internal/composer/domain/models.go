// Package domain contains the thread composition model shared by the
// pipeline, cache and HTTP layers.
package domain

import (
	"time"

	"github.com/smallbiznis/threadly/internal/composer/segment"
)

// Segment is one platform-size-bounded chunk of the output thread.
// CharacterCount is the grapheme-aware length of Content including any
// numbering prefix and never exceeds the requested max length in a
// successfully produced thread.
type Segment struct {
	Content        string `json:"content"`
	Order          int    `json:"order"`
	CharacterCount int    `json:"character_count"`
	Remaining      int    `json:"remaining"`
	IsWarning      bool   `json:"is_warning,omitempty"`
}

// SourceMetadata records where a thread came from.
type SourceMetadata struct {
	SourceURL   string    `json:"source_url,omitempty"`
	ContentHash string    `json:"content_hash"`
	Model       string    `json:"model,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
	CacheHit    bool      `json:"cache_hit"`
}

// Thread is the full ordered sequence of segments produced from one
// input. Segment orders are contiguous starting at 1.
type Thread struct {
	ID         string         `json:"id"`
	Segments   []Segment      `json:"segments"`
	TotalCount int            `json:"total_count"`
	Stats      segment.Stats  `json:"stats"`
	Source     SourceMetadata `json:"source"`
}

// Options are the per-request segmentation knobs. Zero values fall back
// to the service defaults from configuration.
type Options struct {
	MaxLength        int    `json:"max_length"`
	WarningThreshold int    `json:"warning_threshold"`
	AddNumbers       *bool  `json:"add_numbers,omitempty"`
	NumberFormat     string `json:"number_format"`
}
