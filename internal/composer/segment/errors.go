package segment

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyContent     = errors.New("empty_content")
	ErrInvalidMaxLength = errors.New("invalid_max_length")
	ErrNumberingTooWide = errors.New("numbering_too_wide")
)

// OverflowError reports a segment that exceeds the maximum length after
// numbering. It indicates a defect in the sizing loop, not bad input.
type OverflowError struct {
	Order          int
	CharacterCount int
	MaxLength      int
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("segment %d overflows: %d > %d", e.Order, e.CharacterCount, e.MaxLength)
}

// Overflow returns how many grapheme clusters over the limit the segment is.
func (e *OverflowError) Overflow() int {
	return e.CharacterCount - e.MaxLength
}
