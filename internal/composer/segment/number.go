package segment

import (
	"strconv"
	"strings"
)

// Number prefixes each segment with format, substituting {current} with
// the 1-based position and {total} with total.
//
// Number must only be called on the raw output of Split, after its
// sizing has converged. Calling it on already-numbered segments prefixes
// them again; that is the documented contract of this function, not a
// defect it guards against.
func Number(segments []string, format string, total int) []string {
	if format == "" {
		format = DefaultNumberFormat
	}
	out := make([]string, len(segments))
	for i, s := range segments {
		out[i] = RenderPrefix(format, i+1, total) + s
	}
	return out
}

// RenderPrefix expands the numbering format for one segment.
func RenderPrefix(format string, current, total int) string {
	r := strings.NewReplacer(
		"{current}", strconv.Itoa(current),
		"{total}", strconv.Itoa(total),
	)
	return r.Replace(format)
}

// PrefixWidth is the widest prefix the format can produce for a thread
// of total segments, i.e. the one rendered for the last segment.
func PrefixWidth(format string, total int) int {
	if total < 1 {
		total = 1
	}
	return Length(RenderPrefix(format, total, total))
}
