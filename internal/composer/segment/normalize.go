// Package segment implements the text segmentation core: normalization,
// grapheme-aware counting, word-boundary splitting, ordinal numbering and
// per-segment validation.
package segment

import (
	"regexp"
	"strings"
)

var (
	lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

	// Three or more consecutive blank lines collapse to a single one.
	blankLineRuns = regexp.MustCompile(`\n{4,}`)
)

// Clean normalizes line endings to "\n", collapses runs of three or more
// blank lines into a single blank line and trims surrounding whitespace.
// Clean(Clean(x)) == Clean(x) for all x.
func Clean(content string) string {
	content = lineEndings.Replace(content)
	content = blankLineRuns.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}
