package segment

import "github.com/rivo/uniseg"

// Length returns the user-perceived length of text in grapheme clusters.
// Multi-codepoint emoji and combining-mark sequences count as one unit,
// matching how the target platform displays and limits text. Counting
// bytes or runes instead would over-count exactly the content that is
// closest to the limit.
func Length(text string) int {
	if text == "" {
		return 0
	}
	return uniseg.GraphemeClusterCount(text)
}
