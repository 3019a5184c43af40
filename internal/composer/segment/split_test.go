package segment

import (
	"strings"
	"testing"
	"unicode"
	"unicode/utf8"
)

func wordOpts(max int) SplitOptions {
	return SplitOptions{MaxLength: max, PreserveWords: true}
}

func numberedOpts(max int) SplitOptions {
	return SplitOptions{MaxLength: max, PreserveWords: true, AddNumbers: true}
}

func TestSplitRejectsEmptyContent(t *testing.T) {
	if _, _, err := Split("   \n\t ", wordOpts(280)); err != ErrEmptyContent {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
}

func TestSplitRejectsInvalidMaxLength(t *testing.T) {
	if _, _, err := Split("hello", wordOpts(0)); err != ErrInvalidMaxLength {
		t.Fatalf("expected ErrInvalidMaxLength, got %v", err)
	}
}

func TestSplitShortContentSingleSegment(t *testing.T) {
	segments, total, err := Split("hello world", wordOpts(280))
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if total != 1 || len(segments) != 1 || segments[0] != "hello world" {
		t.Fatalf("expected single segment, got %d: %q", total, segments)
	}
}

func TestSplitRespectsMaxLength(t *testing.T) {
	content := strings.Repeat("lorem ipsum dolor sit amet ", 60)
	for _, max := range []int{40, 100, 280} {
		segments, _, err := Split(content, wordOpts(max))
		if err != nil {
			t.Fatalf("split max=%d: %v", max, err)
		}
		for i, s := range segments {
			if Length(s) > max {
				t.Fatalf("max=%d segment %d length %d: %q", max, i, Length(s), s)
			}
		}
	}
}

func TestSplitNeverBreaksFittingWords(t *testing.T) {
	content := strings.Repeat("alpha beta gamma delta ", 40)
	segments, _, err := Split(content, wordOpts(50))
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	known := map[string]bool{"alpha": true, "beta": true, "gamma": true, "delta": true}
	for _, s := range segments {
		for _, w := range strings.Fields(s) {
			if !known[w] {
				t.Fatalf("word broken across segments: %q in %q", w, s)
			}
		}
	}
}

// assertRejoins checks that the segments, in order, tile the normalized
// content exactly, with nothing but a whitespace run swallowed at each
// boundary. Whitespace inside a segment must match the source verbatim.
func assertRejoins(t *testing.T, normalized string, segments []string) {
	t.Helper()
	pos := 0
	for i, s := range segments {
		if !strings.HasPrefix(normalized[pos:], s) {
			t.Fatalf("segment %d diverges from source at offset %d:\nwant prefix of %q\ngot  %q",
				i+1, pos, normalized[pos:], s)
		}
		pos += len(s)
		for pos < len(normalized) {
			r, size := utf8.DecodeRuneInString(normalized[pos:])
			if !unicode.IsSpace(r) {
				break
			}
			pos += size
		}
	}
	if pos != len(normalized) {
		t.Fatalf("segments end at offset %d, source has %d bytes", pos, len(normalized))
	}
}

func TestSplitRoundTrip(t *testing.T) {
	content := strings.Repeat("the quick brown fox jumps over the lazy dog ", 30)

	segments, _, err := Split(content, wordOpts(100))
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	assertRejoins(t, Clean(content), segments)
}

func TestSplitNumberedRoundTrip(t *testing.T) {
	content := strings.Repeat("pack my box with five dozen liquor jugs ", 25)

	segments, total, err := Split(content, numberedOpts(80))
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	numbered := Number(segments, DefaultNumberFormat, total)

	stripped := make([]string, len(numbered))
	for i, s := range numbered {
		prefix := RenderPrefix(DefaultNumberFormat, i+1, total)
		if !strings.HasPrefix(s, prefix) {
			t.Fatalf("segment %d missing prefix %q: %q", i+1, prefix, s)
		}
		stripped[i] = strings.TrimPrefix(s, prefix)
	}
	assertRejoins(t, Clean(content), stripped)
}

// Paragraph breaks survive segmentation: a blank line between two
// sentences that fit in one segment stays in that segment untouched.
func TestSplitKeepsParagraphBreaks(t *testing.T) {
	content := "First paragraph line.\n\nSecond paragraph line."

	segments, total, err := Split(content, wordOpts(280))
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected 1 segment, got %d", total)
	}
	if segments[0] != Clean(content) {
		t.Fatalf("paragraph break lost:\nwant %q\ngot  %q", Clean(content), segments[0])
	}
}

// When a segment must end inside multi-line content, the break lands on
// a newline run rather than mid-paragraph, and every segment still
// rejoins into the source verbatim.
func TestSplitBreaksAtNewlineRuns(t *testing.T) {
	content := "alpha beta gamma\n\ndelta epsilon zeta\n\neta theta iota"

	segments, total, err := Split(content, wordOpts(24))
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected 3 segments, got %d: %q", total, segments)
	}
	want := []string{"alpha beta gamma", "delta epsilon zeta", "eta theta iota"}
	for i, s := range segments {
		if s != want[i] {
			t.Fatalf("segment %d: want %q, got %q", i+1, want[i], s)
		}
	}
	assertRejoins(t, Clean(content), segments)
}

// 50 repetitions of "Hello world. " at the platform limit produce a
// three-segment thread whose numbered segments all fit.
func TestSplitHelloWorldThread(t *testing.T) {
	content := strings.Repeat("Hello world. ", 50)

	segments, total, err := Split(content, numberedOpts(280))
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected 3 segments, got %d", total)
	}

	numbered := Number(segments, DefaultNumberFormat, total)
	for i, s := range numbered {
		if Length(s) > 280 {
			t.Fatalf("segment %d too long: %d", i+1, Length(s))
		}
		prefix := RenderPrefix(DefaultNumberFormat, i+1, 3)
		if !strings.HasPrefix(s, prefix) {
			t.Fatalf("segment %d missing prefix %q", i+1, prefix)
		}
	}
}

// A single 300-character token cannot respect word boundaries and is
// hard-split into grapheme-aligned substrings of the original.
func TestSplitOversizedToken(t *testing.T) {
	token := strings.Repeat("x", 300)

	segments, total, err := Split(token, wordOpts(280))
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 segments, got %d", total)
	}
	if Length(segments[0]) != 280 || Length(segments[1]) != 20 {
		t.Fatalf("unexpected segment lengths %d/%d", Length(segments[0]), Length(segments[1]))
	}
	if segments[0]+segments[1] != token {
		t.Fatalf("hard split does not reassemble the original token")
	}
}

func TestSplitHardSplitRespectsGraphemes(t *testing.T) {
	// Each flag is two runes; a byte- or rune-based cut would land inside one.
	token := strings.Repeat("\U0001F1E6\U0001F1F7", 30) // regional indicator pair
	segments, _, err := Split(token, wordOpts(7))
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	var reassembled strings.Builder
	for i, s := range segments {
		if Length(s) > 7 {
			t.Fatalf("segment %d too long: %d", i, Length(s))
		}
		reassembled.WriteString(s)
	}
	if reassembled.String() != token {
		t.Fatalf("grapheme hard split lost content")
	}
}

func TestSplitWithoutWordPreservation(t *testing.T) {
	content := "abcdef ghijkl"
	segments, _, err := Split(content, SplitOptions{MaxLength: 5, PreserveWords: false})
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	var reassembled strings.Builder
	for _, s := range segments {
		if Length(s) > 5 {
			t.Fatalf("segment too long: %q", s)
		}
		reassembled.WriteString(s)
	}
	if reassembled.String() != content {
		t.Fatalf("plain split lost content: %q", reassembled.String())
	}
}

// Crossing the 9->10 digit boundary forces a second sizing round: the
// width reserved for a single-digit total is too narrow once the split
// lands in double digits.
func TestSplitSizingDigitBoundary(t *testing.T) {
	content := strings.TrimSpace(strings.Repeat("x ", 20))

	segments, total, err := Split(content, numberedOpts(7))
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if total != 20 {
		t.Fatalf("expected 20 segments, got %d", total)
	}
	numbered := Number(segments, DefaultNumberFormat, total)
	for i, s := range numbered {
		if Length(s) > 7 {
			t.Fatalf("segment %d exceeds max after numbering: %q", i+1, s)
		}
	}
}

// Same property at the 99->100 boundary.
func TestSplitSizingHundredBoundary(t *testing.T) {
	content := strings.TrimSpace(strings.Repeat("ab ", 150))

	segments, total, err := Split(content, numberedOpts(10))
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if total < 100 {
		t.Fatalf("expected at least 100 segments, got %d", total)
	}
	numbered := Number(segments, DefaultNumberFormat, total)
	for i, s := range numbered {
		if Length(s) > 10 {
			t.Fatalf("segment %d exceeds max after numbering: %q", i+1, s)
		}
	}
}

func TestSplitNumberingTooWide(t *testing.T) {
	content := strings.Repeat("word ", 20)
	_, _, err := Split(content, SplitOptions{
		MaxLength:     4,
		PreserveWords: true,
		AddNumbers:    true,
		NumberFormat:  "part {current} of {total}: ",
	})
	if err != ErrNumberingTooWide {
		t.Fatalf("expected ErrNumberingTooWide, got %v", err)
	}
}

func TestSplitPropertyAllLengthsBounded(t *testing.T) {
	contents := []string{
		strings.Repeat("naïve café déjà-vu \U0001F600 ", 40),
		strings.Repeat("a bb ccc dddd eeeee ffffff ", 35),
		strings.Repeat("\U0001F44D\U0001F3FD ", 120),
	}
	for _, content := range contents {
		for _, max := range []int{12, 47, 280} {
			segments, total, err := Split(content, numberedOpts(max))
			if err != nil {
				t.Fatalf("split max=%d: %v", max, err)
			}
			for i, s := range Number(segments, DefaultNumberFormat, total) {
				if Length(s) > max {
					t.Fatalf("max=%d segment %d length %d", max, i+1, Length(s))
				}
			}
		}
	}
}
