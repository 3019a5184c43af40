package segment

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

const (
	DefaultMaxLength    = 280
	DefaultNumberFormat = "{current}/{total} "

	// The reserved prefix width only grows, and only at digit-count
	// boundaries of the segment count (9->10, 99->100), so the sizing
	// loop settles well inside this bound.
	maxSizingRounds = 4
)

// SplitOptions controls how content is divided into segments.
type SplitOptions struct {
	MaxLength     int
	PreserveWords bool
	AddNumbers    bool
	NumberFormat  string
}

// Split divides normalized content into segments whose grapheme-aware
// length fits MaxLength, reserving room for the numbering prefix when
// AddNumbers is set. It returns the raw segments without prefixes plus
// the converged segment total; callers apply Number afterwards.
//
// The prefix width depends on the segment count and the segment count
// depends on the reserved prefix width. Split resolves the circularity
// with a bounded fixed-point loop: reserve a width for a trial count,
// split, recompute the true width, and re-split only while the true
// width exceeds the reservation. Because a wider reservation can only
// keep or raise the segment count, the reserved width is monotonically
// non-decreasing and the loop terminates within maxSizingRounds.
func Split(content string, opts SplitOptions) ([]string, int, error) {
	content = Clean(content)
	if content == "" {
		return nil, 0, ErrEmptyContent
	}
	if opts.MaxLength <= 0 {
		return nil, 0, ErrInvalidMaxLength
	}

	if !opts.AddNumbers {
		segments := splitPlain(content, opts.MaxLength, opts.PreserveWords)
		return segments, len(segments), nil
	}

	format := opts.NumberFormat
	if format == "" {
		format = DefaultNumberFormat
	}

	trialTotal := Length(content)/opts.MaxLength + 1
	reserved := PrefixWidth(format, trialTotal)

	var segments []string
	for round := 0; round < maxSizingRounds; round++ {
		effectiveMax := opts.MaxLength - reserved
		if effectiveMax < 1 {
			return nil, 0, ErrNumberingTooWide
		}
		segments = splitPlain(content, effectiveMax, opts.PreserveWords)

		width := PrefixWidth(format, len(segments))
		if width <= reserved {
			// The realized prefix fits inside the reservation; a
			// narrower true width never invalidates the split.
			return segments, len(segments), nil
		}
		reserved = width
	}
	return nil, 0, ErrNumberingTooWide
}

// span is one word in the running segment together with the whitespace
// run that preceded it in the source. The first span of a segment
// carries an empty sep; the run ahead of it became the join whitespace
// at the previous segment boundary.
type span struct {
	sep  string
	word string
}

// splitPlain greedily accumulates whitespace-delimited words while the
// running segment stays within max, keeping the original whitespace
// runs between words so the segments rejoin into the normalized input
// verbatim. A word's preceding run counts toward max with its grapheme
// length. A single word longer than max is hard-split on
// grapheme-cluster boundaries into standalone segments.
func splitPlain(content string, max int, preserveWords bool) []string {
	if !preserveWords {
		return hardSplit(content, max)
	}

	var segments []string
	var current []span
	currentLen := 0

	render := func(spans []span) string {
		var b strings.Builder
		for _, sp := range spans {
			b.WriteString(sp.sep)
			b.WriteString(sp.word)
		}
		return b.String()
	}

	// breakSegment emits a leading portion of the running segment. The
	// cut lands on the last newline run when the segment contains one,
	// keeping paragraphs together, and on the overflow point otherwise.
	// The whitespace run at the cut becomes the join between segments.
	breakSegment := func() {
		cut := -1
		for i := 1; i < len(current); i++ {
			if strings.ContainsRune(current[i].sep, '\n') {
				cut = i
			}
		}
		if cut == -1 {
			segments = append(segments, render(current))
			current = nil
			currentLen = 0
			return
		}
		segments = append(segments, render(current[:cut]))
		rest := make([]span, len(current)-cut)
		copy(rest, current[cut:])
		rest[0].sep = ""
		current = rest
		currentLen = 0
		for _, sp := range current {
			currentLen += Length(sp.sep) + Length(sp.word)
		}
	}

	appendWord := func(sep, word string, wordLen int) {
		for {
			if len(current) == 0 {
				sep = ""
			}
			need := Length(sep) + wordLen
			if len(current) == 0 || currentLen+need <= max {
				current = append(current, span{sep: sep, word: word})
				currentLen += need
				return
			}
			breakSegment()
		}
	}

	rest := content
	for rest != "" {
		var sep, word string
		sep, word, rest = nextToken(rest)

		wordLen := Length(word)
		if wordLen > max {
			if len(current) > 0 {
				segments = append(segments, render(current))
				current = nil
				currentLen = 0
			}
			segments = append(segments, hardSplit(word, max)...)
			continue
		}
		appendWord(sep, word, wordLen)
	}
	if len(current) > 0 {
		segments = append(segments, render(current))
	}

	return segments
}

// nextToken peels the leading whitespace run and the word that follows
// it off s. Clean guarantees s neither starts nor ends with whitespace,
// so sep is empty only for the first token.
func nextToken(s string) (sep, word, rest string) {
	i := 0
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !unicode.IsSpace(r) {
			break
		}
		i += size
	}
	j := i
	for j < len(s) {
		r, size := utf8.DecodeRuneInString(s[j:])
		if unicode.IsSpace(r) {
			break
		}
		j += size
	}
	return s[:i], s[i:j], s[j:]
}

// hardSplit cuts text into max-sized pieces, never inside a grapheme
// cluster.
func hardSplit(text string, max int) []string {
	var out []string
	var current strings.Builder
	count := 0

	graphemes := uniseg.NewGraphemes(text)
	for graphemes.Next() {
		if count == max {
			out = append(out, current.String())
			current.Reset()
			count = 0
		}
		current.WriteString(graphemes.Str())
		count++
	}
	if count > 0 {
		out = append(out, current.String())
	}
	return out
}
