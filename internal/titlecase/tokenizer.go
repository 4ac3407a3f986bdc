package titlecase

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SegmentKind tags one tokenized span of a title.
type SegmentKind int

const (
	// SegmentProtected is a brace-delimited span copied verbatim.
	SegmentProtected SegmentKind = iota
	// SegmentWord is a token that participates in casing decisions.
	SegmentWord
	// SegmentPunct is a non-space token with no casing decision
	// (punctuation-only, or a lone digit).
	SegmentPunct
	// SegmentSpace is a run of whitespace, preserved verbatim.
	SegmentSpace
)

// String returns the segment kind name, mostly for test failure output.
func (k SegmentKind) String() string {
	switch k {
	case SegmentProtected:
		return "protected"
	case SegmentWord:
		return "word"
	case SegmentPunct:
		return "punct"
	case SegmentSpace:
		return "space"
	default:
		return "unknown"
	}
}

// Segment is one tagged span of the input title. Concatenating the
// Text of all segments reproduces the input byte-for-byte.
type Segment struct {
	Kind SegmentKind
	Text string
}

// Tokenize splits a title into protected, word, punctuation, and
// whitespace segments. Protected spans are the shortest brace-delimited
// substrings scanned left to right; an opening brace with no closing
// brace after it is ordinary text. Tokenize never fails.
func Tokenize(title string) []Segment {
	var segs []Segment
	rest := title
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			break
		}
		close := strings.IndexByte(rest[open:], '}')
		if close < 0 {
			break
		}
		segs = appendPlain(segs, rest[:open])
		segs = append(segs, Segment{Kind: SegmentProtected, Text: rest[open : open+close+1]})
		rest = rest[open+close+1:]
	}
	return appendPlain(segs, rest)
}

// appendPlain splits a plain-text span into alternating space and
// token segments and appends them.
func appendPlain(segs []Segment, text string) []Segment {
	start := 0
	inSpace := false
	flush := func(end int) {
		if end == start {
			return
		}
		chunk := text[start:end]
		if inSpace {
			segs = append(segs, Segment{Kind: SegmentSpace, Text: chunk})
		} else {
			segs = append(segs, Segment{Kind: classifyToken(chunk), Text: chunk})
		}
	}
	for i, r := range text {
		isSpace := unicode.IsSpace(r)
		if i == 0 {
			inSpace = isSpace
			continue
		}
		if isSpace != inSpace {
			flush(i)
			start = i
			inSpace = isSpace
		}
	}
	flush(len(text))
	return segs
}

// classifyToken decides whether a non-space token is a word. A word
// must contain at least one letter or digit; a lone digit or a
// punctuation-only token never receives a casing decision.
func classifyToken(tok string) SegmentKind {
	if utf8.RuneCountInString(tok) == 1 {
		r, _ := utf8.DecodeRuneInString(tok)
		if unicode.IsDigit(r) {
			return SegmentPunct
		}
	}
	for _, r := range tok {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return SegmentWord
		}
	}
	return SegmentPunct
}
