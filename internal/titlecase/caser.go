package titlecase

import (
	"strings"
	"unicode"

	"git.home.luguber.info/inful/bibcheck/internal/util/sets"
)

// Caser re-capitalizes bibliographic titles according to one style and
// one set of exception tables. A Caser is immutable after construction
// and safe for concurrent use; Suggest performs no I/O and never fails.
type Caser struct {
	style     Style
	tables    *Tables
	stopwords sets.Set[string]
}

// NewCaser builds a caser for the given style. A nil tables argument
// selects the built-in exception tables; a nil stopword set selects
// the style's own stopwords (a non-nil set replaces them).
func NewCaser(style Style, tables *Tables, stopwords sets.Set[string]) *Caser {
	if tables == nil {
		tables = DefaultTables()
	}
	if stopwords == nil {
		stopwords = style.Stopwords
	}
	return &Caser{style: style, tables: tables, stopwords: stopwords}
}

// SuggestTitleCase converts a title using the named style and the
// default exception tables. A nil stopword set uses the style's own.
func SuggestTitleCase(title string, stopwords sets.Set[string], styleName string) string {
	return NewCaser(GetStyle(styleName), nil, stopwords).Suggest(title)
}

// NormalizeSpace collapses every whitespace run to a single space and
// trims the ends. Change detection compares normalized forms so that
// layout differences never count as casing issues.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Changed reports whether suggested differs from original beyond
// whitespace layout.
func Changed(original, suggested string) bool {
	return NormalizeSpace(original) != NormalizeSpace(suggested)
}

// Suggest returns the re-cased title. Protected spans pass through
// byte-for-byte, whitespace layout is preserved, and outside protected
// spans only letter casing may change.
func (c *Caser) Suggest(title string) string {
	if title == "" {
		return ""
	}
	segs := Tokenize(title)

	totalWords := 0
	for _, seg := range segs {
		if seg.Kind == SegmentWord {
			totalWords++
		}
	}

	var out strings.Builder
	out.Grow(len(title))
	wordIndex := 0
	prevToken := "" // last plain word/punct token; protected spans do not count
	for _, seg := range segs {
		switch seg.Kind {
		case SegmentProtected, SegmentSpace:
			out.WriteString(seg.Text)
		case SegmentPunct:
			out.WriteString(seg.Text)
			prevToken = seg.Text
		case SegmentWord:
			forced := wordIndex == 0 ||
				(c.style.CapitalizeLastWord && wordIndex == totalWords-1) ||
				c.afterSubtitleDelimiter(prevToken)
			out.WriteString(c.caseWord(seg.Text, forced))
			prevToken = seg.Text
			wordIndex++
		}
	}
	return out.String()
}

// afterSubtitleDelimiter reports whether the previous token ends a
// subtitle-introducing clause.
func (c *Caser) afterSubtitleDelimiter(prev string) bool {
	if prev == "" {
		return false
	}
	for _, d := range c.style.SubtitleDelimiters {
		if strings.HasSuffix(prev, d) {
			return true
		}
	}
	return false
}

// caseWord cases one word token, preserving leading and trailing
// punctuation around the cased core.
func (c *Caser) caseWord(word string, forced bool) string {
	prefix, core, suffix := splitAffixes(word)
	if core == "" {
		return word
	}
	return prefix + c.caseCore(core, forced) + suffix
}

// caseCore applies the casing rules to a punctuation-stripped core.
// Precedence: known mixed-case exception, acronym, internal capitals,
// slash compound, hyphen compound, plain word.
func (c *Caser) caseCore(core string, forced bool) string {
	if canon, ok := c.tables.Canonical(core); ok {
		return canon
	}
	if isAcronym(core) {
		return core
	}
	if hasInternalCaps(core) {
		return core
	}
	if strings.Contains(core, "/") {
		parts := strings.Split(core, "/")
		for i, part := range parts {
			if part == "" {
				continue
			}
			// Only the first sub-part inherits the forced status.
			parts[i] = c.caseCore(part, forced && i == 0)
		}
		return strings.Join(parts, "/")
	}
	if strings.Contains(core, "-") {
		return c.caseHyphenated(core, forced)
	}
	if c.isMajor(core, forced) {
		return capitalize(core)
	}
	return strings.ToLower(core)
}

// caseHyphenated cases each part of a hyphenated compound. Part 0
// follows the word's own major decision; later parts follow the
// style's hyphen policy. A known lowercase prefix stays lowercase
// whenever the word is not forced.
func (c *Caser) caseHyphenated(core string, forced bool) string {
	wordMajor := c.isMajor(core, forced)
	parts := strings.Split(core, "-")
	for i, part := range parts {
		if part == "" {
			continue
		}
		if canon, ok := c.tables.Canonical(part); ok {
			parts[i] = canon
			continue
		}
		if isAcronym(part) || hasInternalCaps(part) {
			continue
		}
		lower := strings.ToLower(part)
		if !forced && c.tables.LowercasePrefixes.Has(Fold(part)) {
			parts[i] = lower
			continue
		}
		var major bool
		if i == 0 {
			major = wordMajor
		} else {
			major = forced ||
				c.style.HyphenCapitalizeAllParts ||
				cleanLength(part) >= c.style.MinLengthCapitalize ||
				!c.stopwords.Has(lower)
		}
		if major {
			parts[i] = capitalize(part)
		} else {
			parts[i] = lower
		}
	}
	return strings.Join(parts, "-")
}

// isMajor reports whether a word is capitalized under the plain rules:
// forced position, cleaned length at or above the style minimum, or
// not a stopword.
func (c *Caser) isMajor(core string, forced bool) bool {
	return forced ||
		cleanLength(core) >= c.style.MinLengthCapitalize ||
		!c.stopwords.Has(strings.ToLower(core))
}

// splitAffixes separates leading and trailing non-alphanumeric runes
// from the cased core. Internal punctuation stays in the core.
func splitAffixes(word string) (prefix, core, suffix string) {
	runes := []rune(word)
	start := 0
	for start < len(runes) && !isAlnum(runes[start]) {
		start++
	}
	end := len(runes)
	for end > start && !isAlnum(runes[end-1]) {
		end--
	}
	return string(runes[:start]), string(runes[start:end]), string(runes[end:])
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// cleanLength counts the alphanumeric runes of a token.
func cleanLength(s string) int {
	n := 0
	for _, r := range s {
		if isAlnum(r) {
			n++
		}
	}
	return n
}

// isAcronym reports whether a core is a fully upper-case term of
// length two or more: at least one letter, no lowercase letters.
func isAcronym(s string) bool {
	letters := 0
	runes := 0
	for _, r := range s {
		runes++
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return letters > 0 && runes >= 2
}

// hasInternalCaps reports whether the core contains an upper-case
// letter immediately after a lower-case one ("ResNet"-shaped terms).
func hasInternalCaps(s string) bool {
	prevLower := false
	for _, r := range s {
		if prevLower && unicode.IsUpper(r) {
			return true
		}
		prevLower = unicode.IsLower(r)
	}
	return false
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	for i, r := range s {
		return string(unicode.ToUpper(r)) + strings.ToLower(s[i+len(string(r)):])
	}
	return s
}
