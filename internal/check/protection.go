package check

import (
	"fmt"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/bibcheck/internal/bibtex"
	"git.home.luguber.info/inful/bibcheck/internal/titlecase"
	"git.home.luguber.info/inful/bibcheck/internal/util/sets"
)

// Roman numerals never flagged as acronyms (Part II, Volume IX, ...).
var romanNumerals = sets.New(
	"I", "II", "III", "IV", "V", "VI", "VII", "VIII", "IX", "X",
	"XI", "XII", "XIII", "XIV", "XV", "XVI", "XX", "XXI",
)

const (
	// minAcronymLength avoids single-letter acronym false positives.
	minAcronymLength = 2
	// DefaultProtectionMinLength is the default minimum word length
	// for mixed-case detection.
	DefaultProtectionMinLength = 3
)

var (
	// Mixed case: a lowercase-to-uppercase transition, or a second
	// capital inside a capitalized word.
	regexMixed = regexp.MustCompile(`\b(?:[a-z]+[A-Z][a-zA-Z]*)|(?:[A-Z][a-z]*[A-Z][a-zA-Z]*)\b`)
	// All-caps acronyms of two letters or more.
	regexAllCaps = regexp.MustCompile(`\b[A-Z]{2,}\b`)
	// Letters followed by digits (model names like ResNet50); pure
	// numbers are excluded by requiring a letter prefix.
	regexNumeric = regexp.MustCompile(`\b[A-Za-z]+\d+[A-Za-z0-9\-]*\b`)
	// Braced spans, blanked before scanning so protected terms are
	// not re-flagged.
	regexBraced = regexp.MustCompile(`\{[^{}]*\}`)
)

// ProtectionChecker flags technical terms in titles that should be
// brace-protected so BibTeX styles cannot lowercase them: acronyms,
// mixed-case words, terms with digits, and known vocabulary terms.
type ProtectionChecker struct {
	tables    *titlecase.Tables
	minLength int
}

// NewProtectionChecker builds the checker. tables supplies the term
// vocabulary (extend it via Tables.WithVocabulary); minLength <= 0
// selects the default.
func NewProtectionChecker(tables *titlecase.Tables, minLength int) *ProtectionChecker {
	if tables == nil {
		tables = titlecase.DefaultTables()
	}
	if minLength <= 0 {
		minLength = DefaultProtectionMinLength
	}
	return &ProtectionChecker{tables: tables, minLength: minLength}
}

// Name returns the checker identifier.
func (c *ProtectionChecker) Name() string { return "term-protection" }

// Check scans every title for unprotected terms.
func (c *ProtectionChecker) Check(doc *bibtex.Document) []Issue {
	var issues []Issue
	for _, entry := range doc.Entries {
		title := entry.Field("title")
		if title == "" {
			continue
		}
		for _, f := range c.scanTitle(title, authorSurnames(entry.Field("author"))) {
			issues = append(issues, Issue{
				EntryKey: entry.Key,
				Severity: SeverityInfo,
				Rule:     c.Name(),
				Message:  fmt.Sprintf("unprotected term: %s", f.word),
				Detail:   f.reason,
				Fix:      fmt.Sprintf("{%s}", f.word),
			})
		}
	}
	return issues
}

type finding struct {
	word   string
	reason string
}

// scanTitle finds suspicious terms in one title. Braced spans are
// blanked (replaced by spaces of equal length) so positions stay
// stable while protected terms are skipped. Mostly-uppercase titles
// are ignored wholesale: they are shouting, not protecting.
func (c *ProtectionChecker) scanTitle(title string, surnames sets.Set[string]) []finding {
	clean := regexBraced.ReplaceAllStringFunc(title, func(m string) string {
		return strings.Repeat(" ", len(m))
	})

	if upperRatio(clean) > 0.7 {
		return nil
	}

	var found []finding
	for _, m := range regexMixed.FindAllString(clean, -1) {
		if len(m) < c.minLength {
			continue
		}
		found = append(found, finding{word: m, reason: "mixed case"})
	}
	for _, m := range regexAllCaps.FindAllString(clean, -1) {
		if romanNumerals.Has(m) || len(m) < minAcronymLength {
			continue
		}
		found = append(found, finding{word: m, reason: "acronym"})
	}
	for _, m := range regexNumeric.FindAllString(clean, -1) {
		found = append(found, finding{word: m, reason: "contains number"})
	}
	for _, word := range strings.Fields(clean) {
		trimmed := strings.Trim(word, ".,;:!?()[]'\"")
		if trimmed == "" {
			continue
		}
		if !c.tables.InVocabulary(trimmed) {
			continue
		}
		// Author surnames in the same entry are not protection
		// candidates; "Kalman" in a title by Kalman is a name.
		if surnames.Has(strings.ToLower(trimmed)) {
			continue
		}
		found = append(found, finding{word: trimmed, reason: "vocabulary"})
	}
	return dedupeFindings(found)
}

// dedupeFindings removes findings that are substrings of another
// finding, keeping the longest form of each term.
func dedupeFindings(found []finding) []finding {
	var out []finding
	for _, f := range found {
		redundant := false
		for j := 0; j < len(out); j++ {
			switch {
			case f.word == out[j].word:
				redundant = true
			case strings.Contains(out[j].word, f.word):
				redundant = true
			case strings.Contains(f.word, out[j].word):
				out = append(out[:j], out[j+1:]...)
				j--
			}
		}
		if !redundant {
			out = append(out, f)
		}
	}
	return out
}

// authorSurnames extracts lowercase author last names for
// false-positive filtering. Handles "Last, First and First Last".
func authorSurnames(author string) sets.Set[string] {
	surnames := sets.New[string]()
	if author == "" {
		return surnames
	}
	for _, part := range regexp.MustCompile(`\s+and\s+`).Split(author, -1) {
		part = strings.NewReplacer("{", "", "}", "").Replace(strings.TrimSpace(part))
		var surname string
		if comma := strings.Index(part, ","); comma >= 0 {
			surname = strings.TrimSpace(part[:comma])
		} else {
			tokens := strings.Fields(part)
			if len(tokens) > 0 {
				surname = tokens[len(tokens)-1]
			}
		}
		if surname != "" {
			surnames.Add(strings.ToLower(surname))
		}
	}
	return surnames
}

// upperRatio returns the share of uppercase characters in s.
func upperRatio(s string) float64 {
	if len(s) == 0 {
		return 0
	}
	upper := 0
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			upper++
		}
	}
	return float64(upper) / float64(len(s))
}
