// Package scholar verifies bibliography titles against external
// metadata sources. Entries with a DOI are checked against CrossRef
// only, since a DOI lookup is authoritative. Entries without a DOI
// fall back to arXiv (when an arXiv ID is present), then DBLP, then
// Semantic Scholar.
package scholar

import (
	"regexp"
	"strings"
)

// Confidence grades how trustworthy a match is.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Match is a title found at an external source.
type Match struct {
	Source     string
	Title      string
	Confidence Confidence
	URL        string
}

// Status describes the outcome of querying one source.
type Status struct {
	Source string
	Found  bool
	Err    error
}

// Result collects everything learned about one entry.
type Result struct {
	EntryKey     string
	CurrentTitle string
	Match        *Match
	CaseDiffers  bool
	Statuses     []Status
}

// Errored reports whether any source failed during the lookup.
func (r *Result) Errored() bool {
	for _, s := range r.Statuses {
		if s.Err != nil {
			return true
		}
	}
	return false
}

var (
	bracketRe     = regexp.MustCompile(`[{}\[\]]`)
	spaceRe       = regexp.MustCompile(`\s+`)
	comparePunct  = regexp.MustCompile(`[:\-–—,.'"?!]`)
	latexCmdRe    = regexp.MustCompile(`\\[a-zA-Z]+`)
	braceOnlyRe   = regexp.MustCompile(`[{}]`)
	arxivInURLRe  = regexp.MustCompile(`arxiv\.org/abs/(\d{4}\.\d+)`)
	arxivEprintRe = regexp.MustCompile(`^\d{4}\.\d+`)
)

// NormalizeForComparison lowercases a title and strips braces and
// punctuation so two renderings of the same title compare equal.
func NormalizeForComparison(text string) string {
	if text == "" {
		return ""
	}
	text = bracketRe.ReplaceAllString(text, "")
	text = strings.ToLower(strings.TrimSpace(spaceRe.ReplaceAllString(text, " ")))
	text = comparePunct.ReplaceAllString(text, " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
}

// CleanForSearch strips braces and LaTeX commands from a title so it
// can be used as an API search query.
func CleanForSearch(title string) string {
	if title == "" {
		return ""
	}
	title = bracketRe.ReplaceAllString(title, "")
	replacer := strings.NewReplacer(
		`\&`, "&",
		`\'`, "'",
		`\$`, "",
		`\textasciicircum`, "^",
	)
	title = replacer.Replace(title)
	title = latexCmdRe.ReplaceAllString(title, "")
	return strings.TrimSpace(spaceRe.ReplaceAllString(title, " "))
}

// TitlesMatch reports whether two titles are the same text, ignoring
// case, braces and punctuation.
func TitlesMatch(a, b string) bool {
	return NormalizeForComparison(a) == NormalizeForComparison(b)
}

// CaseDiffers reports whether two titles carry the same words but
// differ in capitalization.
func CaseDiffers(a, b string) bool {
	if !TitlesMatch(a, b) {
		return false
	}
	ca := strings.TrimSpace(braceOnlyRe.ReplaceAllString(a, ""))
	cb := strings.TrimSpace(braceOnlyRe.ReplaceAllString(b, ""))
	return ca != cb
}

// ArxivID extracts an arXiv identifier from an entry's eprint,
// archiveprefix and url fields. Empty when none is present.
func ArxivID(eprint, archivePrefix, url string) string {
	if eprint != "" {
		if strings.Contains(strings.ToLower(archivePrefix), "arxiv") || arxivEprintRe.MatchString(eprint) {
			return eprint
		}
	}
	if m := arxivInURLRe.FindStringSubmatch(url); m != nil {
		return m[1]
	}
	return ""
}
