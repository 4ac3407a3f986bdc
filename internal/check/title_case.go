package check

import (
	"fmt"

	"git.home.luguber.info/inful/bibcheck/internal/bibtex"
	"git.home.luguber.info/inful/bibcheck/internal/titlecase"
)

// TitleSuggestion is one proposed title rewrite. It carries the entry
// itself so callers rewrite the right one even when citation keys are
// duplicated across a file.
type TitleSuggestion struct {
	Entry     *bibtex.Entry
	EntryKey  string
	Current   string
	Suggested string
}

// TitleCaseChecker flags titles whose capitalization differs from the
// configured style. Comparison ignores whitespace layout, so entries
// with wrapped titles are not falsely flagged.
type TitleCaseChecker struct {
	caser *titlecase.Caser
}

// NewTitleCaseChecker builds the checker around a configured caser.
func NewTitleCaseChecker(caser *titlecase.Caser) *TitleCaseChecker {
	return &TitleCaseChecker{caser: caser}
}

// Name returns the checker identifier.
func (c *TitleCaseChecker) Name() string { return "title-case" }

// Suggestions returns the proposed rewrite for every entry whose title
// would change. Entries without a title are skipped.
func (c *TitleCaseChecker) Suggestions(doc *bibtex.Document) []TitleSuggestion {
	var out []TitleSuggestion
	for _, entry := range doc.Entries {
		title := entry.Field("title")
		if title == "" {
			continue
		}
		suggested := c.caser.Suggest(title)
		if !titlecase.Changed(title, suggested) {
			continue
		}
		out = append(out, TitleSuggestion{
			Entry:     entry,
			EntryKey:  entry.Key,
			Current:   title,
			Suggested: suggested,
		})
	}
	return out
}

// Check wraps Suggestions into issues.
func (c *TitleCaseChecker) Check(doc *bibtex.Document) []Issue {
	var issues []Issue
	for _, s := range c.Suggestions(doc) {
		issues = append(issues, Issue{
			EntryKey: s.EntryKey,
			Severity: SeverityWarning,
			Rule:     c.Name(),
			Message:  "title not in title case",
			Detail:   fmt.Sprintf("current: %s", s.Current),
			Fix:      s.Suggested,
		})
	}
	return issues
}
