package check

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/bibcheck/internal/bibtex"
	"git.home.luguber.info/inful/bibcheck/internal/util/sets"
)

// DefaultEntryTypes are the entry types inspected by the missing-field
// checker when the user does not narrow the selection.
var DefaultEntryTypes = []string{"inproceedings", "article", "proceedings", "conference"}

// MissingFieldsChecker reports entries of selected types that lack
// required fields (month, publisher, ...).
type MissingFieldsChecker struct {
	Required   []string
	EntryTypes sets.Set[string]
}

// NewMissingFieldsChecker builds the checker; empty entryTypes selects
// the defaults.
func NewMissingFieldsChecker(required, entryTypes []string) *MissingFieldsChecker {
	if len(entryTypes) == 0 {
		entryTypes = DefaultEntryTypes
	}
	return &MissingFieldsChecker{
		Required:   cleanList(required),
		EntryTypes: sets.NewLower(entryTypes...),
	}
}

// Name returns the checker identifier.
func (c *MissingFieldsChecker) Name() string { return "missing-fields" }

// Check reports one issue per entry that misses at least one required
// field. With no required fields configured the checker is a no-op.
func (c *MissingFieldsChecker) Check(doc *bibtex.Document) []Issue {
	if len(c.Required) == 0 {
		return nil
	}
	var issues []Issue
	for _, entry := range doc.Entries {
		if !c.EntryTypes.Has(entry.Type) {
			continue
		}
		var missing []string
		for _, field := range c.Required {
			if !entry.Has(field) {
				missing = append(missing, field)
			}
		}
		if len(missing) == 0 {
			continue
		}
		year := entry.Field("year")
		if year == "" {
			year = "N/A"
		}
		issues = append(issues, Issue{
			EntryKey: entry.Key,
			Severity: SeverityWarning,
			Rule:     c.Name(),
			Message:  fmt.Sprintf("missing %s", strings.Join(missing, ", ")),
			Detail:   fmt.Sprintf("type=%s year=%s", entry.Type, year),
		})
	}
	return issues
}

// cleanList trims entries and drops blanks.
func cleanList(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
