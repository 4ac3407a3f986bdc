// Package citations inventories the citation-count fields of a
// bibliography. Counts are filled in by hand from Google Scholar; this
// package finds the entries that still need one, builds the search
// URL for each, and can add a blank citation field so the numbers have
// a place to land.
package citations

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/bibcheck/internal/bibtex"
	biberr "git.home.luguber.info/inful/bibcheck/internal/errors"
	"git.home.luguber.info/inful/bibcheck/internal/scholar"
	"git.home.luguber.info/inful/bibcheck/internal/util/sets"
)

const scholarSearchURL = "https://scholar.google.com/scholar"

// Item is one entry awaiting a citation count.
type Item struct {
	EntryKey string
	// Title is the search-cleaned title, empty when the entry has none.
	Title string
	// URL is the Scholar search URL, empty when the entry has no title.
	URL string
}

// Inventory is the citation status of a document.
type Inventory struct {
	Total  int
	Filled int
	// Items lists the entries with a missing or blank citation field,
	// in document order.
	Items []Item
}

// Survey scans a document for entries whose citation field is absent
// or blank. With includeFilled, entries that already carry a value are
// listed as well so their counts can be refreshed.
func Survey(doc *bibtex.Document, includeFilled bool) *Inventory {
	inv := &Inventory{Total: len(doc.Entries)}
	for _, entry := range doc.Entries {
		if entry.Has("citation") {
			inv.Filled++
			if !includeFilled {
				continue
			}
		}
		item := Item{EntryKey: entry.Key}
		if title := entry.Field("title"); title != "" {
			item.Title = scholar.CleanForSearch(title)
			item.URL = ScholarURL(title)
		}
		inv.Items = append(inv.Items, item)
	}
	return inv
}

// ScholarURL builds a Google Scholar exact-phrase search for a title.
func ScholarURL(title string) string {
	phrase := `"` + scholar.CleanForSearch(title) + `"`
	q := url.Values{"q": {phrase}}
	return scholarSearchURL + "?" + q.Encode()
}

// WriteURLList saves the pending lookups to path as a plain-text list.
// Items without a title carry no URL and are skipped.
func (inv *Inventory) WriteURLList(path, inputName string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return biberr.Wrap(err, biberr.CategoryFileSystem, biberr.SeverityError,
			"failed to create URL list directory")
	}
	var b strings.Builder
	b.WriteString("# Google Scholar URLs for citation lookup\n")
	fmt.Fprintf(&b, "# Generated from: %s\n", inputName)
	n := 0
	for _, item := range inv.Items {
		if item.URL != "" {
			n++
		}
	}
	fmt.Fprintf(&b, "# Entries: %d\n\n", n)
	for _, item := range inv.Items {
		if item.URL == "" {
			continue
		}
		fmt.Fprintf(&b, "%s\n  Title: %s\n  URL: %s\n\n", item.EntryKey, item.Title, item.URL)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return biberr.Wrap(err, biberr.CategoryFileSystem, biberr.SeverityError,
			"failed to write URL list").WithContext("path", path)
	}
	return nil
}

var entryOpenRe = regexp.MustCompile(`@\w+\s*\{\s*([^,\s]+)\s*,`)

// InjectEmpty returns a copy of the document source with a blank
// citation field inserted after the opening line of every entry that
// has no citation field at all. Entries whose field exists but is
// blank keep their own line, and every other byte is preserved.
func InjectEmpty(doc *bibtex.Document) ([]byte, int) {
	pending := sets.New[string]()
	for _, entry := range doc.Entries {
		if _, exists := entry.FieldSpan("citation"); !exists {
			pending.Add(entry.Key)
		}
	}
	if pending.Len() == 0 {
		return doc.Source(), 0
	}

	var out strings.Builder
	injected := 0
	for _, line := range strings.SplitAfter(string(doc.Source()), "\n") {
		out.WriteString(line)
		m := entryOpenRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		key := strings.TrimSpace(m[1])
		if pending.Has(key) {
			out.WriteString("  citation     = {},\n")
			pending.Delete(key)
			injected++
		}
	}
	return []byte(out.String()), injected
}
