// Package venues inventories the unique venue and year combinations
// of a bibliography. The venue of an entry is its booktitle, falling
// back to journal, then publisher.
package venues

import (
	"sort"
	"strings"

	"git.home.luguber.info/inful/bibcheck/internal/bibtex"
)

// Combo is one venue appearing in a given year, in the cleanest form
// seen in the document.
type Combo struct {
	Venue string
	Year  string
}

// Inventory is the venue survey of a document.
type Inventory struct {
	Total int
	// Combos is sorted by year descending, then venue name.
	Combos []Combo
	// Skipped lists the keys of entries missing a year or a venue.
	Skipped []string
}

// normVenue lowercases and strips braces so "NeurIPS" and "{NeurIPS}"
// count as one venue.
func normVenue(venue string) string {
	venue = strings.NewReplacer("{", "", "}", "").Replace(venue)
	return strings.ToLower(strings.TrimSpace(venue))
}

func entryVenue(e *bibtex.Entry) string {
	for _, field := range []string{"booktitle", "journal", "publisher"} {
		if v := strings.TrimSpace(e.Field(field)); v != "" {
			return v
		}
	}
	return ""
}

// Survey collects the unique (venue, year) combinations of a document.
// The first spelling seen of a venue wins.
func Survey(doc *bibtex.Document) *Inventory {
	inv := &Inventory{Total: len(doc.Entries)}
	seen := map[[2]string]Combo{}
	var order [][2]string

	for _, entry := range doc.Entries {
		year := strings.TrimSpace(entry.Field("year"))
		venue := entryVenue(entry)
		if year == "" || venue == "" {
			inv.Skipped = append(inv.Skipped, entry.Key)
			continue
		}
		key := [2]string{year, normVenue(venue)}
		if _, ok := seen[key]; !ok {
			seen[key] = Combo{Venue: venue, Year: year}
			order = append(order, key)
		}
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i][0] != order[j][0] {
			return order[i][0] > order[j][0]
		}
		return order[i][1] < order[j][1]
	})
	for _, key := range order {
		inv.Combos = append(inv.Combos, seen[key])
	}
	return inv
}
