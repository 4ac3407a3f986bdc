// Package bibtex provides a tolerant BibTeX scanner and a span-based
// rewriter. Parsing records the byte span of every field value in the
// original source, so a single field can later be replaced while every
// other byte of the file (comments, formatting, field order) is
// preserved.
package bibtex

import (
	"sort"
	"strings"
)

// Span is a half-open byte range [Start, End) in the document source.
type Span struct {
	Start int
	End   int
}

// Entry is one parsed bibliography entry. Field names are lowercased;
// values are stored without their surrounding braces or quotes.
type Entry struct {
	// Type is the lowercased entry type ("article", "inproceedings").
	Type string
	// Key is the citation key.
	Key string

	fields map[string]string
	spans  map[string]Span
	order  []string
}

// Field returns the raw value of a field (empty string if absent).
func (e *Entry) Field(name string) string {
	return e.fields[strings.ToLower(name)]
}

// Has reports whether the entry carries a non-blank value for name.
func (e *Entry) Has(name string) bool {
	return strings.TrimSpace(e.fields[strings.ToLower(name)]) != ""
}

// FieldSpan returns the byte span of a field value inside the source,
// excluding the value delimiters.
func (e *Entry) FieldSpan(name string) (Span, bool) {
	s, ok := e.spans[strings.ToLower(name)]
	return s, ok
}

// FieldNames returns the field names in source order.
func (e *Entry) FieldNames() []string {
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

func (e *Entry) setField(name, value string, span Span) {
	name = strings.ToLower(name)
	if _, exists := e.fields[name]; !exists {
		e.order = append(e.order, name)
	}
	e.fields[name] = value
	e.spans[name] = span
}

// Document is a parsed bibliography plus its original source bytes.
type Document struct {
	src     []byte
	Entries []*Entry
}

// Source returns the original bytes the document was parsed from.
func (d *Document) Source() []byte {
	return d.src
}

// Entry returns the entry with the given citation key, or nil.
func (d *Document) Entry(key string) *Entry {
	for _, e := range d.Entries {
		if e.Key == key {
			return e
		}
	}
	return nil
}

// Replacement substitutes Text for the bytes of Span.
type Replacement struct {
	Span
	Text string
}

// ReplaceFieldValue builds a Replacement that swaps the value of one
// field of an entry. The second return is false when the entry has no
// recorded span for the field.
func (d *Document) ReplaceFieldValue(e *Entry, field, newValue string) (Replacement, bool) {
	span, ok := e.FieldSpan(field)
	if !ok {
		return Replacement{}, false
	}
	return Replacement{Span: span, Text: newValue}, true
}

// Rewrite applies the replacements to the original source and returns
// the new bytes. Replacements are applied back to front so recorded
// spans stay valid; overlapping replacements are skipped after the
// first, keeping the operation best-effort.
func (d *Document) Rewrite(reps []Replacement) []byte {
	if len(reps) == 0 {
		out := make([]byte, len(d.src))
		copy(out, d.src)
		return out
	}
	sorted := make([]Replacement, len(reps))
	copy(sorted, reps)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start > sorted[j].Start })

	out := make([]byte, len(d.src))
	copy(out, d.src)
	lastStart := len(out) + 1
	for _, r := range sorted {
		if r.Start < 0 || r.End > len(d.src) || r.Start > r.End || r.End > lastStart {
			continue
		}
		out = append(out[:r.Start], append([]byte(r.Text), out[r.End:]...)...)
		lastStart = r.Start
	}
	return out
}
