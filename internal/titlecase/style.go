// Package titlecase implements the title-case engine for bibliographic
// titles: a named style registry, process-wide exception tables, and a
// caser that re-capitalizes a title while preserving brace-protected
// spans, acronyms, and known mixed-case terms.
package titlecase

import (
	"strings"
	"sync"

	"git.home.luguber.info/inful/bibcheck/internal/util/sets"
)

// Style holds the casing parameters for one title-case convention.
// A Style is immutable once registered; callers must not mutate the
// stopword set after handing it to a registry.
type Style struct {
	// Name identifies the style (e.g. "apa").
	Name string

	// Stopwords are kept lowercase unless the word is at a forced
	// position. Matching is exact lowercase string equality.
	Stopwords sets.Set[string]

	// MinLengthCapitalize is the minimum cleaned (alphanumeric) length
	// at which a word is capitalized regardless of the stopword set.
	MinLengthCapitalize int

	// CapitalizeLastWord forces the final word of the title.
	CapitalizeLastWord bool

	// HyphenCapitalizeAllParts capitalizes every part of a hyphenated
	// compound (APA: Self-Report, Class-Incremental).
	HyphenCapitalizeAllParts bool

	// SubtitleDelimiters are token suffixes that introduce a subtitle;
	// the word following such a token is forced.
	SubtitleDelimiters []string
}

// apaStopwords is the built-in APA stopword list.
var apaStopwords = sets.New(
	"a", "an", "and", "as", "at", "but", "by", "for", "from",
	"in", "into", "nor", "of", "on", "onto", "or", "over", "per",
	"the", "to", "vs", "via", "with", "up", "down", "off",
)

// APA returns the built-in APA-like style.
func APA() Style {
	return Style{
		Name:                     "apa",
		Stopwords:                apaStopwords,
		MinLengthCapitalize:      4,
		CapitalizeLastWord:       false, // APA does not single out the last word
		HyphenCapitalizeAllParts: true,
		SubtitleDelimiters:       []string{":", "—", "–"}, // colon, em dash, en dash
	}
}

// Registry is a read-mostly table of named styles. Lookups are
// case-insensitive and degrade to the default style for unknown or
// empty names; an unknown style name is a usability concern, never an
// error.
type Registry struct {
	mu     sync.RWMutex
	styles map[string]Style
	def    string
}

// NewRegistry creates a registry pre-populated with the built-in APA
// style, which is also the default.
func NewRegistry() *Registry {
	r := &Registry{
		styles: make(map[string]Style),
		def:    "apa",
	}
	r.Register(APA())
	return r
}

// Register adds or replaces a named style.
func (r *Registry) Register(s Style) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.styles[strings.ToLower(s.Name)] = s
}

// Get returns the style for name, falling back to the default style
// when name is empty or unknown.
func (r *Registry) Get(name string) Style {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if name != "" {
		if s, ok := r.styles[strings.ToLower(name)]; ok {
			return s
		}
	}
	return r.styles[r.def]
}

var defaultRegistry = NewRegistry()

// GetStyle looks up a style in the package default registry.
func GetStyle(name string) Style {
	return defaultRegistry.Get(name)
}

// RegisterStyle adds a style to the package default registry.
func RegisterStyle(s Style) {
	defaultRegistry.Register(s)
}
