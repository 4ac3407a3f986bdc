package titlecase

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"git.home.luguber.info/inful/bibcheck/internal/util/sets"
)

// Tables holds the process-wide exception tables consulted by the
// caser and the protection checker. A Tables value is built once at
// startup and treated as read-only afterwards; the caser never
// mutates it, so concurrent use is safe.
type Tables struct {
	// Vocabulary holds domain terms (lowercased, diacritics folded)
	// that should normally be brace-protected in titles.
	Vocabulary sets.Set[string]

	// LowercasePrefixes are hyphen-compound parts that stay lowercase
	// when the word is not at a forced position (self-Report).
	LowercasePrefixes sets.Set[string]

	// canonical maps the folded lowercase form of a term to its
	// canonical mixed-case spelling (ios -> iOS).
	canonical map[string]string
}

// NewTables builds a Tables value from explicit inputs. Vocabulary
// terms and prefix entries are folded; canonical spellings are stored
// verbatim and keyed by their folded form.
func NewTables(vocabulary, prefixes []string, canonical []string) *Tables {
	t := &Tables{
		Vocabulary:        make(sets.Set[string], len(vocabulary)),
		LowercasePrefixes: make(sets.Set[string], len(prefixes)),
		canonical:         make(map[string]string, len(canonical)),
	}
	for _, v := range vocabulary {
		t.Vocabulary.Add(Fold(v))
	}
	for _, p := range prefixes {
		t.LowercasePrefixes.Add(Fold(p))
	}
	for _, c := range canonical {
		t.canonical[Fold(c)] = c
	}
	return t
}

// Canonical returns the canonical mixed-case spelling for word, if one
// is registered. Lookup is case- and diacritic-insensitive.
func (t *Tables) Canonical(word string) (string, bool) {
	c, ok := t.canonical[Fold(word)]
	return c, ok
}

// InVocabulary reports whether word is a known domain term.
func (t *Tables) InVocabulary(word string) bool {
	return t.Vocabulary.Has(Fold(word))
}

// WithVocabulary returns a copy of t with extra vocabulary terms added.
func (t *Tables) WithVocabulary(terms []string) *Tables {
	out := &Tables{
		Vocabulary:        t.Vocabulary.Clone(),
		LowercasePrefixes: t.LowercasePrefixes,
		canonical:         t.canonical,
	}
	for _, v := range terms {
		out.Vocabulary.Add(Fold(v))
	}
	return out
}

// WithoutVocabulary returns a copy of t with an empty vocabulary,
// keeping prefixes and canonical spellings.
func (t *Tables) WithoutVocabulary() *Tables {
	return &Tables{
		Vocabulary:        sets.New[string](),
		LowercasePrefixes: t.LowercasePrefixes,
		canonical:         t.canonical,
	}
}

// WithCanonical returns a copy of t with extra canonical spellings added.
func (t *Tables) WithCanonical(spellings []string) *Tables {
	out := &Tables{
		Vocabulary:        t.Vocabulary,
		LowercasePrefixes: t.LowercasePrefixes,
		canonical:         make(map[string]string, len(t.canonical)+len(spellings)),
	}
	for k, v := range t.canonical {
		out.canonical[k] = v
	}
	for _, c := range spellings {
		out.canonical[Fold(c)] = c
	}
	return out
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases a term and strips combining diacritical marks, so
// "Poincaré" and "poincare" share one table key.
func Fold(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return strings.ToLower(folded)
}

// defaultVocabulary lists proper-noun domain terms that should be
// protected in titles (mathematician and statistician surnames, mostly).
var defaultVocabulary = []string{
	"gaussian", "bayesian", "markov", "poisson", "fourier", "laplace",
	"euler", "kalman", "kolmogorov", "newton", "hamilton", "lagrange",
	"riemann", "hilbert", "bessel", "hadamard", "chernoff", "hoeffding",
	"chebyshev", "bernoulli", "dirichlet", "fisher", "neyman", "cauchy",
	"boltzmann", "gibbs", "wiener", "ito", "lévy", "gram", "schmidt",
	"heaviside", "noether", "poincaré", "weibull", "rayleigh", "shannon",
	"huffman", "turing", "kronecker", "arnold",
}

// defaultLowercasePrefixes lists hyphen-compound parts kept lowercase
// at non-forced positions.
var defaultLowercasePrefixes = []string{
	"self", "non", "re", "co", "pre", "post", "anti", "semi", "quasi", "pseudo",
}

// defaultCanonical lists exact mixed-case spellings that are never
// re-cased. Terms like "ResNet50" are deliberately absent: variants
// with version suffixes come in through configuration, not the
// built-in table.
var defaultCanonical = []string{
	"iOS", "iPadOS", "macOS", "watchOS", "tvOS", "iPhone", "iPad",
	"eBay", "gRPC", "jQuery", "JavaScript", "TypeScript", "PyTorch",
	"TensorFlow", "OpenCV", "GitHub", "GitLab", "BibTeX", "LaTeX",
	"arXiv", "WiFi", "IoT", "ResNet", "ImageNet", "WordNet",
}

var defaultTables = sync.OnceValue(func() *Tables {
	return NewTables(defaultVocabulary, defaultLowercasePrefixes, defaultCanonical)
})

// DefaultTables returns the built-in exception tables. The value is
// constructed once and shared; callers must treat it as read-only and
// use WithVocabulary/WithCanonical for extensions.
func DefaultTables() *Tables {
	return defaultTables()
}
