package check

import (
	"fmt"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/bibcheck/internal/bibtex"
)

// keyPattern is the expected citation key format: METHOD_AUTHOR_VENUEYEAR
// (e.g. PLAN_Wang_ICCV2025, MG-CLIP_Huang_ICCV2025). METHOD may contain
// alphanumerics, hyphens, and '+'; AUTHOR is alphabetic with optional
// apostrophes or hyphens; VENUE is an abbreviation immediately followed
// by a four-digit year.
var keyPattern = regexp.MustCompile(
	`^(?P<method>[A-Za-z0-9+\-]+)_(?P<author>[A-Za-z][A-Za-z'\-]*)_(?P<venue>[A-Z][A-Za-z]*)(?P<year>\d{4})$`)

// venueAbbreviations maps a venue abbreviation to lowercase keywords
// expected in the entry's booktitle or journal.
var venueAbbreviations = map[string][]string{
	// Top-tier CV conferences
	"CVPR": {"cvpr", "ieee/cvf conference on computer vision and pattern recognition"},
	"ICCV": {"iccv", "ieee/cvf international conference on computer vision"},
	"ECCV": {"eccv", "european conference on computer vision", "computer vision -- eccv"},
	// ML conferences
	"NeurIPS": {"neurips", "neural information processing systems", "advances in neural information processing systems"},
	"ICML":    {"icml", "international conference on machine learning"},
	"ICLR":    {"iclr", "international conference on learning representations"},
	"AAAI":    {"aaai", "aaai conference on artificial intelligence"},
	// Multimedia
	"MM": {"acm multimedia", "acm international conference on multimedia"},
	// Web
	"WWW": {"www", "web conference", "acm on web conference"},
	// NLP
	"ACL":   {"acl", "association for computational linguistics", "annual meeting of the association for computational linguistics"},
	"EMNLP": {"emnlp", "empirical methods in natural language processing"},
	"NAACL": {"naacl", "north american chapter"},
	// Data mining
	"KDD": {"kdd", "knowledge discovery and data mining", "sigkdd"},
	// Speech
	"Interspeech": {"interspeech"},
	// Journal abbreviations
	"TIP":     {"ieee transactions on image processing"},
	"TPAMI":   {"ieee transactions on pattern analysis and machine intelligence"},
	"TMM":     {"ieee transactions on multimedia"},
	"TNNLS":   {"ieee transactions on neural networks and learning systems"},
	"TCSVT":   {"ieee transactions on circuits and systems for video technology"},
	"TGRS":    {"ieee transactions on geoscience and remote sensing"},
	"TOMM":    {"acm transactions on multimedia computing"},
	"TKDD":    {"acm transactions on knowledge discovery from data"},
	"TKDE":    {"ieee transactions on knowledge and data engineering"},
	"PR":      {"pattern recognition"},
	"IJCV":    {"international journal of computer vision"},
	"ESWA":    {"expert systems with applications"},
	"ASOC":    {"applied soft computing"},
	"IPM":     {"information processing"},
	"NC":      {"neurocomputing"},
	"INS":     {"information sciences"},
	"KBS":     {"knowledge-based systems"},
	"NEUNET":  {"neural networks"},
	"AIR":     {"artificial intelligence review"},
	"TMLR":    {"transactions on machine learning research"},
	"NATCOMM": {"nature communications"},
	"IJFS":    {"international journal of fuzzy systems"},
	"SP":      {"signal processing"},
	"SPL":     {"ieee signal processing letters"},
}

// CitationKeyChecker validates citation key legibility against the
// METHOD_AUTHOR_VENUEYEAR convention and cross-checks the venue
// abbreviation and year against the entry itself.
type CitationKeyChecker struct{}

// NewCitationKeyChecker builds the checker.
func NewCitationKeyChecker() *CitationKeyChecker { return &CitationKeyChecker{} }

// Name returns the checker identifier.
func (c *CitationKeyChecker) Name() string { return "citation-keys" }

// Check reports format, year-mismatch, and venue-mismatch issues.
func (c *CitationKeyChecker) Check(doc *bibtex.Document) []Issue {
	var issues []Issue
	for _, entry := range doc.Entries {
		match := keyPattern.FindStringSubmatch(entry.Key)
		if match == nil {
			issues = append(issues, Issue{
				EntryKey: entry.Key,
				Severity: SeverityWarning,
				Rule:     c.Name(),
				Message:  "key format",
				Detail:   fmt.Sprintf("expected METHOD_AUTHOR_VENUEYEAR, got %q", entry.Key),
			})
			continue
		}

		keyYear := match[keyPattern.SubexpIndex("year")]
		entryYear := strings.TrimSpace(entry.Field("year"))
		if entryYear != "" && keyYear != entryYear {
			issues = append(issues, Issue{
				EntryKey: entry.Key,
				Severity: SeverityWarning,
				Rule:     c.Name(),
				Message:  "year mismatch",
				Detail:   fmt.Sprintf("key year=%s but entry year=%s", keyYear, entryYear),
			})
		}

		abbrev := match[keyPattern.SubexpIndex("venue")]
		if reason := venueMismatch(abbrev, entry.Field("booktitle"), entry.Field("journal")); reason != "" {
			issues = append(issues, Issue{
				EntryKey: entry.Key,
				Severity: SeverityWarning,
				Rule:     c.Name(),
				Message:  "venue mismatch",
				Detail:   reason,
			})
		}
	}
	return issues
}

// venueMismatch checks the abbreviation against the actual venue text.
// Empty result means OK or unverifiable (unknown abbreviation, no
// venue field).
func venueMismatch(abbrev, booktitle, journal string) string {
	venueText := strings.ToLower(booktitle)
	if venueText == "" {
		venueText = strings.ToLower(journal)
	}
	if venueText == "" {
		return ""
	}
	keywords, ok := venueAbbreviations[abbrev]
	if !ok {
		return ""
	}
	for _, keyword := range keywords {
		if strings.Contains(venueText, keyword) {
			return ""
		}
	}
	display := booktitle
	if display == "" {
		display = journal
	}
	if len(display) > 60 {
		display = display[:60]
	}
	return fmt.Sprintf("abbreviation %q does not match venue %q", abbrev, display)
}
