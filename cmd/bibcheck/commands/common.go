package commands

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/bibcheck/internal/bibtex"
	"git.home.luguber.info/inful/bibcheck/internal/check"
	"git.home.luguber.info/inful/bibcheck/internal/config"
	"git.home.luguber.info/inful/bibcheck/internal/titlecase"
	"git.home.luguber.info/inful/bibcheck/internal/util/sets"
)

// Global context passed to subcommands if we need to share global state later.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"bibcheck.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Check     CheckCmd     `cmd:"" help:"Check a bibliography for hygiene issues"`
	Fix       FixCmd       `cmd:"" help:"Apply suggested title-case fixes to a bibliography"`
	Compose   ComposeCmd   `cmd:"" help:"Combine .bib files from a directory tree into one file"`
	Lookup    LookupCmd    `cmd:"" help:"Verify titles against CrossRef, DBLP, Semantic Scholar and arXiv"`
	Citations CitationsCmd `cmd:"" help:"List entries missing citation counts with Scholar search URLs"`
	Venues    VenuesCmd    `cmd:"" help:"List the unique venue/year combinations in a bibliography"`
	Watch     WatchCmd     `cmd:"" help:"Re-check a bibliography on changes and on a schedule"`
	Init      InitCmd      `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// pipeline bundles the configured casing and checking machinery.
type pipeline struct {
	cfg    *config.Config
	tables *titlecase.Tables
	caser  *titlecase.Caser
}

// buildPipeline loads configuration and assembles the exception
// tables, the caser and the checker set from it.
func buildPipeline(configPath string) (*pipeline, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return newPipeline(cfg)
}

// newPipeline assembles the casing and checking machinery from an
// already-loaded (and possibly flag-overridden) configuration.
func newPipeline(cfg *config.Config) (*pipeline, error) {
	tables := titlecase.DefaultTables()
	if cfg.Protection.NoDefaultVocabulary {
		tables = tables.WithoutVocabulary()
	}
	extraTerms := append([]string{}, cfg.Protection.ExtraTerms...)
	if cfg.Protection.VocabularyFile != "" {
		fileTerms, err := readTermFile(cfg.Protection.VocabularyFile)
		if err != nil {
			return nil, err
		}
		extraTerms = append(extraTerms, fileTerms...)
	}
	if len(extraTerms) > 0 {
		tables = tables.WithVocabulary(extraTerms)
	}
	if len(cfg.CanonicalTerms) > 0 {
		tables = tables.WithCanonical(cfg.CanonicalTerms)
	}

	style := titlecase.GetStyle(cfg.Style)
	var stopwords sets.Set[string]
	if len(cfg.ExtraStopwords) > 0 {
		stopwords = style.Stopwords.Union(sets.NewLower(cfg.ExtraStopwords...))
	}

	return &pipeline{
		cfg:    cfg,
		tables: tables,
		caser:  titlecase.NewCaser(style, tables, stopwords),
	}, nil
}

// checkers assembles the checker list the configuration enables.
func (p *pipeline) checkers() []check.Checker {
	var cs []check.Checker
	cs = append(cs, check.NewMissingFieldsChecker(p.cfg.Checks.RequiredFields, p.cfg.Checks.EntryTypes))
	if p.cfg.Checks.CitationKeys {
		cs = append(cs, check.NewCitationKeyChecker())
	}
	cs = append(cs, check.NewTitleCaseChecker(p.caser))
	cs = append(cs, check.NewProtectionChecker(p.tables, p.cfg.Protection.MinLength))
	return cs
}

// readTermFile reads a newline-delimited term list, skipping blanks
// and # comments.
func readTermFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vocabulary file: %w", err)
	}
	defer f.Close()

	var terms []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		terms = append(terms, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read vocabulary file: %w", err)
	}
	return terms, nil
}

// parseBibliography reads and parses a .bib file. Parse problems are
// returned alongside the document so callers can surface them as
// issues instead of aborting.
func parseBibliography(path string) (*bibtex.Document, error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read bibliography: %w", err)
	}
	doc, parseErr := bibtex.Parse(data)
	return doc, parseErr, nil
}

// parseIssues converts a parse error into an error-severity issue.
func parseIssues(parseErr error) []check.Issue {
	if parseErr == nil {
		return nil
	}
	return []check.Issue{{
		Severity: check.SeverityError,
		Rule:     "parse",
		Message:  parseErr.Error(),
	}}
}
