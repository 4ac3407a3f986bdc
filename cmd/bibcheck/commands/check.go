package commands

import (
	"fmt"
	"os"

	"git.home.luguber.info/inful/bibcheck/internal/check"
	"git.home.luguber.info/inful/bibcheck/internal/config"
	"git.home.luguber.info/inful/bibcheck/internal/report"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	Path   string `arg:"" help:"Path to the .bib file to check"`
	Format string `short:"f" default:"text" help:"Output format (text or json)" enum:"text,json"`
	Quiet  bool   `short:"q" help:"Quiet mode: only show errors, suppress warnings and suggestions"`
	Report bool   `help:"Write a TSV report next to the bibliography (or into reports.directory)"`

	Style          string   `help:"Title-case style for this run (overrides config)"`
	RequiredFields []string `help:"Required fields for this run (overrides config)"`
	EntryTypes     []string `help:"Entry types the required-field check applies to (overrides config)"`
	ExtraStopwords []string `help:"Additional lowercase stopwords for this run"`
	Vocabulary     string   `help:"Protected-term vocabulary file (overrides config)"`
}

// Run executes the check command.
func (cmd *CheckCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	if cmd.Style != "" {
		cfg.Style = cmd.Style
	}
	if len(cmd.RequiredFields) > 0 {
		cfg.Checks.RequiredFields = cmd.RequiredFields
	}
	if len(cmd.EntryTypes) > 0 {
		cfg.Checks.EntryTypes = cmd.EntryTypes
	}
	if len(cmd.ExtraStopwords) > 0 {
		cfg.ExtraStopwords = append(cfg.ExtraStopwords, cmd.ExtraStopwords...)
	}
	if cmd.Vocabulary != "" {
		cfg.Protection.VocabularyFile = cmd.Vocabulary
	}

	pipe, err := newPipeline(cfg)
	if err != nil {
		return err
	}

	doc, parseErr, err := parseBibliography(cmd.Path)
	if err != nil {
		return err
	}

	runner := check.NewRunner(cmd.Quiet, pipe.checkers()...)
	result := runner.Check(doc)
	result.Issues = append(parseIssues(parseErr), result.Issues...)

	formatter := check.NewFormatter(cmd.Format)
	if err := formatter.Format(os.Stdout, result, cmd.Path); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	if cmd.Report {
		path, err := report.New(cmd.Path, result).Write(pipe.cfg.Reports.Directory)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "report written to %s\n", path)
	}

	// Exit codes follow lint conventions so CI can gate on them.
	if result.HasErrors() {
		os.Exit(2)
	} else if result.HasWarnings() && !cmd.Quiet {
		os.Exit(1)
	}
	return nil
}
