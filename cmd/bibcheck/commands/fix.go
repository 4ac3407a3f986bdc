package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"git.home.luguber.info/inful/bibcheck/internal/bibtex"
	"git.home.luguber.info/inful/bibcheck/internal/check"
)

// FixCmd implements the 'fix' command: it rewrites title fields to the
// configured title-case style, touching nothing else in the file.
type FixCmd struct {
	Path   string `arg:"" help:"Path to the .bib file to fix"`
	DryRun bool   `help:"Show what would change without writing"`
	Yes    bool   `short:"y" help:"Apply without prompting (for CI/CD)"`
}

// Run executes the fix command.
func (cmd *FixCmd) Run(_ *Global, root *CLI) error {
	pipe, err := buildPipeline(root.Config)
	if err != nil {
		return err
	}

	doc, parseErr, err := parseBibliography(cmd.Path)
	if err != nil {
		return err
	}
	if parseErr != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", parseErr)
	}

	suggestions := check.NewTitleCaseChecker(pipe.caser).Suggestions(doc)
	if len(suggestions) == 0 {
		fmt.Println("All titles already match the configured style.")
		return nil
	}

	for _, s := range suggestions {
		fmt.Printf("%s\n  - %s\n  + %s\n", s.EntryKey, s.Current, s.Suggested)
	}
	fmt.Printf("\n%d title%s to fix\n", len(suggestions), pluralSuffix(len(suggestions)))

	if cmd.DryRun {
		fmt.Println("Dry run: no changes written.")
		return nil
	}
	if !cmd.Yes && !confirm("Apply these changes?") {
		fmt.Println("Aborted.")
		return nil
	}

	var reps []bibtex.Replacement
	for _, s := range suggestions {
		if rep, ok := doc.ReplaceFieldValue(s.Entry, "title", s.Suggested); ok {
			reps = append(reps, rep)
		}
	}

	updated := doc.Rewrite(reps)
	if err := os.WriteFile(cmd.Path, updated, 0o644); err != nil {
		return fmt.Errorf("write bibliography: %w", err)
	}
	fmt.Printf("Updated %d title%s in %s\n", len(reps), pluralSuffix(len(reps)), cmd.Path)
	return nil
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func pluralSuffix(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
