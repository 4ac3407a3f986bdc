package commands

import (
	"fmt"
	"os"

	"git.home.luguber.info/inful/bibcheck/internal/citations"
)

// CitationsCmd implements the 'citations' command: it lists the
// entries still missing a citation count together with a Google
// Scholar search URL for each, so the counts can be looked up by hand.
type CitationsCmd struct {
	Path          string `arg:"" help:"Path to the .bib file to survey"`
	Output        string `help:"Write a copy with a blank citation field added to entries lacking one"`
	URLList       string `name:"url-list" help:"Also save the Scholar URLs to this file"`
	IncludeFilled bool   `help:"List entries that already have a citation value too"`
}

// Run executes the citations command.
func (cmd *CitationsCmd) Run(_ *Global, _ *CLI) error {
	doc, parseErr, err := parseBibliography(cmd.Path)
	if err != nil {
		return err
	}
	if parseErr != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", parseErr)
	}

	inv := citations.Survey(doc, cmd.IncludeFilled)
	fmt.Printf("Found %d entries: %d with citation, %d needing one\n",
		inv.Total, inv.Filled, inv.Total-inv.Filled)

	if len(inv.Items) == 0 {
		fmt.Println("All entries already have citation values.")
		return nil
	}

	fmt.Println()
	for i, item := range inv.Items {
		fmt.Printf("[%d/%d] %s\n", i+1, len(inv.Items), item.EntryKey)
		if item.URL == "" {
			fmt.Println("  (no title, cannot build a search URL)")
			continue
		}
		fmt.Printf("  Title: %s\n  URL:   %s\n", item.Title, item.URL)
	}

	if cmd.URLList != "" {
		if err := inv.WriteURLList(cmd.URLList, cmd.Path); err != nil {
			return err
		}
		fmt.Printf("\nURL list saved to %s\n", cmd.URLList)
	}

	if cmd.Output != "" {
		out, injected := citations.InjectEmpty(doc)
		if err := os.WriteFile(cmd.Output, out, 0o644); err != nil {
			return fmt.Errorf("write bibliography: %w", err)
		}
		fmt.Printf("\nAdded a blank citation field to %d entr%s, saved to %s\n",
			injected, pluralIes(injected), cmd.Output)
	}
	return nil
}

func pluralIes(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
