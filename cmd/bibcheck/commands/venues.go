package commands

import (
	"fmt"
	"os"

	"git.home.luguber.info/inful/bibcheck/internal/venues"
)

// VenuesCmd implements the 'venues' command.
type VenuesCmd struct {
	Path string `arg:"" help:"Path to the .bib file to survey"`
}

// Run executes the venues command. It prints the unique (venue, year)
// combinations grouped by year, newest first.
func (cmd *VenuesCmd) Run(_ *Global, _ *CLI) error {
	doc, parseErr, err := parseBibliography(cmd.Path)
	if err != nil {
		return err
	}
	if parseErr != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", parseErr)
	}

	inv := venues.Survey(doc)
	fmt.Printf("Scanning %d entries for venue info...\n", inv.Total)
	for _, key := range inv.Skipped {
		fmt.Printf("  skipped %q: missing year or venue\n", key)
	}

	currentYear := ""
	for _, combo := range inv.Combos {
		if combo.Year != currentYear {
			fmt.Printf("\n--- %s ---\n", combo.Year)
			currentYear = combo.Year
		}
		fmt.Printf("  %s\n", combo.Venue)
	}
	fmt.Printf("\nFound %d unique (venue, year) combinations.\n", len(inv.Combos))
	return nil
}
