package commands

import (
	"fmt"
	"sort"

	"git.home.luguber.info/inful/bibcheck/internal/compose"
)

// ComposeCmd implements the 'compose' command.
type ComposeCmd struct {
	InputDir string `arg:"" help:"Root directory containing .bib files (recursive)"`
	Output   string `arg:"" help:"Output composed .bib file"`
	NoDupes  bool   `name:"no-dup-warning" help:"Disable duplicate entry-key warnings"`
}

// Run executes the compose command.
func (cmd *ComposeCmd) Run(_ *Global, _ *CLI) error {
	stats, err := compose.Compose(cmd.InputDir, cmd.Output)
	if err != nil {
		return err
	}

	fmt.Printf("Composed %d files, %d entries into %s\n", stats.FileCount, stats.EntryCount, cmd.Output)

	if !cmd.NoDupes && stats.DuplicateCount > 0 {
		fmt.Printf("\nDuplicate citation keys across source files:\n")
		keys := make([]string, 0, len(stats.Duplicates))
		for key := range stats.Duplicates {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Printf("  - %s: %v\n", key, stats.Duplicates[key])
		}
	}
	return nil
}
