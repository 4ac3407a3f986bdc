package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"git.home.luguber.info/inful/bibcheck/internal/bibtex"
	"git.home.luguber.info/inful/bibcheck/internal/scholar"
	"git.home.luguber.info/inful/bibcheck/internal/util/sets"
)

// LookupCmd implements the 'lookup' command: it compares local titles
// with the capitalization published by the metadata sources.
type LookupCmd struct {
	Path  string        `arg:"" help:"Path to the .bib file to verify"`
	Keys  string        `help:"Comma-separated citation keys to check (default: all)"`
	Delay time.Duration `default:"500ms" help:"Delay between API requests"`
}

// Run executes the lookup command.
func (cmd *LookupCmd) Run(_ *Global, root *CLI) error {
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := []scholar.Option{scholar.WithDelay(cmd.Delay)}
	if path := pipe.cfg.Lookup.CachePath; path != "" {
		cache, err := scholar.NewCache(path)
		if err != nil {
			return err
		}
		defer cache.Close()
		opts = append(opts, scholar.WithCache(cache))
	}
	client := scholar.NewClient(pipe.cfg.Lookup.TimeoutDuration(), pipe.cfg.Lookup.Mailto, opts...)

	entries := cmd.selectEntries(doc)
	fmt.Printf("Checking %d entries in %s\n\n", len(entries), cmd.Path)

	var caseDiffs, errored, noMatch int
	for i, entry := range entries {
		if ctx.Err() != nil {
			fmt.Fprintln(os.Stderr, "interrupted")
			break
		}
		fmt.Printf("[%d/%d] %s\n", i+1, len(entries), entry.Key)

		result := client.Lookup(ctx, entry)
		switch {
		case result.CaseDiffers:
			caseDiffs++
			fmt.Printf("  case difference (%s)\n  current:   %s\n  published: %s\n",
				result.Match.Source, result.CurrentTitle, result.Match.Title)
			if result.Match.URL != "" {
				fmt.Printf("  %s\n", result.Match.URL)
			}
		case result.Match != nil:
			fmt.Printf("  verified via %s\n", result.Match.Source)
		case result.Errored():
			errored++
			for _, s := range result.Statuses {
				if s.Err != nil {
					fmt.Printf("  %s failed: %v\n", s.Source, s.Err)
				}
			}
		default:
			noMatch++
			fmt.Printf("  no match found\n")
		}
	}

	fmt.Printf("\nDone: %d case differences, %d lookup errors, %d without a match\n",
		caseDiffs, errored, noMatch)
	if caseDiffs > 0 {
		os.Exit(1)
	}
	return nil
}

// selectEntries filters entries by --keys when given, keeping only
// entries that have a title.
func (cmd *LookupCmd) selectEntries(doc *bibtex.Document) []*bibtex.Entry {
	var filter sets.Set[string]
	if cmd.Keys != "" {
		filter = sets.New[string]()
		for _, key := range strings.Split(cmd.Keys, ",") {
			filter.Add(strings.TrimSpace(key))
		}
	}

	var out []*bibtex.Entry
	for _, entry := range doc.Entries {
		if entry.Field("title") == "" {
			continue
		}
		if filter != nil && !filter.Has(entry.Key) {
			continue
		}
		out = append(out, entry)
	}
	return out
}
