package commands

import (
	"context"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/bibcheck/internal/check"
	"git.home.luguber.info/inful/bibcheck/internal/report"
	"git.home.luguber.info/inful/bibcheck/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Path   string `arg:"" help:"Path to the .bib file to watch"`
	Listen string `help:"Metrics HTTP address (overrides watch.listen)"`
	Report bool   `help:"Write a TSV report after every check"`
}

// Run executes the watch command. It blocks until interrupted.
func (cmd *WatchCmd) Run(_ *Global, root *CLI) error {
	pipe, err := buildPipeline(root.Config)
	if err != nil {
		return err
	}

	listen := pipe.cfg.Watch.Listen
	if cmd.Listen != "" {
		listen = cmd.Listen
	}

	runner := check.NewRunner(false, pipe.checkers()...)
	checkFn := func(ctx context.Context, trigger string) (watch.Outcome, error) {
		doc, parseErr, err := parseBibliography(cmd.Path)
		if err != nil {
			return watch.Outcome{}, err
		}
		result := runner.Check(doc)
		result.Issues = append(parseIssues(parseErr), result.Issues...)

		if cmd.Report {
			if _, err := report.New(cmd.Path, result).Write(pipe.cfg.Reports.Directory); err != nil {
				return watch.Outcome{}, err
			}
		}
		return watch.Outcome{
			Entries:  result.EntriesTotal,
			Errors:   result.ErrorCount(),
			Warnings: result.WarningCount(),
			Infos:    result.InfoCount(),
		}, nil
	}

	svc := watch.NewService(cmd.Path,
		pipe.cfg.Watch.IntervalDuration(),
		pipe.cfg.Watch.DebounceDuration(),
		listen, checkFn)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return svc.Run(ctx)
}
