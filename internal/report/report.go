// Package report writes tab-separated check reports next to the
// bibliography (or into a configured directory). Each report carries a
// unique run identifier so consecutive runs can be told apart when the
// file is overwritten or archived.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/bibcheck/internal/check"
	biberr "git.home.luguber.info/inful/bibcheck/internal/errors"
)

// Report is a completed check run ready to be written.
type Report struct {
	RunID     string
	Generated time.Time
	InputPath string
	Result    *check.Result
}

// New wraps a check result with run metadata.
func New(inputPath string, result *check.Result) *Report {
	return &Report{
		RunID:     uuid.NewString(),
		Generated: time.Now(),
		InputPath: inputPath,
		Result:    result,
	}
}

// Path returns the report file location. With an empty directory the
// report lands alongside the input file as <name>.check.tsv.
func (r *Report) Path(dir string) string {
	name := filepath.Base(r.InputPath) + ".check.tsv"
	if dir == "" {
		return filepath.Join(filepath.Dir(r.InputPath), name)
	}
	return filepath.Join(dir, name)
}

// Write renders the report to its location, creating the directory if
// needed, and returns the written path.
func (r *Report) Write(dir string) (string, error) {
	path := r.Path(dir)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", biberr.Wrap(err, biberr.CategoryFileSystem, biberr.SeverityError,
			"failed to create report directory")
	}
	f, err := os.Create(path)
	if err != nil {
		return "", biberr.Wrap(err, biberr.CategoryFileSystem, biberr.SeverityError,
			"failed to create report file").WithContext("path", path)
	}
	defer f.Close()

	// Metadata lines precede the table so spreadsheet imports can skip
	// them with a comment prefix.
	fmt.Fprintf(f, "# run_id\t%s\n", r.RunID)
	fmt.Fprintf(f, "# generated\t%s\n", r.Generated.Format(time.RFC3339))
	fmt.Fprintf(f, "# input\t%s\n", r.InputPath)
	fmt.Fprintf(f, "# entries\t%d\n", r.Result.EntriesTotal)

	w := csv.NewWriter(f)
	w.Comma = '\t'
	if err := w.Write([]string{"entry_key", "severity", "rule", "message", "detail", "fix"}); err != nil {
		return "", err
	}
	for _, issue := range r.Result.Issues {
		record := []string{
			issue.EntryKey,
			issue.Severity.String(),
			issue.Rule,
			issue.Message,
			issue.Detail,
			issue.Fix,
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", biberr.Wrap(err, biberr.CategoryFileSystem, biberr.SeverityError,
			"failed to write report").WithContext("path", path)
	}
	return path, nil
}
