// Package check contains the bibliography checkers and their shared
// issue/result types. Checkers are pure: they inspect a parsed
// document and report issues, leaving all I/O to the caller.
package check

import (
	"git.home.luguber.info/inful/bibcheck/internal/bibtex"
)

// Severity indicates the importance level of a reported issue.
type Severity int

const (
	// SeverityInfo indicates informational findings (e.g., protection
	// suggestions the user may deliberately ignore).
	SeverityInfo Severity = iota
	// SeverityWarning indicates issues that should be fixed but do not
	// make the bibliography unusable.
	SeverityWarning
	// SeverityError indicates issues that make results unreliable
	// (e.g., entries that could not be parsed).
	SeverityError
)

// String returns the human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Issue represents a single problem found in a bibliography entry.
type Issue struct {
	EntryKey string   // Citation key of the affected entry ("" for file-level issues)
	Severity Severity // Issue severity level
	Rule     string   // Checker identifier (e.g. "title-case")
	Message  string   // Brief description of the issue
	Detail   string   // Supporting detail (current value, mismatch reason)
	Fix      string   // Suggested replacement or command, when one exists
}

// Result contains all issues found during a check run.
type Result struct {
	Issues       []Issue
	EntriesTotal int // Total entries inspected
}

// HasErrors returns true if any error-level issues exist.
func (r *Result) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// HasWarnings returns true if any warning-level issues exist.
func (r *Result) HasWarnings() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityWarning {
			return true
		}
	}
	return false
}

// ErrorCount returns the number of error-level issues.
func (r *Result) ErrorCount() int {
	return r.countBy(SeverityError)
}

// WarningCount returns the number of warning-level issues.
func (r *Result) WarningCount() int {
	return r.countBy(SeverityWarning)
}

// InfoCount returns the number of informational issues.
func (r *Result) InfoCount() int {
	return r.countBy(SeverityInfo)
}

func (r *Result) countBy(sev Severity) int {
	count := 0
	for _, issue := range r.Issues {
		if issue.Severity == sev {
			count++
		}
	}
	return count
}

// Checker inspects a parsed bibliography and reports issues.
type Checker interface {
	// Name returns the unique identifier for this checker.
	Name() string

	// Check inspects the document and returns any issues found.
	Check(doc *bibtex.Document) []Issue
}

// Runner applies a fixed list of checkers to a document.
type Runner struct {
	checkers []Checker
	quiet    bool
}

// NewRunner creates a runner. In quiet mode only error-level issues
// are collected.
func NewRunner(quiet bool, checkers ...Checker) *Runner {
	return &Runner{checkers: checkers, quiet: quiet}
}

// Check runs every checker against the document.
func (r *Runner) Check(doc *bibtex.Document) *Result {
	result := &Result{
		Issues:       []Issue{},
		EntriesTotal: len(doc.Entries),
	}
	for _, c := range r.checkers {
		for _, issue := range c.Check(doc) {
			if r.quiet && issue.Severity != SeverityError {
				continue
			}
			result.Issues = append(result.Issues, issue)
		}
	}
	return result
}
