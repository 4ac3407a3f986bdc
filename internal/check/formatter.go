package check

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Formatter formats check results for output.
type Formatter interface {
	Format(w io.Writer, result *Result, path string) error
}

// TextFormatter formats results as human-readable text.
type TextFormatter struct{}

// NewTextFormatter creates a text formatter.
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{}
}

// Format outputs results in human-readable text format.
func (f *TextFormatter) Format(w io.Writer, result *Result, path string) error {
	if _, err := fmt.Fprintf(w, "Checking bibliography: %s\n", path); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("━", 60)); err != nil {
		return err
	}

	for _, issue := range result.Issues {
		if err := f.formatIssue(w, issue); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintln(w, strings.Repeat("━", 60)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Results:\n  %d entries scanned\n", result.EntriesTotal); err != nil {
		return err
	}

	if n := result.ErrorCount(); n > 0 {
		if _, err := fmt.Fprintf(w, "  %d error%s\n", n, pluralize(n)); err != nil {
			return err
		}
	}
	if n := result.WarningCount(); n > 0 {
		if _, err := fmt.Fprintf(w, "  %d warning%s (should fix)\n", n, pluralize(n)); err != nil {
			return err
		}
	}
	if n := result.InfoCount(); n > 0 {
		if _, err := fmt.Fprintf(w, "  %d suggestion%s\n", n, pluralize(n)); err != nil {
			return err
		}
	}

	return f.printFinalMessage(w, result)
}

// printFinalMessage prints the closing line based on the result.
func (f *TextFormatter) printFinalMessage(w io.Writer, result *Result) error {
	var msg string
	switch {
	case result.HasErrors():
		msg = "❌ Bibliography has errors; results may be incomplete."
	case result.HasWarnings():
		msg = "⚠️  Bibliography has warnings. Run: bibcheck fix"
	case len(result.Issues) > 0:
		msg = "ℹ️  Only informational suggestions found."
	default:
		msg = "✨ Bibliography passes all checks!"
	}
	_, err := fmt.Fprintln(w, msg)
	return err
}

// formatIssue formats a single issue.
func (f *TextFormatter) formatIssue(w io.Writer, issue Issue) error {
	var icon string
	switch issue.Severity {
	case SeverityError:
		icon = "✗"
	case SeverityWarning:
		icon = "⚠"
	case SeverityInfo:
		icon = "ℹ"
	}

	key := issue.EntryKey
	if key == "" {
		key = "(file)"
	}
	if _, err := fmt.Fprintf(w, "%s %s [%s] %s\n", icon, key, issue.Rule, issue.Message); err != nil {
		return err
	}
	if issue.Detail != "" {
		if _, err := fmt.Fprintf(w, "    %s\n", issue.Detail); err != nil {
			return err
		}
	}
	if issue.Fix != "" {
		if _, err := fmt.Fprintf(w, "    suggestion: %s\n", issue.Fix); err != nil {
			return err
		}
	}
	return nil
}

// JSONFormatter formats results as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// JSONOutput represents the JSON output structure.
type JSONOutput struct {
	Path         string      `json:"path"`
	EntriesTotal int         `json:"entries_total"`
	ErrorCount   int         `json:"error_count"`
	WarningCount int         `json:"warning_count"`
	InfoCount    int         `json:"info_count"`
	Issues       []JSONIssue `json:"issues"`
}

// JSONIssue represents a single issue in JSON format.
type JSONIssue struct {
	EntryKey string `json:"entry_key,omitempty"`
	Severity string `json:"severity"`
	Rule     string `json:"rule"`
	Message  string `json:"message"`
	Detail   string `json:"detail,omitempty"`
	Fix      string `json:"fix,omitempty"`
}

// Format outputs results in JSON format.
func (f *JSONFormatter) Format(w io.Writer, result *Result, path string) error {
	output := JSONOutput{
		Path:         path,
		EntriesTotal: result.EntriesTotal,
		ErrorCount:   result.ErrorCount(),
		WarningCount: result.WarningCount(),
		InfoCount:    result.InfoCount(),
	}
	for _, issue := range result.Issues {
		output.Issues = append(output.Issues, JSONIssue{
			EntryKey: issue.EntryKey,
			Severity: issue.Severity.String(),
			Rule:     issue.Rule,
			Message:  issue.Message,
			Detail:   issue.Detail,
			Fix:      issue.Fix,
		})
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// NewFormatter creates the appropriate formatter based on format string.
func NewFormatter(format string) Formatter {
	switch format {
	case "json":
		return NewJSONFormatter()
	default:
		return NewTextFormatter()
	}
}

// pluralize returns "s" if count != 1, otherwise empty string.
func pluralize(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}
