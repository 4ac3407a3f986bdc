// Package compose combines the .bib files of a directory tree into a
// single bibliography. File contents are preserved byte for byte,
// comments included, with a source marker between files so the origin
// of every entry stays visible.
package compose

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	biberr "git.home.luguber.info/inful/bibcheck/internal/errors"
)

const (
	sourceMarkerPrefix = "% === source:"
	sourceMarkerSuffix = "==="
)

// Stats summarizes a composition run.
type Stats struct {
	FileCount      int
	EntryCount     int
	DuplicateCount int
	// Duplicates maps an entry key to the source files declaring it,
	// only for keys that appear more than once.
	Duplicates map[string][]string
}

var entryKeyRe = regexp.MustCompile(`@\w+\s*\{\s*([^,\s]+)\s*,`)

// extractEntryKeys pulls citation keys out of raw BibTeX text without
// a full parse, so malformed files still contribute to duplicate
// detection.
func extractEntryKeys(raw string) []string {
	var keys []string
	for _, m := range entryKeyRe.FindAllStringSubmatch(raw, -1) {
		keys = append(keys, strings.TrimSpace(m[1]))
	}
	return keys
}

// discover finds .bib files under root in deterministic order.
func discover(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".bib") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool {
		return strings.ToLower(files[i]) < strings.ToLower(files[j])
	})
	return files, nil
}

// Compose merges every .bib file under inputDir into outputFile and
// returns run statistics. Duplicate keys are reported, not removed:
// deduplication is an editorial decision.
func Compose(inputDir, outputFile string) (*Stats, error) {
	logger := slog.Default().With("component", "compose")

	info, err := os.Stat(inputDir)
	if err != nil || !info.IsDir() {
		return nil, biberr.New(biberr.CategoryFileSystem, biberr.SeverityFatal,
			fmt.Sprintf("input directory does not exist: %s", inputDir))
	}

	files, err := discover(inputDir)
	if err != nil {
		return nil, biberr.Wrap(err, biberr.CategoryFileSystem, biberr.SeverityFatal,
			"failed to scan input directory")
	}
	if len(files) == 0 {
		return nil, biberr.New(biberr.CategoryValidation, biberr.SeverityError,
			fmt.Sprintf("no .bib files found under: %s", inputDir))
	}

	if err := os.MkdirAll(filepath.Dir(outputFile), 0o755); err != nil {
		return nil, biberr.Wrap(err, biberr.CategoryFileSystem, biberr.SeverityFatal,
			"failed to create output directory")
	}
	out, err := os.Create(outputFile)
	if err != nil {
		return nil, biberr.Wrap(err, biberr.CategoryFileSystem, biberr.SeverityFatal,
			"failed to create output file").WithContext("path", outputFile)
	}
	defer out.Close()

	fmt.Fprintf(out, "%% Composed by bibcheck compose\n%% Root: %s\n\n", inputDir)

	keyOrigins := map[string][]string{}
	stats := &Stats{FileCount: len(files), Duplicates: map[string][]string{}}

	for _, path := range files {
		rel, err := filepath.Rel(inputDir, path)
		if err != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, biberr.Wrap(err, biberr.CategoryFileSystem, biberr.SeverityError,
				"failed to read source file").WithContext("path", path)
		}

		fmt.Fprintf(out, "%s %s %s\n", sourceMarkerPrefix, rel, sourceMarkerSuffix)
		out.Write(raw)
		if len(raw) > 0 && raw[len(raw)-1] != '\n' {
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out)

		keys := extractEntryKeys(string(raw))
		stats.EntryCount += len(keys)
		for _, key := range keys {
			keyOrigins[key] = append(keyOrigins[key], rel)
		}
		logger.Debug("added source file", "path", rel, "entries", len(keys))
	}

	for key, origins := range keyOrigins {
		if len(origins) > 1 {
			stats.Duplicates[key] = origins
		}
	}
	stats.DuplicateCount = len(stats.Duplicates)

	logger.Info("composed bibliography",
		"output", outputFile,
		"files", stats.FileCount,
		"entries", stats.EntryCount,
		"duplicates", stats.DuplicateCount)
	return stats, nil
}
