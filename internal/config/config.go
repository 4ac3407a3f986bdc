// Package config loads the bibcheck YAML configuration. Environment
// variables referenced in the file are expanded, and a .env file in
// the working directory is loaded first so local values (API mail
// addresses, cache paths) can stay out of the config.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	biberr "git.home.luguber.info/inful/bibcheck/internal/errors"
)

// Config represents the application configuration.
type Config struct {
	// Style selects the title-case style ("apa" by default).
	Style string `yaml:"style,omitempty"`

	// ExtraStopwords extend the style's stopword set.
	ExtraStopwords []string `yaml:"extra_stopwords,omitempty"`

	// CanonicalTerms are exact mixed-case spellings added to the
	// built-in table (e.g. ResNet50).
	CanonicalTerms []string `yaml:"canonical_terms,omitempty"`

	Checks     ChecksConfig     `yaml:"checks,omitempty"`
	Protection ProtectionConfig `yaml:"protection,omitempty"`
	Lookup     LookupConfig     `yaml:"lookup,omitempty"`
	Watch      WatchConfig      `yaml:"watch,omitempty"`
	Reports    ReportsConfig    `yaml:"reports,omitempty"`
}

// ChecksConfig selects the fields and entry types the missing-field
// checker enforces.
type ChecksConfig struct {
	RequiredFields []string `yaml:"required_fields,omitempty"`
	EntryTypes     []string `yaml:"entry_types,omitempty"`
	CitationKeys   bool     `yaml:"citation_keys,omitempty"`
}

// ProtectionConfig tunes the term-protection checker.
type ProtectionConfig struct {
	// VocabularyFile is a newline-delimited file of extra terms.
	VocabularyFile string `yaml:"vocabulary_file,omitempty"`
	// ExtraTerms are inline extra vocabulary terms.
	ExtraTerms []string `yaml:"extra_terms,omitempty"`
	// NoDefaultVocabulary disables the built-in term table.
	NoDefaultVocabulary bool `yaml:"no_default_vocabulary,omitempty"`
	// MinLength is the minimum word length for mixed-case detection.
	MinLength int `yaml:"min_length,omitempty"`
}

// LookupConfig configures the external title lookup clients. Duration
// values are strings in time.ParseDuration format ("10s", "1m30s").
type LookupConfig struct {
	// CachePath is the SQLite cache location; empty disables caching.
	CachePath string `yaml:"cache_path,omitempty"`
	// Timeout bounds each API request.
	Timeout string `yaml:"timeout,omitempty"`
	// Mailto is appended to the CrossRef User-Agent, per their etiquette.
	Mailto string `yaml:"mailto,omitempty"`
	// Sources restricts lookups (crossref, dblp, semanticscholar, arxiv).
	Sources []string `yaml:"sources,omitempty"`
}

// TimeoutDuration parses the lookup timeout, falling back to the
// default for empty or malformed values.
func (l LookupConfig) TimeoutDuration() time.Duration {
	return parseDuration(l.Timeout, 10*time.Second)
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	// Interval between scheduled re-checks.
	Interval string `yaml:"interval,omitempty"`
	// Listen is the metrics HTTP address; empty disables the endpoint.
	Listen string `yaml:"listen,omitempty"`
	// Debounce delays re-checks after a burst of file events.
	Debounce string `yaml:"debounce,omitempty"`
}

// IntervalDuration parses the re-check interval.
func (w WatchConfig) IntervalDuration() time.Duration {
	return parseDuration(w.Interval, 10*time.Minute)
}

// DebounceDuration parses the event debounce window.
func (w WatchConfig) DebounceDuration() time.Duration {
	return parseDuration(w.Debounce, 2*time.Second)
}

// ReportsConfig controls report file output.
type ReportsConfig struct {
	// Directory receives the per-check TSV reports; empty means
	// alongside the input file.
	Directory string `yaml:"directory,omitempty"`
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Style: "apa",
		Checks: ChecksConfig{
			RequiredFields: []string{"month"},
			CitationKeys:   true,
		},
		Protection: ProtectionConfig{
			MinLength: 3,
		},
	}
}

// Load loads configuration from the specified file. A missing file is
// not an error: the defaults apply, matching the zero-setup CLI use.
func Load(configPath string) (*Config, error) {
	loadEnvFile()

	cfg := Default()
	if configPath == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, biberr.Wrap(err, biberr.CategoryConfig, biberr.SeverityFatal,
			"failed to read config file").WithContext("path", configPath)
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, biberr.Wrap(err, biberr.CategoryConfig, biberr.SeverityFatal,
			"failed to parse config file").WithContext("path", configPath)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.applyFallbacks()
	return cfg, nil
}

// validate rejects values that would otherwise fail far from their
// source, like a malformed duration surfacing mid-watch.
func (c *Config) validate() error {
	for name, value := range map[string]string{
		"lookup.timeout": c.Lookup.Timeout,
		"watch.interval": c.Watch.Interval,
		"watch.debounce": c.Watch.Debounce,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return biberr.Wrap(err, biberr.CategoryConfig, biberr.SeverityFatal,
				fmt.Sprintf("invalid duration for %s: %s", name, value))
		}
	}
	return nil
}

// applyFallbacks restores defaults for values the file zeroed out.
func (c *Config) applyFallbacks() {
	if c.Style == "" {
		c.Style = "apa"
	}
	if c.Protection.MinLength <= 0 {
		c.Protection.MinLength = 3
	}
}

const initTemplate = `# bibcheck configuration
style: apa

checks:
  required_fields: [month]
  citation_keys: true

protection:
  min_length: 3
  # vocabulary_file: terms.txt
  # extra_terms: [transformer]

# canonical_terms: [ResNet50]

lookup:
  timeout: 10s
  # cache_path: ${HOME}/.cache/bibcheck/lookups.db
  # mailto: you@example.org

watch:
  interval: 10m
  debounce: 2s
  # listen: :9090
`

// Init writes a starter configuration file. Existing files are only
// overwritten with force.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return biberr.New(biberr.CategoryConfig, biberr.SeverityError,
			fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", configPath))
	}
	return os.WriteFile(configPath, []byte(initTemplate), 0o644)
}
