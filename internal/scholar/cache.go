package scholar

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Cache persists lookup results in SQLite so repeated runs over the
// same bibliography do not hammer the APIs. Negative results (no
// match) are cached too.
type Cache struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewCache opens (or creates) the cache database. Use ":memory:" for
// an ephemeral cache.
func NewCache(dbPath string) (*Cache, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	cache := &Cache{db: db}
	if err := cache.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return cache, nil
}

func (c *Cache) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS lookups (
		source TEXT NOT NULL,
		query TEXT NOT NULL,
		found INTEGER NOT NULL,
		title TEXT,
		url TEXT,
		confidence TEXT,
		timestamp INTEGER NOT NULL,
		PRIMARY KEY (source, query)
	);
	CREATE INDEX IF NOT EXISTS idx_lookup_timestamp ON lookups(timestamp);
	`
	_, err := c.db.Exec(schema)
	return err
}

// Get returns the cached match for a source/query pair. The second
// return value reports whether the pair was cached at all; a cached
// negative result yields (nil, true, nil).
func (c *Cache) Get(ctx context.Context, source, query string) (*Match, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	row := c.db.QueryRowContext(ctx,
		"SELECT found, title, url, confidence FROM lookups WHERE source = ? AND query = ?",
		source, query,
	)
	var found int
	var title, url, confidence sql.NullString
	if err := row.Scan(&found, &title, &url, &confidence); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("query cache: %w", err)
	}
	if found == 0 {
		return nil, true, nil
	}
	return &Match{
		Source:     source,
		Title:      title.String,
		URL:        url.String,
		Confidence: Confidence(confidence.String),
	}, true, nil
}

// Put stores a lookup outcome. A nil match records a negative result.
func (c *Cache) Put(ctx context.Context, source, query string, m *Match) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	found := 0
	var title, url, confidence string
	if m != nil {
		found = 1
		title, url, confidence = m.Title, m.URL, string(m.Confidence)
	}
	_, err := c.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO lookups (source, query, found, title, url, confidence, timestamp) VALUES (?, ?, ?, ?, ?, ?, ?)",
		source, query, found, title, url, confidence, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert lookup: %w", err)
	}
	return nil
}

// Prune drops entries older than the given age.
func (c *Cache) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := time.Now().Add(-maxAge).Unix()
	res, err := c.db.ExecContext(ctx, "DELETE FROM lookups WHERE timestamp < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune cache: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the database connection.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.db.Close()
}
