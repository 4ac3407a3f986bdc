package scholar

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"git.home.luguber.info/inful/bibcheck/internal/bibtex"
	biberr "git.home.luguber.info/inful/bibcheck/internal/errors"
)

// Endpoint variables are overridable in tests.
var (
	crossrefBase      = "https://api.crossref.org/works/"
	dblpSearchURL     = "https://dblp.org/search/publ/api"
	semanticSearchURL = "https://api.semanticscholar.org/graph/v1/paper/search"
	arxivQueryURL     = "http://export.arxiv.org/api/query"
)

const defaultRequestDelay = 300 * time.Millisecond

// Client queries external bibliography sources. A nil Cache disables
// caching.
type Client struct {
	http      *http.Client
	userAgent string
	cache     *Cache
	delay     time.Duration
	logger    *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithCache attaches a lookup cache.
func WithCache(cache *Cache) Option {
	return func(c *Client) { c.cache = cache }
}

// WithDelay sets the pause inserted between consecutive API requests.
func WithDelay(d time.Duration) Option {
	return func(c *Client) { c.delay = d }
}

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient builds a lookup client. mailto is included in the
// User-Agent so API operators can reach out, per CrossRef etiquette.
func NewClient(timeout time.Duration, mailto string, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ua := "bibcheck/1.0"
	if mailto != "" {
		ua = fmt.Sprintf("bibcheck/1.0 (mailto:%s)", mailto)
	}
	c := &Client{
		http:      &http.Client{Timeout: timeout},
		userAgent: ua,
		delay:     defaultRequestDelay,
		logger:    slog.Default().With("component", "scholar"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, biberr.WrapRetryable(err, biberr.CategoryNetwork, biberr.SeverityWarning, "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, biberr.New(biberr.CategoryNetwork, biberr.SeverityWarning,
			fmt.Sprintf("HTTP %d from %s", resp.StatusCode, req.URL.Host))
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, biberr.WrapRetryable(err, biberr.CategoryNetwork, biberr.SeverityWarning, "read response")
	}
	return body, nil
}

var doiPrefixRe = regexp.MustCompile(`^https?://doi\.org/`)

// LookupCrossRef resolves a DOI through the CrossRef works API.
func (c *Client) LookupCrossRef(ctx context.Context, doi string) (*Match, error) {
	const source = "crossref"
	doi = doiPrefixRe.ReplaceAllString(strings.TrimSpace(doi), "")
	if doi == "" {
		return nil, nil
	}
	if m, ok := c.cached(source, doi); ok {
		return m, nil
	}

	body, err := c.fetch(ctx, crossrefBase+url.PathEscape(doi))
	if err != nil {
		return nil, err
	}

	var payload struct {
		Status  string `json:"status"`
		Message struct {
			Title []string `json:"title"`
		} `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, biberr.Wrap(err, biberr.CategoryParse, biberr.SeverityWarning, "crossref response")
	}
	if payload.Status != "ok" || len(payload.Message.Title) == 0 {
		c.store(source, doi, nil)
		return nil, nil
	}
	m := &Match{
		Source:     source,
		Title:      payload.Message.Title[0],
		Confidence: ConfidenceHigh,
		URL:        "https://doi.org/" + doi,
	}
	c.store(source, doi, m)
	return m, nil
}

// LookupDBLP searches DBLP by title and returns the first hit whose
// title matches the query text.
func (c *Client) LookupDBLP(ctx context.Context, title string) (*Match, error) {
	const source = "dblp"
	search := CleanForSearch(title)
	if search == "" {
		return nil, nil
	}
	if m, ok := c.cached(source, search); ok {
		return m, nil
	}

	q := url.Values{"q": {search}, "format": {"json"}, "h": {"5"}}
	body, err := c.fetch(ctx, dblpSearchURL+"?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var payload struct {
		Result struct {
			Hits struct {
				Hit []struct {
					Info struct {
						Title string `json:"title"`
						URL   string `json:"url"`
					} `json:"info"`
				} `json:"hit"`
			} `json:"hits"`
		} `json:"result"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, biberr.Wrap(err, biberr.CategoryParse, biberr.SeverityWarning, "dblp response")
	}
	for _, hit := range payload.Result.Hits.Hit {
		// DBLP sometimes appends a trailing period.
		found := strings.TrimRight(hit.Info.Title, ".")
		if TitlesMatch(title, found) {
			m := &Match{Source: source, Title: found, Confidence: ConfidenceHigh, URL: hit.Info.URL}
			c.store(source, search, m)
			return m, nil
		}
	}
	c.store(source, search, nil)
	return nil, nil
}

// LookupSemanticScholar searches the Semantic Scholar graph API.
func (c *Client) LookupSemanticScholar(ctx context.Context, title string) (*Match, error) {
	const source = "semanticscholar"
	search := CleanForSearch(title)
	if search == "" {
		return nil, nil
	}
	if m, ok := c.cached(source, search); ok {
		return m, nil
	}

	q := url.Values{"query": {search}, "limit": {"5"}, "fields": {"title,url"}}
	body, err := c.fetch(ctx, semanticSearchURL+"?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var payload struct {
		Data []struct {
			Title string `json:"title"`
			URL   string `json:"url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, biberr.Wrap(err, biberr.CategoryParse, biberr.SeverityWarning, "semantic scholar response")
	}
	for _, paper := range payload.Data {
		if TitlesMatch(title, paper.Title) {
			m := &Match{Source: source, Title: paper.Title, Confidence: ConfidenceHigh, URL: paper.URL}
			c.store(source, search, m)
			return m, nil
		}
	}
	c.store(source, search, nil)
	return nil, nil
}

type atomFeed struct {
	Entries []struct {
		Title string `xml:"title"`
	} `xml:"entry"`
}

// LookupArxiv resolves an arXiv identifier through the export API.
func (c *Client) LookupArxiv(ctx context.Context, arxivID string) (*Match, error) {
	const source = "arxiv"
	if arxivID == "" {
		return nil, nil
	}
	if m, ok := c.cached(source, arxivID); ok {
		return m, nil
	}

	q := url.Values{"id_list": {arxivID}}
	body, err := c.fetch(ctx, arxivQueryURL+"?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var feed atomFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, biberr.Wrap(err, biberr.CategoryParse, biberr.SeverityWarning, "arxiv response")
	}
	for _, entry := range feed.Entries {
		if entry.Title == "" {
			continue
		}
		// arXiv titles wrap across lines.
		title := strings.TrimSpace(spaceRe.ReplaceAllString(entry.Title, " "))
		m := &Match{
			Source:     source,
			Title:      title,
			Confidence: ConfidenceHigh,
			URL:        "https://arxiv.org/abs/" + arxivID,
		}
		c.store(source, arxivID, m)
		return m, nil
	}
	c.store(source, arxivID, nil)
	return nil, nil
}

// Lookup checks one entry against the configured sources and reports
// whether the published title differs in capitalization.
func (c *Client) Lookup(ctx context.Context, entry *bibtex.Entry) *Result {
	result := &Result{
		EntryKey:     entry.Key,
		CurrentTitle: entry.Field("title"),
	}
	if result.CurrentTitle == "" {
		return result
	}

	record := func(source string, m *Match, err error) bool {
		result.Statuses = append(result.Statuses, Status{Source: source, Found: m != nil, Err: err})
		if err != nil {
			c.logger.Warn("lookup failed", "source", source, "entry", entry.Key, "error", err)
			return false
		}
		if m != nil {
			result.Match = m
			result.CaseDiffers = CaseDiffers(result.CurrentTitle, m.Title)
		}
		return m != nil
	}

	if doi := entry.Field("doi"); doi != "" {
		m, err := c.LookupCrossRef(ctx, doi)
		record("crossref", m, err)
		// A DOI lookup is authoritative; no fallback.
		return result
	}

	if id := ArxivID(entry.Field("eprint"), entry.Field("archiveprefix"), entry.Field("url")); id != "" {
		m, err := c.LookupArxiv(ctx, id)
		if record("arxiv", m, err) && result.CaseDiffers {
			return result
		}
		c.pause(ctx)
	}

	m, err := c.LookupDBLP(ctx, result.CurrentTitle)
	if record("dblp", m, err) && result.CaseDiffers {
		return result
	}
	c.pause(ctx)

	if result.Match == nil {
		m, err := c.LookupSemanticScholar(ctx, result.CurrentTitle)
		record("semanticscholar", m, err)
	}
	return result
}

// pause rate-limits consecutive API calls.
func (c *Client) pause(ctx context.Context) {
	if c.delay <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(c.delay):
	}
}

func (c *Client) cached(source, query string) (*Match, bool) {
	if c.cache == nil {
		return nil, false
	}
	m, ok, err := c.cache.Get(context.Background(), source, query)
	if err != nil {
		c.logger.Warn("cache read failed", "error", err)
		return nil, false
	}
	return m, ok
}

func (c *Client) store(source, query string, m *Match) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Put(context.Background(), source, query, m); err != nil {
		c.logger.Warn("cache write failed", "error", err)
	}
}
