package scholar

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/bibcheck/internal/bibtex"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	return NewClient(0, "test@example.org", WithDelay(0))
}

func overrideEndpoint(t *testing.T, target *string, value string) {
	t.Helper()
	old := *target
	*target = value
	t.Cleanup(func() { *target = old })
}

func TestLookupCrossRef(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "mailto:test@example.org")
		fmt.Fprint(w, `{"status":"ok","message":{"title":["Attention Is All You Need"]}}`)
	}))
	defer srv.Close()
	overrideEndpoint(t, &crossrefBase, srv.URL+"/")

	m, err := testClient(t).LookupCrossRef(context.Background(), "https://doi.org/10.1000/x")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "Attention Is All You Need", m.Title)
	assert.Equal(t, ConfidenceHigh, m.Confidence)
	assert.Equal(t, "https://doi.org/10.1000/x", m.URL)
}

func TestLookupCrossRef_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()
	overrideEndpoint(t, &crossrefBase, srv.URL+"/")

	_, err := testClient(t).LookupCrossRef(context.Background(), "10.1000/missing")
	assert.Error(t, err)
}

func TestLookupDBLP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		fmt.Fprint(w, `{"result":{"hits":{"hit":[
			{"info":{"title":"Some Other Paper.","url":"https://dblp.org/1"}},
			{"info":{"title":"A Study of Cats.","url":"https://dblp.org/2"}}
		]}}}`)
	}))
	defer srv.Close()
	overrideEndpoint(t, &dblpSearchURL, srv.URL)

	m, err := testClient(t).LookupDBLP(context.Background(), "a study of cats")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "A Study of Cats", m.Title, "trailing period stripped")
	assert.Equal(t, "https://dblp.org/2", m.URL)
}

func TestLookupDBLP_NoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"result":{"hits":{"hit":[]}}}`)
	}))
	defer srv.Close()
	overrideEndpoint(t, &dblpSearchURL, srv.URL)

	m, err := testClient(t).LookupDBLP(context.Background(), "an unknown paper")
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestLookupSemanticScholar(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[{"title":"A Study of Cats","url":"https://s2.org/1"}]}`)
	}))
	defer srv.Close()
	overrideEndpoint(t, &semanticSearchURL, srv.URL)

	m, err := testClient(t).LookupSemanticScholar(context.Background(), "A STUDY OF CATS")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "A Study of Cats", m.Title)
}

func TestLookupArxiv(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1706.03762", r.URL.Query().Get("id_list"))
		fmt.Fprint(w, `<?xml version="1.0"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry><title>Attention Is
  All You Need</title></entry>
</feed>`)
	}))
	defer srv.Close()
	overrideEndpoint(t, &arxivQueryURL, srv.URL)

	m, err := testClient(t).LookupArxiv(context.Background(), "1706.03762")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "Attention Is All You Need", m.Title, "wrapped title lines joined")
	assert.Equal(t, "https://arxiv.org/abs/1706.03762", m.URL)
}

func TestLookup_DOIAuthoritative(t *testing.T) {
	crossrefCalls := 0
	crossref := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		crossrefCalls++
		fmt.Fprint(w, `{"status":"ok","message":{"title":["A Study of Cats"]}}`)
	}))
	defer crossref.Close()
	dblp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("DBLP must not be queried when a DOI is present")
	}))
	defer dblp.Close()
	overrideEndpoint(t, &crossrefBase, crossref.URL+"/")
	overrideEndpoint(t, &dblpSearchURL, dblp.URL)

	doc, err := bibtex.Parse([]byte(`@article{k, title = {a study of cats}, doi = {10.1/x}}`))
	require.NoError(t, err)

	result := testClient(t).Lookup(context.Background(), doc.Entries[0])
	assert.Equal(t, 1, crossrefCalls)
	require.NotNil(t, result.Match)
	assert.True(t, result.CaseDiffers)
	assert.False(t, result.Errored())
}

func TestLookup_FallbackChain(t *testing.T) {
	dblp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"result":{"hits":{"hit":[]}}}`)
	}))
	defer dblp.Close()
	s2 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[{"title":"A Study of Cats","url":""}]}`)
	}))
	defer s2.Close()
	overrideEndpoint(t, &dblpSearchURL, dblp.URL)
	overrideEndpoint(t, &semanticSearchURL, s2.URL)

	doc, err := bibtex.Parse([]byte(`@article{k, title = {A Study of Cats}}`))
	require.NoError(t, err)

	result := testClient(t).Lookup(context.Background(), doc.Entries[0])
	require.NotNil(t, result.Match)
	assert.Equal(t, "semanticscholar", result.Match.Source)
	assert.False(t, result.CaseDiffers)
	assert.Len(t, result.Statuses, 2)
}

func TestLookup_CacheHit(t *testing.T) {
	cache, err := NewCache(":memory:")
	require.NoError(t, err)
	defer cache.Close()

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"status":"ok","message":{"title":["A Study of Cats"]}}`)
	}))
	defer srv.Close()
	overrideEndpoint(t, &crossrefBase, srv.URL+"/")

	c := NewClient(0, "", WithDelay(0), WithCache(cache))
	for i := 0; i < 3; i++ {
		m, err := c.LookupCrossRef(context.Background(), "10.1/x")
		require.NoError(t, err)
		require.NotNil(t, m)
	}
	assert.Equal(t, 1, calls, "second and third lookups served from cache")
}
