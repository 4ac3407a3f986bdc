package bibtex

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBib = `% my references
@string{ieee = "IEEE"}

@article{PLAN_Wang_ICCV2025,
  title     = {A study on {BERT} models},
  author    = {Wang, Wei and Li, Na},
  journal   = {IEEE Transactions on Image Processing},
  year      = {2025},
  month     = jun,
}

@inproceedings{MG-CLIP_Huang_ICCV2025,
  title = "class-incremental learning revisited",
  booktitle = {IEEE/CVF International Conference on Computer Vision},
  year = {2025}
}

@comment{this is ignored}
`

func TestParse_Entries(t *testing.T) {
	doc, err := Parse([]byte(sampleBib))
	require.NoError(t, err)
	require.Len(t, doc.Entries, 2)

	first := doc.Entries[0]
	assert.Equal(t, "article", first.Type)
	assert.Equal(t, "PLAN_Wang_ICCV2025", first.Key)
	assert.Equal(t, "A study on {BERT} models", first.Field("title"))
	assert.Equal(t, "Wang, Wei and Li, Na", first.Field("author"))
	assert.Equal(t, "jun", first.Field("month"))
	assert.True(t, first.Has("year"))
	assert.False(t, first.Has("publisher"))
	assert.Equal(t, []string{"title", "author", "journal", "year", "month"}, first.FieldNames())

	second := doc.Entries[1]
	assert.Equal(t, "inproceedings", second.Type)
	assert.Equal(t, "class-incremental learning revisited", second.Field("title"))
}

func TestParse_FieldLookupIsCaseInsensitive(t *testing.T) {
	doc, err := Parse([]byte("@Article{k, Title = {X}, YEAR = {2020}}"))
	require.NoError(t, err)
	require.Len(t, doc.Entries, 1)
	e := doc.Entries[0]
	assert.Equal(t, "article", e.Type)
	assert.Equal(t, "X", e.Field("title"))
	assert.Equal(t, "2020", e.Field("Year"))
}

func TestParse_MultilineValue(t *testing.T) {
	src := "@article{k,\n  title = {a very long\n           wrapped title},\n  year = {2020}\n}"
	doc, err := Parse([]byte(src))
	require.NoError(t, err)
	require.Len(t, doc.Entries, 1)
	assert.Contains(t, doc.Entries[0].Field("title"), "wrapped title")
}

func TestParse_NestedBracesInValue(t *testing.T) {
	doc, err := Parse([]byte("@article{k, title = {on {BERT} and {GPT-2}}}"))
	require.NoError(t, err)
	assert.Equal(t, "on {BERT} and {GPT-2}", doc.Entries[0].Field("title"))
}

func TestParse_TruncatedEntry(t *testing.T) {
	doc, err := Parse([]byte("@article{ok, year = {2020}}\n@article{broken, title = {never closed"))
	require.Error(t, err)
	// The intact entry is still returned.
	require.NotNil(t, doc.Entry("ok"))
	assert.Equal(t, "2020", doc.Entry("ok").Field("year"))
}

func TestParse_GarbageBetweenEntries(t *testing.T) {
	doc, err := Parse([]byte("junk text\n@misc{a, note={x}}\nmore junk @ not an entry\n@misc{b, note={y}}"))
	require.NoError(t, err)
	assert.Len(t, doc.Entries, 2)
}

func TestRewrite_ReplacesOnlyTheTitleValue(t *testing.T) {
	doc, err := Parse([]byte(sampleBib))
	require.NoError(t, err)

	entry := doc.Entry("PLAN_Wang_ICCV2025")
	require.NotNil(t, entry)

	rep, ok := doc.ReplaceFieldValue(entry, "title", "A Study on {BERT} Models")
	require.True(t, ok)

	out := string(doc.Rewrite([]Replacement{rep}))
	assert.Contains(t, out, "title     = {A Study on {BERT} Models},")
	// Every other byte survives: comments, the string macro, formatting.
	assert.Contains(t, out, "% my references")
	assert.Contains(t, out, `@string{ieee = "IEEE"}`)
	assert.Contains(t, out, "title = \"class-incremental learning revisited\"")
	// Only the one value changed.
	assert.Equal(t, strings.Count(sampleBib, "\n"), strings.Count(out, "\n"))
}

func TestRewrite_MultipleReplacements(t *testing.T) {
	doc, err := Parse([]byte(sampleBib))
	require.NoError(t, err)

	r1, ok := doc.ReplaceFieldValue(doc.Entry("PLAN_Wang_ICCV2025"), "title", "T1")
	require.True(t, ok)
	r2, ok := doc.ReplaceFieldValue(doc.Entry("MG-CLIP_Huang_ICCV2025"), "title", "T2")
	require.True(t, ok)

	out := string(doc.Rewrite([]Replacement{r1, r2}))
	assert.Contains(t, out, "title     = {T1},")
	assert.Contains(t, out, "title = \"T2\"")
}

func TestRewrite_NoReplacementsCopiesSource(t *testing.T) {
	doc, err := Parse([]byte(sampleBib))
	require.NoError(t, err)
	out := doc.Rewrite(nil)
	assert.Equal(t, sampleBib, string(out))
}

func TestReplaceFieldValue_MissingField(t *testing.T) {
	doc, err := Parse([]byte("@misc{k, note = {x}}"))
	require.NoError(t, err)
	_, ok := doc.ReplaceFieldValue(doc.Entries[0], "title", "T")
	assert.False(t, ok)
}
