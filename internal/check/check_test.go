package check

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/bibcheck/internal/bibtex"
	"git.home.luguber.info/inful/bibcheck/internal/titlecase"
)

func parseDoc(t *testing.T, src string) *bibtex.Document {
	t.Helper()
	doc, err := bibtex.Parse([]byte(src))
	require.NoError(t, err)
	return doc
}

func TestMissingFieldsChecker(t *testing.T) {
	doc := parseDoc(t, `
@article{A_One_TIP2020, title = {T}, year = {2020}, month = {jan}}
@article{B_Two_TIP2021, title = {T}, year = {2021}}
@misc{C_Three_X2022, note = {no month but wrong type}}
`)
	c := NewMissingFieldsChecker([]string{"month"}, nil)
	issues := c.Check(doc)
	require.Len(t, issues, 1)
	assert.Equal(t, "B_Two_TIP2021", issues[0].EntryKey)
	assert.Equal(t, SeverityWarning, issues[0].Severity)
	assert.Contains(t, issues[0].Message, "month")
}

func TestMissingFieldsChecker_NoRequiredFields(t *testing.T) {
	doc := parseDoc(t, `@article{k, title = {T}}`)
	c := NewMissingFieldsChecker(nil, nil)
	assert.Empty(t, c.Check(doc))
}

func TestCitationKeyChecker(t *testing.T) {
	doc := parseDoc(t, `
@inproceedings{PLAN_Wang_ICCV2025,
  booktitle = {IEEE/CVF International Conference on Computer Vision},
  year = {2025}}
@inproceedings{badkey,
  booktitle = {Some Workshop}, year = {2020}}
@inproceedings{MG-CLIP_Huang_ICCV2025,
  booktitle = {International Conference on Machine Learning},
  year = {2024}}
`)
	c := NewCitationKeyChecker()
	issues := c.Check(doc)

	byKey := map[string][]Issue{}
	for _, i := range issues {
		byKey[i.EntryKey] = append(byKey[i.EntryKey], i)
	}

	assert.Empty(t, byKey["PLAN_Wang_ICCV2025"])

	require.Len(t, byKey["badkey"], 1)
	assert.Equal(t, "key format", byKey["badkey"][0].Message)

	// Wrong venue and wrong year, both reported.
	msgs := []string{}
	for _, i := range byKey["MG-CLIP_Huang_ICCV2025"] {
		msgs = append(msgs, i.Message)
	}
	assert.ElementsMatch(t, []string{"year mismatch", "venue mismatch"}, msgs)
}

func TestTitleCaseChecker(t *testing.T) {
	doc := parseDoc(t, `
@article{A_One_TIP2020, title = {a study of the cat}}
@article{B_Two_TIP2021, title = {A Study of the Cat}}
@article{C_Three_TIP2022, title = {A  Study
    of the Cat}}
@article{D_Four_TIP2023, note = {no title at all}}
`)
	caser := titlecase.NewCaser(titlecase.GetStyle("apa"), nil, nil)
	c := NewTitleCaseChecker(caser)

	suggestions := c.Suggestions(doc)
	require.Len(t, suggestions, 1, "only the miscased title changes; wrapped whitespace is not a change")
	assert.Equal(t, "A_One_TIP2020", suggestions[0].EntryKey)
	assert.Equal(t, "A Study of the Cat", suggestions[0].Suggested)

	issues := c.Check(doc)
	require.Len(t, issues, 1)
	assert.Equal(t, "A Study of the Cat", issues[0].Fix)
}

func TestTitleCaseChecker_DuplicateKeysRewriteOwnEntry(t *testing.T) {
	// Two entries share a citation key; only the second needs fixing.
	// The suggestion must point at that entry so the rewrite lands on
	// its span, not on the first entry with the same key.
	src := `
@article{dup, title = {A Correct Title}}
@article{dup, title = {a lowercase title}}
`
	doc := parseDoc(t, src)
	caser := titlecase.NewCaser(titlecase.GetStyle("apa"), nil, nil)
	c := NewTitleCaseChecker(caser)

	suggestions := c.Suggestions(doc)
	require.Len(t, suggestions, 1)
	assert.Same(t, doc.Entries[1], suggestions[0].Entry)
	assert.Equal(t, "A Lowercase Title", suggestions[0].Suggested)

	rep, ok := doc.ReplaceFieldValue(suggestions[0].Entry, "title", suggestions[0].Suggested)
	require.True(t, ok)
	out := string(doc.Rewrite([]bibtex.Replacement{rep}))
	assert.Contains(t, out, "{A Correct Title}")
	assert.Contains(t, out, "{A Lowercase Title}")
	assert.NotContains(t, out, "{a lowercase title}")
}

func TestProtectionChecker(t *testing.T) {
	doc := parseDoc(t, `
@article{A_One_TIP2020,
  title = {bayesian optimization with BERT and ResNet50 over {CNN} features},
  author = {Smith, John}}
`)
	c := NewProtectionChecker(nil, 0)
	issues := c.Check(doc)

	words := map[string]string{}
	for _, i := range issues {
		words[i.Message] = i.Detail
	}
	assert.Contains(t, words, "unprotected term: BERT")
	assert.Contains(t, words, "unprotected term: ResNet50")
	assert.Contains(t, words, "unprotected term: bayesian")
	// {CNN} is already protected.
	assert.NotContains(t, words, "unprotected term: CNN")
	for _, i := range issues {
		assert.Equal(t, SeverityInfo, i.Severity)
	}
}

func TestProtectionChecker_AuthorSurnameSuppressed(t *testing.T) {
	doc := parseDoc(t, `
@article{K_Kalman_TIP1960,
  title = {a new approach to kalman filtering},
  author = {Kalman, Rudolf E.}}
`)
	c := NewProtectionChecker(nil, 0)
	for _, i := range c.Check(doc) {
		assert.NotContains(t, i.Message, "kalman")
	}
}

func TestProtectionChecker_RomanNumeralsSkipped(t *testing.T) {
	doc := parseDoc(t, `@article{k, title = {advances in learning part II}}`)
	c := NewProtectionChecker(nil, 0)
	for _, i := range c.Check(doc) {
		assert.NotContains(t, i.Message, "II")
	}
}

func TestProtectionChecker_ShoutingTitleIgnored(t *testing.T) {
	doc := parseDoc(t, `@article{k, title = {A SURVEY OF NEURAL NETWORKS FOR VISION}}`)
	c := NewProtectionChecker(nil, 0)
	assert.Empty(t, c.Check(doc))
}

func TestRunner_QuietMode(t *testing.T) {
	doc := parseDoc(t, `@article{A_One_TIP2020, title = {bayesian stuff}}`)
	caser := titlecase.NewCaser(titlecase.GetStyle("apa"), nil, nil)

	loud := NewRunner(false, NewTitleCaseChecker(caser), NewProtectionChecker(nil, 0))
	quiet := NewRunner(true, NewTitleCaseChecker(caser), NewProtectionChecker(nil, 0))

	loudResult := loud.Check(doc)
	assert.NotEmpty(t, loudResult.Issues)
	assert.Equal(t, 1, loudResult.EntriesTotal)

	quietResult := quiet.Check(doc)
	assert.Empty(t, quietResult.Issues, "quiet mode keeps only errors")
}

func TestTextFormatter(t *testing.T) {
	result := &Result{
		EntriesTotal: 3,
		Issues: []Issue{
			{EntryKey: "k1", Severity: SeverityWarning, Rule: "title-case", Message: "title not in title case", Fix: "A Study"},
			{EntryKey: "k2", Severity: SeverityInfo, Rule: "term-protection", Message: "unprotected term: BERT"},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, NewTextFormatter().Format(&buf, result, "refs.bib"))
	out := buf.String()
	assert.Contains(t, out, "refs.bib")
	assert.Contains(t, out, "3 entries scanned")
	assert.Contains(t, out, "1 warning (should fix)")
	assert.Contains(t, out, "1 suggestion")
	assert.Contains(t, out, "suggestion: A Study")
}

func TestJSONFormatter(t *testing.T) {
	result := &Result{
		EntriesTotal: 1,
		Issues: []Issue{
			{EntryKey: "k1", Severity: SeverityError, Rule: "parse", Message: "unterminated entry"},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter().Format(&buf, result, "refs.bib"))

	var out JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "refs.bib", out.Path)
	assert.Equal(t, 1, out.ErrorCount)
	require.Len(t, out.Issues, 1)
	assert.Equal(t, "ERROR", out.Issues[0].Severity)
}
