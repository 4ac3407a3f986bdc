package titlecase

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize_RoundTrip(t *testing.T) {
	titles := []string{
		"a study on {BERT} models",
		"  leading and trailing  ",
		"{only protected}",
		"nested {a {b}} braces",
		"unmatched { brace",
		"unmatched } brace",
		"",
		"tabs\tand\nnewlines",
	}
	for _, title := range titles {
		segs := Tokenize(title)
		var b strings.Builder
		for _, s := range segs {
			b.WriteString(s.Text)
		}
		assert.Equal(t, title, b.String(), "round trip failed for %q", title)
	}
}

func TestTokenize_Kinds(t *testing.T) {
	segs := Tokenize("a {BERT} study — 3 parts.")
	var kinds []string
	for _, s := range segs {
		kinds = append(kinds, s.Kind.String()+":"+s.Text)
	}
	assert.Equal(t, []string{
		"word:a",
		"space: ",
		"protected:{BERT}",
		"space: ",
		"word:study",
		"space: ",
		"punct:—",
		"space: ",
		"punct:3",
		"space: ",
		"word:parts.",
	}, kinds)
}

// Nested braces follow the shortest-match rule: the protected span ends
// at the first closing brace.
func TestTokenize_NestedBracesShortestMatch(t *testing.T) {
	segs := Tokenize("{a {b}} c")
	require.NotEmpty(t, segs)
	assert.Equal(t, SegmentProtected, segs[0].Kind)
	assert.Equal(t, "{a {b}", segs[0].Text)
}

func TestTokenize_UnmatchedBraceIsLiteral(t *testing.T) {
	segs := Tokenize("an {unmatched story")
	for _, s := range segs {
		assert.NotEqual(t, SegmentProtected, s.Kind)
	}
}

func TestClassifyToken(t *testing.T) {
	assert.Equal(t, SegmentWord, classifyToken("cat"))
	assert.Equal(t, SegmentWord, classifyToken("resnet50"))
	assert.Equal(t, SegmentWord, classifyToken("(cat)"))
	assert.Equal(t, SegmentWord, classifyToken("42"))
	assert.Equal(t, SegmentPunct, classifyToken("3"))
	assert.Equal(t, SegmentPunct, classifyToken("—"))
	assert.Equal(t, SegmentPunct, classifyToken("..."))
}
