package venues

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/bibcheck/internal/bibtex"
)

func parseDoc(t *testing.T, src string) *bibtex.Document {
	t.Helper()
	doc, err := bibtex.Parse([]byte(src))
	require.NoError(t, err)
	return doc
}

func TestSurvey(t *testing.T) {
	doc := parseDoc(t, `
@inproceedings{a, booktitle = {NeurIPS}, year = {2024}}
@inproceedings{b, booktitle = {{NeurIPS}}, year = {2024}}
@article{c, journal = {TPAMI}, year = {2023}}
@book{d, publisher = {Springer}, year = {2023}}
@misc{e, title = {no venue}, year = {2023}}
@article{f, journal = {TPAMI}}
`)
	inv := Survey(doc)

	assert.Equal(t, 6, inv.Total)
	assert.Equal(t, []string{"e", "f"}, inv.Skipped)

	// Brace and case variants of a venue collapse into the first
	// spelling seen; years sort newest first, venues alphabetically.
	require.Len(t, inv.Combos, 3)
	assert.Equal(t, Combo{Venue: "NeurIPS", Year: "2024"}, inv.Combos[0])
	assert.Equal(t, Combo{Venue: "Springer", Year: "2023"}, inv.Combos[1])
	assert.Equal(t, Combo{Venue: "TPAMI", Year: "2023"}, inv.Combos[2])
}

func TestSurvey_VenueFallbackOrder(t *testing.T) {
	doc := parseDoc(t, `
@inproceedings{k, booktitle = {CVPR}, journal = {Ignored}, year = {2022}}
`)
	inv := Survey(doc)
	require.Len(t, inv.Combos, 1)
	assert.Equal(t, "CVPR", inv.Combos[0].Venue)
}

func TestSurvey_SameVenueDifferentYears(t *testing.T) {
	doc := parseDoc(t, `
@inproceedings{a, booktitle = {ICML}, year = {2023}}
@inproceedings{b, booktitle = {ICML}, year = {2024}}
`)
	inv := Survey(doc)
	require.Len(t, inv.Combos, 2)
	assert.Equal(t, "2024", inv.Combos[0].Year)
	assert.Equal(t, "2023", inv.Combos[1].Year)
}
