package bibtex_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corticalabs/site-manager/internal/bibtex"
)

const fullEntry = `@article{garyfallidis2014,
  title = {Analysis toolkits for diffusion imaging},
  author = {Garyfallidis, E. and Brett, M.},
  journal = {Frontiers in Neuroinformatics},
  publisher = {Frontiers},
  year = {2014},
  month = {2},
  doi = {10.3389/fninf.2014.00008},
  url = {https://example.org/paper},
}`

func TestFromSource_FullEntry(t *testing.T) {
	pubs, rejected, err := bibtex.FromSource(fullEntry)
	require.NoError(t, err)
	require.Len(t, pubs, 1)
	assert.Zero(t, rejected)

	pub := pubs[0]
	assert.Equal(t, "Analysis toolkits for diffusion imaging", pub.Title)
	assert.Equal(t, "Garyfallidis, E. and Brett, M.", pub.Authors)
	assert.Equal(t, "https://example.org/paper", pub.URL)
	assert.Equal(t, "article", pub.EntryType)
	assert.Equal(t, "Frontiers in Neuroinformatics", pub.PublishedIn)
	assert.Equal(t, "Frontiers", pub.Publisher)
	assert.Equal(t, "2014", pub.Year)
	assert.Equal(t, "2", pub.Month)
	assert.Equal(t, "10.3389/fninf.2014.00008", pub.DOI)
	assert.Contains(t, pub.Bibtex, "garyfallidis2014")
}

func TestFromSource_AuthorFieldFallbacks(t *testing.T) {
	src := `@misc{typo2020,
  title = {A record with the historical author spelling},
  aithors = {C. Author},
  url = {https://example.org/typo},
}`

	pubs, rejected, err := bibtex.FromSource(src)
	require.NoError(t, err)
	require.Len(t, pubs, 1)
	assert.Zero(t, rejected)
	assert.Equal(t, "C. Author", pubs[0].Authors)
}

func TestFromSource_URLFallbacks(t *testing.T) {
	tests := []struct {
		name    string
		fields  string
		wantURL string
	}{
		{
			name:    "url wins over link and doi",
			fields:  "url = {https://example.org/url},\n  link = {https://example.org/link},\n  doi = {10.1/x},",
			wantURL: "https://example.org/url",
		},
		{
			name:    "link used when url missing",
			fields:  "link = {https://example.org/link},\n  doi = {10.1/x},",
			wantURL: "https://example.org/link",
		},
		{
			name:    "doi derives url as last resort",
			fields:  "doi = {10.3389/fninf.2014.00008},",
			wantURL: "https://doi.org/10.3389/fninf.2014.00008",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "@article{key,\n  title = {T},\n  author = {A},\n  " + tt.fields + "\n}"

			pubs, rejected, err := bibtex.FromSource(src)
			require.NoError(t, err)
			require.Len(t, pubs, 1)
			assert.Zero(t, rejected)
			assert.Equal(t, tt.wantURL, pubs[0].URL)
		})
	}
}

func TestFromSource_BooktitleFallback(t *testing.T) {
	src := `@inproceedings{conf2023,
  title = {Conference paper},
  author = {D. Author},
  url = {https://example.org/conf},
  booktitle = {Proceedings of ISMRM},
}`

	pubs, _, err := bibtex.FromSource(src)
	require.NoError(t, err)
	require.Len(t, pubs, 1)
	assert.Equal(t, "Proceedings of ISMRM", pubs[0].PublishedIn)
}

func TestFromSource_RejectsIncompleteEntries(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{
			name: "missing title",
			src:  "@article{k, author = {A}, url = {https://example.org}}",
		},
		{
			name: "missing authors",
			src:  "@article{k, title = {T}, url = {https://example.org}}",
		},
		{
			name: "missing url doi and link",
			src:  "@article{k, title = {T}, author = {A}}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pubs, rejected, err := bibtex.FromSource(tt.src)
			require.NoError(t, err)
			assert.Empty(t, pubs)
			assert.Equal(t, 1, rejected)
		})
	}
}

func TestFromSource_MixedEntries(t *testing.T) {
	src := fullEntry + "\n\n@article{broken, year = {2021}}"

	pubs, rejected, err := bibtex.FromSource(src)
	require.NoError(t, err)
	require.Len(t, pubs, 1)
	assert.Equal(t, 1, rejected)
}

func TestFromSource_MalformedSource(t *testing.T) {
	_, _, err := bibtex.FromSource("@article{unterminated,")
	assert.Error(t, err)
}

func TestFromSource_EmptySource(t *testing.T) {
	_, _, err := bibtex.FromSource("")
	assert.ErrorIs(t, err, bibtex.ErrNoEntries)
}
