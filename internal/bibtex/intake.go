// Package bibtex converts BibTeX citation source into publication records.
package bibtex

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nickng/bibtex"

	"github.com/corticalabs/site-manager/internal/models"
)

// ErrInvalidCitation marks an entry missing one of the required fields
// (title, authors, url).
var ErrInvalidCitation = errors.New("citation is missing a required field")

// ErrNoEntries means the source parsed but produced no BibTeX entries.
var ErrNoEntries = errors.New("no citation entries in source")

// FromSource parses BibTeX source and converts every entry into a publication.
// Entries missing a required field are dropped; rejected reports how many.
// A malformed source fails the whole intake.
func FromSource(src string) (pubs []models.Publication, rejected int, err error) {
	parsed, err := bibtex.Parse(strings.NewReader(src))
	if err != nil {
		return nil, 0, fmt.Errorf("parse bibtex source: %w", err)
	}
	if len(parsed.Entries) == 0 {
		return nil, 0, ErrNoEntries
	}

	for _, entry := range parsed.Entries {
		pub, convErr := fromEntry(entry)
		if convErr != nil {
			rejected++
			continue
		}
		pubs = append(pubs, *pub)
	}

	return pubs, rejected, nil
}

func fromEntry(entry *bibtex.BibEntry) (*models.Publication, error) {
	pub := &models.Publication{
		Title: field(entry, "title"),
		// Old archived records spell the author field "aithors". The typo
		// shipped in enough exported citations that it is still accepted
		// as a fallback.
		Authors:   firstOf(field(entry, "author"), field(entry, "aithors")),
		EntryType: entry.Type,
		DOI:       field(entry, "doi"),
		Publisher: field(entry, "publisher"),
		Year:      field(entry, "year"),
		Month:     field(entry, "month"),
		Bibtex:    entry.String(),
	}

	pub.URL = firstOf(field(entry, "url"), field(entry, "link"))
	if pub.URL == "" && pub.DOI != "" {
		pub.URL = "https://doi.org/" + pub.DOI
	}

	pub.PublishedIn = firstOf(field(entry, "journal"), field(entry, "booktitle"))

	if pub.Title == "" || pub.Authors == "" || pub.URL == "" {
		return nil, ErrInvalidCitation
	}

	return pub, nil
}

func field(entry *bibtex.BibEntry, name string) string {
	value, ok := entry.Fields[name]
	if !ok {
		return ""
	}
	return strings.TrimSpace(value.String())
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
