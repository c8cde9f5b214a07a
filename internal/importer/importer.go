// Package importer bulk-loads publications from spreadsheet uploads.
package importer

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/corticalabs/site-manager/internal/logger"
	"github.com/corticalabs/site-manager/internal/models"
)

// PublicationStore persists imported publications.
type PublicationStore interface {
	Create(ctx context.Context, pub *models.Publication) error
}

// RowError describes why one spreadsheet row was skipped.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// Result summarises one import run.
type Result struct {
	Imported int        `json:"imported"`
	Skipped  []RowError `json:"skipped,omitempty"`
}

// PublicationImporter reads .xlsx uploads with a header row and one
// publication per following row.
type PublicationImporter struct {
	store  PublicationStore
	logger logger.Logger
}

func NewPublicationImporter(store PublicationStore, log logger.Logger) *PublicationImporter {
	return &PublicationImporter{
		store:  store,
		logger: log,
	}
}

// ImportXLSX loads every row of the first sheet. Rows missing a required
// column (title, authors, url) are reported in the result and skipped; a
// storage failure aborts the run.
func (i *PublicationImporter) ImportXLSX(ctx context.Context, r io.Reader) (*Result, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("spreadsheet has no data rows")
	}

	columns := headerIndex(rows[0])
	result := &Result{}

	for idx, row := range rows[1:] {
		rowNum := idx + 2

		pub, reason := publicationFromRow(columns, row)
		if reason != "" {
			result.Skipped = append(result.Skipped, RowError{Row: rowNum, Reason: reason})
			continue
		}

		if err := i.store.Create(ctx, pub); err != nil {
			return nil, fmt.Errorf("import row %d: %w", rowNum, err)
		}
		result.Imported++
	}

	i.logger.Info("publication import finished",
		logger.Int("imported", result.Imported),
		logger.Int("skipped", len(result.Skipped)))

	return result, nil
}

func headerIndex(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for idx, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = idx
	}
	return columns
}

func publicationFromRow(columns map[string]int, row []string) (*models.Publication, string) {
	cell := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	pub := &models.Publication{
		Title:       cell("title"),
		Authors:     cell("authors"),
		URL:         cell("url"),
		EntryType:   cell("entry_type"),
		DOI:         cell("doi"),
		PublishedIn: cell("published_in"),
		Publisher:   cell("publisher"),
		Year:        cell("year"),
		Month:       cell("month"),
	}
	if pub.URL == "" && pub.DOI != "" {
		pub.URL = "https://doi.org/" + pub.DOI
	}

	switch {
	case pub.Title == "":
		return nil, "missing title"
	case pub.Authors == "":
		return nil, "missing authors"
	case pub.URL == "":
		return nil, "missing url"
	}

	return pub, ""
}
