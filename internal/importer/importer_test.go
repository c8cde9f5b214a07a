package importer

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/corticalabs/site-manager/internal/logger"
	"github.com/corticalabs/site-manager/internal/models"
)

type memoryStore struct {
	created []models.Publication
}

func (s *memoryStore) Create(_ context.Context, pub *models.Publication) error {
	s.created = append(s.created, *pub)
	return nil
}

func buildWorkbook(t *testing.T, rows [][]string) *bytes.Buffer {
	t.Helper()

	file := excelize.NewFile()
	sheet := file.GetSheetName(0)
	for idx, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, idx+1)
		require.NoError(t, err)
		require.NoError(t, file.SetSheetRow(sheet, cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, file.Write(&buf))
	return &buf
}

func TestImportXLSX(t *testing.T) {
	workbook := buildWorkbook(t, [][]string{
		{"Title", "Authors", "URL", "DOI", "Published_In", "Year"},
		{"Paper one", "A. Author", "https://example.org/1", "", "NeuroImage", "2025"},
		{"Paper two", "B. Author", "", "10.1000/182", "", "2024"},
		{"", "C. Author", "https://example.org/3", "", "", ""},
		{"Paper four", "", "https://example.org/4", "", "", ""},
	})

	store := &memoryStore{}
	imp := NewPublicationImporter(store, logger.NewNop())

	result, err := imp.ImportXLSX(context.Background(), workbook)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Imported)
	require.Len(t, result.Skipped, 2)
	assert.Equal(t, 4, result.Skipped[0].Row)
	assert.Equal(t, "missing title", result.Skipped[0].Reason)
	assert.Equal(t, "missing authors", result.Skipped[1].Reason)

	require.Len(t, store.created, 2)
	assert.Equal(t, "Paper one", store.created[0].Title)
	assert.Equal(t, "NeuroImage", store.created[0].PublishedIn)
	// A row without a URL falls back to the DOI link.
	assert.Equal(t, "https://doi.org/10.1000/182", store.created[1].URL)
}

func TestImportXLSX_NoDataRows(t *testing.T) {
	workbook := buildWorkbook(t, [][]string{{"Title", "Authors", "URL"}})

	imp := NewPublicationImporter(&memoryStore{}, logger.NewNop())

	_, err := imp.ImportXLSX(context.Background(), workbook)
	assert.Error(t, err)
}

func TestImportXLSX_NotASpreadsheet(t *testing.T) {
	imp := NewPublicationImporter(&memoryStore{}, logger.NewNop())

	_, err := imp.ImportXLSX(context.Background(), strings.NewReader("not a workbook"))
	assert.Error(t, err)
}
