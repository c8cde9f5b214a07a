package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corticalabs/site-manager/internal/logger"
	"github.com/corticalabs/site-manager/internal/models"
	"github.com/corticalabs/site-manager/internal/repository"
)

func newPublicationRepo(t *testing.T) (*repository.PublicationRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return repository.NewPublicationRepository(db, logger.NewNop()), mock
}

func TestPublicationRepository_Create(t *testing.T) {
	repo, mock := newPublicationRepo(t)
	ctx := context.Background()

	pub := &models.Publication{
		Title:   "Tracking pipelines revisited",
		Authors: "A. Author and B. Author",
		URL:     "https://doi.org/10.1000/182",
	}

	mock.ExpectExec("INSERT INTO publications").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(ctx, pub))

	assert.NotEmpty(t, pub.ID)
	assert.False(t, pub.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPublicationRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newPublicationRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM publications WHERE id =").
		WithArgs("missing-id").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing-id")

	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPublicationRepository_SetHighlighted(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
	}{
		{"empty set clears all flags", nil},
		{"single id", []string{"11111111-1111-1111-1111-111111111111"}},
		{"multiple ids", []string{
			"11111111-1111-1111-1111-111111111111",
			"22222222-2222-2222-2222-222222222222",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newPublicationRepo(t)

			mock.ExpectExec("UPDATE publications SET is_highlighted").
				WillReturnResult(sqlmock.NewResult(0, 3))

			require.NoError(t, repo.SetHighlighted(context.Background(), tt.ids))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPublicationRepository_Update_NotFound(t *testing.T) {
	repo, mock := newPublicationRepo(t)

	mock.ExpectExec("UPDATE publications").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Publication{ID: "missing-id"})

	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPublicationRepository_Delete(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(sqlmock.Sqlmock)
		wantErr   error
	}{
		{
			name: "deletes existing publication",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("DELETE FROM publications").
					WithArgs("some-id").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "missing publication",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("DELETE FROM publications").
					WithArgs("some-id").
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: repository.ErrNotFound,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("DELETE FROM publications").
					WithArgs("some-id").
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: sql.ErrConnDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newPublicationRepo(t)
			tt.setupMock(mock)

			err := repo.Delete(context.Background(), "some-id")

			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPublicationRepository_List(t *testing.T) {
	repo, mock := newPublicationRepo(t)
	now := time.Now()

	rows := sqlmock.NewRows([]string{
		"id", "title", "authors", "url", "entry_type", "doi", "published_in",
		"publisher", "year", "month", "bibtex", "is_highlighted", "created_at", "updated_at",
	}).
		AddRow("id-1", "Paper one", "A. Author", "https://example.org/1", "article", "", "NeuroImage",
			"", "2025", "3", "", true, now, now).
		AddRow("id-2", "Paper two", "B. Author", "https://example.org/2", "", "", "",
			"", "2024", "", "", false, now, now)

	mock.ExpectQuery("SELECT (.+) FROM publications ORDER BY").WillReturnRows(rows)

	pubs, err := repo.List(context.Background())
	require.NoError(t, err)

	require.Len(t, pubs, 2)
	assert.Equal(t, "Paper one", pubs[0].Title)
	assert.True(t, pubs[0].IsHighlighted)
	assert.False(t, pubs[1].IsHighlighted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
