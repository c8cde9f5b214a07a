package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/corticalabs/site-manager/internal/logger"
	"github.com/corticalabs/site-manager/internal/models"
)

type PublicationRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPublicationRepository(db *sql.DB, log logger.Logger) *PublicationRepository {
	return &PublicationRepository{
		db:     db,
		logger: log,
	}
}

const publicationColumns = `id, title, authors, url, entry_type, doi, published_in,
	       publisher, year, month, bibtex, is_highlighted, created_at, updated_at`

func (r *PublicationRepository) Create(ctx context.Context, pub *models.Publication) error {
	pub.ID = uuid.New().String()
	pub.CreatedAt = time.Now()
	pub.UpdatedAt = time.Now()

	query := `
		INSERT INTO publications (
			id, title, authors, url, entry_type, doi, published_in,
			publisher, year, month, bibtex, is_highlighted, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.ExecContext(ctx,
		query,
		pub.ID,
		pub.Title,
		pub.Authors,
		pub.URL,
		pub.EntryType,
		pub.DOI,
		pub.PublishedIn,
		pub.Publisher,
		pub.Year,
		pub.Month,
		pub.Bibtex,
		pub.IsHighlighted,
		pub.CreatedAt,
		pub.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("insert publication: %w", err)
	}

	return nil
}

func (r *PublicationRepository) GetByID(ctx context.Context, id string) (*models.Publication, error) {
	query := `SELECT ` + publicationColumns + ` FROM publications WHERE id = $1`

	var pub models.Publication
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&pub.ID,
		&pub.Title,
		&pub.Authors,
		&pub.URL,
		&pub.EntryType,
		&pub.DOI,
		&pub.PublishedIn,
		&pub.Publisher,
		&pub.Year,
		&pub.Month,
		&pub.Bibtex,
		&pub.IsHighlighted,
		&pub.CreatedAt,
		&pub.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("publication %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query publication: %w", err)
	}

	return &pub, nil
}

func (r *PublicationRepository) List(ctx context.Context) ([]models.Publication, error) {
	query := `SELECT ` + publicationColumns + ` FROM publications ORDER BY year DESC, created_at DESC`
	return r.queryPublications(ctx, query)
}

// ListHighlighted returns the publications flagged for the front page.
func (r *PublicationRepository) ListHighlighted(ctx context.Context) ([]models.Publication, error) {
	query := `SELECT ` + publicationColumns + ` FROM publications
		WHERE is_highlighted = TRUE ORDER BY year DESC, created_at DESC`
	return r.queryPublications(ctx, query)
}

func (r *PublicationRepository) queryPublications(ctx context.Context, query string, args ...any) ([]models.Publication, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query publications: %w", err)
	}
	defer rows.Close()

	pubs := make([]models.Publication, 0)
	for rows.Next() {
		var pub models.Publication
		if scanErr := rows.Scan(
			&pub.ID,
			&pub.Title,
			&pub.Authors,
			&pub.URL,
			&pub.EntryType,
			&pub.DOI,
			&pub.PublishedIn,
			&pub.Publisher,
			&pub.Year,
			&pub.Month,
			&pub.Bibtex,
			&pub.IsHighlighted,
			&pub.CreatedAt,
			&pub.UpdatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("scan publication: %w", scanErr)
		}
		pubs = append(pubs, pub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate publications: %w", err)
	}
	return pubs, nil
}

func (r *PublicationRepository) Update(ctx context.Context, pub *models.Publication) error {
	pub.UpdatedAt = time.Now()

	query := `
		UPDATE publications
		SET title = $2, authors = $3, url = $4, entry_type = $5, doi = $6,
		    published_in = $7, publisher = $8, year = $9, month = $10,
		    bibtex = $11, is_highlighted = $12, updated_at = $13
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx,
		query,
		pub.ID,
		pub.Title,
		pub.Authors,
		pub.URL,
		pub.EntryType,
		pub.DOI,
		pub.PublishedIn,
		pub.Publisher,
		pub.Year,
		pub.Month,
		pub.Bibtex,
		pub.IsHighlighted,
		pub.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("update publication: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("publication %s: %w", pub.ID, ErrNotFound)
	}

	return nil
}

func (r *PublicationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM publications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete publication: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("publication %s: %w", id, ErrNotFound)
	}

	return nil
}

// SetHighlighted flags exactly the given publication IDs as highlighted and
// clears the flag on every other record, in a single statement.
func (r *PublicationRepository) SetHighlighted(ctx context.Context, ids []string) error {
	if ids == nil {
		ids = []string{}
	}

	query := `UPDATE publications SET is_highlighted = (id = ANY($1::uuid[])), updated_at = $2`

	if _, err := r.db.ExecContext(ctx, query, pq.Array(ids), time.Now()); err != nil {
		return fmt.Errorf("set highlighted publications: %w", err)
	}

	r.logger.Info("Highlighted publications updated",
		logger.Int("count", len(ids)),
	)

	return nil
}
