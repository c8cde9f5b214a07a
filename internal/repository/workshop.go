package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/corticalabs/site-manager/internal/logger"
	"github.com/corticalabs/site-manager/internal/models"
)

type WorkshopRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewWorkshopRepository(db *sql.DB, log logger.Logger) *WorkshopRepository {
	return &WorkshopRepository{
		db:     db,
		logger: log,
	}
}

const workshopColumns = `id, slug, code_name, description, start_date, end_date,
	       registration_start_date, registration_end_date,
	       body_markdown, body_html, is_online, is_published, created_at, updated_at`

// GetBySlug fetches a workshop with its speakers attached.
func (r *WorkshopRepository) GetBySlug(ctx context.Context, slug string) (*models.Workshop, error) {
	query := `SELECT ` + workshopColumns + ` FROM workshops WHERE slug = $1`

	var w models.Workshop
	err := r.db.QueryRowContext(ctx, query, slug).Scan(
		&w.ID,
		&w.Slug,
		&w.CodeName,
		&w.Description,
		&w.StartDate,
		&w.EndDate,
		&w.RegistrationStartDate,
		&w.RegistrationEndDate,
		&w.BodyMarkdown,
		&w.BodyHTML,
		&w.IsOnline,
		&w.IsPublished,
		&w.CreatedAt,
		&w.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("workshop %s: %w", slug, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query workshop: %w", err)
	}

	speakers, err := r.speakersFor(ctx, w.ID)
	if err != nil {
		return nil, err
	}
	w.Speakers = speakers

	return &w, nil
}

// ListPublished returns the published workshops, most recent first.
func (r *WorkshopRepository) ListPublished(ctx context.Context) ([]models.Workshop, error) {
	query := `SELECT ` + workshopColumns + ` FROM workshops
		WHERE is_published = TRUE ORDER BY start_date DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query workshops: %w", err)
	}
	defer rows.Close()

	workshops := make([]models.Workshop, 0)
	for rows.Next() {
		var w models.Workshop
		if scanErr := rows.Scan(
			&w.ID,
			&w.Slug,
			&w.CodeName,
			&w.Description,
			&w.StartDate,
			&w.EndDate,
			&w.RegistrationStartDate,
			&w.RegistrationEndDate,
			&w.BodyMarkdown,
			&w.BodyHTML,
			&w.IsOnline,
			&w.IsPublished,
			&w.CreatedAt,
			&w.UpdatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("scan workshop: %w", scanErr)
		}
		workshops = append(workshops, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workshops: %w", err)
	}

	return workshops, nil
}

func (r *WorkshopRepository) speakersFor(ctx context.Context, workshopID string) ([]models.Speaker, error) {
	query := `
		SELECT s.id, s.fullname, s.department, s.university, s.avatar_url, s.created_at
		FROM speakers s
		JOIN workshop_speakers ws ON ws.speaker_id = s.id
		WHERE ws.workshop_id = $1
		ORDER BY s.fullname
	`

	rows, err := r.db.QueryContext(ctx, query, workshopID)
	if err != nil {
		return nil, fmt.Errorf("query speakers: %w", err)
	}
	defer rows.Close()

	speakers := make([]models.Speaker, 0)
	for rows.Next() {
		var s models.Speaker
		if scanErr := rows.Scan(
			&s.ID,
			&s.FullName,
			&s.Department,
			&s.University,
			&s.AvatarURL,
			&s.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("scan speaker: %w", scanErr)
		}
		speakers = append(speakers, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate speakers: %w", err)
	}

	return speakers, nil
}

// PricingFor returns the pricing tiers of a workshop.
func (r *WorkshopRepository) PricingFor(ctx context.Context, workshopID string) ([]models.Pricing, error) {
	query := `
		SELECT id, workshop_id, name, slug, stripe_price_id, price, currency, created_at
		FROM pricing
		WHERE workshop_id = $1
		ORDER BY price
	`

	rows, err := r.db.QueryContext(ctx, query, workshopID)
	if err != nil {
		return nil, fmt.Errorf("query pricing: %w", err)
	}
	defer rows.Close()

	tiers := make([]models.Pricing, 0)
	for rows.Next() {
		var p models.Pricing
		if scanErr := rows.Scan(
			&p.ID,
			&p.WorkshopID,
			&p.Name,
			&p.Slug,
			&p.StripePriceID,
			&p.Price,
			&p.Currency,
			&p.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("scan pricing: %w", scanErr)
		}
		tiers = append(tiers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pricing: %w", err)
	}

	return tiers, nil
}
