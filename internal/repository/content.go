package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/corticalabs/site-manager/internal/logger"
	"github.com/corticalabs/site-manager/internal/models"
)

// ContentRepository serves the read-only site content: labeled sections and
// news posts.
type ContentRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewContentRepository(db *sql.DB, log logger.Logger) *ContentRepository {
	return &ContentRepository{
		db:     db,
		logger: log,
	}
}

// SectionByPosition fetches the website section placed at the given position.
func (r *ContentRepository) SectionByPosition(ctx context.Context, positionID string) (*models.WebsiteSection, error) {
	query := `
		SELECT id, title, body_markdown, body_html, website_position_id,
		       section_type, show_in_nav, created_at, updated_at
		FROM website_sections
		WHERE website_position_id = $1
	`

	var section models.WebsiteSection
	err := r.db.QueryRowContext(ctx, query, positionID).Scan(
		&section.ID,
		&section.Title,
		&section.BodyMarkdown,
		&section.BodyHTML,
		&section.PositionID,
		&section.SectionType,
		&section.ShowInNav,
		&section.CreatedAt,
		&section.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("website section %s: %w", positionID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query website section: %w", err)
	}

	return &section, nil
}

// LatestNews returns up to limit news posts, newest first.
func (r *ContentRepository) LatestNews(ctx context.Context, limit int) ([]models.NewsPost, error) {
	query := `
		SELECT id, title, body_markdown, body_html, description, post_date, created_at
		FROM news_posts
		ORDER BY post_date DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query news posts: %w", err)
	}
	defer rows.Close()

	posts := make([]models.NewsPost, 0)
	for rows.Next() {
		var post models.NewsPost
		if scanErr := rows.Scan(
			&post.ID,
			&post.Title,
			&post.BodyMarkdown,
			&post.BodyHTML,
			&post.Description,
			&post.PostDate,
			&post.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("scan news post: %w", scanErr)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate news posts: %w", err)
	}

	return posts, nil
}
