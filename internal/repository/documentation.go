package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/corticalabs/site-manager/internal/logger"
	"github.com/corticalabs/site-manager/internal/models"
)

type DocumentationRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewDocumentationRepository(db *sql.DB, log logger.Logger) *DocumentationRepository {
	return &DocumentationRepository{
		db:     db,
		logger: log,
	}
}

const documentationColumns = `id, version, url, displayed, is_updated,
	       intro, gallery, tutorials, created_at, updated_at`

func (r *DocumentationRepository) Create(ctx context.Context, doc *models.DocumentationLink) error {
	doc.ID = uuid.New().String()
	doc.CreatedAt = time.Now()
	doc.UpdatedAt = time.Now()

	introJSON, galleryJSON, tutorialsJSON, err := marshalFragments(doc)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO documentation_links (
			id, version, url, displayed, is_updated,
			intro, gallery, tutorials, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = r.db.ExecContext(ctx,
		query,
		doc.ID,
		doc.Version,
		doc.URL,
		doc.Displayed,
		doc.IsUpdated,
		introJSON,
		galleryJSON,
		tutorialsJSON,
		doc.CreatedAt,
		doc.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("insert documentation link: %w", err)
	}

	return nil
}

func marshalFragments(doc *models.DocumentationLink) (intro, gallery, tutorials []byte, err error) {
	if intro, err = json.Marshal(doc.Intro); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal intro: %w", err)
	}
	if doc.Gallery == nil {
		doc.Gallery = []models.Example{}
	}
	if gallery, err = json.Marshal(doc.Gallery); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal gallery: %w", err)
	}
	if doc.Tutorials == nil {
		doc.Tutorials = []models.ExampleGroup{}
	}
	if tutorials, err = json.Marshal(doc.Tutorials); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal tutorials: %w", err)
	}
	return intro, gallery, tutorials, nil
}

func scanDocumentation(scan func(...any) error) (*models.DocumentationLink, error) {
	var doc models.DocumentationLink
	var introJSON, galleryJSON, tutorialsJSON []byte

	if err := scan(
		&doc.ID,
		&doc.Version,
		&doc.URL,
		&doc.Displayed,
		&doc.IsUpdated,
		&introJSON,
		&galleryJSON,
		&tutorialsJSON,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(introJSON, &doc.Intro); err != nil {
		return nil, fmt.Errorf("unmarshal intro: %w", err)
	}
	if err := json.Unmarshal(galleryJSON, &doc.Gallery); err != nil {
		return nil, fmt.Errorf("unmarshal gallery: %w", err)
	}
	if err := json.Unmarshal(tutorialsJSON, &doc.Tutorials); err != nil {
		return nil, fmt.Errorf("unmarshal tutorials: %w", err)
	}

	return &doc, nil
}

func (r *DocumentationRepository) GetByID(ctx context.Context, id string) (*models.DocumentationLink, error) {
	query := `SELECT ` + documentationColumns + ` FROM documentation_links WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *DocumentationRepository) GetByVersion(ctx context.Context, version string) (*models.DocumentationLink, error) {
	query := `SELECT ` + documentationColumns + ` FROM documentation_links WHERE version = $1`
	return r.getOne(ctx, query, version)
}

func (r *DocumentationRepository) getOne(ctx context.Context, query string, args ...any) (*models.DocumentationLink, error) {
	row := r.db.QueryRowContext(ctx, query, args...)
	doc, err := scanDocumentation(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("documentation link: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query documentation link: %w", err)
	}
	return doc, nil
}

func (r *DocumentationRepository) List(ctx context.Context) ([]models.DocumentationLink, error) {
	query := `SELECT ` + documentationColumns + ` FROM documentation_links ORDER BY version DESC`
	return r.queryDocs(ctx, query)
}

// ListDisplayed returns the versions currently shown on the site.
func (r *DocumentationRepository) ListDisplayed(ctx context.Context) ([]models.DocumentationLink, error) {
	query := `SELECT ` + documentationColumns + ` FROM documentation_links
		WHERE displayed = TRUE ORDER BY version DESC`
	return r.queryDocs(ctx, query)
}

// LatestDisplayed returns the newest displayed release, skipping development
// snapshots. Falls back to the newest displayed version of any kind.
func (r *DocumentationRepository) LatestDisplayed(ctx context.Context) (*models.DocumentationLink, error) {
	docs, err := r.ListDisplayed(ctx)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}

	for idx := range docs {
		if !docs[idx].IsDev() {
			return &docs[idx], nil
		}
	}
	return &docs[0], nil
}

func (r *DocumentationRepository) queryDocs(ctx context.Context, query string, args ...any) ([]models.DocumentationLink, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query documentation links: %w", err)
	}
	defer rows.Close()

	docs := make([]models.DocumentationLink, 0)
	for rows.Next() {
		doc, scanErr := scanDocumentation(rows.Scan)
		if scanErr != nil {
			return nil, fmt.Errorf("scan documentation link: %w", scanErr)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documentation links: %w", err)
	}
	return docs, nil
}

func (r *DocumentationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM documentation_links WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete documentation link: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("documentation link %s: %w", id, ErrNotFound)
	}

	return nil
}

// ClearFreshness resets the freshness flag on every tracked version. Every
// sync pass calls this before handing the displayed versions to the refresh
// worker.
func (r *DocumentationRepository) ClearFreshness(ctx context.Context) error {
	query := `UPDATE documentation_links SET is_updated = FALSE, updated_at = $1`
	if _, err := r.db.ExecContext(ctx, query, time.Now()); err != nil {
		return fmt.Errorf("clear freshness flags: %w", err)
	}
	return nil
}

func (r *DocumentationRepository) SetDisplayed(ctx context.Context, id string, displayed bool) error {
	query := `UPDATE documentation_links SET displayed = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, displayed, time.Now())
	if err != nil {
		return fmt.Errorf("set displayed: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("documentation link %s: %w", id, ErrNotFound)
	}

	return nil
}

// SaveTutorials persists the refreshed tutorial index for one version.
func (r *DocumentationRepository) SaveTutorials(ctx context.Context, id string, groups []models.ExampleGroup) error {
	if groups == nil {
		groups = []models.ExampleGroup{}
	}
	payload, err := json.Marshal(groups)
	if err != nil {
		return fmt.Errorf("marshal tutorials: %w", err)
	}
	return r.saveFragment(ctx, id, "tutorials", payload)
}

// SaveGallery persists the refreshed gallery for one version.
func (r *DocumentationRepository) SaveGallery(ctx context.Context, id string, examples []models.Example) error {
	if examples == nil {
		examples = []models.Example{}
	}
	payload, err := json.Marshal(examples)
	if err != nil {
		return fmt.Errorf("marshal gallery: %w", err)
	}
	return r.saveFragment(ctx, id, "gallery", payload)
}

// SaveIntro persists the refreshed intro fragments for one version.
func (r *DocumentationRepository) SaveIntro(ctx context.Context, id string, intro models.IntroFragments) error {
	payload, err := json.Marshal(intro)
	if err != nil {
		return fmt.Errorf("marshal intro: %w", err)
	}
	return r.saveFragment(ctx, id, "intro", payload)
}

func (r *DocumentationRepository) saveFragment(ctx context.Context, id, column string, payload []byte) error {
	// column is one of the three fixed fragment columns, never user input
	query := fmt.Sprintf(`UPDATE documentation_links SET %s = $2, updated_at = $3 WHERE id = $1`, column)

	result, err := r.db.ExecContext(ctx, query, id, payload, time.Now())
	if err != nil {
		return fmt.Errorf("save %s: %w", column, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("documentation link %s: %w", id, ErrNotFound)
	}

	return nil
}

// MarkUpdated sets the freshness flag once all three fragments for the
// version refreshed successfully.
func (r *DocumentationRepository) MarkUpdated(ctx context.Context, id string) error {
	query := `UPDATE documentation_links SET is_updated = TRUE, updated_at = $2 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("mark updated: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("documentation link %s: %w", id, ErrNotFound)
	}

	return nil
}
