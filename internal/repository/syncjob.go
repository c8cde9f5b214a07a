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

// SyncJobRepository records documentation refresh passes so their outcome is
// observable after the triggering request has returned.
type SyncJobRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewSyncJobRepository(db *sql.DB, log logger.Logger) *SyncJobRepository {
	return &SyncJobRepository{
		db:     db,
		logger: log,
	}
}

func (r *SyncJobRepository) Create(ctx context.Context, job *models.SyncJob) error {
	job.ID = uuid.New().String()
	job.Status = models.SyncJobQueued
	job.CreatedAt = time.Now()

	if job.DocIDs == nil {
		job.DocIDs = []string{}
	}
	docIDsJSON, err := json.Marshal(job.DocIDs)
	if err != nil {
		return fmt.Errorf("marshal doc ids: %w", err)
	}

	query := `
		INSERT INTO sync_jobs (id, status, doc_ids, error, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if _, err := r.db.ExecContext(ctx, query,
		job.ID, job.Status, docIDsJSON, job.Error, job.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert sync job: %w", err)
	}

	return nil
}

func (r *SyncJobRepository) Get(ctx context.Context, id string) (*models.SyncJob, error) {
	query := `
		SELECT id, status, doc_ids, error, created_at, started_at, finished_at
		FROM sync_jobs
		WHERE id = $1
	`

	var job models.SyncJob
	var docIDsJSON []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&job.ID,
		&job.Status,
		&docIDsJSON,
		&job.Error,
		&job.CreatedAt,
		&job.StartedAt,
		&job.FinishedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sync job %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query sync job: %w", err)
	}

	if err := json.Unmarshal(docIDsJSON, &job.DocIDs); err != nil {
		return nil, fmt.Errorf("unmarshal doc ids: %w", err)
	}

	return &job, nil
}

// MarkRunning transitions a queued job to running.
func (r *SyncJobRepository) MarkRunning(ctx context.Context, id string) error {
	query := `UPDATE sync_jobs SET status = $2, started_at = $3 WHERE id = $1`
	return r.exec(ctx, id, query, models.SyncJobRunning, time.Now())
}

// MarkSucceeded transitions a running job to succeeded.
func (r *SyncJobRepository) MarkSucceeded(ctx context.Context, id string) error {
	query := `UPDATE sync_jobs SET status = $2, finished_at = $3 WHERE id = $1`
	return r.exec(ctx, id, query, models.SyncJobSucceeded, time.Now())
}

// MarkFailed transitions a job to failed and records the error.
func (r *SyncJobRepository) MarkFailed(ctx context.Context, id, errMsg string) error {
	query := `UPDATE sync_jobs SET status = $2, finished_at = $3, error = $4 WHERE id = $1`
	return r.exec(ctx, id, query, models.SyncJobFailed, time.Now(), errMsg)
}

func (r *SyncJobRepository) exec(ctx context.Context, id, query string, args ...any) error {
	all := append([]any{id}, args...)
	result, err := r.db.ExecContext(ctx, query, all...)
	if err != nil {
		return fmt.Errorf("update sync job: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("sync job %s: %w", id, ErrNotFound)
	}

	return nil
}
