package models

import "time"

// Sync job statuses.
const (
	SyncJobQueued    = "queued"
	SyncJobRunning   = "running"
	SyncJobSucceeded = "succeeded"
	SyncJobFailed    = "failed"
)

// SyncJob records one documentation refresh pass so its outcome is observable
// after the triggering request has returned.
type SyncJob struct {
	ID         string     `json:"id" db:"id"`
	Status     string     `json:"status" db:"status"`
	DocIDs     []string   `json:"doc_ids" db:"doc_ids"`
	Error      string     `json:"error,omitempty" db:"error"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty" db:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty" db:"finished_at"`
}

// Done reports whether the job has reached a terminal status.
func (j SyncJob) Done() bool {
	return j.Status == SyncJobSucceeded || j.Status == SyncJobFailed
}
