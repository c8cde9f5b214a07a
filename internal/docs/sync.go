package docs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/corticalabs/site-manager/internal/events"
	"github.com/corticalabs/site-manager/internal/logger"
	"github.com/corticalabs/site-manager/internal/models"
	"github.com/corticalabs/site-manager/internal/repository"
)

// DocStore is the slice of the documentation repository the syncer needs.
type DocStore interface {
	GetByVersion(ctx context.Context, version string) (*models.DocumentationLink, error)
	Create(ctx context.Context, doc *models.DocumentationLink) error
	List(ctx context.Context) ([]models.DocumentationLink, error)
	Delete(ctx context.Context, id string) error
	ClearFreshness(ctx context.Context) error
	ListDisplayed(ctx context.Context) ([]models.DocumentationLink, error)
}

// JobStore records sync jobs.
type JobStore interface {
	Create(ctx context.Context, job *models.SyncJob) error
}

// RefreshQueue hands a created job to the background refresh worker.
type RefreshQueue interface {
	Enqueue(jobID string, docIDs []string) error
}

// Syncer reconciles the tracked documentation versions against the remote
// repository listing and queues a fragment refresh for the displayed ones.
type Syncer struct {
	client     *http.Client
	listingURL string
	rawBase    string
	docs       DocStore
	jobs       JobStore
	queue      RefreshQueue
	publisher  events.Publisher
	logger     logger.Logger
}

func NewSyncer(
	client *http.Client,
	listingURL, rawBase string,
	docs DocStore,
	jobs JobStore,
	queue RefreshQueue,
	publisher events.Publisher,
	log logger.Logger,
) *Syncer {
	return &Syncer{
		client:     client,
		listingURL: listingURL,
		rawBase:    rawBase,
		docs:       docs,
		jobs:       jobs,
		queue:      queue,
		publisher:  publisher,
		logger:     log,
	}
}

// repoEntry is one item of the repository contents listing.
type repoEntry struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Sync runs one reconciliation pass: versions present remotely but untracked
// are created, tracked versions that vanished remotely are deleted, every
// freshness flag is cleared, and a job covering the displayed versions is
// queued for the refresh worker. Running it twice in a row converges to the
// same tracked set.
func (s *Syncer) Sync(ctx context.Context) (*models.SyncJob, error) {
	remote, err := s.fetchListing(ctx)
	if err != nil {
		return nil, err
	}

	remoteVersions := make(map[string]bool, len(remote))
	for _, entry := range remote {
		if entry.Type != "dir" {
			continue
		}
		remoteVersions[entry.Name] = true

		if err := s.trackVersion(ctx, entry.Name); err != nil {
			return nil, err
		}
	}

	tracked, err := s.docs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tracked versions: %w", err)
	}
	for _, doc := range tracked {
		if remoteVersions[doc.Version] {
			continue
		}
		s.logger.Info("removing vanished version", logger.String("version", doc.Version))
		if err := s.docs.Delete(ctx, doc.ID); err != nil {
			return nil, fmt.Errorf("delete version %s: %w", doc.Version, err)
		}
	}

	if err := s.docs.ClearFreshness(ctx); err != nil {
		return nil, err
	}

	displayed, err := s.docs.ListDisplayed(ctx)
	if err != nil {
		return nil, fmt.Errorf("list displayed versions: %w", err)
	}
	docIDs := make([]string, 0, len(displayed))
	for _, doc := range displayed {
		docIDs = append(docIDs, doc.ID)
	}

	job := &models.SyncJob{DocIDs: docIDs}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create sync job: %w", err)
	}

	if err := s.queue.Enqueue(job.ID, docIDs); err != nil {
		return nil, fmt.Errorf("enqueue refresh: %w", err)
	}

	if err := s.publisher.Publish(ctx, events.Event{
		Type:   events.TypeSyncStarted,
		JobID:  job.ID,
		DocIDs: docIDs,
	}); err != nil {
		s.logger.Warn("failed to publish sync started event", logger.Error(err))
	}

	s.logger.Info("sync pass queued",
		logger.String("job_id", job.ID),
		logger.Int("tracked", len(remoteVersions)),
		logger.Int("queued", len(docIDs)))

	return job, nil
}

func (s *Syncer) trackVersion(ctx context.Context, version string) error {
	_, err := s.docs.GetByVersion(ctx, version)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("look up version %s: %w", version, err)
	}

	s.logger.Info("tracking new version", logger.String("version", version))
	doc := &models.DocumentationLink{
		Version: version,
		URL:     s.rawBase + version,
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		return fmt.Errorf("create version %s: %w", version, err)
	}
	return nil
}

func (s *Syncer) fetchListing(ctx context.Context) ([]repoEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.listingURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build listing request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch repository listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch repository listing: unexpected status %d", resp.StatusCode)
	}

	var entries []repoEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode repository listing: %w", err)
	}

	return entries, nil
}
