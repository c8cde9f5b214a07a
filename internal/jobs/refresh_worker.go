// Package jobs runs the background refresh of cached documentation
// fragments.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/corticalabs/site-manager/internal/events"
	"github.com/corticalabs/site-manager/internal/logger"
	"github.com/corticalabs/site-manager/internal/models"
)

// ErrQueueFull means the refresh queue cannot accept another job right now.
var ErrQueueFull = errors.New("refresh queue is full")

// FragmentStore persists refreshed fragments for one documentation version.
type FragmentStore interface {
	GetByID(ctx context.Context, id string) (*models.DocumentationLink, error)
	SaveTutorials(ctx context.Context, id string, groups []models.ExampleGroup) error
	SaveGallery(ctx context.Context, id string, examples []models.Example) error
	SaveIntro(ctx context.Context, id string, intro models.IntroFragments) error
	MarkUpdated(ctx context.Context, id string) error
}

// JobTracker records job status transitions.
type JobTracker interface {
	MarkRunning(ctx context.Context, id string) error
	MarkSucceeded(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id, errMsg string) error
}

// FragmentFetcher extracts the display fragments of one version.
type FragmentFetcher interface {
	FetchTutorials(ctx context.Context, version string) ([]models.ExampleGroup, error)
	FetchGallery(ctx context.Context, version string) ([]models.Example, error)
	FetchIntro(ctx context.Context, version string) (models.IntroFragments, error)
}

type refreshRequest struct {
	jobID  string
	docIDs []string
}

// RefreshWorker consumes queued sync jobs and refreshes each displayed
// version's fragments in order: tutorials, then gallery, then intro. Each
// fragment is persisted as soon as it is extracted, so a failure partway
// through leaves the earlier fragments updated; the freshness flag is only
// set once all three succeeded.
type RefreshWorker struct {
	fetcher   FragmentFetcher
	store     FragmentStore
	tracker   JobTracker
	publisher events.Publisher
	logger    logger.Logger

	queue    chan refreshRequest
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewRefreshWorker(
	fetcher FragmentFetcher,
	store FragmentStore,
	tracker JobTracker,
	publisher events.Publisher,
	log logger.Logger,
	queueSize int,
) *RefreshWorker {
	if queueSize <= 0 {
		queueSize = 16
	}
	return &RefreshWorker{
		fetcher:   fetcher,
		store:     store,
		tracker:   tracker,
		publisher: publisher,
		logger:    log,
		queue:     make(chan refreshRequest, queueSize),
		stopChan:  make(chan struct{}),
	}
}

// Enqueue hands a job to the worker without blocking.
func (w *RefreshWorker) Enqueue(jobID string, docIDs []string) error {
	select {
	case w.queue <- refreshRequest{jobID: jobID, docIDs: docIDs}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Start launches the worker loop.
func (w *RefreshWorker) Start() {
	w.wg.Add(1)
	go w.run()
	w.logger.Info("refresh worker started")
}

// Stop signals the worker and waits for the in-flight job to finish.
func (w *RefreshWorker) Stop() {
	close(w.stopChan)
	w.wg.Wait()
	w.logger.Info("refresh worker stopped")
}

func (w *RefreshWorker) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			return
		case req := <-w.queue:
			w.process(req)
		}
	}
}

func (w *RefreshWorker) process(req refreshRequest) {
	ctx := context.Background()

	if err := w.tracker.MarkRunning(ctx, req.jobID); err != nil {
		w.logger.Error("failed to mark job running",
			logger.String("job_id", req.jobID), logger.Error(err))
	}

	var failures []string
	for _, docID := range req.docIDs {
		if err := w.refreshDoc(ctx, docID); err != nil {
			w.logger.Error("refresh failed",
				logger.String("job_id", req.jobID),
				logger.String("doc_id", docID),
				logger.Error(err))
			failures = append(failures, fmt.Sprintf("%s: %v", docID, err))
		}
	}

	if len(failures) > 0 {
		errMsg := strings.Join(failures, "; ")
		if err := w.tracker.MarkFailed(ctx, req.jobID, errMsg); err != nil {
			w.logger.Error("failed to mark job failed",
				logger.String("job_id", req.jobID), logger.Error(err))
		}
		w.publish(ctx, events.Event{
			Type:   events.TypeSyncFailed,
			JobID:  req.jobID,
			DocIDs: req.docIDs,
			Error:  errMsg,
		})
		return
	}

	if err := w.tracker.MarkSucceeded(ctx, req.jobID); err != nil {
		w.logger.Error("failed to mark job succeeded",
			logger.String("job_id", req.jobID), logger.Error(err))
	}
	w.publish(ctx, events.Event{
		Type:   events.TypeSyncCompleted,
		JobID:  req.jobID,
		DocIDs: req.docIDs,
	})
}

func (w *RefreshWorker) refreshDoc(ctx context.Context, docID string) error {
	doc, err := w.store.GetByID(ctx, docID)
	if err != nil {
		return fmt.Errorf("load documentation link: %w", err)
	}

	w.logger.Info("refreshing documentation fragments",
		logger.String("version", doc.Version))

	tutorials, err := w.fetcher.FetchTutorials(ctx, doc.Version)
	if err != nil {
		return fmt.Errorf("fetch tutorials: %w", err)
	}
	if err := w.store.SaveTutorials(ctx, docID, tutorials); err != nil {
		return err
	}

	gallery, err := w.fetcher.FetchGallery(ctx, doc.Version)
	if err != nil {
		return fmt.Errorf("fetch gallery: %w", err)
	}
	if err := w.store.SaveGallery(ctx, docID, gallery); err != nil {
		return err
	}

	intro, err := w.fetcher.FetchIntro(ctx, doc.Version)
	if err != nil {
		return fmt.Errorf("fetch intro: %w", err)
	}
	if intro.Empty() {
		// The intro page is optional upstream; an empty result is persisted
		// as-is so the stale fragments do not linger.
		w.logger.Warn("no intro fragments extracted",
			logger.String("version", doc.Version))
	}
	if err := w.store.SaveIntro(ctx, docID, intro); err != nil {
		return err
	}

	return w.store.MarkUpdated(ctx, docID)
}

func (w *RefreshWorker) publish(ctx context.Context, event events.Event) {
	if err := w.publisher.Publish(ctx, event); err != nil {
		w.logger.Warn("failed to publish event",
			logger.String("type", event.Type), logger.Error(err))
	}
}
