// Package scheduler triggers periodic documentation sync passes.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/corticalabs/site-manager/internal/logger"
	"github.com/corticalabs/site-manager/internal/models"
)

// SyncRunner starts one documentation sync pass.
type SyncRunner interface {
	Sync(ctx context.Context) (*models.SyncJob, error)
}

// Scheduler runs the sync on a cron schedule. An empty schedule disables it.
type Scheduler struct {
	cron     *cron.Cron
	syncer   SyncRunner
	schedule string
	logger   logger.Logger
}

func New(syncer SyncRunner, schedule string, log logger.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		syncer:   syncer,
		schedule: schedule,
		logger:   log,
	}
}

func (s *Scheduler) Start() error {
	if s.schedule == "" {
		s.logger.Info("periodic sync disabled")
		return nil
	}

	_, err := s.cron.AddFunc(s.schedule, s.runSync)
	if err != nil {
		return fmt.Errorf("register sync schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.logger.Info("periodic sync scheduled", logger.String("schedule", s.schedule))
	return nil
}

// Stop halts the cron loop and waits for a running pass to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) runSync() {
	job, err := s.syncer.Sync(context.Background())
	if err != nil {
		s.logger.Error("scheduled sync failed", logger.Error(err))
		return
	}
	s.logger.Info("scheduled sync queued", logger.String("job_id", job.ID))
}
