package usecase

import (
	"context"
	"time"

	"ProposalScanner/internal/ports"
)

// Scheduler wires the cron driver with the update-and-report workflow.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
}

// NewScheduler returns a helper to start/stop recurring runs.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline) *Scheduler {
	return &Scheduler{driver: driver, pipeline: pipeline}
}

// Start registers the update pipeline with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(trigger time.Time) {
		if err := s.pipeline.Update(ctx); err != nil {
			s.pipeline.warn("scheduled update failed", "error", err)
			return
		}
		if err := s.pipeline.Report(ctx, trigger); err != nil {
			s.pipeline.warn("scheduled report failed", "error", err)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
