// Package schedule drives the three protocol operations from an in-process
// cron, anchored in the exchange time zone. Each operation stays a blocking
// batch; the scheduler only decides when it runs.
package schedule

import (
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"rrpe/internal/config"
)

// Job is one named scheduled operation.
type Job struct {
	Name string
	Run  func() error
}

// Scheduler wraps a cron runner with structured logging around each job.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// New creates a scheduler in the given location.
func New(cfg *config.Config, logger *slog.Logger) (*Scheduler, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		logger: logger.With("component", "scheduler"),
	}, nil
}

// At registers a job at a fixed local time every day.
func (s *Scheduler) At(t config.TimeOfDay, job Job) error {
	spec := fmt.Sprintf("%d %d * * *", t.Minute, t.Hour)
	_, err := s.cron.AddFunc(spec, func() {
		s.logger.Info("running job", "job", job.Name)
		if err := job.Run(); err != nil {
			s.logger.Error("job failed", "job", job.Name, "error", err)
			return
		}
		s.logger.Info("job completed", "job", job.Name)
	})
	if err != nil {
		return fmt.Errorf("schedule %s: %w", job.Name, err)
	}
	s.logger.Info("job registered", "job", job.Name, "at", t.String())
	return nil
}

// Entries returns the number of registered jobs.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// Start begins dispatching jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started")
}

// Stop halts dispatching and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}
