package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const analyticsRefreshTimeout = 30 * time.Second

// CronService manages scheduled background jobs
type CronService struct {
	cron         *cron.Cron
	analytics    *AnalyticsService
	refreshSpec  string
	logger       *logrus.Logger
	refreshEntry cron.EntryID
}

// NewCronService creates a new CronService. refreshSpec uses the six field
// format with seconds; an empty spec disables the analytics refresh job.
func NewCronService(analytics *AnalyticsService, refreshSpec string, logger *logrus.Logger) *CronService {
	return &CronService{
		cron:        cron.New(cron.WithSeconds()),
		analytics:   analytics,
		refreshSpec: refreshSpec,
		logger:      logger,
	}
}

// Start schedules the jobs and starts the scheduler
func (s *CronService) Start() error {
	if s.refreshSpec == "" {
		s.logger.Info("Analytics refresh job disabled")
		return nil
	}

	id, err := s.cron.AddFunc(s.refreshSpec, s.refreshAnalyticsJob)
	if err != nil {
		return fmt.Errorf("failed to schedule analytics refresh job: %w", err)
	}
	s.refreshEntry = id
	s.logger.WithField("schedule", s.refreshSpec).Info("Scheduled: analytics refresh")

	s.cron.Start()
	s.logger.Info("Cron service started")

	return nil
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Cron service stopped")
}

func (s *CronService) refreshAnalyticsJob() {
	ctx, cancel := context.WithTimeout(context.Background(), analyticsRefreshTimeout)
	defer cancel()

	startTime := time.Now()
	if err := s.analytics.Refresh(ctx); err != nil {
		s.logger.WithError(err).Error("[CRON] Analytics refresh failed")
		return
	}

	s.logger.WithField("duration", time.Since(startTime).String()).Debug("[CRON] Analytics refreshed")
}

// RunAnalyticsRefreshNow runs the analytics refresh job immediately
func (s *CronService) RunAnalyticsRefreshNow() {
	s.refreshAnalyticsJob()
}

// GetJobStatus returns the status of scheduled jobs
func (s *CronService) GetJobStatus() map[string]interface{} {
	entries := s.cron.Entries()

	jobs := make([]map[string]interface{}, 0, len(entries))
	for _, entry := range entries {
		jobs = append(jobs, map[string]interface{}{
			"id":       entry.ID,
			"next_run": entry.Next,
			"prev_run": entry.Prev,
		})
	}

	return map[string]interface{}{
		"running":   len(entries) > 0,
		"job_count": len(entries),
		"jobs":      jobs,
	}
}
