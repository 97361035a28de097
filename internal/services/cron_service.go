package services

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CronService manages scheduled background jobs
type CronService struct {
	cron     *cron.Cron
	tracker  *TrackerService
	schedule string
	logger   *logrus.Logger
}

// NewCronService creates a new CronService. schedule is a six-field cron spec
// (second minute hour day month weekday) evaluated in loc.
func NewCronService(tracker *TrackerService, schedule string, loc *time.Location, logger *logrus.Logger) *CronService {
	if loc == nil {
		loc = time.Local
	}
	c := cron.New(cron.WithSeconds(), cron.WithLocation(loc))

	return &CronService{
		cron:     c,
		tracker:  tracker,
		schedule: schedule,
		logger:   logger,
	}
}

// Start starts all cron jobs
func (s *CronService) Start() error {
	s.logger.Info("Starting cron service...")

	// Job 1: Sweep onboarded leaders for overdue follow-ups
	// "0 0 8 * * *" = At 8:00 AM every day
	_, err := s.cron.AddFunc(s.schedule, s.followUpSweepJob)
	if err != nil {
		return fmt.Errorf("failed to schedule follow-up sweep: %w", err)
	}
	s.logger.WithField("schedule", s.schedule).Info("Scheduled: follow-up sweep")

	s.cron.Start()
	s.logger.Info("Cron service started successfully")

	return nil
}

// Stop stops all cron jobs and waits for running ones to finish
func (s *CronService) Stop() {
	s.logger.Info("Stopping cron service...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Cron service stopped")
}

// followUpSweepJob logs every leader that still needs a follow-up call
func (s *CronService) followUpSweepJob() {
	startTime := time.Now()

	pending, err := s.tracker.FollowUps()
	if err != nil {
		s.logger.WithError(err).Error("[CRON] Follow-up sweep failed")
		return
	}

	for _, view := range pending {
		s.logger.WithFields(logrus.Fields{
			"leader_id":    view.ID,
			"name":         view.Name,
			"salesperson":  view.Salesperson,
			"upgrade_date": view.UpgradeDate,
		}).Warn("[CRON] Onboarded leader needs follow-up")
	}

	s.logger.WithFields(logrus.Fields{
		"pending":  len(pending),
		"duration": time.Since(startTime).String(),
	}).Info("[CRON] Follow-up sweep complete")
}

// RunFollowUpSweepNow runs the follow-up sweep immediately
func (s *CronService) RunFollowUpSweepNow() {
	s.logger.Info("[MANUAL] Running follow-up sweep now...")
	s.followUpSweepJob()
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
