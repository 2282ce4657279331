package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"residency-api/internal/config"
	"residency-api/internal/pkg/logger"
)

const jobTimeout = 5 * time.Minute

// SchedulerService runs the background jobs: overdue maintenance reminders
// and expired refresh token cleanup.
type SchedulerService struct {
	cron        *cron.Cron
	cfg         config.SchedulerConfig
	maintenance *MaintenanceService
	auth        *AuthService
	log         *logger.Logger
}

// NewSchedulerService creates a new scheduler. Jobs run in loc.
func NewSchedulerService(cfg config.SchedulerConfig, loc *time.Location, maintenance *MaintenanceService, auth *AuthService, log *logger.Logger) *SchedulerService {
	l := log.Component("scheduler")
	return &SchedulerService{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cronLogger{l}),
			cron.WithChain(cron.Recover(cronLogger{l}), cron.SkipIfStillRunning(cronLogger{l})),
		),
		cfg:         cfg,
		maintenance: maintenance,
		auth:        auth,
		log:         l,
	}
}

// Start registers the jobs and launches the scheduler
func (s *SchedulerService) Start() error {
	if !s.cfg.Enabled {
		s.log.Info().Msg("Scheduler disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(s.cfg.ReminderSpec, s.runReminders); err != nil {
		return fmt.Errorf("schedule reminders %q: %w", s.cfg.ReminderSpec, err)
	}
	if _, err := s.cron.AddFunc(s.cfg.TokenCleanupSpec, s.runTokenCleanup); err != nil {
		return fmt.Errorf("schedule token cleanup %q: %w", s.cfg.TokenCleanupSpec, err)
	}
	s.cron.Start()
	s.log.Info().
		Str("reminders", s.cfg.ReminderSpec).
		Str("token_cleanup", s.cfg.TokenCleanupSpec).
		Msg("Scheduler started")
	return nil
}

// Stop stops the scheduler and waits for running jobs until ctx is done
func (s *SchedulerService) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.log.Info().Msg("Scheduler stopped")
	case <-ctx.Done():
		s.log.Warn().Msg("Scheduler stop timed out with jobs running")
	}
}

func (s *SchedulerService) runReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.maintenance.RemindOverdue(ctx, s.cfg.ReminderInterval)
	if err != nil {
		s.log.Error().Err(err).Msg("Overdue reminder job failed")
		return
	}
	s.log.Debug().Int("reminded", n).Msg("Overdue reminder job finished")
}

func (s *SchedulerService) runTokenCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.auth.CleanupTokens(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Token cleanup job failed")
		return
	}
	s.log.Info().Int64("deleted", n).Msg("Expired refresh tokens removed")
}

// cronLogger routes cron's own logging through zerolog
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
