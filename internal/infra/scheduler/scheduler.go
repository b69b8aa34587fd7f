package scheduler

import (
	"context"
	"fmt"
	"time"

	"birthday_reminder/internal/app"
	"birthday_reminder/internal/domain/birthday"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Runner performs one reminder run for a reference date.
type Runner interface {
	Run(ctx context.Context, reference birthday.Date) (*app.RunReport, error)
}

type ReminderScheduler struct {
	cronEngine *cron.Cron
	runner     Runner
	location   *time.Location
	cronSpec   string // e.g., "0 9 * * *" (9 AM daily)
	runTimeout time.Duration
	logger     *logrus.Entry
}

func NewReminderScheduler(runner Runner, loc *time.Location, cronSpec string, runTimeout time.Duration, logger *logrus.Entry) *ReminderScheduler {
	return &ReminderScheduler{
		cronEngine: cron.New(cron.WithLocation(loc)), // Fire in the configured zone, not the server's
		runner:     runner,
		location:   loc,
		cronSpec:   cronSpec,
		runTimeout: runTimeout,
		logger:     logger.WithField("component", "scheduler"),
	}
}

// Start registers the reminder job and starts the cron engine.
func (s *ReminderScheduler) Start() error {
	s.logger.WithField("cron_spec", s.cronSpec).Info("Starting reminder scheduler...")

	_, err := s.cronEngine.AddFunc(s.cronSpec, s.RunOnce)
	if err != nil {
		return fmt.Errorf("could not add reminder cron job %q: %w", s.cronSpec, err)
	}

	s.cronEngine.Start()
	s.logger.Info("Reminder scheduler started")
	return nil
}

// RunOnce executes a single run for today's date in the scheduler's zone.
func (s *ReminderScheduler) RunOnce() {
	today := birthday.Today(s.location)
	log := s.logger.WithField("reference", today.String())
	log.Info("Cron job triggered for birthday reminders")

	ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
	defer cancel()

	report, err := s.runner.Run(ctx, today)
	if err != nil {
		log.WithError(err).Error("Reminder run aborted")
		return
	}
	if err := report.Err(); err != nil {
		log.WithError(err).Warn("Reminder run finished with failed deliveries")
		return
	}
	log.WithField("sent", len(report.Sent)).Info("Reminder run completed")
}

func (s *ReminderScheduler) Stop() {
	s.logger.Info("Stopping reminder scheduler...")
	ctx := s.cronEngine.Stop() // Stops new jobs, waits for running ones.
	<-ctx.Done()
	s.logger.Info("Reminder scheduler gracefully stopped")
}
