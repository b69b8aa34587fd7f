// internal/app/reminder_service.go
package app

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"birthday_reminder/internal/domain/birthday"
	"birthday_reminder/internal/domain/reminder"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrDeliveriesFailed = errors.New("some reminders could not be delivered")

// FailedDelivery pairs an occurrence with the reason its notification failed.
type FailedDelivery struct {
	Occurrence birthday.Occurrence
	Err        error
}

// RunReport summarizes one reminder run.
type RunReport struct {
	RunID       string
	Reference   birthday.Date
	Due         []birthday.Occurrence
	AlreadySent []birthday.Occurrence
	Sent        []birthday.Occurrence
	Failed      []FailedDelivery
	Invalid     []error
}

// Err is non-nil when at least one due reminder could not be delivered.
func (r *RunReport) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failed))
	for _, f := range r.Failed {
		errs = append(errs, f.Err)
	}
	return fmt.Errorf("%w (%d of %d): %w", ErrDeliveriesFailed, len(r.Failed), len(r.Due), errors.Join(errs...))
}

// ReminderService wires a birthday source, the evaluator, the tracker and a notifier.
type ReminderService struct {
	source     birthday.Source
	evaluator  *reminder.Evaluator
	tracker    *Tracker
	notifier   reminder.Notifier
	lookahead  int
	pruneOnRun bool
	logger     *logrus.Entry
}

func NewReminderService(
	source birthday.Source,
	evaluator *reminder.Evaluator,
	tracker *Tracker,
	notifier reminder.Notifier,
	lookahead int,
	pruneOnRun bool,
	logger *logrus.Entry,
) *ReminderService {
	return &ReminderService{
		source:     source,
		evaluator:  evaluator,
		tracker:    tracker,
		notifier:   notifier,
		lookahead:  lookahead,
		pruneOnRun: pruneOnRun,
		logger:     logger.WithField("component", "reminder_service"),
	}
}

// Run evaluates the birthday list against reference and notifies every due,
// unsent occurrence once. The returned error is fatal for the run (source or
// state store failure); delivery failures are collected in the report.
func (s *ReminderService) Run(ctx context.Context, reference birthday.Date) (*RunReport, error) {
	report := &RunReport{RunID: uuid.NewString(), Reference: reference}
	log := s.logger.WithFields(logrus.Fields{"run_id": report.RunID, "reference": reference.String()})
	log.WithField("lookahead_days", s.lookahead).Info("Starting reminder run")

	due, invalid, err := s.evaluate(ctx, reference, s.lookahead, log)
	if err != nil {
		return report, err
	}
	report.Due = due
	report.Invalid = invalid

	unsent, err := s.tracker.FilterUnsent(ctx, due)
	if err != nil {
		log.WithError(err).Error("Could not check sent markers, aborting run")
		return report, err
	}
	for _, occ := range due {
		if !slices.ContainsFunc(unsent, func(u birthday.Occurrence) bool { return reminder.KeyFor(u) == reminder.KeyFor(occ) }) {
			report.AlreadySent = append(report.AlreadySent, occ)
		}
	}
	log.WithFields(logrus.Fields{"due": len(due), "unsent": len(unsent)}).Info("Evaluated birthdays")

	for _, occ := range unsent {
		occLog := log.WithFields(logrus.Fields{"name": occ.Entry.Name, "occurrence": occ.Date.String(), "days_until": occ.DaysUntil})
		payload := reminder.NewPayload(occ)

		outcome, err := s.tracker.Deliver(ctx, occ, func(ctx context.Context) error {
			return s.notifier.Notify(ctx, payload)
		})
		var deliveryErr *reminder.DeliveryError
		switch {
		case errors.As(err, &deliveryErr):
			occLog.WithError(err).Warn("Reminder delivery failed, will retry on next run")
			report.Failed = append(report.Failed, FailedDelivery{Occurrence: occ, Err: err})
		case err != nil:
			occLog.WithError(err).Error("State store failure, aborting run")
			if outcome == DeliverySent {
				report.Sent = append(report.Sent, occ)
			}
			return report, err
		case outcome == DeliverySkipped:
			occLog.Info("Reminder sent by a concurrent run, skipping")
			report.AlreadySent = append(report.AlreadySent, occ)
		default:
			occLog.Info("Reminder delivered")
			report.Sent = append(report.Sent, occ)
		}
	}

	if s.pruneOnRun {
		if _, err := s.tracker.Prune(ctx, reference); err != nil {
			log.WithError(err).Warn("Pruning sent markers failed")
		}
	}

	log.WithFields(logrus.Fields{
		"sent":         len(report.Sent),
		"already_sent": len(report.AlreadySent),
		"failed":       len(report.Failed),
		"invalid":      len(report.Invalid),
	}).Info("Reminder run finished")
	return report, nil
}

// Preview returns the due occurrences without notifying or touching state.
// With days given, the window is the largest value and only exact matches are kept.
func (s *ReminderService) Preview(ctx context.Context, reference birthday.Date, days []int) ([]birthday.Occurrence, []error, error) {
	lookahead := s.lookahead
	if len(days) > 0 {
		lookahead = slices.Max(days)
	}
	due, invalid, err := s.evaluate(ctx, reference, lookahead, s.logger)
	if err != nil {
		return nil, nil, err
	}
	return reminder.SelectDays(due, days), invalid, nil
}

func (s *ReminderService) Prune(ctx context.Context, reference birthday.Date) (int64, error) {
	return s.tracker.Prune(ctx, reference)
}

// evaluate loads entries and evaluates them. Malformed records and invalid
// entries are logged and returned; they never stop the run.
func (s *ReminderService) evaluate(ctx context.Context, reference birthday.Date, lookahead int, log *logrus.Entry) ([]birthday.Occurrence, []error, error) {
	entries, err := s.source.Load(ctx)
	var invalid []error
	if err != nil {
		records := birthday.RecordErrors(err)
		if records == nil {
			log.WithError(err).Error("Could not load birthdays")
			return nil, nil, fmt.Errorf("loading birthdays: %w", err)
		}
		for _, rec := range records {
			log.WithError(rec).Warn("Skipping malformed birthday record")
			invalid = append(invalid, rec)
		}
	}

	due, err := s.evaluator.Evaluate(entries, reference, lookahead)
	if errors.Is(err, reminder.ErrNegativeLookahead) {
		return nil, nil, err
	}
	if err != nil {
		for _, e := range unjoin(err) {
			log.WithError(e).Warn("Skipping invalid birthday entry")
			invalid = append(invalid, e)
		}
	}
	return due, invalid, nil
}

func unjoin(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}
