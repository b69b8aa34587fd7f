// internal/app/tracker.go
package app

import (
	"context"
	"errors"
	"time"

	"birthday_reminder/internal/domain/birthday"
	"birthday_reminder/internal/domain/reminder"

	"github.com/sirupsen/logrus"
)

// DeliveryOutcome says what Tracker.Deliver did with an occurrence.
type DeliveryOutcome int

const (
	DeliverySent DeliveryOutcome = iota
	DeliverySkipped
)

func (o DeliveryOutcome) String() string {
	switch o {
	case DeliverySent:
		return "sent"
	case DeliverySkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Tracker keeps reminders at-most-once per ReminderKey on top of a marker repository.
type Tracker struct {
	repo   reminder.Repository
	now    func() time.Time
	logger *logrus.Entry
}

func NewTracker(repo reminder.Repository, logger *logrus.Entry) *Tracker {
	return &Tracker{
		repo:   repo,
		now:    time.Now,
		logger: logger.WithField("component", "tracker"),
	}
}

// FilterUnsent drops occurrences whose key already has a sent marker.
// Any repository failure is returned as *reminder.StateStoreError.
func (t *Tracker) FilterUnsent(ctx context.Context, occurrences []birthday.Occurrence) ([]birthday.Occurrence, error) {
	unsent := make([]birthday.Occurrence, 0, len(occurrences))
	for _, occ := range occurrences {
		key := reminder.KeyFor(occ)
		sent, err := t.repo.HasMarker(ctx, key)
		if err != nil {
			return nil, &reminder.StateStoreError{Op: "lookup " + key.String(), Err: err}
		}
		if sent {
			t.logger.WithField("key", key.String()).Debug("Reminder already sent, filtering out")
			continue
		}
		unsent = append(unsent, occ)
	}
	return unsent, nil
}

// MarkSent records a confirmed delivery. Marking an already marked key is a no-op.
func (t *Tracker) MarkSent(ctx context.Context, occ birthday.Occurrence) error {
	return t.markSent(ctx, t.repo, occ)
}

func (t *Tracker) markSent(ctx context.Context, repo reminder.Repository, occ birthday.Occurrence) error {
	key := reminder.KeyFor(occ)
	err := repo.InsertMarker(ctx, reminder.SentMarker{Key: key, SentAt: t.now()})
	if errors.Is(err, reminder.ErrMarkerExists) {
		t.logger.WithField("key", key.String()).Warn("Sent marker already present")
		return nil
	}
	if err != nil {
		return &reminder.StateStoreError{Op: "insert " + key.String(), Err: err}
	}
	return nil
}

// Deliver runs the check, send and mark steps for one occurrence under the
// key's lock. send is invoked at most once and only if no marker exists; the
// marker is written only when send returns nil.
//
// A failed send yields *reminder.DeliveryError. Repository failures yield
// *reminder.StateStoreError; if one happens after a successful send the
// reminder went out but is not recorded.
func (t *Tracker) Deliver(ctx context.Context, occ birthday.Occurrence, send func(ctx context.Context) error) (DeliveryOutcome, error) {
	key := reminder.KeyFor(occ)
	outcome := DeliverySkipped

	err := t.repo.WithKeyLock(ctx, key, func(ctx context.Context, repo reminder.Repository) error {
		sent, err := repo.HasMarker(ctx, key)
		if err != nil {
			return &reminder.StateStoreError{Op: "lookup " + key.String(), Err: err}
		}
		if sent {
			return nil
		}

		if err := send(ctx); err != nil {
			return &reminder.DeliveryError{Key: key, Err: err}
		}
		outcome = DeliverySent
		return t.markSent(ctx, repo, occ)
	})
	if err == nil {
		return outcome, nil
	}

	var deliveryErr *reminder.DeliveryError
	var storeErr *reminder.StateStoreError
	switch {
	case errors.As(err, &deliveryErr), errors.As(err, &storeErr):
	default:
		err = &reminder.StateStoreError{Op: "lock " + key.String(), Err: err}
	}
	if outcome == DeliverySent {
		t.logger.WithError(err).WithField("key", key.String()).Error("Reminder delivered but sent marker was not persisted")
	}
	return outcome, err
}

// Prune removes markers from years before reference's year. Markers for the
// current and later years are never touched.
func (t *Tracker) Prune(ctx context.Context, reference birthday.Date) (int64, error) {
	n, err := t.repo.PruneBefore(ctx, reference.Year)
	if err != nil {
		return 0, &reminder.StateStoreError{Op: "prune", Err: err}
	}
	if n > 0 {
		t.logger.WithFields(logrus.Fields{"removed": n, "before_year": reference.Year}).Info("Pruned old sent markers")
	}
	return n, nil
}
