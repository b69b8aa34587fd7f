// Package notifier contains transport-level reminder.Notifier implementations.
package notifier

import (
	"context"

	"birthday_reminder/internal/domain/reminder"

	"github.com/sirupsen/logrus"
)

// Log delivers reminders as log lines. Delivery always succeeds.
type Log struct {
	logger *logrus.Entry
}

func NewLog(logger *logrus.Entry) *Log {
	return &Log{logger: logger.WithField("component", "log_notifier")}
}

func (n *Log) Notify(_ context.Context, p reminder.Payload) error {
	fields := logrus.Fields{
		"name":            p.Name,
		"occurrence_date": p.OccurrenceDate,
		"days_until":      p.DaysUntil,
	}
	if p.Age != nil {
		fields["age"] = *p.Age
	}
	n.logger.WithFields(fields).Info(p.Text)
	return nil
}

var _ reminder.Notifier = (*Log)(nil)
