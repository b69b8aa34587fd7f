// internal/domain/reminder/notifier.go
package reminder

import (
	"context"
	"fmt"

	"birthday_reminder/internal/domain/birthday"
)

// Payload is what a Notifier receives for one due occurrence.
type Payload struct {
	Name           string `json:"name"`
	OccurrenceDate string `json:"occurrence_date"`
	DaysUntil      int    `json:"days_until"`
	Age            *int   `json:"age,omitempty"`
	Text           string `json:"text"`
}

func NewPayload(occ birthday.Occurrence) Payload {
	p := Payload{
		Name:           occ.Entry.Name,
		OccurrenceDate: occ.Date.String(),
		DaysUntil:      occ.DaysUntil,
		Text:           Render(occ),
	}
	if occ.HasAge() {
		age := occ.Age
		p.Age = &age
	}
	return p
}

// Notifier delivers a reminder. A nil error means the delivery is confirmed.
type Notifier interface {
	Notify(ctx context.Context, p Payload) error
}

// DeliveryError reports a failed notification attempt. The occurrence stays
// unmarked and is retried by the next run inside the lookahead window.
type DeliveryError struct {
	Key Key
	Err error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivering reminder %s: %v", e.Key, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// StateStoreError reports that the sent-marker store could not be read or
// written. A run that hits it stops sending rather than risk duplicates.
type StateStoreError struct {
	Op  string
	Err error
}

func (e *StateStoreError) Error() string {
	return fmt.Sprintf("state store %s: %v", e.Op, e.Err)
}

func (e *StateStoreError) Unwrap() error { return e.Err }
