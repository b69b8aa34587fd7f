// internal/domain/reminder/marker.go
package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"birthday_reminder/internal/domain/birthday"
)

var ErrMarkerExists = errors.New("sent marker already exists")

// Key identifies one occurrence cycle of a birthday: the person and the
// year in which the occurrence falls.
type Key struct {
	Name string
	Year int
}

func KeyFor(occ birthday.Occurrence) Key {
	return Key{Name: occ.Entry.Name, Year: occ.Date.Year}
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%d", k.Name, k.Year)
}

// SentMarker records that the reminder for Key was delivered.
// It is created once and never updated.
type SentMarker struct {
	Key    Key
	SentAt time.Time
}

// Repository persists sent markers.
type Repository interface {
	HasMarker(ctx context.Context, key Key) (bool, error)
	// InsertMarker stores m if no marker exists for m.Key, otherwise it returns ErrMarkerExists.
	InsertMarker(ctx context.Context, m SentMarker) error
	// PruneBefore deletes markers whose year is strictly less than year.
	PruneBefore(ctx context.Context, year int) (int64, error)
	// WithKeyLock runs fn while holding an exclusive lock on key, across
	// processes where the backend allows it. The Repository passed to fn is
	// bound to the lock (e.g. its transaction) and must be used instead of
	// the receiver. If fn returns an error nothing it wrote is kept.
	WithKeyLock(ctx context.Context, key Key, fn func(ctx context.Context, repo Repository) error) error
}
