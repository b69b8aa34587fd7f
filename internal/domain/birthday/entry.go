// internal/domain/birthday/entry.go
package birthday

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Entry is one person's birthday as supplied by a Source.
type Entry struct {
	Name      string
	Month     time.Month
	Day       int
	BirthYear int // 0 when the year of birth is unknown
}

func (e Entry) HasBirthYear() bool {
	return e.BirthYear != 0
}

// Validate checks the entry against reference, the date a run treats as today.
// An impossible (month, day) pair yields *InvalidDateError.
func (e Entry) Validate(reference Date) error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	if err := validMonthDay(e); err != nil {
		return err
	}
	if e.HasBirthYear() && (e.BirthYear < 1 || e.BirthYear > reference.Year) {
		return fmt.Errorf("entry %q: %w (got %d)", e.Name, ErrInvalidBirthYear, e.BirthYear)
	}
	return nil
}

// validMonthDay accepts any date valid in a non-leap year, plus Feb 29.
func validMonthDay(e Entry) error {
	if e.Month < time.January || e.Month > time.December || e.Day < 1 {
		return &InvalidDateError{Name: e.Name, Month: e.Month, Day: e.Day}
	}
	if e.isLeapDay() {
		return nil
	}
	if e.Day > DaysIn(e.Month, 2001) {
		return &InvalidDateError{Name: e.Name, Month: e.Month, Day: e.Day}
	}
	return nil
}

func (e Entry) isLeapDay() bool {
	return e.Month == time.February && e.Day == 29
}

// Source supplies the birthday list for a run. Implementations are read-only.
//
// A source that cannot be read at all returns a nil slice and an error.
// A source with some malformed records returns the readable entries together
// with the joined *RecordError values, so that one bad line never hides the rest.
type Source interface {
	Load(ctx context.Context) ([]Entry, error)
}

// Store is an editable Source. Names are unique within a store.
type Store interface {
	Source
	FindByName(ctx context.Context, name string) (Entry, error) // ErrEntryNotFound if absent
	Add(ctx context.Context, e Entry) error                     // ErrDuplicateName if taken
	Remove(ctx context.Context, name string) error              // ErrEntryNotFound if absent
}
