// internal/domain/birthday/occurrence.go
package birthday

import (
	"fmt"
	"strings"
	"time"
)

// LeapDayPolicy decides where a Feb 29 birthday is observed in non-leap years.
// A deployment must keep one policy; it feeds the occurrence date and
// therefore the dedup key of every Feb 29 entry.
type LeapDayPolicy string

const (
	// LeapDayFeb28 observes Feb 29 birthdays on Feb 28 of non-leap years. Default.
	LeapDayFeb28 LeapDayPolicy = "feb28"
	// LeapDayMar1 observes Feb 29 birthdays on Mar 1 of non-leap years.
	LeapDayMar1 LeapDayPolicy = "mar1"
)

func ParseLeapDayPolicy(s string) (LeapDayPolicy, error) {
	switch p := LeapDayPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return LeapDayFeb28, nil
	case LeapDayFeb28, LeapDayMar1:
		return p, nil
	default:
		return "", fmt.Errorf("unknown leap day policy %q (want %q or %q)", s, LeapDayFeb28, LeapDayMar1)
	}
}

// observedIn returns the date on which e is celebrated in year.
func (p LeapDayPolicy) observedIn(e Entry, year int) Date {
	if !e.isLeapDay() || IsLeapYear(year) {
		return NewDate(year, e.Month, e.Day)
	}
	if p == LeapDayMar1 {
		return NewDate(year, time.March, 1)
	}
	return NewDate(year, time.February, 28)
}

// Occurrence is the next celebration of an entry relative to a reference date.
type Occurrence struct {
	Entry     Entry
	Date      Date
	DaysUntil int // 0 means today
	Age       int // valid only when Entry.HasBirthYear()
}

func (o Occurrence) HasAge() bool {
	return o.Entry.HasBirthYear()
}

// NextOccurrence computes the first celebration of e on or after reference.
// It fails with *InvalidDateError when e's month and day never form a date.
func NextOccurrence(e Entry, reference Date, policy LeapDayPolicy) (Occurrence, error) {
	if err := validMonthDay(e); err != nil {
		return Occurrence{}, err
	}

	date := policy.observedIn(e, reference.Year)
	if date.Before(reference) {
		date = policy.observedIn(e, reference.Year+1)
	}

	occ := Occurrence{
		Entry:     e,
		Date:      date,
		DaysUntil: reference.DaysUntil(date),
	}
	if e.HasBirthYear() {
		occ.Age = date.Year - e.BirthYear
	}
	return occ, nil
}
