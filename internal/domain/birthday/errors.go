// internal/domain/birthday/errors.go
package birthday

import (
	"errors"
	"fmt"
	"time"
)

var ErrEmptyName = errors.New("birthday entry has an empty name")
var ErrInvalidBirthYear = errors.New("birth year must be positive and not after the reference year")
var ErrEntryNotFound = errors.New("birthday not found")
var ErrDuplicateName = errors.New("a birthday with this name already exists")

// InvalidDateError reports a (month, day) pair that cannot form a calendar date in any year.
type InvalidDateError struct {
	Name  string
	Month time.Month
	Day   int
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid birthday date for %q: month %d, day %d", e.Name, int(e.Month), e.Day)
}

// RecordError describes a single malformed record in a birthday source.
// Sources return the well-formed entries next to the joined RecordErrors.
type RecordError struct {
	Origin string // file path, variable name or table
	Line   int    // 1-based line or row number; 0 if unknown
	Err    error
}

func (e *RecordError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %v", e.Origin, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Origin, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// RecordErrors flattens err into its record-level errors. It returns nil if
// err contains anything other than *RecordError values, meaning the source
// itself failed.
func RecordErrors(err error) []*RecordError {
	if err == nil {
		return nil
	}
	var errs []error
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	} else {
		errs = []error{err}
	}

	records := make([]*RecordError, 0, len(errs))
	for _, e := range errs {
		var rec *RecordError
		if !errors.As(e, &rec) {
			return nil
		}
		records = append(records, rec)
	}
	return records
}
