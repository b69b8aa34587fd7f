// Package source loads birthday entries from files and environment variables.
//
// The line format shared by text files and the BIRTHDAYS variable is
//
//	1990-12-10 Ada Lovelace   # birth year known
//	02-29      Leap Person    # month-day only
//
// Everything after '#' is a comment. Blank lines are ignored.
package source

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode"

	"birthday_reminder/internal/domain/birthday"
)

var ErrMalformedLine = errors.New("expected '<date> <name>'")
var ErrMalformedDate = errors.New("malformed date, want YYYY-MM-DD or MM-DD")

// ParseDateSpec parses "YYYY-MM-DD" or "MM-DD" into its parts.
// year is 0 for the month-day form. Range checks are left to the date engine.
func ParseDateSpec(spec string) (year int, month time.Month, day int, err error) {
	parts := strings.Split(strings.TrimSpace(spec), "-")
	nums := make([]int, len(parts))
	for i, p := range parts {
		if p == "" || len(p) > 4 {
			return 0, 0, 0, fmt.Errorf("%w: %q", ErrMalformedDate, spec)
		}
		n, convErr := strconv.Atoi(p)
		if convErr != nil || n < 0 {
			return 0, 0, 0, fmt.Errorf("%w: %q", ErrMalformedDate, spec)
		}
		nums[i] = n
	}

	switch len(nums) {
	case 3:
		if len(parts[1]) > 2 || len(parts[2]) > 2 {
			return 0, 0, 0, fmt.Errorf("%w: %q", ErrMalformedDate, spec)
		}
		if nums[0] == 0 {
			return 0, 0, 0, fmt.Errorf("%w: year must be positive in %q", ErrMalformedDate, spec)
		}
		return nums[0], time.Month(nums[1]), nums[2], nil
	case 2:
		if len(parts[0]) > 2 || len(parts[1]) > 2 {
			return 0, 0, 0, fmt.Errorf("%w: %q", ErrMalformedDate, spec)
		}
		return 0, time.Month(nums[0]), nums[1], nil
	default:
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrMalformedDate, spec)
	}
}

// NewEntry builds an entry from a date spec and a name.
func NewEntry(spec, name string) (birthday.Entry, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return birthday.Entry{}, birthday.ErrEmptyName
	}
	year, month, day, err := ParseDateSpec(spec)
	if err != nil {
		return birthday.Entry{}, err
	}
	return birthday.Entry{Name: name, Month: month, Day: day, BirthYear: year}, nil
}

// ParseLine parses one line. ok is false for blank and comment-only lines.
func ParseLine(line string) (entry birthday.Entry, ok bool, err error) {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return birthday.Entry{}, false, nil
	}

	i := strings.IndexFunc(line, unicode.IsSpace)
	if i < 0 {
		return birthday.Entry{}, false, ErrMalformedLine
	}
	entry, err = NewEntry(line[:i], line[i:])
	if err != nil {
		return birthday.Entry{}, false, err
	}
	return entry, true, nil
}

// parseLines reads the line format from r. Malformed lines become
// *birthday.RecordError values tagged with origin and line number.
func parseLines(r io.Reader, origin string) ([]birthday.Entry, error) {
	entries := make([]birthday.Entry, 0)
	var problems []error

	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		entry, ok, err := ParseLine(scanner.Text())
		if err != nil {
			problems = append(problems, &birthday.RecordError{Origin: origin, Line: lineno, Err: err})
			continue
		}
		if ok {
			entries = append(entries, entry)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", origin, err)
	}
	return entries, errors.Join(problems...)
}
