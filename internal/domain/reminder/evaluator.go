// internal/domain/reminder/evaluator.go
package reminder

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"birthday_reminder/internal/domain/birthday"
)

var ErrNegativeLookahead = errors.New("lookahead days must not be negative")

// Evaluator selects the birthdays that are due within a lookahead window.
// It holds no state besides its policy and may be shared freely.
type Evaluator struct {
	policy birthday.LeapDayPolicy
}

func NewEvaluator(policy birthday.LeapDayPolicy) *Evaluator {
	if policy == "" {
		policy = birthday.LeapDayFeb28
	}
	return &Evaluator{policy: policy}
}

func (e *Evaluator) Policy() birthday.LeapDayPolicy {
	return e.policy
}

// Evaluate returns the occurrences with 0 <= DaysUntil <= lookahead, ordered
// by DaysUntil and then by name. Entries that fail validation are left out
// and reported through the joined error; the returned slice is still valid.
func (e *Evaluator) Evaluate(entries []birthday.Entry, reference birthday.Date, lookahead int) ([]birthday.Occurrence, error) {
	if lookahead < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeLookahead, lookahead)
	}

	due := make([]birthday.Occurrence, 0)
	var problems []error
	for _, entry := range entries {
		if err := entry.Validate(reference); err != nil {
			problems = append(problems, err)
			continue
		}
		occ, err := birthday.NextOccurrence(entry, reference, e.policy)
		if err != nil {
			problems = append(problems, err)
			continue
		}
		if occ.DaysUntil <= lookahead {
			due = append(due, occ)
		}
	}

	slices.SortStableFunc(due, func(a, b birthday.Occurrence) int {
		if c := cmp.Compare(a.DaysUntil, b.DaysUntil); c != 0 {
			return c
		}
		return cmp.Compare(a.Entry.Name, b.Entry.Name)
	})

	return due, errors.Join(problems...)
}

// SelectDays keeps only the occurrences whose DaysUntil is one of days,
// preserving order. An empty days list keeps everything.
func SelectDays(occurrences []birthday.Occurrence, days []int) []birthday.Occurrence {
	if len(days) == 0 {
		return occurrences
	}
	selected := make([]birthday.Occurrence, 0, len(occurrences))
	for _, occ := range occurrences {
		if slices.Contains(days, occ.DaysUntil) {
			selected = append(selected, occ)
		}
	}
	return selected
}
