package birthday

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) Date {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestNextOccurrence_LaterThisYear(t *testing.T) {
	entry := Entry{Name: "Ada", Month: time.December, Day: 10, BirthYear: 1990}

	occ, err := NextOccurrence(entry, mustDate(t, "2024-12-05"), LeapDayFeb28)
	require.NoError(t, err)

	assert.Equal(t, mustDate(t, "2024-12-10"), occ.Date)
	assert.Equal(t, 5, occ.DaysUntil)
	assert.True(t, occ.HasAge())
	assert.Equal(t, 34, occ.Age)
}

func TestNextOccurrence_Today(t *testing.T) {
	entry := Entry{Name: "Bob", Month: time.March, Day: 3}

	occ, err := NextOccurrence(entry, mustDate(t, "2025-03-03"), LeapDayFeb28)
	require.NoError(t, err)

	assert.Equal(t, 0, occ.DaysUntil)
	assert.Equal(t, mustDate(t, "2025-03-03"), occ.Date)
	assert.False(t, occ.HasAge())
}

func TestNextOccurrence_PassedRollsToNextYear(t *testing.T) {
	entry := Entry{Name: "Cy", Month: time.January, Day: 2, BirthYear: 2000}

	occ, err := NextOccurrence(entry, mustDate(t, "2024-12-30"), LeapDayFeb28)
	require.NoError(t, err)

	assert.Equal(t, mustDate(t, "2025-01-02"), occ.Date)
	assert.Equal(t, 3, occ.DaysUntil)
	assert.Equal(t, 25, occ.Age)
}

func TestNextOccurrence_YesterdayIsAlmostAYearAway(t *testing.T) {
	entry := Entry{Name: "Dee", Month: time.June, Day: 1}

	occ, err := NextOccurrence(entry, mustDate(t, "2023-06-02"), LeapDayFeb28)
	require.NoError(t, err)

	assert.Equal(t, mustDate(t, "2024-06-01"), occ.Date)
	assert.Equal(t, 365, occ.DaysUntil) // crosses Feb 29 2024
}

func TestNextOccurrence_LeapDayFeb28Policy(t *testing.T) {
	entry := Entry{Name: "Leap", Month: time.February, Day: 29}

	occ, err := NextOccurrence(entry, mustDate(t, "2023-02-20"), LeapDayFeb28)
	require.NoError(t, err)

	assert.Equal(t, mustDate(t, "2023-02-28"), occ.Date)
	assert.Equal(t, 8, occ.DaysUntil)
}

func TestNextOccurrence_LeapDayMar1Policy(t *testing.T) {
	entry := Entry{Name: "Leap", Month: time.February, Day: 29}

	occ, err := NextOccurrence(entry, mustDate(t, "2023-02-20"), LeapDayMar1)
	require.NoError(t, err)

	assert.Equal(t, mustDate(t, "2023-03-01"), occ.Date)
	assert.Equal(t, 9, occ.DaysUntil)
}

func TestNextOccurrence_LeapDayInLeapYear(t *testing.T) {
	entry := Entry{Name: "Leap", Month: time.February, Day: 29, BirthYear: 2000}

	for _, policy := range []LeapDayPolicy{LeapDayFeb28, LeapDayMar1} {
		occ, err := NextOccurrence(entry, mustDate(t, "2024-02-01"), policy)
		require.NoError(t, err)
		assert.Equal(t, mustDate(t, "2024-02-29"), occ.Date, "policy %s", policy)
		assert.Equal(t, 24, occ.Age)
	}
}

func TestNextOccurrence_LeapDayAfterSubstituteRollsToLeapYear(t *testing.T) {
	entry := Entry{Name: "Leap", Month: time.February, Day: 29}

	occ, err := NextOccurrence(entry, mustDate(t, "2023-03-01"), LeapDayFeb28)
	require.NoError(t, err)
	assert.Equal(t, mustDate(t, "2024-02-29"), occ.Date)

	occ, err = NextOccurrence(entry, mustDate(t, "2023-03-01"), LeapDayMar1)
	require.NoError(t, err)
	assert.Equal(t, mustDate(t, "2023-03-01"), occ.Date)
	assert.Equal(t, 0, occ.DaysUntil)
}

func TestNextOccurrence_LeapDaySubstituteIsStableAcrossYears(t *testing.T) {
	entry := Entry{Name: "Leap", Month: time.February, Day: 29}

	for year := 2021; year <= 2031; year++ {
		if IsLeapYear(year) {
			continue
		}
		ref := NewDate(year, time.January, 15)
		occ, err := NextOccurrence(entry, ref, LeapDayFeb28)
		require.NoError(t, err)
		assert.Equal(t, NewDate(year, time.February, 28), occ.Date)
	}
}

func TestNextOccurrence_InvalidDate(t *testing.T) {
	cases := []Entry{
		{Name: "April31", Month: time.April, Day: 31},
		{Name: "Feb30", Month: time.February, Day: 30},
		{Name: "Month13", Month: 13, Day: 1},
		{Name: "Month0", Month: 0, Day: 1},
		{Name: "Day0", Month: time.May, Day: 0},
	}
	for _, entry := range cases {
		t.Run(entry.Name, func(t *testing.T) {
			_, err := NextOccurrence(entry, mustDate(t, "2024-01-01"), LeapDayFeb28)
			var invalid *InvalidDateError
			require.True(t, errors.As(err, &invalid))
			assert.Equal(t, entry.Name, invalid.Name)
		})
	}
}

func TestNextOccurrence_DaysUntilNeverNegative(t *testing.T) {
	ref := mustDate(t, "2024-01-01")
	for i := 0; i < 800; i += 7 {
		today := ref.AddDays(i)
		for m := time.January; m <= time.December; m++ {
			for _, d := range []int{1, 15, 28} {
				occ, err := NextOccurrence(Entry{Name: "x", Month: m, Day: d}, today, LeapDayFeb28)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, occ.DaysUntil, 0)
				assert.LessOrEqual(t, occ.DaysUntil, 365)
			}
		}
	}
}

func TestNextOccurrence_AgeNonDecreasing(t *testing.T) {
	entry := Entry{Name: "Ada", Month: time.December, Day: 10, BirthYear: 1990}

	prev := -1
	for year := 2020; year <= 2030; year++ {
		occ, err := NextOccurrence(entry, NewDate(year, time.July, 1), LeapDayFeb28)
		require.NoError(t, err)
		assert.Equal(t, occ.Date.Year-entry.BirthYear, occ.Age)
		assert.GreaterOrEqual(t, occ.Age, prev)
		prev = occ.Age
	}
}

func TestParseLeapDayPolicy(t *testing.T) {
	p, err := ParseLeapDayPolicy("")
	require.NoError(t, err)
	assert.Equal(t, LeapDayFeb28, p)

	p, err = ParseLeapDayPolicy(" MAR1 ")
	require.NoError(t, err)
	assert.Equal(t, LeapDayMar1, p)

	_, err = ParseLeapDayPolicy("feb29")
	assert.Error(t, err)
}
