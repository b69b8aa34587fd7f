package reminder

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"birthday_reminder/internal/domain/birthday"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, s string) birthday.Date {
	t.Helper()
	d, err := birthday.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestEvaluate_ConcreteScenario(t *testing.T) {
	entries := []birthday.Entry{{Name: "Ada", Month: time.December, Day: 10, BirthYear: 1990}}

	due, err := NewEvaluator(birthday.LeapDayFeb28).Evaluate(entries, date(t, "2024-12-05"), 7)
	require.NoError(t, err)
	require.Len(t, due, 1)

	assert.Equal(t, "Ada", due[0].Entry.Name)
	assert.Equal(t, date(t, "2024-12-10"), due[0].Date)
	assert.Equal(t, 5, due[0].DaysUntil)
	assert.Equal(t, 34, due[0].Age)
}

func TestEvaluate_LeapDayScenario(t *testing.T) {
	entries := []birthday.Entry{{Name: "Leap", Month: time.February, Day: 29}}

	due, err := NewEvaluator(birthday.LeapDayFeb28).Evaluate(entries, date(t, "2023-02-20"), 10)
	require.NoError(t, err)
	require.Len(t, due, 1)

	assert.Equal(t, date(t, "2023-02-28"), due[0].Date)
	assert.Equal(t, 8, due[0].DaysUntil)
}

func TestEvaluate_WindowAndOrdering(t *testing.T) {
	entries := []birthday.Entry{
		{Name: "Zed", Month: time.March, Day: 3},
		{Name: "Outside", Month: time.March, Day: 20},
		{Name: "Amy", Month: time.March, Day: 3},
		{Name: "Mia", Month: time.March, Day: 1},
		{Name: "Edge", Month: time.March, Day: 8},
		{Name: "Past", Month: time.February, Day: 27},
	}

	due, err := NewEvaluator(birthday.LeapDayFeb28).Evaluate(entries, date(t, "2025-03-01"), 7)
	require.NoError(t, err)

	var names []string
	for _, occ := range due {
		names = append(names, occ.Entry.Name)
	}
	assert.Equal(t, []string{"Mia", "Amy", "Zed", "Edge"}, names)
	assert.Equal(t, 7, due[3].DaysUntil)
}

func TestEvaluate_ZeroLookaheadMeansToday(t *testing.T) {
	entries := []birthday.Entry{
		{Name: "Today", Month: time.July, Day: 4},
		{Name: "Tomorrow", Month: time.July, Day: 5},
	}

	due, err := NewEvaluator(birthday.LeapDayFeb28).Evaluate(entries, date(t, "2025-07-04"), 0)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "Today", due[0].Entry.Name)
}

func TestEvaluate_InvalidEntryDoesNotBlockOthers(t *testing.T) {
	entries := []birthday.Entry{
		{Name: "Broken", Month: time.April, Day: 31},
		{Name: "Ada", Month: time.December, Day: 10},
		{Name: "", Month: time.December, Day: 6},
	}

	due, err := NewEvaluator(birthday.LeapDayFeb28).Evaluate(entries, date(t, "2024-12-05"), 7)
	require.Error(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "Ada", due[0].Entry.Name)

	var invalid *birthday.InvalidDateError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "Broken", invalid.Name)
	assert.ErrorIs(t, err, birthday.ErrEmptyName)
}

func TestEvaluate_Idempotent(t *testing.T) {
	entries := []birthday.Entry{
		{Name: "B", Month: time.January, Day: 3, BirthYear: 1970},
		{Name: "A", Month: time.January, Day: 3},
		{Name: "C", Month: time.January, Day: 1},
	}
	eval := NewEvaluator(birthday.LeapDayFeb28)
	ref := date(t, "2024-12-31")

	first, err := eval.Evaluate(entries, ref, 5)
	require.NoError(t, err)
	second, err := eval.Evaluate(entries, ref, 5)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 3)
}

func TestEvaluate_NegativeLookahead(t *testing.T) {
	_, err := NewEvaluator("").Evaluate(nil, date(t, "2024-01-01"), -1)
	assert.ErrorIs(t, err, ErrNegativeLookahead)
}

func TestSelectDays(t *testing.T) {
	entries := []birthday.Entry{
		{Name: "Zero", Month: time.May, Day: 1},
		{Name: "One", Month: time.May, Day: 2},
		{Name: "Seven", Month: time.May, Day: 8},
	}
	due, err := NewEvaluator(birthday.LeapDayFeb28).Evaluate(entries, date(t, "2025-05-01"), 7)
	require.NoError(t, err)

	picked := SelectDays(due, []int{0, 7})
	require.Len(t, picked, 2)
	assert.Equal(t, "Zero", picked[0].Entry.Name)
	assert.Equal(t, "Seven", picked[1].Entry.Name)

	assert.Len(t, SelectDays(due, nil), 3)
}

func TestRender(t *testing.T) {
	entries := []birthday.Entry{
		{Name: "Eve", Month: time.January, Day: 1, BirthYear: 1985},
		{Name: "Ada", Month: time.December, Day: 10, BirthYear: 1990},
		{Name: "Dee", Month: time.December, Day: 7},
		{Name: "Cy", Month: time.December, Day: 6, BirthYear: 2000},
		{Name: "Bob", Month: time.December, Day: 5},
	}
	due, err := NewEvaluator(birthday.LeapDayFeb28).Evaluate(entries, date(t, "2024-12-05"), 30)
	require.NoError(t, err)

	var buf bytes.Buffer
	for _, occ := range due {
		buf.WriteString(Render(occ))
		buf.WriteByte('\n')
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "render", buf.Bytes())
}

func TestNewPayload(t *testing.T) {
	occ, err := birthday.NextOccurrence(birthday.Entry{Name: "Ada", Month: time.December, Day: 10, BirthYear: 1990}, date(t, "2024-12-05"), birthday.LeapDayFeb28)
	require.NoError(t, err)

	p := NewPayload(occ)
	assert.Equal(t, "Ada", p.Name)
	assert.Equal(t, "2024-12-10", p.OccurrenceDate)
	assert.Equal(t, 5, p.DaysUntil)
	require.NotNil(t, p.Age)
	assert.Equal(t, 34, *p.Age)
	assert.Equal(t, "Ada (34) in 5 days (2024-12-10)", p.Text)

	occ, err = birthday.NextOccurrence(birthday.Entry{Name: "Bob", Month: time.December, Day: 5}, date(t, "2024-12-05"), birthday.LeapDayFeb28)
	require.NoError(t, err)
	assert.Nil(t, NewPayload(occ).Age)
}

func TestKeyFor(t *testing.T) {
	occ, err := birthday.NextOccurrence(birthday.Entry{Name: "Cy", Month: time.January, Day: 2}, date(t, "2024-12-30"), birthday.LeapDayFeb28)
	require.NoError(t, err)

	key := KeyFor(occ)
	assert.Equal(t, Key{Name: "Cy", Year: 2025}, key)
	assert.Equal(t, "Cy/2025", key.String())
}
