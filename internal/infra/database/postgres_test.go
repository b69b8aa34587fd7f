package database

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"birthday_reminder/internal/domain/birthday"
	"birthday_reminder/internal/domain/reminder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openPostgres connects to BDREMIND_TEST_DATABASE_URL and empties the tables.
func openPostgres(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("BDREMIND_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("BDREMIND_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	db, err := NewPostgresConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.ExecContext(ctx, `TRUNCATE sent_markers, birthdays`)
	require.NoError(t, err)
	return db
}

func TestPostgresMarkerRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgresMarkerRepository(openPostgres(t))
	key := reminder.Key{Name: "Ada", Year: 2024}

	err := repo.WithKeyLock(ctx, key, func(ctx context.Context, r reminder.Repository) error {
		ok, err := r.HasMarker(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok)
		return r.InsertMarker(ctx, reminder.SentMarker{Key: key, SentAt: time.Now()})
	})
	require.NoError(t, err)

	ok, err := repo.HasMarker(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.ErrorIs(t, repo.InsertMarker(ctx, reminder.SentMarker{Key: key, SentAt: time.Now()}), reminder.ErrMarkerExists)

	n, err := repo.PruneBefore(ctx, 2025)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestPostgresBirthdaySource(t *testing.T) {
	ctx := context.Background()
	src := NewPostgresBirthdaySource(openPostgres(t))

	require.NoError(t, src.Add(ctx, birthday.Entry{Name: "Bob", Month: time.December, Day: 5}))
	require.NoError(t, src.Add(ctx, birthday.Entry{Name: "Ada", Month: time.December, Day: 10, BirthYear: 1990}))

	entries, err := src.Load(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, birthday.Entry{Name: "Ada", Month: time.December, Day: 10, BirthYear: 1990}, entries[0])
	assert.False(t, entries[1].HasBirthYear())
}

func TestPostgresBirthdaySource_Edit(t *testing.T) {
	ctx := context.Background()
	src := NewPostgresBirthdaySource(openPostgres(t))

	ada := birthday.Entry{Name: "Ada", Month: time.December, Day: 10, BirthYear: 1990}
	require.NoError(t, src.Add(ctx, ada))
	assert.ErrorIs(t, src.Add(ctx, ada), birthday.ErrDuplicateName)

	got, err := src.FindByName(ctx, "Ada")
	require.NoError(t, err)
	assert.Equal(t, ada, got)

	require.NoError(t, src.Remove(ctx, "Ada"))
	assert.ErrorIs(t, src.Remove(ctx, "Ada"), birthday.ErrEntryNotFound)
	_, err = src.FindByName(ctx, "Ada")
	assert.ErrorIs(t, err, birthday.ErrEntryNotFound)
}
