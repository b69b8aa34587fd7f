package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"birthday_reminder/internal/domain/reminder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkerRepository_InsertAndLookup(t *testing.T) {
	ctx := context.Background()
	repo := NewMarkerRepository()
	key := reminder.Key{Name: "Ada", Year: 2024}

	ok, err := repo.HasMarker(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.InsertMarker(ctx, reminder.SentMarker{Key: key, SentAt: time.Now()}))
	assert.ErrorIs(t, repo.InsertMarker(ctx, reminder.SentMarker{Key: key}), reminder.ErrMarkerExists)

	ok, err = repo.HasMarker(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, repo.Markers(), 1)
}

func TestMarkerRepository_PruneBefore(t *testing.T) {
	ctx := context.Background()
	repo := NewMarkerRepository()
	for _, k := range []reminder.Key{{Name: "a", Year: 2022}, {Name: "b", Year: 2023}, {Name: "c", Year: 2024}, {Name: "d", Year: 2025}} {
		require.NoError(t, repo.InsertMarker(ctx, reminder.SentMarker{Key: k}))
	}

	n, err := repo.PruneBefore(ctx, 2024)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	for _, k := range []reminder.Key{{Name: "c", Year: 2024}, {Name: "d", Year: 2025}} {
		ok, err := repo.HasMarker(ctx, k)
		require.NoError(t, err)
		assert.True(t, ok, k.String())
	}
}

func TestMarkerRepository_WithKeyLockSerializes(t *testing.T) {
	ctx := context.Background()
	repo := NewMarkerRepository()
	key := reminder.Key{Name: "Ada", Year: 2024}

	var sends atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.WithKeyLock(ctx, key, func(ctx context.Context, r reminder.Repository) error {
				ok, err := r.HasMarker(ctx, key)
				if err != nil || ok {
					return err
				}
				sends.Add(1)
				return r.InsertMarker(ctx, reminder.SentMarker{Key: key})
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), sends.Load())
}
