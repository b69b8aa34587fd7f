// Package memory holds process-local implementations of the domain repositories.
// State is lost on exit, so they suit tests and dry runs rather than scheduled use.
package memory

import (
	"context"
	"sync"

	"birthday_reminder/internal/domain/reminder"
)

// MarkerRepository keeps sent markers in a map. Key locks are per-key mutexes.
type MarkerRepository struct {
	mu      sync.RWMutex
	markers map[reminder.Key]reminder.SentMarker

	locksMu sync.Mutex
	locks   map[reminder.Key]*sync.Mutex
}

func NewMarkerRepository() *MarkerRepository {
	return &MarkerRepository{
		markers: make(map[reminder.Key]reminder.SentMarker),
		locks:   make(map[reminder.Key]*sync.Mutex),
	}
}

func (r *MarkerRepository) HasMarker(_ context.Context, key reminder.Key) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.markers[key]
	return ok, nil
}

func (r *MarkerRepository) InsertMarker(_ context.Context, m reminder.SentMarker) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.markers[m.Key]; ok {
		return reminder.ErrMarkerExists
	}
	r.markers[m.Key] = m
	return nil
}

func (r *MarkerRepository) PruneBefore(_ context.Context, year int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for key := range r.markers {
		if key.Year < year {
			delete(r.markers, key)
			n++
		}
	}
	return n, nil
}

// WithKeyLock serializes callers on the same key. Writes made by fn are not
// rolled back on error; fn only inserts after its last fallible step.
func (r *MarkerRepository) WithKeyLock(ctx context.Context, key reminder.Key, fn func(ctx context.Context, repo reminder.Repository) error) error {
	lock := r.keyLock(key)
	lock.Lock()
	defer lock.Unlock()
	return fn(ctx, r)
}

// Markers returns a snapshot of all stored markers.
func (r *MarkerRepository) Markers() []reminder.SentMarker {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]reminder.SentMarker, 0, len(r.markers))
	for _, m := range r.markers {
		out = append(out, m)
	}
	return out
}

func (r *MarkerRepository) keyLock(key reminder.Key) *sync.Mutex {
	r.locksMu.Lock()
	defer r.locksMu.Unlock()
	lock, ok := r.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[key] = lock
	}
	return lock
}

var _ reminder.Repository = (*MarkerRepository)(nil)
