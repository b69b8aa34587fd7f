package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"birthday_reminder/internal/domain/birthday"
)

// BirthdayStore keeps entries in a map keyed by name.
type BirthdayStore struct {
	mu      sync.RWMutex
	entries map[string]birthday.Entry
}

func NewBirthdayStore(entries ...birthday.Entry) *BirthdayStore {
	s := &BirthdayStore{entries: make(map[string]birthday.Entry, len(entries))}
	for _, e := range entries {
		s.entries[e.Name] = e
	}
	return s
}

// Load returns the entries sorted by name.
func (s *BirthdayStore) Load(ctx context.Context) ([]birthday.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]birthday.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b birthday.Entry) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (s *BirthdayStore) FindByName(_ context.Context, name string) (birthday.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[name]
	if !ok {
		return birthday.Entry{}, birthday.ErrEntryNotFound
	}
	return e, nil
}

func (s *BirthdayStore) Add(_ context.Context, e birthday.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[e.Name]; ok {
		return birthday.ErrDuplicateName
	}
	s.entries[e.Name] = e
	return nil
}

func (s *BirthdayStore) Remove(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[name]; !ok {
		return birthday.ErrEntryNotFound
	}
	delete(s.entries, name)
	return nil
}

var _ birthday.Store = (*BirthdayStore)(nil)
