package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"birthday_reminder/internal/domain/birthday"

	"github.com/sirupsen/logrus"
)

// Application-level errors for the admin service
var ErrBirthdayAlreadyExists = errors.New("a birthday with this name already exists")
var ErrBirthdayNotFound = errors.New("no birthday with this name")

// AdminService edits the birthday list of an editable store.
type AdminService struct {
	store  birthday.Store
	logger *logrus.Entry
}

func NewAdminService(store birthday.Store, logger *logrus.Entry) *AdminService {
	return &AdminService{
		store:  store,
		logger: logger.WithField("component", "admin_service"),
	}
}

// AddBirthday validates e against reference and stores it. Names are the
// reminder identity, so a name already in the store is rejected.
func (s *AdminService) AddBirthday(ctx context.Context, e birthday.Entry, reference birthday.Date) (birthday.Entry, error) {
	e.Name = strings.TrimSpace(e.Name)
	if err := e.Validate(reference); err != nil {
		return birthday.Entry{}, err
	}

	// Check if the name is already taken
	_, err := s.store.FindByName(ctx, e.Name)
	if err == nil {
		return birthday.Entry{}, ErrBirthdayAlreadyExists
	}
	if !errors.Is(err, birthday.ErrEntryNotFound) {
		return birthday.Entry{}, fmt.Errorf("failed to check existing birthday: %w", err)
	}

	if err := s.store.Add(ctx, e); err != nil {
		if errors.Is(err, birthday.ErrDuplicateName) { // Added concurrently since the lookup
			return birthday.Entry{}, ErrBirthdayAlreadyExists
		}
		return birthday.Entry{}, fmt.Errorf("failed to add birthday: %w", err)
	}

	s.logger.WithField("name", e.Name).Info("Birthday added")
	return e, nil
}

// RemoveBirthday deletes the named entry and returns what was removed.
// Sent markers for the name are left for pruning.
func (s *AdminService) RemoveBirthday(ctx context.Context, name string) (birthday.Entry, error) {
	name = strings.TrimSpace(name)
	target, err := s.store.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, birthday.ErrEntryNotFound) {
			return birthday.Entry{}, ErrBirthdayNotFound
		}
		return birthday.Entry{}, fmt.Errorf("failed to get birthday for removal: %w", err)
	}

	if err := s.store.Remove(ctx, name); err != nil {
		if errors.Is(err, birthday.ErrEntryNotFound) {
			return birthday.Entry{}, ErrBirthdayNotFound
		}
		return birthday.Entry{}, fmt.Errorf("failed to remove birthday: %w", err)
	}

	s.logger.WithField("name", name).Info("Birthday removed")
	return target, nil
}
