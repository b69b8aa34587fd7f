package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"birthday_reminder/internal/domain/birthday"

	"github.com/lib/pq"
)

const uniqueViolation = pq.ErrorCode("23505")

// PostgresBirthdaySource reads and edits entries in the birthdays table.
type PostgresBirthdaySource struct {
	db *sql.DB
}

func NewPostgresBirthdaySource(db *sql.DB) *PostgresBirthdaySource {
	return &PostgresBirthdaySource{db: db}
}

func (s *PostgresBirthdaySource) Load(ctx context.Context) ([]birthday.Entry, error) {
	query := `SELECT id, name, month, day, birth_year FROM birthdays ORDER BY name, id`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying birthdays: %w", err)
	}
	defer rows.Close()

	entries := make([]birthday.Entry, 0)
	var problems []error
	for rows.Next() {
		var (
			id        int64
			name      string
			month     int
			day       int
			birthYear sql.NullInt32
		)
		if err := rows.Scan(&id, &name, &month, &day, &birthYear); err != nil {
			return nil, fmt.Errorf("error scanning birthday row: %w", err)
		}
		if strings.TrimSpace(name) == "" {
			problems = append(problems, &birthday.RecordError{Origin: "birthdays", Line: int(id), Err: birthday.ErrEmptyName})
			continue
		}
		entry := birthday.Entry{Name: name, Month: time.Month(month), Day: day}
		if birthYear.Valid {
			entry.BirthYear = int(birthYear.Int32)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating birthday rows: %w", err)
	}
	return entries, errors.Join(problems...)
}

// FindByName returns the entry with the given name.
func (s *PostgresBirthdaySource) FindByName(ctx context.Context, name string) (birthday.Entry, error) {
	query := `SELECT name, month, day, birth_year FROM birthdays WHERE name = $1`
	var (
		entry     birthday.Entry
		month     int
		birthYear sql.NullInt32
	)
	err := s.db.QueryRowContext(ctx, query, name).Scan(&entry.Name, &month, &entry.Day, &birthYear)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return birthday.Entry{}, birthday.ErrEntryNotFound
		}
		return birthday.Entry{}, fmt.Errorf("error getting birthday %q: %w", name, err)
	}
	entry.Month = time.Month(month)
	if birthYear.Valid {
		entry.BirthYear = int(birthYear.Int32)
	}
	return entry, nil
}

// Add inserts an entry. The unique index on name turns a second entry with
// the same name into birthday.ErrDuplicateName.
func (s *PostgresBirthdaySource) Add(ctx context.Context, e birthday.Entry) error {
	var birthYear sql.NullInt32
	if e.HasBirthYear() {
		birthYear = sql.NullInt32{Int32: int32(e.BirthYear), Valid: true}
	}
	query := `INSERT INTO birthdays (name, month, day, birth_year) VALUES ($1, $2, $3, $4)`
	if _, err := s.db.ExecContext(ctx, query, e.Name, int(e.Month), e.Day, birthYear); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return birthday.ErrDuplicateName
		}
		return fmt.Errorf("error inserting birthday %q: %w", e.Name, err)
	}
	return nil
}

func (s *PostgresBirthdaySource) Remove(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM birthdays WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("error deleting birthday %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading delete result for %q: %w", name, err)
	}
	if n == 0 {
		return birthday.ErrEntryNotFound
	}
	return nil
}

var _ birthday.Store = (*PostgresBirthdaySource)(nil)
