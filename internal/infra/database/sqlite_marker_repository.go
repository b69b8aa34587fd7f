// internal/infra/database/sqlite_marker_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"birthday_reminder/internal/domain/reminder"
)

// SQLiteMarkerRepository is the default sent-marker store: a local file.
// WithKeyLock relies on BEGIN IMMEDIATE, which takes the database-wide
// write lock, so it serializes all keys rather than just one.
type SQLiteMarkerRepository struct {
	db *sql.DB // nil when bound to a transaction
	q  querier
}

func NewSQLiteMarkerRepository(db *sql.DB) *SQLiteMarkerRepository {
	return &SQLiteMarkerRepository{db: db, q: db}
}

func (r *SQLiteMarkerRepository) HasMarker(ctx context.Context, key reminder.Key) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM sent_markers WHERE name = ? AND occurrence_year = ?)`
	var exists bool
	if err := r.q.QueryRowContext(ctx, query, key.Name, key.Year).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking sent marker %s: %w", key, err)
	}
	return exists, nil
}

func (r *SQLiteMarkerRepository) InsertMarker(ctx context.Context, m reminder.SentMarker) error {
	query := `INSERT INTO sent_markers (name, occurrence_year, sent_at)
               VALUES (?, ?, ?)
               ON CONFLICT (name, occurrence_year) DO NOTHING`
	res, err := r.q.ExecContext(ctx, query, m.Key.Name, m.Key.Year, m.SentAt.UTC())
	if err != nil {
		return fmt.Errorf("error inserting sent marker %s: %w", m.Key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading insert result for %s: %w", m.Key, err)
	}
	if n == 0 {
		return reminder.ErrMarkerExists
	}
	return nil
}

func (r *SQLiteMarkerRepository) PruneBefore(ctx context.Context, year int) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM sent_markers WHERE occurrence_year < ?`, year)
	if err != nil {
		return 0, fmt.Errorf("error pruning sent markers before %d: %w", year, err)
	}
	return res.RowsAffected()
}

// ListMarkers returns every marker ordered by year and name.
func (r *SQLiteMarkerRepository) ListMarkers(ctx context.Context) ([]reminder.SentMarker, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT name, occurrence_year, sent_at FROM sent_markers ORDER BY occurrence_year, name`)
	if err != nil {
		return nil, fmt.Errorf("error listing sent markers: %w", err)
	}
	defer rows.Close()

	markers := make([]reminder.SentMarker, 0)
	for rows.Next() {
		var m reminder.SentMarker
		var sentAt time.Time
		if err := rows.Scan(&m.Key.Name, &m.Key.Year, &sentAt); err != nil {
			return nil, fmt.Errorf("error scanning sent marker row: %w", err)
		}
		m.SentAt = sentAt
		markers = append(markers, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sent marker rows: %w", err)
	}
	return markers, nil
}

func (r *SQLiteMarkerRepository) WithKeyLock(ctx context.Context, key reminder.Key, fn func(ctx context.Context, repo reminder.Repository) error) error {
	if r.db == nil {
		return fn(ctx, r)
	}

	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for %s: %w", key, err)
	}
	defer txn.Rollback() // Rollback if not committed

	if err := fn(ctx, &SQLiteMarkerRepository{q: txn}); err != nil {
		return err
	}
	if err := txn.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", key, err)
	}
	return nil
}

var _ reminder.Repository = (*SQLiteMarkerRepository)(nil)
