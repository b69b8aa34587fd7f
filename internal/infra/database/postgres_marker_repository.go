// internal/infra/database/postgres_marker_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"

	"birthday_reminder/internal/domain/reminder"
)

// PostgresMarkerRepository stores sent markers in the sent_markers table.
// Key locks are transaction-scoped advisory locks, so they hold across
// every process that talks to the same database.
type PostgresMarkerRepository struct {
	db *sql.DB  // nil when bound to a transaction
	q  querier
}

func NewPostgresMarkerRepository(db *sql.DB) *PostgresMarkerRepository {
	return &PostgresMarkerRepository{db: db, q: db}
}

func (r *PostgresMarkerRepository) HasMarker(ctx context.Context, key reminder.Key) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM sent_markers WHERE name = $1 AND occurrence_year = $2)`
	var exists bool
	if err := r.q.QueryRowContext(ctx, query, key.Name, key.Year).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking sent marker %s: %w", key, err)
	}
	return exists, nil
}

func (r *PostgresMarkerRepository) InsertMarker(ctx context.Context, m reminder.SentMarker) error {
	query := `INSERT INTO sent_markers (name, occurrence_year, sent_at)
               VALUES ($1, $2, $3)
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

func (r *PostgresMarkerRepository) PruneBefore(ctx context.Context, year int) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM sent_markers WHERE occurrence_year < $1`, year)
	if err != nil {
		return 0, fmt.Errorf("error pruning sent markers before %d: %w", year, err)
	}
	return res.RowsAffected()
}

// WithKeyLock opens a transaction, takes pg_advisory_xact_lock on the key
// and runs fn against a repository bound to that transaction. The lock is
// released when the transaction ends.
func (r *PostgresMarkerRepository) WithKeyLock(ctx context.Context, key reminder.Key, fn func(ctx context.Context, repo reminder.Repository) error) error {
	if r.db == nil {
		return fn(ctx, r)
	}

	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for %s: %w", key, err)
	}
	defer txn.Rollback() // Rollback if not committed

	if _, err := txn.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key.String()); err != nil {
		return fmt.Errorf("failed to lock %s: %w", key, err)
	}

	if err := fn(ctx, &PostgresMarkerRepository{q: txn}); err != nil {
		return err
	}
	if err := txn.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", key, err)
	}
	return nil
}

var _ reminder.Repository = (*PostgresMarkerRepository)(nil)
