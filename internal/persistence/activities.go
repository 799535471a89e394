package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aristath/miniplan/internal/scheduler"
)

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SaveActivity saves or updates an activity, its predecessor list and its
// computed dates. Uses ON CONFLICT to make saves idempotent.
// Predecessors are not required to exist.
func (s *SQLiteStore) SaveActivity(ctx context.Context, a *scheduler.Activity) error {
	return s.SaveActivities(ctx, []*scheduler.Activity{a})
}

// SaveActivities upserts several activities in a single transaction.
func (s *SQLiteStore) SaveActivities(ctx context.Context, acts []*scheduler.Activity) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, a := range acts {
			if err := upsertActivity(ctx, tx, a); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReplaceActivities swaps the stored network for acts atomically.
func (s *SQLiteStore) ReplaceActivities(ctx context.Context, acts []*scheduler.Activity) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM activities`); err != nil {
			return fmt.Errorf("failed to delete activities: %w", err)
		}
		for _, a := range acts {
			if err := upsertActivity(ctx, tx, a); err != nil {
				return err
			}
		}
		return nil
	})
}

func upsertActivity(ctx context.Context, tx execer, a *scheduler.Activity) error {
	if err := a.Validate(); err != nil {
		return err
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO activities (id, name, duration, resource, description,
			es, ef, ls, lf, total_float, free_float, is_critical, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			duration = excluded.duration,
			resource = excluded.resource,
			description = excluded.description,
			es = excluded.es,
			ef = excluded.ef,
			ls = excluded.ls,
			lf = excluded.lf,
			total_float = excluded.total_float,
			free_float = excluded.free_float,
			is_critical = excluded.is_critical,
			updated_at = CURRENT_TIMESTAMP
	`, a.ID, a.Name, a.Duration, a.Resource, a.Description,
		a.ES, a.EF, a.LS, a.LF, a.TotalFloat, a.FreeFloat, a.IsCritical)
	if err != nil {
		return fmt.Errorf("failed to upsert activity %s: %w", a.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM activity_predecessors WHERE activity_id = ?`, a.ID); err != nil {
		return fmt.Errorf("failed to delete old predecessors: %w", err)
	}

	for i, pred := range a.Predecessors {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO activity_predecessors (activity_id, predecessor_id, position)
			VALUES (?, ?, ?)
			ON CONFLICT(activity_id, predecessor_id) DO NOTHING
		`, a.ID, pred, i)
		if err != nil {
			return fmt.Errorf("failed to insert predecessor %s -> %s: %w", pred, a.ID, err)
		}
	}
	return nil
}

const selectActivity = `
	SELECT id, name, duration, resource, description,
		es, ef, ls, lf, total_float, free_float, is_critical
	FROM activities`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanActivity(row rowScanner) (*scheduler.Activity, error) {
	a := &scheduler.Activity{Predecessors: []string{}}
	err := row.Scan(&a.ID, &a.Name, &a.Duration, &a.Resource, &a.Description,
		&a.ES, &a.EF, &a.LS, &a.LF, &a.TotalFloat, &a.FreeFloat, &a.IsCritical)
	return a, err
}

// GetActivity retrieves an activity by ID, including its predecessors.
func (s *SQLiteStore) GetActivity(ctx context.Context, id string) (*scheduler.Activity, error) {
	a, err := scanActivity(s.db.QueryRowContext(ctx, selectActivity+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("activity %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query activity: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT predecessor_id
		FROM activity_predecessors
		WHERE activity_id = ?
		ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query predecessors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pred string
		if err := rows.Scan(&pred); err != nil {
			return nil, fmt.Errorf("failed to scan predecessor: %w", err)
		}
		a.Predecessors = append(a.Predecessors, pred)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating predecessors: %w", err)
	}

	return a, nil
}

// ListActivities returns all activities ordered by ID.
// Predecessors are loaded in a second query so only one cursor is open at a time.
func (s *SQLiteStore) ListActivities(ctx context.Context) ([]*scheduler.Activity, error) {
	rows, err := s.db.QueryContext(ctx, selectActivity+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}

	var acts []*scheduler.Activity
	byID := make(map[string]*scheduler.Activity)
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		acts = append(acts, a)
		byID[a.ID] = a
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activities: %w", err)
	}

	predRows, err := s.db.QueryContext(ctx, `
		SELECT activity_id, predecessor_id
		FROM activity_predecessors
		ORDER BY activity_id, position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query predecessors: %w", err)
	}
	defer predRows.Close()

	for predRows.Next() {
		var id, pred string
		if err := predRows.Scan(&id, &pred); err != nil {
			return nil, fmt.Errorf("failed to scan predecessor: %w", err)
		}
		if a, ok := byID[id]; ok {
			a.Predecessors = append(a.Predecessors, pred)
		}
	}
	if err := predRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating predecessors: %w", err)
	}

	return acts, nil
}

// ActivityExists reports whether an activity with the given ID is stored.
func (s *SQLiteStore) ActivityExists(ctx context.Context, id string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM activities WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check activity existence: %w", err)
	}
	return true, nil
}

// DeleteActivity removes an activity and its own predecessor rows.
// References to it from other activities are kept.
func (s *SQLiteStore) DeleteActivity(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM activities WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("activity %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteAll removes every activity.
func (s *SQLiteStore) DeleteAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM activities`); err != nil {
		return fmt.Errorf("failed to delete activities: %w", err)
	}
	return nil
}

// inTx runs fn in a transaction with serializable isolation (BEGIN IMMEDIATE).
func (s *SQLiteStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
