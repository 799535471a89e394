package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// RecordRun appends a run to the scheduling history and sets its ID.
// A zero RanAt is replaced with the current time.
func (s *SQLiteStore) RecordRun(ctx context.Context, run *Run) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if run.RanAt.IsZero() {
		run.RanAt = time.Now()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO schedule_runs (ran_at, elapsed_ms, activity_count, duration, critical_path, error)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.RanAt.UnixMilli(), run.Elapsed.Milliseconds(), run.ActivityCount, run.Duration, strings.Join(run.CriticalPath, ","), run.Error)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read run id: %w", err)
	}
	run.ID = id
	return nil
}

// ListRuns returns the most recent runs first. A limit <= 0 returns all runs.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ran_at, elapsed_ms, activity_count, duration, critical_path, error
		FROM schedule_runs
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var ranAt, elapsedMS int64
		var path string
		if err := rows.Scan(&run.ID, &ranAt, &elapsedMS, &run.ActivityCount, &run.Duration, &path, &run.Error); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.RanAt = time.UnixMilli(ranAt)
		run.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		if path != "" {
			run.CriticalPath = strings.Split(path, ",")
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}
