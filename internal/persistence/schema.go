package persistence

import (
	"context"
)

// initSchema creates all required tables if they don't exist.
// Predecessor rows cascade with their owning activity only: deleting an
// activity leaves other activities' references to it in place.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS activities (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		duration INTEGER NOT NULL CHECK (duration >= 0),
		resource TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		es INTEGER NOT NULL DEFAULT 0,
		ef INTEGER NOT NULL DEFAULT 0,
		ls INTEGER NOT NULL DEFAULT 0,
		lf INTEGER NOT NULL DEFAULT 0,
		total_float INTEGER NOT NULL DEFAULT 0,
		free_float INTEGER NOT NULL DEFAULT 0,
		is_critical INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS activity_predecessors (
		activity_id TEXT NOT NULL,
		predecessor_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (activity_id, predecessor_id),
		FOREIGN KEY (activity_id) REFERENCES activities(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_activity_predecessors_activity
		ON activity_predecessors(activity_id, position);

	CREATE TABLE IF NOT EXISTS schedule_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ran_at INTEGER NOT NULL,
		elapsed_ms INTEGER NOT NULL DEFAULT 0,
		activity_count INTEGER NOT NULL,
		duration INTEGER NOT NULL,
		critical_path TEXT NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT ''
	);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}
