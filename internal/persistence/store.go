package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aristath/miniplan/internal/scheduler"
)

// ErrNotFound is returned when a requested activity does not exist.
var ErrNotFound = errors.New("not found")

// Run is one entry of the scheduling history.
type Run struct {
	ID            int64
	RanAt         time.Time
	Elapsed       time.Duration // Time spent scheduling; stored in milliseconds
	ActivityCount int
	Duration      int      // Project duration; 0 for failed runs
	CriticalPath  []string // Critical activity IDs in topological order
	Error         string   // Empty for successful runs
}

// Succeeded reports whether the run produced a schedule.
func (r Run) Succeeded() bool {
	return r.Error == ""
}

// Store defines the persistence interface for activities and scheduling history.
type Store interface {
	// Activity operations
	SaveActivity(ctx context.Context, a *scheduler.Activity) error
	SaveActivities(ctx context.Context, acts []*scheduler.Activity) error
	ReplaceActivities(ctx context.Context, acts []*scheduler.Activity) error
	GetActivity(ctx context.Context, id string) (*scheduler.Activity, error)
	ListActivities(ctx context.Context) ([]*scheduler.Activity, error)
	ActivityExists(ctx context.Context, id string) (bool, error)
	DeleteActivity(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error

	// Scheduling history
	RecordRun(ctx context.Context, run *Run) error
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// Lifecycle
	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

var memoryStores atomic.Int64

// NewSQLiteStore creates a new SQLite-backed store at the given path.
// Creates parent directories if needed. Enables WAL mode, foreign keys, and busy timeout.
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create parent directories: %w", err)
	}

	connStr := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", dbPath)
	return open(ctx, connStr)
}

// NewMemoryStore creates an in-memory SQLite store for testing.
// Each store gets its own named database so parallel tests never share state.
func NewMemoryStore(ctx context.Context) (*SQLiteStore, error) {
	name := fmt.Sprintf("miniplan-%d", memoryStores.Add(1))
	connStr := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	return open(ctx, connStr)
}

func open(ctx context.Context, connStr string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Note: modernc.org/sqlite doesn't support _foreign_keys in connection string
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// One writer is all SQLite allows; a single connection also keeps the
	// per-connection foreign_keys pragma and an in-memory database alive.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
