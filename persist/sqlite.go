// Package persist saves task store snapshots to SQLite and replays them into
// a fresh store on startup.
package persist

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/GoCodeAlone/tasker/comms"
	"github.com/GoCodeAlone/tasker/task"

	_ "modernc.org/sqlite" // SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id         INTEGER PRIMARY KEY,
	name       TEXT NOT NULL,
	category   TEXT NOT NULL DEFAULT 'general',
	priority   INTEGER NOT NULL DEFAULT 3,
	deadline   TEXT NOT NULL DEFAULT '',
	start_time TEXT NOT NULL DEFAULT '',
	duration   INTEGER NOT NULL DEFAULT 30,
	status     INTEGER NOT NULL DEFAULT 0
);
`

// SQLiteStore keeps the last saved record set in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database at dbPath and ensures the tasks
// table exists. The caller is responsible for calling Close.
func Open(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	db.SetMaxOpenConns(1) // prevent SQLITE_BUSY
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database connection.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Load returns every saved record in ascending id order.
func (s *SQLiteStore) Load(ctx context.Context) ([]task.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, category, priority, deadline, start_time, duration, status
		FROM tasks ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		var t task.Task
		var status int
		if err := rows.Scan(&t.ID, &t.Name, &t.Category, &t.Priority,
			&t.Deadline, &t.StartTime, &t.DurationMins, &status); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t.Status = task.Status(status)
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Save replaces the saved record set with tasks in a single transaction.
func (s *SQLiteStore) Save(ctx context.Context, tasks []task.Task) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM tasks"); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tasks (id, name, category, priority, deadline, start_time, duration, status)
		VALUES (?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range tasks {
		if _, err := stmt.ExecContext(ctx,
			t.ID, t.Name, t.Category, t.Priority,
			t.Deadline, t.StartTime, t.DurationMins, int(t.Status),
		); err != nil {
			return fmt.Errorf("insert task %d: %w", t.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// Replay resets store and upserts every saved record under its saved id, in
// ascending id order, so the store's identifier counter ends past the highest
// saved id. It returns the number of records loaded.
func (s *SQLiteStore) Replay(ctx context.Context, store *task.Store) (int, error) {
	tasks, err := s.Load(ctx)
	if err != nil {
		return 0, err
	}
	store.Reset()
	for _, t := range tasks {
		if _, err := store.Upsert(t.ID, task.Fields{
			Name:         t.Name,
			Category:     t.Category,
			Priority:     t.Priority,
			Deadline:     t.Deadline,
			StartTime:    t.StartTime,
			DurationMins: t.DurationMins,
			Status:       t.Status,
		}); err != nil {
			return 0, fmt.Errorf("replay task %d: %w", t.ID, err)
		}
	}
	return len(tasks), nil
}

// Source is anything that can report the full current record set.
type Source interface {
	List(filter task.Filter) []task.Task
}

// Snapshotter returns a bus handler that saves src's full record set after
// every published mutation. A nil logger discards output.
func (s *SQLiteStore) Snapshotter(src Source, logger *slog.Logger) comms.Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return func(ctx context.Context, msg *comms.Message) error {
		tasks := src.List(task.Filter{})
		if err := s.Save(ctx, tasks); err != nil {
			logger.Error("snapshot failed", "message", msg.ID, "type", msg.Type, "error", err)
			return err
		}
		logger.Debug("snapshot saved", "message", msg.ID, "type", msg.Type, "count", len(tasks))
		return nil
	}
}
