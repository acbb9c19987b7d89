package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/taskid"
)

// tempPrefix marks ids parked during the first phase of a rewrite. It can
// never start a valid task id.
const tempPrefix = "~"

// Store implements ports.Store on a SQLite database.
//
// Dependency edges reference tasks with ON UPDATE/DELETE CASCADE, so SQLite
// itself keeps them in step with every id rewrite and removal.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at path and runs migrations.
// If path is empty, it defaults to ".arbor/arbor.db".
func New(path string) (*Store, error) {
	if path == "" {
		path = filepath.Join(".arbor", "arbor.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("sqlite: create data dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("sqlite: open database: %w", err)
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: migration: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS tasks (
			id         TEXT PRIMARY KEY,
			parent_id  TEXT NOT NULL DEFAULT '',
			title      TEXT NOT NULL DEFAULT '',
			status     TEXT NOT NULL DEFAULT '',
			body       TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks(parent_id);

		CREATE TABLE IF NOT EXISTS dependencies (
			task_id       TEXT NOT NULL REFERENCES tasks(id) ON UPDATE CASCADE ON DELETE CASCADE,
			depends_on_id TEXT NOT NULL REFERENCES tasks(id) ON UPDATE CASCADE ON DELETE CASCADE,
			PRIMARY KEY (task_id, depends_on_id)
		);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Snapshot returns every row.
func (s *Store) Snapshot(ctx context.Context) ([]domain.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, parent_id, title, status, body, created_at, updated_at FROM tasks`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate tasks: %w", err)
	}
	ports.SortTasks(tasks)
	return tasks, nil
}

// Get retrieves one task.
func (s *Store) Get(ctx context.Context, id string) (domain.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, parent_id, title, status, body, created_at, updated_at FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Task{}, domain.NotFound(id)
	}
	return t, err
}

// Commit applies cs inside one transaction.
//
// Rewrites are simultaneous, so they run in two phases: every source id is
// first parked under a temporary id, then every parked id takes its final
// value. A unique constraint failure in either phase is an id collision.
func (s *Store) Commit(ctx context.Context, cs domain.ChangeSet) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, id := range cs.Removed {
			res, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
			if err != nil {
				return fmt.Errorf("sqlite: delete %s: %w", id, err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return domain.NotFound(id)
			}
		}

		for _, r := range cs.Rewrites {
			if _, err := tx.ExecContext(ctx, `UPDATE tasks SET parent_id = ? WHERE parent_id = ?`, tempPrefix+r.NewID, r.OldID); err != nil {
				return fmt.Errorf("sqlite: park children of %s: %w", r.OldID, err)
			}
			res, err := tx.ExecContext(ctx, `UPDATE tasks SET id = ? WHERE id = ?`, tempPrefix+r.NewID, r.OldID)
			if err != nil {
				return collision(r.NewID, err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return domain.NotFound(r.OldID)
			}
		}
		for _, r := range cs.Rewrites {
			if _, err := tx.ExecContext(ctx, `UPDATE tasks SET id = ?, parent_id = ? WHERE id = ?`, r.NewID, taskid.ParentOf(r.NewID), tempPrefix+r.NewID); err != nil {
				return collision(r.NewID, err)
			}
		}
		if len(cs.Rewrites) > 0 {
			if _, err := tx.ExecContext(ctx, `UPDATE tasks SET parent_id = substr(parent_id, 2) WHERE parent_id LIKE '~%'`); err != nil {
				return fmt.Errorf("sqlite: unpark parents: %w", err)
			}
		}

		for _, t := range cs.Upserts {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO tasks (id, parent_id, title, status, body, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(id) DO UPDATE SET
					parent_id = excluded.parent_id,
					title = excluded.title,
					status = excluded.status,
					body = excluded.body,
					created_at = excluded.created_at,
					updated_at = excluded.updated_at`,
				t.ID, t.ParentID, t.Title, string(t.Status), t.Body, formatTime(t.CreatedAt), formatTime(t.UpdatedAt))
			if err != nil {
				return fmt.Errorf("sqlite: upsert %s: %w", t.ID, err)
			}
		}
		return nil
	})
}

// AddDependency records an edge between two known tasks.
func (s *Store) AddDependency(ctx context.Context, dep domain.Dependency) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, id := range []string{dep.TaskID, dep.DependsOnID} {
			var one int
			err := tx.QueryRowContext(ctx, `SELECT 1 FROM tasks WHERE id = ?`, id).Scan(&one)
			if errors.Is(err, sql.ErrNoRows) {
				return domain.NotFound(id)
			}
			if err != nil {
				return fmt.Errorf("sqlite: lookup %s: %w", id, err)
			}
		}
		_, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO dependencies (task_id, depends_on_id) VALUES (?, ?)`, dep.TaskID, dep.DependsOnID)
		if err != nil {
			return fmt.Errorf("sqlite: insert dependency: %w", err)
		}
		return nil
	})
}

// RemoveDependency deletes an edge if present.
func (s *Store) RemoveDependency(ctx context.Context, dep domain.Dependency) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM dependencies WHERE task_id = ? AND depends_on_id = ?`, dep.TaskID, dep.DependsOnID)
	if err != nil {
		return fmt.Errorf("sqlite: delete dependency: %w", err)
	}
	return nil
}

// Dependencies returns every edge.
func (s *Store) Dependencies(ctx context.Context) ([]domain.Dependency, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT task_id, depends_on_id FROM dependencies`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query dependencies: %w", err)
	}
	defer rows.Close()

	var deps []domain.Dependency
	for rows.Next() {
		var d domain.Dependency
		if err := rows.Scan(&d.TaskID, &d.DependsOnID); err != nil {
			return nil, fmt.Errorf("sqlite: scan dependency: %w", err)
		}
		deps = append(deps, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate dependencies: %w", err)
	}
	ports.SortDependencies(deps)
	return deps, nil
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (domain.Task, error) {
	var t domain.Task
	var status, created, updated string
	if err := row.Scan(&t.ID, &t.ParentID, &t.Title, &status, &t.Body, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Task{}, err
		}
		return domain.Task{}, fmt.Errorf("sqlite: scan task: %w", err)
	}
	t.Status = domain.Status(status)

	var err error
	if t.CreatedAt, err = parseTime(created); err != nil {
		return domain.Task{}, fmt.Errorf("sqlite: task %s created_at: %w", t.ID, err)
	}
	if t.UpdatedAt, err = parseTime(updated); err != nil {
		return domain.Task{}, fmt.Errorf("sqlite: task %s updated_at: %w", t.ID, err)
	}
	return t, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func collision(id string, err error) error {
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return domain.NewTreeError(domain.ErrIDCollision, id, "already taken")
	}
	return fmt.Errorf("sqlite: rewrite to %s: %w", id, err)
}
