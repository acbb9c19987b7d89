package ports

import (
	"context"

	"github.com/aretw0/arbor/pkg/domain"
)

// TaskStore defines how flat task rows are persisted.
type TaskStore interface {
	// Snapshot returns every task row, in no particular order.
	Snapshot(ctx context.Context) ([]domain.Task, error)

	// Get retrieves one task.
	// Returns domain.ErrNotFound if the task does not exist.
	Get(ctx context.Context, id string) (domain.Task, error)

	// Commit applies a ChangeSet as a single atomic unit, with the semantics of
	// domain.ChangeSet.Apply. Rewrites are simultaneous, so a new id may equal
	// the old id of another rewrite. On error nothing is applied.
	Commit(ctx context.Context, cs domain.ChangeSet) error
}

// DependencyStore defines how dependency edges between tasks are persisted.
// Implementations rewrite and drop edges as part of TaskStore.Commit.
type DependencyStore interface {
	// AddDependency records an edge. Adding an existing edge is a no-op.
	// Returns domain.ErrNotFound if either end is not a known task.
	AddDependency(ctx context.Context, dep domain.Dependency) error

	// RemoveDependency deletes an edge. Removing a missing edge is a no-op.
	RemoveDependency(ctx context.Context, dep domain.Dependency) error

	// Dependencies returns every edge, in no particular order.
	Dependencies(ctx context.Context) ([]domain.Dependency, error)
}

// Store is the full persistence port used by the workspace manager.
type Store interface {
	TaskStore
	DependencyStore
}

// TaskSource is a read-only origin of task rows.
type TaskSource interface {
	Tasks(ctx context.Context) ([]domain.Task, error)
}
