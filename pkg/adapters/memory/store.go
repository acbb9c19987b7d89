package memory

import (
	"context"
	"sync"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// Store implements ports.Store in memory.
// Safe for concurrent use.
type Store struct {
	tasks []domain.Task
	deps  []domain.Dependency
	mu    sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{}
}

// Snapshot returns a copy of every row.
func (s *Store) Snapshot(ctx context.Context) ([]domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Task(nil), s.tasks...), nil
}

// Get retrieves one task.
func (s *Store) Get(ctx context.Context, id string) (domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.Task{}, domain.NotFound(id)
}

// Commit computes the next state aside and swaps it in, so a failed
// ChangeSet leaves the store untouched.
func (s *Store) Commit(ctx context.Context, cs domain.ChangeSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, deps, err := cs.Apply(s.tasks, s.deps)
	if err != nil {
		return err
	}
	ports.SortTasks(tasks)
	s.tasks, s.deps = tasks, deps
	return nil
}

// AddDependency records an edge between two known tasks.
func (s *Store) AddDependency(ctx context.Context, dep domain.Dependency) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range []string{dep.TaskID, dep.DependsOnID} {
		if !s.has(id) {
			return domain.NotFound(id)
		}
	}
	for _, d := range s.deps {
		if d == dep {
			return nil
		}
	}
	s.deps = append(s.deps, dep)
	return nil
}

// RemoveDependency deletes an edge if present.
func (s *Store) RemoveDependency(ctx context.Context, dep domain.Dependency) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.deps[:0]
	for _, d := range s.deps {
		if d != dep {
			kept = append(kept, d)
		}
	}
	s.deps = kept
	return nil
}

// Dependencies returns a copy of every edge.
func (s *Store) Dependencies(ctx context.Context) ([]domain.Dependency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]domain.Dependency(nil), s.deps...)
	ports.SortDependencies(out)
	return out, nil
}

func (s *Store) has(id string) bool {
	for _, t := range s.tasks {
		if t.ID == id {
			return true
		}
	}
	return false
}
