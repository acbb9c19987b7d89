package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// LockKey is the key under which every structural mutation is serialized.
const LockKey = "tasks"

// DefaultLockTTL bounds how long a crashed holder can keep the distributed lock.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates access to one task store, ensuring structural
// mutations never interleave. It uses reference counting to garbage collect
// unused locks.
type Manager struct {
	store  ports.Store
	engine *arbor.Engine

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	hooks   domain.MutationHooks
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of the distributed lock.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithEngine replaces the default engine.
func WithEngine(engine *arbor.Engine) Option {
	return func(m *Manager) {
		m.engine = engine
	}
}

// WithMutationHooks registers callbacks fired after each commit attempt.
// Only OnCommit is used; planning hooks belong to the engine.
func WithMutationHooks(hooks domain.MutationHooks) Option {
	return func(m *Manager) {
		m.hooks = hooks
	}
}

// NewManager creates a new Manager over the given store.
func NewManager(store ports.Store, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.engine == nil {
		m.engine = arbor.New(arbor.WithLogger(m.logger))
	}
	return m
}

// Engine returns the engine used for planning.
func (m *Manager) Engine() *arbor.Engine {
	return m.engine
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(key) after unlocking.
func (m *Manager) acquire(key string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		entry = &lockEntry{}
		m.locks[key] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, key)
	}
}

// WithLock executes fn while holding the lock for key.
func (m *Manager) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	entry := m.acquire(key)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(key)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, key, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"key", key,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// mutate runs snapshot → plan → commit inside the workspace lock.
func (m *Manager) mutate(ctx context.Context, kind domain.MutationKind, id string, plan func(ctx context.Context, tasks []domain.Task) (domain.ChangeSet, error)) error {
	return m.WithLock(ctx, LockKey, func(ctx context.Context) error {
		start := time.Now()
		tasks, err := m.store.Snapshot(ctx)
		if err != nil {
			return fmt.Errorf("failed to read task set: %w", err)
		}

		cs, err := plan(ctx, tasks)
		if err != nil {
			return err
		}

		if !cs.Empty() {
			err = m.store.Commit(ctx, cs)
		}
		m.emitCommit(ctx, kind, id, cs, start, err)
		if err != nil {
			return fmt.Errorf("failed to commit %s: %w", kind, err)
		}
		return nil
	})
}

func (m *Manager) emitCommit(ctx context.Context, kind domain.MutationKind, id string, cs domain.ChangeSet, start time.Time, err error) {
	event := &domain.MutationEvent{
		Timestamp: time.Now(),
		Kind:      kind,
		TaskID:    id,
		Rewrites:  len(cs.Rewrites),
		Duration:  time.Since(start),
		Err:       err,
	}
	if err != nil {
		m.logger.ErrorContext(ctx, "Commit failed", "kind", kind, "task_id", id, "err", err)
	} else {
		m.logger.InfoContext(ctx, "Committed", "kind", kind, "task_id", id, "rewrites", event.Rewrites, "duration", event.Duration)
	}
	if m.hooks.OnCommit != nil {
		m.hooks.OnCommit(ctx, event)
	}
}

// AddChild inserts payload as the last child of parentID ("" for the root level).
func (m *Manager) AddChild(ctx context.Context, parentID string, payload domain.Task) (arbor.InsertResult, error) {
	var res arbor.InsertResult
	if err := checkStatus(parentID, payload.Status); err != nil {
		return res, err
	}
	err := m.mutate(ctx, domain.MutationInsertChild, parentID, func(ctx context.Context, tasks []domain.Task) (domain.ChangeSet, error) {
		var err error
		res, err = m.engine.InsertChild(ctx, tasks, parentID, payload)
		return res.ChangeSet(), err
	})
	return res, err
}

// InsertAfter inserts payload right after siblingID.
func (m *Manager) InsertAfter(ctx context.Context, siblingID string, payload domain.Task) (arbor.InsertResult, error) {
	var res arbor.InsertResult
	if err := checkStatus(siblingID, payload.Status); err != nil {
		return res, err
	}
	err := m.mutate(ctx, domain.MutationInsertAfter, siblingID, func(ctx context.Context, tasks []domain.Task) (domain.ChangeSet, error) {
		var err error
		res, err = m.engine.InsertAfter(ctx, tasks, siblingID, payload)
		return res.ChangeSet(), err
	})
	return res, err
}

// Delete removes id and promotes its children.
func (m *Manager) Delete(ctx context.Context, id string) (arbor.DeleteResult, error) {
	var res arbor.DeleteResult
	err := m.mutate(ctx, domain.MutationDelete, id, func(ctx context.Context, tasks []domain.Task) (domain.ChangeSet, error) {
		var err error
		res, err = m.engine.DeleteTask(ctx, tasks, id)
		return res.ChangeSet(), err
	})
	return res, err
}

// Move re-parents id under newParentID ("" for the root level).
func (m *Manager) Move(ctx context.Context, id, newParentID string) (arbor.MoveResult, error) {
	var res arbor.MoveResult
	err := m.mutate(ctx, domain.MutationMove, id, func(ctx context.Context, tasks []domain.Task) (domain.ChangeSet, error) {
		var err error
		res, err = m.engine.Move(ctx, tasks, id, newParentID)
		return res.ChangeSet(), err
	})
	return res, err
}

// Renumber repairs the whole task set.
func (m *Manager) Renumber(ctx context.Context) (arbor.RenumberResult, error) {
	var res arbor.RenumberResult
	err := m.mutate(ctx, domain.MutationRenumber, "", func(ctx context.Context, tasks []domain.Task) (domain.ChangeSet, error) {
		var err error
		res, err = m.engine.Renumber(ctx, tasks)
		return res.ChangeSet(), err
	})
	return res, err
}

// Update edits the payload of id. fn must not change the id or the parent.
func (m *Manager) Update(ctx context.Context, id string, fn func(t *domain.Task) error) (domain.Task, error) {
	var updated domain.Task
	err := m.mutate(ctx, domain.MutationUpdate, id, func(ctx context.Context, _ []domain.Task) (domain.ChangeSet, error) {
		current, err := m.store.Get(ctx, id)
		if err != nil {
			return domain.ChangeSet{}, err
		}
		next := current
		if err := fn(&next); err != nil {
			return domain.ChangeSet{}, err
		}
		if next.ID != current.ID || next.ParentID != current.ParentID {
			return domain.ChangeSet{}, domain.NewTreeError(domain.ErrInvalidMove, id, "use Move to change the position of a task")
		}
		if err := checkStatus(id, next.Status); err != nil {
			return domain.ChangeSet{}, err
		}
		next.UpdatedAt = time.Now().UTC()
		updated = next
		return domain.ChangeSet{Upserts: []domain.Task{next}}, nil
	})
	return updated, err
}

func checkStatus(id string, s domain.Status) error {
	if s != "" && !s.Valid() {
		return domain.NewTreeError(domain.ErrInvalidStatus, id, "unknown status %q", s)
	}
	return nil
}

// Import appends every tree of src at the end of the root level, keeping its
// shape but assigning fresh ids. It returns the number of imported tasks.
func (m *Manager) Import(ctx context.Context, src ports.TaskSource) (int, error) {
	incoming, err := src.Tasks(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read task source: %w", err)
	}
	forest, warnings := m.engine.BuildForest(ctx, incoming)
	if len(warnings) > 0 {
		m.logger.WarnContext(ctx, "Imported task set is inconsistent; orphans become roots", "warnings", len(warnings))
	}

	count := 0
	err = m.mutate(ctx, domain.MutationImport, "", func(ctx context.Context, tasks []domain.Task) (domain.ChangeSet, error) {
		var cs domain.ChangeSet
		var place func(n *domain.Node, parentID string) error
		place = func(n *domain.Node, parentID string) error {
			res, err := m.engine.InsertChild(ctx, tasks, parentID, n.Task)
			if err != nil {
				return err
			}
			tasks = append(tasks, res.Task)
			cs.Upserts = append(cs.Upserts, res.Task)
			for _, c := range n.Children {
				if err := place(c, res.NewID); err != nil {
					return err
				}
			}
			return nil
		}
		for _, root := range forest {
			if err := place(root, ""); err != nil {
				return domain.ChangeSet{}, err
			}
		}
		count = len(cs.Upserts)
		return cs, nil
	})
	return count, err
}

// Tasks returns the current task set in hierarchy pre-order.
func (m *Manager) Tasks(ctx context.Context) ([]domain.Task, error) {
	tasks, err := m.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	ports.SortTasks(tasks)
	return tasks, nil
}

// Get returns one task.
func (m *Manager) Get(ctx context.Context, id string) (domain.Task, error) {
	return m.store.Get(ctx, id)
}

// Forest builds the current hierarchy.
func (m *Manager) Forest(ctx context.Context) (domain.Forest, []domain.Warning, error) {
	tasks, err := m.store.Snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}
	forest, warnings := m.engine.BuildForest(ctx, tasks)
	return forest, warnings, nil
}

// Subtree builds the hierarchy rooted at id.
func (m *Manager) Subtree(ctx context.Context, id string) (domain.Forest, []domain.Warning, error) {
	tasks, err := m.store.Snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}
	return m.engine.GetSubtree(ctx, tasks, id)
}

// Descendants returns every task below id.
func (m *Manager) Descendants(ctx context.Context, id string) ([]domain.Task, error) {
	tasks, err := m.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return m.engine.GetDescendants(tasks, id)
}

// Ancestors returns the ancestors of id, root first.
func (m *Manager) Ancestors(ctx context.Context, id string) ([]domain.Task, error) {
	tasks, err := m.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return m.engine.GetAncestorChain(tasks, id)
}

// Check reports every hierarchy invariant the stored task set breaks.
func (m *Manager) Check(ctx context.Context) ([]domain.Violation, error) {
	tasks, err := m.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return m.engine.Check(tasks), nil
}

// Blockers returns the tasks id depends on that are not done yet.
func (m *Manager) Blockers(ctx context.Context, id string) ([]domain.Task, error) {
	deps, err := m.store.Dependencies(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.Task
	for _, d := range deps {
		if d.TaskID != id {
			continue
		}
		t, err := m.store.Get(ctx, d.DependsOnID)
		if err != nil {
			return nil, err
		}
		if t.Status != domain.StatusDone {
			out = append(out, t)
		}
	}
	ports.SortTasks(out)
	return out, nil
}

// AddDependency records that taskID depends on dependsOnID. Edges between a
// task and one of its own ancestors or descendants are allowed; self edges
// and edges that would close a dependency loop are not.
func (m *Manager) AddDependency(ctx context.Context, taskID, dependsOnID string) error {
	if taskID == dependsOnID {
		return domain.NewTreeError(domain.ErrCycleDetected, taskID, "a task cannot depend on itself")
	}
	return m.WithLock(ctx, LockKey, func(ctx context.Context) error {
		deps, err := m.store.Dependencies(ctx)
		if err != nil {
			return err
		}
		if dependsOn(deps, dependsOnID, taskID) {
			return domain.NewTreeError(domain.ErrCycleDetected, taskID, "%q already depends on it", dependsOnID)
		}
		return m.store.AddDependency(ctx, domain.Dependency{TaskID: taskID, DependsOnID: dependsOnID})
	})
}

// dependsOn reports whether from reaches to by following dependency edges.
// Shared prerequisites (diamonds) are visited once and are not loops.
func dependsOn(deps []domain.Dependency, from, to string) bool {
	next := make(map[string][]string, len(deps))
	for _, d := range deps {
		next[d.TaskID] = append(next[d.TaskID], d.DependsOnID)
	}
	seen := map[string]bool{}
	stack := []string{from}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == to {
			return true
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		stack = append(stack, next[id]...)
	}
	return false
}

// RemoveDependency deletes an edge.
func (m *Manager) RemoveDependency(ctx context.Context, taskID, dependsOnID string) error {
	return m.WithLock(ctx, LockKey, func(ctx context.Context) error {
		return m.store.RemoveDependency(ctx, domain.Dependency{TaskID: taskID, DependsOnID: dependsOnID})
	})
}

// Dependencies returns every edge.
func (m *Manager) Dependencies(ctx context.Context) ([]domain.Dependency, error) {
	return m.store.Dependencies(ctx)
}
