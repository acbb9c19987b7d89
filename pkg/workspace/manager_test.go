package workspace_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor/pkg/adapters/memory"
	arborredis "github.com/aretw0/arbor/pkg/adapters/redis"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/workspace"
)

// SlowStore widens the window between snapshot and commit so that
// unserialized mutations would plan against stale task sets.
type SlowStore struct {
	ports.Store
}

func (s *SlowStore) Snapshot(ctx context.Context) ([]domain.Task, error) {
	time.Sleep(2 * time.Millisecond) // Simulate IO
	return s.Store.Snapshot(ctx)
}

func (s *SlowStore) Commit(ctx context.Context, cs domain.ChangeSet) error {
	time.Sleep(2 * time.Millisecond) // Simulate IO
	return s.Store.Commit(ctx, cs)
}

func idsOf(tasks []domain.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestManager_ConcurrentInsertsStayGapless(t *testing.T) {
	mgr := workspace.NewManager(&SlowStore{Store: memory.NewStore()})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := mgr.AddChild(ctx, "", domain.Task{Title: fmt.Sprintf("task %d", n)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	tasks, err := mgr.Tasks(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 20)

	violations, err := mgr.Check(ctx)
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestManager_Mutations(t *testing.T) {
	ctx := context.Background()
	var commits []domain.MutationKind
	mgr := workspace.NewManager(memory.NewStore(), workspace.WithMutationHooks(domain.MutationHooks{
		OnCommit: func(_ context.Context, e *domain.MutationEvent) {
			if e.Err == nil {
				commits = append(commits, e.Kind)
			}
		},
	}))

	_, err := mgr.AddChild(ctx, "", domain.Task{Title: "design"})
	require.NoError(t, err)
	_, err = mgr.AddChild(ctx, "1", domain.Task{Title: "schema"})
	require.NoError(t, err)
	_, err = mgr.AddChild(ctx, "1", domain.Task{Title: "api"})
	require.NoError(t, err)
	_, err = mgr.AddChild(ctx, "1.1", domain.Task{Title: "tables"})
	require.NoError(t, err)
	_, err = mgr.AddChild(ctx, "", domain.Task{Title: "ship"})
	require.NoError(t, err)

	res, err := mgr.InsertAfter(ctx, "1.1", domain.Task{Title: "review"})
	require.NoError(t, err)
	assert.Equal(t, "1.2", res.NewID)

	tasks, err := mgr.Tasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "1.1", "1.1.1", "1.2", "1.3", "2"}, idsOf(tasks))

	_, err = mgr.Delete(ctx, "1.1")
	require.NoError(t, err)
	tasks, err = mgr.Tasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "1.1", "1.2", "1.3", "2"}, idsOf(tasks))

	got, err := mgr.Get(ctx, "1.3")
	require.NoError(t, err)
	assert.Equal(t, "tables", got.Title)
	assert.Equal(t, "1", got.ParentID)

	moved, err := mgr.Move(ctx, "1.3", "2")
	require.NoError(t, err)
	assert.Equal(t, "2.1", moved.NewID)

	ancestors, err := mgr.Ancestors(ctx, "2.1")
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, idsOf(ancestors))

	descendants, err := mgr.Descendants(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"1.1", "1.2"}, idsOf(descendants))

	assert.Equal(t, []domain.MutationKind{
		domain.MutationInsertChild, domain.MutationInsertChild, domain.MutationInsertChild,
		domain.MutationInsertChild, domain.MutationInsertChild, domain.MutationInsertAfter,
		domain.MutationDelete, domain.MutationMove,
	}, commits)
}

func TestManager_FailedMutationCommitsNothing(t *testing.T) {
	ctx := context.Background()
	mgr := workspace.NewManager(memory.NewStore())
	_, err := mgr.AddChild(ctx, "", domain.Task{Title: "root"})
	require.NoError(t, err)
	_, err = mgr.AddChild(ctx, "1", domain.Task{Title: "child"})
	require.NoError(t, err)

	_, err = mgr.Move(ctx, "1", "1.1")
	assert.ErrorIs(t, err, domain.ErrInvalidMove)

	_, err = mgr.Delete(ctx, "9")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	tasks, err := mgr.Tasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "1.1"}, idsOf(tasks))
}

func TestManager_Update(t *testing.T) {
	ctx := context.Background()
	mgr := workspace.NewManager(memory.NewStore())
	_, err := mgr.AddChild(ctx, "", domain.Task{Title: "draft"})
	require.NoError(t, err)

	updated, err := mgr.Update(ctx, "1", func(task *domain.Task) error {
		task.Title = "final"
		task.Status = domain.StatusDone
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Title)

	got, err := mgr.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, got.Status)

	_, err = mgr.Update(ctx, "1", func(task *domain.Task) error {
		task.ID = "7"
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrInvalidMove)

	_, err = mgr.Update(ctx, "1", func(task *domain.Task) error {
		task.Status = "archived"
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = mgr.AddChild(ctx, "", domain.Task{Title: "x", Status: "archived"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestManager_Dependencies(t *testing.T) {
	ctx := context.Background()
	mgr := workspace.NewManager(memory.NewStore())
	for _, title := range []string{"a", "b", "c"} {
		_, err := mgr.AddChild(ctx, "", domain.Task{Title: title})
		require.NoError(t, err)
	}

	require.NoError(t, mgr.AddDependency(ctx, "3", "2"))
	require.NoError(t, mgr.AddDependency(ctx, "2", "1"))

	err := mgr.AddDependency(ctx, "1", "3")
	assert.ErrorIs(t, err, domain.ErrCycleDetected)
	err = mgr.AddDependency(ctx, "1", "1")
	assert.ErrorIs(t, err, domain.ErrCycleDetected)

	blockers, err := mgr.Blockers(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, idsOf(blockers))

	// Deleting 1 shifts 2→1 and 3→2; the surviving edge follows.
	_, err = mgr.Delete(ctx, "1")
	require.NoError(t, err)
	deps, err := mgr.Dependencies(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Dependency{{TaskID: "2", DependsOnID: "1"}}, deps)

	require.NoError(t, mgr.RemoveDependency(ctx, "2", "1"))
	deps, err = mgr.Dependencies(ctx)
	require.NoError(t, err)
	assert.Empty(t, deps)
}

func TestManager_DependencyDiamond(t *testing.T) {
	ctx := context.Background()
	mgr := workspace.NewManager(memory.NewStore())
	for _, title := range []string{"base", "left", "right", "top", "release"} {
		_, err := mgr.AddChild(ctx, "", domain.Task{Title: title})
		require.NoError(t, err)
	}

	// 4 reaches 1 through both 2 and 3.
	require.NoError(t, mgr.AddDependency(ctx, "2", "1"))
	require.NoError(t, mgr.AddDependency(ctx, "3", "1"))
	require.NoError(t, mgr.AddDependency(ctx, "4", "2"))
	require.NoError(t, mgr.AddDependency(ctx, "4", "3"))
	require.NoError(t, mgr.AddDependency(ctx, "5", "4"))
	require.NoError(t, mgr.AddDependency(ctx, "5", "1"))

	err := mgr.AddDependency(ctx, "1", "5")
	assert.ErrorIs(t, err, domain.ErrCycleDetected)
	err = mgr.AddDependency(ctx, "1", "4")
	assert.ErrorIs(t, err, domain.ErrCycleDetected)

	deps, err := mgr.Dependencies(ctx)
	require.NoError(t, err)
	assert.Len(t, deps, 6)
}

func TestManager_Subtree(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	mgr := workspace.NewManager(store)
	for _, parent := range []string{"", "1", "1.1", ""} {
		_, err := mgr.AddChild(ctx, parent, domain.Task{Title: "t"})
		require.NoError(t, err)
	}

	forest, warnings, err := mgr.Subtree(ctx, "1.1")
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, forest, 1)
	assert.Equal(t, "1.1", forest[0].Task.ID)
	require.Len(t, forest[0].Children, 1)
	assert.Equal(t, "1.1.1", forest[0].Children[0].Task.ID)

	_, _, err = mgr.Subtree(ctx, "9")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.Commit(ctx, domain.ChangeSet{Upserts: []domain.Task{
		{ID: "3", Title: "x", ParentID: "4"},
		{ID: "4", Title: "y", ParentID: "3"},
	}}))
	_, _, err = mgr.Subtree(ctx, "3")
	assert.ErrorIs(t, err, domain.ErrCycleDetected)
}

func TestManager_Import(t *testing.T) {
	ctx := context.Background()
	mgr := workspace.NewManager(memory.NewStore())
	_, err := mgr.AddChild(ctx, "", domain.Task{Title: "existing"})
	require.NoError(t, err)

	src := memory.NewSourceFromTasks(
		domain.Task{ID: "1", Title: "epic"},
		domain.Task{ID: "1.1", ParentID: "1", Title: "story"},
		domain.Task{ID: "1.1.1", ParentID: "1.1", Title: "subtask"},
		domain.Task{ID: "2", Title: "chore"},
	)
	n, err := mgr.Import(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	tasks, err := mgr.Tasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "2.1", "2.1.1", "3"}, idsOf(tasks))

	got, err := mgr.Get(ctx, "2.1.1")
	require.NoError(t, err)
	assert.Equal(t, "subtask", got.Title)
	assert.Equal(t, "2.1", got.ParentID)
}

func TestManager_DistributedLock(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	locker := arborredis.NewLocker(client, "arbor:", arborredis.WithRetryInterval(time.Millisecond))
	ctx := context.Background()

	store := memory.NewStore()
	// Two managers over one store stand in for two processes.
	a := workspace.NewManager(store, workspace.WithLocker(locker))
	b := workspace.NewManager(store, workspace.WithLocker(locker))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		mgr := a
		if i%2 == 1 {
			mgr = b
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := mgr.AddChild(ctx, "", domain.Task{Title: "t"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	violations, err := a.Check(ctx)
	require.NoError(t, err)
	assert.Empty(t, violations)
	assert.False(t, mr.Exists("arbor:lock:"+workspace.LockKey))
}
