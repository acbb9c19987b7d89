package ports

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/taskid"
)

// RunStoreContract runs a suite of tests to verify that a Store implementation
// adheres to the defined interface contract. newStore must return an empty store
// on every call.
func RunStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	seed := func(t *testing.T, s Store, ids ...string) {
		t.Helper()
		var rows []domain.Task
		for _, id := range ids {
			rows = append(rows, domain.Task{ID: id, ParentID: taskid.ParentOf(id), Title: "task " + id, Status: domain.StatusPending})
		}
		require.NoError(t, s.Commit(ctx, domain.ChangeSet{Upserts: rows}))
	}

	titles := func(t *testing.T, s Store) map[string]string {
		t.Helper()
		rows, err := s.Snapshot(ctx)
		require.NoError(t, err)
		out := make(map[string]string, len(rows))
		for _, r := range rows {
			out[r.ID] = r.Title
			assert.Equal(t, taskid.ParentOf(r.ID), r.ParentID, "parent of %s", r.ID)
		}
		return out
	}

	t.Run("Empty Snapshot", func(t *testing.T) {
		rows, err := newStore(t).Snapshot(ctx)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("Upsert and Get", func(t *testing.T) {
		s := newStore(t)
		seed(t, s, "1", "1.1")

		got, err := s.Get(ctx, "1.1")
		require.NoError(t, err)
		assert.Equal(t, "task 1.1", got.Title)
		assert.Equal(t, "1", got.ParentID)

		got.Title = "renamed"
		got.Status = domain.StatusDone
		require.NoError(t, s.Commit(ctx, domain.ChangeSet{Upserts: []domain.Task{got}}))

		got, err = s.Get(ctx, "1.1")
		require.NoError(t, err)
		assert.Equal(t, "renamed", got.Title)
		assert.Equal(t, domain.StatusDone, got.Status)
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := newStore(t).Get(ctx, "7")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Delete Plan", func(t *testing.T) {
		s := newStore(t)
		seed(t, s, "1", "1.1", "1.2", "1.1.1")

		err := s.Commit(ctx, domain.ChangeSet{
			Removed:  []string{"1.1"},
			Rewrites: []domain.Rewrite{{OldID: "1.2", NewID: "1.1"}, {OldID: "1.1.1", NewID: "1.2"}},
		})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"1": "task 1", "1.1": "task 1.2", "1.2": "task 1.1.1"}, titles(t, s))
	})

	t.Run("Simultaneous Swap", func(t *testing.T) {
		s := newStore(t)
		seed(t, s, "1", "1.1", "2")

		err := s.Commit(ctx, domain.ChangeSet{
			Rewrites: []domain.Rewrite{{OldID: "1", NewID: "2"}, {OldID: "1.1", NewID: "2.1"}, {OldID: "2", NewID: "1"}},
		})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"1": "task 2", "2": "task 1", "2.1": "task 1.1"}, titles(t, s))
	})

	t.Run("Insert After Plan", func(t *testing.T) {
		s := newStore(t)
		seed(t, s, "1", "2", "2.1")

		err := s.Commit(ctx, domain.ChangeSet{
			Rewrites: []domain.Rewrite{{OldID: "2", NewID: "3"}, {OldID: "2.1", NewID: "3.1"}},
			Upserts:  []domain.Task{{ID: "2", Title: "new"}},
		})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"1": "task 1", "2": "new", "3": "task 2", "3.1": "task 2.1"}, titles(t, s))
	})

	t.Run("Failed Commit Applies Nothing", func(t *testing.T) {
		s := newStore(t)
		seed(t, s, "1", "2", "3")
		before := titles(t, s)

		err := s.Commit(ctx, domain.ChangeSet{
			Removed:  []string{"1"},
			Rewrites: []domain.Rewrite{{OldID: "2", NewID: "1"}, {OldID: "9", NewID: "2"}},
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Equal(t, before, titles(t, s))

		err = s.Commit(ctx, domain.ChangeSet{Rewrites: []domain.Rewrite{{OldID: "3", NewID: "2"}}})
		assert.ErrorIs(t, err, domain.ErrIDCollision)
		assert.Equal(t, before, titles(t, s))
	})

	t.Run("Dependencies Follow Commits", func(t *testing.T) {
		s := newStore(t)
		seed(t, s, "1", "2", "3")

		require.NoError(t, s.AddDependency(ctx, domain.Dependency{TaskID: "3", DependsOnID: "2"}))
		require.NoError(t, s.AddDependency(ctx, domain.Dependency{TaskID: "3", DependsOnID: "1"}))
		require.NoError(t, s.AddDependency(ctx, domain.Dependency{TaskID: "3", DependsOnID: "1"}))

		err := s.AddDependency(ctx, domain.Dependency{TaskID: "3", DependsOnID: "8"})
		assert.ErrorIs(t, err, domain.ErrNotFound)

		err = s.Commit(ctx, domain.ChangeSet{
			Removed:  []string{"1"},
			Rewrites: []domain.Rewrite{{OldID: "2", NewID: "1"}, {OldID: "3", NewID: "2"}},
		})
		require.NoError(t, err)

		deps, err := s.Dependencies(ctx)
		require.NoError(t, err)
		assert.Equal(t, []domain.Dependency{{TaskID: "2", DependsOnID: "1"}}, deps)

		require.NoError(t, s.RemoveDependency(ctx, deps[0]))
		require.NoError(t, s.RemoveDependency(ctx, deps[0]))
		deps, err = s.Dependencies(ctx)
		require.NoError(t, err)
		assert.Empty(t, deps)
	})
}

// SortTasks orders rows by id in hierarchy pre-order.
func SortTasks(rows []domain.Task) {
	sort.SliceStable(rows, func(i, j int) bool {
		return taskid.CompareStrings(rows[i].ID, rows[j].ID) < 0
	})
}

// SortDependencies orders edges by task id, then by the id they depend on.
func SortDependencies(deps []domain.Dependency) {
	sort.SliceStable(deps, func(i, j int) bool {
		if c := taskid.CompareStrings(deps[i].TaskID, deps[j].TaskID); c != 0 {
			return c < 0
		}
		return taskid.CompareStrings(deps[i].DependsOnID, deps[j].DependsOnID) < 0
	})
}
