package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor/pkg/domain"
)

func TestChangeSet_Apply(t *testing.T) {
	tasks := []domain.Task{
		{ID: "1", Title: "a"},
		{ID: "2", Title: "b"},
		{ID: "2.1", ParentID: "2", Title: "c"},
		{ID: "3", Title: "d"},
	}
	deps := []domain.Dependency{
		{TaskID: "3", DependsOnID: "2.1"},
		{TaskID: "2.1", DependsOnID: "1"},
	}

	t.Run("simultaneous rewrites", func(t *testing.T) {
		cs := domain.ChangeSet{
			Removed:  []string{"1"},
			Rewrites: []domain.Rewrite{{OldID: "2", NewID: "1"}, {OldID: "2.1", NewID: "1.1"}, {OldID: "3", NewID: "2"}},
		}
		got, edges, err := cs.Apply(tasks, deps)
		require.NoError(t, err)

		require.Len(t, got, 3)
		assert.Equal(t, domain.Task{ID: "1", Title: "b"}, got[0])
		assert.Equal(t, domain.Task{ID: "1.1", ParentID: "1", Title: "c"}, got[1])
		assert.Equal(t, domain.Task{ID: "2", Title: "d"}, got[2])
		assert.Equal(t, []domain.Dependency{{TaskID: "2", DependsOnID: "1.1"}}, edges)

		// Inputs are untouched.
		assert.Equal(t, "2", tasks[1].ID)
	})

	t.Run("upsert replaces or appends", func(t *testing.T) {
		cs := domain.ChangeSet{Upserts: []domain.Task{{ID: "1", Title: "A"}, {ID: "4", Title: "e"}}}
		got, _, err := cs.Apply(tasks, nil)
		require.NoError(t, err)
		require.Len(t, got, 5)
		assert.Equal(t, "A", got[0].Title)
		assert.Equal(t, "4", got[4].ID)
	})

	t.Run("unknown ids", func(t *testing.T) {
		_, _, err := domain.ChangeSet{Removed: []string{"9"}}.Apply(tasks, nil)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		_, _, err = domain.ChangeSet{Rewrites: []domain.Rewrite{{OldID: "9", NewID: "4"}}}.Apply(tasks, nil)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("collision", func(t *testing.T) {
		_, _, err := domain.ChangeSet{Rewrites: []domain.Rewrite{{OldID: "3", NewID: "1"}}}.Apply(tasks, nil)
		assert.ErrorIs(t, err, domain.ErrIDCollision)
	})

	assert.True(t, domain.ChangeSet{}.Empty())
}

func TestTreeError(t *testing.T) {
	err := domain.NewTreeError(domain.ErrIDCollision, "1.2", "claimed twice")
	assert.ErrorIs(t, err, domain.ErrIDCollision)
	assert.Equal(t, `task id collision: "1.2": claimed twice`, err.Error())
	assert.Equal(t, `task not found: "4"`, domain.NotFound("4").Error())
}
