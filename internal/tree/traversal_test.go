package tree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor/internal/tree"
	"github.com/aretw0/arbor/pkg/domain"
)

func TestDescendantsOf(t *testing.T) {
	tasks := tasksOf("2", "1.2", "1", "1.1.1", "1.1", "10", "1.10")

	got, err := tree.DescendantsOf("1", tasks)
	require.NoError(t, err)
	assert.Equal(t, []string{"1.1", "1.1.1", "1.2", "1.10"}, idsOf(got))

	got, err = tree.DescendantsOf("2", tasks)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = tree.DescendantsOf("3", tasks)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = tree.DescendantsOf("1.0", tasks)
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestAncestorChain(t *testing.T) {
	t.Run("root to parent", func(t *testing.T) {
		got, err := tree.AncestorChain("1.2.3", tasksOf("1", "1.2", "1.2.3"))
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "1.2"}, idsOf(got))
	})

	t.Run("root has no ancestors", func(t *testing.T) {
		got, err := tree.AncestorChain("1", tasksOf("1"))
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("stops at an orphan", func(t *testing.T) {
		tasks := []domain.Task{{ID: "4.1", ParentID: "4"}, {ID: "4.1.1", ParentID: "4.1"}}
		got, err := tree.AncestorChain("4.1.1", tasks)
		require.NoError(t, err)
		assert.Equal(t, []string{"4.1"}, idsOf(got))
	})

	t.Run("cycle", func(t *testing.T) {
		tasks := []domain.Task{{ID: "1", ParentID: "2"}, {ID: "2", ParentID: "1"}}
		_, err := tree.AncestorChain("1", tasks)
		assert.ErrorIs(t, err, domain.ErrCycleDetected)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := tree.AncestorChain("9", tasksOf("1"))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestSubtreeAndReachable(t *testing.T) {
	got, err := tree.Subtree("1", tasksOf("1", "1.1", "1.1.1", "1.2", "2"))
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "1.1", "1.1.1", "1.2"}, idsOf(got))

	adj := tree.BuildAdjacency([]domain.Task{
		{ID: "1", ParentID: "3"},
		{ID: "2", ParentID: "1"},
		{ID: "3", ParentID: "2"},
	})
	reached, err := tree.Reachable(adj, "1")
	assert.ErrorIs(t, err, domain.ErrCycleDetected)
	assert.Equal(t, []string{"1", "2", "3"}, reached.Sorted())

	adj = tree.BuildAdjacency(tasksOf("1", "1.2", "1.1"))
	assert.Equal(t, []string{"1.1", "1.2"}, adj.Children("1"))
	assert.Empty(t, adj.Children("1.1"))
}
