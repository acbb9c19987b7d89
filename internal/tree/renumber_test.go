package tree_test

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor/internal/tree"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/taskid"
)

func TestPlanInsertChild(t *testing.T) {
	tasks := tasksOf("1", "1.1", "1.2", "2")

	id, err := tree.PlanInsertChild(tasks, "1")
	require.NoError(t, err)
	assert.Equal(t, "1.3", id)

	id, err = tree.PlanInsertChild(tasks, "")
	require.NoError(t, err)
	assert.Equal(t, "3", id)

	id, err = tree.PlanInsertChild(tasks, "2")
	require.NoError(t, err)
	assert.Equal(t, "2.1", id)

	_, err = tree.PlanInsertChild(tasks, "5")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = tree.PlanInsertChild(tasks, "01")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestPlanInsertAfter(t *testing.T) {
	id, plan, err := tree.PlanInsertAfter(tasksOf("1", "1.1", "1.2", "1.1.1"), "1.1")
	require.NoError(t, err)
	assert.Equal(t, "1.2", id)
	assert.Equal(t, rw("1.2", "1.3"), plan.Rewrites)

	_, _, err = tree.PlanInsertAfter(tasksOf("1"), "1.x")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestPlanDelete(t *testing.T) {
	tests := []struct {
		name  string
		tasks []string
		id    string
		want  []domain.Rewrite
	}{
		{
			name:  "children are promoted after the remaining siblings",
			tasks: []string{"1", "1.1", "1.2", "1.1.1"},
			id:    "1.1",
			want:  rw("1.2", "1.1", "1.1.1", "1.2"),
		},
		{
			name:  "leaf closes the gap",
			tasks: []string{"1", "2", "3", "3.1"},
			id:    "2",
			want:  rw("3", "2", "3.1", "2.1"),
		},
		{
			name:  "root with children",
			tasks: []string{"1", "1.1", "1.1.1", "1.2", "2"},
			id:    "1",
			want:  rw("2", "1", "1.1", "2", "1.1.1", "2.1", "1.2", "3"),
		},
		{
			name:  "last leaf changes nothing",
			tasks: []string{"1", "1.1", "1.2"},
			id:    "1.2",
			want:  nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := tree.PlanDelete(tasksOf(tt.tasks...), tt.id)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, plan.Rewrites)
		})
	}

	_, err := tree.PlanDelete(tasksOf("1"), "2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPlanMove(t *testing.T) {
	tests := []struct {
		name      string
		tasks     []string
		id        string
		newParent string
		want      []domain.Rewrite
	}{
		{
			name:      "to another parent",
			tasks:     []string{"1", "1.1", "1.2", "2"},
			id:        "1.1",
			newParent: "2",
			want:      rw("1.2", "1.1", "1.1", "2.1"),
		},
		{
			name:      "to the root level",
			tasks:     []string{"1", "1.1", "1.1.1", "2"},
			id:        "1.1",
			newParent: "",
			want:      rw("1.1", "3", "1.1.1", "3.1"),
		},
		{
			name:      "new parent is renumbered by the gap",
			tasks:     []string{"1", "2", "3", "3.1"},
			id:        "1",
			newParent: "3",
			want:      rw("2", "1", "3", "2", "3.1", "2.1", "1", "2.2"),
		},
		{
			name:      "within the same group",
			tasks:     []string{"1", "2", "3"},
			id:        "1",
			newParent: "",
			want:      rw("2", "1", "3", "2", "1", "3"),
		},
		{
			name:      "under a former sibling's child",
			tasks:     []string{"1", "1.1", "1.1.1", "1.2", "1.2.1"},
			id:        "1.1",
			newParent: "1.2.1",
			want:      rw("1.2", "1.1", "1.2.1", "1.1.1", "1.1", "1.1.1.1", "1.1.1", "1.1.1.1.1"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := tree.PlanMove(tasksOf(tt.tasks...), tt.id, tt.newParent)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, plan.Rewrites)
		})
	}

	t.Run("under itself", func(t *testing.T) {
		_, err := tree.PlanMove(tasksOf("1", "1.1"), "1", "1")
		assert.ErrorIs(t, err, domain.ErrInvalidMove)
	})

	t.Run("under a descendant", func(t *testing.T) {
		_, err := tree.PlanMove(tasksOf("1", "1.1", "1.1.1"), "1", "1.1.1")
		assert.ErrorIs(t, err, domain.ErrInvalidMove)
	})

	t.Run("unknown parent", func(t *testing.T) {
		_, err := tree.PlanMove(tasksOf("1", "2"), "1", "7")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestPlanRenumber(t *testing.T) {
	t.Run("consistent set is left alone", func(t *testing.T) {
		plan, warnings, err := tree.PlanRenumber(tasksOf("1", "1.1", "2"))
		require.NoError(t, err)
		assert.True(t, plan.Empty())
		assert.Empty(t, warnings)
	})

	t.Run("closes gaps and adopts orphans", func(t *testing.T) {
		tasks := tasksOf("1", "3", "3.1", "3.4")
		tasks = append(tasks, domain.Task{ID: "7.2", ParentID: "7"})

		plan, warnings, err := tree.PlanRenumber(tasks)
		require.NoError(t, err)
		assert.ElementsMatch(t, rw("3", "2", "3.1", "2.1", "3.4", "2.2", "7.2", "3"), plan.Rewrites)
		require.Len(t, warnings, 1)
		assert.Equal(t, domain.WarnOrphanReference, warnings[0].Kind)

		repaired, _, err := domain.ChangeSet{Rewrites: plan.Rewrites}.Apply(tasks, nil)
		require.NoError(t, err)
		assert.Empty(t, tree.Check(repaired))
	})

	t.Run("duplicates cannot be repaired", func(t *testing.T) {
		tasks := append(tasksOf("1", "2"), domain.Task{ID: "2"})
		_, _, err := tree.PlanRenumber(tasks)
		assert.ErrorIs(t, err, domain.ErrIDCollision)
	})
}

// TestSiblingGroupsStayGapless drives a long random sequence of mutations
// through the planners and checks the hierarchy after each one.
func TestSiblingGroupsStayGapless(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	var tasks []domain.Task

	pick := func() string {
		return tasks[rng.Intn(len(tasks))].ID
	}
	insert := func(id string, plan domain.Plan) {
		cs := domain.ChangeSet{
			Rewrites: plan.Rewrites,
			Upserts:  []domain.Task{{ID: id, ParentID: taskid.ParentOf(id)}},
		}
		var err error
		tasks, _, err = cs.Apply(tasks, nil)
		require.NoError(t, err)
	}

	for step := 0; step < 400; step++ {
		op := rng.Intn(5)
		if len(tasks) == 0 {
			op = 0
		}
		switch op {
		case 0:
			parent := ""
			if len(tasks) > 0 && rng.Intn(3) > 0 {
				parent = pick()
			}
			id, err := tree.PlanInsertChild(tasks, parent)
			require.NoError(t, err)
			insert(id, domain.Plan{})
		case 1:
			id, plan, err := tree.PlanInsertAfter(tasks, pick())
			require.NoError(t, err)
			insert(id, plan)
		case 2:
			if len(tasks) < 10 {
				continue
			}
			id := pick()
			plan, err := tree.PlanDelete(tasks, id)
			require.NoError(t, err)
			tasks, _, err = domain.ChangeSet{Removed: []string{id}, Rewrites: plan.Rewrites}.Apply(tasks, nil)
			require.NoError(t, err)
		default:
			parent := ""
			if rng.Intn(4) > 0 {
				parent = pick()
			}
			plan, err := tree.PlanMove(tasks, pick(), parent)
			if errors.Is(err, domain.ErrInvalidMove) {
				continue
			}
			require.NoError(t, err)
			tasks, _, err = domain.ChangeSet{Rewrites: plan.Rewrites}.Apply(tasks, nil)
			require.NoError(t, err)
		}
		require.Empty(t, tree.Check(tasks), "step %d", step)
	}
}
